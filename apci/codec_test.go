package apci

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

// fakeTransport is a minimal, test-only Transport backed by an in-memory
// queue. WaitFor never actually sleeps: since tests feed bytes explicitly
// between calls to Codec.Next, "no data yet" and "timed out" are the same
// observable outcome from the codec's point of view.
type fakeTransport struct {
	queue []byte
	sent  [][]byte
}

func (f *fakeTransport) push(b []byte) { f.queue = append(f.queue, b...) }

func (f *fakeTransport) Available() (int, error) { return len(f.queue), nil }

func (f *fakeTransport) Read(dst []byte) (int, error) {
	n := copy(dst, f.queue)
	f.queue = f.queue[n:]
	return n, nil
}

func (f *fakeTransport) WaitFor(n int, timeout time.Duration) error {
	if len(f.queue) >= n {
		return nil
	}
	return errors.New("fakeTransport: timeout")
}

func (f *fakeTransport) Write(src []byte) (int, error) {
	cp := append([]byte(nil), src...)
	f.sent = append(f.sent, cp)
	return len(src), nil
}

func (f *fakeTransport) Connect(ip string, port int) error { return nil }
func (f *fakeTransport) Abort() error                      { return nil }

func TestCodecResyncOnGarbage(t *testing.T) {
	// S5 from the spec's end-to-end scenarios.
	tr := &fakeTransport{}
	tr.push([]byte{0xAA, 0xBB, 0xCC, 0x68, 0x04, 0x0B, 0x00, 0x00, 0x00, 0xDD})
	c := NewCodec(tr)

	if _, err := c.Next(); err == nil || !errors.Is(err, ErrInvalidFrame) {
		t.Fatalf("expected invalid-frame trace for garbage prefix, got %v", err)
	}

	a, err := c.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if a.Kind != UFrame || a.UControl != UStartDTCon {
		t.Fatalf("got %+v", a)
	}

	if !c.Pending() {
		t.Fatal("expected the trailing 0xDD byte to remain buffered")
	}
	if _, err := c.Next(); !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("expected ErrWouldBlock on the lone trailing byte, got %v", err)
	}
}

func TestCodecPartialReadInChunks(t *testing.T) {
	whole := mustEncode(t, APDU{Kind: IFrame, SendSeq: 2, RecvSeq: 0, ASDU: []byte{1, 2, 3, 4, 5, 6}})

	for chunk := 1; chunk <= len(whole); chunk++ {
		tr := &fakeTransport{}
		c := NewCodec(tr)

		var got APDU
		var gotErr error
		for i := 0; i < len(whole); i += chunk {
			end := i + chunk
			if end > len(whole) {
				end = len(whole)
			}
			tr.push(whole[i:end])
			got, gotErr = c.Next()
			if gotErr == nil {
				break
			}
			if !errors.Is(gotErr, ErrWouldBlock) && !errors.Is(gotErr, ErrShortRead) {
				t.Fatalf("chunk size %d: unexpected error: %v", chunk, gotErr)
			}
		}
		if gotErr != nil {
			t.Fatalf("chunk size %d: never completed: %v", chunk, gotErr)
		}
		if got.Kind != IFrame || got.SendSeq != 2 || !bytes.Equal(got.ASDU, []byte{1, 2, 3, 4, 5, 6}) {
			t.Fatalf("chunk size %d: got %+v", chunk, got)
		}
	}
}

func mustEncode(t *testing.T, a APDU) []byte {
	t.Helper()
	data, err := Encode(a)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return data
}
