package client

import (
	"bytes"
	"time"

	"github.com/gridwatch-io/iec104/apci"
	"github.com/gridwatch-io/iec104/asdu"
)

// fakeTransport is an in-memory apci.Transport: outbound writes accumulate
// in sent, inbound bytes are queued with feed and drained by Read/WaitFor.
type fakeTransport struct {
	sent    bytes.Buffer
	inbound bytes.Buffer
	dialErr error
}

func (t *fakeTransport) Available() (int, error) { return t.inbound.Len(), nil }

// Read matches apci.Transport's contract: 0 bytes with a nil error means
// "nothing buffered right now", never io.EOF the way bytes.Buffer.Read
// reports it on an empty buffer.
func (t *fakeTransport) Read(dst []byte) (int, error) {
	if t.inbound.Len() == 0 {
		return 0, nil
	}
	return t.inbound.Read(dst)
}

func (t *fakeTransport) WaitFor(n int, timeout time.Duration) error { return nil }

func (t *fakeTransport) Write(src []byte) (int, error) { return t.sent.Write(src) }

func (t *fakeTransport) Connect(ip string, port int) error { return t.dialErr }

func (t *fakeTransport) Abort() error { return nil }

func (t *fakeTransport) feed(a apci.APDU) {
	raw, err := apci.Encode(a)
	if err != nil {
		panic(err)
	}
	t.inbound.Write(raw)
}

func (t *fakeTransport) feedASDU(u asdu.ASDU) {
	raw, err := asdu.Encode(u)
	if err != nil {
		panic(err)
	}
	t.feed(apci.APDU{Kind: apci.IFrame, ASDU: raw})
}

// recordingIndication captures every callback for assertion.
type recordingIndication struct {
	data        [][]asdu.Object
	cmdEchoes   []struct {
		obj asdu.Object
		cot asdu.COT
	}
	giConf   []asdu.TypeID
	giTerm   []struct {
		typeID asdu.TypeID
		count  int
	}
	connected     int
	disconnected  int
	frames        []struct{ dir, kind string }
	rawFrames     []struct {
		dir string
		raw []byte
	}
	seqErrors     int
	idleTimeouts  int
	latencies     []time.Duration
	asdus         []asdu.ASDU
	unknownTypes  []asdu.TypeID
}

func (r *recordingIndication) DataIndication(objects []asdu.Object) {
	r.data = append(r.data, objects)
}

func (r *recordingIndication) CommandActRespIndication(obj asdu.Object, cot asdu.COT) {
	r.cmdEchoes = append(r.cmdEchoes, struct {
		obj asdu.Object
		cot asdu.COT
	}{obj, cot})
}

func (r *recordingIndication) InterrogationActConfIndication(typeID asdu.TypeID) {
	r.giConf = append(r.giConf, typeID)
}

func (r *recordingIndication) InterrogationActTermIndication(typeID asdu.TypeID, count int) {
	r.giTerm = append(r.giTerm, struct {
		typeID asdu.TypeID
		count  int
	}{typeID, count})
}

func (r *recordingIndication) TCPConnected()    { r.connected++ }
func (r *recordingIndication) TCPDisconnected() { r.disconnected++ }

func (r *recordingIndication) FrameIndication(dir, kind string) {
	r.frames = append(r.frames, struct{ dir, kind string }{dir, kind})
}

func (r *recordingIndication) SequenceErrorIndication() { r.seqErrors++ }
func (r *recordingIndication) IdleTimeoutIndication()   { r.idleTimeouts++ }

func (r *recordingIndication) CommandLatencyIndication(d time.Duration) {
	r.latencies = append(r.latencies, d)
}

func (r *recordingIndication) RawFrameIndication(dir string, raw []byte) {
	cp := append([]byte(nil), raw...)
	r.rawFrames = append(r.rawFrames, struct {
		dir string
		raw []byte
	}{dir, cp})
}

func (r *recordingIndication) ASDUIndication(u asdu.ASDU) {
	r.asdus = append(r.asdus, u)
}

func (r *recordingIndication) UnknownTypeIndication(typeID asdu.TypeID) {
	r.unknownTypes = append(r.unknownTypes, typeID)
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// newTestClient builds a Client already past the STARTDT handshake, ready
// to send/receive I-frames.
func newTestClient() (*Client, *fakeTransport, *recordingIndication) {
	tr := &fakeTransport{}
	ind := &recordingIndication{}
	cfg := DefaultConfig()
	cfg.PeerIP = "10.0.0.1"
	cfg.CommonAddressDefault = 1
	c := New(cfg, tr, ind, fixedClock(time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC)))
	if err := c.Connect(); err != nil {
		panic(err)
	}
	tr.sent.Reset()
	tr.feed(apci.APDU{Kind: apci.UFrame, UControl: apci.UStartDTCon})
	if err := c.OnBytesReady(); err != nil {
		panic(err)
	}
	tr.sent.Reset()
	return c, tr, ind
}
