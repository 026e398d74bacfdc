package asdu

import (
	"bytes"
	"testing"
)

// TestCP56Time2aFixedVector pins the encoding for 2024-07-15 09:30:45.123,
// no summer time, valid: the millisecond field carries whole seconds and
// the sub-second remainder together (45*1000+123 = 45123), per the
// standard's "milliseconds, range 0..59999" definition.
func TestCP56Time2aFixedVector(t *testing.T) {
	ts := CP56Time2a{
		Millisecond: 45*1000 + 123,
		Minute:      30,
		Hour:        9,
		Day:         15,
		Month:       7,
		Year:        24,
	}
	want := []byte{0x43, 0xB0, 0x1E, 0x09, 0x0F, 0x07, 0x18}
	got := EncodeCP56Time2a(ts)
	if !bytes.Equal(got[:], want) {
		t.Fatalf("got % X, want % X", got, want)
	}

	back, err := DecodeCP56Time2a(got[:])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back != ts {
		t.Fatalf("roundtrip mismatch: got %+v, want %+v", back, ts)
	}
}

func TestCP56Time2aSummerTimeAndInvalid(t *testing.T) {
	ts := CP56Time2a{Millisecond: 500, Minute: 1, Invalid: true, Hour: 23, SummerTime: true, Day: 31, Weekday: 7, Month: 12, Year: 99}
	data := EncodeCP56Time2a(ts)
	back, err := DecodeCP56Time2a(data[:])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back != ts {
		t.Fatalf("roundtrip mismatch: got %+v, want %+v", back, ts)
	}
}

func TestDecodeCP56Time2aShort(t *testing.T) {
	if _, err := DecodeCP56Time2a([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for short input")
	}
}

func TestCP16Time2aRoundtrip(t *testing.T) {
	for _, ms := range []uint16{0, 1, 999, 60000, 65535} {
		data := EncodeCP16Time2a(CP16Time2a{Milliseconds: ms})
		back, err := DecodeCP16Time2a(data[:])
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if back.Milliseconds != ms {
			t.Fatalf("got %d, want %d", back.Milliseconds, ms)
		}
	}
}
