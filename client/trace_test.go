package client

import (
	"testing"
	"time"

	"github.com/gridwatch-io/iec104/apci"
	"github.com/gridwatch-io/iec104/asdu"
)

func TestOnBytesReadyReportsRawFramesAndASDUEnvelope(t *testing.T) {
	c, tr, ind := newTestClient()

	recvBefore := len(ind.rawFrames)
	tr.feedASDU(asdu.ASDU{
		Header:  asdu.Header{Type: asdu.MSpNa1, Count: 1, COT: asdu.COT{Cause: asdu.CauseSpontaneous}, CommonAddress: 1},
		Objects: []asdu.Object{{Address: 100, Value: asdu.SinglePoint{On: true}}},
	})
	if err := c.OnBytesReady(); err != nil {
		t.Fatalf("OnBytesReady: %v", err)
	}

	if len(ind.rawFrames) <= recvBefore || ind.rawFrames[recvBefore].dir != "recv" {
		t.Fatalf("expected a recv raw frame, got %+v", ind.rawFrames)
	}
	if len(ind.asdus) != 1 || ind.asdus[0].Header.Type != asdu.MSpNa1 {
		t.Fatalf("expected one ASDU envelope indication, got %+v", ind.asdus)
	}

	tr.sent.Reset()
	before := len(ind.rawFrames)
	if err := c.SyncClock(0, time.Now()); err != nil {
		t.Fatalf("SyncClock: %v", err)
	}
	if len(ind.rawFrames) <= before || ind.rawFrames[len(ind.rawFrames)-1].dir != "sent" {
		t.Fatalf("expected a sent raw frame recorded too, got %+v", ind.rawFrames)
	}
}

func TestHandleASDUReportsUnknownType(t *testing.T) {
	c, tr, ind := newTestClient()

	h := asdu.Header{Type: asdu.TypeID(200), Count: 1, COT: asdu.COT{Cause: asdu.CauseSpontaneous}, CommonAddress: 1}
	raw := append(asdu.EncodeHeader(h), 0, 0, 0)
	tr.feed(apci.APDU{Kind: apci.IFrame, ASDU: raw})

	if err := c.OnBytesReady(); err != nil {
		t.Fatalf("OnBytesReady: %v", err)
	}
	if len(ind.unknownTypes) != 1 || ind.unknownTypes[0] != asdu.TypeID(200) {
		t.Fatalf("expected unknown-type indication for TypeID 200, got %+v", ind.unknownTypes)
	}
	if len(ind.asdus) != 0 {
		t.Fatalf("an undecodable ASDU should not fire ASDUIndication, got %+v", ind.asdus)
	}
}
