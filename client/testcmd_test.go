package client

import (
	"testing"

	"github.com/gridwatch-io/iec104/apci"
	"github.com/gridwatch-io/iec104/asdu"
)

func TestTestCommandAutoReplies(t *testing.T) {
	c, tr, _ := newTestClient()

	tr.feedASDU(asdu.ASDU{
		Header: asdu.Header{Type: asdu.CTsTa1, Count: 1, COT: asdu.COT{Cause: asdu.CauseActivation}, CommonAddress: 1},
		Objects: []asdu.Object{{
			Address: 0,
			Value:   asdu.TestCommand{FixedTestBits: 0xAA55},
		}},
	})
	if err := c.OnBytesReady(); err != nil {
		t.Fatalf("OnBytesReady: %v", err)
	}
	if tr.sent.Len() == 0 {
		t.Fatal("expected an auto-reply I-frame")
	}

	frame, err := apci.Decode(tr.sent.Bytes())
	if err != nil {
		t.Fatalf("decode reply frame: %v", err)
	}
	reply, err := asdu.Decode(frame.ASDU)
	if err != nil {
		t.Fatalf("decode reply ASDU: %v", err)
	}
	if reply.Header.Type != asdu.CTsTa1 || reply.Header.COT.Cause != asdu.CauseActCon {
		t.Fatalf("expected C_TS_TA_1 ACT-CON, got %+v", reply.Header)
	}
	tc, ok := reply.Objects[0].Value.(asdu.TestCommand)
	if !ok || tc.FixedTestBits != 0xAA55 {
		t.Fatalf("expected echoed test bits 0xAA55, got %+v", reply.Objects[0].Value)
	}
}

func TestSendTestCommandCorrelatesOnACTCON(t *testing.T) {
	c, tr, ind := newTestClient()
	if err := c.SendTestCommand(0x5A5A); err != nil {
		t.Fatalf("SendTestCommand: %v", err)
	}
	tr.feedASDU(asdu.ASDU{
		Header: asdu.Header{Type: asdu.CTsTa1, Count: 1, COT: asdu.COT{Cause: asdu.CauseActCon}, CommonAddress: 1},
		Objects: []asdu.Object{{Address: 0, Value: asdu.TestCommand{FixedTestBits: 0x5A5A}}},
	})
	if err := c.OnBytesReady(); err != nil {
		t.Fatalf("OnBytesReady: %v", err)
	}
	if len(ind.cmdEchoes) != 1 {
		t.Fatalf("expected the outbound test command's ACT-CON to be reported as a command echo, got %+v", ind.cmdEchoes)
	}
}
