package trace

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gridwatch-io/iec104/asdu"
)

func TestHexDumpTruncates(t *testing.T) {
	raw := make([]byte, 150)
	for i := range raw {
		raw[i] = byte(i)
	}
	got := HexDump("R-->", raw)
	if !strings.HasPrefix(got, "R--> 150: ") {
		t.Fatalf("missing prefix: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncation marker, got %q", got)
	}
}

func TestHexDumpShortFrameNoTruncation(t *testing.T) {
	got := HexDump("T-->", []byte{0x68, 0x04, 0x07, 0x00, 0x00, 0x00})
	if strings.Contains(got, "...") {
		t.Fatalf("short frame should not be truncated: %q", got)
	}
	if !strings.Contains(got, "68 04 07 00 00 00") {
		t.Fatalf("expected hex bytes, got %q", got)
	}
}

func TestASDUHeaderLine(t *testing.T) {
	var buf bytes.Buffer
	u := asdu.ASDU{
		Header: asdu.Header{
			Type: asdu.MSpNa1, SQ: false, Count: 1,
			COT:           asdu.COT{Cause: asdu.CauseSpontaneous, Origin: 0},
			CommonAddress: 1,
		},
		Objects: []asdu.Object{{Address: 100, Value: asdu.SinglePoint{On: true}}},
	}
	ASDU(&buf, u)
	out := buf.String()
	if !strings.Contains(out, "TI TYPE 1:M_SP_NA_1") {
		t.Fatalf("missing type mnemonic: %q", out)
	}
	if !strings.Contains(out, "CAUSE 3:SPONTANEOUS") {
		t.Fatalf("missing cause mnemonic: %q", out)
	}
	if !strings.Contains(out, "POSITIVE") {
		t.Fatalf("missing polarity: %q", out)
	}
	if !strings.Contains(out, "[100 1 on ]") && !strings.Contains(out, "[100 1 on]") {
		t.Fatalf("missing point line: %q", out)
	}
}

func TestASDUPointLineWithTimestamp(t *testing.T) {
	var buf bytes.Buffer
	when := asdu.CP56Time2a{Year: 24, Month: 7, Day: 15, Hour: 9, Minute: 30, Millisecond: 45123, SummerTime: true}
	u := asdu.ASDU{
		Header:  asdu.Header{Type: asdu.MSpTb1, Count: 1, COT: asdu.COT{Cause: asdu.CauseSpontaneous}, CommonAddress: 1},
		Objects: []asdu.Object{{Address: 7, Value: asdu.SinglePoint{On: false, Time: &when}}},
	}
	ASDU(&buf, u)
	out := buf.String()
	if !strings.Contains(out, "2024/07/15 09:30:45.123.su") {
		t.Fatalf("missing formatted timestamp: %q", out)
	}
}

func TestASDUFractionalValuePrintsThreeDecimals(t *testing.T) {
	var buf bytes.Buffer
	u := asdu.ASDU{
		Header:  asdu.Header{Type: asdu.MMeNc1, Count: 1, COT: asdu.COT{Cause: asdu.CausePeriodic}, CommonAddress: 1},
		Objects: []asdu.Object{{Address: 3, Value: asdu.Short{Value: 12.5}}},
	}
	ASDU(&buf, u)
	if !strings.Contains(buf.String(), "12.500") {
		t.Fatalf("expected three decimal places, got %q", buf.String())
	}
}

func TestASDUSkipsUnrenderableValues(t *testing.T) {
	var buf bytes.Buffer
	u := asdu.ASDU{
		Header:  asdu.Header{Type: asdu.CScNa1, Count: 1, COT: asdu.COT{Cause: asdu.CauseActCon}, CommonAddress: 1},
		Objects: []asdu.Object{{Address: 1, Value: asdu.SingleCommand{On: true}}},
	}
	ASDU(&buf, u)
	if strings.Contains(buf.String(), "[1 ") {
		t.Fatalf("command echo should not print a point line: %q", buf.String())
	}
}

func TestPointsWithoutHeader(t *testing.T) {
	var buf bytes.Buffer
	Points(&buf, []asdu.Object{
		{Address: 1, Value: asdu.SinglePoint{On: true}},
		{Address: 2, Value: asdu.SinglePoint{On: false}},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two point lines, got %d: %q", len(lines), buf.String())
	}
}

func TestUnknownType(t *testing.T) {
	var buf bytes.Buffer
	UnknownType(&buf, asdu.TypeID(200))
	if !strings.Contains(buf.String(), "TYPE NOT IMPLEMENTED: 200") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
