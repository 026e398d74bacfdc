// Package trace renders decoded traffic the way the original controlling
// station's log did: a hex dump of each frame, a one-line header naming its
// type/cause/origin/common-address, and one bracketed line per information
// object for monitor-direction ASDUs. It never blocks and never panics —
// malformed input degrades to a best-effort line instead of an error.
package trace

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gridwatch-io/iec104/asdu"
)

// Sink is anything a trace record can be appended to: a *logrus.Logger's
// Writer(), a *bytes.Buffer, or any other io.Writer.
type Sink = io.Writer

// maxHexBytes bounds the hex dump the same way original_source's LogFrame
// capped its "log up to 50 characters" preview, adjusted to a byte count.
const maxHexBytes = 100

// HexDump renders up to the first maxHexBytes bytes of raw as space-separated
// hex octets, prefixed with dir ("T-->" for transmit, "R-->" for receive)
// and the frame's total length, appending "..." when truncated.
func HexDump(dir string, raw []byte) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %3d: ", dir, len(raw))
	n := len(raw)
	if n > maxHexBytes {
		n = maxHexBytes
	}
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%02x ", raw[i])
	}
	if len(raw) > maxHexBytes {
		b.WriteString("...")
	}
	return b.String()
}

// Frame writes the hex dump of one raw APDU to sink.
func Frame(sink Sink, dir string, raw []byte) {
	fmt.Fprintln(sink, HexDump(dir, raw))
}

// Header writes just the one-line ASDU envelope summary — TypeID, cause,
// origin/common address, item count, polarity — with no point lines.
// Exposed separately from ASDU so a caller that already renders point lines
// through another path (e.g. client.Indication's DataIndication) can still
// trace the envelope of every ASDU, including non-monitor ones, without
// printing objects twice.
func Header(sink Sink, h asdu.Header) {
	fmt.Fprintf(sink, "     OA %d CA %d TI TYPE %d:%s CAUSE %d:%s SQ %d ITEMS %d %s%s\n",
		h.COT.Origin, h.CommonAddress,
		uint8(h.Type), h.Type.String(),
		h.COT.Cause, asdu.CauseName(h.COT.Cause),
		boolToInt(h.SQ), h.Count,
		polarity(h.COT.Negative),
		testSuffix(h.COT.Test),
	)
}

// ASDU writes the header line and, for a monitor-direction type, one point
// line per decoded object. u is the already-decoded ASDU; malformed input
// should never reach here since Decode is called first, but a nil Objects
// slice or unknown value type degrades to just the header line.
func ASDU(sink Sink, u asdu.ASDU) {
	Header(sink, u.Header)
	Points(sink, u.Objects)
}

// Points writes one bracketed line per information object, with no
// preceding header line. Used where a caller has objects but not (or no
// longer has) the ASDU header they arrived in — e.g. client.Indication's
// DataIndication.
func Points(sink Sink, objects []asdu.Object) {
	for _, obj := range objects {
		writePoint(sink, obj)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func polarity(negative bool) string {
	if negative {
		return "NEGATIVE"
	}
	return "POSITIVE"
}

func testSuffix(test bool) string {
	if test {
		return " TEST"
	}
	return ""
}

// writePoint renders one bracketed information-object line. Any value type
// this package does not recognise (parameters, commands echoed back, or a
// future type) is skipped silently: only monitor-direction data is meant to
// appear here, per §4.E.
func writePoint(sink Sink, obj asdu.Object) {
	val, flags, when, ok := pointFields(obj.Value)
	if !ok {
		return
	}
	line := formatValue(uint32(obj.Address), val, flags)
	if when != nil {
		line += " " + formatTimestamp(*when)
	}
	fmt.Fprintln(sink, line+"]")
}

func formatValue(addr uint32, val float64, flags string) string {
	flags = strings.TrimRight(flags, " ")
	if math.Trunc(val) == val {
		return fmt.Sprintf("[%d %.0f %s", addr, val, flags)
	}
	return fmt.Sprintf("[%d %.3f %s", addr, val, flags)
}

func formatTimestamp(t asdu.CP56Time2a) string {
	s := fmt.Sprintf("%04d/%02d/%02d %02d:%02d:%02d.%03d",
		2000+t.Year, t.Month, t.Day, t.Hour, t.Minute,
		t.Millisecond/1000, t.Millisecond%1000)
	if t.Invalid {
		s += ".iv"
	}
	if t.SummerTime {
		s += ".su"
	}
	return s
}

// pointFields extracts (value, quality-flag word, optional timestamp, ok)
// from a decoded monitor-direction value. ok is false for anything this
// formatter has no rendering for.
func pointFields(v asdu.Value) (val float64, flags string, when *asdu.CP56Time2a, ok bool) {
	switch p := v.(type) {
	case asdu.SinglePoint:
		return b2f(p.On), spFlags(p.On, p.Quality), p.Time, true
	case asdu.DoublePoint:
		return float64(p.State), dpFlags(p.State, p.Quality), p.Time, true
	case asdu.StepPosition:
		f := qualFlags(p.Quality)
		if p.Transient {
			f = "transient " + f
		}
		return float64(p.Value), f, p.Time, true
	case asdu.BitString32:
		return float64(p.Bits), qualFlags(p.Quality), p.Time, true
	case asdu.Normalized:
		f := ""
		if p.HasQuality {
			f = qualFlags(p.Quality)
		}
		return float64(p.Value) / 32768.0, f, p.Time, true
	case asdu.Scaled:
		return float64(p.Value), qualFlags(p.Quality), p.Time, true
	case asdu.Short:
		return float64(p.Value), qualFlags(p.Quality), p.Time, true
	case asdu.IntegratedTotals:
		f := qualFlags(asdu.Quality{Invalid: p.Invalid})
		return float64(p.Value), f, p.Time, true
	case asdu.PackedSinglePointChange:
		return float64(p.States), fmt.Sprintf("changes=0x%04x %s", p.Changes, qualFlags(p.Quality)), nil, true
	case asdu.ProtectionEvent:
		t := p.Time
		return float64(p.State), protectionFlags(p.Blocked, p.Substituted, p.NotTopical, p.Invalid), &t, true
	case asdu.ProtectionStartEvents:
		t := p.Time
		return b2f(p.General), protectionFlags(p.Blocked, p.Substituted, p.NotTopical, p.Invalid), &t, true
	case asdu.ProtectionOutputCircuit:
		t := p.Time
		return b2f(p.General), protectionFlags(p.Blocked, p.Substituted, p.NotTopical, p.Invalid), &t, true
	case asdu.EndOfInitialisation:
		return float64(p.Reason), "", nil, true
	default:
		return 0, "", nil, false
	}
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func qualFlags(q asdu.Quality) string {
	var b strings.Builder
	if q.Overflow {
		b.WriteString("ov ")
	}
	if q.Blocked {
		b.WriteString("bl ")
	}
	if q.Substituted {
		b.WriteString("sb ")
	}
	if q.NotTopical {
		b.WriteString("nt ")
	}
	if q.Invalid {
		b.WriteString("iv ")
	}
	return b.String()
}

func spFlags(on bool, q asdu.Quality) string {
	state := "off "
	if on {
		state = "on "
	}
	return state + qualFlags(q)
}

func dpFlags(state asdu.DoublePointState, q asdu.Quality) string {
	names := [4]string{"intermediate ", "off ", "on ", "indeterminate "}
	return names[state&3] + qualFlags(q)
}

func protectionFlags(blocked, substituted, notTopical, invalid bool) string {
	return qualFlags(asdu.Quality{Blocked: blocked, Substituted: substituted, NotTopical: notTopical, Invalid: invalid})
}

// UnknownType writes the fallback line §7 mandates for a TypeID this client
// cannot decode.
func UnknownType(sink Sink, typeID asdu.TypeID) {
	fmt.Fprintf(sink, "!!! TYPE NOT IMPLEMENTED: %d\n", uint8(typeID))
}
