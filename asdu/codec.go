package asdu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// HeaderLength is the fixed size of the ASDU header (TypeID, VSQ, COT, OA,
// CommonAddress) that precedes the information objects.
const HeaderLength = 6

// ErrInvalidASDU is returned for malformed ASDU headers or object counts.
var ErrInvalidASDU = errors.New("asdu: malformed application service data unit")

// COT is the two-octet cause-of-transmission field (§3).
type COT struct {
	Cause    uint8 // low 6 bits
	Test     bool  // T bit
	Negative bool  // P/N bit; true rejects the activation/command it answers
	Origin   uint8 // originator address, 0 if unused
}

// Header is the fixed 6-octet ASDU envelope.
type Header struct {
	Type          TypeID
	SQ            bool // true: objects share one base address, sequentially incremented
	Count         int  // number of information objects, 1..127
	COT           COT
	CommonAddress uint16
}

// ASDU is a fully decoded application service data unit: its header plus
// every information object it carries.
type ASDU struct {
	Header  Header
	Objects []Object
}

// DecodeHeader parses the fixed 6-octet envelope from the front of data.
func DecodeHeader(data []byte) (Header, []byte, error) {
	if len(data) < HeaderLength {
		return Header{}, nil, fmt.Errorf("%w: need %d bytes, got %d", ErrInvalidASDU, HeaderLength, len(data))
	}
	vsq := data[1]
	h := Header{
		Type:  TypeID(data[0]),
		SQ:    vsq&0x80 != 0,
		Count: int(vsq & 0x7F),
		COT: COT{
			Cause:    data[2] & 0x3F,
			Test:     data[2]&0x80 != 0,
			Negative: data[2]&0x40 != 0,
			Origin:   data[3],
		},
		CommonAddress: binary.LittleEndian.Uint16(data[4:6]),
	}
	if h.Count == 0 {
		return Header{}, nil, fmt.Errorf("%w: object count is zero", ErrInvalidASDU)
	}
	return h, data[HeaderLength:], nil
}

// EncodeHeader writes h's fixed 6 octets.
func EncodeHeader(h Header) []byte {
	b := make([]byte, HeaderLength)
	b[0] = byte(h.Type)
	vsq := byte(h.Count & 0x7F)
	if h.SQ {
		vsq |= 0x80
	}
	b[1] = vsq
	cot := h.COT.Cause & 0x3F
	if h.COT.Test {
		cot |= 0x80
	}
	if h.COT.Negative {
		cot |= 0x40
	}
	b[2] = cot
	b[3] = h.COT.Origin
	binary.LittleEndian.PutUint16(b[4:6], h.CommonAddress)
	return b
}

// Decode parses a complete ASDU (header plus objects) from data. data must
// contain exactly one ASDU with no trailing bytes.
func Decode(data []byte) (ASDU, error) {
	h, body, err := DecodeHeader(data)
	if err != nil {
		return ASDU{}, err
	}

	objs := make([]Object, 0, h.Count)
	if h.SQ {
		if len(body) < 3 {
			return ASDU{}, fmt.Errorf("%w: missing base address", ErrInvalidASDU)
		}
		base := InformationObjectAddress(body[0]) | InformationObjectAddress(body[1])<<8 | InformationObjectAddress(body[2])<<16
		body = body[3:]
		for i := 0; i < h.Count; i++ {
			v, n, err := decodeValue(h.Type, body)
			if err != nil {
				return ASDU{}, err
			}
			objs = append(objs, objectFromHeader(h, base+InformationObjectAddress(i), v))
			body = body[n:]
		}
	} else {
		for i := 0; i < h.Count; i++ {
			if len(body) < 3 {
				return ASDU{}, fmt.Errorf("%w: missing address for object %d", ErrInvalidASDU, i)
			}
			addr := InformationObjectAddress(body[0]) | InformationObjectAddress(body[1])<<8 | InformationObjectAddress(body[2])<<16
			body = body[3:]
			v, n, err := decodeValue(h.Type, body)
			if err != nil {
				return ASDU{}, err
			}
			objs = append(objs, objectFromHeader(h, addr, v))
			body = body[n:]
		}
	}
	if len(body) != 0 {
		return ASDU{}, fmt.Errorf("%w: %d trailing byte(s)", ErrInvalidASDU, len(body))
	}
	return ASDU{Header: h, Objects: objs}, nil
}

// Encode serializes a into its wire bytes. All Objects must share the same
// TypeID as a.Header.Type; for SQ=1 their addresses must be consecutive
// starting at Objects[0].Address.
func Encode(a ASDU) ([]byte, error) {
	if len(a.Objects) != a.Header.Count {
		return nil, fmt.Errorf("%w: header count %d but %d objects given", ErrInvalidASDU, a.Header.Count, len(a.Objects))
	}
	for _, o := range a.Objects {
		if o.Value.TypeID() != a.Header.Type {
			return nil, fmt.Errorf("%w: object type %s does not match header type %s", ErrInvalidASDU, o.Value.TypeID(), a.Header.Type)
		}
	}

	out := EncodeHeader(a.Header)
	if a.Header.SQ {
		if len(a.Objects) == 0 {
			return nil, fmt.Errorf("%w: SQ=1 requires at least one object", ErrInvalidASDU)
		}
		out = append(out, addr3(a.Objects[0].Address)...)
		for i, o := range a.Objects {
			want := a.Objects[0].Address + InformationObjectAddress(i)
			if o.Address != want {
				return nil, fmt.Errorf("%w: SQ=1 address %d out of sequence, want %d", ErrInvalidASDU, o.Address, want)
			}
			body, err := encodeValue(o.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, body...)
		}
	} else {
		for _, o := range a.Objects {
			out = append(out, addr3(o.Address)...)
			body, err := encodeValue(o.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, body...)
		}
	}
	return out, nil
}

// objectFromHeader denormalizes h's CA/Cause/P-N/Test onto one decoded
// Object, per Object's documented per-object addressing model.
func objectFromHeader(h Header, addr InformationObjectAddress, v Value) Object {
	return Object{
		Address:  addr,
		Value:    v,
		CA:       h.CommonAddress,
		Cause:    h.COT.Cause,
		Negative: h.COT.Negative,
		Test:     h.COT.Test,
	}
}

func addr3(a InformationObjectAddress) []byte {
	return []byte{byte(a), byte(a >> 8), byte(a >> 16)}
}

func need(body []byte, n int) error {
	if len(body) < n {
		return fmt.Errorf("%w: need %d bytes, got %d", ErrShortObject, n, len(body))
	}
	return nil
}

// decodeValue decodes one information object body (everything after the
// address) for TypeID t, returning the value and how many bytes it
// consumed.
func decodeValue(t TypeID, body []byte) (Value, int, error) {
	switch t {
	case MSpNa1, MSpTb1:
		if err := need(body, 1); err != nil {
			return nil, 0, err
		}
		v := SinglePoint{On: body[0]&0x01 != 0, Quality: parseQualityBits(body[0], false)}
		if t == MSpTb1 {
			ts, err := DecodeCP56Time2a(body[1:])
			if err != nil {
				return nil, 0, err
			}
			v.Time = &ts
			return v, 8, nil
		}
		return v, 1, nil

	case MDpNa1, MDpTb1:
		if err := need(body, 1); err != nil {
			return nil, 0, err
		}
		v := DoublePoint{State: DoublePointState(body[0] & 0x03), Quality: parseQualityBits(body[0], false)}
		if t == MDpTb1 {
			ts, err := DecodeCP56Time2a(body[1:])
			if err != nil {
				return nil, 0, err
			}
			v.Time = &ts
			return v, 8, nil
		}
		return v, 1, nil

	case MStNa1, MStTb1:
		if err := need(body, 2); err != nil {
			return nil, 0, err
		}
		raw := body[0] & 0x7F
		if raw&0x40 != 0 {
			raw |= 0x80 // sign-extend the 7-bit two's complement value
		}
		v := StepPosition{Value: int8(raw), Transient: body[0]&0x80 != 0, Quality: parseQualityBits(body[1], true)}
		if t == MStTb1 {
			ts, err := DecodeCP56Time2a(body[2:])
			if err != nil {
				return nil, 0, err
			}
			v.Time = &ts
			return v, 9, nil
		}
		return v, 2, nil

	case MBoNa1, MBoTb1:
		if err := need(body, 5); err != nil {
			return nil, 0, err
		}
		v := BitString32{Bits: binary.LittleEndian.Uint32(body[0:4]), Quality: parseQualityBits(body[4], true)}
		if t == MBoTb1 {
			ts, err := DecodeCP56Time2a(body[5:])
			if err != nil {
				return nil, 0, err
			}
			v.Time = &ts
			return v, 12, nil
		}
		return v, 5, nil

	case MMeNd1:
		if err := need(body, 2); err != nil {
			return nil, 0, err
		}
		return Normalized{Value: int16(binary.LittleEndian.Uint16(body[0:2])), HasQuality: false}, 2, nil

	case MMeNa1, MMeTd1:
		if err := need(body, 3); err != nil {
			return nil, 0, err
		}
		v := Normalized{Value: int16(binary.LittleEndian.Uint16(body[0:2])), Quality: parseQualityBits(body[2], true), HasQuality: true}
		if t == MMeTd1 {
			ts, err := DecodeCP56Time2a(body[3:])
			if err != nil {
				return nil, 0, err
			}
			v.Time = &ts
			return v, 10, nil
		}
		return v, 3, nil

	case MMeNb1, MMeTe1:
		if err := need(body, 3); err != nil {
			return nil, 0, err
		}
		v := Scaled{Value: int16(binary.LittleEndian.Uint16(body[0:2])), Quality: parseQualityBits(body[2], true)}
		if t == MMeTe1 {
			ts, err := DecodeCP56Time2a(body[3:])
			if err != nil {
				return nil, 0, err
			}
			v.Time = &ts
			return v, 10, nil
		}
		return v, 3, nil

	case MMeNc1, MMeTf1:
		if err := need(body, 5); err != nil {
			return nil, 0, err
		}
		v := Short{Value: math.Float32frombits(binary.LittleEndian.Uint32(body[0:4])), Quality: parseQualityBits(body[4], true)}
		if t == MMeTf1 {
			ts, err := DecodeCP56Time2a(body[5:])
			if err != nil {
				return nil, 0, err
			}
			v.Time = &ts
			return v, 12, nil
		}
		return v, 5, nil

	case MItNa1, MItTb1:
		if err := need(body, 5); err != nil {
			return nil, 0, err
		}
		flags := body[4]
		v := IntegratedTotals{
			Value:       int32(binary.LittleEndian.Uint32(body[0:4])),
			SequenceNum: flags & 0x1F,
			CarryOver:   flags&0x20 != 0,
			Adjusted:    flags&0x40 != 0,
			Invalid:     flags&0x80 != 0,
		}
		if t == MItTb1 {
			ts, err := DecodeCP56Time2a(body[5:])
			if err != nil {
				return nil, 0, err
			}
			v.Time = &ts
			return v, 12, nil
		}
		return v, 5, nil

	case MPsNa1:
		if err := need(body, 5); err != nil {
			return nil, 0, err
		}
		return PackedSinglePointChange{
			States:  binary.LittleEndian.Uint16(body[0:2]),
			Changes: binary.LittleEndian.Uint16(body[2:4]),
			Quality: parseQualityBits(body[4], true),
		}, 5, nil

	case MEpTd1:
		if err := need(body, 10); err != nil {
			return nil, 0, err
		}
		f := body[0]
		elapsed, err := DecodeCP16Time2a(body[1:3])
		if err != nil {
			return nil, 0, err
		}
		ts, err := DecodeCP56Time2a(body[3:10])
		if err != nil {
			return nil, 0, err
		}
		return ProtectionEvent{
			State:          ProtectionEventState(f & 0x03),
			ElapsedInvalid: f&0x08 != 0,
			Blocked:        f&0x10 != 0,
			Substituted:    f&0x20 != 0,
			NotTopical:     f&0x40 != 0,
			Invalid:        f&0x80 != 0,
			Elapsed:        elapsed,
			Time:           ts,
		}, 10, nil

	case MEpTe1:
		if err := need(body, 11); err != nil {
			return nil, 0, err
		}
		spe, f := body[0], body[1]
		elapsed, err := DecodeCP16Time2a(body[2:4])
		if err != nil {
			return nil, 0, err
		}
		ts, err := DecodeCP56Time2a(body[4:11])
		if err != nil {
			return nil, 0, err
		}
		return ProtectionStartEvents{
			General: spe&0x01 != 0, L1: spe&0x02 != 0, L2: spe&0x04 != 0, L3: spe&0x08 != 0,
			ReverseDirection: spe&0x10 != 0,
			ElapsedInvalid:   f&0x08 != 0, Blocked: f&0x10 != 0, Substituted: f&0x20 != 0,
			NotTopical: f&0x40 != 0, Invalid: f&0x80 != 0,
			Elapsed: elapsed, Time: ts,
		}, 11, nil

	case MEpTf1:
		if err := need(body, 11); err != nil {
			return nil, 0, err
		}
		oci, f := body[0], body[1]
		elapsed, err := DecodeCP16Time2a(body[2:4])
		if err != nil {
			return nil, 0, err
		}
		ts, err := DecodeCP56Time2a(body[4:11])
		if err != nil {
			return nil, 0, err
		}
		return ProtectionOutputCircuit{
			General: oci&0x01 != 0, L1: oci&0x02 != 0, L2: oci&0x04 != 0, L3: oci&0x08 != 0,
			ElapsedInvalid: f&0x08 != 0, Blocked: f&0x10 != 0, Substituted: f&0x20 != 0,
			NotTopical: f&0x40 != 0, Invalid: f&0x80 != 0,
			Elapsed: elapsed, Time: ts,
		}, 11, nil

	case MEiNa1:
		if err := need(body, 1); err != nil {
			return nil, 0, err
		}
		return EndOfInitialisation{Reason: InitializationReason(body[0] & 0x7F), LocalParamChange: body[0]&0x80 != 0}, 1, nil

	case CScNa1, CScTa1:
		if err := need(body, 1); err != nil {
			return nil, 0, err
		}
		v := SingleCommand{On: body[0]&0x01 != 0, QU: QualifierOfCommand((body[0] >> 2) & 0x1F), Select: body[0]&0x80 != 0}
		if t == CScTa1 {
			ts, err := DecodeCP56Time2a(body[1:])
			if err != nil {
				return nil, 0, err
			}
			v.Time = &ts
			return v, 8, nil
		}
		return v, 1, nil

	case CDcNa1, CDcTa1:
		if err := need(body, 1); err != nil {
			return nil, 0, err
		}
		v := DoubleCommand{State: DoublePointState(body[0] & 0x03), QU: QualifierOfCommand((body[0] >> 2) & 0x1F), Select: body[0]&0x80 != 0}
		if t == CDcTa1 {
			ts, err := DecodeCP56Time2a(body[1:])
			if err != nil {
				return nil, 0, err
			}
			v.Time = &ts
			return v, 8, nil
		}
		return v, 1, nil

	case CRcNa1, CRcTa1:
		if err := need(body, 1); err != nil {
			return nil, 0, err
		}
		v := StepCommand{Direction: StepCommandDirection(body[0] & 0x03), QU: QualifierOfCommand((body[0] >> 2) & 0x1F), Select: body[0]&0x80 != 0}
		if t == CRcTa1 {
			ts, err := DecodeCP56Time2a(body[1:])
			if err != nil {
				return nil, 0, err
			}
			v.Time = &ts
			return v, 8, nil
		}
		return v, 1, nil

	case CSeNa1, CSeTa1:
		if err := need(body, 3); err != nil {
			return nil, 0, err
		}
		v := SetpointNormalized{Value: int16(binary.LittleEndian.Uint16(body[0:2])), Qualifier: body[2] & 0x7F, Select: body[2]&0x80 != 0}
		if t == CSeTa1 {
			ts, err := DecodeCP56Time2a(body[3:])
			if err != nil {
				return nil, 0, err
			}
			v.Time = &ts
			return v, 10, nil
		}
		return v, 3, nil

	case CSeNb1, CSeTb1:
		if err := need(body, 3); err != nil {
			return nil, 0, err
		}
		v := SetpointScaled{Value: int16(binary.LittleEndian.Uint16(body[0:2])), Qualifier: body[2] & 0x7F, Select: body[2]&0x80 != 0}
		if t == CSeTb1 {
			ts, err := DecodeCP56Time2a(body[3:])
			if err != nil {
				return nil, 0, err
			}
			v.Time = &ts
			return v, 10, nil
		}
		return v, 3, nil

	case CSeNc1, CSeTc1:
		if err := need(body, 5); err != nil {
			return nil, 0, err
		}
		v := SetpointShort{Value: math.Float32frombits(binary.LittleEndian.Uint32(body[0:4])), Qualifier: body[4] & 0x7F, Select: body[4]&0x80 != 0}
		if t == CSeTc1 {
			ts, err := DecodeCP56Time2a(body[5:])
			if err != nil {
				return nil, 0, err
			}
			v.Time = &ts
			return v, 12, nil
		}
		return v, 5, nil

	case CIcNa1:
		if err := need(body, 1); err != nil {
			return nil, 0, err
		}
		return GeneralInterrogation{QOI: body[0]}, 1, nil

	case CCiNa1:
		if err := need(body, 1); err != nil {
			return nil, 0, err
		}
		return CounterInterrogation{RQT: body[0] & 0x3F, Freeze: (body[0] >> 6) & 0x03}, 1, nil

	case CRdNa1:
		return ReadCommand{}, 0, nil

	case CCsNa1:
		if err := need(body, 7); err != nil {
			return nil, 0, err
		}
		ts, err := DecodeCP56Time2a(body)
		if err != nil {
			return nil, 0, err
		}
		return ClockSync{Time: ts}, 7, nil

	case CRpNa1:
		if err := need(body, 1); err != nil {
			return nil, 0, err
		}
		return ResetProcess{QRP: body[0]}, 1, nil

	case CTsTa1:
		if err := need(body, 9); err != nil {
			return nil, 0, err
		}
		ts, err := DecodeCP56Time2a(body[2:9])
		if err != nil {
			return nil, 0, err
		}
		return TestCommand{FixedTestBits: binary.LittleEndian.Uint16(body[0:2]), Time: ts}, 9, nil

	case PMeNa1:
		if err := need(body, 3); err != nil {
			return nil, 0, err
		}
		return ParameterNormalized{Value: int16(binary.LittleEndian.Uint16(body[0:2])), Kind: body[2] & 0x3F, InOperation: body[2]&0x40 != 0, LocalParamChange: body[2]&0x80 != 0}, 3, nil

	case PMeNb1:
		if err := need(body, 3); err != nil {
			return nil, 0, err
		}
		return ParameterScaled{Value: int16(binary.LittleEndian.Uint16(body[0:2])), Kind: body[2] & 0x3F, InOperation: body[2]&0x40 != 0, LocalParamChange: body[2]&0x80 != 0}, 3, nil

	case PMeNc1:
		if err := need(body, 5); err != nil {
			return nil, 0, err
		}
		return ParameterShort{Value: math.Float32frombits(binary.LittleEndian.Uint32(body[0:4])), Kind: body[4] & 0x3F, InOperation: body[4]&0x40 != 0, LocalParamChange: body[4]&0x80 != 0}, 5, nil

	case PAcNa1:
		if err := need(body, 1); err != nil {
			return nil, 0, err
		}
		return ParameterActivation{QPA: body[0]}, 1, nil
	}

	return nil, 0, fmt.Errorf("%w: %s", ErrUnknownType, t)
}

// encodeValue serializes an object body (excluding its address) for
// whatever TypeID v.TypeID() reports.
func encodeValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case SinglePoint:
		b := qualityBits(val.Quality, b2u8(val.On))
		if val.Time != nil {
			ts := EncodeCP56Time2a(*val.Time)
			return append([]byte{b}, ts[:]...), nil
		}
		return []byte{b}, nil

	case DoublePoint:
		b := qualityBits(val.Quality, byte(val.State)&0x03)
		if val.Time != nil {
			ts := EncodeCP56Time2a(*val.Time)
			return append([]byte{b}, ts[:]...), nil
		}
		return []byte{b}, nil

	case StepPosition:
		if val.Value < -64 || val.Value > 63 {
			return nil, fmt.Errorf("%w: step position %d out of range", ErrEncodeOverflow, val.Value)
		}
		b0 := byte(val.Value) & 0x7F
		if val.Transient {
			b0 |= 0x80
		}
		b1 := qualityBits(val.Quality, b2u8(val.Quality.Overflow))
		out := []byte{b0, b1}
		if val.Time != nil {
			ts := EncodeCP56Time2a(*val.Time)
			out = append(out, ts[:]...)
		}
		return out, nil

	case BitString32:
		out := make([]byte, 5)
		binary.LittleEndian.PutUint32(out[0:4], val.Bits)
		out[4] = qualityBits(val.Quality, b2u8(val.Quality.Overflow))
		if val.Time != nil {
			ts := EncodeCP56Time2a(*val.Time)
			out = append(out, ts[:]...)
		}
		return out, nil

	case Normalized:
		out := make([]byte, 2)
		binary.LittleEndian.PutUint16(out, uint16(val.Value))
		if !val.HasQuality {
			return out, nil
		}
		out = append(out, qualityBits(val.Quality, b2u8(val.Quality.Overflow)))
		if val.Time != nil {
			ts := EncodeCP56Time2a(*val.Time)
			out = append(out, ts[:]...)
		}
		return out, nil

	case Scaled:
		out := make([]byte, 2)
		binary.LittleEndian.PutUint16(out, uint16(val.Value))
		out = append(out, qualityBits(val.Quality, b2u8(val.Quality.Overflow)))
		if val.Time != nil {
			ts := EncodeCP56Time2a(*val.Time)
			out = append(out, ts[:]...)
		}
		return out, nil

	case Short:
		out := make([]byte, 4)
		binary.LittleEndian.PutUint32(out, math.Float32bits(val.Value))
		out = append(out, qualityBits(val.Quality, b2u8(val.Quality.Overflow)))
		if val.Time != nil {
			ts := EncodeCP56Time2a(*val.Time)
			out = append(out, ts[:]...)
		}
		return out, nil

	case IntegratedTotals:
		out := make([]byte, 4)
		binary.LittleEndian.PutUint32(out, uint32(val.Value))
		flags := val.SequenceNum & 0x1F
		if val.CarryOver {
			flags |= 0x20
		}
		if val.Adjusted {
			flags |= 0x40
		}
		if val.Invalid {
			flags |= 0x80
		}
		out = append(out, flags)
		if val.Time != nil {
			ts := EncodeCP56Time2a(*val.Time)
			out = append(out, ts[:]...)
		}
		return out, nil

	case PackedSinglePointChange:
		out := make([]byte, 4)
		binary.LittleEndian.PutUint16(out[0:2], val.States)
		binary.LittleEndian.PutUint16(out[2:4], val.Changes)
		out = append(out, qualityBits(val.Quality, b2u8(val.Quality.Overflow)))
		return out, nil

	case ProtectionEvent:
		f := byte(val.State) & 0x03
		if val.ElapsedInvalid {
			f |= 0x08
		}
		if val.Blocked {
			f |= 0x10
		}
		if val.Substituted {
			f |= 0x20
		}
		if val.NotTopical {
			f |= 0x40
		}
		if val.Invalid {
			f |= 0x80
		}
		el := EncodeCP16Time2a(val.Elapsed)
		ts := EncodeCP56Time2a(val.Time)
		out := []byte{f}
		out = append(out, el[:]...)
		out = append(out, ts[:]...)
		return out, nil

	case ProtectionStartEvents:
		spe := boolBits(val.General, val.L1, val.L2, val.L3, val.ReverseDirection)
		f := packFlags(val.ElapsedInvalid, val.Blocked, val.Substituted, val.NotTopical, val.Invalid)
		el := EncodeCP16Time2a(val.Elapsed)
		ts := EncodeCP56Time2a(val.Time)
		out := []byte{spe, f}
		out = append(out, el[:]...)
		out = append(out, ts[:]...)
		return out, nil

	case ProtectionOutputCircuit:
		oci := boolBits(val.General, val.L1, val.L2, val.L3, false)
		f := packFlags(val.ElapsedInvalid, val.Blocked, val.Substituted, val.NotTopical, val.Invalid)
		el := EncodeCP16Time2a(val.Elapsed)
		ts := EncodeCP56Time2a(val.Time)
		out := []byte{oci, f}
		out = append(out, el[:]...)
		out = append(out, ts[:]...)
		return out, nil

	case EndOfInitialisation:
		b := byte(val.Reason) & 0x7F
		if val.LocalParamChange {
			b |= 0x80
		}
		return []byte{b}, nil

	case SingleCommand:
		b := b2u8(val.On) | byte(val.QU)<<2
		if val.Select {
			b |= 0x80
		}
		if val.Time != nil {
			ts := EncodeCP56Time2a(*val.Time)
			return append([]byte{b}, ts[:]...), nil
		}
		return []byte{b}, nil

	case DoubleCommand:
		b := byte(val.State)&0x03 | byte(val.QU)<<2
		if val.Select {
			b |= 0x80
		}
		if val.Time != nil {
			ts := EncodeCP56Time2a(*val.Time)
			return append([]byte{b}, ts[:]...), nil
		}
		return []byte{b}, nil

	case StepCommand:
		b := byte(val.Direction)&0x03 | byte(val.QU)<<2
		if val.Select {
			b |= 0x80
		}
		if val.Time != nil {
			ts := EncodeCP56Time2a(*val.Time)
			return append([]byte{b}, ts[:]...), nil
		}
		return []byte{b}, nil

	case SetpointNormalized:
		out := make([]byte, 2)
		binary.LittleEndian.PutUint16(out, uint16(val.Value))
		q := val.Qualifier & 0x7F
		if val.Select {
			q |= 0x80
		}
		out = append(out, q)
		if val.Time != nil {
			ts := EncodeCP56Time2a(*val.Time)
			out = append(out, ts[:]...)
		}
		return out, nil

	case SetpointScaled:
		out := make([]byte, 2)
		binary.LittleEndian.PutUint16(out, uint16(val.Value))
		q := val.Qualifier & 0x7F
		if val.Select {
			q |= 0x80
		}
		out = append(out, q)
		if val.Time != nil {
			ts := EncodeCP56Time2a(*val.Time)
			out = append(out, ts[:]...)
		}
		return out, nil

	case SetpointShort:
		out := make([]byte, 4)
		binary.LittleEndian.PutUint32(out, math.Float32bits(val.Value))
		q := val.Qualifier & 0x7F
		if val.Select {
			q |= 0x80
		}
		out = append(out, q)
		if val.Time != nil {
			ts := EncodeCP56Time2a(*val.Time)
			out = append(out, ts[:]...)
		}
		return out, nil

	case GeneralInterrogation:
		return []byte{val.QOI}, nil

	case CounterInterrogation:
		return []byte{(val.RQT & 0x3F) | (val.Freeze&0x03)<<6}, nil

	case ReadCommand:
		return nil, nil

	case ClockSync:
		ts := EncodeCP56Time2a(val.Time)
		return ts[:], nil

	case ResetProcess:
		return []byte{val.QRP}, nil

	case TestCommand:
		out := make([]byte, 2)
		binary.LittleEndian.PutUint16(out, val.FixedTestBits)
		ts := EncodeCP56Time2a(val.Time)
		return append(out, ts[:]...), nil

	case ParameterNormalized:
		out := make([]byte, 2)
		binary.LittleEndian.PutUint16(out, uint16(val.Value))
		b := val.Kind & 0x3F
		if val.InOperation {
			b |= 0x40
		}
		if val.LocalParamChange {
			b |= 0x80
		}
		return append(out, b), nil

	case ParameterScaled:
		out := make([]byte, 2)
		binary.LittleEndian.PutUint16(out, uint16(val.Value))
		b := val.Kind & 0x3F
		if val.InOperation {
			b |= 0x40
		}
		if val.LocalParamChange {
			b |= 0x80
		}
		return append(out, b), nil

	case ParameterShort:
		out := make([]byte, 4)
		binary.LittleEndian.PutUint32(out, math.Float32bits(val.Value))
		b := val.Kind & 0x3F
		if val.InOperation {
			b |= 0x40
		}
		if val.LocalParamChange {
			b |= 0x80
		}
		return append(out, b), nil

	case ParameterActivation:
		return []byte{val.QPA}, nil
	}

	return nil, fmt.Errorf("%w: %T", ErrUnknownType, v)
}

func b2u8(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func packFlags(elapsedInvalid, blocked, substituted, notTopical, invalid bool) byte {
	var f byte
	if elapsedInvalid {
		f |= 0x08
	}
	if blocked {
		f |= 0x10
	}
	if substituted {
		f |= 0x20
	}
	if notTopical {
		f |= 0x40
	}
	if invalid {
		f |= 0x80
	}
	return f
}

func boolBits(b0, b1, b2, b3, b4 bool) byte {
	var b byte
	if b0 {
		b |= 0x01
	}
	if b1 {
		b |= 0x02
	}
	if b2 {
		b |= 0x04
	}
	if b3 {
		b |= 0x08
	}
	if b4 {
		b |= 0x10
	}
	return b
}
