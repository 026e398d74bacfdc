package asdu

import (
	"bytes"
	"testing"
)

func TestHeaderRoundtrip(t *testing.T) {
	h := Header{
		Type:  MSpNa1,
		SQ:    false,
		Count: 3,
		COT:   COT{Cause: CauseSpontaneous, Test: true, Negative: false, Origin: 7},
		CommonAddress: 0x1234,
	}
	data := EncodeHeader(h)
	got, rest, err := DecodeHeader(append(data, 0xAA))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != h {
		t.Fatalf("got %+v, want %+v", got, h)
	}
	if !bytes.Equal(rest, []byte{0xAA}) {
		t.Fatalf("unexpected remainder: % X", rest)
	}
}

func TestASDUSingleCommandRoundtrip(t *testing.T) {
	a := ASDU{
		Header: Header{Type: CScNa1, Count: 1, COT: COT{Cause: CauseActivation}, CommonAddress: 1},
		Objects: []Object{{
			Address: 100,
			Value:   SingleCommand{On: true, QU: 0, Select: true},
		}},
	}
	data, err := Encode(a)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Objects) != 1 || got.Objects[0].Address != 100 {
		t.Fatalf("got %+v", got)
	}
	sc, ok := got.Objects[0].Value.(SingleCommand)
	if !ok || !sc.On || !sc.Select {
		t.Fatalf("got %+v", got.Objects[0].Value)
	}
}

func TestDecodeDenormalizesHeaderOntoObjects(t *testing.T) {
	a := ASDU{
		Header: Header{Type: MSpNa1, Count: 1, COT: COT{Cause: CauseSpontaneous, Test: true, Negative: true}, CommonAddress: 42},
		Objects: []Object{{Address: 5, Value: SinglePoint{On: true}}},
	}
	data, err := Encode(a)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	obj := got.Objects[0]
	if obj.CA != 42 || obj.Cause != CauseSpontaneous || !obj.Negative || !obj.Test {
		t.Fatalf("expected header fields denormalized onto the object, got %+v", obj)
	}
}

func TestASDUSequencedMeasuredValues(t *testing.T) {
	// SQ=1: three consecutive scaled measured values sharing one base
	// address, as a general-interrogation response would send them.
	a := ASDU{
		Header: Header{Type: MMeNb1, SQ: true, Count: 3, COT: COT{Cause: CauseInro1}, CommonAddress: 1},
		Objects: []Object{
			{Address: 200, Value: Scaled{Value: -100, Quality: Quality{}}},
			{Address: 201, Value: Scaled{Value: 0, Quality: Quality{Invalid: true}}},
			{Address: 202, Value: Scaled{Value: 32767, Quality: Quality{Overflow: true}}},
		},
	}
	data, err := Encode(a)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Objects) != 3 {
		t.Fatalf("got %d objects", len(got.Objects))
	}
	for i, want := range a.Objects {
		if got.Objects[i].Address != want.Address {
			t.Fatalf("object %d: address got %d want %d", i, got.Objects[i].Address, want.Address)
		}
		if got.Objects[i].Value != want.Value {
			t.Fatalf("object %d: value got %+v want %+v", i, got.Objects[i].Value, want.Value)
		}
	}
}

func TestASDUTimeTaggedSinglePoint(t *testing.T) {
	ts := CP56Time2a{Millisecond: 1500, Minute: 15, Hour: 8, Day: 1, Month: 1, Year: 26}
	a := ASDU{
		Header: Header{Type: MSpTb1, Count: 1, COT: COT{Cause: CauseSpontaneous}, CommonAddress: 1},
		Objects: []Object{{Address: 5, Value: SinglePoint{On: true, Quality: Quality{NotTopical: true}, Time: &ts}}},
	}
	data, err := Encode(a)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	sp := got.Objects[0].Value.(SinglePoint)
	if !sp.On || !sp.Quality.NotTopical || sp.Time == nil || *sp.Time != ts {
		t.Fatalf("got %+v", sp)
	}
}

func TestASDUGeneralInterrogationCommand(t *testing.T) {
	a := ASDU{
		Header: Header{Type: CIcNa1, Count: 1, COT: COT{Cause: CauseActivation}, CommonAddress: 1},
		Objects: []Object{{Address: 0, Value: GeneralInterrogation{QOI: QOIStation}}},
	}
	data, err := Encode(a)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	gi := got.Objects[0].Value.(GeneralInterrogation)
	if gi.QOI != QOIStation {
		t.Fatalf("got %+v", gi)
	}
}

func TestASDUReadCommandHasNoBody(t *testing.T) {
	a := ASDU{
		Header: Header{Type: CRdNa1, Count: 1, COT: COT{Cause: CauseRequest}, CommonAddress: 1},
		Objects: []Object{{Address: 42, Value: ReadCommand{}}},
	}
	data, err := Encode(a)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(data) != HeaderLength+3 {
		t.Fatalf("expected header+address only, got %d bytes", len(data))
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Objects[0].Address != 42 {
		t.Fatalf("got %+v", got.Objects[0])
	}
}

func TestASDUUnknownTypeRejected(t *testing.T) {
	a := ASDU{
		Header:  Header{Type: TypeID(200), Count: 1, CommonAddress: 1},
		Objects: []Object{{Address: 1, Value: GeneralInterrogation{QOI: QOIStation}}},
	}
	if _, err := Encode(a); err == nil {
		t.Fatal("expected encode error for mismatched value/type")
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	a := ASDU{
		Header:  Header{Type: CIcNa1, Count: 1, COT: COT{Cause: CauseActivation}, CommonAddress: 1},
		Objects: []Object{{Address: 0, Value: GeneralInterrogation{QOI: QOIStation}}},
	}
	data, err := Encode(a)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	data = append(data, 0x00)
	if _, err := Decode(data); err == nil {
		t.Fatal("expected error for trailing byte")
	}
}

func TestDecodeRejectsZeroCount(t *testing.T) {
	h := EncodeHeader(Header{Type: MSpNa1, Count: 0, CommonAddress: 1})
	if _, err := Decode(h); err == nil {
		t.Fatal("expected error for zero object count")
	}
}
