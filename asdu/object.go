package asdu

import "errors"

var (
	// ErrShortObject is returned when an information object body is
	// truncated for its type.
	ErrShortObject = errors.New("asdu: information object body too short")
	// ErrUnknownType is returned by Decode/Encode for a TypeID outside the
	// closed set this client understands.
	ErrUnknownType = errors.New("asdu: unknown or unsupported type identification")
	// ErrEncodeOverflow is returned when encoding a value that does not fit
	// its wire representation (e.g. a StepPosition value outside -64..63).
	ErrEncodeOverflow = errors.New("asdu: value out of range for its wire encoding")
)

// InformationObjectAddress is the 3-octet object address (§3), carried
// little-endian on the wire and always returned here as a plain integer.
type InformationObjectAddress uint32

// Object pairs one information object address with its decoded value, plus
// the owning ASDU's addressing and cause fields denormalized onto it: 24-bit
// IOA (Address), Common Address (CA), Cause, the P/N negative-confirm flag,
// and the T test flag. A single ASDU carries one or more Objects sharing the
// same TypeID, CA, Cause, Negative and Test — Decode copies the header's
// values onto every Object it produces so a caller holding just the Object
// (e.g. a pending-command correlation key, or a command builder) never needs
// to also thread the enclosing Header around. Encode ignores Cause/Negative/
// Test (the header alone controls those on the wire) but SendCommand honors
// a nonzero CA as the destination station, falling back to the configured
// default only when CA is left zero.
type Object struct {
	Address  InformationObjectAddress
	Value    Value
	CA       uint16
	Cause    uint8
	Negative bool
	Test     bool
}

// Value is implemented by every decoded object body. TypeID reports which
// wire type produced (or should produce) the value, letting Encode dispatch
// without a second parallel argument.
type Value interface {
	TypeID() TypeID
}

// --- monitor-direction values (process information) ---

// SinglePoint is M_SP_NA_1 / M_SP_TB_1.
type SinglePoint struct {
	On      bool
	Quality Quality
	Time    *CP56Time2a // nil for M_SP_NA_1
}

func (v SinglePoint) TypeID() TypeID {
	if v.Time != nil {
		return MSpTb1
	}
	return MSpNa1
}

// DoublePointState is the two-bit DPI value: 0 intermediate, 1 off, 2 on, 3
// indeterminate.
type DoublePointState uint8

const (
	DoubleIntermediate DoublePointState = 0
	DoubleOff          DoublePointState = 1
	DoubleOn           DoublePointState = 2
	DoubleIndeterminate DoublePointState = 3
)

// DoublePoint is M_DP_NA_1 / M_DP_TB_1.
type DoublePoint struct {
	State   DoublePointState
	Quality Quality
	Time    *CP56Time2a
}

func (v DoublePoint) TypeID() TypeID {
	if v.Time != nil {
		return MDpTb1
	}
	return MDpNa1
}

// StepPosition is M_ST_NA_1 / M_ST_TB_1.
type StepPosition struct {
	Value     int8 // -64..63
	Transient bool
	Quality   Quality
	Time      *CP56Time2a
}

func (v StepPosition) TypeID() TypeID {
	if v.Time != nil {
		return MStTb1
	}
	return MStNa1
}

// BitString32 is M_BO_NA_1 / M_BO_TB_1.
type BitString32 struct {
	Bits    uint32
	Quality Quality
	Time    *CP56Time2a
}

func (v BitString32) TypeID() TypeID {
	if v.Time != nil {
		return MBoTb1
	}
	return MBoNa1
}

// Normalized is M_ME_NA_1 / M_ME_TD_1 / M_ME_ND_1 (raw signed fraction,
// full scale ±1 at ±32767).
type Normalized struct {
	Value     int16
	Quality   Quality
	HasQuality bool // false only for M_ME_ND_1
	Time      *CP56Time2a
}

func (v Normalized) TypeID() TypeID {
	if v.Time != nil {
		return MMeTd1
	}
	if !v.HasQuality {
		return MMeNd1
	}
	return MMeNa1
}

// Scaled is M_ME_NB_1 / M_ME_TE_1.
type Scaled struct {
	Value   int16
	Quality Quality
	Time    *CP56Time2a
}

func (v Scaled) TypeID() TypeID {
	if v.Time != nil {
		return MMeTe1
	}
	return MMeNb1
}

// Short is M_ME_NC_1 / M_ME_TF_1 (IEEE 754 single precision).
type Short struct {
	Value   float32
	Quality Quality
	Time    *CP56Time2a
}

func (v Short) TypeID() TypeID {
	if v.Time != nil {
		return MMeTf1
	}
	return MMeNc1
}

// IntegratedTotals is M_IT_NA_1 / M_IT_TB_1 (binary counter reading).
type IntegratedTotals struct {
	Value        int32
	SequenceNum  uint8 // sq, 0..31
	CarryOver    bool
	Adjusted     bool // ca: counter was adjusted
	Invalid      bool
	Time         *CP56Time2a
}

func (v IntegratedTotals) TypeID() TypeID {
	if v.Time != nil {
		return MItTb1
	}
	return MItNa1
}

// PackedSinglePointChange is M_PS_NA_1: 16 single points and their
// change-detected flags, per original_source's struct iec_stcd (both fields
// are 16-bit, not 32).
type PackedSinglePointChange struct {
	States  uint16
	Changes uint16
	Quality Quality
}

func (v PackedSinglePointChange) TypeID() TypeID { return MPsNa1 }

// ProtectionEventState is the two-bit ES value of M_EP_TD_1.
type ProtectionEventState uint8

const (
	ProtectionOff           ProtectionEventState = 0
	ProtectionOn            ProtectionEventState = 1
	ProtectionIndeterminate ProtectionEventState = 2
)

// ProtectionEvent is M_EP_TD_1.
type ProtectionEvent struct {
	State          ProtectionEventState
	ElapsedInvalid bool
	Blocked        bool
	Substituted    bool
	NotTopical     bool
	Invalid        bool
	Elapsed        CP16Time2a
	Time           CP56Time2a
}

func (v ProtectionEvent) TypeID() TypeID { return MEpTd1 }

// ProtectionStartEvents is M_EP_TE_1: the packed SPE start-event flags.
type ProtectionStartEvents struct {
	General          bool
	L1, L2, L3        bool
	ReverseDirection bool
	ElapsedInvalid   bool
	Blocked          bool
	Substituted      bool
	NotTopical       bool
	Invalid          bool
	Elapsed          CP16Time2a
	Time             CP56Time2a
}

func (v ProtectionStartEvents) TypeID() TypeID { return MEpTe1 }

// ProtectionOutputCircuit is M_EP_TF_1: the packed OCI output-circuit flags.
type ProtectionOutputCircuit struct {
	General        bool
	L1, L2, L3      bool
	ElapsedInvalid bool
	Blocked        bool
	Substituted    bool
	NotTopical     bool
	Invalid        bool
	Elapsed        CP16Time2a
	Time           CP56Time2a
}

func (v ProtectionOutputCircuit) TypeID() TypeID { return MEpTf1 }

// InitializationReason is the COI octet of M_EI_NA_1. original_source's
// header does not define this type at all; the layout here follows the
// standard's COI convention: the cause in bits 0-6, and bit 7 set when
// initialisation followed a change of local parameters (LocalParamChange).
type InitializationReason uint8

// EndOfInitialisation is M_EI_NA_1.
type EndOfInitialisation struct {
	Reason           InitializationReason
	LocalParamChange bool
}

func (v EndOfInitialisation) TypeID() TypeID { return MEiNa1 }

// --- control-direction values (commands) ---

// QualifierOfCommand is the QU/QL 5..7 bit field commands carry alongside
// their select/execute flag.
type QualifierOfCommand uint8

// SingleCommand is C_SC_NA_1 / C_SC_TA_1.
type SingleCommand struct {
	On     bool
	QU     QualifierOfCommand
	Select bool
	Time   *CP56Time2a
}

func (v SingleCommand) TypeID() TypeID {
	if v.Time != nil {
		return CScTa1
	}
	return CScNa1
}

// DoubleCommand is C_DC_NA_1 / C_DC_TA_1.
type DoubleCommand struct {
	State  DoublePointState
	QU     QualifierOfCommand
	Select bool
	Time   *CP56Time2a
}

func (v DoubleCommand) TypeID() TypeID {
	if v.Time != nil {
		return CDcTa1
	}
	return CDcNa1
}

// StepCommandDirection is the two-bit RCS value of a step command.
type StepCommandDirection uint8

const (
	StepInvalid  StepCommandDirection = 0
	StepDecrease StepCommandDirection = 1
	StepIncrease StepCommandDirection = 2
)

// StepCommand is C_RC_NA_1 / C_RC_TA_1.
type StepCommand struct {
	Direction StepCommandDirection
	QU        QualifierOfCommand
	Select    bool
	Time      *CP56Time2a
}

func (v StepCommand) TypeID() TypeID {
	if v.Time != nil {
		return CRcTa1
	}
	return CRcNa1
}

// SetpointNormalized is C_SE_NA_1 / C_SE_TA_1.
type SetpointNormalized struct {
	Value      int16
	Qualifier  uint8 // 0..127
	Select     bool
	Time       *CP56Time2a
}

func (v SetpointNormalized) TypeID() TypeID {
	if v.Time != nil {
		return CSeTa1
	}
	return CSeNa1
}

// SetpointScaled is C_SE_NB_1 / C_SE_TB_1.
type SetpointScaled struct {
	Value     int16
	Qualifier uint8
	Select    bool
	Time      *CP56Time2a
}

func (v SetpointScaled) TypeID() TypeID {
	if v.Time != nil {
		return CSeTb1
	}
	return CSeNb1
}

// SetpointShort is C_SE_NC_1 / C_SE_TC_1.
type SetpointShort struct {
	Value     float32
	Qualifier uint8
	Select    bool
	Time      *CP56Time2a
}

func (v SetpointShort) TypeID() TypeID {
	if v.Time != nil {
		return CSeTc1
	}
	return CSeNc1
}

// GeneralInterrogation is C_IC_NA_1.
type GeneralInterrogation struct {
	QOI uint8
}

func (v GeneralInterrogation) TypeID() TypeID { return CIcNa1 }

// CounterInterrogation is C_CI_NA_1.
type CounterInterrogation struct {
	RQT   uint8 // request qualifier, 0..63
	Freeze uint8 // freeze/reset qualifier, 0..3
}

func (v CounterInterrogation) TypeID() TypeID { return CCiNa1 }

// ReadCommand is C_RD_NA_1. It carries no body beyond its object address.
type ReadCommand struct{}

func (v ReadCommand) TypeID() TypeID { return CRdNa1 }

// ClockSync is C_CS_NA_1.
type ClockSync struct {
	Time CP56Time2a
}

func (v ClockSync) TypeID() TypeID { return CCsNa1 }

// ResetProcess is C_RP_NA_1.
type ResetProcess struct {
	QRP uint8
}

func (v ResetProcess) TypeID() TypeID { return CRpNa1 }

// TestCommand is C_TS_TA_1.
type TestCommand struct {
	FixedTestBits uint16 // conventionally 0xAA55, echoed back unmodified
	Time          CP56Time2a
}

func (v TestCommand) TypeID() TypeID { return CTsTa1 }

// ParameterNormalized is P_ME_NA_1.
type ParameterNormalized struct {
	Value              int16
	Kind               uint8 // KPA: 1 threshold, 2 smoothing factor, 3 low limit, 4 high limit
	InOperation        bool
	LocalParamChange   bool
}

func (v ParameterNormalized) TypeID() TypeID { return PMeNa1 }

// ParameterScaled is P_ME_NB_1.
type ParameterScaled struct {
	Value            int16
	Kind             uint8
	InOperation      bool
	LocalParamChange bool
}

func (v ParameterScaled) TypeID() TypeID { return PMeNb1 }

// ParameterShort is P_ME_NC_1.
type ParameterShort struct {
	Value            float32
	Kind             uint8
	InOperation      bool
	LocalParamChange bool
}

func (v ParameterShort) TypeID() TypeID { return PMeNc1 }

// ParameterActivation is P_AC_NA_1.
type ParameterActivation struct {
	QPA uint8
}

func (v ParameterActivation) TypeID() TypeID { return PAcNa1 }
