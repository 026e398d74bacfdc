// Package asdu implements the closed set of IEC 60870-5-104 Application
// Service Data Unit type identifications this client understands: the
// 6-octet ASDU header, sequenced (SQ=1) and non-sequenced (SQ=0) object
// layouts, and the bit-exact per-type object bodies (§4.B).
package asdu

import "fmt"

// TypeID names the ~30 type identifications this client can decode and, for
// the outbound ones, encode.
type TypeID uint8

const (
	MSpNa1 TypeID = 1  // single point information
	MDpNa1 TypeID = 3  // double point information
	MStNa1 TypeID = 5  // step position information
	MBoNa1 TypeID = 7  // bitstring of 32 bit
	MMeNa1 TypeID = 9  // measured value, normalized
	MMeNb1 TypeID = 11 // measured value, scaled
	MMeNc1 TypeID = 13 // measured value, short floating point
	MItNa1 TypeID = 15 // integrated totals
	MPsNa1 TypeID = 20 // packed single point with status change detection
	MMeNd1 TypeID = 21 // measured value, normalized without quality

	MSpTb1 TypeID = 30 // single point information with CP56Time2a
	MDpTb1 TypeID = 31 // double point information with CP56Time2a
	MStTb1 TypeID = 32 // step position information with CP56Time2a
	MBoTb1 TypeID = 33 // bitstring of 32 bit with CP56Time2a
	MMeTd1 TypeID = 34 // measured value, normalized, with CP56Time2a
	MMeTe1 TypeID = 35 // measured value, scaled, with CP56Time2a
	MMeTf1 TypeID = 36 // measured value, short floating point, with CP56Time2a
	MItTb1 TypeID = 37 // integrated totals with CP56Time2a
	MEpTd1 TypeID = 38 // event of protection equipment with CP56Time2a
	MEpTe1 TypeID = 39 // packed start events of protection equipment with CP56Time2a
	MEpTf1 TypeID = 40 // packed output circuit information with CP56Time2a

	MEiNa1 TypeID = 70 // end of initialisation

	CScNa1 TypeID = 45 // single command
	CDcNa1 TypeID = 46 // double command
	CRcNa1 TypeID = 47 // regulating step command
	CSeNa1 TypeID = 48 // set-point command, normalized value
	CSeNb1 TypeID = 49 // set-point command, scaled value
	CSeNc1 TypeID = 50 // set-point command, short floating point value

	CScTa1 TypeID = 58 // single command with CP56Time2a
	CDcTa1 TypeID = 59 // double command with CP56Time2a
	CRcTa1 TypeID = 60 // regulating step command with CP56Time2a
	CSeTa1 TypeID = 61 // set-point command, normalized value, with CP56Time2a
	CSeTb1 TypeID = 62 // set-point command, scaled value, with CP56Time2a
	CSeTc1 TypeID = 63 // set-point command, short floating point, with CP56Time2a

	CIcNa1 TypeID = 100 // general interrogation command
	CCiNa1 TypeID = 101 // counter interrogation command
	CRdNa1 TypeID = 102 // read command
	CCsNa1 TypeID = 103 // clock synchronisation command
	CRpNa1 TypeID = 105 // reset process command
	CTsTa1 TypeID = 107 // test command with CP56Time2a

	PMeNa1 TypeID = 110 // parameter of measured value, normalized value
	PMeNb1 TypeID = 111 // parameter of measured value, scaled value
	PMeNc1 TypeID = 112 // parameter of measured value, short floating point
	PAcNa1 TypeID = 113 // parameter activation
)

func (t TypeID) String() string {
	if m, ok := mnemonics[t]; ok {
		return m
	}
	return fmt.Sprintf("TYPE_%d", uint8(t))
}

var mnemonics = map[TypeID]string{
	MSpNa1: "M_SP_NA_1", MDpNa1: "M_DP_NA_1", MStNa1: "M_ST_NA_1", MBoNa1: "M_BO_NA_1",
	MMeNa1: "M_ME_NA_1", MMeNb1: "M_ME_NB_1", MMeNc1: "M_ME_NC_1", MItNa1: "M_IT_NA_1",
	MPsNa1: "M_PS_NA_1", MMeNd1: "M_ME_ND_1",
	MSpTb1: "M_SP_TB_1", MDpTb1: "M_DP_TB_1", MStTb1: "M_ST_TB_1", MBoTb1: "M_BO_TB_1",
	MMeTd1: "M_ME_TD_1", MMeTe1: "M_ME_TE_1", MMeTf1: "M_ME_TF_1", MItTb1: "M_IT_TB_1",
	MEpTd1: "M_EP_TD_1", MEpTe1: "M_EP_TE_1", MEpTf1: "M_EP_TF_1",
	MEiNa1: "M_EI_NA_1",
	CScNa1: "C_SC_NA_1", CDcNa1: "C_DC_NA_1", CRcNa1: "C_RC_NA_1",
	CSeNa1: "C_SE_NA_1", CSeNb1: "C_SE_NB_1", CSeNc1: "C_SE_NC_1",
	CScTa1: "C_SC_TA_1", CDcTa1: "C_DC_TA_1", CRcTa1: "C_RC_TA_1",
	CSeTa1: "C_SE_TA_1", CSeTb1: "C_SE_TB_1", CSeTc1: "C_SE_TC_1",
	CIcNa1: "C_IC_NA_1", CCiNa1: "C_CI_NA_1", CRdNa1: "C_RD_NA_1",
	CCsNa1: "C_CS_NA_1", CRpNa1: "C_RP_NA_1", CTsTa1: "C_TS_TA_1",
	PMeNa1: "P_ME_NA_1", PMeNb1: "P_ME_NB_1", PMeNc1: "P_ME_NC_1", PAcNa1: "P_AC_NA_1",
}

// Cause of transmission codes (6-bit field of the COT octet).
const (
	CausePeriodic     uint8 = 1
	CauseBackground   uint8 = 2
	CauseSpontaneous  uint8 = 3
	CauseInitialized  uint8 = 4
	CauseRequest      uint8 = 5
	CauseActivation   uint8 = 6
	CauseActCon       uint8 = 7
	CauseDeactivation uint8 = 8
	CauseDeactCon     uint8 = 9
	CauseActTerm      uint8 = 10
	CauseRetRemote    uint8 = 11
	CauseRetLocal     uint8 = 12
	CauseFile         uint8 = 13
	CauseInrogen      uint8 = 20 // station interrogation (general)
	CauseInro1        uint8 = 21 // group 1 interrogation
	CauseInro16       uint8 = 36 // group 16 interrogation
	CauseReqcogen     uint8 = 37 // counter station interrogation (not counted by IsGeneralInterrogationCause)
	CauseUnknownType  uint8 = 44
	CauseUnknownCause uint8 = 45
	CauseUnknownCA    uint8 = 46
	CauseUnknownIOA   uint8 = 47
)

var causeNames = map[uint8]string{
	CausePeriodic: "PERIODIC", CauseBackground: "BACKGROUND", CauseSpontaneous: "SPONTANEOUS",
	CauseInitialized: "INITIALIZED", CauseRequest: "REQUEST", CauseActivation: "ACTIVATION",
	CauseActCon: "ACTCON", CauseDeactivation: "DEACTIVATION", CauseDeactCon: "DEACTCON",
	CauseActTerm: "ACTTERM", CauseRetRemote: "RETREMOTE", CauseRetLocal: "RETLOCAL", CauseFile: "FILE",
	CauseUnknownType: "UNKNOWN_TYPE", CauseUnknownCause: "UNKNOWN_CAUSE",
	CauseUnknownCA: "UNKNOWN_CA", CauseUnknownIOA: "UNKNOWN_IOA",
}

// CauseName renders a cause of transmission the way the trace formatter
// wants it: a mnemonic for the well-known codes, "INRO<n>" for the
// interrogation causes 20..36 (n = cause - 20, so station interrogation is
// INRO0), and "CAUSE_<n>" for any other code.
func CauseName(c uint8) string {
	if n, ok := causeNames[c]; ok {
		return n
	}
	if c >= CauseInrogen && c <= CauseInro16 {
		return fmt.Sprintf("INRO%d", c-CauseInrogen)
	}
	return fmt.Sprintf("CAUSE_%d", c)
}

// IsGeneralInterrogationCause reports whether c is one of the group causes
// (20..36) that count towards a general interrogation's object tally.
func IsGeneralInterrogationCause(c uint8) bool {
	return c >= CauseInrogen && c <= CauseInro16
}

// QOI group values for C_IC_NA_1 (general interrogation qualifier).
const (
	QOIStation uint8 = 20 // whole station
	QOIGroup1  uint8 = 21
	QOIGroup16 uint8 = 36
)
