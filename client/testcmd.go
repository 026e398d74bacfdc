package client

import "github.com/gridwatch-io/iec104/asdu"

// handleTestCommand implements the passive side of C_TS_TA_1: when the
// controlled station activates a test command, echo its fixed bit pattern
// back unmodified with a freshly stamped timestamp and COT ACT-CON, per
// §4.D. A test command this client itself originated (SendTestCommand)
// instead completes through handleCommandEcho when its ACT-CON arrives.
func (c *Client) handleTestCommand(u asdu.ASDU) {
	if u.Header.COT.Cause != asdu.CauseActivation || len(u.Objects) == 0 {
		return
	}
	tc, ok := u.Objects[0].Value.(asdu.TestCommand)
	if !ok {
		return
	}
	reply := asdu.ASDU{
		Header: asdu.Header{
			Type: asdu.CTsTa1, Count: 1,
			COT:           asdu.COT{Cause: asdu.CauseActCon, Origin: c.cfg.OriginatorAddress},
			CommonAddress: u.Header.CommonAddress,
		},
		Objects: []asdu.Object{{
			Address: u.Objects[0].Address,
			Value:   asdu.TestCommand{FixedTestBits: tc.FixedTestBits, Time: cp56FromTime(c.now())},
		}},
	}
	_ = c.sendASDU(reply)
}
