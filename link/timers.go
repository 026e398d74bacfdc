package link

import (
	"time"

	"github.com/gridwatch-io/iec104/apci"
)

// tickInterval is the cadence Tick is called at (§5: "the 1 Hz tick").
const tickInterval = time.Second

// halfTick is the granularity REDESIGN FLAG R2 uses for the supervisory
// timer: the standard permits (and several field deployments rely on) an
// S-frame cadence finer than 1s, so t_supervisory is walked down in two
// explicit 500ms steps per Tick rather than one 1s step. The two steps run
// back to back and expiry is checked once per Tick, so together they equal
// one tickInterval: T2 elapses after T2 worth of Ticks and is not halved.
const halfTick = 500 * time.Millisecond

// Tick advances every armed timer by one tickInterval and returns whatever
// APDUs the expirations produce. A non-nil error means the link has been
// dropped to StateDisconnected; the caller must reconnect before doing
// anything else with m.
func (m *StateMachine) Tick() ([]apci.APDU, error) {
	var out []apci.APDU

	if m.state == StateConnected {
		m.tStartDT -= tickInterval
		if m.tStartDT <= 0 {
			if m.startDTRetried {
				m.Disconnect()
				return nil, ErrIdleTimeout
			}
			m.startDTRetried = true
			m.tStartDT = m.cfg.T1
			out = append(out, apci.APDU{Kind: apci.UFrame, UControl: apci.UStartDTAct})
		}
	}

	if m.state != StateDataActive {
		return out, nil
	}

	if m.supervisoryArmed {
		m.tSupervisory -= halfTick
		m.tSupervisory -= halfTick
		if m.tSupervisory <= 0 {
			out = append(out, apci.APDU{Kind: apci.SFrame, RecvSeq: m.vr})
			m.sinceLastAck = 0
			m.supervisoryArmed = false
		}
	}

	if m.txEnabled {
		if m.testFRConArmed {
			m.tTestFRCon -= tickInterval
			if m.tTestFRCon <= 0 {
				m.Disconnect()
				return nil, ErrIdleTimeout
			}
		} else {
			m.tTestFR -= tickInterval
			if m.tTestFR <= 0 {
				out = append(out, apci.APDU{Kind: apci.UFrame, UControl: apci.UTestFRAct})
				m.testFRConArmed = true
				m.tTestFRCon = m.cfg.T1
			}
		}
	}

	if m.iframeIdleArmed {
		m.tIframeIdle -= tickInterval
		if m.tIframeIdle <= 0 {
			m.Disconnect()
			return nil, ErrIdleTimeout
		}
	}

	return out, nil
}
