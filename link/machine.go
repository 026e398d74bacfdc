package link

import (
	"fmt"

	"github.com/gridwatch-io/iec104/apci"
)

// Connect transitions from any state into StateConnected: sequence counters
// reset, STARTDT-act is queued, and t1 is armed to await STARTDT-con.
func (m *StateMachine) Connect() []apci.APDU {
	m.state = StateConnected
	m.vs = 0
	m.vr = 0
	m.txEnabled = false
	m.firstIframeSeen = false
	m.startDTRetried = false
	m.supervisoryArmed = false
	m.testFRConArmed = false
	m.iframeIdleArmed = false
	m.inFlight = m.inFlight[:0]
	m.sinceLastAck = 0
	m.tStartDT = m.cfg.T1
	m.tTestFR = m.cfg.T3
	return []apci.APDU{{Kind: apci.UFrame, UControl: apci.UStartDTAct}}
}

// Disconnect drops all link state back to StateDisconnected. Safe to call
// from any state, including StateDisconnected itself.
func (m *StateMachine) Disconnect() {
	m.state = StateDisconnected
	m.txEnabled = false
	m.inFlight = nil
	m.sinceLastAck = 0
	m.supervisoryArmed = false
	m.testFRConArmed = false
	m.iframeIdleArmed = false
}

// SendIFrame assigns the next VS to asdu and returns the ready-to-send APDU.
// It refuses when the k-sized send window is already full or the link is
// not in StateDataActive (REDESIGN FLAG R3).
func (m *StateMachine) SendIFrame(asdu []byte) (apci.APDU, error) {
	if m.state != StateDataActive {
		return apci.APDU{}, ErrNotDataActive
	}
	if len(m.inFlight) >= m.cfg.K {
		return apci.APDU{}, ErrWindowFull
	}
	a := apci.APDU{Kind: apci.IFrame, SendSeq: m.vs, RecvSeq: m.vr, ASDU: asdu}
	m.inFlight = append(m.inFlight, m.vs)
	if !m.iframeIdleArmed {
		m.tIframeIdle = m.cfg.T1
		m.iframeIdleArmed = true
	}
	m.vs = incSeq(m.vs)
	return a, nil
}

// OnAPDU processes one received APDU, updating link state and returning any
// APDUs that must be sent in reply plus the raw ASDU payloads (I-frames
// only) ready for §4.B decoding and upward dispatch.
func (m *StateMachine) OnAPDU(a apci.APDU) (reply []apci.APDU, payloads [][]byte, err error) {
	switch a.Kind {
	case apci.IFrame:
		return m.onIFrame(a)
	case apci.SFrame:
		m.onSFrame(a)
		return nil, nil, nil
	case apci.UFrame:
		return m.onUFrame(a)
	default:
		return nil, nil, fmt.Errorf("link: unrecognised frame kind %d", a.Kind)
	}
}

func (m *StateMachine) onIFrame(a apci.APDU) (reply []apci.APDU, payloads [][]byte, err error) {
	if m.state != StateDataActive {
		return nil, nil, fmt.Errorf("link: I-frame received outside data-transfer state")
	}

	// A mismatch is fatal only when StrictSequenceOrder is set, and even
	// then the REDESIGN FLAG R1 tolerance lets a peer's very first I-frame
	// arrive as sequence 1 without VR having reached it yet (some peers
	// send one gratuitous frame before their own VS catches up post-reset).
	vrNew := a.SendSeq
	if vrNew != m.vr {
		r1OK := !m.firstIframeSeen && vrNew == 1
		if m.cfg.StrictSequenceOrder && !r1OK {
			err := fmt.Errorf("%w: got %d, expected %d", ErrSequence, vrNew, m.vr)
			m.Disconnect()
			return nil, nil, err
		}
	}

	m.vr = incSeq(vrNew)
	m.firstIframeSeen = true
	m.tTestFR = m.cfg.T3 // any traffic postpones the idle TESTFR

	if m.cfg.SupervisoryEnabled && !m.supervisoryArmed {
		m.tSupervisory = m.cfg.T2
		m.supervisoryArmed = true
	}

	m.sinceLastAck++
	if m.sinceLastAck >= m.cfg.W {
		reply = append(reply, apci.APDU{Kind: apci.SFrame, RecvSeq: m.vr})
		m.sinceLastAck = 0
		m.supervisoryArmed = false
	}

	if len(a.ASDU) > 0 {
		payloads = append(payloads, a.ASDU)
	}
	return reply, payloads, nil
}

func (m *StateMachine) onSFrame(a apci.APDU) {
	m.pruneAcked(a.RecvSeq)
}

// pruneAcked drops every entry of inFlight whose VS the peer has now
// acknowledged (VS strictly before ack), per REDESIGN FLAG R4. When the
// queue drains completely the I-frame idle timer is disarmed.
func (m *StateMachine) pruneAcked(ack uint16) {
	kept := m.inFlight[:0]
	for _, vs := range m.inFlight {
		if seqBefore(vs, ack) {
			continue
		}
		kept = append(kept, vs)
	}
	m.inFlight = kept
	if len(m.inFlight) == 0 {
		m.iframeIdleArmed = false
	} else {
		m.tIframeIdle = m.cfg.T1
	}
}

// seqBefore reports whether a precedes b in the 15-bit modular sequence
// space, treating the space as split in half around b.
func seqBefore(a, b uint16) bool {
	const modulus = apci.MaxSeqNum
	diff := (b - a) & (modulus - 1)
	return diff != 0 && diff < modulus/2
}

func (m *StateMachine) onUFrame(a apci.APDU) (reply []apci.APDU, payloads [][]byte, err error) {
	switch a.UControl {
	case apci.UStartDTAct:
		return []apci.APDU{{Kind: apci.UFrame, UControl: apci.UStartDTCon}}, nil, nil
	case apci.UStartDTCon:
		if m.state == StateConnected {
			m.state = StateDataActive
			m.txEnabled = true
			m.startDTRetried = false
		}
		return nil, nil, nil
	case apci.UTestFRAct:
		return []apci.APDU{{Kind: apci.UFrame, UControl: apci.UTestFRCon}}, nil, nil
	case apci.UTestFRCon:
		m.testFRConArmed = false
		m.tTestFR = m.cfg.T3
		return nil, nil, nil
	case apci.UStopDTAct:
		return []apci.APDU{{Kind: apci.UFrame, UControl: apci.UStopDTCon}}, nil, nil
	case apci.UStopDTCon:
		return nil, nil, nil
	default:
		return nil, nil, nil // informational/unknown U-function, not fatal
	}
}
