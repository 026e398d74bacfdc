package client

import (
	"time"

	"github.com/gridwatch-io/iec104/asdu"
)

// giState tracks the single in-flight interrogation cycle. General and
// counter interrogation share this tracker (keyed by which TypeID is
// active) so the two never overlap, per §5's ordering guarantee.
type giState struct {
	active      bool // an activation has been sent, ACT-CON not necessarily received yet
	confirmed   bool // ACT-CON has been received; only then does data get tallied
	typeID      asdu.TypeID // asdu.CIcNa1 or asdu.CCiNa1 while active
	objectCount int
	retryTimer  timerCountdown
	periodTimer timerCountdown

	// group/rqt/freeze remember the exact request the caller made, so a
	// retry or periodic reissue asks for the same thing again instead of
	// substituting a whole-station general interrogation.
	group  uint8
	rqt    uint8
	freeze uint8
}

// timerCountdown is a plain seconds counter driven by Client.Tick; it is
// simpler than link's timers because GI has no half-tick requirement.
type timerCountdown struct {
	remaining time.Duration
	armed     bool
}

func (t *timerCountdown) arm(d time.Duration)   { t.remaining = d; t.armed = true }
func (t *timerCountdown) disarm()               { t.armed = false }
func (t *timerCountdown) expired(dt time.Duration) bool {
	if !t.armed {
		return false
	}
	t.remaining -= dt
	if t.remaining <= 0 {
		t.armed = false
		return true
	}
	return false
}

// SolicitGI requests a general interrogation of the given group (20..36;
// asdu.QOIStation for the whole station).
func (c *Client) SolicitGI(group uint8) error {
	if c.gi.active {
		return ErrInterrogationInProgress
	}
	u := asdu.ASDU{
		Header: asdu.Header{
			Type: asdu.CIcNa1, Count: 1,
			COT:           asdu.COT{Cause: asdu.CauseActivation, Origin: c.cfg.OriginatorAddress},
			CommonAddress: c.cfg.commonAddressCmd(),
		},
		Objects: []asdu.Object{{Address: 0, Value: asdu.GeneralInterrogation{QOI: group}}},
	}
	if err := c.sendASDU(u); err != nil {
		return err
	}
	c.gi.active = true
	c.gi.confirmed = false
	c.gi.typeID = asdu.CIcNa1
	c.gi.objectCount = 0
	c.gi.group = group
	c.gi.retryTimer.arm(c.cfg.GIRetryTime)
	return nil
}

// SolicitCounterInterrogation follows the identical ACT/ACT-CON/ACT-TERM
// shape over TypeID 101, sharing the same in-flight latch as SolicitGI.
func (c *Client) SolicitCounterInterrogation(rqt, freeze uint8) error {
	if c.gi.active {
		return ErrInterrogationInProgress
	}
	u := asdu.ASDU{
		Header: asdu.Header{
			Type: asdu.CCiNa1, Count: 1,
			COT:           asdu.COT{Cause: asdu.CauseActivation, Origin: c.cfg.OriginatorAddress},
			CommonAddress: c.cfg.commonAddressCmd(),
		},
		Objects: []asdu.Object{{Address: 0, Value: asdu.CounterInterrogation{RQT: rqt, Freeze: freeze}}},
	}
	if err := c.sendASDU(u); err != nil {
		return err
	}
	c.gi.active = true
	c.gi.confirmed = false
	c.gi.typeID = asdu.CCiNa1
	c.gi.objectCount = 0
	c.gi.rqt = rqt
	c.gi.freeze = freeze
	c.gi.retryTimer.arm(c.cfg.GIRetryTime)
	return nil
}

// tickGI advances the GI retry/period timers by one second.
func (c *Client) tickGI() error {
	const dt = time.Second
	if c.gi.retryTimer.expired(dt) {
		// Unanswered ACT-CON: retry the exact request the caller made,
		// never a substituted whole-station interrogation.
		var u asdu.ASDU
		switch c.gi.typeID {
		case asdu.CIcNa1:
			u = asdu.ASDU{
				Header:  asdu.Header{Type: asdu.CIcNa1, Count: 1, COT: asdu.COT{Cause: asdu.CauseActivation, Origin: c.cfg.OriginatorAddress}, CommonAddress: c.cfg.commonAddressCmd()},
				Objects: []asdu.Object{{Address: 0, Value: asdu.GeneralInterrogation{QOI: c.gi.group}}},
			}
		case asdu.CCiNa1:
			u = asdu.ASDU{
				Header:  asdu.Header{Type: asdu.CCiNa1, Count: 1, COT: asdu.COT{Cause: asdu.CauseActivation, Origin: c.cfg.OriginatorAddress}, CommonAddress: c.cfg.commonAddressCmd()},
				Objects: []asdu.Object{{Address: 0, Value: asdu.CounterInterrogation{RQT: c.gi.rqt, Freeze: c.gi.freeze}}},
			}
		}
		if u.Header.Count != 0 {
			if err := c.sendASDU(u); err != nil {
				return err
			}
			c.gi.retryTimer.arm(c.cfg.GIRetryTime)
		}
	}
	if c.gi.periodTimer.expired(dt) {
		// Reissue whichever kind of interrogation last completed, with the
		// same parameters, not always a whole-station general one.
		if c.gi.typeID == asdu.CCiNa1 {
			return c.SolicitCounterInterrogation(c.gi.rqt, c.gi.freeze)
		}
		return c.SolicitGI(c.gi.group)
	}
	return nil
}

func (c *Client) handleInterrogationASDU(u asdu.ASDU) {
	if !c.gi.active || u.Header.Type != c.gi.typeID {
		return
	}
	switch u.Header.COT.Cause {
	case asdu.CauseActCon:
		c.gi.retryTimer.disarm()
		c.gi.confirmed = true
		c.gi.objectCount = 0
		c.gi.periodTimer.arm(c.cfg.GIPeriod)
		c.ind.InterrogationActConfIndication(u.Header.Type)
	case asdu.CauseActTerm:
		c.gi.active = false
		c.gi.confirmed = false
		c.gi.retryTimer.disarm()
		c.ind.InterrogationActTermIndication(u.Header.Type, c.gi.objectCount)
	}
}

// ErrInterrogationInProgress is returned by SolicitGI/SolicitCounterInterrogation
// when a cycle is already outstanding (§5: interrogations never overlap).
var ErrInterrogationInProgress = errInterrogationInProgress{}

type errInterrogationInProgress struct{}

func (errInterrogationInProgress) Error() string {
	return "client: an interrogation cycle is already in progress"
}
