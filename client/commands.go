package client

import (
	"fmt"
	"time"

	"github.com/gridwatch-io/iec104/asdu"
)

// pendingCommand is one outstanding select/execute or direct command,
// tracked only so a late ACT-CON/ACT-TERM can be traced against what it
// answers — never to block sending, per §5 (the link's k/w window is the
// only flow control). sentAt lets handleCommandEcho report activation
// latency once the matching response arrives.
type pendingCommand struct {
	typeID  asdu.TypeID
	address asdu.InformationObjectAddress
	ca      uint16
	sentAt  time.Time
}

// pendingTable is a small ring buffer of pendingCommand: bounded, oldest
// entry evicted on overflow, exactly as described for the trace
// correlation table in §4.D.
type pendingTable struct {
	entries []pendingCommand
	cap     int
}

func newPendingTable(capacity int) pendingTable {
	return pendingTable{entries: make([]pendingCommand, 0, capacity), cap: capacity}
}

func (t *pendingTable) push(p pendingCommand) {
	if len(t.entries) == t.cap {
		t.entries = t.entries[1:]
	}
	t.entries = append(t.entries, p)
}

// take removes and returns the oldest pendingCommand matching typeID,
// address, and common address, reporting whether one was found. CA is part
// of the correlation key so two pending commands to different stations
// sharing a TypeID/IOA never cross-correlate.
func (t *pendingTable) take(typeID asdu.TypeID, address asdu.InformationObjectAddress, ca uint16) (pendingCommand, bool) {
	for i, p := range t.entries {
		if p.typeID == typeID && p.address == address && p.ca == ca {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return p, true
		}
	}
	return pendingCommand{}, false
}

// SendCommand transmits a single command/setpoint/parameter object with
// COT ACTIVATION, latching it in the pending table for later correlation.
// obj.Value's own Select flag decides whether this is a select or an
// execute per the select-before-execute convention (§4.D). obj.CA picks the
// destination station; a zero CA falls back to the configured default.
func (c *Client) SendCommand(obj asdu.Object) error {
	ca := obj.CA
	if ca == 0 {
		ca = c.cfg.commonAddressCmd()
	}
	u := asdu.ASDU{
		Header: asdu.Header{
			Type: obj.Value.TypeID(), Count: 1,
			COT:           asdu.COT{Cause: asdu.CauseActivation, Origin: c.cfg.OriginatorAddress},
			CommonAddress: ca,
		},
		Objects: []asdu.Object{obj},
	}
	if err := c.sendASDU(u); err != nil {
		return fmt.Errorf("client: send command: %w", err)
	}
	c.pending.push(pendingCommand{typeID: obj.Value.TypeID(), address: obj.Address, ca: ca, sentAt: c.now()})
	return nil
}

// SendTestCommand issues a controlling-station-originated link test over
// the application layer (C_TS_TA_1), distinct from link's U-frame TESTFR.
func (c *Client) SendTestCommand(fixedBits uint16) error {
	u := asdu.ASDU{
		Header: asdu.Header{
			Type: asdu.CTsTa1, Count: 1,
			COT:           asdu.COT{Cause: asdu.CauseActivation, Origin: c.cfg.OriginatorAddress},
			CommonAddress: c.cfg.commonAddressCmd(),
		},
		Objects: []asdu.Object{{Address: 0, Value: asdu.TestCommand{FixedTestBits: fixedBits, Time: cp56FromTime(c.now())}}},
	}
	return c.sendASDU(u)
}

// SyncClock issues C_CS_NA_1 addressed to ca (or the default command common
// address, if zero) carrying at (or the client's current clock, if zero).
func (c *Client) SyncClock(ca uint16, at time.Time) error {
	if ca == 0 {
		ca = c.cfg.commonAddressCmd()
	}
	if at.IsZero() {
		at = c.now()
	}
	u := asdu.ASDU{
		Header: asdu.Header{
			Type: asdu.CCsNa1, Count: 1,
			COT:           asdu.COT{Cause: asdu.CauseActivation, Origin: c.cfg.OriginatorAddress},
			CommonAddress: ca,
		},
		Objects: []asdu.Object{{Address: 0, Value: asdu.ClockSync{Time: cp56FromTime(at)}}},
	}
	return c.sendASDU(u)
}

func (c *Client) handleCommandEcho(u asdu.ASDU) {
	if len(u.Objects) == 0 {
		return
	}
	obj := u.Objects[0]
	if p, ok := c.pending.take(u.Header.Type, obj.Address, u.Header.CommonAddress); ok && u.Header.COT.Cause == asdu.CauseActCon {
		c.ind.CommandLatencyIndication(c.now().Sub(p.sentAt))
	}
	c.ind.CommandActRespIndication(obj, u.Header.COT)
}
