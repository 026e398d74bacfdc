// Package link implements the IEC 60870-5-104 link-layer state machine: the
// STARTDT/STOPDT/TESTFR handshake, VS/VR sequence accounting, the k/w
// window, and the t1/t2/t3 idle timers. It performs no I/O of its own —
// Tick and OnAPDU return the APDUs that need sending; package apci encodes
// and package client wires them to a transport.
//
// A StateMachine carries no locks: per the concurrency model, Connect,
// Disconnect, Tick, and OnAPDU are only ever called from one serialized
// caller at a time.
package link

import (
	"errors"
	"time"

	"github.com/gridwatch-io/iec104/apci"
)

// State names one of the three link states.
type State uint8

const (
	StateDisconnected State = iota
	StateConnected           // transport up, STARTDT-act sent, awaiting STARTDT-con
	StateDataActive          // STARTDT-con received, I-frame traffic permitted
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnected:
		return "CONNECTED"
	case StateDataActive:
		return "DATA_ACTIVE"
	default:
		return "UNKNOWN"
	}
}

// Config holds the timer/window parameters of §6's configuration surface
// that govern the link state machine.
type Config struct {
	T1 time.Duration // STARTDT & unacknowledged-I-frame timeout, default 15s
	T2 time.Duration // S-frame idle interval, default 10s
	T3 time.Duration // TESTFR idle interval, default 20s
	K  int           // max unacknowledged I-frames outstanding, default 12
	W  int           // received I-frames before a forced S-frame, default 8

	StrictSequenceOrder bool // fatal on any VRNew mismatch except the one-time first-I-frame tolerance; when false, mismatches are accepted
	SupervisoryEnabled  bool // emit periodic S-frames on the t2 cadence
}

// DefaultConfig returns the standard's usual parameter set.
func DefaultConfig() Config {
	return Config{
		T1:                 15 * time.Second,
		T2:                 10 * time.Second,
		T3:                 20 * time.Second,
		K:                  12,
		W:                  8,
		SupervisoryEnabled: true,
	}
}

var (
	// ErrSequence is returned by OnAPDU when a received I-frame's sequence
	// number does not extend VR and no tolerance applies.
	ErrSequence = errors.New("link: unexpected send sequence number")
	// ErrIdleTimeout is returned when a t1-guarded expectation (STARTDT-con,
	// TESTFR-con, or an outstanding I-frame's acknowledgement) is not met in
	// time.
	ErrIdleTimeout = errors.New("link: idle timer expired without expected reply")
	// ErrWindowFull is returned by SendIFrame when k unacknowledged I-frames
	// are already outstanding.
	ErrWindowFull = errors.New("link: send window full")
	// ErrNotDataActive is returned by SendIFrame outside StateDataActive.
	ErrNotDataActive = errors.New("link: not in data-transfer state")
)

// StateMachine tracks one connection's link-layer state.
type StateMachine struct {
	cfg   Config
	state State

	vs uint16 // next send sequence number to assign
	vr uint16 // next expected receive sequence number

	firstIframeSeen bool
	txEnabled       bool

	tStartDT       time.Duration
	startDTRetried bool

	tSupervisory     time.Duration
	supervisoryArmed bool

	tTestFR        time.Duration
	tTestFRCon     time.Duration
	testFRConArmed bool

	tIframeIdle     time.Duration
	iframeIdleArmed bool

	inFlight      []uint16 // VS of I-frames sent, oldest first, not yet acked
	sinceLastAck  int      // I-frames received since the last S-frame we sent
}

// New builds a StateMachine in StateDisconnected.
func New(cfg Config) *StateMachine {
	return &StateMachine{cfg: cfg, state: StateDisconnected}
}

// State reports the current link state.
func (m *StateMachine) State() State { return m.state }

// VS and VR expose the current sequence counters, primarily for tracing.
func (m *StateMachine) VS() uint16 { return m.vs }
func (m *StateMachine) VR() uint16 { return m.vr }

func incSeq(v uint16) uint16 {
	return (v + 1) & (apci.MaxSeqNum - 1)
}
