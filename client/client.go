// Package client implements the application-layer procedures of an IEC
// 60870-5-104 controlling station: general/counter interrogation lifecycle,
// command submission and correlation, the test-command responder, and
// clock synchronisation, sitting on top of package link and package apci.
//
// Client carries no locks and starts no goroutines. Per the concurrency
// model (§5) it exposes three entry points — Tick, OnBytesReady, and the
// command/connection methods (Connect, SendCommand, SendTestCommand,
// SyncClock, SolicitGI, SolicitCounterInterrogation) — that the host must
// call one at a time, never concurrently.
package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/gridwatch-io/iec104/apci"
	"github.com/gridwatch-io/iec104/asdu"
	"github.com/gridwatch-io/iec104/link"
)

// ErrNotConnected is returned (possibly wrapped) by the command methods
// when no link is in data-transfer state.
var ErrNotConnected = errors.New("client: link is not in data-transfer state")

// ErrTerminated is returned by any call made after Terminate.
var ErrTerminated = errors.New("client: client has been terminated")

// Client is the top-level facade a host drives.
type Client struct {
	cfg       Config
	transport apci.Transport
	codec     *apci.Codec
	link      *link.StateMachine
	ind       Indication
	clock     Clock

	usingBackup bool
	ending      bool

	gi giState

	pending pendingTable
}

// New builds a Client. transport must already be constructed (see package
// transport for the TCP/TLS implementation) but need not be connected yet.
func New(cfg Config, transport apci.Transport, ind Indication, clock Clock) *Client {
	if clock == nil {
		clock = time.Now
	}
	return &Client{
		cfg:       cfg,
		transport: transport,
		codec:     apci.NewCodec(transport),
		link:      link.New(cfg.linkConfig()),
		ind:       ind,
		clock:     clock,
		pending:   newPendingTable(32),
	}
}

// Connect dials the primary (or, on an alternating retry, backup) peer and
// starts the STARTDT handshake.
func (c *Client) Connect() error {
	if c.ending {
		return ErrTerminated
	}
	ip := c.cfg.PeerIP
	if c.usingBackup && c.cfg.PeerIPBackup != "" {
		ip = c.cfg.PeerIPBackup
	}
	if err := c.transport.Connect(ip, c.cfg.Port); err != nil {
		c.usingBackup = !c.usingBackup && c.cfg.PeerIPBackup != ""
		return fmt.Errorf("client: connect: %w", err)
	}
	c.ind.TCPConnected()
	out := c.link.Connect()
	return c.sendAll(out)
}

// Terminate tears down the link and marks the client so no further I/O
// occurs (§5's cancellation contract).
func (c *Client) Terminate() {
	if c.ending {
		return
	}
	c.ending = true
	c.link.Disconnect()
	_ = c.transport.Abort()
	c.ind.TCPDisconnected()
}

// Tick drives every 1 Hz timer: link idle timers, GI retry/period, and
// (through link.Tick) the STARTDT/TESTFR/supervisory cadence.
func (c *Client) Tick() error {
	if c.ending {
		return ErrTerminated
	}
	out, err := c.link.Tick()
	if err != nil {
		if errors.Is(err, link.ErrIdleTimeout) {
			c.ind.IdleTimeoutIndication()
			c.ind.TCPDisconnected()
		}
		return err
	}
	if err := c.sendAll(out); err != nil {
		return err
	}
	return c.tickGI()
}

// OnBytesReady drains every complete APDU currently buffered by the
// transport, feeding each through the link state machine and, for
// I-frames, the ASDU decoder and application procedures below.
func (c *Client) OnBytesReady() error {
	if c.ending {
		return ErrTerminated
	}
	for {
		a, err := c.codec.Next()
		if err != nil {
			if errors.Is(err, apci.ErrWouldBlock) || errors.Is(err, apci.ErrShortRead) {
				return nil
			}
			if errors.Is(err, apci.ErrInvalidFrame) {
				continue // garbage discarded, keep draining
			}
			return err
		}
		c.ind.FrameIndication("recv", a.Kind.String())
		if raw, encErr := apci.Encode(a); encErr == nil {
			c.ind.RawFrameIndication("recv", raw)
		}

		reply, payloads, err := c.link.OnAPDU(a)
		if err != nil {
			if errors.Is(err, link.ErrSequence) {
				// link.OnAPDU has already transitioned to StateDisconnected.
				c.ind.SequenceErrorIndication()
				c.ind.TCPDisconnected()
			}
			if errors.Is(err, link.ErrIdleTimeout) {
				c.ind.IdleTimeoutIndication()
				c.ind.TCPDisconnected()
			}
			return err
		}
		if err := c.sendAll(reply); err != nil {
			return err
		}
		for _, raw := range payloads {
			c.handleASDU(raw)
		}
	}
}

func (c *Client) handleASDU(raw []byte) {
	u, err := asdu.Decode(raw)
	if err != nil {
		if errors.Is(err, asdu.ErrUnknownType) {
			if h, _, herr := asdu.DecodeHeader(raw); herr == nil {
				c.ind.UnknownTypeIndication(h.Type)
			}
		}
		return // malformed body beyond an unknown type: not fatal (§7)
	}
	c.ind.ASDUIndication(u)
	c.dispatch(u)
}

// dispatch routes one decoded ASDU to the application procedure that owns
// its TypeID, per §4.D:
//   - monitor-direction types (process data, TypeID < 45 or 70) always go
//     to DataIndication, and additionally feed the GI object tally while a
//     cycle is in flight;
//   - C_IC_NA_1/C_CI_NA_1 drive the interrogation lifecycle;
//   - C_TS_TA_1 is answered automatically when it arrives as an
//     activation, or correlated against a pending outbound test command;
//   - every other command/parameter/clock-sync ASDU is a command echo.
func (c *Client) dispatch(u asdu.ASDU) {
	switch {
	case isMonitorType(u.Header.Type):
		if c.gi.confirmed && asdu.IsGeneralInterrogationCause(u.Header.COT.Cause) {
			c.gi.objectCount += len(u.Objects)
		}
		c.ind.DataIndication(u.Objects)
	case u.Header.Type == asdu.CIcNa1 || u.Header.Type == asdu.CCiNa1:
		c.handleInterrogationASDU(u)
	case u.Header.Type == asdu.CTsTa1:
		if u.Header.COT.Cause == asdu.CauseActivation {
			c.handleTestCommand(u)
		} else {
			c.handleCommandEcho(u)
		}
	default:
		c.handleCommandEcho(u)
	}
}

func isMonitorType(t asdu.TypeID) bool {
	switch t {
	case asdu.MSpNa1, asdu.MDpNa1, asdu.MStNa1, asdu.MBoNa1, asdu.MMeNa1, asdu.MMeNb1, asdu.MMeNc1,
		asdu.MItNa1, asdu.MPsNa1, asdu.MMeNd1,
		asdu.MSpTb1, asdu.MDpTb1, asdu.MStTb1, asdu.MBoTb1, asdu.MMeTd1, asdu.MMeTe1, asdu.MMeTf1,
		asdu.MItTb1, asdu.MEpTd1, asdu.MEpTe1, asdu.MEpTf1, asdu.MEiNa1:
		return true
	default:
		return false
	}
}

func (c *Client) sendAll(apdus []apci.APDU) error {
	for _, a := range apdus {
		if err := apci.Send(c.transport, a); err != nil {
			return fmt.Errorf("client: send: %w", err)
		}
		c.ind.FrameIndication("sent", a.Kind.String())
		if raw, encErr := apci.Encode(a); encErr == nil {
			c.ind.RawFrameIndication("sent", raw)
		}
	}
	return nil
}

// sendASDU wraps u in an I-frame via the link's window and writes it.
func (c *Client) sendASDU(u asdu.ASDU) error {
	if c.link.State() != link.StateDataActive {
		return ErrNotConnected
	}
	raw, err := asdu.Encode(u)
	if err != nil {
		return fmt.Errorf("client: encode: %w", err)
	}
	frame, err := c.link.SendIFrame(raw)
	if err != nil {
		return err
	}
	if err := apci.Send(c.transport, frame); err != nil {
		return fmt.Errorf("client: send: %w", err)
	}
	c.ind.FrameIndication("sent", frame.Kind.String())
	if wire, encErr := apci.Encode(frame); encErr == nil {
		c.ind.RawFrameIndication("sent", wire)
	}
	return nil
}

func (c *Client) now() time.Time { return c.clock() }

// cp56FromTime stamps t as a CP56Time2a. The millisecond field carries whole
// seconds only (seconds * 1000): the sub-second part of t is dropped. The
// weekday is written 1=Monday..7=Sunday.
func cp56FromTime(t time.Time) asdu.CP56Time2a {
	msec := t.Second() * 1000
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // time.Sunday is 0; CP56Time2a numbers Sunday 7
	}
	return asdu.CP56Time2a{
		Millisecond: msec,
		Minute:      t.Minute(),
		Hour:        t.Hour(),
		Day:         t.Day(),
		Weekday:     weekday,
		Month:       int(t.Month()),
		Year:        t.Year() % 100,
	}
}
