package client

import (
	"time"

	"github.com/gridwatch-io/iec104/asdu"
)

// Indication is implemented by the host application to receive everything
// the client decodes or completes. Every method is called synchronously
// from whichever entry point (Tick or OnBytesReady) triggered it — per the
// concurrency model there is no internal dispatch queue.
type Indication interface {
	// DataIndication delivers decoded monitor-direction objects from one
	// ASDU (a spontaneous update, a GI response fragment, or a read reply).
	DataIndication(objects []asdu.Object)
	// CommandActRespIndication delivers a command, parameter, or clock-sync
	// echo (ACT-CON/ACT-TERM, positive or negative).
	CommandActRespIndication(obj asdu.Object, cot asdu.COT)
	// InterrogationActConfIndication fires when a general or counter
	// interrogation is confirmed (ACT-CON received).
	InterrogationActConfIndication(typeID asdu.TypeID)
	// InterrogationActTermIndication fires when the interrogation cycle
	// completes (ACT-TERM received), reporting how many objects arrived.
	InterrogationActTermIndication(typeID asdu.TypeID, count int)
	// TCPConnected/TCPDisconnected report link-layer connectivity changes.
	TCPConnected()
	TCPDisconnected()
	// FrameIndication reports one APDU crossing the wire, dir is "sent" or
	// "recv", kind is apci.Kind's String() ("I", "S", or "U").
	FrameIndication(dir, kind string)
	// RawFrameIndication carries the same event's encoded wire bytes, for a
	// host that wants a hex dump trace rather than (or alongside) a metric.
	RawFrameIndication(dir string, raw []byte)
	// ASDUIndication reports every successfully decoded ASDU's envelope —
	// TypeID, cause, addresses — independent of DataIndication's object
	// payload, so a host can trace non-monitor ASDUs (command echoes,
	// interrogation ACT-CON/ACT-TERM) too.
	ASDUIndication(u asdu.ASDU)
	// UnknownTypeIndication reports an incoming ASDU whose TypeID this
	// client has no decoder for.
	UnknownTypeIndication(typeID asdu.TypeID)
	// SequenceErrorIndication fires when link rejects an I-frame for an
	// unexpected send sequence number.
	SequenceErrorIndication()
	// IdleTimeoutIndication fires when link disconnects for want of a
	// timely STARTDT/TESTFR response or I-frame acknowledgement.
	IdleTimeoutIndication()
	// CommandLatencyIndication reports the time between a command's
	// activation and its matching ACT-CON.
	CommandLatencyIndication(d time.Duration)
}

// Clock supplies the current time for outgoing CP56Time2a-bearing frames
// the caller did not stamp explicitly, and is injectable for deterministic
// tests (§9's "inject a clock abstraction" design note).
type Clock func() time.Time
