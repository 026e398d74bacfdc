package client

import (
	"time"

	"github.com/gridwatch-io/iec104/link"
)

// Config is the full configuration surface a host assembles before calling
// New — either by hand or, for cmd/iec104-client, unmarshalled from YAML by
// internal/configfile.
type Config struct {
	PeerIP       string
	PeerIPBackup string // alternated to on each reconnect attempt, if set
	Port         int    // default 2404

	CommonAddressDefault    uint16
	OriginatorAddress       uint8
	CommonAddressCmdDefault uint16 // defaults to CommonAddressDefault if zero

	T1, T2, T3 time.Duration
	K, W       int

	GIPeriod    time.Duration // default 330s
	GIRetryTime time.Duration // default 10s

	StrictSequenceOrder bool
	SupervisoryEnabled  bool

	TLSEnabled   bool
	TLSCAFile    string
	TLSCertFile  string
	TLSKeyFile   string
	TLSVerifyMode string // "off" | "query" | "strict"
}

// DefaultConfig returns the standard's usual timer/window values with
// Port 2404 and a 330s GI period.
func DefaultConfig() Config {
	return Config{
		Port:        2404,
		T1:          15 * time.Second,
		T2:          10 * time.Second,
		T3:          20 * time.Second,
		K:           12,
		W:           8,
		GIPeriod:    330 * time.Second,
		GIRetryTime: 10 * time.Second,
		SupervisoryEnabled: true,
		TLSVerifyMode:      "strict",
	}
}

func (c Config) linkConfig() link.Config {
	return link.Config{
		T1: c.T1, T2: c.T2, T3: c.T3,
		K: c.K, W: c.W,
		StrictSequenceOrder: c.StrictSequenceOrder,
		SupervisoryEnabled:  c.SupervisoryEnabled,
	}
}

func (c Config) commonAddressCmd() uint16 {
	if c.CommonAddressCmdDefault != 0 {
		return c.CommonAddressCmdDefault
	}
	return c.CommonAddressDefault
}
