// Package configfile loads cmd/iec104-client's YAML configuration file and
// converts it into a client.Config plus the ambient logging/metrics knobs
// the command needs.
package configfile

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gridwatch-io/iec104/client"
)

// File is the on-disk shape of the configuration file.
type File struct {
	Link    LinkConfig    `yaml:"link"`
	TLS     TLSConfig     `yaml:"tls"`
	Log     LogConfig     `yaml:"log"`
	Monitor MonitorConfig `yaml:"monitor"`
}

// LinkConfig covers everything client.Config exposes.
type LinkConfig struct {
	PeerIP                  string        `yaml:"peer_ip"`
	PeerIPBackup            string        `yaml:"peer_ip_backup"`
	Port                    int           `yaml:"port"`
	CommonAddressDefault    uint16        `yaml:"common_address_default"`
	OriginatorAddress       uint8         `yaml:"originator_address"`
	CommonAddressCmdDefault uint16        `yaml:"common_address_cmd_default"`
	T1                      time.Duration `yaml:"t1"`
	T2                      time.Duration `yaml:"t2"`
	T3                      time.Duration `yaml:"t3"`
	K                       int           `yaml:"k"`
	W                       int           `yaml:"w"`
	GIPeriod                time.Duration `yaml:"gi_period"`
	GIRetryTime             time.Duration `yaml:"gi_retry_time"`
	StrictSequenceOrder     bool          `yaml:"strict_sequence_order"`
	SupervisoryEnabled      bool          `yaml:"supervisory_enabled"`
}

// TLSConfig covers optional transport security.
type TLSConfig struct {
	Enabled    bool   `yaml:"enabled"`
	CAFile     string `yaml:"ca_file"`
	CertFile   string `yaml:"cert_file"`
	KeyFile    string `yaml:"key_file"`
	VerifyMode string `yaml:"verify_mode"`
}

// LogConfig picks logrus's level/format the way liultimate-instrument-server's
// LogConfig does.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MonitorConfig controls the Prometheus endpoint.
type MonitorConfig struct {
	Enabled     bool `yaml:"enabled"`
	MetricsPort int  `yaml:"metrics_port"`
}

// Load reads and parses path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("configfile: read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("configfile: parse %s: %w", path, err)
	}
	return &f, nil
}

// Default returns the standard's usual timer/window values as a File,
// mirroring client.DefaultConfig.
func Default() *File {
	d := client.DefaultConfig()
	return &File{
		Link: LinkConfig{
			Port:                d.Port,
			T1:                  d.T1,
			T2:                  d.T2,
			T3:                  d.T3,
			K:                   d.K,
			W:                   d.W,
			GIPeriod:            d.GIPeriod,
			GIRetryTime:         d.GIRetryTime,
			SupervisoryEnabled:  d.SupervisoryEnabled,
		},
		TLS:     TLSConfig{VerifyMode: d.TLSVerifyMode},
		Log:     LogConfig{Level: "info", Format: "text"},
		Monitor: MonitorConfig{Enabled: true, MetricsPort: 9090},
	}
}

// ClientConfig converts the file's link/TLS sections into a client.Config.
func (f *File) ClientConfig() client.Config {
	l := f.Link
	return client.Config{
		PeerIP:                  l.PeerIP,
		PeerIPBackup:            l.PeerIPBackup,
		Port:                    l.Port,
		CommonAddressDefault:    l.CommonAddressDefault,
		OriginatorAddress:       l.OriginatorAddress,
		CommonAddressCmdDefault: l.CommonAddressCmdDefault,
		T1:                      l.T1,
		T2:                      l.T2,
		T3:                      l.T3,
		K:                       l.K,
		W:                       l.W,
		GIPeriod:                l.GIPeriod,
		GIRetryTime:             l.GIRetryTime,
		StrictSequenceOrder:     l.StrictSequenceOrder,
		SupervisoryEnabled:      l.SupervisoryEnabled,
		TLSEnabled:              f.TLS.Enabled,
		TLSCAFile:               f.TLS.CAFile,
		TLSCertFile:             f.TLS.CertFile,
		TLSKeyFile:              f.TLS.KeyFile,
		TLSVerifyMode:           f.TLS.VerifyMode,
	}
}
