// Command iec104-client is a thin host around package client: it loads
// configuration, wires a TCP/TLS transport and a logrus-backed trace sink,
// and drives the three cooperative entry points (Connect/Tick/OnBytesReady)
// from a single worker goroutine, per §5's concurrency model.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gridwatch-io/iec104/asdu"
	"github.com/gridwatch-io/iec104/client"
	"github.com/gridwatch-io/iec104/internal/configfile"
	"github.com/gridwatch-io/iec104/internal/metrics"
	"github.com/gridwatch-io/iec104/trace"
	"github.com/gridwatch-io/iec104/transport"
)

var (
	version   = "0.1.0"
	buildTime = "unknown"
)

func main() {
	configFile := flag.String("config", "configs/config.yaml", "path to the YAML configuration file")
	showVersion := flag.Bool("version", false, "print version information and exit")
	solicitGI := flag.Bool("gi", true, "issue a general interrogation once connected")
	flag.Parse()

	if *showVersion {
		fmt.Printf("iec104-client v%s (build %s)\n", version, buildTime)
		os.Exit(0)
	}

	file, err := configfile.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v, falling back to defaults\n", err)
		file = configfile.Default()
	}

	log := setupLogger(file.Log)
	log.Infof("iec104-client v%s starting, config=%s", version, *configFile)

	metrics.Register()
	if file.Monitor.Enabled {
		go metrics.Serve(file.Monitor.MetricsPort, log)
	}

	tr, err := buildTransport(file)
	if err != nil {
		log.Fatalf("transport: %v", err)
	}

	ind := &logIndication{log: log}
	c := client.New(file.ClientConfig(), tr, ind, nil)

	work := make(chan func(), 8)
	if err := connectOnWorker(c, work); err != nil {
		log.Fatalf("connect: %v", err)
	}
	// giPending is only touched by work items, which all run on this
	// goroutine: each Tick retries until the link is in data-transfer state.
	giPending := *solicitGI

	tickTicker := time.NewTicker(time.Second)
	pollTicker := time.NewTicker(100 * time.Millisecond)
	defer tickTicker.Stop()
	defer pollTicker.Stop()

	go func() {
		for range tickTicker.C {
			work <- func() {
				_ = c.Tick()
				if giPending && c.SolicitGI(asdu.QOIStation) == nil {
					giPending = false
				}
			}
		}
	}()
	go func() {
		for range pollTicker.C {
			work <- func() { _ = c.OnBytesReady() }
		}
	}()

	for fn := range work {
		fn()
	}
}

// connectOnWorker performs the initial connect on the same single-threaded
// actor that every later Tick/OnBytesReady call runs on.
func connectOnWorker(c *client.Client, work chan func()) error {
	errc := make(chan error, 1)
	work <- func() { errc <- c.Connect() }
	(<-work)() // the worker loop in main has not started yet; run it here
	return <-errc
}

func buildTransport(f *configfile.File) (*transport.TCP, error) {
	if !f.TLS.Enabled {
		return transport.New(10 * time.Second), nil
	}
	return transport.NewTLS(10*time.Second, f.TLS.CAFile, f.TLS.CertFile, f.TLS.KeyFile, f.TLS.VerifyMode)
}

func setupLogger(cfg configfile.LogConfig) *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}
	return log
}

// logIndication renders every client callback through package trace onto
// the process logger.
type logIndication struct {
	log *logrus.Logger
}

func (i *logIndication) DataIndication(objects []asdu.Object) {
	sink := i.log.WriterLevel(logrus.InfoLevel)
	defer sink.Close()
	trace.Points(sink, objects)
}

func (i *logIndication) CommandActRespIndication(obj asdu.Object, cot asdu.COT) {
	i.log.Infof("command echo: type=%s cause=%s negative=%v", obj.Value.TypeID(), asdu.CauseName(cot.Cause), cot.Negative)
}

func (i *logIndication) InterrogationActConfIndication(typeID asdu.TypeID) {
	i.log.Infof("interrogation confirmed: %s", typeID)
}

func (i *logIndication) InterrogationActTermIndication(typeID asdu.TypeID, count int) {
	i.log.Infof("interrogation terminated: %s, %d object(s)", typeID, count)
	metrics.InterrogationCycles.WithLabelValues(typeID.String()).Inc()
	metrics.InterrogationObjects.Observe(float64(count))
}

func (i *logIndication) TCPConnected() {
	i.log.Info("*** TCP CONNECT!")
	metrics.LinkState.Set(1)
}

func (i *logIndication) TCPDisconnected() {
	i.log.Info("*** TCP DISCONNECT!")
	metrics.LinkState.Set(0)
}

func (i *logIndication) FrameIndication(dir, kind string) {
	if dir == "sent" {
		metrics.FramesSent.WithLabelValues(kind).Inc()
	} else {
		metrics.FramesReceived.WithLabelValues(kind).Inc()
	}
}

func (i *logIndication) SequenceErrorIndication() {
	i.log.Warn("sequence error")
	metrics.SequenceErrors.Inc()
}

func (i *logIndication) IdleTimeoutIndication() {
	i.log.Warn("idle timeout")
	metrics.IdleTimeouts.Inc()
}

func (i *logIndication) CommandLatencyIndication(d time.Duration) {
	metrics.CommandLatency.Observe(d.Seconds())
}

func (i *logIndication) RawFrameIndication(dir string, raw []byte) {
	dirLabel := "R-->"
	if dir == "sent" {
		dirLabel = "T-->"
	}
	sink := i.log.WriterLevel(logrus.DebugLevel)
	defer sink.Close()
	trace.Frame(sink, dirLabel, raw)
}

func (i *logIndication) ASDUIndication(u asdu.ASDU) {
	sink := i.log.WriterLevel(logrus.DebugLevel)
	defer sink.Close()
	trace.Header(sink, u.Header)
}

func (i *logIndication) UnknownTypeIndication(typeID asdu.TypeID) {
	sink := i.log.WriterLevel(logrus.WarnLevel)
	defer sink.Close()
	trace.UnknownType(sink, typeID)
}
