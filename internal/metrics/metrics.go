// Package metrics exposes Prometheus counters and gauges for the link and
// application layers, registered against the default registry and served
// by cmd/iec104-client's /metrics endpoint.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	LinkState = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "iec104_link_state",
		Help: "Current link state: 0=disconnected, 1=TCP connected (data-transfer state is not reported separately)",
	})

	FramesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iec104_frames_sent_total",
			Help: "APDUs written to the transport, by kind",
		},
		[]string{"kind"},
	)

	FramesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iec104_frames_received_total",
			Help: "APDUs decoded from the transport, by kind",
		},
		[]string{"kind"},
	)

	SequenceErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "iec104_sequence_errors_total",
		Help: "I-frames rejected for an unexpected send sequence number",
	})

	IdleTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "iec104_idle_timeouts_total",
		Help: "Disconnects caused by an unanswered STARTDT/TESTFR or unacknowledged I-frame",
	})

	InterrogationCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iec104_interrogation_cycles_total",
			Help: "Completed general/counter interrogation cycles",
		},
		[]string{"type"},
	)

	InterrogationObjects = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "iec104_interrogation_objects",
		Help:    "Number of information objects returned per interrogation cycle",
		Buckets: prometheus.DefBuckets,
	})

	CommandLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "iec104_command_latency_seconds",
		Help:    "Time from a command's activation to its ACT-CON",
		Buckets: prometheus.DefBuckets,
	})
)

// Register adds every collector above to the default Prometheus registry.
// Safe to call once at process startup.
func Register() {
	prometheus.MustRegister(
		LinkState, FramesSent, FramesReceived, SequenceErrors, IdleTimeouts,
		InterrogationCycles, InterrogationObjects, CommandLatency,
	)
}

// Serve starts the /metrics and /health HTTP endpoints on port, logging
// through log. It runs in the caller's goroutine — callers that don't want
// to block invoke it with `go metrics.Serve(...)`.
func Serve(port int, log *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	addr := fmt.Sprintf(":%d", port)
	log.Infof("metrics endpoint listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("metrics server: %v", err)
	}
}
