// Package metrics records scan outcomes in a private Prometheus registry.
package metrics

import (
	"context"
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/user/aigov-scan/pkg/engine"
)

// Compile-time interface check.
var _ engine.Observer = (*Recorder)(nil)

// Scan status label values.
const (
	StatusOK       = "ok"
	StatusDenied   = "permission_denied"
	StatusFailed   = "failed"
	StatusCanceled = "cancelled"
)

// Recorder implements engine.Observer.
type Recorder struct {
	registry *prometheus.Registry

	scansTotal    *prometheus.CounterVec
	findingsTotal *prometheus.CounterVec
	scanDuration  *prometheus.HistogramVec
	inFlight      prometheus.Gauge
	riskScore     prometheus.Gauge

	mu sync.Mutex
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		scansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aigov",
			Name:      "scans_total",
			Help:      "Scanner executions by outcome.",
		}, []string{"scan", "status"}),
		findingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aigov",
			Name:      "findings_total",
			Help:      "Findings reported by scan and severity.",
		}, []string{"scan", "severity"}),
		scanDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aigov",
			Name:      "scan_duration_seconds",
			Help:      "Scanner execution time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"scan"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aigov",
			Name:      "scans_in_flight",
			Help:      "Scanners currently executing.",
		}),
		riskScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aigov",
			Name:      "risk_score_percent",
			Help:      "Risk percentage of the last completed run.",
		}),
	}
	r.registry.MustRegister(r.scansTotal, r.findingsTotal, r.scanDuration, r.inFlight, r.riskScore)
	return r
}

func (r *Recorder) ScanStarted(scan string) {
	r.inFlight.Inc()
}

func (r *Recorder) ScanFinished(scan string, findings []engine.Finding, err error, elapsedSeconds float64) {
	r.inFlight.Dec()
	r.scanDuration.WithLabelValues(scan).Observe(elapsedSeconds)
	r.scansTotal.WithLabelValues(scan, status(err)).Inc()
	for _, f := range findings {
		r.findingsTotal.WithLabelValues(scan, string(f.Severity)).Inc()
	}
}

func (r *Recorder) ScanSkipped(scan string) {
	r.scansTotal.WithLabelValues(scan, StatusCanceled).Inc()
}

func (r *Recorder) RunFinished(report *engine.ScanReport) {
	r.riskScore.Set(float64(report.RiskScore()))
}

// WriteTextfile writes the current metrics in text exposition format,
// for node_exporter's textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return prometheus.WriteToTextfile(path, r.registry)
}

func status(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, engine.ErrPermissionDenied):
		return StatusDenied
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusCanceled
	default:
		return StatusFailed
	}
}
