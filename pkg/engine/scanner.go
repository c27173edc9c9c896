package engine

import "context"

// Scanner is a pluggable unit that checks one control domain.
type Scanner interface {
	// Name is the stable registry key.
	Name() string
	// Description explains what is checked and which frameworks apply.
	// It must not perform I/O.
	Description() string
	// Execute performs the detection work. Failures are *ScanError values.
	Execute(ctx context.Context) ([]Finding, error)
}

// Factory constructs a scanner.
type Factory func() Scanner

// Observer receives orchestration events, e.g. for metrics.
type Observer interface {
	ScanStarted(scan string)
	// ScanSkipped is called for scans never started because the run was cancelled.
	ScanSkipped(scan string)
	ScanFinished(scan string, findings []Finding, err error, elapsedSeconds float64)
	RunFinished(report *ScanReport)
}

type nopObserver struct{}

func (nopObserver) ScanStarted(string)                             {}
func (nopObserver) ScanSkipped(string)                             {}
func (nopObserver) ScanFinished(string, []Finding, error, float64) {}
func (nopObserver) RunFinished(*ScanReport)                        {}
