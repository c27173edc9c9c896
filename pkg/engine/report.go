package engine

import (
	"math"
	"time"
)

// FailureKind classifies why a scanner contributed no findings.
type FailureKind string

const (
	FailureTransient FailureKind = "transient"
	FailureCancelled FailureKind = "cancelled"
)

// ScanFailure records a scanner that failed or never ran.
type ScanFailure struct {
	Scan    string      `json:"scan"`
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// ScanReport is the result of one orchestration run.
type ScanReport struct {
	RunID       string        `json:"run_id"`
	Timestamp   time.Time     `json:"scan_timestamp"`
	AccountID   string        `json:"account_id"`
	Region      string        `json:"region"`
	Scans       []string      `json:"scans"`
	Findings    []Finding     `json:"findings"`
	Failures    []ScanFailure `json:"failures,omitempty"`
	Interrupted bool          `json:"interrupted,omitempty"`
}

// SeverityCounts returns a count for every severity, zeros included.
func (r *ScanReport) SeverityCounts() map[Severity]int {
	counts := make(map[Severity]int, len(severityOrder))
	for _, s := range severityOrder {
		counts[s] = 0
	}
	for _, f := range r.Findings {
		counts[f.Severity]++
	}
	return counts
}

// RiskScore returns the severity-weighted risk percentage in [0,100].
func (r *ScanReport) RiskScore() int {
	return RiskScore(r.SeverityCounts())
}

// RiskScore computes round(raw/max*100) capped at 100, where raw is the
// weighted sum of counts and max is total*MaxWeight (at least 1).
func RiskScore(counts map[Severity]int) int {
	raw, total := 0, 0
	for s, c := range counts {
		if c <= 0 {
			continue
		}
		raw += c * s.Weight()
		total += c
	}
	maxScore := total * MaxWeight
	if maxScore < 1 {
		maxScore = 1
	}
	score := int(math.Round(float64(raw) / float64(maxScore) * 100))
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

// Blocking counts the Critical and High findings.
func (r *ScanReport) Blocking() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity.Blocking() {
			n++
		}
	}
	return n
}

// FindingsFor returns the findings produced by the named scan.
func (r *ScanReport) FindingsFor(scan string) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Scanner == scan {
			out = append(out, f)
		}
	}
	return out
}
