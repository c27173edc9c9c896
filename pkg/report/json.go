package report

import (
	"encoding/json"
	"io"

	"github.com/user/aigov-scan/pkg/engine"
)

// JSONRenderer writes the report with its derived metrics.
type JSONRenderer struct {
	Indent string
}

type jsonReport struct {
	*engine.ScanReport
	TotalFindings  int                     `json:"total_findings"`
	SeverityCounts map[engine.Severity]int `json:"severity_counts"`
	RiskScore      int                     `json:"risk_score"`
}

func (j *JSONRenderer) Render(w io.Writer, r *engine.ScanReport) error {
	enc := json.NewEncoder(w)
	if j.Indent != "" {
		enc.SetIndent("", j.Indent)
	}
	return enc.Encode(jsonReport{
		ScanReport:     r,
		TotalFindings:  len(r.Findings),
		SeverityCounts: r.SeverityCounts(),
		RiskScore:      r.RiskScore(),
	})
}
