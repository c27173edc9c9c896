package report

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/user/aigov-scan/pkg/engine"
)

var csvHeader = []string{
	"scanner", "finding_id", "severity", "resource", "technical_finding",
	"remediation", "nist_ai_rmf", "iso_42001", "mitre_atlas", "executive_summary",
}

// CSVRenderer writes one row per finding.
type CSVRenderer struct{}

func (c *CSVRenderer) Render(w io.Writer, r *engine.ScanReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, f := range r.Findings {
		row := []string{
			f.Scanner,
			f.ID,
			string(f.Severity),
			f.Resource,
			f.Technical,
			f.Remediation,
			strings.Join(f.Mappings.Controls(engine.FrameworkNISTAIRMF), "; "),
			strings.Join(f.Mappings.Controls(engine.FrameworkISO42001), "; "),
			strings.Join(f.Mappings.Controls(engine.FrameworkMITREATLAS), "; "),
			f.Narrative,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
