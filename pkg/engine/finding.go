package engine

import (
	"errors"
	"fmt"
)

// Finding represents one discrete compliance or security issue on a resource.
type Finding struct {
	ID          string            `json:"finding_id" yaml:"finding_id"`
	Scanner     string            `json:"scanner,omitempty" yaml:"scanner,omitempty"`
	Resource    string            `json:"resource" yaml:"resource"`
	Severity    Severity          `json:"severity" yaml:"severity"`
	Technical   string            `json:"technical_finding" yaml:"technical_finding"`
	Remediation string            `json:"remediation" yaml:"remediation"`
	Mappings    ComplianceMapping `json:"mappings" yaml:"mappings"`
	Narrative   string            `json:"executive_summary,omitempty" yaml:"executive_summary,omitempty"`
}

// Validate checks the fields every finding must carry.
func (f Finding) Validate() error {
	var errs []error
	if f.ID == "" {
		errs = append(errs, errors.New("missing finding id"))
	}
	if f.Resource == "" {
		errs = append(errs, errors.New("missing resource"))
	}
	if !f.Severity.IsValid() {
		errs = append(errs, fmt.Errorf("invalid severity %q", string(f.Severity)))
	}
	if len(errs) > 0 {
		return fmt.Errorf("finding %q: %w", f.ID, errors.Join(errs...))
	}
	return nil
}

// WithNarrative returns a copy of f carrying the executive summary.
// The mapping is copied so the result shares no state with f.
func (f Finding) WithNarrative(text string) Finding {
	out := f
	out.Mappings = f.Mappings.Clone()
	out.Narrative = text
	return out
}

// Key identifies the same issue across runs.
func (f Finding) Key() string {
	return f.Scanner + "|" + f.ID + "|" + f.Resource
}
