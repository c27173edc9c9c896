package engine

import (
	"fmt"
	"strings"
)

// Severity classifies the risk of a finding.
type Severity string

const (
	SeverityCritical      Severity = "CRITICAL"
	SeverityHigh          Severity = "HIGH"
	SeverityMedium        Severity = "MEDIUM"
	SeverityLow           Severity = "LOW"
	SeverityInformational Severity = "INFORMATIONAL"
)

// MaxWeight is the weight of the most severe level.
const MaxWeight = 10

var severityOrder = []Severity{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeverityInformational,
}

// Severities returns every severity, most severe first.
func Severities() []Severity {
	out := make([]Severity, len(severityOrder))
	copy(out, severityOrder)
	return out
}

// IsValid reports whether s is one of the defined levels.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInformational:
		return true
	}
	return false
}

// Weight returns the risk weight used by the report score.
// Critical=10, High=5, Medium=2, Low=1, Informational=0.
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return MaxWeight
	case SeverityHigh:
		return 5
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Rank orders severities for sorting; higher is more severe.
// Unknown values rank below Informational.
func (s Severity) Rank() int {
	for i, v := range severityOrder {
		if v == s {
			return len(severityOrder) - i
		}
	}
	return 0
}

// Blocking reports whether findings of this severity should fail a run.
func (s Severity) Blocking() bool {
	return s == SeverityCritical || s == SeverityHigh
}

func (s Severity) String() string {
	return string(s)
}

// ParseSeverity converts a case-insensitive name into a Severity.
// "info" is accepted as an alias for Informational.
func ParseSeverity(v string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "CRITICAL":
		return SeverityCritical, nil
	case "HIGH":
		return SeverityHigh, nil
	case "MEDIUM":
		return SeverityMedium, nil
	case "LOW":
		return SeverityLow, nil
	case "INFO", "INFORMATIONAL":
		return SeverityInformational, nil
	}
	return "", fmt.Errorf("unknown severity %q", v)
}

// UnmarshalText rejects values outside the defined levels.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalText keeps the canonical upper-case form.
func (s Severity) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("unknown severity %q", string(s))
	}
	return []byte(s), nil
}
