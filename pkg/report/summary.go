package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/aigov-scan/pkg/engine"
)

var (
	colorCritical = lipgloss.Color("#FF0000")
	colorHigh     = lipgloss.Color("#FF8800")
	colorMedium   = lipgloss.Color("#FFFF00")
	colorLow      = lipgloss.Color("#00FF00")
	colorMuted    = lipgloss.Color("#888888")
)

// styles are bound to one destination so colour is only emitted to terminals.
type styles struct {
	r       *lipgloss.Renderer
	title   lipgloss.Style
	muted   lipgloss.Style
	warning lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		r:       r,
		title:   r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(colorMuted),
		warning: r.NewStyle().Foreground(colorHigh).Bold(true),
	}
}

func (st styles) severity(s engine.Severity) lipgloss.Style {
	switch s {
	case engine.SeverityCritical:
		return st.r.NewStyle().Foreground(colorCritical).Bold(true)
	case engine.SeverityHigh:
		return st.r.NewStyle().Foreground(colorHigh).Bold(true)
	case engine.SeverityMedium:
		return st.r.NewStyle().Foreground(colorMedium)
	case engine.SeverityLow:
		return st.r.NewStyle().Foreground(colorLow)
	default:
		return st.muted
	}
}

// SummaryRenderer writes a human-readable overview.
type SummaryRenderer struct{}

func (s *SummaryRenderer) Render(w io.Writer, r *engine.ScanReport) error {
	st := newStyles(w)
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, st.title.Render("AI GOVERNANCE SCAN SUMMARY"))
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Run:       %s\n", r.RunID)
	fmt.Fprintf(&b, "Timestamp: %s\n", r.Timestamp.Format(time.RFC3339))
	if r.AccountID != "" {
		fmt.Fprintf(&b, "Target:    %s (%s)\n", r.AccountID, r.Region)
	}
	fmt.Fprintf(&b, "Scans:     %s\n", strings.Join(r.Scans, ", "))
	fmt.Fprintf(&b, "Total Findings: %d\n", len(r.Findings))
	fmt.Fprintf(&b, "Risk Score: %d/100\n", r.RiskScore())
	if r.Interrupted {
		fmt.Fprintln(&b, st.warning.Render("Run interrupted: results are partial"))
	}

	fmt.Fprintln(&b, "\nSeverity Breakdown:")
	counts := r.SeverityCounts()
	for _, sev := range engine.Severities() {
		if counts[sev] == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %s: %d\n", st.severity(sev).Render(string(sev)), counts[sev])
	}

	if len(r.Findings) > 0 {
		fmt.Fprintln(&b, "\nFindings:")
		for _, f := range r.Findings {
			fmt.Fprintf(&b, "  [%s] %s %s\n", st.severity(f.Severity).Render(string(f.Severity)), f.ID, f.Resource)
			fmt.Fprintf(&b, "      %s\n", f.Technical)
			if f.Narrative != "" {
				fmt.Fprintf(&b, "      %s\n", st.muted.Render(f.Narrative))
			}
		}
	}

	if len(r.Failures) > 0 {
		fmt.Fprintln(&b, "\nScan Failures:")
		for _, fl := range r.Failures {
			fmt.Fprintf(&b, "  %s (%s): %s\n", st.warning.Render(fl.Scan), fl.Kind, fl.Message)
		}
	}
	fmt.Fprintln(&b, rule)

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderDiff writes the changes between a baseline and the current findings.
func RenderDiff(w io.Writer, d engine.Diff) error {
	st := newStyles(w)
	var b strings.Builder
	fmt.Fprintln(&b, st.title.Render("Changes since baseline"))
	fmt.Fprintf(&b, "  new: %d  fixed: %d  unchanged: %d\n", len(d.New), len(d.Fixed), len(d.Unchanged))
	section := func(title, sign string, findings []engine.Finding) {
		if len(findings) == 0 {
			return
		}
		fmt.Fprintf(&b, "\n%s:\n", title)
		for _, f := range findings {
			fmt.Fprintf(&b, "  %s [%s] %s %s\n", sign, st.severity(f.Severity).Render(string(f.Severity)), f.ID, f.Resource)
		}
	}
	section("New", "+", d.New)
	section("Fixed", "-", d.Fixed)
	_, err := io.WriteString(w, b.String())
	return err
}
