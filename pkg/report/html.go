package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/user/aigov-scan/pkg/engine"
)

//go:embed templates/dashboard.html
var dashboardTemplate string

var frameworkTags = map[engine.Framework]struct{ class, label string }{
	engine.FrameworkNISTAIRMF:  {"nist", "NIST"},
	engine.FrameworkISO42001:   {"iso", "ISO"},
	engine.FrameworkMITREATLAS: {"mitre", "MITRE"},
}

var dashboard = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"lower": strings.ToLower,
	"rfc3339": func(t time.Time) string {
		return t.Format(time.RFC3339)
	},
}).Option("missingkey=error").Parse(dashboardTemplate))

// HTMLRenderer writes a self-contained dashboard page.
type HTMLRenderer struct{}

type severityCard struct {
	Severity engine.Severity
	Count    int
}

type complianceTag struct {
	Class   string
	Label   string
	Control string
}

type dashboardFinding struct {
	engine.Finding
	Tags []complianceTag
}

type scanSection struct {
	Scan     string
	Findings []dashboardFinding
}

type dashboardData struct {
	*engine.ScanReport
	Cards    []severityCard
	Sections []scanSection
}

func (h *HTMLRenderer) Render(w io.Writer, r *engine.ScanReport) error {
	counts := r.SeverityCounts()
	data := dashboardData{ScanReport: r}
	for _, sev := range engine.Severities() {
		data.Cards = append(data.Cards, severityCard{Severity: sev, Count: counts[sev]})
	}
	for _, scan := range sectionOrder(r) {
		section := scanSection{Scan: scan}
		for _, f := range r.FindingsFor(scan) {
			section.Findings = append(section.Findings, dashboardFinding{Finding: f, Tags: tagsFor(f.Mappings)})
		}
		if len(section.Findings) > 0 {
			data.Sections = append(data.Sections, section)
		}
	}
	if err := dashboard.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// sectionOrder lists the requested scans, then any other scan that reported.
func sectionOrder(r *engine.ScanReport) []string {
	seen := make(map[string]bool, len(r.Scans))
	var order []string
	for _, name := range r.Scans {
		if !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}
	for _, f := range r.Findings {
		if !seen[f.Scanner] {
			seen[f.Scanner] = true
			order = append(order, f.Scanner)
		}
	}
	return order
}

func tagsFor(m engine.ComplianceMapping) []complianceTag {
	var tags []complianceTag
	for _, fw := range m.Frameworks() {
		tag, ok := frameworkTags[fw]
		if !ok {
			tag.class, tag.label = "other", string(fw)
		}
		for _, ctl := range m.Controls(fw) {
			tags = append(tags, complianceTag{Class: tag.class, Label: tag.label, Control: ctl})
		}
	}
	return tags
}
