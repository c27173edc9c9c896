// Package report renders scan reports and stores them as snapshots.
package report

import (
	"fmt"
	"io"

	"github.com/user/aigov-scan/pkg/engine"
)

// Renderer writes a completed report in one presentation format.
type Renderer interface {
	Render(w io.Writer, r *engine.ScanReport) error
}

// Formats lists the supported output formats.
var Formats = []string{"summary", "json", "csv", "html"}

// Get returns the renderer for format.
func Get(format string) (Renderer, error) {
	switch format {
	case "", "summary":
		return &SummaryRenderer{}, nil
	case "json":
		return &JSONRenderer{Indent: "  "}, nil
	case "csv":
		return &CSVRenderer{}, nil
	case "html", "dashboard":
		return &HTMLRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}
