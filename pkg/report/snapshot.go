package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/user/aigov-scan/pkg/engine"
)

const DefaultSnapshotPath = ".aigov-snapshot.json"

// SaveSnapshot writes r as JSON for later comparison.
func SaveSnapshot(path string, r *engine.ScanReport) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := (&JSONRenderer{Indent: "  "}).Render(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return f.Close()
}

// LoadSnapshot reads a report written by SaveSnapshot or the json format.
func LoadSnapshot(path string) (*engine.ScanReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r engine.ScanReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	for _, f := range r.Findings {
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", path, err)
		}
	}
	return &r, nil
}
