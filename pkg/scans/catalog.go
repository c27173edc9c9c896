package scans

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/user/aigov-scan/pkg/engine"
)

//go:embed controls/*.yaml
var controlFiles embed.FS

// Control is the definition of one finding type.
// Technical and Remediation are text/template strings.
type Control struct {
	ID          string                   `yaml:"id"`
	Severity    engine.Severity          `yaml:"severity"`
	Technical   string                   `yaml:"technical"`
	Remediation string                   `yaml:"remediation"`
	Mappings    engine.ComplianceMapping `yaml:"mappings"`
}

// Profile groups the controls of one scan.
type Profile struct {
	Scan     string    `yaml:"scan"`
	Controls []Control `yaml:"controls"`
}

// Catalog indexes controls by ID.
type Catalog struct {
	controls map[string]Control
	profiles map[string]Profile
}

var funcs = template.FuncMap{"join": strings.Join}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return LoadCatalog(controlFiles)
})

// DefaultCatalog returns the controls shipped with the binary.
func DefaultCatalog() (*Catalog, error) {
	return defaultCatalog()
}

// LoadCatalog reads every controls/*.yaml profile in fsys.
func LoadCatalog(fsys fs.FS) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, "controls")
	if err != nil {
		return nil, err
	}
	c := &Catalog{
		controls: make(map[string]Control),
		profiles: make(map[string]Profile),
	}
	for _, entry := range entries {
		if entry.IsDir() || (path.Ext(entry.Name()) != ".yaml" && path.Ext(entry.Name()) != ".yml") {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join("controls", entry.Name()))
		if err != nil {
			return nil, err
		}
		if err := c.add(data); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
		}
	}
	return c, nil
}

func (c *Catalog) add(data []byte) error {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return err
	}
	for _, ctl := range p.Controls {
		if ctl.ID == "" {
			return fmt.Errorf("control without id in profile %s", p.Scan)
		}
		if !ctl.Severity.IsValid() {
			return fmt.Errorf("control %s: invalid severity %q", ctl.ID, string(ctl.Severity))
		}
		if _, dup := c.controls[ctl.ID]; dup {
			return fmt.Errorf("duplicate control %s", ctl.ID)
		}
		c.controls[ctl.ID] = ctl
	}
	c.profiles[p.Scan] = p
	return nil
}

// Control looks up a control by ID.
func (c *Catalog) Control(id string) (Control, bool) {
	ctl, ok := c.controls[id]
	return ctl, ok
}

// Profile returns the controls defined for a scan.
func (c *Catalog) Profile(scan string) (Profile, bool) {
	p, ok := c.profiles[scan]
	return p, ok
}

// Finding renders control id for resource using vars in its templates.
func (c *Catalog) Finding(id, resource string, vars any) (engine.Finding, error) {
	ctl, ok := c.controls[id]
	if !ok {
		return engine.Finding{}, fmt.Errorf("control not found: %s", id)
	}
	technical, err := renderString(id+"/technical", ctl.Technical, vars)
	if err != nil {
		return engine.Finding{}, err
	}
	remediation, err := renderString(id+"/remediation", ctl.Remediation, vars)
	if err != nil {
		return engine.Finding{}, err
	}
	return engine.Finding{
		ID:          ctl.ID,
		Resource:    resource,
		Severity:    ctl.Severity,
		Technical:   technical,
		Remediation: remediation,
		Mappings:    ctl.Mappings.Clone(),
	}, nil
}

func renderString(name, tmplStr string, vars any) (string, error) {
	t, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
