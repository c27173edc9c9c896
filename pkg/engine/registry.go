package engine

import (
	"fmt"
	"sort"
)

// AllScans is the sentinel name that selects every registered scanner.
const AllScans = "all"

// Entry binds a scan name to its factory.
type Entry struct {
	Name    string
	Factory Factory
}

// ScanInfo describes a registered scan.
type ScanInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Registry maps scan names to factories. It is immutable after NewRegistry.
type Registry struct {
	names     []string
	factories map[string]Factory
}

// NewRegistry builds a registry, keeping registration order.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{
		factories: make(map[string]Factory, len(entries)),
	}
	for _, e := range entries {
		switch {
		case e.Name == "":
			return nil, fmt.Errorf("registry: empty scan name")
		case e.Name == AllScans:
			return nil, fmt.Errorf("registry: %q is reserved", AllScans)
		case e.Factory == nil:
			return nil, fmt.Errorf("registry: scan %s has no factory", e.Name)
		}
		if _, dup := r.factories[e.Name]; dup {
			return nil, fmt.Errorf("registry: duplicate scan %s", e.Name)
		}
		r.factories[e.Name] = e.Factory
		r.names = append(r.names, e.Name)
	}
	return r, nil
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Lookup returns the factory for name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	f, ok := r.factories[name]
	return f, ok
}

// Describe lists every scan with its description.
func (r *Registry) Describe() []ScanInfo {
	out := make([]ScanInfo, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, ScanInfo{Name: name, Description: r.factories[name]().Description()})
	}
	return out
}

// Resolve validates the requested names and expands AllScans.
// Every literal name must be registered, even when AllScans is present.
func (r *Registry) Resolve(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return nil, &ValidationError{Valid: r.Names(), Err: ErrNoScans}
	}

	seen := make(map[string]bool, len(requested))
	invalidSet := make(map[string]bool)
	var selected []string
	all := false
	for _, name := range requested {
		if name == AllScans {
			all = true
			continue
		}
		if _, ok := r.factories[name]; !ok {
			invalidSet[name] = true
			continue
		}
		if !seen[name] {
			seen[name] = true
			selected = append(selected, name)
		}
	}

	if len(invalidSet) > 0 {
		invalid := make([]string, 0, len(invalidSet))
		for name := range invalidSet {
			invalid = append(invalid, name)
		}
		sort.Strings(invalid)
		return nil, &ValidationError{Invalid: invalid, Valid: r.Names()}
	}
	if all {
		return r.Names(), nil
	}
	return selected, nil
}
