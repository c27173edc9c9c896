package engine

import "sort"

// Framework names a regulatory standard or attack taxonomy.
type Framework string

const (
	FrameworkNISTAIRMF  Framework = "nist_ai_rmf"
	FrameworkISO42001   Framework = "iso_42001"
	FrameworkMITREATLAS Framework = "mitre_atlas"
)

// ComplianceMapping cross-references a finding to control or technique
// identifiers per framework. A missing or empty entry means no known mapping.
type ComplianceMapping map[Framework][]string

// Controls returns the identifiers mapped for fw, or nil.
func (m ComplianceMapping) Controls(fw Framework) []string {
	if m == nil {
		return nil
	}
	return m[fw]
}

// First returns the first identifier mapped for fw.
func (m ComplianceMapping) First(fw Framework) (string, bool) {
	ids := m.Controls(fw)
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}

// Frameworks lists the frameworks with at least one identifier, sorted.
func (m ComplianceMapping) Frameworks() []Framework {
	var out []Framework
	for fw, ids := range m {
		if len(ids) > 0 {
			out = append(out, fw)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns a deep copy.
func (m ComplianceMapping) Clone() ComplianceMapping {
	if m == nil {
		return nil
	}
	out := make(ComplianceMapping, len(m))
	for fw, ids := range m {
		out[fw] = append([]string(nil), ids...)
	}
	return out
}
