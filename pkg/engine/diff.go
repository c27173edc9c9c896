package engine

// Diff classifies findings of a run against a baseline run.
type Diff struct {
	New       []Finding `json:"new"`
	Fixed     []Finding `json:"fixed"`
	Unchanged []Finding `json:"unchanged"`
}

// Compare matches findings by scanner, finding ID and resource.
// New and Unchanged follow current order, Fixed follows baseline order.
func Compare(current, baseline []Finding) Diff {
	base := make(map[string]bool, len(baseline))
	for _, f := range baseline {
		base[f.Key()] = true
	}
	cur := make(map[string]bool, len(current))

	var d Diff
	for _, f := range current {
		k := f.Key()
		if cur[k] {
			continue
		}
		cur[k] = true
		if base[k] {
			d.Unchanged = append(d.Unchanged, f)
		} else {
			d.New = append(d.New, f)
		}
	}

	fixed := make(map[string]bool)
	for _, f := range baseline {
		k := f.Key()
		if !cur[k] && !fixed[k] {
			fixed[k] = true
			d.Fixed = append(d.Fixed, f)
		}
	}
	return d
}

// Regressed reports whether any new finding is Critical or High.
func (d Diff) Regressed() bool {
	for _, f := range d.New {
		if f.Severity.Blocking() {
			return true
		}
	}
	return false
}
