// Package join pairs boundary features with metric values by canonical key
// and reports keys that fail to pair.
package join

import (
	"sort"

	"github.com/sells-group/korea-atlas/internal/boundary"
)

// KeySet is an unordered set of canonical keys.
type KeySet map[string]struct{}

// NewKeySet builds a set from keys, ignoring empty strings.
func NewKeySet(keys ...string) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		if k != "" {
			s[k] = struct{}{}
		}
	}
	return s
}

// Has reports membership.
func (s KeySet) Has(k string) bool {
	_, ok := s[k]
	return ok
}

// Minus returns the keys of s absent from other.
func (s KeySet) Minus(other KeySet) KeySet {
	out := make(KeySet)
	for k := range s {
		if !other.Has(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// Sorted returns the keys in ascending order.
func (s KeySet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Report lists keys present on only one side of a join. It is diagnostic:
// a non-empty report never stops the join.
type Report struct {
	OnlyInStats    KeySet
	OnlyInBoundary KeySet
}

// Diff computes the symmetric difference of the two key sets.
func Diff(statKeys, boundaryKeys []string) Report {
	stats := NewKeySet(statKeys...)
	bounds := NewKeySet(boundaryKeys...)
	return Report{
		OnlyInStats:    stats.Minus(bounds),
		OnlyInBoundary: bounds.Minus(stats),
	}
}

// Empty reports whether every key paired.
func (r Report) Empty() bool {
	return len(r.OnlyInStats) == 0 && len(r.OnlyInBoundary) == 0
}

// ReportView is the presentation form of a Report.
type ReportView struct {
	OnlyInStats    []string `json:"keys_only_in_stats"`
	OnlyInBoundary []string `json:"keys_only_in_boundary"`
}

// View returns sorted slices for display.
func (r Report) View() ReportView {
	return ReportView{OnlyInStats: r.OnlyInStats.Sorted(), OnlyInBoundary: r.OnlyInBoundary.Sorted()}
}

// Row is one boundary feature with its metric. A nil Value renders as an
// unshaded region.
type Row struct {
	Feature boundary.Feature
	Value   *float64
}

// Join attaches values[f.Key] to every feature, in feature order.
func Join(features []boundary.Feature, values map[string]float64) []Row {
	rows := make([]Row, len(features))
	for i, f := range features {
		rows[i] = Row{Feature: f}
		if v, ok := values[f.Key]; ok {
			rows[i].Value = &v
		}
	}
	return rows
}

// Matched counts rows carrying a value.
func Matched(rows []Row) int {
	n := 0
	for _, r := range rows {
		if r.Value != nil {
			n++
		}
	}
	return n
}

// DuplicateKeys returns keys shared by more than one feature, mapped to the
// number of features sharing each. An empty result means every key selects
// exactly one boundary region.
func DuplicateKeys(features []boundary.Feature) map[string]int {
	counts := make(map[string]int, len(features))
	for _, f := range features {
		counts[f.Key]++
	}
	dups := make(map[string]int)
	for k, n := range counts {
		if n > 1 {
			dups[k] = n
		}
	}
	return dups
}

// Values returns value-by-key for JSON/GeoJSON properties.
func Values(rows []Row) func(boundary.Feature) map[string]any {
	byKey := make(map[string]*float64, len(rows))
	for _, r := range rows {
		byKey[r.Feature.Key] = r.Value
	}
	return func(f boundary.Feature) map[string]any {
		if v := byKey[f.Key]; v != nil {
			return map[string]any{"value": *v}
		}
		return map[string]any{"value": nil}
	}
}
