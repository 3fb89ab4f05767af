package region

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Keyer derives a join key from a raw region name and an optional
// administrative code. An empty adminCode means no code is available.
type Keyer interface {
	Key(rawName, adminCode string) string
}

// DefaultDuplicates lists district names shared by regions in more than one
// province.
var DefaultDuplicates = []string{"중구", "동구", "서구", "남구", "북구", "강서구", "고성군"}

// Normalizer maps raw municipal names to canonical keys. It is immutable and
// safe for concurrent use.
type Normalizer struct {
	duplicates map[string]struct{}
	overrides  *Overrides
}

// NewNormalizer builds a Normalizer from a duplicate-name set and an
// override table. A nil override table disables the override pass.
func NewNormalizer(duplicates []string, overrides *Overrides) *Normalizer {
	n := &Normalizer{
		duplicates: make(map[string]struct{}, len(duplicates)),
		overrides:  overrides,
	}
	for _, d := range duplicates {
		n.duplicates[clean(d)] = struct{}{}
	}
	return n
}

// DefaultNormalizer uses DefaultDuplicates and the embedded override table.
func DefaultNormalizer() *Normalizer {
	return NewNormalizer(DefaultDuplicates, DefaultOverrides())
}

// WithDuplicates returns a copy whose duplicate set also holds names.
func (n *Normalizer) WithDuplicates(names ...string) *Normalizer {
	out := &Normalizer{
		duplicates: make(map[string]struct{}, len(n.duplicates)+len(names)),
		overrides:  n.overrides,
	}
	for d := range n.duplicates {
		out.duplicates[d] = struct{}{}
	}
	for _, d := range names {
		out.duplicates[clean(d)] = struct{}{}
	}
	return out
}

// Duplicates returns the duplicate-name set, sorted.
func (n *Normalizer) Duplicates() []string {
	out := make([]string, 0, len(n.duplicates))
	for d := range n.duplicates {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// IsDuplicate reports whether district is a nationally duplicated name.
func (n *Normalizer) IsDuplicate(district string) bool {
	_, ok := n.duplicates[clean(district)]
	return ok
}

// Normalize returns the canonical key for rawName. When the district name is
// duplicated nationally the key is prefixed with a province label, taken from
// adminCode when given and from the raw name's own prefix otherwise. An
// adminCode with an unknown province yields the bare district name.
func (n *Normalizer) Normalize(rawName, adminCode string) string {
	name := clean(rawName)
	prefix, district, hasPrefix := splitPrefix(name)
	if district == "" {
		return name
	}

	key := district
	if n.IsDuplicate(district) {
		switch {
		case strings.TrimSpace(adminCode) != "":
			if label, ok := ProvinceLabel(adminCode); ok {
				key = label + "-" + district
			}
		case hasPrefix:
			key = prefix + "-" + district
		}
	}

	return strings.TrimSpace(n.overrides.Apply(key))
}

// Key implements Keyer.
func (n *Normalizer) Key(rawName, adminCode string) string {
	return n.Normalize(rawName, adminCode)
}

// splitPrefix splits "대구-동구" into ("대구", "동구", true). Names without a
// dash come back as ("", name, false).
func splitPrefix(name string) (prefix, district string, ok bool) {
	i := strings.Index(name, "-")
	if i < 0 {
		return "", strings.TrimSpace(name), false
	}
	prefix = strings.TrimSpace(name[:i])
	district = strings.TrimSpace(name[i+1:])
	if prefix == "" {
		return "", district, false
	}
	return prefix, district, true
}

func clean(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
