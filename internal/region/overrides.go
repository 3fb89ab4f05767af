package region

import (
	_ "embed"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed overrides.yaml
var defaultOverridesYAML []byte

// Overrides is the versioned table of manual key corrections.
type Overrides struct {
	Version       int               `yaml:"version"`
	PrefixRemoval []string          `yaml:"prefix_removal"`
	Replacements  map[string]string `yaml:"replacements"`

	table map[string]string
}

// DefaultOverrides returns the embedded override table.
func DefaultOverrides() *Overrides {
	o, err := ParseOverrides(defaultOverridesYAML)
	if err != nil {
		panic(err) // embedded data is validated by tests
	}
	return o
}

// LoadOverrides reads an override table from a YAML file.
func LoadOverrides(path string) (*Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "region: read overrides %s", path)
	}
	return ParseOverrides(data)
}

// ParseOverrides decodes and validates an override table. A replacement
// target may not itself be an override source, so one pass is always final.
func ParseOverrides(data []byte) (*Overrides, error) {
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, eris.Wrap(err, "region: parse overrides")
	}

	o.table = make(map[string]string, len(o.PrefixRemoval)+len(o.Replacements))
	for _, key := range o.PrefixRemoval {
		key = strings.TrimSpace(key)
		_, district, ok := splitPrefix(key)
		if !ok {
			return nil, eris.Errorf("region: prefix removal entry %q has no prefix", key)
		}
		o.table[key] = district
	}
	for from, to := range o.Replacements {
		from, to = strings.TrimSpace(from), strings.TrimSpace(to)
		if _, dup := o.table[from]; dup {
			return nil, eris.Errorf("region: override %q defined twice", from)
		}
		o.table[from] = to
	}
	for from, to := range o.table {
		if _, chained := o.table[to]; chained {
			return nil, eris.Errorf("region: override %q -> %q chains into another override", from, to)
		}
	}

	return &o, nil
}

// Apply returns the corrected key, or key unchanged when no entry matches.
func (o *Overrides) Apply(key string) string {
	if o == nil {
		return key
	}
	if to, ok := o.table[key]; ok {
		return to
	}
	return key
}

// Len returns the number of override entries.
func (o *Overrides) Len() int {
	if o == nil {
		return 0
	}
	return len(o.table)
}
