package birthrate

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/korea-atlas/internal/boundary"
	"github.com/sells-group/korea-atlas/internal/join"
	"github.com/sells-group/korea-atlas/internal/region"
)

// Options locates and describes both birth-rate inputs.
type Options struct {
	StatsPath    string
	BoundaryPath string
	Stats        StatOptions
	Boundary     boundary.Options
	Normalizer   *region.Normalizer // default region.DefaultNormalizer()
}

// Dataset is the keyed boundary collection and statistics table.
type Dataset struct {
	Normalizer *region.Normalizer
	Boundary   *boundary.Collection
	Stats      []StatRecord
}

// Load reads the boundary first; names it finds on more than one feature
// join the normalizer's duplicate set before either side is keyed.
func Load(ctx context.Context, opts Options) (*Dataset, error) {
	n := opts.Normalizer
	if n == nil {
		n = region.DefaultNormalizer()
	}

	bopts := opts.Boundary
	bopts.Keyer = n
	coll, err := boundary.Load(ctx, opts.BoundaryPath, bopts)
	if err != nil {
		return nil, err
	}

	n = n.WithDuplicates(coll.DuplicateNames()...)
	coll = coll.Rekey(n)

	sopts := opts.Stats
	sopts.Keyer = n
	stats, err := LoadStats(ctx, opts.StatsPath, sopts)
	if err != nil {
		return nil, err
	}

	return &Dataset{Normalizer: n, Boundary: coll, Stats: stats}, nil
}

// StatKeys returns the statistics keys in row order.
func (d *Dataset) StatKeys() []string {
	keys := make([]string, len(d.Stats))
	for i, s := range d.Stats {
		keys[i] = s.Key
	}
	return keys
}

// Values maps key to metric. When two rows share a key the later row wins
// and the collision is logged.
func (d *Dataset) Values() map[string]float64 {
	values := make(map[string]float64, len(d.Stats))
	for _, s := range d.Stats {
		if _, dup := values[s.Key]; dup {
			zap.L().Warn("birthrate: statistics key repeated", zap.String("key", s.Key), zap.String("name", s.Name))
		}
		values[s.Key] = s.Value
	}
	return values
}

// Join pairs every boundary feature with its metric.
func (d *Dataset) Join() []join.Row {
	return join.Join(d.Boundary.Features, d.Values())
}

// Diff reports keys that failed to pair.
func (d *Dataset) Diff() join.Report {
	return join.Diff(d.StatKeys(), d.Boundary.Keys())
}

// DuplicateKeys returns boundary keys shared by several features.
func (d *Dataset) DuplicateKeys() map[string]int {
	return join.DuplicateKeys(d.Boundary.Features)
}
