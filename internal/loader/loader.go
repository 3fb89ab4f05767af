// Package loader builds the datasets named by the configuration and keeps
// them in a caller-owned loader cache.
package loader

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/korea-atlas/internal/accident"
	"github.com/sells-group/korea-atlas/internal/birthrate"
	"github.com/sells-group/korea-atlas/internal/boundary"
	"github.com/sells-group/korea-atlas/internal/config"
	"github.com/sells-group/korea-atlas/internal/loadcache"
	"github.com/sells-group/korea-atlas/internal/region"
	"github.com/sells-group/korea-atlas/internal/tabular"
)

// Loader loads both datasets. Results are memoized by file identity, so an
// edited input file is re-read on the next call.
type Loader struct {
	cfg *config.Config

	births     *loadcache.Cache[*birthrate.Dataset]
	provinces  *loadcache.Cache[*boundary.Collection]
	accidents  *loadcache.Cache[[]accident.Record]
	normalizer *region.Normalizer
}

// New creates a Loader. The override table is read once here.
func New(cfg *config.Config) (*Loader, error) {
	overrides := region.DefaultOverrides()
	if cfg.Birth.OverridesPath != "" {
		o, err := region.LoadOverrides(cfg.Birth.OverridesPath)
		if err != nil {
			return nil, eris.Wrap(err, "loader: overrides")
		}
		overrides = o
	}

	var ttl time.Duration
	if cfg.Cache.TTLMinutes > 0 {
		ttl = time.Duration(cfg.Cache.TTLMinutes) * time.Minute
	}

	return &Loader{
		cfg:        cfg,
		births:     loadcache.New[*birthrate.Dataset](cfg.Cache.MaxEntries, ttl),
		provinces:  loadcache.New[*boundary.Collection](cfg.Cache.MaxEntries, ttl),
		accidents:  loadcache.New[[]accident.Record](cfg.Cache.MaxEntries, ttl),
		normalizer: region.NewNormalizer(region.DefaultDuplicates, overrides),
	}, nil
}

func fileIdentity(path string) (loadcache.Identity, error) {
	id, err := loadcache.FileIdentity(path)
	if err != nil {
		return id, tabular.NewLoadError(path, err)
	}
	return id, nil
}

// BirthOptions returns the birthrate load options for the configuration.
func (l *Loader) BirthOptions() birthrate.Options {
	b := l.cfg.Birth
	return birthrate.Options{
		StatsPath:    b.StatsPath,
		BoundaryPath: b.BoundaryPath,
		Stats: birthrate.StatOptions{
			Encoding:     b.StatsEncoding,
			HeaderOffset: b.HeaderOffset,
			NameColumn:   b.NameColumn,
			ValueColumn:  b.ValueColumn,
		},
		Boundary: boundary.Options{
			NameField: b.NameField,
			CodeField: b.CodeField,
			Encoding:  b.BoundaryEncoding,
		},
		Normalizer: l.normalizer,
	}
}

// Birth returns the keyed birth-rate dataset.
func (l *Loader) Birth(ctx context.Context) (*birthrate.Dataset, error) {
	opts := l.BirthOptions()
	statsID, err := fileIdentity(opts.StatsPath)
	if err != nil {
		return nil, err
	}
	boundaryID, err := fileIdentity(opts.BoundaryPath)
	if err != nil {
		return nil, err
	}
	id := loadcache.Identity{
		Source:  opts.StatsPath + "|" + opts.BoundaryPath,
		Version: statsID.Version + "|" + boundaryID.Version,
	}
	return l.births.GetOrLoad(ctx, id, func(ctx context.Context) (*birthrate.Dataset, error) {
		return birthrate.Load(ctx, opts)
	})
}

// Provinces returns the province boundary collection keyed like accident
// locations.
func (l *Loader) Provinces(ctx context.Context) (*boundary.Collection, error) {
	b := l.cfg.Bike
	id, err := fileIdentity(b.BoundaryPath)
	if err != nil {
		return nil, err
	}
	return l.provinces.GetOrLoad(ctx, id, func(ctx context.Context) (*boundary.Collection, error) {
		return boundary.Load(ctx, b.BoundaryPath, boundary.Options{
			NameField: b.NameField,
			Encoding:  b.BoundaryEncoding,
			Keyer:     region.ProvinceKeyer{},
		})
	})
}

// Accidents returns the configured accident table.
func (l *Loader) Accidents(ctx context.Context) ([]accident.Record, error) {
	b := l.cfg.Bike
	id, err := fileIdentity(b.AccidentsPath)
	if err != nil {
		return nil, err
	}
	return l.accidents.GetOrLoad(ctx, id, func(ctx context.Context) ([]accident.Record, error) {
		return accident.LoadFile(ctx, b.AccidentsPath, accident.LoadOptions{Encoding: b.Encoding})
	})
}

// Upload is an accident table supplied at runtime.
type Upload struct {
	ID       string
	Filename string
	Rows     []accident.Record
}

// LoadUpload parses an uploaded accident table: .xlsx by file name, otherwise
// CSV in the configured encoding.
// Identical content is parsed once.
func (l *Loader) LoadUpload(ctx context.Context, filename string, data []byte) (*Upload, error) {
	id := loadcache.ContentIdentity("upload"+strings.ToLower(filepath.Ext(filename)), data)
	rows, err := l.accidents.GetOrLoad(ctx, id, func(ctx context.Context) ([]accident.Record, error) {
		return accident.LoadBytes(ctx, filename, data, accident.LoadOptions{Encoding: l.cfg.Bike.Encoding})
	})
	if err != nil {
		return nil, err
	}
	u := &Upload{ID: uuid.NewString(), Filename: filename, Rows: rows}
	zap.L().With(zap.String("component", "loader")).Info("accident table uploaded",
		zap.String("upload_id", u.ID),
		zap.String("filename", filename),
		zap.Int("rows", len(rows)),
	)
	return u, nil
}

// Warm loads every dataset concurrently and returns the first failure.
func (l *Loader) Warm(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := l.Birth(ctx)
		return err
	})
	g.Go(func() error {
		_, err := l.Provinces(ctx)
		return err
	})
	g.Go(func() error {
		_, err := l.Accidents(ctx)
		return err
	})
	return g.Wait()
}

// Invalidate drops cached results for path.
func (l *Loader) Invalidate(path string) {
	l.provinces.Invalidate(path)
	l.accidents.Invalidate(path)
	b := l.cfg.Birth
	if path == b.StatsPath || path == b.BoundaryPath {
		l.births.Invalidate(b.StatsPath + "|" + b.BoundaryPath)
	}
}

// CacheStats reports each cache by dataset.
func (l *Loader) CacheStats() map[string]loadcache.Stats {
	return map[string]loadcache.Stats{
		"birth":     l.births.Stats(),
		"provinces": l.provinces.Stats(),
		"accidents": l.accidents.Stats(),
	}
}
