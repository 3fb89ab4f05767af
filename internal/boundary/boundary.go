// Package boundary loads administrative boundary polygons and attaches a
// canonical region key to each feature.
package boundary

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/korea-atlas/internal/region"
	"github.com/sells-group/korea-atlas/internal/tabular"
)

// Feature is one boundary region. Name and AdminCode are the raw source
// values; Key is derived from them.
type Feature struct {
	Name       string
	AdminCode  string
	Key        string
	Geometry   geom.T
	Properties map[string]any
}

// Collection is the loaded boundary dataset.
type Collection struct {
	Source   string
	Features []Feature
}

// Options configures Load.
type Options struct {
	NameField string // required
	CodeField string // optional; when set every feature must carry it
	Encoding  string // DBF text code page for shapefiles
	Keyer     region.Keyer
}

// Load reads a boundary source. Files ending in .shp are read as ESRI
// shapefiles; anything else must be a GeoJSON FeatureCollection. A missing or
// unreadable file, or a feature without the name/code field, yields a
// *tabular.LoadError.
func Load(ctx context.Context, path string, opts Options) (*Collection, error) {
	if opts.NameField == "" {
		return nil, tabular.NewLoadError(path, eris.New("boundary: name field not configured"))
	}

	var (
		features []Feature
		err      error
	)
	if strings.EqualFold(filepath.Ext(path), ".shp") {
		features, err = readShapefile(ctx, path, opts)
	} else {
		features, err = readGeoJSONFile(ctx, path, opts)
	}
	if err != nil {
		return nil, tabular.NewLoadError(path, err)
	}

	c := &Collection{Source: path, Features: features}
	if opts.Keyer != nil {
		c = c.Rekey(opts.Keyer)
	}

	zap.L().With(zap.String("component", "boundary.loader")).Info("boundary features loaded",
		zap.String("source", path),
		zap.Int("features", len(c.Features)),
	)
	return c, nil
}

// Rekey returns a copy of c with every Key recomputed by k.
func (c *Collection) Rekey(k region.Keyer) *Collection {
	out := &Collection{Source: c.Source, Features: make([]Feature, len(c.Features))}
	for i, f := range c.Features {
		f.Key = k.Key(f.Name, f.AdminCode)
		out.Features[i] = f
	}
	return out
}

// Keys returns the feature keys in feature order.
func (c *Collection) Keys() []string {
	keys := make([]string, len(c.Features))
	for i, f := range c.Features {
		keys[i] = f.Key
	}
	return keys
}

// DuplicateNames returns the raw names carried by more than one feature,
// sorted.
func (c *Collection) DuplicateNames() []string {
	counts := make(map[string]int)
	for _, f := range c.Features {
		counts[strings.TrimSpace(f.Name)]++
	}
	var dups []string
	for name, n := range counts {
		if n > 1 && name != "" {
			dups = append(dups, name)
		}
	}
	sort.Strings(dups)
	return dups
}

// Bounds returns the XY extent of all geometries, or nil when there are none.
func (c *Collection) Bounds() *geom.Bounds {
	var b *geom.Bounds
	for _, f := range c.Features {
		if f.Geometry == nil {
			continue
		}
		if b == nil {
			b = geom.NewBounds(geom.XY)
		}
		b.Extend(f.Geometry)
	}
	return b
}

// Center returns the midpoint (x, y) of Bounds. ok is false for an empty
// collection.
func (c *Collection) Center() (x, y float64, ok bool) {
	b := c.Bounds()
	if b == nil || b.IsEmpty() {
		return 0, 0, false
	}
	return (b.Min(0) + b.Max(0)) / 2, (b.Min(1) + b.Max(1)) / 2, true
}
