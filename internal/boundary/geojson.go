package boundary

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
)

func readGeoJSONFile(ctx context.Context, path string, opts Options) ([]Feature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "boundary: open geojson")
	}
	defer f.Close() //nolint:errcheck

	return decodeGeoJSON(ctx, f, opts)
}

// decodeGeoJSON parses a FeatureCollection with go-geom and lifts the name
// and code properties onto each Feature.
func decodeGeoJSON(ctx context.Context, r io.Reader, opts Options) ([]Feature, error) {
	var fc geojson.FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, eris.Wrap(err, "boundary: decode geojson")
	}

	features := make([]Feature, 0, len(fc.Features))
	for i, gf := range fc.Features {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "boundary: context cancelled")
		}
		if gf == nil {
			return nil, eris.Errorf("boundary: feature %d is null", i)
		}

		name, ok := propertyString(gf.Properties, opts.NameField)
		if !ok {
			return nil, eris.Errorf("boundary: feature %d missing field %q", i, opts.NameField)
		}
		var code string
		if opts.CodeField != "" {
			code, ok = propertyString(gf.Properties, opts.CodeField)
			if !ok {
				return nil, eris.Errorf("boundary: feature %d missing field %q", i, opts.CodeField)
			}
		}

		features = append(features, Feature{
			Name:       name,
			AdminCode:  code,
			Geometry:   gf.Geometry,
			Properties: gf.Properties,
		})
	}
	return features, nil
}

// propertyString renders a property as text. Numbers are formatted without
// exponent so codes such as 4211000000 survive.
func propertyString(props map[string]any, field string) (string, bool) {
	v, ok := props[field]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// PropertyFunc supplies extra per-feature properties for MarshalGeoJSON.
type PropertyFunc func(f Feature) map[string]any

// MarshalGeoJSON encodes features as a FeatureCollection whose properties
// are name, adminCode and key plus whatever extra returns.
func MarshalGeoJSON(features []Feature, extra PropertyFunc) ([]byte, error) {
	fc := geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(features))}

	c := Collection{Features: features}
	if b := c.Bounds(); b != nil && !b.IsEmpty() {
		fc.BBox = b
	}

	for _, f := range features {
		props := map[string]any{
			"name":      f.Name,
			"adminCode": f.AdminCode,
			"key":       f.Key,
		}
		if extra != nil {
			for k, v := range extra(f) {
				props[k] = v
			}
		}
		fc.Features = append(fc.Features, &geojson.Feature{Geometry: f.Geometry, Properties: props})
	}

	data, err := json.Marshal(&fc)
	if err != nil {
		return nil, eris.Wrap(err, "boundary: marshal feature collection")
	}
	return data, nil
}
