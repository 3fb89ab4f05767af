package boundary

import (
	"context"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/korea-atlas/internal/tabular"
)

// readShapefile reads polygons and DBF attributes. Coordinates are taken as
// stored; no reprojection is applied.
func readShapefile(ctx context.Context, path string, opts Options) ([]Feature, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := fieldIndex(reader, opts.NameField)
	if nameIdx < 0 {
		return nil, eris.Errorf("boundary: shapefile has no field %q", opts.NameField)
	}
	codeIdx := -1
	if opts.CodeField != "" {
		codeIdx = fieldIndex(reader, opts.CodeField)
		if codeIdx < 0 {
			return nil, eris.Errorf("boundary: shapefile has no field %q", opts.CodeField)
		}
	}

	var (
		features []Feature
		skipped  int
	)
	for reader.Next() {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "boundary: context cancelled")
		}

		_, shape := reader.Shape()
		name := attribute(reader, nameIdx, opts.Encoding)
		var code string
		if codeIdx >= 0 {
			code = attribute(reader, codeIdx, opts.Encoding)
		}

		var g geom.T
		if p, ok := shape.(*shp.Polygon); ok {
			if mp := polygonToMultiPolygon(p); mp != nil {
				g = mp
			}
		}
		if g == nil {
			skipped++
		}

		features = append(features, Feature{
			Name:       name,
			AdminCode:  code,
			Geometry:   g,
			Properties: map[string]any{opts.NameField: name},
		})
		if codeIdx >= 0 {
			features[len(features)-1].Properties[opts.CodeField] = code
		}
	}

	if skipped > 0 {
		zap.L().Debug("boundary: shapefile records without polygon geometry",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return features, nil
}

func attribute(reader *shp.Reader, idx int, encoding string) string {
	raw := strings.TrimRight(reader.Attribute(idx), "\x00")
	return strings.TrimSpace(tabular.DecodeString(raw, encoding))
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
// Clockwise parts open a new polygon; counter-clockwise parts are holes of the
// polygon opened before them. A hole with no preceding outer ring is read as
// an outer ring.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	var current *geom.Polygon
	flush := func() {
		if current == nil {
			return
		}
		if err := mp.Push(current); err != nil {
			zap.L().Debug("boundary: skipping malformed polygon part", zap.Error(err))
		}
		current = nil
	}

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if start < 0 || end > int32(len(p.Points)) || end-start < 4 {
			zap.L().Debug("boundary: skipping degenerate polygon ring", zap.Int32("part", i))
			continue
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if current == nil || signedArea(flat) < 0 {
			flush()
			current = geom.NewPolygon(geom.XY)
		}
		if err := current.Push(ring); err != nil {
			zap.L().Debug("boundary: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
		}
	}
	flush()

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// signedArea is the shoelace area of a closed XY ring; negative for clockwise.
func signedArea(flat []float64) float64 {
	var sum float64
	n := len(flat) / 2
	for k := 0; k < n; k++ {
		x1, y1 := flat[2*k], flat[2*k+1]
		x2, y2 := flat[2*((k+1)%n)], flat[2*((k+1)%n)+1]
		sum += x1*y2 - x2*y1
	}
	return sum / 2
}
