// Package chart renders bar, line and choropleth figures as PNG.
package chart

import (
	"image/color"
	"io"
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/sells-group/korea-atlas/internal/join"
)

// Default figure sizes.
const (
	Width  = 8 * vg.Inch
	Height = 5 * vg.Inch
)

// Classes is the number of choropleth color classes.
const Classes = 7

var (
	barColor  = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	lineColor = color.RGBA{R: 0, G: 100, B: 0, A: 255}
	noData    = color.RGBA{R: 220, G: 220, B: 220, A: 255}
)

func newPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	return p
}

func save(p *plot.Plot, w io.Writer) error {
	wt, err := p.WriterTo(Width, Height, "png")
	if err != nil {
		return eris.Wrap(err, "chart: create writer")
	}
	if _, err := wt.WriteTo(w); err != nil {
		return eris.Wrap(err, "chart: write png")
	}
	return nil
}

// Bar draws one bar per label.
func Bar(w io.Writer, title string, labels []string, values []float64) error {
	if len(labels) != len(values) {
		return eris.Errorf("chart: %d labels for %d values", len(labels), len(values))
	}
	p := newPlot(title)
	if len(values) > 0 {
		bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(20))
		if err != nil {
			return eris.Wrap(err, "chart: bar chart")
		}
		bars.Color = barColor
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)
		p.NominalX(labels...)
		p.X.Tick.Label.XAlign = draw.XCenter
	}
	p.Add(plotter.NewGrid())
	return save(p, w)
}

// Line draws values in order with labels on the x axis.
func Line(w io.Writer, title string, labels []string, values []float64) error {
	if len(labels) != len(values) {
		return eris.Errorf("chart: %d labels for %d values", len(labels), len(values))
	}
	p := newPlot(title)
	if len(values) > 0 {
		pts := make(plotter.XYs, len(values))
		for i, v := range values {
			pts[i].X = float64(i)
			pts[i].Y = v
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return eris.Wrap(err, "chart: line")
		}
		line.Color = lineColor
		line.Width = vg.Points(2)
		p.Add(line)
		p.NominalX(labels...)
	}
	p.Add(plotter.NewGrid())
	return save(p, w)
}

// Choropleth fills every feature by its value class on the BuPu scale.
// Rows without a value are drawn light grey.
func Choropleth(w io.Writer, title string, rows []join.Row) error {
	pal, err := brewer.GetPalette(brewer.TypeSequential, "BuPu", Classes)
	if err != nil {
		return eris.Wrap(err, "chart: palette")
	}
	colors := pal.Colors()
	breaks := Breaks(rows, len(colors))

	p := newPlot(title)
	p.HideAxes()

	for _, r := range rows {
		fill := color.Color(noData)
		if r.Value != nil {
			fill = colors[classOf(*r.Value, breaks)]
		}
		for _, rings := range polygonRings(r.Feature.Geometry) {
			poly, err := plotter.NewPolygon(rings...)
			if err != nil {
				return eris.Wrapf(err, "chart: polygon %s", r.Feature.Key)
			}
			poly.Color = fill
			poly.LineStyle.Width = vg.Points(0.3)
			poly.LineStyle.Color = color.White
			p.Add(poly)
		}
	}
	return save(p, w)
}

// Breaks returns upper bounds of n equal-count classes over the row values.
func Breaks(rows []join.Row, n int) []float64 {
	var vals []float64
	for _, r := range rows {
		if r.Value != nil && !math.IsNaN(*r.Value) {
			vals = append(vals, *r.Value)
		}
	}
	if len(vals) == 0 || n < 1 {
		return nil
	}
	sort.Float64s(vals)
	breaks := make([]float64, n)
	for i := range n {
		idx := (i+1)*len(vals)/n - 1
		if idx < 0 {
			idx = 0
		}
		breaks[i] = vals[idx]
	}
	return breaks
}

func classOf(v float64, breaks []float64) int {
	for i, b := range breaks {
		if v <= b {
			return i
		}
	}
	return len(breaks) - 1
}

// polygonRings returns each polygon of g as its rings.
func polygonRings(g geom.T) [][]plotter.XYer {
	var out [][]plotter.XYer
	addPolygon := func(poly *geom.Polygon) {
		var rings []plotter.XYer
		for i := 0; i < poly.NumLinearRings(); i++ {
			coords := poly.LinearRing(i).Coords()
			xys := make(plotter.XYs, len(coords))
			for j, c := range coords {
				xys[j].X, xys[j].Y = c.X(), c.Y()
			}
			rings = append(rings, xys)
		}
		if len(rings) > 0 {
			out = append(out, rings)
		}
	}
	switch g := g.(type) {
	case *geom.Polygon:
		addPolygon(g)
	case *geom.MultiPolygon:
		for i := 0; i < g.NumPolygons(); i++ {
			addPolygon(g.Polygon(i))
		}
	}
	return out
}
