package boundary

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"golang.org/x/text/encoding/korean"

	"github.com/sells-group/korea-atlas/internal/region"
	"github.com/sells-group/korea-atlas/internal/tabular"
)

const sigunguFixture = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"NAME": "동구", "BJCD": 2714000000},
     "geometry": {"type": "Polygon", "coordinates": [[[128.6, 35.8], [128.7, 35.8], [128.7, 35.9], [128.6, 35.8]]]}},
    {"type": "Feature", "properties": {"NAME": "동구", "BJCD": "3011000000"},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[127.4, 36.3], [127.5, 36.3], [127.5, 36.4], [127.4, 36.3]]]]}},
    {"type": "Feature", "properties": {"NAME": "창원시", "BJCD": "4812000000"},
     "geometry": null}
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func sigunguOptions() Options {
	return Options{NameField: "NAME", CodeField: "BJCD", Keyer: region.DefaultNormalizer()}
}

func TestLoad_GeoJSON(t *testing.T) {
	path := writeFile(t, "sigungu.json", sigunguFixture)

	c, err := Load(context.Background(), path, sigunguOptions())
	require.NoError(t, err)
	require.Len(t, c.Features, 3)

	assert.Equal(t, "2714000000", c.Features[0].AdminCode)
	assert.Equal(t, []string{"대구-동구", "대전-동구", "통합창원시"}, c.Keys())
	assert.NotNil(t, c.Features[1].Geometry)
	assert.Nil(t, c.Features[2].Geometry)
}

func TestLoad_MissingCodeField(t *testing.T) {
	path := writeFile(t, "bad.json", `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"NAME":"중구"},"geometry":null}]}`)

	_, err := Load(context.Background(), path, sigunguOptions())
	var le *tabular.LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, err.Error(), "BJCD")
}

func TestLoad_CodeFieldOptional(t *testing.T) {
	path := writeFile(t, "sido.json", `{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"CTP_KOR_NM":"서울특별시"},"geometry":null}]}`)

	c, err := Load(context.Background(), path, Options{NameField: "CTP_KOR_NM", Keyer: region.ProvinceKeyer{}})
	require.NoError(t, err)
	assert.Equal(t, []string{"서울특별시"}, c.Keys())
}

func TestLoad_Unreadable(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"), sigunguOptions())
	var le *tabular.LoadError
	require.ErrorAs(t, err, &le)

	path := writeFile(t, "garbage.json", "{not json")
	_, err = Load(context.Background(), path, sigunguOptions())
	require.ErrorAs(t, err, &le)

	path = writeFile(t, "feature.json", `{"type":"Feature","properties":{}}`)
	_, err = Load(context.Background(), path, sigunguOptions())
	require.ErrorAs(t, err, &le)
}

func TestLoad_NoNameField(t *testing.T) {
	_, err := Load(context.Background(), "x.json", Options{})
	var le *tabular.LoadError
	require.ErrorAs(t, err, &le)
}

func TestDuplicateNamesAndRekey(t *testing.T) {
	path := writeFile(t, "sigungu.json", sigunguFixture)
	c, err := Load(context.Background(), path, Options{NameField: "NAME", CodeField: "BJCD", Keyer: region.NewNormalizer(nil, nil)})
	require.NoError(t, err)
	assert.Equal(t, []string{"동구", "동구", "창원시"}, c.Keys())

	dups := c.DuplicateNames()
	assert.Equal(t, []string{"동구"}, dups)

	rekeyed := c.Rekey(region.NewNormalizer(nil, nil).WithDuplicates(dups...))
	assert.Equal(t, []string{"대구-동구", "대전-동구", "창원시"}, rekeyed.Keys())
	assert.Equal(t, "동구", c.Features[0].Key, "Rekey must not mutate the receiver")
}

func TestBoundsAndCenter(t *testing.T) {
	path := writeFile(t, "sigungu.json", sigunguFixture)
	c, err := Load(context.Background(), path, sigunguOptions())
	require.NoError(t, err)

	b := c.Bounds()
	require.NotNil(t, b)
	assert.InDelta(t, 127.4, b.Min(0), 1e-9)
	assert.InDelta(t, 36.4, b.Max(1), 1e-9)

	x, y, ok := c.Center()
	require.True(t, ok)
	assert.InDelta(t, 128.05, x, 1e-9)
	assert.InDelta(t, 36.1, y, 1e-9)

	_, _, ok = (&Collection{}).Center()
	assert.False(t, ok)
}

func TestMarshalGeoJSON(t *testing.T) {
	path := writeFile(t, "sigungu.json", sigunguFixture)
	c, err := Load(context.Background(), path, sigunguOptions())
	require.NoError(t, err)

	data, err := MarshalGeoJSON(c.Features, func(f Feature) map[string]any {
		return map[string]any{"value": len(f.Key)}
	})
	require.NoError(t, err)

	var out struct {
		Type     string    `json:"type"`
		BBox     []float64 `json:"bbox"`
		Features []struct {
			Geometry   json.RawMessage `json:"geometry"`
			Properties map[string]any  `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "FeatureCollection", out.Type)
	assert.Len(t, out.BBox, 4)
	require.Len(t, out.Features, 3)
	assert.Equal(t, "대구-동구", out.Features[0].Properties["key"])
	assert.Equal(t, "2714000000", out.Features[0].Properties["adminCode"])
	assert.Contains(t, string(out.Features[0].Geometry), "Polygon")
	assert.Equal(t, "null", string(out.Features[2].Geometry))

	// Round trip through the loader.
	roundTrip := writeFile(t, "out.json", string(data))
	again, err := Load(context.Background(), roundTrip, Options{NameField: "name", CodeField: "adminCode", Keyer: region.DefaultNormalizer()})
	require.NoError(t, err)
	assert.Equal(t, c.Keys(), again.Keys())
}

func TestLoad_Shapefile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sig.shp")
	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{
		shp.StringField("SIG_CD", 10),
		shp.StringField("SIG_KOR_NM", 40),
	}))

	rows := []struct{ code, name string }{
		{"27140", "동구"},
		{"42820", "고성군"},
	}
	for i, r := range rows {
		line := shp.NewPolyLine([][]shp.Point{{
			{X: float64(i), Y: 0}, {X: float64(i) + 1, Y: 0}, {X: float64(i) + 1, Y: 1}, {X: float64(i), Y: 0},
		}})
		poly := shp.Polygon(*line)
		idx := w.Write(&poly)
		encoded, err := korean.EUCKR.NewEncoder().String(r.name)
		require.NoError(t, err)
		require.NoError(t, w.WriteAttribute(int(idx), 0, r.code))
		require.NoError(t, w.WriteAttribute(int(idx), 1, encoded))
	}
	w.Close()

	c, err := Load(context.Background(), path, Options{
		NameField: "SIG_KOR_NM",
		CodeField: "SIG_CD",
		Encoding:  "cp949",
		Keyer:     region.DefaultNormalizer(),
	})
	require.NoError(t, err)
	require.Len(t, c.Features, 2)
	assert.Equal(t, "동구", c.Features[0].Name)
	assert.Equal(t, []string{"대구-동구", "강원-고성군"}, c.Keys())
	assert.NotNil(t, c.Features[0].Geometry)

	_, err = Load(context.Background(), path, Options{NameField: "NOPE"})
	var le *tabular.LoadError
	assert.ErrorAs(t, err, &le)
	assert.True(t, strings.Contains(err.Error(), "NOPE"))
}

func TestPolygonToMultiPolygon_Empty(t *testing.T) {
	assert.Nil(t, polygonToMultiPolygon(nil))
	assert.Nil(t, polygonToMultiPolygon(&shp.Polygon{}))
}

func ringPolygon(rings ...[]shp.Point) *shp.Polygon {
	p := &shp.Polygon{NumParts: int32(len(rings))}
	for _, r := range rings {
		p.Parts = append(p.Parts, int32(len(p.Points)))
		p.Points = append(p.Points, r...)
	}
	p.NumPoints = int32(len(p.Points))
	return p
}

func TestPolygonToMultiPolygon_Holes(t *testing.T) {
	outer := []shp.Point{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0}}
	hole := []shp.Point{{X: 4, Y: 4}, {X: 6, Y: 4}, {X: 6, Y: 6}, {X: 4, Y: 6}, {X: 4, Y: 4}}
	island := []shp.Point{{X: 20, Y: 0}, {X: 20, Y: 1}, {X: 21, Y: 1}, {X: 21, Y: 0}, {X: 20, Y: 0}}

	mp := polygonToMultiPolygon(ringPolygon(outer, hole, island))
	require.NotNil(t, mp)
	require.Equal(t, 2, mp.NumPolygons())
	assert.Equal(t, 2, mp.Polygon(0).NumLinearRings())
	assert.Equal(t, 1, mp.Polygon(1).NumLinearRings())
	assert.InDelta(t, 96, math.Abs(mp.Polygon(0).Area()), 1e-9)

	data, err := MarshalGeoJSON([]Feature{{Name: "달서구", Key: "달서구", Geometry: mp}}, nil)
	require.NoError(t, err)
	again, err := decodeGeoJSON(context.Background(), strings.NewReader(string(data)), Options{NameField: "name"})
	require.NoError(t, err)
	require.Len(t, again, 1)
	decoded, ok := again[0].Geometry.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, 2, decoded.Polygon(0).NumLinearRings())
}

func TestPolygonToMultiPolygon_LeadingHole(t *testing.T) {
	ccw := []shp.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 0}}

	mp := polygonToMultiPolygon(ringPolygon(ccw))
	require.NotNil(t, mp)
	assert.Equal(t, 1, mp.NumPolygons())
}
