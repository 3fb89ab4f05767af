package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/korea-atlas/internal/config"
	"github.com/sells-group/korea-atlas/internal/tabular"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Birth.StatsPath = filepath.Join("..", "birthrate", "testdata", "births.csv")
	cfg.Birth.StatsEncoding = "cp949"
	cfg.Birth.HeaderOffset = 2
	cfg.Birth.NameColumn = "전국"
	cfg.Birth.ValueColumn = "0.721"
	cfg.Birth.BoundaryPath = filepath.Join("..", "birthrate", "testdata", "sigungu.geojson")
	cfg.Birth.NameField = "NAME"
	cfg.Birth.CodeField = "BJCD"
	cfg.Bike.AccidentsPath = filepath.Join("testdata", "bike.csv")
	cfg.Bike.BoundaryPath = filepath.Join("testdata", "ctprvn.geojson")
	cfg.Bike.NameField = "CTP_KOR_NM"
	cfg.Cache.MaxEntries = 4
	return cfg
}

func TestLoader_Birth(t *testing.T) {
	l, err := New(testConfig())
	require.NoError(t, err)

	first, err := l.Birth(context.Background())
	require.NoError(t, err)
	assert.Len(t, first.Stats, 14)
	assert.True(t, first.Diff().Empty())

	second, err := l.Birth(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int64(1), l.CacheStats()["birth"].Hits)
}

func TestLoader_ProvincesAndAccidents(t *testing.T) {
	l, err := New(testConfig())
	require.NoError(t, err)

	provinces, err := l.Provinces(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"서울특별시", "부산광역시", "경기도", "제주특별자치도"}, provinces.Keys())

	rows, err := l.Accidents(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 5)
	assert.Equal(t, "부산광역시", rows[2].Province)
}

func TestLoader_Warm(t *testing.T) {
	l, err := New(testConfig())
	require.NoError(t, err)
	require.NoError(t, l.Warm(context.Background()))

	for name, s := range l.CacheStats() {
		assert.Equal(t, 1, s.Entries, name)
	}
}

func TestLoader_MissingFile(t *testing.T) {
	cfg := testConfig()
	cfg.Bike.AccidentsPath = filepath.Join(t.TempDir(), "missing.csv")
	l, err := New(cfg)
	require.NoError(t, err)

	_, err = l.Accidents(context.Background())
	var le *tabular.LoadError
	require.ErrorAs(t, err, &le)

	assert.Error(t, l.Warm(context.Background()))
}

func TestLoader_ReloadsChangedFile(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "bike.csv"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "bike.csv")
	require.NoError(t, os.WriteFile(path, src, 0o600))

	cfg := testConfig()
	cfg.Bike.AccidentsPath = path
	l, err := New(cfg)
	require.NoError(t, err)

	rows, err := l.Accidents(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 5)

	short := "발생일,다발지시군구\n2020-01-01,서울특별시 종로구\n"
	require.NoError(t, os.WriteFile(path, []byte(short), 0o600))
	rows, err = l.Accidents(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	l.Invalidate(path)
	assert.Equal(t, 0, l.CacheStats()["accidents"].Entries)
}

func TestLoader_Upload(t *testing.T) {
	l, err := New(testConfig())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join("testdata", "bike.csv"))
	require.NoError(t, err)

	a, err := l.LoadUpload(context.Background(), "mine.csv", data)
	require.NoError(t, err)
	b, err := l.LoadUpload(context.Background(), "mine.csv", data)
	require.NoError(t, err)

	assert.Len(t, a.Rows, 5)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, int64(1), l.CacheStats()["accidents"].Hits)

	_, err = l.LoadUpload(context.Background(), "bad.csv", []byte("a,b\n1,2\n"))
	var le *tabular.LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "bad.csv", le.Source)
}

func TestNew_Overrides(t *testing.T) {
	cfg := testConfig()
	cfg.Birth.OverridesPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := New(cfg)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\nreplacements:\n  창원시: 통합창원시\n"), 0o600))
	cfg.Birth.OverridesPath = path
	l, err := New(cfg)
	require.NoError(t, err)

	d, err := l.Birth(context.Background())
	require.NoError(t, err)
	assert.False(t, d.Diff().Empty(), "prefix removals missing from the custom table")
}

func TestLoader_BirthWithConfigDefaults(t *testing.T) {
	stats, err := filepath.Abs(filepath.Join("..", "birthrate", "testdata", "births.csv"))
	require.NoError(t, err)
	boundaries, err := filepath.Abs(filepath.Join("..", "birthrate", "testdata", "sigungu.geojson"))
	require.NoError(t, err)

	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck

	t.Setenv("ATLAS_BIRTH_STATS_PATH", stats)
	t.Setenv("ATLAS_BIRTH_BOUNDARY_PATH", boundaries)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate("birth"))

	l, err := New(cfg)
	require.NoError(t, err)

	ds, err := l.Birth(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Stats, 14)
	assert.True(t, ds.Diff().Empty())
}
