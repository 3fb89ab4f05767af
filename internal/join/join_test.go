package join

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/korea-atlas/internal/boundary"
)

func TestDiff(t *testing.T) {
	r := Diff(
		[]string{"대구-동구", "강서구", "통합창원시", ""},
		[]string{"대구-동구", "강서구", "창원시"},
	)
	assert.Equal(t, []string{"통합창원시"}, r.OnlyInStats.Sorted())
	assert.Equal(t, []string{"창원시"}, r.OnlyInBoundary.Sorted())
	assert.False(t, r.Empty())

	v := r.View()
	assert.Equal(t, []string{"통합창원시"}, v.OnlyInStats)
	assert.Equal(t, []string{"창원시"}, v.OnlyInBoundary)
}

func TestDiff_Empty(t *testing.T) {
	r := Diff([]string{"a", "b"}, []string{"b", "a", "a"})
	assert.True(t, r.Empty())
	assert.Empty(t, r.View().OnlyInStats)
}

func TestJoin(t *testing.T) {
	features := []boundary.Feature{{Key: "중구"}, {Key: "대구-동구"}, {Key: "없음"}}
	rows := Join(features, map[string]float64{"중구": 0.5, "대구-동구": 0.7, "extra": 1})

	require.Len(t, rows, 3)
	require.NotNil(t, rows[0].Value)
	assert.InDelta(t, 0.5, *rows[0].Value, 1e-9)
	assert.InDelta(t, 0.7, *rows[1].Value, 1e-9)
	assert.Nil(t, rows[2].Value)
	assert.Equal(t, 2, Matched(rows))

	props := Values(rows)
	assert.Equal(t, map[string]any{"value": 0.5}, props(features[0]))
	assert.Equal(t, map[string]any{"value": nil}, props(features[2]))
}

func TestDuplicateKeys(t *testing.T) {
	features := []boundary.Feature{{Key: "동구"}, {Key: "동구"}, {Key: "중구"}}
	assert.Equal(t, map[string]int{"동구": 2}, DuplicateKeys(features))
	assert.Empty(t, DuplicateKeys(features[1:]))
}
