// Package birthrate loads the municipal birth-rate table and its boundary
// map and reconciles their region names for a choropleth join.
package birthrate

import (
	"context"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/korea-atlas/internal/region"
	"github.com/sells-group/korea-atlas/internal/tabular"
)

// StatRecord is one municipal row of the statistics table.
type StatRecord struct {
	Name  string  `json:"name"`
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// StatOptions configures LoadStats.
type StatOptions struct {
	Encoding     string
	HeaderOffset int
	NameColumn   string
	ValueColumn  string
	Keyer        region.Keyer
}

// LoadStats reads the statistics table at path. Province and metropolitan
// aggregate rows are dropped, and so are rows whose metric is not numeric.
func LoadStats(ctx context.Context, path string, opts StatOptions) ([]StatRecord, error) {
	tbl, err := tabular.ReadTable(ctx, path, tabular.TableOptions{
		Encoding:     opts.Encoding,
		HeaderOffset: opts.HeaderOffset,
	})
	if err != nil {
		return nil, err
	}
	return statsFromTable(tbl, opts)
}

// LoadStatsFrom is LoadStats for delimited text already open as r.
func LoadStatsFrom(ctx context.Context, source string, r io.Reader, opts StatOptions) ([]StatRecord, error) {
	tbl, err := tabular.ReadTableFrom(ctx, source, r, tabular.TableOptions{
		Encoding:     opts.Encoding,
		HeaderOffset: opts.HeaderOffset,
	})
	if err != nil {
		return nil, err
	}
	return statsFromTable(tbl, opts)
}

func statsFromTable(tbl *tabular.Table, opts StatOptions) ([]StatRecord, error) {
	if err := tbl.RequireColumns(opts.NameColumn, opts.ValueColumn); err != nil {
		return nil, err
	}
	nameCol, _ := tbl.Column(opts.NameColumn)
	valueCol, _ := tbl.Column(opts.ValueColumn)

	keyer := opts.Keyer
	if keyer == nil {
		keyer = region.DefaultNormalizer()
	}

	log := zap.L().With(zap.String("component", "birthrate.stats"), zap.String("source", tbl.Source))

	var (
		records    []StatRecord
		aggregates int
		invalid    int
	)
	for _, row := range tbl.Rows {
		name := tabular.Cell(row, nameCol)
		if name == "" {
			continue
		}
		if region.IsAggregateLabel(name) {
			aggregates++
			continue
		}

		value, ok := parseMetric(tabular.Cell(row, valueCol))
		if !ok {
			invalid++
			log.Debug("non-numeric metric", zap.String("name", name))
			continue
		}

		records = append(records, StatRecord{
			Name:  name,
			Key:   keyer.Key(name, ""),
			Value: value,
		})
	}

	log.Info("statistics rows loaded",
		zap.Int("rows", len(records)),
		zap.Int("aggregates_dropped", aggregates),
		zap.Int("invalid_dropped", invalid),
	)
	return records, nil
}

// parseMetric accepts "1,234.5" style numbers. KOSIS marks missing values
// with "-" or leaves them blank.
func parseMetric(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// StatTable is the export form of statistics rows.
type StatTable []StatRecord

// Header implements export.Table.
func (t StatTable) Header() []string { return []string{"name", "key", "value"} }

// Records implements export.Table.
func (t StatTable) Records() [][]string {
	out := make([][]string, len(t))
	for i, s := range t {
		out[i] = []string{s.Name, s.Key, strconv.FormatFloat(s.Value, 'f', -1, 64)}
	}
	return out
}
