package accident

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Count column names used by the published views.
const (
	ColFrequency = "빈도수"
	ColCount     = "빈도"
	ColPeople    = "명"
	ColMonthYear = "month_year"
)

// Count is one group and its row count.
type Count struct {
	Group []string
	Count int
}

// CountTable is a group-by count table. Rows are in first-appearance order
// unless the producing view documents otherwise.
type CountTable struct {
	Fields      []string
	CountColumn string
	Rows        []Count
}

// Header implements export.Table.
func (t CountTable) Header() []string {
	h := make([]string, 0, len(t.Fields)+1)
	h = append(h, t.Fields...)
	return append(h, t.CountColumn)
}

// Records implements export.Table.
func (t CountTable) Records() [][]string {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rec := make([]string, 0, len(r.Group)+1)
		rec = append(rec, r.Group...)
		out[i] = append(rec, strconv.Itoa(r.Count))
	}
	return out
}

// Total sums every count.
func (t CountTable) Total() int {
	n := 0
	for _, r := range t.Rows {
		n += r.Count
	}
	return n
}

// Ranked returns a copy ordered by count, largest first. Equal counts keep
// their current order.
func (t CountTable) Ranked() CountTable {
	rows := make([]Count, len(t.Rows))
	copy(rows, t.Rows)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	t.Rows = rows
	return t
}

// Totals sums counts by the named group field.
func (t CountTable) Totals(field string) map[string]float64 {
	idx := -1
	for i, f := range t.Fields {
		if f == field {
			idx = i
			break
		}
	}
	out := make(map[string]float64)
	if idx < 0 {
		return out
	}
	for _, r := range t.Rows {
		out[r.Group[idx]] += float64(r.Count)
	}
	return out
}

// AggregateCountsByGroup counts rows per distinct combination of fields.
func AggregateCountsByGroup(rows []Record, fields []string) CountTable {
	return countBy(rows, fields, ColFrequency, func(r Record) []string {
		g := make([]string, len(fields))
		for i, f := range fields {
			g[i] = r.Field(f)
		}
		return g
	})
}

func countBy(rows []Record, fields []string, countCol string, groupOf func(Record) []string) CountTable {
	t := CountTable{Fields: fields, CountColumn: countCol}
	index := make(map[string]int)
	for _, r := range rows {
		g := groupOf(r)
		if g == nil {
			continue
		}
		k := strings.Join(g, "\x00")
		if i, ok := index[k]; ok {
			t.Rows[i].Count++
			continue
		}
		index[k] = len(t.Rows)
		t.Rows = append(t.Rows, Count{Group: g, Count: 1})
	}
	return t
}

// RegionYearCounts counts accidents per (연도, 다발지시군구). It drives the
// province choropleth.
func RegionYearCounts(rows []Record) CountTable {
	return AggregateCountsByGroup(rows, []string{ColYear, ColRegion})
}

// RankedRegionTotals is the detail table beside the map: accidents per
// province, largest first.
func RankedRegionTotals(rows []Record) CountTable {
	return AggregateCountsByGroup(rows, []string{ColRegion}).Ranked()
}

// MonthlySeries counts accidents per calendar month in chronological
// order, labelled like "2020 : Jan".
func MonthlySeries(rows []Record) CountTable {
	byMonth := make(map[time.Time]int)
	for _, r := range rows {
		y, m, _ := r.Date.Date()
		byMonth[time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)]++
	}
	months := make([]time.Time, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	t := CountTable{Fields: []string{ColMonthYear}, CountColumn: ColFrequency}
	for _, m := range months {
		t.Rows = append(t.Rows, Count{Group: []string{m.Format("2006 : Jan")}, Count: byMonth[m]})
	}
	return t
}

// SimplifyAccidentType keeps the part of a 사고유형 value before " - ".
func SimplifyAccidentType(s string) string {
	head, _, _ := strings.Cut(s, " - ")
	return strings.TrimSpace(head)
}

// AccidentTypeCounts counts simplified accident types, most frequent first.
func AccidentTypeCounts(rows []Record) CountTable {
	return countBy(rows, []string{ColAccidentType}, ColCount, func(r Record) []string {
		return []string{SimplifyAccidentType(r.AccidentType)}
	}).Ranked()
}

// ValueCounts counts the values of one column, most frequent first. Blank
// values are skipped.
func ValueCounts(rows []Record, field, countCol string) CountTable {
	return countBy(rows, []string{field}, countCol, func(r Record) []string {
		v := r.Field(field)
		if v == "" {
			return nil
		}
		return []string{v}
	}).Ranked()
}

// Series returns one label per row (group values joined by a space) and
// its count, for charting.
func (t CountTable) Series() (labels []string, values []float64) {
	labels = make([]string, len(t.Rows))
	values = make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		labels[i] = strings.Join(r.Group, " ")
		values[i] = float64(r.Count)
	}
	return labels, values
}
