package accident

import (
	"sort"
	"strconv"
	"time"
)

// FilterByDateRange keeps rows dated within [start, end], compared by
// calendar day. start after end yields no rows.
func FilterByDateRange(rows []Record, start, end time.Time) []Record {
	start, end = Day(start), Day(end)
	if start.After(end) {
		return []Record{}
	}
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		d := Day(r.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FilterByCategoricalSet keeps rows whose field value is in values. An empty
// selection keeps every row.
func FilterByCategoricalSet(rows []Record, field string, values []string) []Record {
	if len(values) == 0 {
		return rows
	}
	want := make(map[string]struct{}, len(values))
	for _, v := range values {
		want[v] = struct{}{}
	}
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		if _, ok := want[r.Field(field)]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Selection is the user's filter state. Zero Start or End leaves that side
// of the date range open; empty Years or Regions select everything.
type Selection struct {
	Start   time.Time
	End     time.Time
	Years   []int
	Regions []string
}

// Apply filters rows by date range, then year, then region.
func (s Selection) Apply(rows []Record) []Record {
	if !s.Start.IsZero() || !s.End.IsZero() {
		lo, hi, ok := Span(rows)
		if !ok {
			return rows
		}
		if !s.Start.IsZero() {
			lo = s.Start
		}
		if !s.End.IsZero() {
			hi = s.End
		}
		rows = FilterByDateRange(rows, lo, hi)
	}

	years := make([]string, len(s.Years))
	for i, y := range s.Years {
		years[i] = strconv.Itoa(y)
	}
	rows = FilterByCategoricalSet(rows, ColYear, years)
	return FilterByCategoricalSet(rows, ColRegion, s.Regions)
}

// Span returns the earliest and latest event day.
func Span(rows []Record) (start, end time.Time, ok bool) {
	for i, r := range rows {
		d := Day(r.Date)
		if i == 0 || d.Before(start) {
			start = d
		}
		if i == 0 || d.After(end) {
			end = d
		}
	}
	return start, end, len(rows) > 0
}

// Distinct returns the field's values in first-appearance order.
func Distinct(rows []Record, field string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		v := r.Field(field)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Years returns the distinct event years, ascending.
func Years(rows []Record) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, r := range rows {
		if _, ok := seen[r.Year]; !ok {
			seen[r.Year] = struct{}{}
			out = append(out, r.Year)
		}
	}
	sort.Ints(out)
	return out
}
