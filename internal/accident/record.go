// Package accident loads bicycle-accident hotspot records and runs the
// filter and aggregate pipeline behind the province map and its charts.
package accident

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/korea-atlas/internal/region"
	"github.com/sells-group/korea-atlas/internal/tabular"
)

// Column names of the accident CSV.
const (
	ColDate         = "발생일"
	ColYear         = "연도"
	ColRegion       = "다발지시군구"
	ColAccidentType = "사고유형"
	ColViolation    = "법규위반사항"
	ColOffenderSex  = "가해자성별"
	ColOffenderAge  = "가해자연령"
	ColVictimSex    = "피해자성별"
	ColVictimAge    = "피해자연령"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"2006.01.02",
	"2006.1.2",
	"20060102",
}

// Record is one accident row. Location keeps the raw 다발지시군구 text;
// Province is its province key.
type Record struct {
	Date         time.Time
	Year         int
	Location     string
	Province     string
	AccidentType string
	Violation    string
	OffenderSex  string
	OffenderAge  string
	VictimSex    string
	VictimAge    string

	Fields map[string]string
}

// Field returns the value used for grouping and filtering on the named
// column. 연도 and 다발지시군구 resolve to the derived year and province key.
func (r Record) Field(name string) string {
	switch name {
	case ColYear:
		return strconv.Itoa(r.Year)
	case ColRegion:
		return r.Province
	case ColDate:
		return r.Date.Format("2006-01-02")
	}
	return r.Fields[name]
}

// LoadOptions configures Load.
type LoadOptions struct {
	Encoding string // default UTF-8
}

// LoadFile reads the accident table at path, CSV or .xlsx.
func LoadFile(ctx context.Context, path string, opts LoadOptions) ([]Record, error) {
	tbl, err := tabular.ReadTable(ctx, path, tabular.TableOptions{Encoding: opts.Encoding})
	if err != nil {
		return nil, err
	}
	return fromTable(tbl)
}

// LoadBytes parses an in-memory accident table; source decides the format.
func LoadBytes(ctx context.Context, source string, data []byte, opts LoadOptions) ([]Record, error) {
	tbl, err := tabular.ReadTableBytes(ctx, source, data, tabular.TableOptions{Encoding: opts.Encoding})
	if err != nil {
		return nil, err
	}
	return fromTable(tbl)
}

// Load parses accident CSV rows from r.
func Load(ctx context.Context, source string, r io.Reader, opts LoadOptions) ([]Record, error) {
	tbl, err := tabular.ReadTableFrom(ctx, source, r, tabular.TableOptions{Encoding: opts.Encoding})
	if err != nil {
		return nil, err
	}
	return fromTable(tbl)
}

// fromTable builds records from a loaded table. Rows whose 발생일 cannot be
// parsed are dropped and counted in the log.
func fromTable(tbl *tabular.Table) ([]Record, error) {
	if err := tbl.RequireColumns(ColDate, ColRegion); err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("component", "accident.load"), zap.String("source", tbl.Source))

	records := make([]Record, 0, len(tbl.Rows))
	var badDates int
	for _, row := range tbl.Rows {
		fields := make(map[string]string, len(tbl.Header))
		for i, h := range tbl.Header {
			fields[h] = tabular.Cell(row, i)
		}

		date, ok := ParseDate(fields[ColDate])
		if !ok {
			badDates++
			continue
		}

		records = append(records, Record{
			Date:         date,
			Year:         date.Year(),
			Location:     fields[ColRegion],
			Province:     region.ProvinceKey(fields[ColRegion]),
			AccidentType: fields[ColAccidentType],
			Violation:    fields[ColViolation],
			OffenderSex:  fields[ColOffenderSex],
			OffenderAge:  fields[ColOffenderAge],
			VictimSex:    fields[ColVictimSex],
			VictimAge:    fields[ColVictimAge],
			Fields:       fields,
		})
	}

	log.Info("accident rows loaded", zap.Int("rows", len(records)), zap.Int("bad_dates", badDates))
	return records, nil
}

// ParseDate accepts the date layouts seen in the published files and
// returns the calendar day in UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), true
		}
	}
	return time.Time{}, false
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
