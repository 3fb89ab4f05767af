package accident

// Summary holds every derived view of one filtered selection.
type Summary struct {
	Rows          int
	RegionYear    CountTable
	RegionTotals  CountTable
	Monthly       CountTable
	AccidentTypes CountTable
	Violations    CountTable
	OffenderSex   CountTable
	OffenderAge   CountTable
	VictimSex     CountTable
	VictimAge     CountTable
}

// Summarize computes the views over rows, which are already filtered.
func Summarize(rows []Record) Summary {
	return Summary{
		Rows:          len(rows),
		RegionYear:    RegionYearCounts(rows),
		RegionTotals:  RankedRegionTotals(rows),
		Monthly:       MonthlySeries(rows),
		AccidentTypes: AccidentTypeCounts(rows),
		Violations:    ValueCounts(rows, ColViolation, ColCount),
		OffenderSex:   ValueCounts(rows, ColOffenderSex, ColPeople),
		OffenderAge:   BucketizeAge(rows, ColOffenderAge),
		VictimSex:     ValueCounts(rows, ColVictimSex, ColPeople),
		VictimAge:     BucketizeAge(rows, ColVictimAge),
	}
}

// NamedTable pairs a view with a short stable name.
type NamedTable struct {
	Name  string
	Table CountTable
}

// Tables lists the views in display order.
func (s Summary) Tables() []NamedTable {
	return []NamedTable{
		{"region_year", s.RegionYear},
		{"region_totals", s.RegionTotals},
		{"monthly", s.Monthly},
		{"accident_types", s.AccidentTypes},
		{"violations", s.Violations},
		{"offender_sex", s.OffenderSex},
		{"offender_age", s.OffenderAge},
		{"victim_sex", s.VictimSex},
		{"victim_age", s.VictimAge},
	}
}

// Lookup returns the named view.
func (s Summary) Lookup(name string) (CountTable, bool) {
	for _, nt := range s.Tables() {
		if nt.Name == name {
			return nt.Table, true
		}
	}
	return CountTable{}, false
}

// Objects renders t as one map per row keyed by column name.
func (t CountTable) Objects() []map[string]any {
	out := make([]map[string]any, len(t.Rows))
	for i, r := range t.Rows {
		obj := make(map[string]any, len(t.Fields)+1)
		for j, f := range t.Fields {
			obj[f] = r.Group[j]
		}
		obj[t.CountColumn] = r.Count
		out[i] = obj
	}
	return out
}
