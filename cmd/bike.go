package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sells-group/korea-atlas/internal/accident"
	"github.com/sells-group/korea-atlas/internal/chart"
	"github.com/sells-group/korea-atlas/internal/export"
	"github.com/sells-group/korea-atlas/internal/join"
	"github.com/sells-group/korea-atlas/internal/loader"
)

var bikeCmd = &cobra.Command{
	Use:   "bike",
	Short: "Bicycle-accident hotspot records by province",
}

func addSelectionFlags(fs *pflag.FlagSet) {
	fs.String("start", "", "first event date, YYYY-MM-DD (default earliest)")
	fs.String("end", "", "last event date, YYYY-MM-DD (default latest)")
	fs.IntSlice("year", nil, "event years to keep (repeatable; default all)")
	fs.StringSlice("region", nil, "provinces to keep (repeatable; default all)")
	fs.String("input", "", "accident CSV to use instead of the configured one")
}

// selectionFromFlags reads the filter flags. Empty year or region lists
// select everything.
func selectionFromFlags(fs *pflag.FlagSet) (accident.Selection, error) {
	var sel accident.Selection
	for _, name := range []string{"start", "end"} {
		v, _ := fs.GetString(name)
		if v == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return sel, eris.Errorf("invalid --%s %q, want YYYY-MM-DD", name, v)
		}
		if name == "start" {
			sel.Start = t
		} else {
			sel.End = t
		}
	}
	sel.Years, _ = fs.GetIntSlice("year")
	sel.Regions, _ = fs.GetStringSlice("region")
	return sel, nil
}

// selectedAccidents loads the accident table and applies the flag selection.
func selectedAccidents(cmd *cobra.Command) ([]accident.Record, *loader.Loader, error) {
	if input, _ := cmd.Flags().GetString("input"); input != "" {
		cfg.Bike.AccidentsPath = input
	}
	sel, err := selectionFromFlags(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	l, err := newLoader("bike")
	if err != nil {
		return nil, nil, err
	}
	rows, err := l.Accidents(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return sel.Apply(rows), l, nil
}

// -- bike summary --

var bikeSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print accident counts for a date, year and province selection",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rows, _, err := selectedAccidents(cmd)
		if err != nil {
			return err
		}
		formatSummary(os.Stdout, accident.Summarize(rows))
		return nil
	},
}

// formatSummary prints every view of s.
func formatSummary(w io.Writer, s accident.Summary) {
	fmt.Fprintf(w, "selected accidents: %d\n\n", s.Rows)
	for _, nt := range s.Tables() {
		formatTable(w, strings.ReplaceAll(nt.Name, "_", " "), nt.Table)
	}
}

// -- bike export --

var bikeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the selection's tables to XLSX and its charts to PNG",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rows, l, err := selectedAccidents(cmd)
		if err != nil {
			return err
		}
		provinces, err := l.Provinces(cmd.Context())
		if err != nil {
			return err
		}

		s := accident.Summarize(rows)
		joined := join.Join(provinces.Features, s.RegionYear.Totals(accident.ColRegion))

		out, _ := cmd.Flags().GetString("out")
		paths, err := exportBike(out, s, joined)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(os.Stdout, p)
		}
		return nil
	},
}

// exportBike writes bike_summary.xlsx, map.png and one PNG per view into dir.
func exportBike(dir string, s accident.Summary, provinces []join.Row) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "create %s", dir)
	}

	var paths []string
	sheets := make([]export.Sheet, 0, len(s.Tables()))
	for _, nt := range s.Tables() {
		sheets = append(sheets, export.Sheet{Name: nt.Name, Table: nt.Table})
	}
	p, err := writeFile(dir, "bike_summary.xlsx", func(w io.Writer) error {
		return export.WriteXLSX(w, sheets...)
	})
	if err != nil {
		return paths, err
	}
	paths = append(paths, p)

	p, err = writeFile(dir, "map.png", func(w io.Writer) error {
		return chart.Choropleth(w, "Bicycle accidents by province", provinces)
	})
	if err != nil {
		return paths, err
	}
	paths = append(paths, p)

	for _, nt := range s.Tables() {
		if nt.Name == "region_year" {
			continue
		}
		labels, values := nt.Table.Series()
		title := strings.ReplaceAll(nt.Name, "_", " ")
		p, err := writeFile(dir, nt.Name+".png", func(w io.Writer) error {
			if nt.Name == "monthly" {
				return chart.Line(w, title, labels, values)
			}
			return chart.Bar(w, title, labels, values)
		})
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func init() {
	addSelectionFlags(bikeSummaryCmd.Flags())
	addSelectionFlags(bikeExportCmd.Flags())
	bikeExportCmd.Flags().String("out", "out/bike", "output directory")

	bikeCmd.AddCommand(bikeSummaryCmd, bikeExportCmd)
	rootCmd.AddCommand(bikeCmd)
}
