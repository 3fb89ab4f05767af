package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/korea-atlas/internal/birthrate"
	"github.com/sells-group/korea-atlas/internal/boundary"
	"github.com/sells-group/korea-atlas/internal/chart"
	"github.com/sells-group/korea-atlas/internal/export"
	"github.com/sells-group/korea-atlas/internal/join"
)

var birthCmd = &cobra.Command{
	Use:   "birth",
	Short: "Municipal birth-rate table and sigungu boundaries",
}

// -- birth diff --

var birthDiffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Report region keys that fail to join",
	Long:  "Loads the statistics table and the boundary map, keys both sides, and lists keys present on only one side. New mismatches belong in the override table.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		l, err := newLoader("birth")
		if err != nil {
			return err
		}
		d, err := l.Birth(cmd.Context())
		if err != nil {
			return err
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(d.Diff().View())
		}
		formatDiff(os.Stdout, d)
		return nil
	},
}

// formatDiff prints the join report of d.
func formatDiff(w io.Writer, d *birthrate.Dataset) {
	rows := d.Join()
	fmt.Fprintf(w, "statistics rows: %d\n", len(d.Stats))
	fmt.Fprintf(w, "boundary features: %d\n", len(d.Boundary.Features))
	fmt.Fprintf(w, "matched features: %d\n\n", join.Matched(rows))

	v := d.Diff().View()
	formatTable(w, "keys only in statistics", keyList(v.OnlyInStats))
	formatTable(w, "keys only in boundary", keyList(v.OnlyInBoundary))

	if dups := d.DuplicateKeys(); len(dups) > 0 {
		keys := make([]string, 0, len(dups))
		for k := range dups {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		t := export.Rows{Columns: []string{"KEY", "FEATURES"}}
		for _, k := range keys {
			t.Values = append(t.Values, []string{k, strconv.Itoa(dups[k])})
		}
		formatTable(w, "keys shared by several features", t)
	}
}

func keyList(keys []string) export.Rows {
	t := export.Rows{Columns: []string{"KEY"}}
	for _, k := range keys {
		t.Values = append(t.Values, []string{k})
	}
	return t
}

// -- birth export --

var birthExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the joined map, statistics table and choropleth",
	RunE: func(cmd *cobra.Command, _ []string) error {
		l, err := newLoader("birth")
		if err != nil {
			return err
		}
		d, err := l.Birth(cmd.Context())
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		paths, err := exportBirth(out, d)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(os.Stdout, p)
		}
		return nil
	},
}

// exportBirth writes regions.geojson, births.csv, births.xlsx and map.png
// into dir.
func exportBirth(dir string, d *birthrate.Dataset) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "create %s", dir)
	}
	rows := d.Join()

	writers := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"regions.geojson", func(w io.Writer) error {
			data, err := boundary.MarshalGeoJSON(d.Boundary.Features, join.Values(rows))
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		}},
		{"births.csv", func(w io.Writer) error { return export.WriteCSV(w, birthrate.StatTable(d.Stats)) }},
		{"births.xlsx", func(w io.Writer) error {
			return export.WriteXLSX(w, export.Sheet{Name: "births", Table: birthrate.StatTable(d.Stats)})
		}},
		{"map.png", func(w io.Writer) error { return chart.Choropleth(w, "Total fertility rate", rows) }},
	}

	var paths []string
	for _, wr := range writers {
		p, err := writeFile(dir, wr.name, wr.write)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func init() {
	birthDiffCmd.Flags().Bool("json", false, "print the report as JSON")
	birthExportCmd.Flags().String("out", "out/birth", "output directory")

	birthCmd.AddCommand(birthDiffCmd, birthExportCmd)
	rootCmd.AddCommand(birthCmd)
}
