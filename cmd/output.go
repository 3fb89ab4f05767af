package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"

	"github.com/sells-group/korea-atlas/internal/export"
)

// formatTable writes a titled table with aligned columns.
func formatTable(w io.Writer, title string, t export.Table) {
	fmt.Fprintf(w, "== %s ==\n", title)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Header(), "\t"))
	for _, rec := range t.Records() {
		fmt.Fprintln(tw, strings.Join(rec, "\t"))
	}
	tw.Flush() //nolint:errcheck
	fmt.Fprintln(w)
}

// writeFile creates path under dir and hands it to write.
func writeFile(dir, name string, write func(io.Writer) error) (string, error) {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", eris.Wrapf(err, "create %s", path)
	}
	if err := write(f); err != nil {
		f.Close() //nolint:errcheck
		return "", eris.Wrapf(err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return "", eris.Wrapf(err, "close %s", path)
	}
	return path, nil
}
