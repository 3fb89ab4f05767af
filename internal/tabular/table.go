package tabular

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// TableOptions configures ReadTable.
type TableOptions struct {
	Encoding     string // code page of delimited sources; ignored for .xlsx
	HeaderOffset int    // rows preceding the header row
	Delimiter    rune
	Sheet        string // xlsx sheet name; default first sheet
}

// Table is a header plus string rows, in source order.
type Table struct {
	Source string
	Header []string
	Rows   [][]string

	index map[string]int
}

// NewTable builds a Table and its column index. Header names are trimmed;
// for repeated names the first occurrence wins.
func NewTable(source string, header []string, rows [][]string) *Table {
	t := &Table{
		Source: source,
		Header: make([]string, len(header)),
		Rows:   rows,
		index:  make(map[string]int, len(header)),
	}
	for i, h := range header {
		h = strings.TrimSpace(h)
		t.Header[i] = h
		if _, seen := t.index[h]; !seen {
			t.index[h] = i
		}
	}
	return t
}

// Column returns the index of the named column.
func (t *Table) Column(name string) (int, bool) {
	i, ok := t.index[strings.TrimSpace(name)]
	return i, ok
}

// RequireColumns returns a LoadError naming every absent column.
func (t *Table) RequireColumns(names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := t.Column(n); !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return NewLoadError(t.Source, eris.Errorf("missing required columns %s", strings.Join(missing, ", ")))
	}
	return nil
}

// Cell returns row[col] trimmed, or "" when the row is short.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// ReadTable loads a delimited or .xlsx file. A missing or unreadable file,
// or one without a header row, yields a LoadError.
func ReadTable(ctx context.Context, path string, opts TableOptions) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err := ReadXLSX(path, XLSXOptions{SheetName: opts.Sheet, SkipRows: opts.HeaderOffset})
		return sheetTable(path, rows, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, NewLoadError(path, eris.Wrap(err, "tabular: open"))
	}
	defer f.Close() //nolint:errcheck

	return ReadTableFrom(ctx, path, f, opts)
}

// ReadTableBytes parses an in-memory source. A source name ending in .xlsx is
// read as a workbook; anything else as delimited text.
func ReadTableBytes(ctx context.Context, source string, data []byte, opts TableOptions) (*Table, error) {
	if strings.EqualFold(filepath.Ext(source), ".xlsx") {
		rows, err := ReadXLSXBytes(data, XLSXOptions{SheetName: opts.Sheet, SkipRows: opts.HeaderOffset})
		return sheetTable(source, rows, err)
	}
	return ReadTableFrom(ctx, source, bytes.NewReader(data), opts)
}

func sheetTable(source string, rows [][]string, err error) (*Table, error) {
	if err != nil {
		return nil, NewLoadError(source, err)
	}
	if len(rows) == 0 {
		return nil, NewLoadError(source, eris.New("no header row"))
	}
	return NewTable(source, rows[0], rows[1:]), nil
}

// ReadTableFrom parses delimited text from r. source names the input in errors.
func ReadTableFrom(ctx context.Context, source string, r io.Reader, opts TableOptions) (*Table, error) {
	headerCh := make(chan []string, 1)
	rowCh, errCh := StreamCSV(ctx, r, CSVOptions{
		Delimiter:  opts.Delimiter,
		Encoding:   opts.Encoding,
		SkipRows:   opts.HeaderOffset,
		HasHeader:  true,
		HeaderCh:   headerCh,
		LazyQuotes: true,
	})

	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	for err := range errCh {
		if err != nil {
			return nil, NewLoadError(source, err)
		}
	}

	select {
	case header := <-headerCh:
		return NewTable(source, header, rows), nil
	default:
		return nil, NewLoadError(source, eris.New("no header row"))
	}
}
