// Package export writes derived tables as CSV or XLSX downloads.
package export

import (
	"encoding/csv"
	"io"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Table is a header plus string records.
type Table interface {
	Header() []string
	Records() [][]string
}

// Sheet names a table inside a workbook.
type Sheet struct {
	Name  string
	Table Table
}

// UTF-8 byte order mark. Spreadsheet tools need it to detect Hangul text in CSV.
const bom = "\ufeff"

// WriteCSV writes t as UTF-8 CSV with a byte order mark.
func WriteCSV(w io.Writer, t Table) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return eris.Wrap(err, "export: write bom")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	if err := cw.WriteAll(t.Records()); err != nil {
		return eris.Wrap(err, "export: write records")
	}
	return nil
}

// WriteXLSX writes one worksheet per sheet.
func WriteXLSX(w io.Writer, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return eris.New("export: no sheets")
	}
	f := xlsx.NewFile()
	for _, s := range sheets {
		sh, err := f.AddSheet(sheetName(s.Name))
		if err != nil {
			return eris.Wrapf(err, "export: add sheet %s", s.Name)
		}
		addRow(sh, s.Table.Header())
		for _, rec := range s.Table.Records() {
			addRow(sh, rec)
		}
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

func addRow(sh *xlsx.Sheet, values []string) {
	row := sh.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

// sheetName truncates to the 31 characters a worksheet name allows.
func sheetName(name string) string {
	if name == "" {
		name = "Sheet"
	}
	if utf8.RuneCountInString(name) <= 31 {
		return name
	}
	return string([]rune(name)[:31])
}

// Rows is a Table over literal values.
type Rows struct {
	Columns []string
	Values  [][]string
}

// Header implements Table.
func (r Rows) Header() []string { return r.Columns }

// Records implements Table.
func (r Rows) Records() [][]string { return r.Values }
