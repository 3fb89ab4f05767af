package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/korea-atlas/internal/export"
)

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	formatTable(&buf, "totals", export.Rows{
		Columns: []string{"REGION", "COUNT"},
		Values:  [][]string{{"서울특별시", "3"}, {"경기도", "1"}},
	})

	out := buf.String()
	assert.Contains(t, out, "== totals ==")
	assert.Contains(t, out, "REGION")
	assert.Contains(t, out, "경기도")
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	p, err := writeFile(dir, "a.txt", func(w io.Writer) error {
		_, err := w.Write([]byte("hello"))
		return err
	})
	require.NoError(t, err)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = writeFile(dir, "b.txt", func(io.Writer) error { return errors.New("boom") })
	assert.Error(t, err)

	_, err = writeFile(filepath.Join(dir, "missing"), "c.txt", func(io.Writer) error { return nil })
	assert.Error(t, err)
}
