package tabular

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewDecodingReader returns a reader that yields UTF-8 text from r, decoded
// from the named encoding. The empty name means UTF-8. A leading byte order
// mark is dropped for UTF-8 input.
func NewDecodingReader(r io.Reader, encoding string) (io.Reader, error) {
	switch normalizeEncoding(encoding) {
	case "", "utf8":
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	case "cp949", "ms949", "windows949", "euckr", "uhc":
		return korean.EUCKR.NewDecoder().Reader(r), nil
	}

	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return nil, eris.Wrapf(err, "tabular: unsupported encoding %q", encoding)
	}
	return enc.NewDecoder().Reader(r), nil
}

// DecodeString converts a single legacy-encoded string to UTF-8. Invalid
// input is returned unchanged.
func DecodeString(s, encoding string) string {
	switch normalizeEncoding(encoding) {
	case "", "utf8":
		return s
	}
	r, err := NewDecodingReader(strings.NewReader(s), encoding)
	if err != nil {
		return s
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return s
	}
	return string(out)
}

func normalizeEncoding(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("-", "", "_", "").Replace(name)
}
