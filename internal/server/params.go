package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/korea-atlas/internal/accident"
)

const dateLayout = "2006-01-02"

// parseSelection reads start, end, year and region. year and region may be
// repeated or comma-separated.
func parseSelection(r *http.Request) (accident.Selection, error) {
	q := r.URL.Query()
	var sel accident.Selection

	var err error
	if sel.Start, err = parseDate(q, "start"); err != nil {
		return sel, err
	}
	if sel.End, err = parseDate(q, "end"); err != nil {
		return sel, err
	}

	for _, y := range multi(q, "year") {
		n, err := strconv.Atoi(y)
		if err != nil {
			return sel, eris.Errorf("invalid year %q", y)
		}
		sel.Years = append(sel.Years, n)
	}
	sel.Regions = multi(q, "region")
	return sel, nil
}

func parseDate(q url.Values, name string) (time.Time, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, eris.Errorf("invalid %s date %q, want YYYY-MM-DD", name, v)
	}
	return t, nil
}

func multi(q url.Values, name string) []string {
	var out []string
	for _, v := range q[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
