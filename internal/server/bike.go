package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sells-group/korea-atlas/internal/accident"
	"github.com/sells-group/korea-atlas/internal/boundary"
	"github.com/sells-group/korea-atlas/internal/chart"
	"github.com/sells-group/korea-atlas/internal/export"
	"github.com/sells-group/korea-atlas/internal/join"
	"github.com/sells-group/korea-atlas/internal/tabular"
)

// selected loads the active accident table and applies the request's
// selection. It writes the error response itself and returns ok=false.
func (s *Server) selected(w http.ResponseWriter, r *http.Request) ([]accident.Record, string, bool) {
	sel, err := parseSelection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, "", false
	}
	rows, source, err := s.accidents(r.Context())
	if err != nil {
		writeLoadFailure(w, err)
		return nil, "", false
	}
	return sel.Apply(rows), source, true
}

// handleBikeOptions lists the filter choices. Years come from the rows inside
// start/end, and regions from the rows inside start/end and the chosen years.
func (s *Server) handleBikeOptions(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rows, source, err := s.accidents(r.Context())
	if err != nil {
		writeLoadFailure(w, err)
		return
	}

	inRange := accident.Selection{Start: sel.Start, End: sel.End}.Apply(rows)
	inYears := accident.Selection{Years: sel.Years}.Apply(inRange)
	resp := map[string]any{
		"source":  source,
		"rows":    len(rows),
		"years":   accident.Years(inRange),
		"regions": accident.Distinct(inYears, accident.ColRegion),
	}
	if start, end, ok := accident.Span(rows); ok {
		resp["start"] = start.Format(dateLayout)
		resp["end"] = end.Format(dateLayout)
	}
	writeJSON(w, http.StatusOK, resp)
}

// provinceRows joins per-province accident totals onto the province map.
func (s *Server) provinceRows(r *http.Request, rows []accident.Record) ([]boundary.Feature, []join.Row, error) {
	provinces, err := s.loader.Provinces(r.Context())
	if err != nil {
		return nil, nil, err
	}
	totals := accident.RegionYearCounts(rows).Totals(accident.ColRegion)
	return provinces.Features, join.Join(provinces.Features, totals), nil
}

func (s *Server) handleBikeProvinces(w http.ResponseWriter, r *http.Request) {
	rows, _, ok := s.selected(w, r)
	if !ok {
		return
	}
	features, joined, err := s.provinceRows(r, rows)
	if err != nil {
		writeLoadFailure(w, err)
		return
	}
	data, err := boundary.MarshalGeoJSON(features, join.Values(joined))
	if err != nil {
		writeLoadFailure(w, err)
		return
	}
	writeBody(w, "application/geo+json", data)
}

func (s *Server) handleBikeCounts(w http.ResponseWriter, r *http.Request) {
	rows, source, ok := s.selected(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source":        source,
		"rows":          len(rows),
		"region_year":   countTableJSON(accident.RegionYearCounts(rows)),
		"region_totals": countTableJSON(accident.RankedRegionTotals(rows)),
	})
}

func (s *Server) handleBikeSeries(w http.ResponseWriter, r *http.Request) {
	rows, _, ok := s.selected(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, countTableJSON(accident.MonthlySeries(rows)))
}

func (s *Server) handleBikeBreakdown(w http.ResponseWriter, r *http.Request) {
	rows, _, ok := s.selected(w, r)
	if !ok {
		return
	}
	summary := accident.Summarize(rows)
	out := make(map[string]tableJSON)
	for _, nt := range summary.Tables() {
		switch nt.Name {
		case "region_year", "region_totals", "monthly":
			continue
		}
		out[nt.Name] = countTableJSON(nt.Table)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBikeChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rows, _, ok := s.selected(w, r)
	if !ok {
		return
	}

	if name == "map" {
		_, joined, err := s.provinceRows(r, rows)
		if err != nil {
			writeLoadFailure(w, err)
			return
		}
		writePNG(w, func(buf *bytes.Buffer) error {
			return chart.Choropleth(buf, "Bicycle accidents by province", joined)
		})
		return
	}

	tbl, found := accident.Summarize(rows).Lookup(name)
	if !found {
		writeError(w, http.StatusNotFound, "unknown chart "+name)
		return
	}
	labels, values := tbl.Series()
	title := strings.ReplaceAll(name, "_", " ")
	writePNG(w, func(buf *bytes.Buffer) error {
		if name == "monthly" {
			return chart.Line(buf, title, labels, values)
		}
		return chart.Bar(buf, title, labels, values)
	})
}

func (s *Server) handleBikeExport(w http.ResponseWriter, r *http.Request) {
	rows, _, ok := s.selected(w, r)
	if !ok {
		return
	}
	var sheets []export.Sheet
	for _, nt := range accident.Summarize(rows).Tables() {
		sheets = append(sheets, export.Sheet{Name: nt.Name, Table: nt.Table})
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, sheets...); err != nil {
		writeLoadFailure(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="bike_accidents.xlsx"`)
	writeBody(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (s *Server) handleBikeUpload(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "upload rate exceeded")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds "+strconv.FormatInt(s.maxBytes, 10)+" bytes")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}

	u, err := s.loader.LoadUpload(r.Context(), header.Filename, data)
	if err != nil {
		var le *tabular.LoadError
		if errors.As(err, &le) {
			writeError(w, http.StatusUnprocessableEntity, le.Error())
			return
		}
		writeLoadFailure(w, err)
		return
	}

	s.mu.Lock()
	s.upload = u
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"upload_id": u.ID,
		"filename":  u.Filename,
		"rows":      len(u.Rows),
	})
}

func (s *Server) handleBikeUploadReset(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.upload = nil
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}
