package server

import (
	"bytes"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/korea-atlas/internal/birthrate"
	"github.com/sells-group/korea-atlas/internal/boundary"
	"github.com/sells-group/korea-atlas/internal/chart"
	"github.com/sells-group/korea-atlas/internal/export"
	"github.com/sells-group/korea-atlas/internal/join"
)

func (s *Server) handleBirthRegions(w http.ResponseWriter, r *http.Request) {
	d, err := s.loader.Birth(r.Context())
	if err != nil {
		writeLoadFailure(w, err)
		return
	}
	data, err := boundary.MarshalGeoJSON(d.Boundary.Features, join.Values(d.Join()))
	if err != nil {
		writeLoadFailure(w, err)
		return
	}
	writeBody(w, "application/geo+json", data)
}

func (s *Server) handleBirthTable(w http.ResponseWriter, r *http.Request) {
	d, err := s.loader.Birth(r.Context())
	if err != nil {
		writeLoadFailure(w, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, d.Stats)
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="births.csv"`)
		if err := export.WriteCSV(w, birthrate.StatTable(d.Stats)); err != nil {
			zap.L().Warn("server: write csv response", zap.Error(err))
		}
	case "xlsx":
		var buf bytes.Buffer
		if err := export.WriteXLSX(&buf, export.Sheet{Name: "births", Table: birthrate.StatTable(d.Stats)}); err != nil {
			writeLoadFailure(w, err)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="births.xlsx"`)
		writeBody(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	default:
		writeError(w, http.StatusBadRequest, "format must be json, csv or xlsx")
	}
}

type diffResponse struct {
	join.ReportView
	DuplicateKeys map[string]int `json:"duplicate_keys"`
	StatRows      int            `json:"stat_rows"`
	Features      int            `json:"features"`
	Matched       int            `json:"matched"`
}

func (s *Server) handleBirthDiff(w http.ResponseWriter, r *http.Request) {
	d, err := s.loader.Birth(r.Context())
	if err != nil {
		writeLoadFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, diffResponse{
		ReportView:    d.Diff().View(),
		DuplicateKeys: d.DuplicateKeys(),
		StatRows:      len(d.Stats),
		Features:      len(d.Boundary.Features),
		Matched:       join.Matched(d.Join()),
	})
}

func (s *Server) handleBirthMap(w http.ResponseWriter, r *http.Request) {
	d, err := s.loader.Birth(r.Context())
	if err != nil {
		writeLoadFailure(w, err)
		return
	}
	writePNG(w, func(buf *bytes.Buffer) error {
		return chart.Choropleth(buf, "Total fertility rate", d.Join())
	})
}

// writePNG renders into a buffer first so a failed render can still return
// a JSON error.
func writePNG(w http.ResponseWriter, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		writeLoadFailure(w, err)
		return
	}
	writeBody(w, "image/png", buf.Bytes())
}
