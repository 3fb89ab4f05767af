package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/korea-atlas/internal/accident"
	"github.com/sells-group/korea-atlas/internal/tabular"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

// writeBody sends a prepared payload; headers other than Content-Type are set
// by the caller.
func writeBody(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(data); err != nil {
		zap.L().Warn("server: write response", zap.String("content_type", contentType), zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeLoadFailure reports a dataset that could not be loaded. Configured
// sources are a server-side problem.
func writeLoadFailure(w http.ResponseWriter, err error) {
	var le *tabular.LoadError
	if errors.As(err, &le) {
		zap.L().Error("server: dataset unavailable", zap.String("source", le.Source), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, le.Error())
		return
	}
	zap.L().Error("server: request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

type tableJSON struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
	Total   int              `json:"total"`
}

func countTableJSON(t accident.CountTable) tableJSON {
	return tableJSON{Columns: t.Header(), Rows: t.Objects(), Total: t.Total()}
}
