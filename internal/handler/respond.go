package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"taskboard/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error onto the wire shape {"error":{"message":…}}.
// Internal failures are logged in full; the caller only sees the real message
// in dev mode.
func writeError(w http.ResponseWriter, logger *slog.Logger, dev bool, err error) {
	ae := apperr.From(err)
	msg := ae.Message
	if ae.Kind == apperr.KindInternal {
		logger.Error("internal error", "error", err)
		if !dev {
			msg = apperr.GenericMessage
		} else {
			msg = ae.Error()
		}
	}
	writeJSON(w, ae.Status(), map[string]any{
		"error": map[string]string{"message": msg},
	})
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
