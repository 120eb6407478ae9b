package apperr

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Write sends err as a JSON error body with the matching status. Internal
// errors are logged and their cause is not exposed.
func Write(w http.ResponseWriter, log *slog.Logger, err error) {
	e := From(err)
	if e.Code == CodeInternal && log != nil {
		log.Error("request failed", "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Code.HTTPStatus())
	json.NewEncoder(w).Encode(struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details,omitempty"`
	}{e.Code, e.Message, e.Details})
}
