// Package handler contains the HTTP surface: JSON API endpoints, the
// confirmation pages, and response helpers.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kycivic/parcelpost/internal/domain"
)

// writeJSON writes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusForError maps domain error codes onto this API's status codes.
// Client mistakes (bad input, unknown or used tokens, duplicate emails) are
// all 400 on this surface; everything else is a 500.
func statusForError(err error) int {
	switch domain.ErrorCode(err) {
	case domain.EINVALID, domain.ENOTFOUND, domain.ECONFLICT:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// logError records a request failure with appropriate severity: 5xx are
// server-side problems, 4xx are expected client errors.
func logError(logger *slog.Logger, r *http.Request, err error, status int) {
	attrs := []any{
		"error", err.Error(),
		"code", domain.ErrorCode(err),
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
	}
	if op := domain.ErrorOp(err); op != "" {
		attrs = append(attrs, "op", op)
	}

	if status >= 500 {
		logger.Error("server error", attrs...)
	} else {
		logger.Info("client error", attrs...)
	}
}
