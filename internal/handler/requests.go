package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kycivic/parcelpost/internal/domain"
	"github.com/kycivic/parcelpost/internal/service"
)

// RequestsHandler serves the records-request dispatch endpoint.
type RequestsHandler struct {
	requests service.RequestService
	logger   *slog.Logger
}

// NewRequestsHandler creates a RequestsHandler.
func NewRequestsHandler(requests service.RequestService, logger *slog.Logger) *RequestsHandler {
	return &RequestsHandler{
		requests: requests,
		logger:   logger,
	}
}

// RegisterRoutes registers the handler's routes on the mux.
func (h *RequestsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/send-requests", h.SendRequests)
}

// sendRequestsResponse is the response envelope for POST /api/send-requests.
type sendRequestsResponse struct {
	Success    bool                               `json:"success"`
	City       string                             `json:"city"`
	County     string                             `json:"county"`
	Address    string                             `json:"address"`
	EmailsUsed service.EmailsUsed                 `json:"emails_used"`
	Results    map[string]*service.RecipientResult `json:"results"`
}

type sendRequestsError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// SendRequests handles POST /api/send-requests.
//
// The body is decoded as a free-form JSON object so extra fields flow
// through to the email templates unchanged. `address` is required; `city`
// and `county` are optional; `send_to_pva` and `send_to_zoning` default to
// true.
func (h *RequestsHandler) SendRequests(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logError(h.logger, r, domain.Invalid("RequestsHandler.SendRequests", "Invalid JSON"), http.StatusBadRequest)
		writeJSON(w, http.StatusBadRequest, sendRequestsError{Error: "Invalid JSON"})
		return
	}

	params := service.SendRequestsParams{
		Address:      stringField(payload, "address"),
		City:         stringField(payload, "city"),
		County:       stringField(payload, "county"),
		SendToPVA:    boolField(payload, "send_to_pva", true),
		SendToZoning: boolField(payload, "send_to_zoning", true),
		Payload:      payload,
	}

	result, err := h.requests.SendRequests(r.Context(), params)
	if err != nil {
		status := statusForError(err)
		logError(h.logger, r, err, status)
		writeJSON(w, status, sendRequestsError{Error: domain.ErrorMessage(err)})
		return
	}

	status := http.StatusOK
	if !result.Success {
		// At least one requested send failed or had no configured recipient.
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, sendRequestsResponse{
		Success:    result.Success,
		City:       result.City,
		County:     result.County,
		Address:    params.Address,
		EmailsUsed: result.EmailsUsed,
		Results:    result.Results,
	})
}

// stringField pulls a string value out of the decoded payload, tolerating
// absent and non-string values.
func stringField(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

// boolField pulls a bool value out of the decoded payload, falling back when
// absent or not a bool.
func boolField(payload map[string]any, key string, fallback bool) bool {
	if v, ok := payload[key].(bool); ok {
		return v
	}
	return fallback
}
