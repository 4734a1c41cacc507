package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kycivic/parcelpost/internal/domain"
	"github.com/kycivic/parcelpost/internal/service"
)

// ContactsHandler serves the email capture and confirmation endpoints.
type ContactsHandler struct {
	contacts service.ContactService
	pages    *PageRenderer
	logger   *slog.Logger
}

// NewContactsHandler creates a ContactsHandler.
func NewContactsHandler(contacts service.ContactService, pages *PageRenderer, logger *slog.Logger) *ContactsHandler {
	return &ContactsHandler{
		contacts: contacts,
		pages:    pages,
		logger:   logger,
	}
}

// RegisterRoutes registers the handler's routes on the mux.
func (h *ContactsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /save_email", h.SaveEmail)
	mux.HandleFunc("GET /confirm_email", h.ConfirmEmail)
}

// saveEmailRequest is the body of POST /save_email. Name and opt-in are
// accepted for the frontend's benefit but only the email drives the flow.
type saveEmailRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	OptIn bool   `json:"opt_in"`
}

type saveEmailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SaveEmail handles POST /save_email. It accepts a JSON body or a classic
// form post, stores a pending contact record, and dispatches a verification
// email. A transport failure leaves the pending record in place; the user
// resubmits to get a fresh token.
func (h *ContactsHandler) SaveEmail(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeSaveEmail(r)
	if err != nil {
		logError(h.logger, r, err, http.StatusBadRequest)
		writeJSON(w, http.StatusBadRequest, saveEmailResponse{Message: domain.ErrorMessage(err)})
		return
	}

	result, err := h.contacts.Submit(r.Context(), req.Email)
	if err != nil {
		status := statusForError(err)
		logError(h.logger, r, err, status)
		writeJSON(w, status, saveEmailResponse{Message: domain.ErrorMessage(err)})
		return
	}

	if err := h.contacts.SendVerification(r.Context(), result.Email, result.Token); err != nil {
		logError(h.logger, r, err, http.StatusInternalServerError)
		writeJSON(w, http.StatusInternalServerError, saveEmailResponse{
			Message: "Failed to send the verification email. Please try again.",
		})
		return
	}

	writeJSON(w, http.StatusOK, saveEmailResponse{
		Success: true,
		Message: "Verification email sent. Please check your inbox.",
	})
}

// decodeSaveEmail reads the submission from a JSON body or form fields.
func (h *ContactsHandler) decodeSaveEmail(r *http.Request) (*saveEmailRequest, error) {
	const op = "ContactsHandler.SaveEmail"

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var req saveEmailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, domain.Invalid(op, "Invalid JSON")
		}
		return &req, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, domain.Invalid(op, "Invalid form data")
	}
	return &saveEmailRequest{
		Email: r.PostFormValue("email"),
		Name:  r.PostFormValue("name"),
		OptIn: r.PostFormValue("opt_in") != "",
	}, nil
}

// ConfirmEmail handles GET /confirm_email?token=... with an HTML page.
// Missing, unknown, and already-used tokens all return 400, each with its
// own message; a first-time confirmation returns the success page.
func (h *ContactsHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		h.pages.Render(w, http.StatusBadRequest, "confirm_error.html", map[string]any{
			"Title":   "Missing Token",
			"Message": "The confirmation link is missing its verification token.",
		})
		return
	}

	result, err := h.contacts.Confirm(r.Context(), token)
	if err != nil {
		status := statusForError(err)
		logError(h.logger, r, err, status)

		message := "Something went wrong while confirming your email. Please try again later."
		title := "Confirmation Failed"
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			message = "This confirmation link is invalid. Please submit your email address again to receive a new one."
			title = "Invalid Link"
		}
		h.pages.Render(w, status, "confirm_error.html", map[string]any{
			"Title":   title,
			"Message": message,
		})
		return
	}

	if result.Outcome == domain.OutcomeAlreadyConfirmed {
		h.pages.Render(w, http.StatusBadRequest, "confirm_error.html", map[string]any{
			"Title":   "Already Verified",
			"Message": "This confirmation link has already been used. Your email address is verified.",
		})
		return
	}

	h.pages.Render(w, http.StatusOK, "confirm_success.html", map[string]any{
		"Email": result.Email,
	})
}
