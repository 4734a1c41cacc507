package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kycivic/parcelpost/internal/domain"
	"github.com/kycivic/parcelpost/internal/email"
	"github.com/kycivic/parcelpost/internal/jurisdiction"
	"github.com/kycivic/parcelpost/internal/metrics"
)

// =============================================================================
// Types
// =============================================================================

// SendRequestsParams are the inputs for one records-request dispatch.
type SendRequestsParams struct {
	Address      string
	City         string // optional; parsed from Address when blank
	County       string // optional; takes precedence over the city when mapped
	SendToPVA    bool
	SendToZoning bool
	Payload      map[string]any // full request body, passed through to templates
}

// RecipientResult reports the outcome of one recipient's send.
type RecipientResult struct {
	StatusCode int    `json:"status_code,omitempty"`
	Body       string `json:"body,omitempty"`
	Simulated  bool   `json:"simulated,omitempty"`
	Error      string `json:"error,omitempty"`
}

// EmailsUsed names the resolved recipient pair. Roles without a configured
// address marshal as null.
type EmailsUsed struct {
	PVA    domain.Recipient `json:"pva"`
	Zoning domain.Recipient `json:"zoning"`
}

// SendRequestsResult is the full outcome of a dispatch: which addresses were
// resolved and how each requested send went. Success means every requested
// recipient was sent to without error.
type SendRequestsResult struct {
	Success    bool
	City       string
	County     string
	EmailsUsed EmailsUsed
	Results    map[string]*RecipientResult // keyed by role: "pva", "zoning"
}

// RequestService dispatches records-request emails for a property address.
type RequestService interface {
	// SendRequests resolves recipients for the location, renders the request
	// bodies, and sends to each requested role. One role's failure never
	// aborts the other's send; nothing is retried.
	// Returns domain.EINVALID for a missing address and domain.ETEMPLATE
	// when a body cannot be rendered (fatal for the whole request).
	SendRequests(ctx context.Context, params SendRequestsParams) (*SendRequestsResult, error)
}

// =============================================================================
// Implementation
// =============================================================================

// role holds the per-recipient constants for the two government offices.
type role struct {
	key      string
	label    string
	template string
}

var (
	rolePVA    = role{key: "pva", label: "PVA", template: "pva_request.txt"}
	roleZoning = role{key: "zoning", label: "Zoning", template: "zoning_request.txt"}
)

type requestService struct {
	table    *jurisdiction.Table
	mailer   email.Mailer
	renderer Renderer
	logger   *slog.Logger
}

// NewRequestService creates a RequestService.
func NewRequestService(table *jurisdiction.Table, mailer email.Mailer, renderer Renderer, logger *slog.Logger) RequestService {
	return &requestService{
		table:    table,
		mailer:   mailer,
		renderer: renderer,
		logger:   logger,
	}
}

func (s *requestService) SendRequests(ctx context.Context, params SendRequestsParams) (*SendRequestsResult, error) {
	const op = "RequestService.SendRequests"

	address := strings.TrimSpace(params.Address)
	if address == "" {
		return nil, domain.Invalid(op, "Missing required field: address")
	}

	city := params.City
	if city == "" {
		city, _ = jurisdiction.ExtractCity(address)
	}

	s.logger.Info("dispatching records requests",
		"address", address,
		"city", city,
		"county", params.County,
	)

	resolved := s.table.Resolve(city, params.County)

	templateCtx, err := s.templateContext(address, city, params.County, params.Payload)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to build template context")
	}

	result := &SendRequestsResult{
		City:   city,
		County: params.County,
		EmailsUsed: EmailsUsed{
			PVA:    resolved.PVA,
			Zoning: resolved.Zoning,
		},
		Results: make(map[string]*RecipientResult),
	}

	if params.SendToPVA {
		r, err := s.sendToRole(ctx, rolePVA, resolved.PVA, address, templateCtx)
		if err != nil {
			return nil, err
		}
		result.Results[rolePVA.key] = r
	}
	if params.SendToZoning {
		r, err := s.sendToRole(ctx, roleZoning, resolved.Zoning, address, templateCtx)
		if err != nil {
			return nil, err
		}
		result.Results[roleZoning.key] = r
	}

	result.Success = true
	for _, r := range result.Results {
		if r.Error != "" {
			result.Success = false
			break
		}
	}

	return result, nil
}

// sendToRole renders and delivers one recipient's request email. Rendering
// failures are fatal (returned as an error); delivery failures and missing
// recipients are reported in the result so the other role still sends.
func (s *requestService) sendToRole(ctx context.Context, ro role, recipient domain.Recipient, address string, templateCtx map[string]any) (*RecipientResult, error) {
	addr, ok := recipient.Address()
	if !ok {
		s.logger.Warn("no recipient configured", "role", ro.key, "address", address)
		metrics.RequestEmailsTotal.WithLabelValues(ro.key, "unconfigured").Inc()
		return &RecipientResult{Error: fmt.Sprintf("No %s recipient configured", ro.label)}, nil
	}

	body, err := s.renderer.Render(ro.template, templateCtx)
	if err != nil {
		// Template problems abort the whole request.
		s.logger.Error("template rendering failed", "template", ro.template, "error", err)
		return nil, err
	}

	sendResult, err := s.mailer.Send(ctx, email.Message{
		To:       addr,
		Subject:  fmt.Sprintf("%s request for %s", ro.label, address),
		TextBody: body,
	})
	if err != nil {
		metrics.RequestEmailsTotal.WithLabelValues(ro.key, "error").Inc()
		return &RecipientResult{Error: domain.ErrorMessage(err)}, nil
	}

	metrics.RequestEmailsTotal.WithLabelValues(ro.key, "sent").Inc()
	return &RecipientResult{
		StatusCode: sendResult.StatusCode,
		Body:       sendResult.Body,
		Simulated:  sendResult.Simulated,
	}, nil
}

// templateContext assembles the data passed to the request body templates.
// The raw payload travels through untouched, plus an indented JSON rendering
// for inclusion in the email body.
func (s *requestService) templateContext(address, city, county string, payload map[string]any) (map[string]any, error) {
	payloadJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"Address":     address,
		"City":        city,
		"County":      county,
		"Payload":     payload,
		"PayloadJSON": string(payloadJSON),
	}, nil
}
