// Package service contains the business logic layer.
//
// Services orchestrate interactions between the repository, the jurisdiction
// table, template rendering, and mail delivery. They are responsible for:
// - Input validation
// - Business rule enforcement
// - Error translation (database errors -> domain errors)
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kycivic/parcelpost/internal/domain"
	"github.com/kycivic/parcelpost/internal/email"
	"github.com/kycivic/parcelpost/internal/metrics"
	"github.com/kycivic/parcelpost/internal/repository"
)

// =============================================================================
// Interfaces
// =============================================================================

// ContactStore is the persistence surface the verification flow needs.
// *repository.Queries satisfies it; tests substitute an in-memory fake.
type ContactStore interface {
	UpsertPendingContact(ctx context.Context, arg repository.UpsertPendingContactParams) (repository.Contact, error)
	ConfirmContact(ctx context.Context, tokenHash string) (repository.Contact, error)
	GetContactByTokenHash(ctx context.Context, tokenHash string) (repository.Contact, error)
	GetContactByEmail(ctx context.Context, email string) (repository.Contact, error)
	ContactExists(ctx context.Context, email string) (bool, error)
}

// Renderer turns a named template and a context into a body string.
// *email.TemplateRenderer satisfies it.
type Renderer interface {
	Render(name string, data any) (string, error)
}

// ContactService defines the email-capture verification flow.
type ContactService interface {
	// Submit stores a pending contact record and returns a fresh raw token.
	// Resubmitting a pending email reissues the token on the same record;
	// the previously issued token stops working.
	// Returns domain.ECONFLICT if the email is already confirmed (no new
	// token is created).
	// Returns domain.EINVALID for a missing or malformed email.
	Submit(ctx context.Context, address string) (*domain.SubmitResult, error)

	// SendVerification delivers the verification email carrying the token.
	// Returns domain.ETEMPLATE or domain.ETRANSPORT on failure. A failure
	// here does not roll back the stored record; the user resubmits.
	SendVerification(ctx context.Context, address, token string) error

	// Confirm presents a raw token. Returns domain.ENOTFOUND for an unknown
	// token. A token whose record is already confirmed yields an
	// OutcomeAlreadyConfirmed result without mutating anything; it is not
	// an error.
	Confirm(ctx context.Context, token string) (*domain.ConfirmResult, error)

	// Exists reports whether any record (pending or confirmed) holds the
	// email address.
	Exists(ctx context.Context, address string) (bool, error)
}

// =============================================================================
// Implementation
// =============================================================================

type contactService struct {
	store    ContactStore
	mailer   email.Mailer
	renderer Renderer
	baseURL  string
	validate *validator.Validate
	logger   *slog.Logger
}

// NewContactService creates a ContactService.
//
// baseURL is the application's public URL, used to build verification links.
func NewContactService(store ContactStore, mailer email.Mailer, renderer Renderer, baseURL string, logger *slog.Logger) ContactService {
	return &contactService{
		store:    store,
		mailer:   mailer,
		renderer: renderer,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *contactService) Submit(ctx context.Context, address string) (*domain.SubmitResult, error) {
	const op = "ContactService.Submit"

	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" {
		return nil, domain.Invalid(op, "Email address is required.")
	}
	if err := s.validate.Var(address, "email"); err != nil {
		return nil, domain.Invalid(op, "Please provide a valid email address.")
	}

	// Friendly duplicate check before touching the token. The upsert below
	// re-checks atomically, so a concurrent confirmation cannot slip through.
	existing, err := s.store.GetContactByEmail(ctx, address)
	if err == nil && existing.Confirmed {
		return nil, domain.Conflict(op, "This email address is already verified.")
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, domain.Internal(err, op, "Failed to check for an existing record")
	}

	token, err := generateToken()
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to generate verification token")
	}

	contact, err := s.store.UpsertPendingContact(ctx, repository.UpsertPendingContactParams{
		Email:     address,
		TokenHash: hashToken(token),
	})
	if err != nil {
		// The conditional upsert yields no row when the record is already
		// confirmed: the lost-update race resolved against us.
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Conflict(op, "This email address is already verified.")
		}
		return nil, domain.Internal(err, op, "Failed to store contact record")
	}

	metrics.ContactsSubmitted.Inc()
	s.logger.Info("contact submitted", "contact_id", contact.ID, "email", contact.Email)

	return &domain.SubmitResult{Token: token, Email: contact.Email}, nil
}

func (s *contactService) SendVerification(ctx context.Context, address, token string) error {
	verifyURL := fmt.Sprintf("%s/confirm_email?token=%s", s.baseURL, token)

	htmlBody, err := s.renderer.Render("verification.html", map[string]any{
		"VerifyURL": verifyURL,
	})
	if err != nil {
		return err
	}

	textBody := fmt.Sprintf(`Hello!

Thank you for sharing your email address with us!

To complete your email verification, please click the link below:

%s

If you didn't request this verification, you can safely ignore this email.

Best regards,
The Team
`, verifyURL)

	_, err = s.mailer.Send(ctx, email.Message{
		To:       address,
		Subject:  "Verify Your Email Address",
		TextBody: textBody,
		HTMLBody: htmlBody,
	})
	return err
}

func (s *contactService) Confirm(ctx context.Context, token string) (*domain.ConfirmResult, error) {
	const op = "ContactService.Confirm"

	tokenHash := hashToken(token)

	contact, err := s.store.ConfirmContact(ctx, tokenHash)
	if err == nil {
		metrics.ContactsConfirmed.Inc()
		s.logger.Info("contact confirmed", "contact_id", contact.ID, "email", contact.Email)
		return &domain.ConfirmResult{Outcome: domain.OutcomeConfirmed, Email: contact.Email}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, domain.Internal(err, op, "Failed to confirm contact record")
	}

	// The one-shot transition saw no pending row: either the token is
	// unknown or its record was confirmed earlier. Look it up to tell the
	// two apart.
	contact, err = s.store.GetContactByTokenHash(ctx, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound(op, "Invalid or unknown verification token.")
	}
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to look up verification token")
	}
	if contact.Confirmed {
		return &domain.ConfirmResult{Outcome: domain.OutcomeAlreadyConfirmed, Email: contact.Email}, nil
	}

	// A pending row that the transition missed means the token was replaced
	// between the two statements. Treat it as unknown.
	return nil, domain.NotFound(op, "Invalid or unknown verification token.")
}

func (s *contactService) Exists(ctx context.Context, address string) (bool, error) {
	const op = "ContactService.Exists"

	address = strings.ToLower(strings.TrimSpace(address))
	exists, err := s.store.ContactExists(ctx, address)
	if err != nil {
		return false, domain.Internal(err, op, "Failed to check for an existing record")
	}
	return exists, nil
}

// =============================================================================
// Token Helpers
// =============================================================================

// generateToken returns a fresh random token, hex-encoded for URL safety.
func generateToken() (string, error) {
	b := make([]byte, domain.TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// hashToken returns the SHA-256 hash of a raw token as hex. Only hashes are
// stored; a leaked database does not expose usable tokens.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
