// This file defines contact-record types for the email verification flow.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Token Configuration Constants
// =============================================================================

const (
	// TokenBytes is the number of random bytes for verification tokens.
	// 32 bytes = 256 bits of entropy, well above the 128-bit floor for
	// unguessable tokens. The token is hex-encoded to 64 characters for
	// URL safety.
	TokenBytes = 32
)

// =============================================================================
// Contact Record
// =============================================================================

// Contact represents a captured email address and its verification state.
//
// Lifecycle:
//  1. A submission creates the record in pending state with a fresh token
//  2. Resubmitting the same email before confirmation reissues the token on
//     the same record; the previous token stops working
//  3. Presenting the token transitions the record to confirmed, exactly once
//  4. Confirmed is terminal; records are never deleted
//
// Security model:
//   - Raw token (64 hex chars) is sent via email and never stored
//   - Only the SHA-256 hash of the token is kept in the database
//   - Tokens do not expire
type Contact struct {
	ID          uuid.UUID
	Email       string
	TokenHash   string // SHA-256 hash of raw token (64 char hex)
	Confirmed   bool
	CreatedAt   time.Time
	ConfirmedAt *time.Time // nil until the record is confirmed
}

// IsPending returns true while the contact awaits confirmation.
func (c *Contact) IsPending() bool {
	return !c.Confirmed
}

// =============================================================================
// Operation Results
// =============================================================================

// SubmitResult contains the outcome of capturing an email address.
type SubmitResult struct {
	Token string // Raw token to send in the verification email (NOT the hash)
	Email string // Normalized email the record was stored under
}

// ConfirmOutcome distinguishes the first confirmation from a repeat.
type ConfirmOutcome int

const (
	// OutcomeConfirmed means the pending record transitioned to confirmed.
	OutcomeConfirmed ConfirmOutcome = iota

	// OutcomeAlreadyConfirmed means the token was valid but had been used
	// before. The record is untouched; this is informational, not an error.
	OutcomeAlreadyConfirmed
)

// ConfirmResult contains the outcome of presenting a verification token.
type ConfirmResult struct {
	Outcome ConfirmOutcome
	Email   string // Email address associated with the token
}
