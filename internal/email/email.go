// Package email provides outbound mail delivery for parcelpost.
//
// This package defines a Mailer interface with an SMTP implementation that
// works with:
// - Mailhog (development): no authentication required
// - Any standard SMTP provider (implicit TLS on 465, STARTTLS elsewhere)
//
// When SMTP is not fully configured the mailer runs in simulate mode: no
// network call happens and a synthetic success result is returned, which
// keeps local testing working without a mail server.
package email

import (
	"context"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Mailer delivers a single message synchronously. There is no retry and no
// queueing; the caller reports the outcome per recipient.
type Mailer interface {
	Send(ctx context.Context, msg Message) (*Result, error)
}

// =============================================================================
// Message Types
// =============================================================================

// Message is a single outbound email.
type Message struct {
	To       string // Recipient email address
	Subject  string // Subject line
	TextBody string // Plain text content (always required)
	HTMLBody string // Optional HTML alternative
}

// Result describes a completed delivery attempt. The shape mirrors what the
// HTTP API reports per recipient.
type Result struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
	Simulated  bool   `json:"simulated,omitempty"`
}

// =============================================================================
// Configuration Types
// =============================================================================

// SMTPConfig holds SMTP server configuration.
type SMTPConfig struct {
	Host     string // SMTP server hostname
	Port     int    // SMTP server port (465 selects implicit TLS)
	Username string // Authentication username
	Password string // Authentication password
	From     string // Sender email address
	FromName string // Optional sender display name
	UseTLS   bool   // STARTTLS on non-465 ports
}

// Configured reports whether every field required for a real send is present.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != "" && c.From != ""
}

// Partial reports whether some but not all required fields are present.
// A partial configuration is a deployment mistake, distinct from the fully
// unconfigured state that selects simulate mode.
func (c SMTPConfig) Partial() bool {
	if c.Configured() {
		return false
	}
	return c.Host != "" || c.Username != "" || c.Password != "" || c.From != ""
}
