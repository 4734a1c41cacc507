package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"github.com/kycivic/parcelpost/internal/domain"
)

// dialTimeout bounds the SMTP connection attempt. Delivery itself is
// synchronous and unretried.
const dialTimeout = 20 * time.Second

// SMTPMailer sends emails over SMTP, or simulates delivery when the
// transport is unconfigured.
type SMTPMailer struct {
	config   SMTPConfig
	simulate bool
	logger   *slog.Logger
}

// NewSMTPMailer creates an SMTP-backed Mailer.
//
// A fully unconfigured transport (no host, credentials, or sender) selects
// simulate mode. A partially configured one is rejected outright so a
// deployment mistake surfaces at startup instead of masquerading as a
// transient send failure.
func NewSMTPMailer(config SMTPConfig, logger *slog.Logger) (*SMTPMailer, error) {
	if config.Partial() {
		return nil, domain.Errorf(domain.ECONFIG, "email.NewSMTPMailer",
			"incomplete SMTP configuration: SMTP_HOST, SMTP_USER, SMTP_PASS, and SENDER_EMAIL must all be set (or all left unset for simulate mode)")
	}

	simulate := !config.Configured()
	if simulate {
		logger.Info("SMTP not configured, outbound mail will be simulated")
	}

	return &SMTPMailer{
		config:   config,
		simulate: simulate,
		logger:   logger,
	}, nil
}

// Simulating reports whether the mailer performs real deliveries.
func (m *SMTPMailer) Simulating() bool {
	return m.simulate
}

// Send delivers one message. In simulate mode it logs and returns a
// synthetic success result without touching the network.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) (*Result, error) {
	if m.simulate {
		m.logger.Info("simulating email send", "to", msg.To, "subject", msg.Subject)
		return &Result{
			StatusCode: 250,
			Body:       fmt.Sprintf("Simulated send to %s", msg.To),
			Simulated:  true,
		}, nil
	}

	if err := m.deliver(ctx, msg); err != nil {
		m.logger.Error("failed to send email",
			"to", msg.To,
			"subject", msg.Subject,
			"error", err,
		)
		return nil, domain.Wrap(err, domain.ETRANSPORT, "SMTPMailer.Send", "failed to send email")
	}

	m.logger.Info("email sent", "to", msg.To, "subject", msg.Subject)
	return &Result{StatusCode: 250, Body: "OK"}, nil
}

// deliver performs the actual SMTP conversation.
func (m *SMTPMailer) deliver(ctx context.Context, msg Message) error {
	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)

	client, err := m.dial(ctx, addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer client.Close()

	if m.config.Port != 465 && m.config.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: m.config.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	if err := client.Mail(m.config.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(m.buildMessage(msg)); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}

	return client.Quit()
}

// dial opens the SMTP connection. Port 465 uses implicit TLS; other ports
// connect in plaintext and upgrade via STARTTLS in deliver.
func (m *SMTPMailer) dial(ctx context.Context, addr string) (*smtp.Client, error) {
	netDialer := &net.Dialer{Timeout: dialTimeout}

	var conn net.Conn
	var err error
	if m.config.Port == 465 {
		tlsDialer := &tls.Dialer{
			NetDialer: netDialer,
			Config:    &tls.Config{ServerName: m.config.Host},
		}
		conn, err = tlsDialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = netDialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, err
	}

	return smtp.NewClient(conn, m.config.Host)
}

// buildMessage constructs the raw email message with headers. Messages with
// an HTML alternative are wrapped in multipart/alternative; text-only
// messages stay a single part.
func (m *SMTPMailer) buildMessage(msg Message) []byte {
	var buf bytes.Buffer

	fromHeader := m.config.From
	if m.config.FromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", m.config.FromName, m.config.From)
	}

	buf.WriteString(fmt.Sprintf("From: %s\r\n", fromHeader))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", msg.To))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")

	if msg.HTMLBody == "" {
		buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
		buf.WriteString("\r\n")
		buf.WriteString(msg.TextBody)
		buf.WriteString("\r\n")
		return buf.Bytes()
	}

	boundary := "===============PARCELPOST_BOUNDARY==============="
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n", boundary))
	buf.WriteString("\r\n")

	// Plain text part
	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.TextBody)
	buf.WriteString("\r\n")

	// HTML part
	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.HTMLBody)
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return buf.Bytes()
}

// Compile-time interface check
var _ Mailer = (*SMTPMailer)(nil)
