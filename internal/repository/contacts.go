// Package repository is the persistence layer for contact records.
//
// Queries are handwritten SQL executed through database/sql with the pgx
// stdlib driver. Each method is a single statement so the check-then-write
// sequences in the verification flow stay atomic without explicit
// transactions.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// DBTX abstracts *sql.DB and *sql.Tx so queries can run in either.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries exposes the contact-table operations.
type Queries struct {
	db DBTX
}

// New creates a Queries instance bound to the given database handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Contact is a row of the contacts table.
type Contact struct {
	ID          uuid.UUID
	Email       string
	TokenHash   string
	Confirmed   bool
	CreatedAt   time.Time
	ConfirmedAt sql.NullTime
}

const upsertPendingContact = `
INSERT INTO contacts (email, token_hash)
VALUES ($1, $2)
ON CONFLICT (email) DO UPDATE
    SET token_hash = EXCLUDED.token_hash
    WHERE contacts.confirmed = FALSE
RETURNING id, email, token_hash, confirmed, created_at, confirmed_at
`

// UpsertPendingContactParams are the inputs for UpsertPendingContact.
type UpsertPendingContactParams struct {
	Email     string
	TokenHash string
}

// UpsertPendingContact creates a pending contact or, when a pending record
// already exists for the email, replaces its token in place. The statement's
// conditional DO UPDATE makes this a single atomic operation: if the existing
// record is already confirmed the update is suppressed and sql.ErrNoRows is
// returned, leaving the confirmed record untouched.
func (q *Queries) UpsertPendingContact(ctx context.Context, arg UpsertPendingContactParams) (Contact, error) {
	row := q.db.QueryRowContext(ctx, upsertPendingContact, arg.Email, arg.TokenHash)
	return scanContact(row)
}

const confirmContact = `
UPDATE contacts
SET confirmed = TRUE, confirmed_at = now()
WHERE token_hash = $1 AND confirmed = FALSE
RETURNING id, email, token_hash, confirmed, created_at, confirmed_at
`

// ConfirmContact transitions the record holding the given token hash from
// pending to confirmed. The WHERE clause makes the transition atomic and
// one-shot: of two concurrent confirmations exactly one sees the row.
// Returns sql.ErrNoRows when no pending record holds the hash — the caller
// distinguishes "unknown token" from "already confirmed" with a follow-up
// lookup.
func (q *Queries) ConfirmContact(ctx context.Context, tokenHash string) (Contact, error) {
	row := q.db.QueryRowContext(ctx, confirmContact, tokenHash)
	return scanContact(row)
}

const getContactByTokenHash = `
SELECT id, email, token_hash, confirmed, created_at, confirmed_at
FROM contacts
WHERE token_hash = $1
`

// GetContactByTokenHash fetches the record holding the given token hash.
func (q *Queries) GetContactByTokenHash(ctx context.Context, tokenHash string) (Contact, error) {
	row := q.db.QueryRowContext(ctx, getContactByTokenHash, tokenHash)
	return scanContact(row)
}

const getContactByEmail = `
SELECT id, email, token_hash, confirmed, created_at, confirmed_at
FROM contacts
WHERE email = $1
`

// GetContactByEmail fetches the record for an email address.
func (q *Queries) GetContactByEmail(ctx context.Context, email string) (Contact, error) {
	row := q.db.QueryRowContext(ctx, getContactByEmail, email)
	return scanContact(row)
}

const contactExists = `
SELECT EXISTS (SELECT 1 FROM contacts WHERE email = $1)
`

// ContactExists reports whether any record exists for an email address.
func (q *Queries) ContactExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, contactExists, email).Scan(&exists)
	return exists, err
}

func scanContact(row *sql.Row) (Contact, error) {
	var c Contact
	err := row.Scan(
		&c.ID,
		&c.Email,
		&c.TokenHash,
		&c.Confirmed,
		&c.CreatedAt,
		&c.ConfirmedAt,
	)
	return c, err
}
