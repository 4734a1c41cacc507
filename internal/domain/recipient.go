// Package domain contains core business types and interfaces.
package domain

import "encoding/json"

// =============================================================================
// Recipient
// =============================================================================

// recipientState tracks whether a recipient field carries a value, is
// deliberately blank, or was never set at all.
type recipientState int

const (
	recipientUnset recipientState = iota
	recipientEmpty
	recipientPresent
)

// Recipient is a tri-state email address field used in jurisdiction entries.
//
// The three states carry different meanings during table merges:
//   - unset: the entry says nothing about this role; defaults may backfill it
//   - empty: the entry explicitly marks the role as having no recipient;
//     defaults must NOT backfill it, and senders report "not configured"
//   - present: the entry names a concrete address
//
// The zero value is unset.
type Recipient struct {
	addr  string
	state recipientState
}

// NewRecipient returns a present Recipient for addr, or an explicitly empty
// one when addr is the empty string.
func NewRecipient(addr string) Recipient {
	if addr == "" {
		return Recipient{state: recipientEmpty}
	}
	return Recipient{addr: addr, state: recipientPresent}
}

// EmptyRecipient returns a Recipient explicitly marked as having no address.
func EmptyRecipient() Recipient {
	return Recipient{state: recipientEmpty}
}

// IsUnset reports whether the field was never set.
func (r Recipient) IsUnset() bool { return r.state == recipientUnset }

// IsEmpty reports whether the field was explicitly marked as blank.
func (r Recipient) IsEmpty() bool { return r.state == recipientEmpty }

// IsPresent reports whether the field names a concrete address.
func (r Recipient) IsPresent() bool { return r.state == recipientPresent }

// Address returns the address and whether one is present.
func (r Recipient) Address() (string, bool) {
	return r.addr, r.state == recipientPresent
}

// Or returns r unless it is unset, in which case it returns fallback.
// Explicitly empty recipients are preserved, never replaced.
func (r Recipient) Or(fallback Recipient) Recipient {
	if r.state == recipientUnset {
		return fallback
	}
	return r
}

// String returns the address, or "" when empty or unset.
func (r Recipient) String() string { return r.addr }

// MarshalJSON emits the address as a JSON string, or null when the recipient
// is unset or explicitly empty.
func (r Recipient) MarshalJSON() ([]byte, error) {
	if r.state != recipientPresent {
		return []byte("null"), nil
	}
	return json.Marshal(r.addr)
}

// =============================================================================
// Resolved recipients
// =============================================================================

// MatchSource identifies which table level a resolution came from.
type MatchSource string

const (
	SourceCounty  MatchSource = "county"
	SourceCity    MatchSource = "city"
	SourceDefault MatchSource = "default"
)

// ResolvedRecipients is the outcome of a location lookup: one address per
// government role, plus which table level supplied the match.
type ResolvedRecipients struct {
	PVA    Recipient
	Zoning Recipient
	Source MatchSource
}
