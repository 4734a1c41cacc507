package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecipient_States(t *testing.T) {
	var unset Recipient
	assert.True(t, unset.IsUnset())
	assert.False(t, unset.IsEmpty())
	assert.False(t, unset.IsPresent())

	empty := EmptyRecipient()
	assert.True(t, empty.IsEmpty())
	assert.False(t, empty.IsUnset())

	// The empty string constructs an explicitly empty recipient, not an
	// unset one.
	assert.True(t, NewRecipient("").IsEmpty())

	present := NewRecipient("pva@example.com")
	assert.True(t, present.IsPresent())
	addr, ok := present.Address()
	assert.True(t, ok)
	assert.Equal(t, "pva@example.com", addr)
}

func TestRecipient_Or(t *testing.T) {
	fallback := NewRecipient("default@example.com")

	// Unset takes the fallback.
	var unset Recipient
	addr, _ := unset.Or(fallback).Address()
	assert.Equal(t, "default@example.com", addr)

	// Explicitly empty is preserved.
	merged := EmptyRecipient().Or(fallback)
	assert.True(t, merged.IsEmpty())

	// Present keeps its own value.
	addr, _ = NewRecipient("real@example.com").Or(fallback).Address()
	assert.Equal(t, "real@example.com", addr)
}

func TestRecipient_MarshalJSON(t *testing.T) {
	type pair struct {
		PVA    Recipient `json:"pva"`
		Zoning Recipient `json:"zoning"`
	}

	out, err := json.Marshal(pair{
		PVA:    NewRecipient("pva@example.com"),
		Zoning: EmptyRecipient(),
	})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"pva":"pva@example.com","zoning":null}`, string(out))

	out, err = json.Marshal(pair{})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"pva":null,"zoning":null}`, string(out))
}
