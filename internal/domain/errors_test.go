package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", ErrorCode(nil))
	assert.Equal(t, EINVALID, ErrorCode(Invalid("op", "bad input")))
	assert.Equal(t, ECONFLICT, ErrorCode(Conflict("op", "taken")))

	// Wrapped domain errors keep their code through fmt wrapping.
	wrapped := fmt.Errorf("outer: %w", NotFound("op", "missing"))
	assert.Equal(t, ENOTFOUND, ErrorCode(wrapped))

	// Plain errors map to internal.
	assert.Equal(t, EINTERNAL, ErrorCode(errors.New("disk on fire")))
}

func TestErrorMessage_HidesInternalDetail(t *testing.T) {
	internal := Internal(errors.New("pq: connection refused"), "ContactService.Submit", "Failed to store contact record")
	assert.Equal(t, "An internal error occurred. Please try again later.", ErrorMessage(internal))
	assert.Equal(t, "An internal error occurred. Please try again later.", ErrorMessage(errors.New("raw")))

	assert.Equal(t, "Email address is required.", ErrorMessage(Invalid("op", "Email address is required.")))
}

func TestErrorFormatting(t *testing.T) {
	err := Invalid("ContactService.Submit", "Email address is required.")
	assert.Equal(t, "ContactService.Submit: Email address is required.", err.Error())
	assert.Equal(t, "ContactService.Submit", ErrorOp(err))

	cause := errors.New("dial tcp: timeout")
	transport := Wrap(cause, ETRANSPORT, "SMTPMailer.Send", "failed to send email")
	assert.ErrorIs(t, transport, cause)
	assert.Equal(t, ETRANSPORT, ErrorCode(transport))
}
