package basewire_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/basewire/basewire-go/pkg/basewire"
)

func TestAPIError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *basewire.APIError
		expected string
	}{
		{
			"message only",
			&basewire.APIError{Status: 404, Message: "The requested resource wasn't found."},
			"404: The requested resource wasn't found.",
		},
		{
			"empty message",
			&basewire.APIError{Status: 500},
			"500: Something went wrong while processing your request.",
		},
		{
			"field errors sorted",
			&basewire.APIError{
				Status:  400,
				Message: "Failed to create record.",
				Data: map[string]basewire.FieldError{
					"title": {Code: "validation_required", Message: "Missing required value."},
					"email": {Code: "validation_invalid_email", Message: "Invalid email."},
				},
			},
			"400: Failed to create record. (email: Invalid email.; title: Missing required value.)",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, testCase.err.Error())
		})
	}
}

func TestStatusHelpers(t *testing.T) {
	t.Parallel()

	notFound := &basewire.APIError{Status: 404, Message: "missing"}
	unauthorized := &basewire.APIError{Status: 401, Message: "token invalid"}
	forbidden := &basewire.APIError{Status: 403, Message: "nope"}
	badRequest := &basewire.APIError{Status: 400, Message: "bad"}

	assert.True(t, basewire.IsNotFound(notFound))
	assert.False(t, basewire.IsNotFound(unauthorized))

	assert.True(t, basewire.IsUnauthorized(unauthorized))
	assert.True(t, basewire.IsForbidden(forbidden))
	assert.True(t, basewire.IsBadRequest(badRequest))

	// Helpers unwrap.
	wrapped := fmt.Errorf("listing records: %w", notFound)
	assert.True(t, basewire.IsNotFound(wrapped))

	// Non-API errors never match.
	assert.False(t, basewire.IsNotFound(errors.New("plain")))
	assert.False(t, basewire.IsNotFound(nil))
}

func TestCategoryHelpers(t *testing.T) {
	t.Parallel()

	validation := fmt.Errorf("%w: %w", basewire.ErrValidation, basewire.ErrEmptyBatch)
	assert.True(t, basewire.IsValidation(validation))
	assert.True(t, errors.Is(validation, basewire.ErrEmptyBatch))
	assert.False(t, basewire.IsNetwork(validation))

	network := fmt.Errorf("%w: connection refused", basewire.ErrNetwork)
	assert.True(t, basewire.IsNetwork(network))
	assert.False(t, basewire.IsValidation(network))

	decode := fmt.Errorf("%w: unexpected end of JSON input", basewire.ErrDecode)
	assert.True(t, basewire.IsDecode(decode))
}

func TestIsAbort(t *testing.T) {
	t.Parallel()

	assert.True(t, basewire.IsAbort(context.Canceled))
	assert.True(t, basewire.IsAbort(fmt.Errorf("%w: %w", basewire.ErrNetwork, context.DeadlineExceeded)))
	assert.False(t, basewire.IsAbort(basewire.ErrNetwork))
	assert.False(t, basewire.IsAbort(nil))
}
