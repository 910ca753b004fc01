package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIErrorIs(t *testing.T) {
	tests := []struct {
		status int
		target error
		want   bool
	}{
		{http.StatusNotFound, ErrNotFound, true},
		{http.StatusNotFound, ErrExternalAPI, false},
		{http.StatusUnauthorized, ErrUnauthorized, true},
		{http.StatusForbidden, ErrForbidden, true},
		{http.StatusTooManyRequests, ErrRateLimit, true},
		{http.StatusUnprocessableEntity, ErrInvalidInput, true},
		{http.StatusBadRequest, ErrInvalidInput, true},
		{http.StatusInternalServerError, ErrExternalAPI, true},
		{http.StatusInternalServerError, ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%v", tt.status, tt.target), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &APIError{StatusCode: tt.status, Message: "x"})
			assert.Equal(t, tt.want, errors.Is(err, tt.target))
		})
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{StatusCode: 422, Message: "Validation failed", Errors: []FieldError{
		{Field: "email", Message: "is required"},
		{Message: "bad input"},
	}}

	assert.Equal(t, "Validation failed (email: is required; bad input)", err.Error())
	assert.Equal(t, "Validation failed", Message(Wrap(err, "login")))
}

func TestNotFoundError(t *testing.T) {
	err := Wrap(NotFoundError{Kind: "campaign", ID: "abc"}, "load")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, `load: campaign "abc" not found`, err.Error())
}

func TestValidationErrorIsInvalidInput(t *testing.T) {
	err := ValidationError{Field: "amount", Message: "Please enter a valid amount"}

	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Equal(t, "Please enter a valid amount", Message(err))
	assert.Equal(t, "", Message(nil))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "anything"))
}
