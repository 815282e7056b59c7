// internal/apperror/apperror_test.go
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{NewValidation("bad input"), http.StatusBadRequest},
		{NewDuplicateEmail("taken"), http.StatusBadRequest},
		{NewAlreadyPurchased("again"), http.StatusBadRequest},
		{NewMissingFile("no file"), http.StatusBadRequest},
		{NewInvalidCredentials("nope"), http.StatusUnauthorized},
		{NewUnauthorized("no token"), http.StatusUnauthorized},
		{NewForbidden("not yours"), http.StatusForbidden},
		{NewNotFound("gone"), http.StatusNotFound},
		{NewFileUnavailable("missing"), http.StatusNotFound},
		{NewDatabase("boom", errors.New("conn reset")), http.StatusInternalServerError},
		{NewInternal("boom", nil), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.StatusCode(), tc.err.Code())
	}
}

func TestFromErrorThroughWrapping(t *testing.T) {
	base := NewNotFound("product not found")
	wrapped := fmt.Errorf("handling request: %w", base)

	ae, ok := FromError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, NotFoundError, ae.Type)
	assert.True(t, IsType(wrapped, NotFoundError))
	assert.False(t, IsType(wrapped, ForbiddenError))
}

func TestFromErrorPlainError(t *testing.T) {
	_, ok := FromError(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, IsType(nil, NotFoundError))
}

func TestErrorMessageIncludesUnderlying(t *testing.T) {
	err := NewDatabase("query failed", errors.New("timeout"))
	assert.Equal(t, "query failed: timeout", err.Error())
	assert.Equal(t, "timeout", errors.Unwrap(err).Error())
}
