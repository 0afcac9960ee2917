// internal/apperrors/errors_test.go
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(CodeValidation))
	assert.Equal(t, http.StatusConflict, HTTPStatus(CodeInsufficientStock))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Code("BOGUS")))
}

func TestAsThroughWrapping(t *testing.T) {
	base := New(CodeNotFound, "Product not found")
	wrapped := fmt.Errorf("while loading cart: %w", base)

	typed := As(wrapped)
	assert.NotNil(t, typed)
	assert.Equal(t, CodeNotFound, typed.Code())
	assert.True(t, IsCode(wrapped, CodeNotFound))
	assert.False(t, IsCode(wrapped, CodeConflict))
}

func TestAsPlainError(t *testing.T) {
	assert.Nil(t, As(errors.New("plain")))
	assert.False(t, IsCode(nil, CodeNotFound))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: users.username")))
	assert.True(t, IsUniqueViolation(errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`)))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
	assert.False(t, IsUniqueViolation(nil))
}
