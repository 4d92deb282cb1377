package raven

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError_Error(t *testing.T) {
	err := &APIError{StatusCode: 404, Message: "Database 'X' was not found", URL: "http://localhost/databases/X/queries"}

	assert.Equal(t, "raven: API error 404: Database 'X' was not found (URL: http://localhost/databases/X/queries)", err.Error())
}

func TestErrorPredicates(t *testing.T) {
	notFound := fmt.Errorf("query collection: %w", &APIError{StatusCode: 404})
	unauthorized := &APIError{StatusCode: 401}
	forbidden := &APIError{StatusCode: 403}
	limited := fmt.Errorf("wrapped: %w", &RateLimitError{StatusCode: 429})
	other := errors.New("other")

	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(unauthorized))
	assert.False(t, IsNotFound(other))

	assert.True(t, IsUnauthorized(unauthorized))
	assert.True(t, IsUnauthorized(forbidden))
	assert.False(t, IsUnauthorized(notFound))

	assert.True(t, IsRateLimited(limited))
	assert.False(t, IsRateLimited(notFound))
}
