package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassThrough(t *testing.T) {
	err := NewForbidden("nope")
	mapped := ToDomainError(err)
	require.NotNil(t, mapped)
	assert.Equal(t, "FORBIDDEN", mapped.Code)
	assert.Equal(t, http.StatusForbidden, mapped.HTTPStatus)
}

func TestToDomainErrorWrapped(t *testing.T) {
	err := fmt.Errorf("lookup failed: %w", NewNotFound("issue", nil))
	mapped := ToDomainError(err)
	require.NotNil(t, mapped)
	assert.Equal(t, "NOT_FOUND", mapped.Code)
}

func TestToDomainErrorNoRows(t *testing.T) {
	for _, err := range []error{pgx.ErrNoRows, sql.ErrNoRows, fmt.Errorf("query: %w", pgx.ErrNoRows)} {
		mapped := ToDomainError(err)
		require.NotNil(t, mapped)
		assert.Equal(t, "NOT_FOUND", mapped.Code)
		assert.Equal(t, http.StatusNotFound, mapped.HTTPStatus)
	}
}

func TestToDomainErrorUnknown(t *testing.T) {
	mapped := ToDomainError(errors.New("boom"))
	require.NotNil(t, mapped)
	assert.Equal(t, "INTERNAL_ERROR", mapped.Code)
	assert.Equal(t, http.StatusInternalServerError, mapped.HTTPStatus)
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewNotFound("issue", nil)))
	assert.False(t, IsNotFound(NewForbidden("x")))
	assert.True(t, IsForbidden(NewForbidden("x")))
	assert.False(t, IsForbidden(errors.New("boom")))
}
