package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/mrpavithran/Hrms-Backend/internal/shared/apperror"
	"github.com/stretchr/testify/assert"
)

func TestToHTTP(t *testing.T) {
	t.Run("app error keeps status and code", func(t *testing.T) {
		err := apperror.New(apperror.CodeNoBalance, "no balance", http.StatusUnprocessableEntity)

		got := apperror.ToHTTP(err)

		assert.Equal(t, http.StatusUnprocessableEntity, got.Status)
		assert.Equal(t, apperror.CodeNoBalance, got.Code)
		assert.Equal(t, "no balance", got.Message)
	})

	t.Run("wrapped app error is unwrapped", func(t *testing.T) {
		err := fmt.Errorf("service: %w", apperror.ErrNotFound)

		got := apperror.ToHTTP(err)

		assert.Equal(t, http.StatusNotFound, got.Status)
		assert.Equal(t, apperror.CodeNotFound, got.Code)
	})

	t.Run("unknown error becomes internal", func(t *testing.T) {
		got := apperror.ToHTTP(errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, got.Status)
		assert.Equal(t, apperror.CodeInternalError, got.Code)
		assert.NotContains(t, got.Message, "connection refused")
	})

	t.Run("client error detection", func(t *testing.T) {
		assert.True(t, apperror.IsClientError(apperror.ErrForbidden))
		assert.False(t, apperror.IsClientError(apperror.ErrInternal))
	})
}

func TestWrap(t *testing.T) {
	cause := errors.New("boom")
	err := apperror.Wrap(cause, apperror.CodeInternalError, "failed", http.StatusInternalServerError)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed: boom", err.Error())
	assert.Nil(t, apperror.Wrap(nil, apperror.CodeInternalError, "failed", 500))
}

func TestWithDetails(t *testing.T) {
	detailed := apperror.ErrForbidden.WithDetails(map[string]string{"field": "role"})

	assert.ErrorIs(t, detailed, apperror.ErrForbidden)
	assert.Nil(t, apperror.ErrForbidden.Details)
	assert.Equal(t, map[string]string{"field": "role"}, apperror.ToHTTP(detailed).Details)
	assert.NotErrorIs(t, detailed, apperror.ErrNotFound)
}
