package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_StatusCode(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{InvalidInput("bad", nil), http.StatusBadRequest},
		{InvalidSender("bad sender"), http.StatusBadRequest},
		{Unauthenticated("", nil), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{ProfileNotFound(), http.StatusForbidden},
		{NotFound("patient case", nil), http.StatusNotFound},
		{Conflict("dup", nil), http.StatusConflict},
		{UpstreamUnavailable("off", nil), http.StatusServiceUnavailable},
		{UpstreamFailed("boom", nil), http.StatusBadGateway},
		{Internal(stderrors.New("db down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestAppError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NotFound("patient case", nil))

	assert.ErrorIs(t, err, NotFoundError)
	assert.NotErrorIs(t, err, ForbiddenError)
	assert.Equal(t, ErrNotFound, As(err).Code)
}

func TestAs_WrapsUnknownErrorsAsInternal(t *testing.T) {
	appErr := As(stderrors.New("boom"))

	assert.Equal(t, ErrInternal, appErr.Code)
	assert.Equal(t, "internal server error", appErr.Message)
	assert.Equal(t, "internal server error: boom", appErr.Error())
}
