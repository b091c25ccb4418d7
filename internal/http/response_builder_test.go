package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"finanzas/internal/core"
	"finanzas/internal/dashboard"
	"finanzas/internal/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONResponseBuilder(t *testing.T) {
	rr := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/1").
		Body(map[string]string{"id": "1"}).
		Write(rr)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "/api/transactions/1", rr.Header().Get("Location"))
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"1"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(rr)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
	assert.Empty(t, rr.Header().Get("Content-Type"))
}

func TestErrorFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
		code string
	}{
		{fmt.Errorf("%w: page", errBadRequest), http.StatusBadRequest, "bad_request"},
		{fmt.Errorf("%w: %q", core.ErrInvalidFilterMode, "x"), http.StatusBadRequest, "bad_request"},
		{core.ErrInvalidPageSize, http.StatusBadRequest, "bad_request"},
		{core.ErrInvalidAmount, http.StatusUnprocessableEntity, "invalid_transaction"},
		{core.ErrSignMismatch, http.StatusUnprocessableEntity, "invalid_transaction"},
		{core.ErrDescriptionTooLong, http.StatusUnprocessableEntity, "invalid_transaction"},
		{core.ErrNotFound, http.StatusNotFound, "not_found"},
		{identity.ErrMissingToken, http.StatusUnauthorized, "unauthorized"},
		{fmt.Errorf("%w: signature", identity.ErrInvalidToken), http.StatusUnauthorized, "unauthorized"},
		{dashboard.ErrStopped, http.StatusServiceUnavailable, "unavailable"},
		{context.DeadlineExceeded, http.StatusServiceUnavailable, "unavailable"},
		{errors.New("disk I/O error"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rr := httptest.NewRecorder()
			ErrorFor(tt.err).Write(rr)
			assert.Equal(t, tt.want, rr.Code)

			var body errorBody
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotContains(t, body.Error.Message, "disk")
		})
	}
}

func TestUnauthorizedSetsChallenge(t *testing.T) {
	rr := httptest.NewRecorder()
	UnauthorizedError("nope").Write(rr)
	assert.Equal(t, `Bearer realm="finanzas"`, rr.Header().Get("WWW-Authenticate"))
}
