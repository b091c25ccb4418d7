package identity

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef-test-secret"

func TestIssueAndVerify(t *testing.T) {
	token, err := NewIssuer(secret, "finanzas", time.Hour).Issue("u1")
	require.NoError(t, err)

	owner, err := NewVerifier(secret, "finanzas").Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", owner)
}

func TestVerifyRejects(t *testing.T) {
	good, err := NewIssuer(secret, "finanzas", time.Hour).Issue("u1")
	require.NoError(t, err)

	_, err = NewVerifier("another-secret-entirely", "finanzas").Verify(good)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewVerifier(secret, "someone-else").Verify(good)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewIssuer(secret, "finanzas", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue("u1")
	require.NoError(t, err)
	_, err = NewVerifier(secret, "finanzas").Verify(old)
	assert.ErrorIs(t, err, ErrExpiredToken)

	_, err = NewIssuer(secret, "finanzas", time.Hour).Issue("")
	assert.Error(t, err)
}

func TestFromRequest(t *testing.T) {
	v := NewVerifier(secret, "finanzas")
	token, err := NewIssuer(secret, "finanzas", time.Hour).Issue("u7")
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/api/dashboard", nil)
	_, err = v.FromRequest(r)
	assert.ErrorIs(t, err, ErrMissingToken)

	r.Header.Set("Authorization", "Token "+token)
	_, err = v.FromRequest(r)
	assert.ErrorIs(t, err, ErrMalformed)

	r.Header.Set("Authorization", "Bearer "+token)
	owner, err := v.FromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "u7", owner)
}

func TestOwnerContext(t *testing.T) {
	_, ok := OwnerFrom(context.Background())
	assert.False(t, ok)

	owner, ok := OwnerFrom(WithOwner(context.Background(), "u1"))
	assert.True(t, ok)
	assert.Equal(t, "u1", owner)
}
