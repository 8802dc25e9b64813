package jwt

import (
	"context"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petrack/internal/domain/users"
	"petrack/internal/ports/auth"
)

func newTestService(t *testing.T, now time.Time) *Service {
	t.Helper()
	s, err := New(Config{SigningKey: "test-key", Issuer: "petrack", TTL: time.Hour})
	require.NoError(t, err)
	s.now = func() time.Time { return now }
	return s
}

func TestIssueThenVerify(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	s := newTestService(t, now)

	token, exp, err := s.Issue(users.User{ID: "u1", Email: "ana@example.com", Type: users.TypeOwner})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	claims, err := s.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, auth.Claims{UserID: "u1", Email: "ana@example.com", UserType: "O"}, claims)
}

func TestVerifyRejectsExpired(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	s := newTestService(t, now)

	token, _, err := s.Issue(users.User{ID: "u1"})
	require.NoError(t, err)

	s.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = s.Verify(context.Background(), token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsForeignKeyAndIssuer(t *testing.T) {
	now := time.Now()
	s := newTestService(t, now)

	other, err := New(Config{SigningKey: "other-key", Issuer: "petrack"})
	require.NoError(t, err)
	token, _, err := other.Issue(users.User{ID: "u1"})
	require.NoError(t, err)
	_, err = s.Verify(context.Background(), token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	foreign, err := New(Config{SigningKey: "test-key", Issuer: "someone-else"})
	require.NoError(t, err)
	token, _, err = foreign.Issue(users.User{ID: "u1"})
	require.NoError(t, err)
	_, err = s.Verify(context.Background(), token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	s := newTestService(t, time.Now())

	unsigned := gojwt.NewWithClaims(gojwt.SigningMethodNone, gojwt.RegisteredClaims{
		Subject:   "u1",
		Issuer:    "petrack",
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	raw, err := unsigned.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = s.Verify(context.Background(), raw)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = s.Verify(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
