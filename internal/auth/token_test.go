package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokens(lifetime time.Duration) *TokenService {
	return NewTokenService(TokenConfig{Secret: []byte("super-secret"), Lifetime: lifetime})
}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	s := newTestTokens(time.Hour)
	tok, err := s.Issue(1790000000000000001, "alice")
	require.NoError(t, err)

	id, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(1790000000000000001), id)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	s := newTestTokens(time.Minute)
	issued := time.Now().Add(-2 * time.Hour)
	s.now = func() time.Time { return issued }
	tok, err := s.Issue(42, "bob")
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.Verify(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := newTestTokens(time.Hour).Issue(7, "carol")
	require.NoError(t, err)

	other := NewTokenService(TokenConfig{Secret: []byte("other-secret"), Lifetime: time.Hour})
	_, err = other.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	_, err := newTestTokens(time.Hour).Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := Claims{
		UserID: "7",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("super-secret"))
	require.NoError(t, err)

	_, err = newTestTokens(time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsBadSubject(t *testing.T) {
	t.Parallel()

	claims := Claims{
		UserID: "not-a-number",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("super-secret"))
	require.NoError(t, err)

	_, err = newTestTokens(time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
