package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ovaphlow/pitchfork/service-jobs-go/pkg/utilities"
)

// ErrInvalidToken covers every reason a token is rejected (expired, bad
// signature, malformed, missing subject).
var ErrInvalidToken = errors.New("invalid token")

// Claims is the token payload. UserID is the decimal form of the user id.
type Claims struct {
	UserID string `json:"userId"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenConfig configures signing and lifetime.
type TokenConfig struct {
	Secret   []byte
	Lifetime time.Duration
}

// TokenService issues and verifies HS256 identity tokens.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

func NewTokenService(cfg TokenConfig) *TokenService {
	return &TokenService{secret: cfg.Secret, lifetime: cfg.Lifetime, now: time.Now}
}

// Issue signs a token for the given user.
func (s *TokenService) Issue(userID int64, name string) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: utilities.FormatID(userID),
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the user id the token was issued for.
func (s *TokenService) Verify(token string) (int64, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return 0, errors.Join(ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return 0, ErrInvalidToken
	}
	id, err := utilities.ParseID(claims.UserID)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}
