package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/apperror"
)

const (
	msgMissingHeader = "Authentication invalid"
	msgBadToken      = "Authentication failed during token verification"
	msgReadOnly      = "Test User. Read Only!"
)

// TokenVerifier resolves a bearer token to the user id it was issued for.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// Guard authenticates requests and attaches an Identity to their context.
type Guard struct {
	tokens     TokenVerifier
	demoUserID int64
	logger     *zap.SugaredLogger
}

// NewGuard builds a guard. demoUserID of 0 disables the read-only account.
func NewGuard(tokens TokenVerifier, demoUserID int64, logger *zap.SugaredLogger) *Guard {
	return &Guard{tokens: tokens, demoUserID: demoUserID, logger: logger}
}

// Authenticate derives the Identity for r or explains why it cannot.
func (g *Guard) Authenticate(r *http.Request) (Identity, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return Identity{}, apperror.Unauthenticated(msgMissingHeader)
	}
	userID, err := g.tokens.Verify(token)
	if err != nil {
		if g.logger != nil {
			g.logger.Debugw("token rejected", "err", err)
		}
		return Identity{}, apperror.Unauthenticated(msgBadToken)
	}
	return Identity{
		UserID:     userID,
		Restricted: g.demoUserID != 0 && userID == g.demoUserID,
	}, nil
}

// Middleware rejects unauthenticated requests and passes the rest on with
// their Identity in context.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := g.Authenticate(r)
		if err != nil {
			apperror.Write(w, r, g.logger, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// BlockRestricted stops the demo account from reaching write handlers.
// It must run behind Middleware.
func (g *Guard) BlockRestricted(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			apperror.Write(w, r, g.logger, apperror.Unauthenticated(msgMissingHeader))
			return
		}
		if id.Restricted {
			apperror.Write(w, r, g.logger, apperror.BadRequest(msgReadOnly))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireIdentity is for handlers mounted behind Middleware.
func RequireIdentity(r *http.Request) (Identity, error) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		return Identity{}, apperror.Unauthenticated(msgMissingHeader)
	}
	return id, nil
}
