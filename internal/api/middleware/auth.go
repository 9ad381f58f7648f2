package middleware

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"

	"todo_server/internal/common"
	"todo_server/internal/common/security"
	"todo_server/internal/platform/metrics"
)

// UserIDParam is the route segment naming the user a request addresses.
const UserIDParam = "user_id"

type TokenVerifier interface {
	Verify(token string) (security.Identity, error)
}

// IdentityHandlerFunc is a handler that runs only after the gate has bound
// the bearer token to the path's user_id. The identity is valid for this
// request only.
type IdentityHandlerFunc func(w http.ResponseWriter, r *http.Request, id security.Identity)

// Gate is the authorization checkpoint for every user-scoped route.
type Gate struct {
	tokens  TokenVerifier
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewGate(tokens TokenVerifier, logger *slog.Logger, m *metrics.Metrics) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{tokens: tokens, logger: logger, metrics: m}
}

// Authenticate verifies the bearer token of r and requires its subject to
// equal the user_id path segment byte for byte. Every failure is the same
// AuthError(Unauthorized); the reason only reaches the metrics.
func (g *Gate) Authenticate(r *http.Request) (security.Identity, error) {
	tokenString := jwtauth.TokenFromHeader(r)
	if tokenString == "" {
		g.reject(r, metrics.ReasonMissingToken)
		return security.Identity{}, common.NewAuthError(common.AuthUnauthorized)
	}

	id, err := g.tokens.Verify(tokenString)
	if err != nil {
		g.reject(r, metrics.ReasonInvalidToken)
		return security.Identity{}, common.NewAuthError(common.AuthUnauthorized)
	}

	if id.Subject != chi.URLParam(r, UserIDParam) {
		g.reject(r, metrics.ReasonIdentityMismatch)
		return security.Identity{}, common.NewAuthError(common.AuthUnauthorized)
	}
	return id, nil
}

// Guard wraps next so it only runs for an authenticated owner; everything
// else gets 401.
func (g *Gate) Guard(next IdentityHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := g.Authenticate(r)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, err.Error(), "")
			return
		}
		next(w, r, id)
	}
}

func (g *Gate) reject(r *http.Request, reason string) {
	g.logger.DebugContext(r.Context(), "auth gate rejected request",
		"reason", reason, "path", r.URL.Path)
	g.metrics.RecordGateRejection(reason)
}
