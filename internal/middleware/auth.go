package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/NexaCommerce/commerce_layer/internal/auth"
	"github.com/NexaCommerce/commerce_layer/internal/errors"
	"github.com/NexaCommerce/commerce_layer/internal/httputil"
	"github.com/NexaCommerce/commerce_layer/internal/logging"
)

// AuthMiddleware is the authentication stage. It verifies the bearer token,
// derives the Principal and threads it through the request context. Paths
// under a skip prefix (identity-provider passthrough, health, metrics) are
// never authenticated here.
type AuthMiddleware struct {
	authenticator *auth.Authenticator
	logger        *logging.Logger
	skipPrefixes  []string
}

// NewAuthMiddleware creates the authentication stage.
func NewAuthMiddleware(authenticator *auth.Authenticator, logger *logging.Logger, skipPrefixes []string) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		logger:        logger,
		skipPrefixes:  skipPrefixes,
	}
}

// Handler returns the authentication stage.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipped(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.respondError(w, r, errors.Unauthorized("Missing Authorization header"))
			return
		}

		rawToken, ok := auth.BearerToken(authHeader)
		if !ok {
			m.respondError(w, r, errors.Unauthorized("Invalid Authorization header format"))
			return
		}

		principal, err := m.authenticator.Authenticate(r.Context(), rawToken)
		if err != nil {
			m.logger.WithContext(r.Context()).WithError(err).Warn("token validation failed")
			m.respondError(w, r, err)
			return
		}

		ctx := auth.WithPrincipal(r.Context(), principal)
		ctx = context.WithValue(ctx, logging.UserIDKey, principal.Subject)
		if role := principal.PrimaryRole(); role != "" {
			ctx = context.WithValue(ctx, logging.RoleKey, role)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) skipped(path string) bool {
	for _, prefix := range m.skipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (m *AuthMiddleware) respondError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.WriteError(w, r, err)

	serviceErr := errors.GetServiceError(err)
	status := http.StatusUnauthorized
	if serviceErr != nil {
		status = serviceErr.HTTPStatus
	}
	m.logger.WithContext(r.Context()).WithFields(map[string]interface{}{
		"path":   r.URL.Path,
		"method": r.Method,
		"status": status,
	}).Warn("authentication failed")
}
