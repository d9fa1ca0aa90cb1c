package middleware

import (
	"net/http"

	"github.com/NexaCommerce/commerce_layer/internal/auth"
	"github.com/NexaCommerce/commerce_layer/internal/errors"
	"github.com/NexaCommerce/commerce_layer/internal/httputil"
)

// RequireAnyRole is the authorization stage: the request proceeds only when
// the authenticated principal holds at least one of the given roles. With no
// roles given, any authenticated principal passes.
func RequireAnyRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				httputil.WriteError(w, r, errors.Unauthorized(""))
				return
			}
			if !principal.HasAnyRole(roles...) {
				httputil.WriteError(w, r, errors.Forbidden(""))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuthenticated passes any request carrying a principal.
func RequireAuthenticated(next http.Handler) http.Handler {
	return RequireAnyRole()(next)
}
