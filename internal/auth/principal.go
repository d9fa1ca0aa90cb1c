// Package auth verifies bearer tokens issued by the identity provider and
// derives the per-request Principal consumed by authorization checks.
package auth

import "context"

// Principal is the authenticated identity for one request. It is derived once
// by the authentication stage, threaded explicitly through context, and
// discarded at request end.
type Principal struct {
	Subject     string
	DisplayName string
	Roles       map[string]struct{}
	RawToken    string
}

// HasRole reports whether the principal holds the role.
func (p Principal) HasRole(role string) bool {
	_, ok := p.Roles[role]
	return ok
}

// HasAnyRole reports whether the principal holds at least one of the roles.
// An empty requirement means any authenticated principal qualifies.
func (p Principal) HasAnyRole(roles ...string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if p.HasRole(role) {
			return true
		}
	}
	return false
}

// PrimaryRole returns the application role used to enrich log lines.
// Admin wins over client; roles outside the application pair are not
// surfaced.
func (p Principal) PrimaryRole() string {
	switch {
	case p.HasRole(RoleAdmin):
		return RoleAdmin
	case p.HasRole(RoleClient):
		return RoleClient
	}
	return ""
}

// RoleList returns the roles as a slice, for logging and DTOs.
func (p Principal) RoleList() []string {
	out := make([]string, 0, len(p.Roles))
	for role := range p.Roles {
		out = append(out, role)
	}
	return out
}

type contextKey string

const principalContextKey contextKey = "commerce.principal"

// WithPrincipal stores the principal in the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext extracts the principal placed by the authentication
// stage, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	v := ctx.Value(principalContextKey)
	if v == nil {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}
