package auth

import (
	"sort"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// RolePrefix is prepended to every extracted role, matching the authority
// naming the authorization checks expect.
const RolePrefix = "ROLE_"

// Well-known roles referenced by route and handler authorization rules.
const (
	RoleClient = RolePrefix + "CLIENT"
	RoleAdmin  = RolePrefix + "ADMIN"
)

// RealmAccess is the realm-wide role claim. Absence is a normal case.
type RealmAccess struct {
	Roles []string `json:"roles"`
}

// ClientAccess is one client entry inside the resource_access claim.
type ClientAccess struct {
	Roles []string `json:"roles"`
}

// Claims models the identity provider's token payload. realm_access and
// resource_access are both optional; a missing claim contributes no roles.
type Claims struct {
	PreferredUsername string                  `json:"preferred_username,omitempty"`
	RealmAccess       *RealmAccess            `json:"realm_access,omitempty"`
	ResourceAccess    map[string]ClientAccess `json:"resource_access,omitempty"`
	jwt.RegisteredClaims
}

// ExtractRoles flattens realm-wide and client-scoped roles into a single set.
// A caller may hold either kind or both; authorization must see the union.
// Each role is upper-cased and ROLE_-prefixed.
func (c *Claims) ExtractRoles() map[string]struct{} {
	roles := make(map[string]struct{})

	if c.RealmAccess != nil {
		for _, role := range c.RealmAccess.Roles {
			addRole(roles, role)
		}
	}
	for _, client := range c.ResourceAccess {
		for _, role := range client.Roles {
			addRole(roles, role)
		}
	}
	return roles
}

func addRole(set map[string]struct{}, role string) {
	role = strings.TrimSpace(role)
	if role == "" {
		return
	}
	set[RolePrefix+strings.ToUpper(role)] = struct{}{}
}

// SortedRoles returns the extracted role set as a sorted slice.
func (c *Claims) SortedRoles() []string {
	set := c.ExtractRoles()
	out := make([]string, 0, len(set))
	for role := range set {
		out = append(out, role)
	}
	sort.Strings(out)
	return out
}
