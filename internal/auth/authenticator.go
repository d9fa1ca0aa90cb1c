package auth

import (
	"context"
	"crypto/rsa"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/NexaCommerce/commerce_layer/internal/errors"
	"github.com/NexaCommerce/commerce_layer/internal/logging"
)

// KeyProvider resolves a signing key by key ID. KeySet is the production
// implementation; tests inject static keys.
type KeyProvider interface {
	Key(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// StaticKey is a KeyProvider serving one fixed key regardless of kid.
type StaticKey struct {
	PublicKey *rsa.PublicKey
}

// Key returns the fixed key.
func (s StaticKey) Key(context.Context, string) (*rsa.PublicKey, error) {
	if s.PublicKey == nil {
		return nil, fmt.Errorf("no static key configured")
	}
	return s.PublicKey, nil
}

// Authenticator verifies bearer tokens and derives Principals. It is a pure
// function over the token and the key set; it keeps no per-request state.
type Authenticator struct {
	keys   KeyProvider
	realm  string
	logger *logging.Logger
}

// NewAuthenticator creates an authenticator checking tokens against the key
// provider and requiring the issuer to belong to the given realm.
func NewAuthenticator(keys KeyProvider, realm string, logger *logging.Logger) *Authenticator {
	return &Authenticator{keys: keys, realm: realm, logger: logger}
}

// Authenticate verifies the raw bearer token and returns the derived
// Principal. Signature, expiry, not-before and issuer failures all yield a
// ServiceError mapping to 401; no role set is produced on failure.
func (a *Authenticator) Authenticate(ctx context.Context, rawToken string) (Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		kid, _ := t.Header["kid"].(string)
		return a.keys.Key(ctx, kid)
	})
	if err != nil {
		return Principal{}, errors.InvalidToken(err)
	}
	if !token.Valid {
		return Principal{}, errors.InvalidToken(nil)
	}

	issuer := claims.Issuer
	if !strings.Contains(issuer, "/realms/"+a.realm) {
		if a.logger != nil {
			a.logger.WithContext(ctx).WithFields(map[string]interface{}{
				"issuer": issuer,
			}).Warn("token issuer outside expected realm")
		}
		return Principal{}, errors.InvalidIssuer(issuer)
	}

	displayName := claims.PreferredUsername
	if displayName == "" {
		displayName = claims.Subject
	}

	return Principal{
		Subject:     claims.Subject,
		DisplayName: displayName,
		Roles:       claims.ExtractRoles(),
		RawToken:    rawToken,
	}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
