package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/NexaCommerce/commerce_layer/internal/errors"
)

const testIssuer = "http://localhost:8180/realms/ecommerce"

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "test-key"
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims(issuer string) *Claims {
	return &Claims{
		PreferredUsername: "alice",
		RealmAccess:       &RealmAccess{Roles: []string{"client"}},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestAuthenticateValidToken(t *testing.T) {
	key := testKey(t)
	a := NewAuthenticator(StaticKey{PublicKey: &key.PublicKey}, "ecommerce", nil)

	raw := signToken(t, key, validClaims(testIssuer))
	principal, err := a.Authenticate(context.Background(), raw)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	if principal.Subject != "user-123" {
		t.Errorf("subject = %q, want user-123", principal.Subject)
	}
	if principal.DisplayName != "alice" {
		t.Errorf("display name = %q, want alice", principal.DisplayName)
	}
	if !principal.HasRole(RoleClient) {
		t.Errorf("expected %s role, got %v", RoleClient, principal.RoleList())
	}
	if principal.RawToken != raw {
		t.Error("raw token not preserved on principal")
	}
}

func TestAuthenticateDisplayNameFallsBackToSubject(t *testing.T) {
	key := testKey(t)
	a := NewAuthenticator(StaticKey{PublicKey: &key.PublicKey}, "ecommerce", nil)

	claims := validClaims(testIssuer)
	claims.PreferredUsername = ""
	principal, err := a.Authenticate(context.Background(), signToken(t, key, claims))
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if principal.DisplayName != "user-123" {
		t.Errorf("display name = %q, want user-123", principal.DisplayName)
	}
}

func TestAuthenticateExpiredToken(t *testing.T) {
	key := testKey(t)
	a := NewAuthenticator(StaticKey{PublicKey: &key.PublicKey}, "ecommerce", nil)

	claims := validClaims(testIssuer)
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	_, err := a.Authenticate(context.Background(), signToken(t, key, claims))
	if !errors.Is(err, errors.CodeInvalidToken) {
		t.Fatalf("expected INVALID_TOKEN, got %v", err)
	}
}

func TestAuthenticateWrongRealmIssuer(t *testing.T) {
	key := testKey(t)
	a := NewAuthenticator(StaticKey{PublicKey: &key.PublicKey}, "ecommerce", nil)

	raw := signToken(t, key, validClaims("http://localhost:8180/realms/other"))
	_, err := a.Authenticate(context.Background(), raw)
	if !errors.Is(err, errors.CodeInvalidIssuer) {
		t.Fatalf("expected INVALID_ISSUER, got %v", err)
	}
}

func TestAuthenticateWrongSignature(t *testing.T) {
	signingKey := testKey(t)
	otherKey := testKey(t)
	a := NewAuthenticator(StaticKey{PublicKey: &otherKey.PublicKey}, "ecommerce", nil)

	_, err := a.Authenticate(context.Background(), signToken(t, signingKey, validClaims(testIssuer)))
	if !errors.Is(err, errors.CodeInvalidToken) {
		t.Fatalf("expected INVALID_TOKEN, got %v", err)
	}
}

func TestAuthenticateRejectsNonRSAAlgorithm(t *testing.T) {
	key := testKey(t)
	a := NewAuthenticator(StaticKey{PublicKey: &key.PublicKey}, "ecommerce", nil)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims(testIssuer))
	raw, err := token.SignedString([]byte("shared-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := a.Authenticate(context.Background(), raw); !errors.Is(err, errors.CodeInvalidToken) {
		t.Fatalf("expected INVALID_TOKEN, got %v", err)
	}
}

func TestAuthenticateGarbageToken(t *testing.T) {
	key := testKey(t)
	a := NewAuthenticator(StaticKey{PublicKey: &key.PublicKey}, "ecommerce", nil)

	if _, err := a.Authenticate(context.Background(), "not-a-token"); !errors.Is(err, errors.CodeInvalidToken) {
		t.Fatalf("expected INVALID_TOKEN, got %v", err)
	}
}
