package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"
)

const defaultKeyTTL = 5 * time.Minute

// KeySet fetches and caches the identity provider's JSON Web Key Set. Keys
// are refreshed under their own lock with a TTL; the verified request path
// only takes a read lock once warm.
type KeySet struct {
	url     string
	client  *http.Client
	ttl     time.Duration

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expiresAt time.Time
}

// NewKeySet creates a key set backed by the JWKS endpoint.
func NewKeySet(jwksURL string, timeout time.Duration) *KeySet {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &KeySet{
		url:    jwksURL,
		client: &http.Client{Timeout: timeout},
		ttl:    defaultKeyTTL,
		keys:   make(map[string]*rsa.PublicKey),
	}
}

// Key returns the RSA public key for the given key ID, refreshing the cache
// when stale or when the kid is unknown.
func (ks *KeySet) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if ks.url == "" {
		return nil, fmt.Errorf("jwks url is not configured")
	}

	now := time.Now()
	ks.mu.RLock()
	if key, ok := ks.keys[kid]; ok && now.Before(ks.expiresAt) {
		ks.mu.RUnlock()
		return key, nil
	}
	ks.mu.RUnlock()

	if err := ks.refresh(ctx, now); err != nil {
		return nil, err
	}

	ks.mu.RLock()
	defer ks.mu.RUnlock()
	key, ok := ks.keys[kid]
	if !ok {
		return nil, fmt.Errorf("signing key %q not found in jwks", kid)
	}
	return key, nil
}

func (ks *KeySet) refresh(ctx context.Context, now time.Time) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	if now.Before(ks.expiresAt) {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ks.url, nil)
	if err != nil {
		return err
	}
	resp, err := ks.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch jwks: status %d", resp.StatusCode)
	}

	var payload struct {
		Keys []struct {
			Kid string `json:"kid"`
			Kty string `json:"kty"`
			Use string `json:"use"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode jwks: %w", err)
	}

	next := make(map[string]*rsa.PublicKey)
	for _, k := range payload.Keys {
		if strings.ToUpper(k.Kty) != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := rsaFromJWK(k.N, k.E)
		if err != nil {
			continue
		}
		next[k.Kid] = pub
	}
	if len(next) == 0 {
		return fmt.Errorf("jwks contains no usable rsa keys")
	}

	ks.keys = next
	ks.expiresAt = now.Add(ks.ttl)
	return nil
}

func rsaFromJWK(nB64, eB64 string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(nB64)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(eB64)
	if err != nil {
		return nil, err
	}
	if len(eb) == 0 {
		return nil, fmt.Errorf("empty exponent")
	}
	e := 0
	for _, b := range eb {
		e = e<<8 + int(b)
	}
	if e <= 1 {
		return nil, fmt.Errorf("invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
}
