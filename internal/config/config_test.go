package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadGatewayConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
listen_addr: ":9090"
log_level: debug
allowed_origins:
  - http://shop.example.com
proxy_timeout: 45s
auth:
  jwks_url: http://keycloak:8080/realms/ecommerce/protocol/openid-connect/certs
  realm: ecommerce
routes:
  - name: orders
    prefix: /api/orders
    target: http://orderservice:8082
    roles: [ROLE_CLIENT, ROLE_ADMIN]
  - name: products
    prefix: /api/products
    target: http://productservice:8081
`)

	cfg, err := LoadGatewayConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.ListenAddr != ":9090" {
		t.Errorf("listen_addr = %q", cfg.ListenAddr)
	}
	if cfg.ProxyTimeout.Std() != 45*time.Second {
		t.Errorf("proxy_timeout = %s", cfg.ProxyTimeout.Std())
	}
	if len(cfg.Routes) != 2 {
		t.Fatalf("routes = %d, want 2", len(cfg.Routes))
	}
	if cfg.Routes[0].Roles[0] != "ROLE_CLIENT" {
		t.Errorf("roles = %v", cfg.Routes[0].Roles)
	}
	if cfg.Auth.Realm != "ecommerce" {
		t.Errorf("realm = %q", cfg.Auth.Realm)
	}
}

func TestLoadGatewayConfigDefaults(t *testing.T) {
	cfg, err := LoadGatewayConfig("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("listen_addr = %q", cfg.ListenAddr)
	}
	if cfg.ProxyTimeout.Std() != 30*time.Second {
		t.Errorf("proxy_timeout = %s", cfg.ProxyTimeout.Std())
	}
}

func TestLoadGatewayConfigEnvOverride(t *testing.T) {
	t.Setenv("GATEWAY_ADDR", ":7070")
	t.Setenv("PROXY_TIMEOUT", "10s")

	cfg, err := LoadGatewayConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":7070" {
		t.Errorf("listen_addr = %q", cfg.ListenAddr)
	}
	if cfg.ProxyTimeout.Std() != 10*time.Second {
		t.Errorf("proxy_timeout = %s", cfg.ProxyTimeout.Std())
	}
}

func TestLoadGatewayConfigRejectsRouteWithoutTarget(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwks_url: http://keycloak:8080/certs
  realm: ecommerce
routes:
  - name: orders
    prefix: /api/orders
`)
	if _, err := LoadGatewayConfig(path); err == nil {
		t.Fatal("expected missing target to be rejected")
	}
}

func TestLoadServiceConfig(t *testing.T) {
	path := writeConfig(t, `
listen_addr: ":8082"
database_url: postgres://commerce:secret@db:5432/orders?sslmode=disable
product_service_url: http://productservice:8081/api/products
product_timeout: 2s
auth:
  jwks_url: http://keycloak:8080/realms/ecommerce/protocol/openid-connect/certs
  realm: ecommerce
`)

	cfg, err := LoadServiceConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ProductTimeout.Std() != 2*time.Second {
		t.Errorf("product_timeout = %s", cfg.ProductTimeout.Std())
	}
	if cfg.ProductServiceURL != "http://productservice:8081/api/products" {
		t.Errorf("product_service_url = %q", cfg.ProductServiceURL)
	}
}

func TestLoadServiceConfigDefaultsTimeout(t *testing.T) {
	cfg, err := LoadServiceConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ProductTimeout.Std() != 5*time.Second {
		t.Errorf("product_timeout = %s, want 5s", cfg.ProductTimeout.Std())
	}
}
