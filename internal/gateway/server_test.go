package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/NexaCommerce/commerce_layer/internal/config"
	"github.com/NexaCommerce/commerce_layer/internal/logging"
	"github.com/NexaCommerce/commerce_layer/internal/metrics"
)

func testGatewayConfig(routes []config.RouteConfig) *config.GatewayConfig {
	cfg := config.DefaultGatewayConfig()
	cfg.Routes = routes
	return cfg
}

func TestGatewayForwardsPublicRoute(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/products/42" {
			t.Errorf("backend saw path %q", r.URL.Path)
		}
		if got := r.URL.RawQuery; got != "name=mug" {
			t.Errorf("backend saw query %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"42"}`))
	}))
	defer backend.Close()

	srv, err := NewServer(testGatewayConfig([]config.RouteConfig{
		{Name: "products", Prefix: "/api/products", Target: backend.URL, Public: true},
	}), logging.New("gateway", "error", "json"))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products/42?name=mug", nil)
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if string(body) != `{"id":"42"}` {
		t.Fatalf("body = %s", body)
	}
}

func TestGatewayUnmatchedPathReturnsEnvelope(t *testing.T) {
	srv, err := NewServer(testGatewayConfig([]config.RouteConfig{
		{Name: "products", Prefix: "/api/products", Target: "http://localhost:1", Public: true},
	}), logging.New("gateway", "error", "json"))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var env map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	for _, field := range []string{"timestamp", "status", "error", "message", "path"} {
		if _, ok := env[field]; !ok {
			t.Errorf("envelope missing %q: %v", field, env)
		}
	}
	if env["path"] != "/nope" {
		t.Errorf("path = %v, want /nope", env["path"])
	}
}

func TestGatewayProtectedRouteRequiresToken(t *testing.T) {
	backendHits := 0
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backendHits++
	}))
	defer backend.Close()

	srv, err := NewServer(testGatewayConfig([]config.RouteConfig{
		{Name: "orders", Prefix: "/api/orders", Target: backend.URL, Roles: []string{"ROLE_CLIENT"}},
	}), logging.New("gateway", "error", "json"))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if backendHits != 0 {
		t.Fatalf("backend hit %d times for unauthenticated request", backendHits)
	}
}

func TestGatewayRouteWithoutRolesRequiresAuthentication(t *testing.T) {
	backendHits := 0
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backendHits++
	}))
	defer backend.Close()

	// Non-public route with no role list: any principal may pass, but an
	// anonymous caller may not.
	srv, err := NewServer(testGatewayConfig([]config.RouteConfig{
		{Name: "profile", Prefix: "/api/profile", Target: backend.URL},
	}), logging.New("gateway", "error", "json"))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if backendHits != 0 {
		t.Fatalf("backend hit %d times for anonymous request", backendHits)
	}
}

func TestGatewayMetricsUseRoutePrefixLabel(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	srv, err := NewServer(testGatewayConfig([]config.RouteConfig{
		{Name: "catalog", Prefix: "/api/catalog", Target: backend.URL, Public: true},
	}), logging.New("gateway", "error", "json"))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/catalog/a81bc1f4", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	scrape := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/actuator/prometheus", nil))
	body := scrape.Body.String()

	want := `commerce_layer_http_requests_total{method="GET",path="/api/catalog",service="gateway",status="200"}`
	if !strings.Contains(body, want) {
		t.Fatalf("scrape missing series %s", want)
	}
	if strings.Contains(body, "a81bc1f4") {
		t.Fatal("raw request path leaked into a metric label")
	}
}

func TestGatewayUnreachableUpstreamReturnsBadGateway(t *testing.T) {
	// Nothing listens on this port.
	srv, err := NewServer(testGatewayConfig([]config.RouteConfig{
		{Name: "products", Prefix: "/api/products", Target: "http://127.0.0.1:1", Public: true},
	}), logging.New("gateway", "error", "json"))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestGatewayHealthEndpoint(t *testing.T) {
	srv, err := NewServer(testGatewayConfig([]config.RouteConfig{
		{Name: "products", Prefix: "/api/products", Target: "http://localhost:1", Public: true},
	}), logging.New("gateway", "error", "json"))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/actuator/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
