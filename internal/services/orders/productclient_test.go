package orders

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NexaCommerce/commerce_layer/internal/errors"
)

func TestGetProductForwardsBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"p1","name":"Mug","description":"ceramic","price":9.99,"stockQuantity":3,"createdAt":"2026-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	client := NewHTTPProductClient(srv.URL+"/api/products", time.Second)
	snap, err := client.GetProduct(context.Background(), "p1", "caller-token")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}

	if gotAuth != "Bearer caller-token" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotPath != "/api/products/p1" {
		t.Errorf("path = %q", gotPath)
	}
	if snap.Name != "Mug" || !snap.Price.Equal(decimal.RequireFromString("9.99")) || snap.StockQuantity != 3 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestGetProductNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewHTTPProductClient(srv.URL, time.Second)
	_, err := client.GetProduct(context.Background(), "ghost", "token")
	if !errors.Is(err, errors.CodeProductNotFound) {
		t.Fatalf("expected PRODUCT_NOT_FOUND, got %v", err)
	}
}

func TestGetProductUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewHTTPProductClient(srv.URL, time.Second)
	_, err := client.GetProduct(context.Background(), "p1", "token")
	if !errors.Is(err, errors.CodeDownstreamFailure) {
		t.Fatalf("expected DOWNSTREAM_UNAVAILABLE, got %v", err)
	}
}

func TestGetProductConnectionFailure(t *testing.T) {
	client := NewHTTPProductClient("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := client.GetProduct(context.Background(), "p1", "token")
	if !errors.Is(err, errors.CodeDownstreamFailure) {
		t.Fatalf("expected DOWNSTREAM_UNAVAILABLE, got %v", err)
	}
}
