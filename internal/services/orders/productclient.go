package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NexaCommerce/commerce_layer/internal/errors"
	"github.com/NexaCommerce/commerce_layer/internal/httputil"
)

// Snapshot is the product collaborator's view of one catalog entry at lookup
// time.
type Snapshot struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
}

// ProductClient looks up catalog entries on behalf of a caller. The bearer
// token is the caller's own, so downstream authorization runs under the
// original principal.
type ProductClient interface {
	GetProduct(ctx context.Context, productID, bearerToken string) (Snapshot, error)
}

// HTTPProductClient calls the product service over HTTP.
type HTTPProductClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ ProductClient = (*HTTPProductClient)(nil)

// NewHTTPProductClient creates a client for the product service. Every lookup
// is bounded by the given timeout.
func NewHTTPProductClient(baseURL string, timeout time.Duration) *HTTPProductClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPProductClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetProduct fetches one product under the caller's token.
func (c *HTTPProductClient) GetProduct(ctx context.Context, productID, bearerToken string) (Snapshot, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Snapshot{}, errors.Internal("", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Snapshot{}, errors.DownstreamUnavailable("product", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Snapshot{}, errors.ProductNotFound(productID)
	case resp.StatusCode >= 400:
		return Snapshot{}, errors.DownstreamUnavailable("product",
			fmt.Errorf("status %d: %s", resp.StatusCode, httputil.ErrorSnippet(resp.Body)))
	}

	var snap Snapshot
	if err := json.NewDecoder(io.LimitReader(resp.Body, httputil.MaxBodyBytes)).Decode(&snap); err != nil {
		return Snapshot{}, errors.DownstreamUnavailable("product", err)
	}
	return snap, nil
}
