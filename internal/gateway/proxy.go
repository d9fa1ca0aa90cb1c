package gateway

import (
	"net/http"
	"net/http/httputil"
	"strconv"
	"time"

	svcerrors "github.com/NexaCommerce/commerce_layer/internal/errors"
	httpx "github.com/NexaCommerce/commerce_layer/internal/httputil"
	"github.com/NexaCommerce/commerce_layer/internal/logging"
	"github.com/NexaCommerce/commerce_layer/internal/metrics"
)

// Proxy forwards matched requests to their route targets. One ReverseProxy
// is built per route at startup so per-request work is just a table lookup.
type Proxy struct {
	table    *RouteTable
	logger   *logging.Logger
	handlers map[string]*httputil.ReverseProxy
}

// NewProxy builds the forwarding stage for every route in the table.
func NewProxy(table *RouteTable, logger *logging.Logger, timeout time.Duration) *Proxy {
	transport := &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: timeout,
	}

	p := &Proxy{
		table:    table,
		logger:   logger,
		handlers: make(map[string]*httputil.ReverseProxy, len(table.Routes())),
	}

	for _, route := range table.Routes() {
		route := route
		rp := &httputil.ReverseProxy{
			Rewrite: func(pr *httputil.ProxyRequest) {
				pr.SetURL(route.Target)
				// Keep the original path: targets serve the same API
				// prefix the gateway exposes.
				pr.Out.URL.Path = pr.In.URL.Path
				pr.Out.URL.RawQuery = pr.In.URL.RawQuery
				pr.SetXForwarded()
			},
			Transport:    transport,
			ErrorHandler: p.errorHandler(route),
			ModifyResponse: func(resp *http.Response) error {
				metrics.RecordProxyForward(route.Name, strconv.Itoa(resp.StatusCode))
				return nil
			},
		}
		p.handlers[route.Prefix] = rp
	}
	return p
}

// ServeHTTP dispatches the request to the route with the longest matching
// prefix, or answers 404 when no route matches.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route, ok := p.table.Match(r.URL.Path)
	if !ok {
		httpx.WriteError(w, r, svcerrors.RouteNotFound(r.URL.Path))
		return
	}
	p.handlers[route.Prefix].ServeHTTP(w, r)
}

func (p *Proxy) errorHandler(route Route) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		p.logger.WithContext(r.Context()).WithError(err).WithFields(map[string]interface{}{
			"route":  route.Name,
			"target": route.Target.String(),
		}).Error("upstream request failed")
		metrics.RecordProxyForward(route.Name, "error")

		// If the upstream response already started streaming the headers
		// are committed and an error body would corrupt the response.
		if started, ok := w.(interface{ Started() bool }); ok && started.Started() {
			return
		}
		httpx.WriteError(w, r, svcerrors.DownstreamUnavailable(route.Name, err))
	}
}
