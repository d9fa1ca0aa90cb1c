package gateway

import (
	"net/http"
	"time"

	"github.com/NexaCommerce/commerce_layer/internal/auth"
	"github.com/NexaCommerce/commerce_layer/internal/config"
	svcerrors "github.com/NexaCommerce/commerce_layer/internal/errors"
	httpx "github.com/NexaCommerce/commerce_layer/internal/httputil"
	"github.com/NexaCommerce/commerce_layer/internal/logging"
	"github.com/NexaCommerce/commerce_layer/internal/metrics"
	"github.com/NexaCommerce/commerce_layer/internal/middleware"
)

// Server wires the gateway pipeline: CORS, request logging, metrics, then
// per-route authentication, authorization and proxying.
type Server struct {
	cfg     *config.GatewayConfig
	logger  *logging.Logger
	table   *RouteTable
	handler http.Handler
}

// NewServer builds the gateway from its configuration. Route table and
// proxy handlers are compiled once here; an invalid route set fails the
// boot instead of a request.
func NewServer(cfg *config.GatewayConfig, logger *logging.Logger) (*Server, error) {
	table, err := NewRouteTable(cfg.Routes)
	if err != nil {
		return nil, err
	}

	keys := auth.NewKeySet(cfg.Auth.JWKSURL, 10*time.Second)
	authenticator := auth.NewAuthenticator(keys, cfg.Auth.Realm, logger)

	s := &Server{cfg: cfg, logger: logger, table: table}
	s.handler = s.buildPipeline(authenticator)
	return s, nil
}

// Handler returns the fully assembled gateway handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Table exposes the compiled route table, mainly for startup logging.
func (s *Server) Table() *RouteTable { return s.table }

func (s *Server) buildPipeline(authenticator *auth.Authenticator) http.Handler {
	proxy := NewProxy(s.table, s.logger, s.cfg.ProxyTimeout.Std())
	authn := middleware.NewAuthMiddleware(authenticator, s.logger, nil)

	// Each route gets its own authn/authz chain in front of the shared
	// proxy; public routes bypass both stages. The route prefix is the
	// metric path label so request IDs never become label values.
	perRoute := make(map[string]http.Handler, len(s.table.Routes()))
	for _, route := range s.table.Routes() {
		var h http.Handler = proxy
		if !route.Public {
			if len(route.Roles) == 0 {
				h = middleware.RequireAuthenticated(h)
			} else {
				h = middleware.RequireAnyRole(route.Roles...)(h)
			}
			h = authn.Handler(h)
		}
		perRoute[route.Prefix] = middleware.MetricsWithPath("gateway", route.Prefix)(h)
	}

	notFound := middleware.MetricsWithPath("gateway", "unmatched")(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			httpx.WriteError(w, r, svcerrors.RouteNotFound(r.URL.Path))
		}))

	mux := http.NewServeMux()
	mux.Handle("/actuator/health", middleware.MetricsWithPath("gateway", "/actuator/health")(http.HandlerFunc(s.handleHealth)))
	mux.Handle("/actuator/prometheus", metrics.Handler())
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, ok := s.table.Match(r.URL.Path)
		if !ok {
			notFound.ServeHTTP(w, r)
			return
		}
		perRoute[route.Prefix].ServeHTTP(w, r)
	}))

	var h http.Handler = mux
	h = middleware.RequestLogger(s.logger)(h)
	h = middleware.NewCORSMiddleware(s.cfg.AllowedOrigins).Handler(h)
	return h
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "UP"})
}
