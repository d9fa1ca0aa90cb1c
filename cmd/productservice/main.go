// Package main runs the product catalog service.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/NexaCommerce/commerce_layer/internal/auth"
	"github.com/NexaCommerce/commerce_layer/internal/config"
	httpx "github.com/NexaCommerce/commerce_layer/internal/httputil"
	"github.com/NexaCommerce/commerce_layer/internal/logging"
	"github.com/NexaCommerce/commerce_layer/internal/metrics"
	"github.com/NexaCommerce/commerce_layer/internal/middleware"
	"github.com/NexaCommerce/commerce_layer/internal/services/products"
	"github.com/NexaCommerce/commerce_layer/internal/storage"
	"github.com/NexaCommerce/commerce_layer/internal/storage/memory"
	"github.com/NexaCommerce/commerce_layer/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to service config file")
	flag.Parse()

	if v := os.Getenv("SERVICE_CONFIG"); v != "" && *configPath == "" {
		*configPath = v
	}

	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.LoadServiceConfig(*configPath)
	if err != nil {
		logging.New("productservice", "info", "json").WithError(err).Fatal("failed to load configuration")
	}

	logger := logging.New("productservice", cfg.LogLevel, cfg.LogFormat)

	store := openProductStore(cfg, logger)
	svc := products.New(store, logger)

	keys := auth.NewKeySet(cfg.Auth.JWKSURL, 10*time.Second)
	authenticator := auth.NewAuthenticator(keys, cfg.Auth.Realm, logger)
	authn := middleware.NewAuthMiddleware(authenticator, logger, []string{"/actuator"})

	router := mux.NewRouter()
	// Inside the router so the route template, not the raw path, becomes
	// the metric label.
	router.Use(middleware.Metrics("productservice"))
	products.NewHandler(svc, logger).Register(router)
	router.HandleFunc("/actuator/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "UP"})
	}).Methods(http.MethodGet)
	router.Handle("/actuator/prometheus", metrics.Handler()).Methods(http.MethodGet)

	var handler http.Handler = router
	handler = authn.Handler(handler)
	handler = middleware.RequestLogger(logger)(handler)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.WithFields(map[string]interface{}{"addr": cfg.ListenAddr}).Info("product service listening")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("shutdown error")
	}
}

// openProductStore connects to Postgres when a database URL is configured
// and falls back to the in-memory store otherwise, which keeps local
// development free of external dependencies.
func openProductStore(cfg *config.ServiceConfig, logger *logging.Logger) storage.ProductStore {
	if cfg.DatabaseURL == "" {
		logger.Warn("no database configured, using in-memory store")
		return memory.New()
	}

	store, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	if err := postgres.Migrate(store.DB()); err != nil {
		logger.WithError(err).Fatal("failed to run migrations")
	}
	return store
}
