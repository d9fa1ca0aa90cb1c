// Package main runs the API gateway: the single public entry point that
// authenticates callers, enforces route-level roles and proxies requests to
// the backend services.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NexaCommerce/commerce_layer/internal/config"
	"github.com/NexaCommerce/commerce_layer/internal/gateway"
	"github.com/NexaCommerce/commerce_layer/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "Path to gateway config file")
	flag.Parse()

	if v := os.Getenv("GATEWAY_CONFIG"); v != "" && *configPath == "" {
		*configPath = v
	}

	// Amounts serialize as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.LoadGatewayConfig(*configPath)
	if err != nil {
		logging.New("gateway", "info", "json").WithError(err).Fatal("failed to load configuration")
	}

	logger := logging.New("gateway", cfg.LogLevel, cfg.LogFormat)

	gw, err := gateway.NewServer(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to build gateway")
	}
	for _, route := range gw.Table().Routes() {
		logger.WithFields(map[string]interface{}{
			"prefix": route.Prefix,
			"target": route.Target.String(),
			"roles":  route.Roles,
		}).Info("route registered")
	}

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      gw.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.WithFields(map[string]interface{}{"addr": cfg.ListenAddr}).Info("gateway listening")
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
