// Package metrics exposes Prometheus collectors for the commerce layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "commerce_layer",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "commerce_layer",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"service", "method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "commerce_layer",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"service", "method", "path"},
	)

	ordersCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "commerce_layer",
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Total number of order creation attempts.",
		},
		[]string{"outcome"},
	)

	proxyForwards = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "commerce_layer",
			Subsystem: "gateway",
			Name:      "forwards_total",
			Help:      "Total number of requests proxied to a backend target.",
		},
		[]string{"route", "status"},
	)
)

func init() {
	Registry.MustRegister(httpInFlight, httpRequests, httpDuration, ordersCreated, proxyForwards)
}

// IncrementInFlight bumps the in-flight gauge.
func IncrementInFlight() { httpInFlight.Inc() }

// DecrementInFlight drops the in-flight gauge.
func DecrementInFlight() { httpInFlight.Dec() }

// RecordHTTPRequest records a finished request.
func RecordHTTPRequest(service, method, path, status string, seconds float64) {
	httpRequests.WithLabelValues(service, method, path, status).Inc()
	httpDuration.WithLabelValues(service, method, path).Observe(seconds)
}

// RecordOrderCreation records one order-creation attempt outcome.
func RecordOrderCreation(outcome string) {
	ordersCreated.WithLabelValues(outcome).Inc()
}

// RecordProxyForward records one proxied request per route.
func RecordProxyForward(route, status string) {
	proxyForwards.WithLabelValues(route, status).Inc()
}

// Handler serves the registry in Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
