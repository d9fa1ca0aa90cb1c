package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/NexaCommerce/commerce_layer/internal/metrics"
)

// Metrics records request counts, durations and in-flight gauge for each
// request. The path label is the matched gorilla route template, so this
// stage must be attached with Router.Use; mounted outside the router the
// template is not resolvable and the label degrades to "unmatched".
// Raw URL paths never become label values.
func Metrics(serviceName string) mux.MiddlewareFunc {
	return instrument(serviceName, func(r *http.Request) string {
		if route := mux.CurrentRoute(r); route != nil {
			if pathTemplate, err := route.GetPathTemplate(); err == nil {
				return pathTemplate
			}
		}
		return "unmatched"
	})
}

// MetricsWithPath records the same series under a fixed path label, for
// handlers that are not mounted behind a gorilla router.
func MetricsWithPath(serviceName, path string) func(http.Handler) http.Handler {
	return instrument(serviceName, func(*http.Request) string { return path })
}

func instrument(serviceName string, pathLabel func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			metrics.IncrementInFlight()
			defer metrics.DecrementInFlight()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			metrics.RecordHTTPRequest(serviceName, r.Method, pathLabel(r),
				strconv.Itoa(wrapped.statusCode), time.Since(start).Seconds())
		})
	}
}
