package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/NexaCommerce/commerce_layer/internal/logging"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Started reports whether any part of the response has been sent.
func (rw *responseWriter) Started() bool { return rw.written }

// RequestLogger is the timing/logging stage. It assigns a trace ID, wraps the
// downstream handler and emits one structured line per request with method,
// path, client IP, status and elapsed duration. Because it wraps the
// forwarding step, the duration covers the full downstream round trip.
func RequestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get("X-Trace-ID")
			if traceID == "" {
				traceID = logging.NewTraceID()
			}
			ctx := logging.WithTraceID(r.Context(), traceID)
			w.Header().Set("X-Trace-ID", traceID)

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			duration := time.Since(start)
			logger.WithContext(ctx).WithFields(map[string]interface{}{
				"client_ip": ClientIP(r),
			}).LogRequest(r.Method, r.URL.Path, wrapped.statusCode, duration)
		})
	}
}

// ClientIP resolves the caller address: first X-Forwarded-For entry, then
// X-Real-IP, then the transport peer address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
