// Package trace assigns request IDs and logs the start and end of every
// HTTP request.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// Middleware tags each request with an ID and records basic throughput
// counters.
type Middleware struct {
	extractIP     func(*http.Request) string
	totalRequests int64
}

func NewMiddleware(extractIP func(*http.Request) string) *Middleware {
	return &Middleware{extractIP: extractIP}
}

// Handler wraps next with request-ID generation and request logging. The
// completion log level follows the response status: 4xx warns, 5xx errors.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		requestID := GenerateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "HTTP request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		atomic.AddInt64(&m.totalRequests, 1)

		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		level := slog.LevelInfo
		switch {
		case rw.status >= 500:
			level = slog.LevelError
		case rw.status >= 400:
			level = slog.LevelWarn
		}

		slog.Log(ctx, level, "HTTP request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", rw.status,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	})
}

// TotalRequests returns the number of requests seen so far.
func (m *Middleware) TotalRequests() int64 {
	return atomic.LoadInt64(&m.totalRequests)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// GenerateRequestID returns a unique ID for request correlation.
func GenerateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// Timestamp fallback if the random source is unavailable.
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(buf)
}

// GetRequestID extracts the request ID from the context, or "" if absent.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
