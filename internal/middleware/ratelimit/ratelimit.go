// Package ratelimit caps requests per client IP with a fixed one-minute
// window.
package ratelimit

import (
	"net/http"
	"sync"
	"time"
)

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

// Config holds rate limiter configuration.
type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		CleanupInterval:   5 * time.Minute,
	}
}

// Limiter tracks per-IP request counts. Stale entries are pruned by a
// background goroutine; call Stop to shut it down.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*clientInfo

	requestsPerMinute int
	cleanupInterval   time.Duration

	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

func NewLimiter(config Config) *Limiter {
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = DefaultConfig().RequestsPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultConfig().CleanupInterval
	}

	l := &Limiter{
		clients:           make(map[string]*clientInfo),
		requestsPerMinute: config.RequestsPerMinute,
		cleanupInterval:   config.CleanupInterval,
		stopCleanup:       make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether a request from the given IP is inside the limit.
func (l *Limiter) Allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	client, ok := l.clients[clientIP]
	if !ok {
		l.clients[clientIP] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}

	// The window resets one minute after the previous request.
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	client.requests++
	client.lastRequest = now
	return client.requests <= l.requestsPerMinute
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.removeStale()
		case <-l.stopCleanup:
			return
		}
	}
}

func (l *Limiter) removeStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range l.clients {
		if client.lastRequest.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}

// ActiveClients returns the number of currently tracked clients.
func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Stop shuts down the cleanup goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.shutdownOnce.Do(func() {
		close(l.stopCleanup)
	})
}

// Middleware rejects over-limit requests with 429 before they reach next.
func (l *Limiter) Middleware(extractIP func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(extractIP(r)) {
				w.Header().Set("Retry-After", "60")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
