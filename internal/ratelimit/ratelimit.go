// Package ratelimit implements a fixed-window per-client request limiter,
// applied to the credential endpoints to slow down brute-force attempts.
package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"
)

const staleAfter = 10 * time.Minute

type window struct {
	startedAt time.Time
	requests  int
}

// Limiter counts requests per client IP in one-minute windows.
type Limiter struct {
	mu       sync.Mutex
	clients  map[string]*window
	perMin   int
	stop     chan struct{}
	stopOnce sync.Once
}

func New(requestsPerMinute int) *Limiter {
	l := &Limiter{
		clients: make(map[string]*window),
		perMin:  requestsPerMinute,
		stop:    make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether another request from the client fits in the
// current window.
func (l *Limiter) Allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.clients[clientIP]
	if !ok || now.Sub(w.startedAt) > time.Minute {
		l.clients[clientIP] = &window{startedAt: now, requests: 1}
		return true
	}
	w.requests++
	return w.requests <= l.perMin
}

// Stop ends the background cleanup goroutine.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Middleware rejects over-limit requests with 429 before they reach the
// handler.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"message": "too many requests, slow down",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.dropStale()
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) dropStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-staleAfter)
	for ip, w := range l.clients {
		if w.startedAt.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}

func clientIP(r *http.Request) string {
	// RealIP middleware has already folded proxy headers into RemoteAddr
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
