// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Config holds fixed-window limiter settings.
type Config struct {
	WindowSize    time.Duration
	MaxAttempts   int
	BanDuration   time.Duration
	CleanupPeriod time.Duration
}

// DefaultAuthConfig suits login and registration endpoints.
func DefaultAuthConfig() *Config {
	return &Config{
		WindowSize:    15 * time.Minute,
		MaxAttempts:   10,
		BanDuration:   30 * time.Minute,
		CleanupPeriod: 30 * time.Minute,
	}
}

// StrictConfig suits code-verification endpoints, which sit in front of the
// per-lock attempt ceiling and should trip well before it does.
func StrictConfig() *Config {
	return &Config{
		WindowSize:    10 * time.Minute,
		MaxAttempts:   5,
		BanDuration:   time.Hour,
		CleanupPeriod: 20 * time.Minute,
	}
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
	Banned     bool
}

type window struct {
	count     int
	startedAt time.Time
	bannedAt  *time.Time
}

// Limiter is an in-memory fixed-window rate limiter with a ban tier for
// identifiers that blow through the window.
type Limiter struct {
	config  *Config
	windows map[string]*window
	mu      sync.Mutex
	stopCh  chan struct{}
}

// New creates a limiter and starts its cleanup goroutine.
func New(config *Config) *Limiter {
	l := &Limiter{
		config:  config,
		windows: make(map[string]*window),
		stopCh:  make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow records one attempt for the identifier and decides whether it may
// proceed.
func (l *Limiter) Allow(identifier string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.windows[identifier]
	if !ok || (w.bannedAt == nil && now.Sub(w.startedAt) > l.config.WindowSize) {
		l.windows[identifier] = &window{count: 1, startedAt: now}
		return Decision{
			Allowed:   true,
			Remaining: l.config.MaxAttempts - 1,
			ResetTime: now.Add(l.config.WindowSize),
		}
	}

	if w.bannedAt != nil {
		banEnds := w.bannedAt.Add(l.config.BanDuration)
		if now.Before(banEnds) {
			return Decision{
				ResetTime:  banEnds,
				RetryAfter: banEnds.Sub(now),
				Banned:     true,
			}
		}
		// Ban served; start a fresh window.
		l.windows[identifier] = &window{count: 1, startedAt: now}
		return Decision{
			Allowed:   true,
			Remaining: l.config.MaxAttempts - 1,
			ResetTime: now.Add(l.config.WindowSize),
		}
	}

	w.count++
	if w.count > l.config.MaxAttempts {
		w.bannedAt = &now
		return Decision{
			ResetTime:  now.Add(l.config.BanDuration),
			RetryAfter: l.config.BanDuration,
			Banned:     true,
		}
	}

	return Decision{
		Allowed:   true,
		Remaining: l.config.MaxAttempts - w.count,
		ResetTime: w.startedAt.Add(l.config.WindowSize),
	}
}

// Forgive clears the identifier's window, typically after a successful
// authentication.
func (l *Limiter) Forgive(identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, identifier)
}

// Close stops the cleanup goroutine.
func (l *Limiter) Close() {
	close(l.stopCh)
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.config.CleanupPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stopCh:
			return
		}
	}
}

func (l *Limiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for identifier, w := range l.windows {
		windowExpired := w.bannedAt == nil && now.Sub(w.startedAt) > l.config.WindowSize
		banExpired := w.bannedAt != nil && now.Sub(*w.bannedAt) > l.config.BanDuration
		if windowExpired || banExpired {
			delete(l.windows, identifier)
		}
	}
}

// ClientIP extracts the originating client IP, honoring proxy headers.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
