// Package httpx holds outbound HTTP plumbing shared by the API clients.
package httpx

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/aussiebroadwan/sfconnect/pkg/slogx"
)

// RateLimitConfig defines the rate limiting parameters.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the time window
	RequestsPerWindow int
	// Window is the time window for rate limiting
	Window time.Duration
	// Burst allows for temporary bursts above the rate limit
	Burst int
}

// Enabled reports whether the config describes a usable limit.
func (c RateLimitConfig) Enabled() bool {
	return c.RequestsPerWindow > 0 && c.Window > 0
}

// DefaultAPILimit keeps a single process well inside the org's concurrent
// API allowance.
var DefaultAPILimit = RateLimitConfig{
	RequestsPerWindow: 25,
	Window:            time.Second,
	Burst:             25,
}

// ParseRateLimitFromEnv reads rate limit configuration from environment variables.
// Environment variables follow the pattern: RATELIMIT_{prefix}_{field}
// For example: RATELIMIT_API_REQUESTS, RATELIMIT_API_WINDOW_SEC, RATELIMIT_API_BURST
func ParseRateLimitFromEnv(prefix string, defaultConfig RateLimitConfig) RateLimitConfig {
	config := defaultConfig

	// Parse requests per window
	if val := os.Getenv("RATELIMIT_" + prefix + "_REQUESTS"); val != "" {
		if requests, err := strconv.Atoi(val); err == nil && requests >= 0 {
			config.RequestsPerWindow = requests
		}
	}

	// Parse window duration in seconds
	if val := os.Getenv("RATELIMIT_" + prefix + "_WINDOW_SEC"); val != "" {
		if windowSec, err := strconv.Atoi(val); err == nil && windowSec > 0 {
			config.Window = time.Duration(windowSec) * time.Second
		}
	}

	// Parse burst size
	if val := os.Getenv("RATELIMIT_" + prefix + "_BURST"); val != "" {
		if burst, err := strconv.Atoi(val); err == nil && burst > 0 {
			config.Burst = burst
		}
	}

	return config
}

// KeyExtractor groups outgoing requests that share a limiter.
type KeyExtractor func(*http.Request) string

// HostKeyExtractor limits each remote host separately, so the login host and
// the org instance do not compete for the same budget.
func HostKeyExtractor(r *http.Request) string {
	return r.URL.Host
}

// rateLimiter manages rate limiters for different keys
type rateLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	mu       sync.Mutex
	// Cleanup old limiters periodically
	lastCleanup time.Time
}

func newRateLimiter(config RateLimitConfig) *rateLimiter {
	burst := config.Burst
	if burst <= 0 {
		burst = 1
	}
	return &rateLimiter{
		rate:        rate.Limit(float64(config.RequestsPerWindow) / config.Window.Seconds()),
		burst:       burst,
		lastCleanup: time.Now(),
	}
}

// getLimiter retrieves or creates a rate limiter for the given key
func (rl *rateLimiter) getLimiter(key string) *rate.Limiter {
	if limiter, ok := rl.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(rl.rate, rl.burst)
	actual, _ := rl.limiters.LoadOrStore(key, limiter)

	rl.maybeCleanup()

	return actual.(*rate.Limiter)
}

// maybeCleanup drops limiters whose buckets are full, i.e. idle ones.
func (rl *rateLimiter) maybeCleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if time.Since(rl.lastCleanup) < 5*time.Minute {
		return
	}
	rl.lastCleanup = time.Now()

	rl.limiters.Range(func(key, value any) bool {
		limiter := value.(*rate.Limiter)
		if limiter.Tokens() >= float64(rl.burst) {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// RateLimitedTransport delays outgoing requests that would exceed the
// configured rate. A request whose context ends while waiting fails without
// reaching the network.
type RateLimitedTransport struct {
	base   http.RoundTripper
	config RateLimitConfig
	key    KeyExtractor
	rl     *rateLimiter
}

// NewRateLimitedTransport wraps base (http.DefaultTransport when nil). A nil
// key extractor means HostKeyExtractor.
func NewRateLimitedTransport(base http.RoundTripper, config RateLimitConfig, key KeyExtractor) *RateLimitedTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if key == nil {
		key = HostKeyExtractor
	}
	return &RateLimitedTransport{
		base:   base,
		config: config,
		key:    key,
		rl:     newRateLimiter(config),
	}
}

func (t *RateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	limiter := t.rl.getLimiter(t.key(req))

	if !limiter.Allow() {
		slogx.FromContext(ctx).Debug("rate limit: delaying request",
			"host", req.URL.Host,
			"limit", t.config.RequestsPerWindow,
			"window", t.config.Window.String(),
		)
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	return t.base.RoundTrip(req)
}

// WithRateLimit returns a shallow copy of client whose transport applies
// config. The original client is left untouched.
func WithRateLimit(client *http.Client, config RateLimitConfig) *http.Client {
	if client == nil {
		client = &http.Client{}
	}
	limited := *client
	limited.Transport = NewRateLimitedTransport(client.Transport, config, HostKeyExtractor)
	return &limited
}
