package sfclient

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/aussiebroadwan/sfconnect/pkg/cryptox"
	"github.com/aussiebroadwan/sfconnect/pkg/httpx"
	"github.com/aussiebroadwan/sfconnect/pkg/metrics"
	"github.com/aussiebroadwan/sfconnect/pkg/ttlcache"
)

// sessionEntry is what the session cache holds under an auth-token. The
// entry owns conn; nothing else keeps it once the entry is gone.
type sessionEntry struct {
	username string
	secret   []byte // keyed digest of the password the session was opened with
	conn     Connection
}

// Client authenticates, caches sessions and dispatches operations. It is
// safe for concurrent use.
type Client struct {
	cfg     Config
	dialer  Dialer
	logger  *slog.Logger
	metrics *metrics.Metrics

	// digestKey keys the secret digests kept in the session cache.
	digestKey []byte

	// mu makes each lookup pair and each store pair atomic across the two
	// caches. Network calls happen outside it.
	mu       sync.Mutex
	sessions *ttlcache.Cache[string, sessionEntry]
	users    *ttlcache.Cache[string, string]

	logins singleflight.Group
	closed atomic.Bool
}

// New validates cfg and builds a client. Configuration problems are
// reported as *ConfigError.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	m, err := metrics.New(cfg.Registerer)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	key, err := cryptox.NewDigestKey()
	if err != nil {
		return nil, err
	}

	dialer := cfg.Dialer
	if dialer == nil {
		hc := cfg.HTTPClient
		if cfg.RateLimit.Enabled() {
			hc = httpx.WithRateLimit(hc, cfg.RateLimit)
		}
		dialer = NewRESTDialer(hc, cfg.APIVersion)
	}

	logger := cfg.Logger.With("component", "sfclient")

	c := &Client{
		cfg:       cfg,
		dialer:    dialer,
		logger:    logger,
		metrics:   m,
		digestKey: key,
	}
	c.sessions = ttlcache.New(cfg.Timeout,
		ttlcache.WithOnEvict[string, sessionEntry](func(_ string, e sessionEntry) {
			logger.Debug("session evicted", "username", e.username)
		}),
	)
	c.users = ttlcache.New[string, string](cfg.Timeout)

	if cfg.SweepInterval > 0 {
		c.sessions.StartSweeper(cfg.SweepInterval)
		c.users.StartSweeper(cfg.SweepInterval)
	}

	return c, nil
}

// Config returns a copy of the effective configuration.
func (c *Client) Config() Config {
	cfg := c.cfg
	cfg.PrivateKey = append([]byte(nil), c.cfg.PrivateKey...)
	return cfg
}

// Close stops the background sweepers. Calls made after Close fail with
// ErrClosed. Close is idempotent.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.sessions.Stop()
	c.users.Stop()
	return nil
}

// lookup returns the cached session for username if both cache entries are
// live and the secret matches. A dangling index entry is a plain miss.
func (c *Client) lookup(username string, secret []byte) (Connection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	token, ok := c.users.Get(username)
	if !ok {
		return nil, false
	}
	entry, ok := c.sessions.Get(token)
	if !ok {
		return nil, false
	}
	if !cryptox.DigestEqual(entry.secret, secret) {
		return nil, false
	}
	return entry.conn, true
}

// store registers conn under a fresh auth-token and points username at it.
// The session previously indexed for username, if any, is released.
func (c *Client) store(token string, entry sessionEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.users.Get(entry.username); ok && prev != token {
		c.sessions.Delete(prev)
	}
	c.sessions.Set(token, entry)
	c.users.Set(entry.username, token)
}

// Invalidate forgets the cached session of username so the next call logs
// in again. Use it after the remote side reports the session as invalid.
func (c *Client) Invalidate(username string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	token, ok := c.users.Get(username)
	c.users.Delete(username)
	if ok {
		c.sessions.Delete(token)
	}
}

// SessionCount reports how many sessions the cache currently holds,
// including expired ones not yet swept.
func (c *Client) SessionCount() int {
	return c.sessions.Len()
}
