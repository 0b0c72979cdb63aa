package sfclient

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/aussiebroadwan/sfconnect/pkg/cryptox"
	"github.com/aussiebroadwan/sfconnect/pkg/jwtx"
)

// OAuth2Client describes an explicit connected app for the OAuth2 flow.
type OAuth2Client struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Credentials are the per-call authentication inputs. Zero fields fall back
// to the client's Config.
type Credentials struct {
	Username      string
	Password      string
	SecurityToken string

	ClientID     string
	ClientSecret string

	// PrivateKey and ActAsUsername drive the bearer flow.
	PrivateKey    []byte
	ActAsUsername string

	LoginHost string
	IsSandbox bool

	UseBearerAssertion bool
	OAuth2             *OAuth2Client
}

// Strategy is the authentication flow chosen for a call.
type Strategy int

const (
	StrategyPassword Strategy = iota
	StrategyOAuth2
	StrategyBearerAssertion
)

func (s Strategy) String() string {
	switch s {
	case StrategyBearerAssertion:
		return "bearer_assertion"
	case StrategyOAuth2:
		return "oauth2"
	default:
		return "password"
	}
}

// Strategy reports which flow these credentials select. The first match
// wins: bearer assertion, then OAuth2 client, then password.
func (c Credentials) Strategy() Strategy {
	switch {
	case c.UseBearerAssertion:
		return StrategyBearerAssertion
	case c.OAuth2 != nil:
		return StrategyOAuth2
	default:
		return StrategyPassword
	}
}

// Authenticate returns a session for creds, or for the configured defaults
// when creds is nil. claims, when non-nil, supply the user the bearer flow
// acts as.
func (c *Client) Authenticate(ctx context.Context, creds *Credentials, claims ClaimSet) (Connection, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	merged := mergeCredentials(c.cfg.defaults(), creds)

	switch strategy := merged.Strategy(); strategy {
	case StrategyBearerAssertion:
		return c.bearerLogin(ctx, merged, claims)

	case StrategyOAuth2:
		if merged.OAuth2.ClientSecret == "" {
			return nil, invalidError("oauth2.clientSecret")
		}
		clientID := merged.OAuth2.ClientID
		if clientID == "" {
			clientID = merged.ClientID
		}
		ep := Endpoint{
			LoginHost:    merged.LoginHost,
			Sandbox:      merged.IsSandbox,
			ClientID:     clientID,
			ClientSecret: merged.OAuth2.ClientSecret,
			RedirectURI:  merged.OAuth2.RedirectURI,
		}
		return c.cachedLogin(ctx, strategy, ep, merged)

	default:
		if merged.Username == "" {
			return nil, invalidError("username")
		}
		if merged.Password == "" {
			return nil, invalidError("password")
		}
		ep := Endpoint{
			LoginHost:    merged.LoginHost,
			Sandbox:      merged.IsSandbox,
			ClientID:     merged.ClientID,
			ClientSecret: merged.ClientSecret,
		}
		return c.cachedLogin(ctx, strategy, ep, merged)
	}
}

// bearerLogin signs and exchanges a fresh assertion. Its sessions are never
// cached.
func (c *Client) bearerLogin(ctx context.Context, creds Credentials, claims ClaimSet) (Connection, error) {
	if creds.ClientID == "" {
		return nil, invalidError("clientId")
	}
	if len(creds.PrivateKey) == 0 {
		return nil, invalidError("privateKey")
	}

	actAs := creds.ActAsUsername
	if claims != nil {
		resolved, err := claims.Resolve(c.cfg.ClaimType)
		if err != nil {
			return nil, err
		}
		actAs = resolved
	}
	if actAs == "" {
		return nil, invalidError("actAsUsername")
	}

	ep := Endpoint{
		LoginHost: creds.LoginHost,
		Sandbox:   creds.IsSandbox,
		ClientID:  creds.ClientID,
	}

	assertion, err := jwtx.SignAssertion(creds.PrivateKey, jwtx.AssertionOptions{
		Issuer:   creds.ClientID,
		Subject:  actAs,
		Audience: ep.Audience(),
	})
	if err != nil {
		return nil, fmt.Errorf("sign assertion: %w", err)
	}

	conn, err := c.dialer.ExchangeAssertion(ctx, ep, assertion)
	c.metrics.ObserveLogin(StrategyBearerAssertion.String(), err)
	if err != nil {
		c.logger.WarnContext(ctx, "authentication failed",
			"strategy", StrategyBearerAssertion.String(),
			"username", actAs,
			"error", err,
		)
		return nil, err
	}

	c.logger.InfoContext(ctx, "authenticated",
		"strategy", StrategyBearerAssertion.String(),
		"username", actAs,
	)
	return conn, nil
}

// cachedLogin serves flows backed by the session cache.
func (c *Client) cachedLogin(ctx context.Context, strategy Strategy, ep Endpoint, creds Credentials) (Connection, error) {
	secret, err := cryptox.SecretDigest(c.digestKey, creds.Password)
	if err != nil {
		return nil, err
	}

	if conn, ok := c.lookup(creds.Username, secret); ok {
		c.metrics.ObserveCacheLookup(true)
		c.logger.DebugContext(ctx, "session cache hit", "username", creds.Username)
		return conn, nil
	}
	c.metrics.ObserveCacheLookup(false)
	c.logger.DebugContext(ctx, "session cache miss", "username", creds.Username)

	if !c.cfg.CoalesceLogins {
		return c.login(ctx, strategy, ep, creds, secret)
	}

	// The shared login outlives any one caller; each waiter still honours
	// its own context.
	key := creds.Username + "\x00" + hex.EncodeToString(secret)
	ch := c.logins.DoChan(key, func() (any, error) {
		return c.login(context.WithoutCancel(ctx), strategy, ep, creds, secret)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Connection), nil
	}
}

// login performs the remote login and caches the session on success.
// Failures are returned unchanged and leave the cache alone.
func (c *Client) login(ctx context.Context, strategy Strategy, ep Endpoint, creds Credentials, secret []byte) (Connection, error) {
	conn, err := c.dialer.Login(ctx, ep, creds.Username, creds.Password+creds.SecurityToken)
	c.metrics.ObserveLogin(strategy.String(), err)
	if err != nil {
		c.logger.WarnContext(ctx, "authentication failed",
			"strategy", strategy.String(),
			"username", creds.Username,
			"error", err,
		)
		return nil, err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}
	c.store(token, sessionEntry{
		username: creds.Username,
		secret:   secret,
		conn:     conn,
	})

	c.logger.InfoContext(ctx, "authenticated",
		"strategy", strategy.String(),
		"username", creds.Username,
		"login_host", ep.Host(),
	)
	return conn, nil
}
