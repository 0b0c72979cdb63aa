package sfclient

import (
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aussiebroadwan/sfconnect/pkg/force"
	"github.com/aussiebroadwan/sfconnect/pkg/httpx"
)

const (
	DefaultLoginHost     = "login.salesforce.com"
	SandboxLoginHost     = "test.salesforce.com"
	DefaultTimeout       = 900 * time.Second
	DefaultSweepInterval = time.Minute
	DefaultAPIVersion    = force.DefaultAPIVersion
	DefaultClaimType     = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress"
)

var apiVersionPattern = regexp.MustCompile(`^v\d+\.\d+$`)

// Config is the client-wide configuration. It is copied by New and never
// modified afterwards; per-call credentials are merged into a copy.
type Config struct {
	// Credential is the legacy security token appended to Password on login.
	Credential string

	Username     string
	Password     string
	ClientID     string
	ClientSecret string

	// LoginHost is a bare host name or an absolute URL. Defaults to
	// DefaultLoginHost, or SandboxLoginHost when IsSandbox is set.
	LoginHost string

	// Timeout is the absolute lifetime of a cached session. Zero means
	// DefaultTimeout.
	Timeout time.Duration

	IsSandbox bool

	// PrivateKey is the PEM-encoded RSA key used to sign bearer assertions.
	PrivateKey []byte

	APIVersion string

	// ClaimType selects which federation claim names the user for the
	// bearer flow. Defaults to DefaultClaimType.
	ClaimType string

	// CoalesceLogins collapses concurrent logins for the same username and
	// password into a single remote call.
	CoalesceLogins bool

	// SweepInterval controls how often expired sessions are purged in the
	// background. Zero means DefaultSweepInterval; negative disables it.
	SweepInterval time.Duration

	HTTPClient *http.Client
	Logger     *slog.Logger

	// RateLimit throttles outgoing requests per remote host. The zero value
	// disables throttling. Ignored when Dialer is set.
	RateLimit httpx.RateLimitConfig

	// Registerer receives the client's metrics. Nil leaves them unregistered.
	Registerer prometheus.Registerer

	// Dialer establishes sessions. Defaults to the REST API.
	Dialer Dialer
}

// Validate checks the fields New requires, in a fixed order, and reports the
// first problem found.
func (c Config) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"username", c.Username},
		{"password", c.Password},
		{"clientId", c.ClientID},
		{"clientSecret", c.ClientSecret},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ConfigError{Field: r.field, Reason: "is missing or invalid"}
		}
	}

	if c.LoginHost != "" && !validLoginHost(c.LoginHost) {
		return &ConfigError{Field: "loginHost", Reason: "must be a host name or an absolute URL"}
	}
	if c.Timeout < 0 {
		return &ConfigError{Field: "timeout", Reason: "must not be negative"}
	}
	if c.APIVersion != "" && !apiVersionPattern.MatchString(c.APIVersion) {
		return &ConfigError{Field: "apiVersion", Reason: "must look like v59.0"}
	}
	return nil
}

func validLoginHost(host string) bool {
	if strings.Contains(host, "://") {
		u, err := url.Parse(host)
		return err == nil && u.Host != "" && (u.Scheme == "https" || u.Scheme == "http")
	}
	return !strings.ContainsAny(host, "/ ?#")
}

// withDefaults returns a copy of c with every unset optional field filled.
func (c Config) withDefaults() Config {
	if c.LoginHost == "" {
		c.LoginHost = DefaultLoginHost
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.ClaimType == "" {
		c.ClaimType = DefaultClaimType
	}
	if c.SweepInterval == 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.PrivateKey != nil {
		c.PrivateKey = append([]byte(nil), c.PrivateKey...)
	}
	return c
}

// defaults derives the credentials used when a call supplies none.
func (c Config) defaults() Credentials {
	return Credentials{
		Username:      c.Username,
		Password:      c.Password,
		SecurityToken: c.Credential,
		ClientID:      c.ClientID,
		ClientSecret:  c.ClientSecret,
		PrivateKey:    c.PrivateKey,
		LoginHost:     c.LoginHost,
		IsSandbox:     c.IsSandbox,
	}
}

// mergeCredentials overlays the non-zero fields of call onto base and
// returns the result. Neither input is modified. Boolean flags can only be
// switched on by a call.
func mergeCredentials(base Credentials, call *Credentials) Credentials {
	if call == nil {
		return base
	}

	out := base
	setString(&out.Username, call.Username)
	setString(&out.Password, call.Password)
	setString(&out.SecurityToken, call.SecurityToken)
	setString(&out.ClientID, call.ClientID)
	setString(&out.ClientSecret, call.ClientSecret)
	setString(&out.ActAsUsername, call.ActAsUsername)
	setString(&out.LoginHost, call.LoginHost)
	if len(call.PrivateKey) > 0 {
		out.PrivateKey = call.PrivateKey
	}
	if call.OAuth2 != nil {
		oauth := *call.OAuth2
		out.OAuth2 = &oauth
	}
	out.IsSandbox = out.IsSandbox || call.IsSandbox
	out.UseBearerAssertion = out.UseBearerAssertion || call.UseBearerAssertion
	return out
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
