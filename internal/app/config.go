package app

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/sfconnect/pkg/httpx"
	"github.com/aussiebroadwan/sfconnect/pkg/sfclient"
)

type Config struct {
	Username       string                // Required: org user to log in as
	Password       string                // Required: password for Username
	SecurityToken  string                // Optional: appended to Password on login
	ClientID       string                // Required: connected app consumer key
	ClientSecret   string                // Required: connected app consumer secret
	LoginHost      string                // Optional: login host or URL (default: login.salesforce.com)
	Sandbox        bool                  // Optional: use the sandbox login host (default: false)
	SessionTimeout time.Duration         // Optional: cached session lifetime (default: 900s)
	APIVersion     string                // Optional: REST API version, e.g. v59.0
	PrivateKeyFile string                // Optional: PEM RSA key for the bearer assertion flow
	ClaimType      string                // Optional: federation claim naming the user
	CoalesceLogins bool                  // Optional: share concurrent logins (default: false)
	InvokeTimeout  time.Duration         // Deadline for a single invocation (default: 2m)
	RateLimit      httpx.RateLimitConfig // Outgoing request limit, see RATELIMIT_SF_* (default: 25/s)
	Env            string                // Environment (dev, staging, prod) (default: dev)
	LogLevel       string                // Log level (debug, info, warn, error) (default: info)
	LogFormat      string                // Log format (json, text) (default: json)

	// Not read from the environment.
	Output     io.Writer
	HTTPClient *http.Client
}

func LoadConfig() Config {
	return Config{
		Username:       os.Getenv("SF_USERNAME"),
		Password:       os.Getenv("SF_PASSWORD"),
		SecurityToken:  os.Getenv("SF_SECURITY_TOKEN"),
		ClientID:       os.Getenv("SF_CLIENT_ID"),
		ClientSecret:   os.Getenv("SF_CLIENT_SECRET"),
		LoginHost:      os.Getenv("SF_LOGIN_HOST"), // Empty falls back to the client default
		Sandbox:        getEnvBoolOrDefault("SF_SANDBOX", false),
		SessionTimeout: getEnvDurationOrDefault("SF_SESSION_TIMEOUT", sfclient.DefaultTimeout),
		APIVersion:     getEnvOrDefault("SF_API_VERSION", sfclient.DefaultAPIVersion),
		PrivateKeyFile: os.Getenv("SF_PRIVATE_KEY_FILE"),
		ClaimType:      getEnvOrDefault("SF_CLAIM_TYPE", sfclient.DefaultClaimType),
		CoalesceLogins: getEnvBoolOrDefault("SF_COALESCE_LOGINS", false),
		InvokeTimeout:  getEnvDurationOrDefault("SF_INVOKE_TIMEOUT", 2*time.Minute),
		RateLimit:      httpx.ParseRateLimitFromEnv("SF", httpx.DefaultAPILimit),
		Env:            getEnvOrDefault("ENV", "dev"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:      getEnvOrDefault("LOG_FORMAT", "json"),
	}
}

// ClientConfig maps the environment onto a client configuration. The
// private key file, when set, is read here.
func (cfg Config) ClientConfig() (sfclient.Config, error) {
	out := sfclient.Config{
		Username:       cfg.Username,
		Password:       cfg.Password,
		Credential:     cfg.SecurityToken,
		ClientID:       cfg.ClientID,
		ClientSecret:   cfg.ClientSecret,
		LoginHost:      cfg.LoginHost,
		IsSandbox:      cfg.Sandbox,
		Timeout:        cfg.SessionTimeout,
		APIVersion:     cfg.APIVersion,
		ClaimType:      cfg.ClaimType,
		CoalesceLogins: cfg.CoalesceLogins,
		HTTPClient:     cfg.HTTPClient,
		RateLimit:      cfg.RateLimit,
		// One-shot process; nothing lives long enough to need sweeping.
		SweepInterval: -1,
	}

	if cfg.PrivateKeyFile != "" {
		pem, err := os.ReadFile(cfg.PrivateKeyFile)
		if err != nil {
			return sfclient.Config{}, fmt.Errorf("read private key: %w", err)
		}
		out.PrivateKey = pem
	}

	return out, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "15m", "900s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds, matching the session timeout's usual unit
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
