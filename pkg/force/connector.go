package force

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	// DefaultAPIVersion is the REST API version used when none is configured.
	DefaultAPIVersion = "v59.0"

	// GrantTypeJWTBearer is the RFC 7523 assertion grant.
	GrantTypeJWTBearer = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	// TokenPath is the token endpoint path on every login host.
	TokenPath = "/services/oauth2/token"
)

// Connector authenticates against a Salesforce login host on behalf of one
// connected app.
type Connector struct {
	// LoginURL is the base URL of the login host, e.g. https://login.salesforce.com
	LoginURL string

	ClientID     string
	ClientSecret string
	RedirectURI  string

	// APIVersion is the REST version connections use; defaults to DefaultAPIVersion
	APIVersion string

	HTTPClient *http.Client
}

// NewConnector creates a connector for host, which may be a bare host name
// or a full URL.
func NewConnector(host, clientID, clientSecret string) *Connector {
	return &Connector{
		LoginURL:     HostURL(host),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// HostURL normalizes a login host into a base URL. Bare host names are
// assumed to be HTTPS.
func HostURL(host string) string {
	host = strings.TrimSuffix(strings.TrimSpace(host), "/")
	if strings.Contains(host, "://") {
		return host
	}
	return "https://" + host
}

// TokenURL returns the token endpoint of the login host.
func (c *Connector) TokenURL() string {
	return strings.TrimSuffix(c.LoginURL, "/") + TokenPath
}

func (c *Connector) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Connector) apiVersion() string {
	if c.APIVersion != "" {
		return c.APIVersion
	}
	return DefaultAPIVersion
}

// Login runs the OAuth2 username-password flow. For orgs that require a
// security token, password must already have it appended.
func (c *Connector) Login(ctx context.Context, username, password string) (*Connection, error) {
	cfg := &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURI,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.TokenURL(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient())
	tok, err := cfg.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		return nil, fromRetrieveError(err)
	}

	instanceURL, _ := tok.Extra("instance_url").(string)
	if instanceURL == "" {
		return nil, &OAuth2Error{
			StatusCode:  http.StatusOK,
			Code:        ErrorCodeMissingInstanceURL,
			Description: "token response has no instance_url",
		}
	}

	return NewConnection(instanceURL, tok, c.apiVersion(), c.httpClient()), nil
}

// ExchangeAssertion trades a signed JWT bearer assertion for a session.
func (c *Connector) ExchangeAssertion(ctx context.Context, assertion string) (*Connection, error) {
	data := url.Values{
		"grant_type": {GrantTypeJWTBearer},
		"assertion":  {assertion},
	}

	tokenResp, err := c.requestToken(ctx, data)
	if err != nil {
		return nil, err
	}
	if tokenResp.InstanceURL == "" {
		return nil, &OAuth2Error{
			StatusCode:  http.StatusOK,
			Code:        ErrorCodeMissingInstanceURL,
			Description: "token response has no instance_url",
		}
	}

	tok := &oauth2.Token{
		AccessToken: tokenResp.AccessToken,
		TokenType:   tokenResp.TokenType,
	}
	return NewConnection(tokenResp.InstanceURL, tok, c.apiVersion(), c.httpClient()), nil
}

func (c *Connector) requestToken(ctx context.Context, data url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.TokenURL(),
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		oauthErr := &OAuth2Error{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(bodyBytes, oauthErr); err != nil {
			return nil, ErrNoResponse
		}
		return nil, oauthErr
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(bodyBytes, &tokenResp); err != nil {
		return nil, ErrNoResponse
	}
	return &tokenResp, nil
}
