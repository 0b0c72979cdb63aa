package force

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// Connection is an authenticated session bound to one Salesforce instance.
type Connection struct {
	instanceURL string
	version     string
	token       *oauth2.Token
	httpClient  *http.Client
}

// NewConnection wraps an access token issued for instanceURL.
func NewConnection(instanceURL string, token *oauth2.Token, version string, client *http.Client) *Connection {
	if version == "" {
		version = DefaultAPIVersion
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Connection{
		instanceURL: strings.TrimSuffix(instanceURL, "/"),
		version:     version,
		token:       token,
		httpClient:  client,
	}
}

// InstanceURL returns the base URL of the org's instance.
func (c *Connection) InstanceURL() string { return c.instanceURL }

// APIVersion returns the REST version, e.g. "v59.0".
func (c *Connection) APIVersion() string { return c.version }

// AccessToken returns the session ID.
func (c *Connection) AccessToken() string { return c.token.AccessToken }

// SetAuthHeader sets the Authorization header of req to this session.
func (c *Connection) SetAuthHeader(req *http.Request) { c.token.SetAuthHeader(req) }

// ServiceURL returns the versioned REST root, e.g.
// https://na1.salesforce.com/services/data/v59.0
func (c *Connection) ServiceURL() string {
	return c.instanceURL + "/services/data/" + c.version
}

// url resolves path against the REST root. Paths starting with /services are
// taken as instance-absolute, which is how Salesforce hands out nextRecordsUrl
// and blob links.
func (c *Connection) url(path string, query url.Values) string {
	var u string
	if strings.HasPrefix(path, "/services/") {
		u = c.instanceURL + path
	} else {
		u = c.ServiceURL() + "/" + strings.TrimPrefix(path, "/")
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// doRequest performs an authenticated request. A non-nil body is sent as JSON.
func (c *Connection) doRequest(
	ctx context.Context,
	method, path string,
	query url.Values,
	body any,
) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// decodeJSON decodes a successful response into target. Any non-2xx status
// yields an *APIError. An empty body leaves target untouched.
func decodeJSON(resp *http.Response, target any) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(resp.StatusCode, bodyBytes)
	}

	if target == nil || len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// readBody returns the raw body of a successful response.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseAPIError(resp.StatusCode, bodyBytes)
	}
	return bodyBytes, nil
}

// getJSON is the common GET-and-decode path.
func (c *Connection) getJSON(ctx context.Context, path string, query url.Values, target any) error {
	resp, err := c.doRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target)
}

// sobjectPath joins escaped path segments under sobjects/.
func sobjectPath(segments ...string) string {
	escaped := make([]string, 0, len(segments)+1)
	escaped = append(escaped, "sobjects")
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return strings.Join(escaped, "/")
}
