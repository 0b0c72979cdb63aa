package force

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// Error codes returned by the token endpoint and the REST API.
const (
	ErrorCodeInvalidGrant       = "invalid_grant"
	ErrorCodeInvalidClient      = "invalid_client"
	ErrorCodeInvalidClientID    = "invalid_client_id"
	ErrorCodeUnsupportedGrant   = "unsupported_grant_type"
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeServerError        = "server_error"
	ErrorCodeInvalidSessionID   = "INVALID_SESSION_ID"
	ErrorCodeNotFound           = "NOT_FOUND"
	ErrorCodeMissingInstanceURL = "missing_instance_url"
)

var (
	// ErrNoResponse is returned when the token endpoint body is not JSON.
	ErrNoResponse = errors.New("force: no response from oauth endpoint")

	// ErrMissingExternalID is returned when a record lacks the external ID
	// field named for an upsert.
	ErrMissingExternalID = errors.New("force: record has no value for external id field")
)

// OAuth2Error represents an error response from the token endpoint.
type OAuth2Error struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int `json:"-"`

	// Code is the OAuth2 error code (e.g., "invalid_grant")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *OAuth2Error) Error() string {
	return fmt.Sprintf("unable to authenticate: %s (%s)", e.Code, e.Description)
}

// APIErrorItem is one entry of the error array the REST API returns.
type APIErrorItem struct {
	Message   string   `json:"message"`
	ErrorCode string   `json:"errorCode"`
	Fields    []string `json:"fields,omitempty"`
}

// APIError is returned for any non-2xx REST response.
type APIError struct {
	StatusCode int
	Errors     []APIErrorItem
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("force: HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	}

	parts := make([]string, 0, len(e.Errors))
	for _, item := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", item.ErrorCode, item.Message))
	}
	return fmt.Sprintf("force: HTTP %d: %s", e.StatusCode, strings.Join(parts, "; "))
}

// HasCode reports whether any error item carries code.
func (e *APIError) HasCode(code string) bool {
	for _, item := range e.Errors {
		if item.ErrorCode == code {
			return true
		}
	}
	return false
}

// IsInvalidSession reports whether err means the session is no longer valid
// and a fresh login is required.
func IsInvalidSession(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.HasCode(ErrorCodeInvalidSessionID)
	}
	return false
}

// parseAPIError turns a failed REST response body into an *APIError.
// Salesforce normally returns an array of error items, but some endpoints
// answer with a single object or with OAuth-style fields.
func parseAPIError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode}

	var items []APIErrorItem
	if err := json.Unmarshal(body, &items); err == nil {
		apiErr.Errors = items
		return apiErr
	}

	var single APIErrorItem
	if err := json.Unmarshal(body, &single); err == nil && single.ErrorCode != "" {
		apiErr.Errors = []APIErrorItem{single}
		return apiErr
	}

	var oauthErr OAuth2Error
	if err := json.Unmarshal(body, &oauthErr); err == nil && oauthErr.Code != "" {
		apiErr.Errors = []APIErrorItem{{ErrorCode: oauthErr.Code, Message: oauthErr.Description}}
	}
	return apiErr
}

// fromRetrieveError converts the x/oauth2 token error into *OAuth2Error so
// both login flows report failures the same way.
func fromRetrieveError(err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return err
	}

	out := &OAuth2Error{
		Code:        re.ErrorCode,
		Description: re.ErrorDescription,
	}
	if re.Response != nil {
		out.StatusCode = re.Response.StatusCode
	}
	if out.Code == "" {
		out.Code = ErrorCodeServerError
		out.Description = strings.TrimSpace(string(re.Body))
	}
	return out
}
