package force

// ============================================================================
// Token Types
// ============================================================================

// TokenResponse is the Salesforce OAuth2 token endpoint response. Salesforce
// does not return expires_in; a session lives until it is revoked or idles
// out on the server.
type TokenResponse struct {
	// AccessToken is the session ID used as the bearer token
	AccessToken string `json:"access_token"`

	// InstanceURL is the base URL of the org's instance
	InstanceURL string `json:"instance_url"`

	// ID is the identity URL of the authenticated user
	ID string `json:"id"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// IssuedAt is the issue time in milliseconds since the epoch, as a string
	IssuedAt string `json:"issued_at"`

	// Signature is the HMAC-SHA256 of ID and IssuedAt keyed by the client secret
	Signature string `json:"signature"`

	// Scope is the space-delimited list of granted scopes
	Scope string `json:"scope,omitempty"`
}

// ============================================================================
// Record Types
// ============================================================================

// Record is a single sObject as a free-form field map.
type Record map[string]any

// ID returns the record's Id field, if present.
func (r Record) ID() string {
	id, _ := r["Id"].(string)
	return id
}

// Without returns a copy of r with the named fields removed.
func (r Record) Without(fields ...string) Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	for _, f := range fields {
		delete(out, f)
	}
	return out
}

// SaveResult is the outcome of a create, update, upsert, or delete.
type SaveResult struct {
	ID      string         `json:"id"`
	Success bool           `json:"success"`
	Created bool           `json:"created,omitempty"`
	Errors  []APIErrorItem `json:"errors,omitempty"`
}

// QueryResult is one page of a SOQL query.
type QueryResult struct {
	Done           bool     `json:"done"`
	TotalSize      int      `json:"totalSize"`
	Records        []Record `json:"records"`
	NextRecordsURL string   `json:"nextRecordsUrl,omitempty"`
}

// SearchResult is the response to a SOSL search.
type SearchResult struct {
	SearchRecords []Record `json:"searchRecords"`
}

// ============================================================================
// Describe Types
// ============================================================================

// DescribeResult is the metadata of one sObject type, or of the whole org
// when no type was named. The payload is large and version dependent, so it
// is kept as a field map.
type DescribeResult map[string]any

// SObjectSummary is one entry of the global describe.
type SObjectSummary struct {
	Name       string            `json:"name"`
	Label      string            `json:"label"`
	KeyPrefix  string            `json:"keyPrefix"`
	Custom     bool              `json:"custom"`
	Queryable  bool              `json:"queryable"`
	Createable bool              `json:"createable"`
	Updateable bool              `json:"updateable"`
	Deletable  bool              `json:"deletable"`
	URLs       map[string]string `json:"urls"`
}

// GlobalDescribe lists every sObject type available to the session.
type GlobalDescribe struct {
	Encoding     string           `json:"encoding"`
	MaxBatchSize int              `json:"maxBatchSize"`
	SObjects     []SObjectSummary `json:"sobjects"`
}
