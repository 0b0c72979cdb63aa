package sfclient

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/sfconnect/pkg/force"
)

// Connection is an authenticated session handle. *force.Connection is the
// production implementation.
type Connection interface {
	InstanceURL() string
	AccessToken() string

	Describe(ctx context.Context, objectClass string) (force.DescribeResult, error)
	DescribeGlobal(ctx context.Context) (*force.GlobalDescribe, error)
	Query(ctx context.Context, soql string) (*force.QueryResult, error)
	QueryMore(ctx context.Context, nextRecordsURL string) (*force.QueryResult, error)
	Search(ctx context.Context, sosl string) (*force.SearchResult, error)

	Create(ctx context.Context, objectClass string, fields force.Record) (*force.SaveResult, error)
	Fetch(ctx context.Context, objectClass, id string, fields []string) (force.Record, error)
	Update(ctx context.Context, objectClass, id string, data force.Record) (*force.SaveResult, error)
	Upsert(ctx context.Context, objectClass string, data force.Record, indexField string) (*force.SaveResult, error)
	Destroy(ctx context.Context, objectClass, id string) (*force.SaveResult, error)

	FetchExternal(ctx context.Context, objectClass, indexField, indexValue string) (force.Record, error)
	UpdateExternal(ctx context.Context, objectClass string, data force.Record, indexField string) (*force.SaveResult, error)
	UpsertExternal(ctx context.Context, objectClass, indexField, indexValue string, data force.Record) (*force.SaveResult, error)
	DestroyExternal(ctx context.Context, objectClass, indexField, indexValue string) (*force.SaveResult, error)

	CreateAttachment(ctx context.Context, parentID, name, content, contentType string) (*force.SaveResult, error)
	AttachFile(ctx context.Context, parentID, filename, contentType string) (*force.SaveResult, error)
	AttachBuffer(ctx context.Context, parentID, name string, content []byte, contentType string) (*force.SaveResult, error)
	FetchBlobField(ctx context.Context, objectClass, id, field string) ([]byte, error)
}

// Dialer establishes sessions against a login endpoint.
type Dialer interface {
	// Login runs the username-password flow. password already carries any
	// security token.
	Login(ctx context.Context, ep Endpoint, username, password string) (Connection, error)

	// ExchangeAssertion trades a signed bearer assertion for a session.
	ExchangeAssertion(ctx context.Context, ep Endpoint, assertion string) (Connection, error)
}

// Endpoint identifies a login host and the connected app used against it.
type Endpoint struct {
	LoginHost    string
	Sandbox      bool
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Host returns the effective login host. Sandboxes on the default host are
// redirected to SandboxLoginHost; custom domains are kept as is.
func (e Endpoint) Host() string {
	host := e.LoginHost
	if host == "" {
		host = DefaultLoginHost
	}
	if e.Sandbox && host == DefaultLoginHost {
		host = SandboxLoginHost
	}
	return host
}

// LoginURL returns the base URL of the login host.
func (e Endpoint) LoginURL() string { return force.HostURL(e.Host()) }

// TokenURL returns the OAuth2 token endpoint.
func (e Endpoint) TokenURL() string { return e.LoginURL() + force.TokenPath }

// Audience returns the "aud" a bearer assertion must carry.
func (e Endpoint) Audience() string {
	if e.Sandbox {
		return "https://" + SandboxLoginHost
	}
	return "https://" + DefaultLoginHost
}

type restDialer struct {
	httpClient *http.Client
	apiVersion string
}

// NewRESTDialer returns the Dialer that talks to the Salesforce token
// endpoint and hands out REST connections.
func NewRESTDialer(httpClient *http.Client, apiVersion string) Dialer {
	return &restDialer{httpClient: httpClient, apiVersion: apiVersion}
}

func (d *restDialer) connector(ep Endpoint) *force.Connector {
	return &force.Connector{
		LoginURL:     ep.LoginURL(),
		ClientID:     ep.ClientID,
		ClientSecret: ep.ClientSecret,
		RedirectURI:  ep.RedirectURI,
		APIVersion:   d.apiVersion,
		HTTPClient:   d.httpClient,
	}
}

func (d *restDialer) Login(ctx context.Context, ep Endpoint, username, password string) (Connection, error) {
	conn, err := d.connector(ep).Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (d *restDialer) ExchangeAssertion(ctx context.Context, ep Endpoint, assertion string) (Connection, error) {
	conn, err := d.connector(ep).ExchangeAssertion(ctx, assertion)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
