package sfclient

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/sfconnect/pkg/force"
	"github.com/aussiebroadwan/sfconnect/pkg/slogx"
)

// fakeConn implements the handful of Connection methods the tests use.
// Anything else hits the nil embedded interface and panics.
type fakeConn struct {
	Connection

	id int

	mu    sync.Mutex
	calls []string

	searchErr error
}

func (f *fakeConn) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeConn) InstanceURL() string { return "https://na1.my.salesforce.com" }
func (f *fakeConn) AccessToken() string { return fmt.Sprintf("session-%d", f.id) }

func (f *fakeConn) DescribeGlobal(ctx context.Context) (*force.GlobalDescribe, error) {
	f.record("describeGlobal")
	return &force.GlobalDescribe{Encoding: "UTF-8"}, nil
}

func (f *fakeConn) Query(ctx context.Context, soql string) (*force.QueryResult, error) {
	f.record("query:" + soql)
	return &force.QueryResult{
		Done:      true,
		TotalSize: 1,
		Records:   []force.Record{{"Id": "001", "soql": soql}},
	}, nil
}

func (f *fakeConn) QueryMore(ctx context.Context, nextRecordsURL string) (*force.QueryResult, error) {
	f.record("queryMore:" + nextRecordsURL)
	return &force.QueryResult{
		Done:      true,
		TotalSize: 3,
		Records:   []force.Record{{"Id": "003"}},
	}, nil
}

func (f *fakeConn) Search(ctx context.Context, sosl string) (*force.SearchResult, error) {
	f.record("search:" + sosl)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return &force.SearchResult{}, nil
}

func (f *fakeConn) Create(ctx context.Context, objectClass string, fields force.Record) (*force.SaveResult, error) {
	f.record("create:" + objectClass)
	return &force.SaveResult{ID: "001NEW", Success: true, Created: true}, nil
}

func (f *fakeConn) Fetch(ctx context.Context, objectClass, id string, fields []string) (force.Record, error) {
	f.record(fmt.Sprintf("fetch:%s/%s%v", objectClass, id, fields))
	return force.Record{"Id": id, "fields": fields}, nil
}

func (f *fakeConn) UpsertExternal(ctx context.Context, objectClass, indexField, indexValue string, data force.Record) (*force.SaveResult, error) {
	f.record(fmt.Sprintf("upsertExternal:%s/%s/%s", objectClass, indexField, indexValue))
	return &force.SaveResult{Success: true}, nil
}

func (f *fakeConn) AttachBuffer(ctx context.Context, parentID, name string, content []byte, contentType string) (*force.SaveResult, error) {
	f.record(fmt.Sprintf("attachBuffer:%s/%s/%s", parentID, name, content))
	return &force.SaveResult{ID: "00P", Success: true}, nil
}

func (f *fakeConn) FetchBlobField(ctx context.Context, objectClass, id, field string) ([]byte, error) {
	f.record("blob:" + field)
	return []byte("blob"), nil
}

func (f *fakeConn) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type loginCall struct {
	ep       Endpoint
	username string
	password string
}

type assertionCall struct {
	ep        Endpoint
	assertion string
}

// fakeDialer counts session establishments and hands out a new fakeConn
// for each one.
type fakeDialer struct {
	mu         sync.Mutex
	logins     []loginCall
	assertions []assertionCall
	conns      []*fakeConn
	err        error

	// entered, when set, receives once per Login before gate is awaited.
	entered chan struct{}
	gate    chan struct{}
}

func (d *fakeDialer) Login(ctx context.Context, ep Endpoint, username, password string) (Connection, error) {
	if d.entered != nil {
		d.entered <- struct{}{}
	}
	if d.gate != nil {
		<-d.gate
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.logins = append(d.logins, loginCall{ep: ep, username: username, password: password})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.err != nil {
		return nil, d.err
	}
	conn := &fakeConn{id: len(d.conns) + 1}
	d.conns = append(d.conns, conn)
	return conn, nil
}

func (d *fakeDialer) ExchangeAssertion(ctx context.Context, ep Endpoint, assertion string) (Connection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.assertions = append(d.assertions, assertionCall{ep: ep, assertion: assertion})
	if d.err != nil {
		return nil, d.err
	}
	conn := &fakeConn{id: len(d.conns) + 1}
	d.conns = append(d.conns, conn)
	return conn, nil
}

func (d *fakeDialer) loginCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.logins)
}

func (d *fakeDialer) lastLogin() loginCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.logins[len(d.logins)-1]
}

func (d *fakeDialer) assertionCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.assertions)
}

func (d *fakeDialer) setErr(err error) {
	d.mu.Lock()
	d.err = err
	d.mu.Unlock()
}

func testConfig(d Dialer) Config {
	return Config{
		Username:      "u",
		Password:      "p",
		ClientID:      "c",
		ClientSecret:  "s",
		LoginHost:     "h",
		Dialer:        d,
		Logger:        slogx.Discard(),
		SweepInterval: -1,
	}
}

// newTestClient builds a client over a fakeDialer. mutate may adjust the
// config before New.
func newTestClient(t *testing.T, mutate func(*Config)) (*Client, *fakeDialer) {
	t.Helper()

	d := &fakeDialer{}
	cfg := testConfig(d)
	if mutate != nil {
		mutate(&cfg)
	}

	c, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, d
}
