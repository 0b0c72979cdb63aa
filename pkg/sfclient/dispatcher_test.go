package sfclient

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/sfconnect/pkg/force"
)

// validValues holds a plausible value for every field any schema uses.
var validValues = map[string]any{
	"objectClass":    "Account",
	"object":         map[string]any{"Name": "Acme"},
	"id":             "001A",
	"fields":         []string{"Id"},
	"data":           map[string]any{"Name": "Acme"},
	"indexField":     "External_Id__c",
	"indexValue":     "42",
	"query":          "SELECT Id FROM Account",
	"nextRecordsUrl": "/services/data/v59.0/query/01gD0000002HU6KIAW-2000",
	"parentId":       "001A",
	"name":           "note.txt",
	"content":        "hello",
	"type":           "text/plain",
	"filename":       "/tmp/note.txt",
	"field":          "Body",
}

func TestOperations_SchemasUseKnownFields(t *testing.T) {
	t.Parallel()

	for _, op := range operationTable {
		for _, f := range op.Schema {
			_, ok := validValues[f.Name]
			require.True(t, ok, "%s uses unknown field %s", op.Name, f.Name)
		}
	}
}

func TestInvoke_MissingRequiredField(t *testing.T) {
	t.Parallel()

	for _, op := range operationTable {
		for _, f := range op.Schema {
			if !f.Required {
				continue
			}
			t.Run(op.Name+"/"+f.Name, func(t *testing.T) {
				c, d := newTestClient(t, nil)

				opts := Options{}
				for _, other := range op.Schema {
					if other.Name != f.Name {
						opts[other.Name] = validValues[other.Name]
					}
				}

				_, err := c.Invoke(context.Background(), op.Name, opts)
				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
				require.Equal(t, f.Name, vErr.Field)
				require.Equal(t, "option's property '"+f.Name+"' is required", err.Error())
				require.Equal(t, 0, d.loginCount())
			})
		}
	}
}

func TestInvoke_ReportsFirstMissingField(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, nil)

	_, err := c.Invoke(context.Background(), "createAttachment", nil)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "parentId", vErr.Field)

	_, err = c.CreateObject(context.Background(), Options{"object": map[string]any{}, "objectClass": nil})
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "objectClass", vErr.Field)
}

func TestInvoke_OptionsMustBeAnObject(t *testing.T) {
	t.Parallel()

	c, d := newTestClient(t, nil)

	for _, bad := range []any{"query", 42, []string{"query"}} {
		_, err := c.Invoke(context.Background(), "queryObjects", bad)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		require.Equal(t, "options", vErr.Field)
		require.Equal(t, "'options' argument must be an object", err.Error())
	}
	require.Equal(t, 0, d.loginCount())
}

func TestInvoke_UnknownOperation(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, nil)

	_, err := c.Invoke(context.Background(), "dropDatabase", nil)
	require.ErrorIs(t, err, ErrUnknownOperation)
}

func TestInvoke_NoOptions(t *testing.T) {
	t.Parallel()

	c, d := newTestClient(t, nil)

	res, err := c.Invoke(context.Background(), "describeGlobal", nil)
	require.NoError(t, err)
	require.Equal(t, "UTF-8", res.(*force.GlobalDescribe).Encoding)

	global, err := c.DescribeGlobal(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, "UTF-8", global.Encoding)
	require.Equal(t, 1, d.loginCount())
}

func TestInvoke_ReusesSessionAcrossOperations(t *testing.T) {
	t.Parallel()

	c, d := newTestClient(t, nil)
	ctx := context.Background()

	foo, err := c.QueryObjects(ctx, Options{"query": "foo"})
	require.NoError(t, err)
	bar, err := c.Query(ctx, Options{"query": "bar"})
	require.NoError(t, err)

	require.True(t, foo.Done)
	require.Equal(t, "foo", foo.Records[0]["soql"])
	require.Equal(t, "bar", bar.Records[0]["soql"])
	require.Equal(t, 1, d.loginCount())
	require.Equal(t, []string{"query:foo", "query:bar"}, d.conns[0].Calls())
}

func TestInvoke_ArgumentMapping(t *testing.T) {
	t.Parallel()

	c, d := newTestClient(t, nil)
	ctx := context.Background()

	rec, err := c.FetchObject(ctx, Options{"objectClass": "Account", "id": "001A", "fields": "Id, Name"})
	require.NoError(t, err)
	require.Equal(t, []string{"Id", "Name"}, rec["fields"])

	_, err = c.UpsertExternalObject(ctx, Options{"objectClass": "Account", "indexField": "Ext__c", "indexValue": float64(42)})
	require.NoError(t, err)

	_, err = c.AttachBuffer(ctx, Options{"parentId": "001A", "name": "b.bin", "content": []byte("xyz"), "type": "application/octet-stream"})
	require.NoError(t, err)

	blob, err := c.FetchBlobField(ctx, Options{"objectClass": "Attachment", "id": "00P", "field": "Body"})
	require.NoError(t, err)
	require.Equal(t, []byte("blob"), blob)

	saved, err := c.Create(ctx, Options{"objectClass": "Account", "object": force.Record{"Name": "Acme"}})
	require.NoError(t, err)
	require.Equal(t, "001NEW", saved.ID)

	require.Equal(t, []string{
		"fetch:Account/001A[Id Name]",
		"upsertExternal:Account/Ext__c/42",
		"attachBuffer:001A/b.bin/xyz",
		"blob:Body",
		"create:Account",
	}, d.conns[0].Calls())
}

func TestInvoke_NumericExternalIDs(t *testing.T) {
	t.Parallel()

	c, d := newTestClient(t, nil)
	ctx := context.Background()

	for _, v := range []any{float64(1234567), float32(1234567), json.Number("98765432101"), int64(1234567), 1.5} {
		_, err := c.UpsertExternalObject(ctx, Options{"objectClass": "Account", "indexField": "Ext__c", "indexValue": v})
		require.NoError(t, err)
	}

	require.Equal(t, []string{
		"upsertExternal:Account/Ext__c/1234567",
		"upsertExternal:Account/Ext__c/1234567",
		"upsertExternal:Account/Ext__c/98765432101",
		"upsertExternal:Account/Ext__c/1234567",
		"upsertExternal:Account/Ext__c/1.5",
	}, d.conns[0].Calls())
}

func TestInvoke_QueryMore(t *testing.T) {
	t.Parallel()

	c, d := newTestClient(t, nil)
	ctx := context.Background()

	next := "/services/data/v59.0/query/01gD0000002HU6KIAW-2000"
	res, err := c.QueryMore(ctx, Options{"nextRecordsUrl": next})
	require.NoError(t, err)
	require.True(t, res.Done)
	require.Equal(t, "003", res.Records[0].ID())
	require.Equal(t, []string{"queryMore:" + next}, d.conns[0].Calls())
}

func TestInvoke_ArgumentTypeMismatch(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, nil)

	_, err := c.QueryObjects(context.Background(), Options{"query": 42})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "query", vErr.Field)

	_, err = c.UpdateObject(context.Background(), Options{"objectClass": "Account", "id": "001", "data": "not an object"})
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "data", vErr.Field)
}

func TestInvoke_RemoteErrorPassesThrough(t *testing.T) {
	t.Parallel()

	c, d := newTestClient(t, nil)
	ctx := context.Background()

	_, err := c.DescribeGlobal(ctx, nil)
	require.NoError(t, err)

	remoteErr := &force.APIError{StatusCode: 400, Errors: []force.APIErrorItem{{ErrorCode: "MALFORMED_SEARCH"}}}
	d.conns[0].searchErr = remoteErr

	_, err = c.SearchObjects(ctx, Options{"query": "FIND {"})
	require.Same(t, remoteErr, err)

	var invErr *InvocationError
	require.False(t, errors.As(err, &invErr))
}

func TestInvoke_PanicBecomesInvocationError(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, nil)

	// fakeConn does not implement Describe.
	_, err := c.Describe(context.Background(), Options{"objectClass": "Account"})
	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
	require.Equal(t, "describe", invErr.Operation)
	require.Contains(t, err.Error(), "couldn't invoke method 'describe': ")
}

func TestInvoke_PerCallCredentials(t *testing.T) {
	t.Parallel()

	c, d := newTestClient(t, nil)
	ctx := context.Background()

	_, err := c.QueryObjects(ctx, Options{
		"query":       "foo",
		"credentials": map[string]any{"username": "other", "password": "pw", "credential": "TOK"},
	})
	require.NoError(t, err)
	call := d.lastLogin()
	require.Equal(t, "other", call.username)
	require.Equal(t, "pwTOK", call.password)

	_, err = c.QueryObjects(ctx, Options{
		"query":       "foo",
		"credentials": Credentials{Username: "other", Password: "pw"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, d.loginCount())

	_, err = c.QueryObjects(ctx, Options{"query": "foo", "credentials": "nope"})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "credentials", vErr.Field)

	_, err = c.QueryObjects(ctx, Options{"query": "foo", "credentials": map[string]any{"username": 7}})
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "credentials.username", vErr.Field)
}

func TestInvoke_FederationClaims(t *testing.T) {
	t.Parallel()

	pemKey, pub := rsaKey(t)
	c, d := newTestClient(t, func(cfg *Config) { cfg.PrivateKey = pemKey })

	_, err := c.QueryObjects(context.Background(), Options{
		"query":       "foo",
		"credentials": map[string]any{"useBearerAssertion": true},
		"federation":  map[string]any{DefaultClaimType: "fed@example.com"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, d.assertionCount())
	require.Equal(t, "fed@example.com", parseBearer(t, d.assertions[0].assertion, pub, "https://login.salesforce.com").Principal)

	_, err = c.QueryObjects(context.Background(), Options{
		"query":       "foo",
		"credentials": map[string]any{"useBearerAssertion": true},
		"federation":  map[string]any{},
	})
	require.ErrorIs(t, err, ErrClaimNotFound)

	_, err = c.QueryObjects(context.Background(), Options{"query": "foo", "federation": 3})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "federation", vErr.Field)
}

func TestInvokeAsync(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, nil)

	type outcome struct {
		res any
		err error
	}
	done := make(chan outcome, 1)
	c.InvokeAsync(context.Background(), "queryObjects", Options{"query": "foo"}, func(res any, err error) {
		done <- outcome{res, err}
	})

	select {
	case got := <-done:
		require.NoError(t, got.err)
		require.True(t, got.res.(*force.QueryResult).Done)
	case <-time.After(2 * time.Second):
		t.Fatal("callback was not called")
	}

	require.Panics(t, func() {
		c.InvokeAsync(context.Background(), "queryObjects", nil, nil)
	})
}

func TestOperations(t *testing.T) {
	t.Parallel()

	names := Operations()
	require.Len(t, names, len(operationTable)+5)
	require.IsIncreasing(t, names)
	require.Contains(t, names, "Query")
	require.Contains(t, names, "queryObjects")
	require.Contains(t, names, "fetchBlobField")

	schema, ok := LookupSchema("Upsert")
	require.True(t, ok)
	require.Equal(t, Schema{req("objectClass"), req("data"), req("indexField")}, schema)

	_, ok = LookupSchema("nope")
	require.False(t, ok)
}
