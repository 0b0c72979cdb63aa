package sfclient

import (
	"context"
	"fmt"
	"sort"

	"github.com/aussiebroadwan/sfconnect/pkg/force"
)

func req(name string) Field { return Field{Name: name, Required: true} }
func opt(name string) Field { return Field{Name: name} }

// operationTable is every operation the dispatcher knows, with its schema.
// Aliases share an entry.
var operationTable = []*Operation{
	{
		Name:   "describe",
		Schema: Schema{opt("objectClass")},
		call: func(ctx context.Context, conn Connection, a *arguments) (any, error) {
			objectClass := a.String(0)
			if err := a.Err(); err != nil {
				return nil, err
			}
			return conn.Describe(ctx, objectClass)
		},
	},
	{
		Name:   "describeGlobal",
		Schema: Schema{},
		call: func(ctx context.Context, conn Connection, _ *arguments) (any, error) {
			return conn.DescribeGlobal(ctx)
		},
	},
	{
		Name:    "queryObjects",
		Aliases: []string{"Query"},
		Schema:  Schema{req("query")},
		call: func(ctx context.Context, conn Connection, a *arguments) (any, error) {
			query := a.String(0)
			if err := a.Err(); err != nil {
				return nil, err
			}
			return conn.Query(ctx, query)
		},
	},
	{
		Name:   "queryMore",
		Schema: Schema{req("nextRecordsUrl")},
		call: func(ctx context.Context, conn Connection, a *arguments) (any, error) {
			next := a.String(0)
			if err := a.Err(); err != nil {
				return nil, err
			}
			return conn.QueryMore(ctx, next)
		},
	},
	{
		Name:   "searchObjects",
		Schema: Schema{req("query")},
		call: func(ctx context.Context, conn Connection, a *arguments) (any, error) {
			query := a.String(0)
			if err := a.Err(); err != nil {
				return nil, err
			}
			return conn.Search(ctx, query)
		},
	},
	{
		Name:    "createObject",
		Aliases: []string{"Create"},
		Schema:  Schema{req("objectClass"), req("object")},
		call: func(ctx context.Context, conn Connection, a *arguments) (any, error) {
			objectClass, object := a.String(0), a.Record(1)
			if err := a.Err(); err != nil {
				return nil, err
			}
			return conn.Create(ctx, objectClass, object)
		},
	},
	{
		Name:   "fetchObject",
		Schema: Schema{req("objectClass"), req("id"), opt("fields")},
		call: func(ctx context.Context, conn Connection, a *arguments) (any, error) {
			objectClass, id, fields := a.String(0), a.String(1), a.Strings(2)
			if err := a.Err(); err != nil {
				return nil, err
			}
			return conn.Fetch(ctx, objectClass, id, fields)
		},
	},
	{
		Name:    "updateObject",
		Aliases: []string{"Update"},
		Schema:  Schema{req("objectClass"), req("id"), req("data")},
		call: func(ctx context.Context, conn Connection, a *arguments) (any, error) {
			objectClass, id, data := a.String(0), a.String(1), a.Record(2)
			if err := a.Err(); err != nil {
				return nil, err
			}
			return conn.Update(ctx, objectClass, id, data)
		},
	},
	{
		Name:    "upsertObject",
		Aliases: []string{"Upsert"},
		Schema:  Schema{req("objectClass"), req("data"), req("indexField")},
		call: func(ctx context.Context, conn Connection, a *arguments) (any, error) {
			objectClass, data, indexField := a.String(0), a.Record(1), a.String(2)
			if err := a.Err(); err != nil {
				return nil, err
			}
			return conn.Upsert(ctx, objectClass, data, indexField)
		},
	},
	{
		Name:    "deleteObject",
		Aliases: []string{"Delete"},
		Schema:  Schema{req("objectClass"), req("id")},
		call: func(ctx context.Context, conn Connection, a *arguments) (any, error) {
			objectClass, id := a.String(0), a.String(1)
			if err := a.Err(); err != nil {
				return nil, err
			}
			return conn.Destroy(ctx, objectClass, id)
		},
	},
	{
		Name:   "fetchExternalObject",
		Schema: Schema{req("objectClass"), req("indexField"), req("indexValue")},
		call: func(ctx context.Context, conn Connection, a *arguments) (any, error) {
			objectClass, indexField, indexValue := a.String(0), a.String(1), a.Scalar(2)
			if err := a.Err(); err != nil {
				return nil, err
			}
			return conn.FetchExternal(ctx, objectClass, indexField, indexValue)
		},
	},
	{
		Name:   "updateExternalObject",
		Schema: Schema{req("objectClass"), req("data"), req("indexField")},
		call: func(ctx context.Context, conn Connection, a *arguments) (any, error) {
			objectClass, data, indexField := a.String(0), a.Record(1), a.String(2)
			if err := a.Err(); err != nil {
				return nil, err
			}
			return conn.UpdateExternal(ctx, objectClass, data, indexField)
		},
	},
	{
		Name:   "upsertExternalObject",
		Schema: Schema{req("objectClass"), req("indexField"), req("indexValue"), opt("data")},
		call: func(ctx context.Context, conn Connection, a *arguments) (any, error) {
			objectClass, indexField, indexValue, data := a.String(0), a.String(1), a.Scalar(2), a.Record(3)
			if err := a.Err(); err != nil {
				return nil, err
			}
			return conn.UpsertExternal(ctx, objectClass, indexField, indexValue, data)
		},
	},
	{
		Name:   "deleteExternalObject",
		Schema: Schema{req("objectClass"), req("indexField"), req("indexValue")},
		call: func(ctx context.Context, conn Connection, a *arguments) (any, error) {
			objectClass, indexField, indexValue := a.String(0), a.String(1), a.Scalar(2)
			if err := a.Err(); err != nil {
				return nil, err
			}
			return conn.DestroyExternal(ctx, objectClass, indexField, indexValue)
		},
	},
	{
		Name:   "createAttachment",
		Schema: Schema{req("parentId"), req("name"), req("content"), req("type")},
		call: func(ctx context.Context, conn Connection, a *arguments) (any, error) {
			parentID, name, content, contentType := a.String(0), a.String(1), a.String(2), a.String(3)
			if err := a.Err(); err != nil {
				return nil, err
			}
			return conn.CreateAttachment(ctx, parentID, name, content, contentType)
		},
	},
	{
		Name:   "attachFile",
		Schema: Schema{req("parentId"), req("filename"), opt("type")},
		call: func(ctx context.Context, conn Connection, a *arguments) (any, error) {
			parentID, filename, contentType := a.String(0), a.String(1), a.String(2)
			if err := a.Err(); err != nil {
				return nil, err
			}
			return conn.AttachFile(ctx, parentID, filename, contentType)
		},
	},
	{
		Name:   "attachBuffer",
		Schema: Schema{req("parentId"), req("name"), req("content"), req("type")},
		call: func(ctx context.Context, conn Connection, a *arguments) (any, error) {
			parentID, name, content, contentType := a.String(0), a.String(1), a.Bytes(2), a.String(3)
			if err := a.Err(); err != nil {
				return nil, err
			}
			return conn.AttachBuffer(ctx, parentID, name, content, contentType)
		},
	},
	{
		Name:   "fetchBlobField",
		Schema: Schema{req("objectClass"), req("id"), req("field")},
		call: func(ctx context.Context, conn Connection, a *arguments) (any, error) {
			objectClass, id, field := a.String(0), a.String(1), a.String(2)
			if err := a.Err(); err != nil {
				return nil, err
			}
			return conn.FetchBlobField(ctx, objectClass, id, field)
		},
	},
}

var operationIndex = func() map[string]*Operation {
	idx := make(map[string]*Operation, len(operationTable)*2)
	for _, op := range operationTable {
		idx[op.Name] = op
		for _, alias := range op.Aliases {
			idx[alias] = op
		}
	}
	return idx
}()

func lookupOperation(name string) (*Operation, bool) {
	op, ok := operationIndex[name]
	return op, ok
}

// Operations lists every operation name and alias, sorted.
func Operations() []string {
	names := make([]string, 0, len(operationIndex))
	for name := range operationIndex {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupSchema returns the schema of the named operation.
func LookupSchema(name string) (Schema, bool) {
	op, ok := lookupOperation(name)
	if !ok {
		return nil, false
	}
	return op.Schema, true
}

// invokeAs runs a registered operation and narrows its result.
func invokeAs[T any](ctx context.Context, c *Client, name string, opts Options) (T, error) {
	var zero T

	op, ok := lookupOperation(name)
	if !ok {
		panic(fmt.Sprintf("sfclient: operation %q is not registered", name))
	}
	if opts == nil {
		opts = Options{}
	}

	res, err := c.invoke(ctx, op, opts)
	if err != nil {
		return zero, err
	}
	out, _ := res.(T)
	return out, nil
}

func (c *Client) Describe(ctx context.Context, opts Options) (force.DescribeResult, error) {
	return invokeAs[force.DescribeResult](ctx, c, "describe", opts)
}

func (c *Client) DescribeGlobal(ctx context.Context, opts Options) (*force.GlobalDescribe, error) {
	return invokeAs[*force.GlobalDescribe](ctx, c, "describeGlobal", opts)
}

func (c *Client) QueryObjects(ctx context.Context, opts Options) (*force.QueryResult, error) {
	return invokeAs[*force.QueryResult](ctx, c, "queryObjects", opts)
}

// Query is an alias of QueryObjects.
func (c *Client) Query(ctx context.Context, opts Options) (*force.QueryResult, error) {
	return invokeAs[*force.QueryResult](ctx, c, "Query", opts)
}

// QueryMore fetches the page named by a previous result's nextRecordsUrl.
func (c *Client) QueryMore(ctx context.Context, opts Options) (*force.QueryResult, error) {
	return invokeAs[*force.QueryResult](ctx, c, "queryMore", opts)
}

func (c *Client) SearchObjects(ctx context.Context, opts Options) (*force.SearchResult, error) {
	return invokeAs[*force.SearchResult](ctx, c, "searchObjects", opts)
}

func (c *Client) CreateObject(ctx context.Context, opts Options) (*force.SaveResult, error) {
	return invokeAs[*force.SaveResult](ctx, c, "createObject", opts)
}

// Create is an alias of CreateObject.
func (c *Client) Create(ctx context.Context, opts Options) (*force.SaveResult, error) {
	return invokeAs[*force.SaveResult](ctx, c, "Create", opts)
}

func (c *Client) FetchObject(ctx context.Context, opts Options) (force.Record, error) {
	return invokeAs[force.Record](ctx, c, "fetchObject", opts)
}

func (c *Client) UpdateObject(ctx context.Context, opts Options) (*force.SaveResult, error) {
	return invokeAs[*force.SaveResult](ctx, c, "updateObject", opts)
}

// Update is an alias of UpdateObject.
func (c *Client) Update(ctx context.Context, opts Options) (*force.SaveResult, error) {
	return invokeAs[*force.SaveResult](ctx, c, "Update", opts)
}

func (c *Client) UpsertObject(ctx context.Context, opts Options) (*force.SaveResult, error) {
	return invokeAs[*force.SaveResult](ctx, c, "upsertObject", opts)
}

// Upsert is an alias of UpsertObject.
func (c *Client) Upsert(ctx context.Context, opts Options) (*force.SaveResult, error) {
	return invokeAs[*force.SaveResult](ctx, c, "Upsert", opts)
}

func (c *Client) DeleteObject(ctx context.Context, opts Options) (*force.SaveResult, error) {
	return invokeAs[*force.SaveResult](ctx, c, "deleteObject", opts)
}

// Delete is an alias of DeleteObject.
func (c *Client) Delete(ctx context.Context, opts Options) (*force.SaveResult, error) {
	return invokeAs[*force.SaveResult](ctx, c, "Delete", opts)
}

func (c *Client) FetchExternalObject(ctx context.Context, opts Options) (force.Record, error) {
	return invokeAs[force.Record](ctx, c, "fetchExternalObject", opts)
}

func (c *Client) UpdateExternalObject(ctx context.Context, opts Options) (*force.SaveResult, error) {
	return invokeAs[*force.SaveResult](ctx, c, "updateExternalObject", opts)
}

func (c *Client) UpsertExternalObject(ctx context.Context, opts Options) (*force.SaveResult, error) {
	return invokeAs[*force.SaveResult](ctx, c, "upsertExternalObject", opts)
}

func (c *Client) DeleteExternalObject(ctx context.Context, opts Options) (*force.SaveResult, error) {
	return invokeAs[*force.SaveResult](ctx, c, "deleteExternalObject", opts)
}

func (c *Client) CreateAttachment(ctx context.Context, opts Options) (*force.SaveResult, error) {
	return invokeAs[*force.SaveResult](ctx, c, "createAttachment", opts)
}

func (c *Client) AttachFile(ctx context.Context, opts Options) (*force.SaveResult, error) {
	return invokeAs[*force.SaveResult](ctx, c, "attachFile", opts)
}

func (c *Client) AttachBuffer(ctx context.Context, opts Options) (*force.SaveResult, error) {
	return invokeAs[*force.SaveResult](ctx, c, "attachBuffer", opts)
}

func (c *Client) FetchBlobField(ctx context.Context, opts Options) ([]byte, error) {
	return invokeAs[[]byte](ctx, c, "fetchBlobField", opts)
}
