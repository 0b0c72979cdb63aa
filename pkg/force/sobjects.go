package force

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Create inserts a new record of objectClass.
func (c *Connection) Create(ctx context.Context, objectClass string, fields Record) (*SaveResult, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, sobjectPath(objectClass), nil, nonNil(fields))
	if err != nil {
		return nil, err
	}

	var res SaveResult
	if err := decodeJSON(resp, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Fetch retrieves a record by ID. When fields is empty all fields are returned.
func (c *Connection) Fetch(ctx context.Context, objectClass, id string, fields []string) (Record, error) {
	var query url.Values
	if len(fields) > 0 {
		query = url.Values{"fields": {strings.Join(fields, ",")}}
	}

	var rec Record
	if err := c.getJSON(ctx, sobjectPath(objectClass, id), query, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update patches the record with the given ID.
func (c *Connection) Update(ctx context.Context, objectClass, id string, data Record) (*SaveResult, error) {
	resp, err := c.doRequest(ctx, http.MethodPatch, sobjectPath(objectClass, id), nil, nonNil(data))
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(resp, nil); err != nil {
		return nil, err
	}
	return &SaveResult{ID: id, Success: true}, nil
}

// Upsert inserts or updates a record matched on the external ID field
// indexField, whose value is taken from data.
func (c *Connection) Upsert(ctx context.Context, objectClass string, data Record, indexField string) (*SaveResult, error) {
	value, ok := data[indexField]
	if !ok || value == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingExternalID, indexField)
	}
	return c.UpsertExternal(ctx, objectClass, indexField, FormatExternalID(value), data.Without(indexField))
}

// Destroy deletes the record with the given ID.
func (c *Connection) Destroy(ctx context.Context, objectClass, id string) (*SaveResult, error) {
	resp, err := c.doRequest(ctx, http.MethodDelete, sobjectPath(objectClass, id), nil, nil)
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(resp, nil); err != nil {
		return nil, err
	}
	return &SaveResult{ID: id, Success: true}, nil
}

// FetchExternal retrieves a record by external ID.
func (c *Connection) FetchExternal(ctx context.Context, objectClass, indexField, indexValue string) (Record, error) {
	var rec Record
	if err := c.getJSON(ctx, sobjectPath(objectClass, indexField, indexValue), nil, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateExternal updates an existing record located by the external ID held
// in data[indexField]. Unlike Upsert it never creates a record; a missing
// match surfaces as a NOT_FOUND *APIError.
func (c *Connection) UpdateExternal(ctx context.Context, objectClass string, data Record, indexField string) (*SaveResult, error) {
	value, ok := data[indexField]
	if !ok || value == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingExternalID, indexField)
	}

	existing, err := c.FetchExternal(ctx, objectClass, indexField, FormatExternalID(value))
	if err != nil {
		return nil, err
	}
	id := existing.ID()
	if id == "" {
		return nil, &APIError{
			StatusCode: http.StatusNotFound,
			Errors:     []APIErrorItem{{ErrorCode: ErrorCodeNotFound, Message: "matched record has no Id"}},
		}
	}
	return c.Update(ctx, objectClass, id, data.Without(indexField, "Id"))
}

// UpsertExternal inserts or updates the record whose indexField equals
// indexValue. A 201 means a record was created.
func (c *Connection) UpsertExternal(ctx context.Context, objectClass, indexField, indexValue string, data Record) (*SaveResult, error) {
	resp, err := c.doRequest(ctx, http.MethodPatch, sobjectPath(objectClass, indexField, indexValue), nil, nonNil(data))
	if err != nil {
		return nil, err
	}

	created := resp.StatusCode == http.StatusCreated
	var res SaveResult
	if err := decodeJSON(resp, &res); err != nil {
		return nil, err
	}
	// Older API versions answer updates with 204 and no body.
	if res.ID == "" && len(res.Errors) == 0 {
		res.Success = true
	}
	res.Created = res.Created || created
	return &res, nil
}

// DestroyExternal deletes the record whose indexField equals indexValue.
func (c *Connection) DestroyExternal(ctx context.Context, objectClass, indexField, indexValue string) (*SaveResult, error) {
	resp, err := c.doRequest(ctx, http.MethodDelete, sobjectPath(objectClass, indexField, indexValue), nil, nil)
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(resp, nil); err != nil {
		return nil, err
	}
	return &SaveResult{Success: true}, nil
}

// FetchBlobField downloads the binary content of a blob field such as
// Attachment.Body or ContentVersion.VersionData.
func (c *Connection) FetchBlobField(ctx context.Context, objectClass, id, field string) ([]byte, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, sobjectPath(objectClass, id, field), nil, nil)
	if err != nil {
		return nil, err
	}
	return readBody(resp)
}

func nonNil(r Record) Record {
	if r == nil {
		return Record{}
	}
	return r
}

// FormatExternalID renders an external ID value for use in a URL path.
// Floats are written in plain decimal, never exponent form.
func FormatExternalID(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}
