package sfclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/sfconnect/pkg/force"
	"github.com/aussiebroadwan/sfconnect/pkg/slogx"
)

// Field is one named input of an operation.
type Field struct {
	Name     string
	Required bool
}

// Schema lists an operation's fields in the order they are passed on.
type Schema []Field

// Operation binds a schema to a remote call.
type Operation struct {
	Name    string
	Aliases []string
	Schema  Schema
	call    func(ctx context.Context, conn Connection, args *arguments) (any, error)
}

// Callback receives the outcome of InvokeAsync. Exactly one of result and
// err is meaningful.
type Callback func(result any, err error)

// Invoke runs the named operation. opts may be nil, Options or a
// map[string]any; anything else is a *ValidationError.
func (c *Client) Invoke(ctx context.Context, name string, opts any) (any, error) {
	op, ok := lookupOperation(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, name)
	}
	options, err := normalizeOptions(opts)
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, op, options)
}

// InvokeAsync runs Invoke on its own goroutine and reports through cb.
// It panics if cb is nil.
func (c *Client) InvokeAsync(ctx context.Context, name string, opts any, cb Callback) {
	if cb == nil {
		panic("sfclient: InvokeAsync requires a callback")
	}
	go func() {
		cb(c.Invoke(ctx, name, opts))
	}()
}

func (c *Client) invoke(ctx context.Context, op *Operation, opts Options) (result any, err error) {
	started := time.Now()
	ctx, _, finish := slogx.StartOperation(ctx, c.logger, op.Name)
	defer func() {
		c.metrics.ObserveInvocation(op.Name, started, err)
		finish(err)
	}()

	creds, err := opts.credentials()
	if err != nil {
		return nil, err
	}
	claims, err := opts.claims()
	if err != nil {
		return nil, err
	}

	values, err := op.Schema.collect(opts)
	if err != nil {
		return nil, err
	}

	conn, err := c.Authenticate(ctx, creds, claims)
	if err != nil {
		return nil, err
	}

	return op.run(ctx, conn, &arguments{schema: op.Schema, values: values})
}

// collect walks the schema in order and gathers the option values. It stops
// at the first required field that is absent.
func (s Schema) collect(opts Options) ([]any, error) {
	values := make([]any, len(s))
	for i, f := range s {
		v, ok := opts[f.Name]
		// An explicit null counts as absent.
		if f.Required && (!ok || v == nil) {
			return nil, requiredError(f.Name)
		}
		values[i] = v
	}
	return values, nil
}

// run calls the remote operation. A panic inside it becomes an
// *InvocationError; returned errors pass through untouched.
func (op *Operation) run(ctx context.Context, conn Connection, args *arguments) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = errors.New(describePanic(r))
			}
			result, err = nil, &InvocationError{Operation: op.Name, Cause: cause}
		}
	}()
	return op.call(ctx, conn, args)
}

func describePanic(r any) string {
	if s, ok := r.(string); ok {
		return s
	}
	if b, err := json.Marshal(r); err == nil {
		return string(b)
	}
	return fmt.Sprint(r)
}

// arguments gives typed access to collected option values. The first type
// mismatch is kept in err, naming its field; later accessors return zero
// values.
type arguments struct {
	schema Schema
	values []any
	err    error
}

// Err returns the first conversion error, if any.
func (a *arguments) Err() error { return a.err }

func (a *arguments) fail(i int, want string) {
	a.err = typeError(a.schema[i].Name, want)
}

func (a *arguments) String(i int) string {
	if a.err != nil {
		return ""
	}
	switch v := a.values[i].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		a.fail(i, "a string")
		return ""
	}
}

// Scalar accepts strings, numbers and booleans, as external ID values may be
// any of those once decoded from JSON.
func (a *arguments) Scalar(i int) string {
	if a.err != nil {
		return ""
	}
	switch v := a.values[i].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number, bool, int, int32, int64, uint, uint32, uint64, float32, float64:
		return force.FormatExternalID(v)
	default:
		a.fail(i, "a string or number")
		return ""
	}
}

func (a *arguments) Record(i int) force.Record {
	if a.err != nil {
		return nil
	}
	switch v := a.values[i].(type) {
	case nil:
		return nil
	case force.Record:
		return v
	case map[string]any:
		return force.Record(v)
	case Options:
		return force.Record(v)
	default:
		a.fail(i, "an object")
		return nil
	}
}

// Strings accepts a list or a comma-separated string.
func (a *arguments) Strings(i int) []string {
	if a.err != nil {
		return nil
	}
	switch v := a.values[i].(type) {
	case nil:
		return nil
	case []string:
		return v
	case string:
		var out []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				a.fail(i, "a list of strings")
				return nil
			}
			out = append(out, s)
		}
		return out
	default:
		a.fail(i, "a list of strings")
		return nil
	}
}

func (a *arguments) Bytes(i int) []byte {
	if a.err != nil {
		return nil
	}
	switch v := a.values[i].(type) {
	case nil:
		return nil
	case []byte:
		return v
	case string:
		return []byte(v)
	default:
		a.fail(i, "a string or byte slice")
		return nil
	}
}
