package sfclient

import (
	"errors"
	"fmt"
)

var (
	// ErrClaimNotFound is returned when a claim set has no value for the
	// configured claim type.
	ErrClaimNotFound = errors.New("claim type not found")

	// ErrUnknownOperation is returned by Invoke for names not in the
	// operation table.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrClosed is returned once Close has been called.
	ErrClosed = errors.New("sfclient: client closed")
)

// ConfigError reports an invalid Config field. It is only ever returned by
// New.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("'config.%s' property %s", e.Field, e.Reason)
}

// optionsField is the pseudo-field named when the options value itself is
// unusable.
const optionsField = "options"

// ValidationError reports a bad per-call input: a missing or mistyped
// option, or incomplete credentials.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == optionsField {
		return fmt.Sprintf("'options' argument %s", e.Reason)
	}
	return fmt.Sprintf("option's property '%s' %s", e.Field, e.Reason)
}

func requiredError(field string) error {
	return &ValidationError{Field: field, Reason: "is required"}
}

func invalidError(field string) error {
	return &ValidationError{Field: field, Reason: "is missing or invalid"}
}

func typeError(field, want string) error {
	return &ValidationError{Field: field, Reason: "must be " + want}
}

// InvocationError wraps a fault raised while calling into an operation, as
// opposed to an error the operation returned.
type InvocationError struct {
	Operation string
	Cause     error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("couldn't invoke method '%s': %v", e.Operation, e.Cause)
}

func (e *InvocationError) Unwrap() error { return e.Cause }
