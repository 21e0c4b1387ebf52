package tag

import (
	"errors"
	"fmt"
)

var (
	ErrTargetMustBePointer = errors.New("target must be a pointer")
	ErrTargetIsNil         = errors.New("target is nil")
	ErrUnsupportedType     = errors.New("unsupported type")
	ErrMaxDepthExceeded    = errors.New("max recursion depth exceeded")
)

// FieldError wraps a parse error with the offending field and tag value
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q (value: %q): %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func newFieldError(field, value string, err error) error {
	return &FieldError{Field: field, Value: value, Err: err}
}
