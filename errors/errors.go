package errors

import (
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
)

const UnknownCode = 500

// Status carries the externally visible part of an error: an HTTP-aligned
// code, a message, and optional key/value metadata for operators.
type Status struct {
	Code     int               `json:"code,omitempty"`
	Message  string            `json:"message,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Error is a structured error with an HTTP-aligned status code, a message,
// operator metadata and an optional wrapped cause.
type Error struct {
	Status
	cause error
}

func (e *Error) Error() string {
	var msg strings.Builder

	msg.WriteString("code=")
	msg.WriteString(strconv.Itoa(e.Code))
	msg.WriteString(", message=")
	msg.WriteString(e.Message)

	if len(e.Metadata) > 0 {
		msg.WriteString(", metadata={")
		first := true
		for k, v := range e.Metadata {
			if !first {
				msg.WriteString(", ")
			}
			msg.WriteString(k)
			msg.WriteByte('=')
			msg.WriteString(v)
			first = false
		}
		msg.WriteByte('}')
	}

	if e.cause != nil {
		msg.WriteString(", cause=")
		msg.WriteString(e.cause.Error())
	}

	return msg.String()
}

// Unwrap returns the cause of the error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether err is an *Error with the same code and message
func (e *Error) Is(err error) bool {
	var te *Error
	if errors.As(err, &te) {
		return e.Code == te.Code && e.Message == te.Message
	}
	return false
}

// WithMetadata adds metadata to the error. Returns a new instance so shared
// sentinel errors stay immutable.
func (e *Error) WithMetadata(m map[string]string) *Error {
	if len(m) == 0 {
		return e
	}

	err := e.clone()
	if err.Metadata == nil {
		err.Metadata = make(map[string]string, len(m))
	}
	maps.Copy(err.Metadata, m)
	return err
}

// WithCause attaches a cause to the error. Returns a new instance so shared
// sentinel errors stay immutable.
func (e *Error) WithCause(cause error) *Error {
	if cause == nil {
		return e
	}

	err := e.clone()
	err.cause = cause
	return err
}

func (e *Error) GetCode() int {
	return e.Code
}

func (e *Error) GetMessage() string {
	return e.Message
}

func (e *Error) GetCause() error {
	return e.cause
}

func (e *Error) clone() *Error {
	var metadata map[string]string
	if len(e.Metadata) > 0 {
		metadata = make(map[string]string, len(e.Metadata))
		maps.Copy(metadata, e.Metadata)
	}

	return &Error{
		Status: Status{
			Code:     e.Code,
			Message:  e.Message,
			Metadata: metadata,
		},
		cause: e.cause,
	}
}

// New creates a new error with the given code and formatted message
func New(code int, format string, args ...any) *Error {
	message := format
	if len(args) > 0 {
		message = fmt.Sprintf(format, args...)
	}

	return &Error{
		Status: Status{
			Code:    code,
			Message: message,
		},
	}
}

// FromError converts a generic error to *Error. A nil input returns nil; a
// non-structured error is wrapped with UnknownCode.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	if te, ok := err.(*Error); ok {
		return te
	}

	return New(UnknownCode, "%v", err)
}

// Wrap wraps an error with additional context while preserving the chain.
// Returns nil if the input error is nil.
func Wrap(err error, code int, format string, args ...any) *Error {
	if err == nil {
		return nil
	}

	return New(code, format, args...).WithCause(err)
}

// Code returns the status code of any error, or UnknownCode when it does not
// carry one. A nil error yields 200.
func Code(err error) int {
	if err == nil {
		return 200
	}
	return FromError(err).Code
}
