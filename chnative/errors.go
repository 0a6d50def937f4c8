package chnative

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an error into one of the categories callers switch on
// without string-matching messages.
type Kind uint8

const (
	KindTransport Kind = iota
	KindProtocol
	KindServer
	KindSchema
	KindArrow
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindServer:
		return "server"
	case KindSchema:
		return "schema"
	case KindArrow:
		return "arrow"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// kindError backs every exported error type below with a common Kind field
// so logging middleware can dispatch on Kind without a type switch across
// six concrete types.
type kindError struct {
	kind  Kind
	cause error
}

func (e *kindError) Error() string {
	if e.cause == nil {
		return e.kind.String() + " error"
	}
	return e.kind.String() + ": " + e.cause.Error()
}

func (e *kindError) Cause() error  { return e.cause }
func (e *kindError) Unwrap() error { return e.cause }

// TransportError wraps connect/read/write/timeout/EOF failures below the
// frame layer.
type TransportError struct{ *kindError }

func NewTransportError(cause error, format string, args ...interface{}) *TransportError {
	return &TransportError{&kindError{kind: KindTransport, cause: wrapOrNew(cause, format, args...)}}
}

// ProtocolError wraps unexpected packets, truncated frames, bad checksums,
// malformed varints, and type-grammar parse failures.
type ProtocolError struct{ *kindError }

func NewProtocolError(cause error, format string, args ...interface{}) *ProtocolError {
	return &ProtocolError{&kindError{kind: KindProtocol, cause: wrapOrNew(cause, format, args...)}}
}

// wrapOrNew wraps cause with the formatted message, or builds a plain
// formatted error when cause is nil — errors.Wrapf returns nil given a nil
// cause, which would otherwise silently drop the message.
func wrapOrNew(cause error, format string, args ...interface{}) error {
	if cause == nil {
		return errors.Errorf(format, args...)
	}
	return errors.Wrapf(cause, format, args...)
}

// ServerError wraps a structured Exception chain the server sent back.
type ServerError struct {
	*kindError
	Code int32
	Name string
}

func NewServerError(code int32, name, message string) *ServerError {
	return &ServerError{
		kindError: &kindError{kind: KindServer, cause: errors.New(message)},
		Code:      code,
		Name:      name,
	}
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server: %s (code %d): %s", e.Name, e.Code, e.cause.Error())
}

// SchemaError wraps column count/type mismatches between a client batch
// and the server-announced schema, nullability mismatches, and unsupported
// types.
type SchemaError struct{ *kindError }

func NewSchemaError(format string, args ...interface{}) *SchemaError {
	return &SchemaError{&kindError{kind: KindSchema, cause: errors.Errorf(format, args...)}}
}

// ArrowError wraps buffer alignment, invalid offset, and dictionary
// out-of-range failures encountered while building or consuming Arrow
// record batches. Column and RowOffset identify where in the batch the
// failure occurred.
type ArrowError struct {
	*kindError
	Column    string
	RowOffset int
}

func NewArrowError(cause error, column string, rowOffset int) *ArrowError {
	return &ArrowError{
		kindError: &kindError{kind: KindArrow, cause: cause},
		Column:    column,
		RowOffset: rowOffset,
	}
}

func (e *ArrowError) Error() string {
	return fmt.Sprintf("arrow: column %q row %d: %s", e.Column, e.RowOffset, e.cause.Error())
}

// CancelledError is returned when a query or insert was torn down by an
// explicit Cancel or a caller context cancellation.
type CancelledError struct{ *kindError }

func NewCancelledError(cause error) *CancelledError {
	return &CancelledError{&kindError{kind: KindCancelled, cause: cause}}
}
