package chnative

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStrings(t *testing.T) {
	cases := map[Kind]string{
		KindTransport: "transport",
		KindProtocol:  "protocol",
		KindServer:    "server",
		KindSchema:    "schema",
		KindArrow:     "arrow",
		KindCancelled: "cancelled",
		Kind(99):      "unknown",
	}
	for k, want := range cases {
		assert.Equal(t, want, k.String())
	}
}

func TestNewTransportErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTransportError(cause, "dialing %s", "127.0.0.1:9000")
	assert.Contains(t, err.Error(), "transport:")
	assert.Contains(t, err.Error(), "dialing 127.0.0.1:9000")
	assert.Contains(t, err.Error(), "connection refused")

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, cause, pkgerrors.Cause(te))
}

func TestNewTransportErrorWithNilCauseStillFormats(t *testing.T) {
	err := NewTransportError(nil, "no addresses configured")
	assert.Contains(t, err.Error(), "no addresses configured")
}

func TestNewProtocolErrorFormats(t *testing.T) {
	err := NewProtocolError(nil, "unexpected packet tag %d", 42)
	assert.Contains(t, err.Error(), "protocol:")
	assert.Contains(t, err.Error(), "unexpected packet tag 42")
}

func TestNewServerErrorCarriesCodeAndName(t *testing.T) {
	err := NewServerError(60, "DB::Exception", "Table doesn't exist")
	assert.Equal(t, int32(60), err.Code)
	assert.Equal(t, "DB::Exception", err.Name)
	assert.Contains(t, err.Error(), "DB::Exception")
	assert.Contains(t, err.Error(), "code 60")
	assert.Contains(t, err.Error(), "Table doesn't exist")
}

func TestNewSchemaErrorFormats(t *testing.T) {
	err := NewSchemaError("column count mismatch: got %d want %d", 3, 2)
	assert.Contains(t, err.Error(), "schema:")
	assert.Contains(t, err.Error(), "got 3 want 2")
}

func TestNewArrowErrorCarriesColumnAndOffset(t *testing.T) {
	cause := errors.New("dictionary index out of range")
	err := NewArrowError(cause, "status", 7)
	assert.Equal(t, "status", err.Column)
	assert.Equal(t, 7, err.RowOffset)
	assert.Contains(t, err.Error(), `column "status"`)
	assert.Contains(t, err.Error(), "row 7")
}

func TestNewCancelledErrorWrapsContextErr(t *testing.T) {
	cause := errors.New("context canceled")
	err := NewCancelledError(cause)
	assert.Equal(t, KindCancelled, err.kind)
	var ce *CancelledError
	require.ErrorAs(t, err, &ce)
}

func TestKindErrorsAreDistinguishableByType(t *testing.T) {
	var errs = []error{
		NewTransportError(nil, "x"),
		NewProtocolError(nil, "x"),
		NewServerError(1, "n", "m"),
		NewSchemaError("x"),
		NewArrowError(errors.New("x"), "c", 0),
		NewCancelledError(errors.New("x")),
	}
	var te *TransportError
	var pe *ProtocolError
	var se *ServerError
	var sce *SchemaError
	var ae *ArrowError
	var ce *CancelledError

	assert.True(t, errors.As(errs[0], &te))
	assert.False(t, errors.As(errs[0], &pe))
	assert.True(t, errors.As(errs[1], &pe))
	assert.True(t, errors.As(errs[2], &se))
	assert.True(t, errors.As(errs[3], &sce))
	assert.True(t, errors.As(errs[4], &ae))
	assert.True(t, errors.As(errs[5], &ce))
}
