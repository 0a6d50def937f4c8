package proto

import (
	"fmt"
	"strings"
)

// Exception is the structured server-side error chain carried by a
// ServerException packet. Nested may be non-nil when the server reports a
// cause chain.
type Exception struct {
	Code       int32
	Name       string
	Message    string
	StackTrace string
	Nested     *Exception
}

func (e *Exception) Error() string {
	if e.Nested != nil {
		return fmt.Sprintf("code: %d, message: %s (caused by: %s)", e.Code, e.Message, e.Nested.Error())
	}
	return fmt.Sprintf("code: %d, message: %s", e.Code, e.Message)
}

// ReadException decodes an Exception, recursing through the nested-cause
// flag the wire format carries after the stack trace.
func ReadException(r *Reader) (*Exception, error) {
	var e Exception
	var err error
	if e.Code, err = r.Int32(); err != nil {
		return nil, err
	}
	if e.Name, err = r.String(); err != nil {
		return nil, err
	}
	if e.Message, err = r.String(); err != nil {
		return nil, err
	}
	e.Message = strings.TrimSpace(strings.TrimPrefix(e.Message, e.Name+":"))
	if e.StackTrace, err = r.String(); err != nil {
		return nil, err
	}
	hasNested, err := r.Bool()
	if err != nil {
		return nil, err
	}
	if hasNested {
		e.Nested, err = ReadException(r)
		if err != nil {
			return nil, err
		}
	}
	return &e, nil
}
