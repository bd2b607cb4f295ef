package soltype

import (
	"errors"
	"fmt"
)

// Error kinds. Every *ParseError carries exactly one
// of these and matches it with errors.Is.
var (
	ErrMismatch = errors.New("unexpected input")
	ErrNumber   = errors.New("malformed number")
	ErrShape    = errors.New("invalid shape")
)

// ParseError reports the production that failed and the part of
// the input that was not consumed when it failed.
type ParseError struct {
	Production string
	Remaining  string
	Kind       error
	Err        error
}

func (e *ParseError) Error() string {
	rest := e.Remaining
	if rest == "" {
		rest = "end of input"
	} else {
		rest = fmt.Sprintf("%q", rest)
	}
	msg := fmt.Sprintf("soltype: %s: %s at %s", e.Production, e.Kind, rest)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

var (
	errTooManySegments    = errors.New("name has more than two segments")
	errRepeatedMutability = errors.New("more than one mutability")
	errRepeatedVisibility = errors.New("more than one visibility")
	errTooDeep            = errors.New("nesting too deep")
	errBytesLen           = errors.New("fixed bytes length must be 1 to 32")
)
