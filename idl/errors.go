package idl

import (
	"fmt"
	"strconv"

	"golang.org/x/xerrors"
)

// DecodeError reports wire data or a dynamic value that does not match the
// declared schema. It belongs to the transport layer and is never an
// application `err` result.
type DecodeError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		if msg != "" {
			msg += ": "
		}
		msg += e.Err.Error()
	}
	if e.Path == "" {
		return "idl decode: " + msg
	}
	return fmt.Sprintf("idl decode %s: %s", e.Path, msg)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// FieldError is one schema violation found by Validate.
type FieldError struct {
	Path   string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Path == "" {
		return e.Reason
	}
	return e.Path + ": " + e.Reason
}

func mismatch(path, want string, got Value) error {
	return &DecodeError{Path: path, Reason: fmt.Sprintf("expected %s, got %T", want, got)}
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

func indexPath(base string, i int) string {
	return base + "[" + strconv.Itoa(i) + "]"
}

// prefixErr pushes a path segment onto decode errors coming back up from a
// nested conversion.
func prefixErr(prefix string, err error) error {
	var de *DecodeError
	if xerrors.As(err, &de) {
		out := *de
		switch {
		case out.Path == "":
			out.Path = prefix
		case out.Path[0] == '[':
			out.Path = prefix + out.Path
		default:
			out.Path = joinPath(prefix, out.Path)
		}
		return &out
	}
	return &DecodeError{Path: prefix, Err: err}
}
