package actor

import (
	"fmt"

	"golang.org/x/xerrors"
)

// ErrUnknownMethod is returned when a call names a method the service does
// not declare. Nothing is sent.
var ErrUnknownMethod = xerrors.New("unknown method")

// ArgumentError means the arguments did not match the method's declared
// schemas. It is raised before dispatch.
type ArgumentError struct {
	Method string
	Err    error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Method, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// TransportError wraps a failure of the agent: the request may or may not
// have reached the replica, and no result was received. Application `err`
// results are never reported this way.
type TransportError struct {
	Canister string
	Method   string
	Mode     Mode
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s.%s: %s", e.Mode, e.Canister, e.Method, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// InterfaceMismatchError is returned by Verify.
type InterfaceMismatchError struct {
	Canister string
	Local    string
	Remote   string
}

func (e *InterfaceMismatchError) Error() string {
	return fmt.Sprintf("canister %s serves interface %s, expected %s", e.Canister, e.Remote, e.Local)
}
