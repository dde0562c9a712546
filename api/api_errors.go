package api

import (
	"encoding/json"
	"fmt"

	"github.com/filecoin-project/go-jsonrpc"
)

const (
	ECanisterNotFound = iota + jsonrpc.FirstUserCode
	EMethodNotFound
	EModeMismatch
	ECanisterReject
	EInvalidArgument
)

var (
	RPCErrors = jsonrpc.NewErrors()

	_ error = (*ErrCanisterNotFound)(nil)
	_ error = (*ErrMethodNotFound)(nil)
	_ error = (*ErrModeMismatch)(nil)
	_ error = (*ErrCanisterReject)(nil)
	_ error = (*ErrInvalidArgument)(nil)
)

func init() {
	RPCErrors.Register(ECanisterNotFound, new(*ErrCanisterNotFound))
	RPCErrors.Register(EMethodNotFound, new(*ErrMethodNotFound))
	RPCErrors.Register(EModeMismatch, new(*ErrModeMismatch))
	RPCErrors.Register(ECanisterReject, new(*ErrCanisterReject))
	RPCErrors.Register(EInvalidArgument, new(*ErrInvalidArgument))
}

// The error types below travel as the JSON-RPC error `meta` member, so their
// fields survive the round trip. Servers must return them unwrapped.

// ErrCanisterNotFound signals that no canister is installed under the id.
type ErrCanisterNotFound struct {
	Canister string `json:"canister"`
}

func (e *ErrCanisterNotFound) Error() string {
	return fmt.Sprintf("canister %s not found", e.Canister)
}

func (e *ErrCanisterNotFound) MarshalJSON() ([]byte, error) {
	type raw ErrCanisterNotFound
	return json.Marshal((*raw)(e))
}

func (e *ErrCanisterNotFound) UnmarshalJSON(b []byte) error {
	type raw ErrCanisterNotFound
	return json.Unmarshal(b, (*raw)(e))
}

// ErrMethodNotFound signals that the canister's interface has no such method.
type ErrMethodNotFound struct {
	Canister string `json:"canister"`
	Method   string `json:"method"`
}

func (e *ErrMethodNotFound) Error() string {
	return fmt.Sprintf("canister %s has no method %s", e.Canister, e.Method)
}

func (e *ErrMethodNotFound) MarshalJSON() ([]byte, error) {
	type raw ErrMethodNotFound
	return json.Marshal((*raw)(e))
}

func (e *ErrMethodNotFound) UnmarshalJSON(b []byte) error {
	type raw ErrMethodNotFound
	return json.Unmarshal(b, (*raw)(e))
}

// ErrModeMismatch signals an update method called through the query path.
type ErrModeMismatch struct {
	Method string `json:"method"`
}

func (e *ErrModeMismatch) Error() string {
	return fmt.Sprintf("%s is an update method and cannot be called as a query", e.Method)
}

func (e *ErrModeMismatch) MarshalJSON() ([]byte, error) {
	type raw ErrModeMismatch
	return json.Marshal((*raw)(e))
}

func (e *ErrModeMismatch) UnmarshalJSON(b []byte) error {
	type raw ErrModeMismatch
	return json.Unmarshal(b, (*raw)(e))
}

// ErrCanisterReject signals that the canister trapped or refused the call
// without producing a result value.
type ErrCanisterReject struct {
	Canister string `json:"canister"`
	Message  string `json:"message"`
}

func (e *ErrCanisterReject) Error() string {
	return fmt.Sprintf("canister %s rejected the call: %s", e.Canister, e.Message)
}

func (e *ErrCanisterReject) MarshalJSON() ([]byte, error) {
	type raw ErrCanisterReject
	return json.Marshal((*raw)(e))
}

func (e *ErrCanisterReject) UnmarshalJSON(b []byte) error {
	type raw ErrCanisterReject
	return json.Unmarshal(b, (*raw)(e))
}

// ErrInvalidArgument signals an argument blob that does not decode against
// the method's argument types.
type ErrInvalidArgument struct {
	Method string `json:"method"`
	Reason string `json:"reason"`
}

func (e *ErrInvalidArgument) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %s", e.Method, e.Reason)
}

func (e *ErrInvalidArgument) MarshalJSON() ([]byte, error) {
	type raw ErrInvalidArgument
	return json.Marshal((*raw)(e))
}

func (e *ErrInvalidArgument) UnmarshalJSON(b []byte) error {
	type raw ErrInvalidArgument
	return json.Unmarshal(b, (*raw)(e))
}
