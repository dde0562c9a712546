package api

import (
	"github.com/ipfs/go-cid"

	"github.com/canlink-project/canlink/build"
)

// CallRequest is one encoded call. Arg is the positional argument tuple in
// the idl wire form; Sender is the caller principal in text form, empty for
// anonymous calls.
type CallRequest struct {
	Canister string
	Method   string
	Arg      []byte

	Sender string
	// Nonce makes otherwise identical updates distinct.
	Nonce string `json:",omitempty"`
}

// CallReply carries the encoded result value.
type CallReply struct {
	Reply []byte
}

type CanisterInfo struct {
	ID        string
	Service   string
	Interface cid.Cid
}

type Status struct {
	Version    string
	APIVersion build.Version

	Canisters []CanisterInfo
}

// ConnectRequest mirrors wallet.ConnectOptions on the wire.
type ConnectRequest struct {
	Whitelist []string
	Host      string `json:",omitempty"`
	// Timeout in nanoseconds, zero for the wallet default
	Timeout int64 `json:",omitempty"`
}
