package agent

import (
	"context"

	"github.com/google/uuid"
	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/canlink-project/canlink/api"
	"github.com/canlink-project/canlink/principal"
)

var log = logging.Logger("agent")

// RPCAgent sends calls to a replica over its JSON-RPC API as a fixed
// sender.
type RPCAgent struct {
	node   api.ReplicaAPI
	sender principal.Principal
}

var _ Agent = (*RPCAgent)(nil)

func NewRPCAgent(node api.ReplicaAPI, sender principal.Principal) *RPCAgent {
	return &RPCAgent{
		node:   node,
		sender: sender,
	}
}

func (a *RPCAgent) Sender() principal.Principal {
	return a.sender
}

func (a *RPCAgent) request(canister, method string, arg []byte) api.CallRequest {
	return api.CallRequest{
		Canister: canister,
		Method:   method,
		Arg:      arg,
		Sender:   a.sender.String(),
	}
}

func (a *RPCAgent) Query(ctx context.Context, canister, method string, arg []byte) ([]byte, error) {
	rep, err := a.node.ReplicaQuery(ctx, a.request(canister, method, arg))
	return replyBytes(rep, err)
}

func (a *RPCAgent) Update(ctx context.Context, canister, method string, arg []byte) ([]byte, error) {
	req := a.request(canister, method, arg)
	req.Nonce = uuid.NewString()

	log.Debugw("update", "canister", canister, "method", method, "nonce", req.Nonce)
	rep, err := a.node.ReplicaCall(ctx, req)
	if err != nil {
		log.Warnw("update failed", "canister", canister, "method", method, "nonce", req.Nonce, "error", err)
	}
	return replyBytes(rep, err)
}

func (a *RPCAgent) Interface(ctx context.Context, canister string) (cid.Cid, error) {
	return a.node.ReplicaInterface(ctx, canister)
}

func replyBytes(rep *api.CallReply, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, xerrors.New("replica sent no reply")
	}
	return rep.Reply, nil
}
