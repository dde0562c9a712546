package client

import (
	"context"
	"net/http"

	"github.com/filecoin-project/go-jsonrpc"

	"github.com/canlink-project/canlink/api"
	"github.com/canlink-project/canlink/api/apistruct"
)

// NewReplicaRPC creates a new http jsonrpc client for a replica.
func NewReplicaRPC(ctx context.Context, addr string, requestHeader http.Header, opts ...jsonrpc.Option) (api.ReplicaAPI, jsonrpc.ClientCloser, error) {
	var res apistruct.ReplicaStruct
	closer, err := jsonrpc.NewMergeClient(ctx, addr, "Canlink",
		api.GetInternalStructs(&res),
		requestHeader,
		append([]jsonrpc.Option{jsonrpc.WithErrors(api.RPCErrors)}, opts...)...,
	)

	return &res, closer, err
}

// NewWalletRPC creates a new http jsonrpc client for a wallet daemon.
func NewWalletRPC(ctx context.Context, addr string, requestHeader http.Header, opts ...jsonrpc.Option) (api.WalletAPI, jsonrpc.ClientCloser, error) {
	var res apistruct.WalletStruct
	closer, err := jsonrpc.NewMergeClient(ctx, addr, "Canlink",
		api.GetInternalStructs(&res),
		requestHeader,
		append([]jsonrpc.Option{jsonrpc.WithErrors(api.RPCErrors)}, opts...)...,
	)

	return &res, closer, err
}
