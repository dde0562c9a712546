package apistruct

import (
	"github.com/canlink-project/canlink/api"
)

func PermissionedReplicaAPI(a api.ReplicaAPI) api.ReplicaAPI {
	var out ReplicaStruct
	api.PermissionedProxy(a, &out)
	return &out
}

func PermissionedWalletAPI(a api.WalletAPI) api.WalletAPI {
	var out WalletStruct
	api.PermissionedProxy(a, &out)
	return &out
}
