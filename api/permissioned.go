package api

import (
	"github.com/filecoin-project/go-jsonrpc/auth"
)

const (
	PermRead  auth.Permission = "read" // default
	PermWrite auth.Permission = "write"
	PermSign  auth.Permission = "sign" // act as the wallet principal
	PermAdmin auth.Permission = "admin"
)

var AllPermissions = []auth.Permission{PermRead, PermWrite, PermSign, PermAdmin}
var DefaultPerms = []auth.Permission{PermRead}

// PermissionedProxy guards every method of in with the perm tag found on
// the matching field of each Internal struct of out.
func PermissionedProxy(in, out interface{}) {
	for _, o := range GetInternalStructs(out) {
		auth.PermissionedProxy(AllPermissions, DefaultPerms, in, o)
	}
}
