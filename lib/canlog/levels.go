package canlog

import (
	"os"

	logging "github.com/ipfs/go-log/v2"
)

func SetupLogLevels() {
	if _, set := os.LookupEnv("GOLOG_LOG_LEVEL"); !set {
		_ = logging.SetLogLevel("*", "INFO")
		_ = logging.SetLogLevel("rpc", "ERROR")
		_ = logging.SetLogLevel("replica", "INFO")
	}
	// Always mute the jsonrpc reconnect chatter unless explicitly asked for
	if _, set := os.LookupEnv("CANLINK_RPC_DEBUG"); !set {
		_ = logging.SetLogLevel("rpc", "ERROR")
	}
}
