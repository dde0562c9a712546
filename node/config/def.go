package config

import (
	"encoding"
	"time"
)

// Config is the canlink client and devnet configuration.
type Config struct {
	Replica   Replica
	Canisters Canisters
	Wallet    Wallet
	Devnet    Devnet
}

// Replica is the endpoint calls are sent to.
type Replica struct {
	URL string
	// Token is sent as a bearer token when set
	Token   string
	Timeout Duration
}

// Canisters locates the launchpad services on the replica.
type Canisters struct {
	TokenFactory  string
	SaleManager   string
	AgentRegistry string
}

type Wallet struct {
	// RemoteURL selects a wallet daemon. When empty, calls are made by a
	// local provider as Principal.
	RemoteURL string
	// Principal in text form; empty means anonymous
	Principal      string
	Whitelist      []string
	ConnectTimeout Duration
	// Host overrides Replica.URL for the wallet connection.
	Host string
}

type Devnet struct {
	ListenAddress string
	// DatastorePath is where mock canister state is kept; empty keeps it
	// in memory.
	DatastorePath string
	// JournalPath enables the filesystem journal under this directory.
	JournalPath string
	// Token gates writes; empty allows everything.
	Token         string
	RateLimit     int64
	ConnPerMinute int64
}

// Default returns the default config.
func Default() *Config {
	return &Config{
		Replica: Replica{
			URL:     "http://127.0.0.1:4741/rpc/v0",
			Timeout: Duration(30 * time.Second),
		},
		Canisters: Canisters{
			TokenFactory:  "token-factory",
			SaleManager:   "sale-manager",
			AgentRegistry: "agent-registry",
		},
		Wallet: Wallet{
			ConnectTimeout: Duration(10 * time.Second),
		},
		Devnet: Devnet{
			ListenAddress: "127.0.0.1:4741",
		},
	}
}

var _ encoding.TextMarshaler = (*Duration)(nil)
var _ encoding.TextUnmarshaler = (*Duration)(nil)

// Duration is a wrapper type for time.Duration
// for decoding and encoding from/to TOML
type Duration time.Duration

// UnmarshalText implements interface for TOML decoding
func (dur *Duration) UnmarshalText(text []byte) error {
	d, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*dur = Duration(d)
	return err
}

func (dur Duration) MarshalText() ([]byte, error) {
	d := time.Duration(dur)
	return []byte(d.String()), nil
}

func (dur Duration) Std() time.Duration {
	return time.Duration(dur)
}
