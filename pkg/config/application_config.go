package config

import (
	"github.com/localnet-dev/localnet/pkg/core/storage/dbconfig"
)

// ApplicationConfiguration config specific to the node.
type ApplicationConfiguration struct {
	LogLevel string `yaml:"LogLevel"`
	LogPath  string `yaml:"LogPath"`

	DBConfiguration dbconfig.DBConfiguration `yaml:"DBConfiguration"`

	Pprof      BasicService `yaml:"Pprof"`
	Prometheus BasicService `yaml:"Prometheus"`
	// Feed is the websocket block/notification event feed.
	Feed BasicService `yaml:"Feed"`

	// WalletPath points to the wallet file with the standby account keys,
	// it's written on the first start and reused afterwards.
	WalletPath string `yaml:"WalletPath"`
}

// DefaultApplicationConfiguration returns the application-level defaults of
// a private simulator: in-memory storage, info logging, no services.
func DefaultApplicationConfiguration() ApplicationConfiguration {
	return ApplicationConfiguration{
		LogLevel: "info",
		DBConfiguration: dbconfig.DBConfiguration{
			Type: dbconfig.InMemoryDB,
		},
	}
}
