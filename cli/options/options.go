/*
Package options contains a set of common CLI options and helper functions to use them.
*/
package options

import (
	"errors"
	"fmt"

	"github.com/localnet-dev/localnet/examples/inbox"
	"github.com/localnet-dev/localnet/pkg/config"
	"github.com/localnet-dev/localnet/pkg/core"
	"github.com/localnet-dev/localnet/pkg/core/contracts"
	"github.com/localnet-dev/localnet/pkg/core/storage"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is a flag for commands that use the simulator configuration.
var Config = cli.StringFlag{
	Name:  "config-file, c",
	Usage: "path to the simulator configuration file (built-in defaults are used when omitted)",
}

// Debug is a flag for commands that allow debug mode usage.
var Debug = cli.BoolFlag{
	Name:  "debug, d",
	Usage: "enable debug logging (LOTS of output, overrides configuration)",
}

// GetConfigFromContext reads the configuration file named by the
// --config-file flag, or returns the built-in defaults when the flag is
// absent.
func GetConfigFromContext(ctx *cli.Context) (config.Config, error) {
	if path := ctx.String("config-file"); path != "" {
		return config.LoadFile(path)
	}
	return config.Config{
		ProtocolConfiguration:    config.DefaultProtocolConfiguration(),
		ApplicationConfiguration: config.DefaultApplicationConfiguration(),
	}, nil
}

// HandleLoggingParams reads logging parameters. If a user selected debug
// level, the function enables it regardless of the configuration.
func HandleLoggingParams(debug bool, cfg config.ApplicationConfiguration) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.LogLevel != "" {
		var err error
		level, err = zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("log setting LogLevel is not a valid logger level: %w", err)
		}
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Encoding = "console"
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil
	if cfg.LogPath != "" {
		cc.OutputPaths = []string{cfg.LogPath}
	}
	return cc.Build()
}

// BuiltinContracts returns the contract implementations every simulator
// instance knows about. Deploy transactions refer to these by name.
func BuiltinContracts() []*contracts.Contract {
	return []*contracts.Contract{
		inbox.Contract(),
	}
}

// GetChainFromContext opens the configured storage and initializes a chain
// on top of it with all builtin contract implementations registered. The
// caller must Close the chain, closing the chain closes the storage too.
func GetChainFromContext(ctx *cli.Context, cfg config.Config, log *zap.Logger) (*core.Blockchain, error) {
	store, err := storage.NewStore(cfg.ApplicationConfiguration.DBConfiguration)
	if err != nil {
		return nil, fmt.Errorf("can't initialize storage: %w", err)
	}
	chain, err := core.NewBlockchain(store, cfg.ProtocolConfiguration, log)
	if err != nil {
		closeErr := store.Close()
		if closeErr != nil {
			err = fmt.Errorf("%w; failed to close the DB: %s", err, closeErr)
		}
		return nil, fmt.Errorf("can't initialize blockchain: %w", err)
	}
	for _, c := range BuiltinContracts() {
		if err := chain.RegisterContract(c); err != nil {
			_ = chain.Close()
			return nil, err
		}
	}
	return chain, nil
}

// ErrNoWallet is returned by commands that need a wallet when the flag is
// missing.
var ErrNoWallet = errors.New("no wallet specified, use the '--wallet' or '-w' flag")

// Wallet is a flag used by commands that sign transactions.
var Wallet = cli.StringFlag{
	Name:  "wallet, w",
	Usage: "wallet to use to get the key for transaction signing",
}
