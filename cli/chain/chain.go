// Package chain contains the CLI commands running and maintaining the
// simulator chain.
package chain

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/localnet-dev/localnet/cli/options"
	"github.com/localnet-dev/localnet/pkg/chaindump"
	"github.com/localnet-dev/localnet/pkg/config"
	"github.com/localnet-dev/localnet/pkg/core"
	"github.com/localnet-dev/localnet/pkg/core/block"
	"github.com/localnet-dev/localnet/pkg/services/feed"
	"github.com/localnet-dev/localnet/pkg/services/metrics"
	"github.com/localnet-dev/localnet/pkg/wallet"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// NewCommands returns the 'chain' command with all subcommands.
func NewCommands() []cli.Command {
	cfgFlags := []cli.Flag{options.Config, options.Debug}
	dumpFlags := append([]cli.Flag{
		cli.StringFlag{Name: "in, i", Usage: "input file (stdin if not given)"},
		cli.StringFlag{Name: "out, o", Usage: "output file (stdout if not given)"},
		cli.UintFlag{Name: "start, s", Usage: "block number to start from"},
		cli.UintFlag{Name: "count, n", Usage: "number of blocks to be processed (default: all chain)"},
	}, cfgFlags...)
	return []cli.Command{{
		Name:  "chain",
		Usage: "run and maintain the simulator chain",
		Subcommands: []cli.Command{
			{
				Name:   "run",
				Usage:  "run the simulator node",
				Action: startNode,
				Flags:  cfgFlags,
			},
			{
				Name:   "dump",
				Usage:  "dump chain blocks to a file",
				Action: dumpChain,
				Flags:  dumpFlags,
			},
			{
				Name:   "restore",
				Usage:  "restore blocks from a dump file",
				Action: restoreChain,
				Flags:  dumpFlags,
			},
			{
				Name:      "compare-dumps",
				Usage:     "compare two dump files block by block",
				ArgsUsage: "<dumpA> <dumpB>",
				Action:    compareDumps,
			},
		},
	}}
}

// newGraceContext returns a context cancelled by SIGINT or SIGTERM.
func newGraceContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
	}()
	return ctx
}

func initChain(ctx *cli.Context) (*core.Blockchain, config.Config, *zap.Logger, error) {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return nil, cfg, nil, cli.NewExitError(err, 1)
	}
	log, err := options.HandleLoggingParams(ctx.Bool("debug"), cfg.ApplicationConfiguration)
	if err != nil {
		return nil, cfg, nil, cli.NewExitError(err, 1)
	}
	chain, err := options.GetChainFromContext(ctx, cfg, log)
	if err != nil {
		return nil, cfg, nil, cli.NewExitError(err, 1)
	}
	return chain, cfg, log, nil
}

func startNode(ctx *cli.Context) error {
	chain, cfg, log, err := initChain(ctx)
	if err != nil {
		return err
	}
	defer chain.Close()

	if path := cfg.ApplicationConfiguration.WalletPath; path != "" {
		if err := writeStandbyWallet(chain, path); err != nil {
			return cli.NewExitError(err, 1)
		}
	}

	prometheus := metrics.NewPrometheusService(cfg.ApplicationConfiguration.Prometheus, log)
	pprof := metrics.NewPprofService(cfg.ApplicationConfiguration.Pprof, log)
	events := feed.NewServer(chain, cfg.ApplicationConfiguration.Feed, log)
	go prometheus.Start()
	go pprof.Start()
	go events.Start()

	grace := newGraceContext()
	log.Info("simulator is running",
		zap.Uint32("magic", cfg.ProtocolConfiguration.Magic),
		zap.Uint32("height", chain.BlockHeight()))
	chain.Run(grace)

	events.ShutDown()
	prometheus.ShutDown()
	pprof.ShutDown()
	log.Info("simulator stopped")
	return nil
}

// writeStandbyWallet saves the pre-funded genesis accounts into a wallet
// file on the first start. The accounts are encrypted with an empty
// passphrase, anyone holding the chain seed knows them anyway.
func writeStandbyWallet(chain *core.Blockchain, path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	w, err := wallet.NewWallet(path)
	if err != nil {
		return fmt.Errorf("can't create standby wallet: %w", err)
	}
	defer w.Close()
	for i, priv := range chain.StandbyKeys() {
		acc := wallet.NewAccountFromPrivateKey(priv)
		acc.Label = fmt.Sprintf("standby%d", i)
		if err := acc.Encrypt("", w.Scrypt); err != nil {
			return err
		}
		if i == 0 {
			acc.Default = true
		}
		w.AddAccount(acc)
	}
	return w.Save()
}

func getCountAndStart(ctx *cli.Context) (uint32, uint32) {
	return uint32(ctx.Uint("count")), uint32(ctx.Uint("start"))
}

func dumpChain(ctx *cli.Context) error {
	chain, _, log, err := initChain(ctx)
	if err != nil {
		return err
	}
	defer chain.Close()
	defer log.Sync()

	count, start := getCountAndStart(ctx)
	if start == 0 {
		start = 1
	}
	if count == 0 {
		count = chain.BlockHeight() - start + 1
	}

	out := os.Stdout
	if path := ctx.String("out"); path != "" {
		out, err = os.Create(path)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		defer out.Close()
	}
	if err := chaindump.Dump(chain, out, start, count); err != nil {
		return cli.NewExitError(err, 1)
	}
	log.Info("dump finished", zap.Uint32("start", start), zap.Uint32("count", count))
	return nil
}

func restoreChain(ctx *cli.Context) error {
	chain, _, log, err := initChain(ctx)
	if err != nil {
		return err
	}
	defer chain.Close()
	defer log.Sync()

	in := os.Stdin
	if path := ctx.String("in"); path != "" {
		in, err = os.Open(path)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		defer in.Close()
	}

	var restored uint32
	err = chaindump.Restore(chain, in, func(b *block.Block) error {
		restored++
		if restored%1000 == 0 {
			log.Info("restoring blocks", zap.Uint32("height", b.Index))
		}
		return nil
	})
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	log.Info("restore finished",
		zap.Uint32("restored", restored),
		zap.Uint32("height", chain.BlockHeight()))
	return nil
}
