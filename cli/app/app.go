package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/localnet-dev/localnet/cli/chain"
	"github.com/localnet-dev/localnet/cli/contract"
	"github.com/localnet-dev/localnet/cli/wallet"
	"github.com/localnet-dev/localnet/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "Localnet\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates a localnet instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "localnet"
	ctl.Version = config.Version
	ctl.Usage = "Single-node blockchain simulator for contract development"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, chain.NewCommands()...)
	ctl.Commands = append(ctl.Commands, wallet.NewCommands()...)
	ctl.Commands = append(ctl.Commands, contract.NewCommands()...)
	return ctl
}
