// Package wallet contains the CLI commands managing wallet files.
package wallet

import (
	"errors"
	"fmt"

	"github.com/localnet-dev/localnet/cli/flags"
	"github.com/localnet-dev/localnet/cli/input"
	"github.com/localnet-dev/localnet/cli/options"
	"github.com/localnet-dev/localnet/pkg/util"
	"github.com/localnet-dev/localnet/pkg/wallet"
	"github.com/urfave/cli"
)

var (
	errNoPath    = errors.New("wallet path is mandatory, use the '--wallet' or '-w' flag")
	errNoAddress = errors.New("address is mandatory, use the '--address' or '-a' flag")
)

var addressFlag = flags.AddressFlag{
	Name:  "address, a",
	Usage: "address to use",
}

// NewCommands returns the 'wallet' command with all subcommands.
func NewCommands() []cli.Command {
	return []cli.Command{{
		Name:  "wallet",
		Usage: "create, open and manage a wallet",
		Subcommands: []cli.Command{
			{
				Name:   "init",
				Usage:  "create a new wallet",
				Action: createWallet,
				Flags: []cli.Flag{
					options.Wallet,
					cli.BoolFlag{
						Name:  "account, a",
						Usage: "create a new account in the wallet right away",
					},
				},
			},
			{
				Name:   "create",
				Usage:  "add an account to the existing wallet",
				Action: addAccount,
				Flags:  []cli.Flag{options.Wallet},
			},
			{
				Name:   "dump",
				Usage:  "print the wallet contents",
				Action: dumpWallet,
				Flags:  []cli.Flag{options.Wallet},
			},
			{
				Name:   "export",
				Usage:  "export the private key of an account in WIF format",
				Action: exportKey,
				Flags:  []cli.Flag{options.Wallet, addressFlag},
			},
			{
				Name:   "balance",
				Usage:  "print the on-chain balances of the wallet accounts",
				Action: showBalance,
				Flags:  []cli.Flag{options.Wallet, options.Config, options.Debug},
			},
		},
	}}
}

func openWallet(ctx *cli.Context) (*wallet.Wallet, error) {
	path := ctx.String("wallet")
	if path == "" {
		return nil, errNoPath
	}
	return wallet.NewWalletFromFile(path)
}

func createWallet(ctx *cli.Context) error {
	path := ctx.String("wallet")
	if path == "" {
		return cli.NewExitError(errNoPath, 1)
	}
	w, err := wallet.NewWallet(path)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer w.Close()
	if ctx.Bool("account") {
		if err := createAccount(ctx, w); err != nil {
			return cli.NewExitError(err, 1)
		}
	}
	if err := w.Save(); err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "wallet successfully created, file location is %s\n", w.Path())
	return nil
}

func addAccount(ctx *cli.Context) error {
	w, err := openWallet(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer w.Close()
	if err := createAccount(ctx, w); err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}

func createAccount(ctx *cli.Context, w *wallet.Wallet) error {
	label, err := input.ReadLine(ctx.App.Writer, "Enter the name of the account > ")
	if err != nil {
		return err
	}
	pass, err := input.ReadNewPassword(ctx.App.Writer)
	if err != nil {
		return err
	}
	acc, err := w.CreateAccount(label, pass)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "account %s added to the wallet\n", acc.Address)
	return nil
}

func dumpWallet(ctx *cli.Context) error {
	w, err := openWallet(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer w.Close()
	data, err := w.JSON()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, string(data))
	return nil
}

func exportKey(ctx *cli.Context) error {
	w, err := openWallet(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer w.Close()

	addr := flags.AddressFromContext(ctx, "address")
	if !addr.IsSet {
		return cli.NewExitError(errNoAddress, 1)
	}
	acc := w.GetAccount(addr.Uint160())
	if acc == nil {
		return cli.NewExitError("account is missing from the wallet", 1)
	}
	pass, err := input.ReadPassword(ctx.App.Writer, "Enter password > ")
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if err := acc.Decrypt(pass, w.Scrypt); err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, acc.PrivateKey().WIF())
	return nil
}

func showBalance(ctx *cli.Context) error {
	w, err := openWallet(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer w.Close()

	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	log, err := options.HandleLoggingParams(ctx.Bool("debug"), cfg.ApplicationConfiguration)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	chain, err := options.GetChainFromContext(ctx, cfg, log)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer chain.Close()

	for _, acc := range w.Accounts {
		h, err := flags.ParseAddress(acc.Address)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		st := chain.GetAccountState(h)
		var balance util.Fixed8
		if st != nil {
			balance = util.Fixed8(st.Balance.Uint64())
		}
		fmt.Fprintf(ctx.App.Writer, "%s: %s\n", acc.Address, balance)
	}
	return nil
}
