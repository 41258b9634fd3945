// Package contract contains the CLI commands deploying and invoking
// contracts on the simulator chain.
package contract

import (
	"fmt"
	stdio "io"

	"github.com/localnet-dev/localnet/cli/flags"
	"github.com/localnet-dev/localnet/cli/input"
	"github.com/localnet-dev/localnet/cli/options"
	"github.com/localnet-dev/localnet/pkg/core"
	"github.com/localnet-dev/localnet/pkg/core/state"
	"github.com/localnet-dev/localnet/pkg/core/transaction"
	"github.com/localnet-dev/localnet/pkg/smartcontract"
	"github.com/localnet-dev/localnet/pkg/util"
	"github.com/localnet-dev/localnet/pkg/wallet"
	"github.com/urfave/cli"
)

// defaultSystemFee covers any reasonable deploy or invocation.
const defaultSystemFee = "20"

var (
	addressFlag = flags.AddressFlag{
		Name:  "address, a",
		Usage: "signing account address (the wallet's default account is used when omitted)",
	}
	gasFlag = flags.Fixed8Flag{
		Name:  "gas, g",
		Usage: "system fee to pay for the transaction",
	}
)

// NewCommands returns the 'contract' command with all subcommands.
func NewCommands() []cli.Command {
	txFlags := []cli.Flag{options.Config, options.Debug, options.Wallet, addressFlag, gasFlag}
	return []cli.Command{{
		Name:  "contract",
		Usage: "deploy and invoke contracts",
		Subcommands: []cli.Command{
			{
				Name:      "deploy",
				Usage:     "deploy a registered contract implementation",
				ArgsUsage: "<name> [<param>...]",
				Action:    deployContract,
				Flags:     txFlags,
			},
			{
				Name:      "invoke",
				Usage:     "invoke a method of a deployed contract in a transaction",
				ArgsUsage: "<hash-or-address> <method> [<param>...]",
				Action:    invokeContract,
				Flags:     txFlags,
			},
			{
				Name:      "call",
				Usage:     "call a method of a deployed contract without a transaction",
				ArgsUsage: "<hash-or-address> <method> [<param>...]",
				Action:    callContract,
				Flags:     []cli.Flag{options.Config, options.Debug},
			},
			{
				Name:   "console",
				Usage:  "start an interactive console operating on the chain",
				Action: startConsole,
				Flags:  []cli.Flag{options.Config, options.Debug, options.Wallet},
			},
		},
	}}
}

func openChain(ctx *cli.Context) (*core.Blockchain, error) {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return nil, err
	}
	log, err := options.HandleLoggingParams(ctx.Bool("debug"), cfg.ApplicationConfiguration)
	if err != nil {
		return nil, err
	}
	return options.GetChainFromContext(ctx, cfg, log)
}

// getSigningAccount opens the wallet, picks the requested (or default)
// account and decrypts its key.
func getSigningAccount(ctx *cli.Context, w stdio.Writer) (*wallet.Account, error) {
	path := ctx.String("wallet")
	if path == "" {
		return nil, options.ErrNoWallet
	}
	wall, err := wallet.NewWalletFromFile(path)
	if err != nil {
		return nil, err
	}
	defer wall.Close()

	var acc *wallet.Account
	if addr := flags.AddressFromContext(ctx, "address"); addr.IsSet {
		acc = wall.GetAccount(addr.Uint160())
		if acc == nil {
			return nil, fmt.Errorf("account %s is missing from the wallet", addr)
		}
	} else {
		acc, err = wall.GetChangeAddress()
		if err != nil {
			return nil, err
		}
	}
	pass, err := input.ReadPassword(w, fmt.Sprintf("Enter password for %s > ", acc.Address))
	if err != nil {
		return nil, err
	}
	if err := acc.Decrypt(pass, wall.Scrypt); err != nil {
		return nil, err
	}
	return acc, nil
}

// sendTx signs the transaction, pools it, mines a block and returns the
// execution result.
func sendTx(chain *core.Blockchain, acc *wallet.Account, typ transaction.Type, data transaction.Payload, fee util.Fixed8) (*state.AppExecResult, error) {
	tx := transaction.New(typ, data)
	tx.Sender = acc.ScriptHash()
	tx.SystemFee = uint64(fee)
	tx.ValidUntilBlock = chain.BlockHeight() + chain.GetConfig().MaxValidUntilBlockIncrement
	tx.Nonce = 1
	if st := chain.GetAccountState(tx.Sender); st != nil {
		tx.Nonce = st.Nonce + 1
	}
	if err := tx.Sign(chain.GetConfig().Magic, acc.PrivateKey()); err != nil {
		return nil, err
	}
	if err := chain.PoolTx(tx); err != nil {
		return nil, err
	}
	if _, err := chain.MineBlock(); err != nil {
		return nil, err
	}
	return chain.GetAppExecResult(tx.Hash())
}

func printExecResult(w stdio.Writer, aer *state.AppExecResult) {
	fmt.Fprintf(w, "transaction: %s\n", aer.TxHash.StringLE())
	fmt.Fprintf(w, "state: %s\n", aer.State)
	fmt.Fprintf(w, "gas consumed: %s\n", util.Fixed8(aer.GasConsumed))
	if aer.FaultException != "" {
		fmt.Fprintf(w, "exception: %s\n", aer.FaultException)
	}
	if aer.Result.Type != smartcontract.VoidType {
		if data, err := aer.Result.MarshalJSON(); err == nil {
			fmt.Fprintf(w, "result: %s\n", data)
		}
	}
	for _, e := range aer.Events {
		fmt.Fprintf(w, "event: %s %s\n", e.Name, e.ScriptHash.StringLE())
	}
}

func deployContract(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) < 1 {
		return cli.NewExitError("contract name is required", 1)
	}
	params, err := parseParams(args[1:])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	chain, err := openChain(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer chain.Close()

	impl, ok := chain.Registry().Get(args[0])
	if !ok {
		return cli.NewExitError(fmt.Errorf("implementation %s is not registered", args[0]), 1)
	}
	acc, err := getSigningAccount(ctx, ctx.App.Writer)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer acc.Close()

	aer, err := sendTx(chain, acc, transaction.DeployType, &transaction.Deploy{
		ContractName: args[0],
		Manifest:     *impl.Manifest(),
		Params:       params,
	}, gasFromContext(ctx))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	printExecResult(ctx.App.Writer, aer)
	if aer.State == state.HaltState {
		fmt.Fprintf(ctx.App.Writer, "contract: %s\n", aer.Result.Hash160Value().StringLE())
	}
	return nil
}

func invokeContract(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) < 2 {
		return cli.NewExitError("contract hash and method are required", 1)
	}
	h, err := flags.ParseAddress(args[0])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	params, err := parseParams(args[2:])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	chain, err := openChain(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer chain.Close()

	acc, err := getSigningAccount(ctx, ctx.App.Writer)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer acc.Close()

	aer, err := sendTx(chain, acc, transaction.InvokeType, &transaction.Invoke{
		Contract: h,
		Method:   args[1],
		Params:   params,
	}, gasFromContext(ctx))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	printExecResult(ctx.App.Writer, aer)
	return nil
}

func callContract(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) < 2 {
		return cli.NewExitError("contract hash and method are required", 1)
	}
	h, err := flags.ParseAddress(args[0])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	params, err := parseParams(args[2:])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	chain, err := openChain(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer chain.Close()

	aer, err := chain.CallContract(h, args[1], params)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	printExecResult(ctx.App.Writer, aer)
	return nil
}

func gasFromContext(ctx *cli.Context) util.Fixed8 {
	fee := flags.Fixed8FromContext(ctx, "gas")
	if fee == 0 {
		fee, _ = util.Fixed8FromString(defaultSystemFee)
	}
	return fee
}
