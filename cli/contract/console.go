package contract

import (
	"fmt"
	stdio "io"

	"github.com/chzyer/readline"
	"github.com/holiman/uint256"
	"github.com/kballard/go-shellquote"
	"github.com/localnet-dev/localnet/cli/flags"
	"github.com/localnet-dev/localnet/pkg/core"
	"github.com/localnet-dev/localnet/pkg/core/transaction"
	"github.com/localnet-dev/localnet/pkg/util"
	"github.com/localnet-dev/localnet/pkg/wallet"
	"github.com/urfave/cli"
)

const consoleHelp = `Commands:
  deploy <name> [<param>...]            deploy a registered implementation
  invoke <hash> <method> [<param>...]   invoke a method in a transaction
  call <hash> <method> [<param>...]     read-only method call
  transfer <address> <amount>           move native tokens
  balance <address>                     print an account balance
  registry                              list registered implementations
  height                                print the current block height
  help                                  print this help
  exit                                  leave the console
`

// console is an interactive REPL bound to an open chain and a signing
// account.
type console struct {
	chain   *core.Blockchain
	account *wallet.Account
	printer stdio.Writer
}

func startConsole(ctx *cli.Context) error {
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

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "localnet> ",
		HistoryFile: "",
	})
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer rl.Close()

	c := &console{chain: chain, account: acc, printer: rl.Stdout()}
	fmt.Fprintf(c.printer, "signing as %s, type 'help' for commands\n", acc.Address)
	for {
		line, err := rl.Readline()
		if err != nil {
			return nil
		}
		args, err := shellquote.Split(line)
		if err != nil {
			fmt.Fprintf(c.printer, "bad input: %s\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return nil
		}
		if err := c.dispatch(args[0], args[1:]); err != nil {
			fmt.Fprintf(c.printer, "error: %s\n", err)
		}
	}
}

func (c *console) dispatch(cmd string, args []string) error {
	switch cmd {
	case "help":
		fmt.Fprint(c.printer, consoleHelp)
		return nil
	case "deploy":
		return c.deploy(args)
	case "invoke":
		return c.invoke(args)
	case "call":
		return c.call(args)
	case "transfer":
		return c.transfer(args)
	case "balance":
		return c.balance(args)
	case "registry":
		for _, name := range c.chain.Registry().Names() {
			fmt.Fprintln(c.printer, name)
		}
		return nil
	case "height":
		fmt.Fprintln(c.printer, c.chain.BlockHeight())
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (c *console) defaultFee() util.Fixed8 {
	fee, _ := util.Fixed8FromString(defaultSystemFee)
	return fee
}

func (c *console) deploy(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: deploy <name> [<param>...]")
	}
	impl, ok := c.chain.Registry().Get(args[0])
	if !ok {
		return fmt.Errorf("implementation %s is not registered", args[0])
	}
	params, err := parseParams(args[1:])
	if err != nil {
		return err
	}
	aer, err := sendTx(c.chain, c.account, transaction.DeployType, &transaction.Deploy{
		ContractName: args[0],
		Manifest:     *impl.Manifest(),
		Params:       params,
	}, c.defaultFee())
	if err != nil {
		return err
	}
	printExecResult(c.printer, aer)
	return nil
}

func (c *console) invoke(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: invoke <hash> <method> [<param>...]")
	}
	h, err := flags.ParseAddress(args[0])
	if err != nil {
		return err
	}
	params, err := parseParams(args[2:])
	if err != nil {
		return err
	}
	aer, err := sendTx(c.chain, c.account, transaction.InvokeType, &transaction.Invoke{
		Contract: h,
		Method:   args[1],
		Params:   params,
	}, c.defaultFee())
	if err != nil {
		return err
	}
	printExecResult(c.printer, aer)
	return nil
}

func (c *console) call(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: call <hash> <method> [<param>...]")
	}
	h, err := flags.ParseAddress(args[0])
	if err != nil {
		return err
	}
	params, err := parseParams(args[2:])
	if err != nil {
		return err
	}
	aer, err := c.chain.CallContract(h, args[1], params)
	if err != nil {
		return err
	}
	printExecResult(c.printer, aer)
	return nil
}

func (c *console) transfer(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: transfer <address> <amount>")
	}
	to, err := flags.ParseAddress(args[0])
	if err != nil {
		return err
	}
	amount, err := util.Fixed8FromString(args[1])
	if err != nil {
		return err
	}
	aer, err := sendTx(c.chain, c.account, transaction.TransferType, &transaction.Transfer{
		To:     to,
		Amount: uint256.NewInt(uint64(amount)),
	}, c.defaultFee())
	if err != nil {
		return err
	}
	printExecResult(c.printer, aer)
	return nil
}

func (c *console) balance(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: balance <address>")
	}
	h, err := flags.ParseAddress(args[0])
	if err != nil {
		return err
	}
	var balance util.Fixed8
	if st := c.chain.GetAccountState(h); st != nil {
		balance = util.Fixed8(st.Balance.Uint64())
	}
	fmt.Fprintln(c.printer, balance)
	return nil
}
