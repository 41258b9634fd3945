// Package chaintest contains a framework for automated contract testing.
// It spins up a whole simulator chain inside the test process, so contract
// code runs against the real execution and storage machinery with no
// network and no waiting.
package chaintest

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/localnet-dev/localnet/pkg/config"
	"github.com/localnet-dev/localnet/pkg/core"
	"github.com/localnet-dev/localnet/pkg/core/block"
	"github.com/localnet-dev/localnet/pkg/core/contracts"
	"github.com/localnet-dev/localnet/pkg/core/state"
	"github.com/localnet-dev/localnet/pkg/core/storage"
	"github.com/localnet-dev/localnet/pkg/core/transaction"
	"github.com/localnet-dev/localnet/pkg/crypto/keys"
	"github.com/localnet-dev/localnet/pkg/smartcontract"
	"github.com/localnet-dev/localnet/pkg/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// defaultSystemFee is attached to every test transaction, it's more than
// any reasonable test contract burns.
const defaultSystemFee = 20_0000_0000

// Executor is a wrapper over the chain driving it from tests.
type Executor struct {
	Chain *core.Blockchain
}

// NewSingle creates a new in-memory chain with the given contract
// implementations registered and returns an Executor over it. The chain is
// closed when the test finishes.
func NewSingle(t testing.TB, impls ...*contracts.Contract) *Executor {
	bc, err := core.NewBlockchain(storage.NewMemoryStore(),
		config.DefaultProtocolConfiguration(), zaptest.NewLogger(t))
	require.NoError(t, err)
	for _, impl := range impls {
		require.NoError(t, bc.RegisterContract(impl))
	}
	t.Cleanup(func() {
		require.NoError(t, bc.Close())
	})
	return &Executor{Chain: bc}
}

// Standby returns the i-th pre-funded genesis account.
func (e *Executor) Standby(i int) *Signer {
	return NewSigner(e.Chain.StandbyKeys()[i])
}

// NewAccount returns a fresh account holding the given amount, transferred
// from the first genesis account in a new block. With no amount given the
// account gets enough for a deploy and a handful of calls.
func (e *Executor) NewAccount(t testing.TB, amount ...uint64) *Signer {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	signer := NewSigner(priv)

	value := uint64(50_0000_0000)
	if len(amount) != 0 {
		value = amount[0]
	}
	e.Transfer(t, e.Standby(0), signer.ScriptHash(), value)
	return signer
}

// Nonce returns the next valid nonce of the given signer.
func (e *Executor) Nonce(s *Signer) uint32 {
	return e.Chain.GetAccountState(s.ScriptHash()).Nonce + 1
}

// NewTx returns a signed transaction from the given signer with sensible
// test defaults.
func (e *Executor) NewTx(t testing.TB, signer *Signer, typ transaction.Type, data transaction.Payload) *transaction.Transaction {
	tx := transaction.New(typ, data)
	tx.Sender = signer.ScriptHash()
	tx.Nonce = e.Nonce(signer)
	tx.SystemFee = defaultSystemFee
	tx.ValidUntilBlock = e.Chain.BlockHeight() + 10
	signer.SignTx(t, e.Chain.GetConfig().Magic, tx)
	return tx
}

// AddNewBlock pools the given transactions and mines them into a block.
func (e *Executor) AddNewBlock(t testing.TB, txes ...*transaction.Transaction) *block.Block {
	for _, tx := range txes {
		require.NoError(t, e.Chain.PoolTx(tx))
	}
	b, err := e.Chain.MineBlock()
	require.NoError(t, err)
	require.Len(t, b.Transactions, len(txes))
	return b
}

// CheckHalt requires the transaction to have executed successfully and
// returns its result.
func (e *Executor) CheckHalt(t testing.TB, h util.Uint256) *state.AppExecResult {
	aer, err := e.Chain.GetAppExecResult(h)
	require.NoError(t, err)
	require.Equal(t, state.HaltState, aer.State, aer.FaultException)
	return aer
}

// CheckFault requires the transaction to have faulted with the given
// substring in its error.
func (e *Executor) CheckFault(t testing.TB, h util.Uint256, s string) *state.AppExecResult {
	aer, err := e.Chain.GetAppExecResult(h)
	require.NoError(t, err)
	require.Equal(t, state.FaultState, aer.State)
	require.Contains(t, aer.FaultException, s)
	return aer
}

// DeployContract deploys the named registered implementation from the
// given signer and returns the new contract hash. The deployment must
// succeed.
func (e *Executor) DeployContract(t testing.TB, signer *Signer, name string, params ...smartcontract.Parameter) util.Uint160 {
	impl, ok := e.Chain.Registry().Get(name)
	require.True(t, ok, "implementation %s is not registered", name)

	tx := e.NewTx(t, signer, transaction.DeployType, &transaction.Deploy{
		ContractName: name,
		Manifest:     *impl.Manifest(),
		Params:       params,
	})
	e.AddNewBlock(t, tx)
	aer := e.CheckHalt(t, tx.Hash())
	return aer.Result.Hash160Value()
}

// Invoke calls the given contract method in a transaction and requires it
// to halt, returning the execution result.
func (e *Executor) Invoke(t testing.TB, signer *Signer, h util.Uint160, method string, params ...smartcontract.Parameter) *state.AppExecResult {
	tx := e.NewTx(t, signer, transaction.InvokeType, &transaction.Invoke{
		Contract: h,
		Method:   method,
		Params:   params,
	})
	e.AddNewBlock(t, tx)
	return e.CheckHalt(t, tx.Hash())
}

// InvokeFail calls the given contract method in a transaction and requires
// it to fault with the given substring in its error.
func (e *Executor) InvokeFail(t testing.TB, signer *Signer, h util.Uint160, method string, fault string, params ...smartcontract.Parameter) *state.AppExecResult {
	tx := e.NewTx(t, signer, transaction.InvokeType, &transaction.Invoke{
		Contract: h,
		Method:   method,
		Params:   params,
	})
	e.AddNewBlock(t, tx)
	return e.CheckFault(t, tx.Hash(), fault)
}

// Call invokes a contract method without a transaction requiring a halt,
// it's the way tests read contract state.
func (e *Executor) Call(t testing.TB, h util.Uint160, method string, params ...smartcontract.Parameter) smartcontract.Parameter {
	aer, err := e.Chain.CallContract(h, method, params)
	require.NoError(t, err)
	require.Equal(t, state.HaltState, aer.State, aer.FaultException)
	return aer.Result
}

// Transfer moves funds between accounts in a new block.
func (e *Executor) Transfer(t testing.TB, from *Signer, to util.Uint160, amount uint64) {
	tx := e.NewTx(t, from, transaction.TransferType, &transaction.Transfer{
		To:     to,
		Amount: uint256.NewInt(amount),
	})
	e.AddNewBlock(t, tx)
	e.CheckHalt(t, tx.Hash())
}

// Balance returns the current balance of the given account.
func (e *Executor) Balance(h util.Uint160) *uint256.Int {
	return e.Chain.GetAccountState(h).Balance
}
