package core

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/localnet-dev/localnet/pkg/config"
	"github.com/localnet-dev/localnet/pkg/core/block"
	"github.com/localnet-dev/localnet/pkg/core/contracts"
	"github.com/localnet-dev/localnet/pkg/core/interop"
	"github.com/localnet-dev/localnet/pkg/core/mempool"
	"github.com/localnet-dev/localnet/pkg/core/state"
	"github.com/localnet-dev/localnet/pkg/core/storage"
	"github.com/localnet-dev/localnet/pkg/core/transaction"
	"github.com/localnet-dev/localnet/pkg/crypto/keys"
	"github.com/localnet-dev/localnet/pkg/smartcontract"
	"github.com/localnet-dev/localnet/pkg/smartcontract/manifest"
	"github.com/localnet-dev/localnet/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var messageKey = []byte("message")

func newInboxContract() *contracts.Contract {
	c := contracts.New("Inbox")
	c.AddMethod(manifest.NewMethod(manifest.MethodDeploy, smartcontract.VoidType, false,
		manifest.Parameter{Name: "message", Type: smartcontract.StringType}),
		func(ic *interop.Context, params []smartcontract.Parameter) smartcontract.Parameter {
			ic.PutStorage(messageKey, []byte(params[0].StringValue()))
			return smartcontract.Make(nil)
		})
	c.AddMethod(manifest.NewMethod("message", smartcontract.StringType, true),
		func(ic *interop.Context, _ []smartcontract.Parameter) smartcontract.Parameter {
			return smartcontract.Make(string(ic.GetStorage(messageKey)))
		})
	c.AddMethod(manifest.NewMethod("setMessage", smartcontract.VoidType, false,
		manifest.Parameter{Name: "newMessage", Type: smartcontract.StringType}),
		func(ic *interop.Context, params []smartcontract.Parameter) smartcontract.Parameter {
			newMessage := params[0].StringValue()
			if newMessage == "" {
				interop.Fault("message cannot be empty")
			}
			ic.Notify("MessageChanged",
				smartcontract.Make(string(ic.GetStorage(messageKey))),
				smartcontract.Make(newMessage))
			ic.PutStorage(messageKey, []byte(newMessage))
			return smartcontract.Make(nil)
		})
	c.AddEvent("MessageChanged",
		manifest.Parameter{Name: "oldMessage", Type: smartcontract.StringType},
		manifest.Parameter{Name: "newMessage", Type: smartcontract.StringType})
	return c
}

func newTestChain(t *testing.T) *Blockchain {
	return newTestChainWithStore(t, storage.NewMemoryStore())
}

func newTestChainWithStore(t *testing.T, s storage.Store) *Blockchain {
	t.Helper()
	bc, err := NewBlockchain(s, config.DefaultProtocolConfiguration(), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, bc.RegisterContract(newInboxContract()))
	return bc
}

func signedTx(t *testing.T, bc *Blockchain, priv *keys.PrivateKey, typ transaction.Type, data transaction.Payload) *transaction.Transaction {
	t.Helper()
	tx := transaction.New(typ, data)
	tx.Sender = priv.GetScriptHash()
	tx.Nonce = bc.GetAccountState(tx.Sender).Nonce + 1
	tx.SystemFee = 20_0000_0000
	tx.ValidUntilBlock = bc.BlockHeight() + 10
	require.NoError(t, tx.Sign(bc.GetConfig().Magic, priv))
	return tx
}

func poolAndMine(t *testing.T, bc *Blockchain, txes ...*transaction.Transaction) {
	t.Helper()
	for _, tx := range txes {
		require.NoError(t, bc.PoolTx(tx))
	}
	b, err := bc.MineBlock()
	require.NoError(t, err)
	require.Len(t, b.Transactions, len(txes))
}

func deployInbox(t *testing.T, bc *Blockchain, priv *keys.PrivateKey, message string) util.Uint160 {
	t.Helper()
	impl, _ := bc.management.Registry().Get("Inbox")
	tx := signedTx(t, bc, priv, transaction.DeployType, &transaction.Deploy{
		ContractName: "Inbox",
		Manifest:     *impl.Manifest(),
		Params:       smartcontract.Parameters{smartcontract.Make(message)},
	})
	poolAndMine(t, bc, tx)

	aer, err := bc.GetAppExecResult(tx.Hash())
	require.NoError(t, err)
	require.Equal(t, state.HaltState, aer.State, aer.FaultException)
	return aer.Result.Hash160Value()
}

func TestGenesis(t *testing.T) {
	bc := newTestChain(t)
	defer bc.Close()

	assert.Equal(t, uint32(0), bc.BlockHeight())
	privKeys := bc.StandbyKeys()
	require.Len(t, privKeys, config.DefaultStandbyAccounts)
	for _, priv := range privKeys {
		account := bc.GetAccountState(priv.GetScriptHash())
		assert.Equal(t, config.DefaultInitialBalance, account.Balance.Uint64())
	}

	genesis, err := bc.GetBlockByIndex(0)
	require.NoError(t, err)
	assert.Equal(t, genesis.Hash(), bc.CurrentBlockHash())
}

func TestRestoreExisting(t *testing.T) {
	s := storage.NewMemoryStore()
	bc := newTestChainWithStore(t, s)
	priv := bc.StandbyKeys()[0]
	h := deployInbox(t, bc, priv, "hi there")
	height := bc.BlockHeight()

	restored, err := NewBlockchain(s, config.DefaultProtocolConfiguration(), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, restored.RegisterContract(newInboxContract()))

	assert.Equal(t, height, restored.BlockHeight())
	assert.Equal(t, bc.CurrentBlockHash(), restored.CurrentBlockHash())
	assert.Equal(t, priv.GetScriptHash(), restored.StandbyKeys()[0].GetScriptHash())
	require.NotNil(t, restored.GetContractState(h))
}

func TestTransfer(t *testing.T) {
	bc := newTestChain(t)
	defer bc.Close()

	from := bc.StandbyKeys()[0]
	to := bc.StandbyKeys()[1].GetScriptHash()
	amount := uint256.NewInt(10_0000_0000)

	tx := signedTx(t, bc, from, transaction.TransferType, &transaction.Transfer{
		To:     to,
		Amount: amount,
	})
	poolAndMine(t, bc, tx)

	aer, err := bc.GetAppExecResult(tx.Hash())
	require.NoError(t, err)
	assert.Equal(t, state.HaltState, aer.State)

	sender := bc.GetAccountState(from.GetScriptHash())
	expected := config.DefaultInitialBalance - amount.Uint64() - tx.FeeTotal()
	assert.Equal(t, expected, sender.Balance.Uint64())
	assert.Equal(t, uint32(1), sender.Nonce)

	receiver := bc.GetAccountState(to)
	assert.Equal(t, config.DefaultInitialBalance+amount.Uint64(), receiver.Balance.Uint64())
}

func TestDeployAndInvoke(t *testing.T) {
	bc := newTestChain(t)
	defer bc.Close()

	priv := bc.StandbyKeys()[0]
	h := deployInbox(t, bc, priv, "hi there")

	cs := bc.GetContractState(h)
	require.NotNil(t, cs)
	assert.Equal(t, "Inbox", cs.ContractName)
	assert.Equal(t, state.CreateContractHash(priv.GetScriptHash(), cs.Checksum, "Inbox"), h)

	// The deployment parameter went into contract storage.
	item, err := bc.GetStorageItem(h, messageKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi there"), item)

	// Read through a transactionless call.
	res, err := bc.CallContract(h, "message", nil)
	require.NoError(t, err)
	require.Equal(t, state.HaltState, res.State, res.FaultException)
	assert.Equal(t, "hi there", res.Result.StringValue())

	// Change the message with a transaction.
	tx := signedTx(t, bc, priv, transaction.InvokeType, &transaction.Invoke{
		Contract: h,
		Method:   "setMessage",
		Params:   smartcontract.Parameters{smartcontract.Make("bye")},
	})
	poolAndMine(t, bc, tx)

	aer, err := bc.GetAppExecResult(tx.Hash())
	require.NoError(t, err)
	require.Equal(t, state.HaltState, aer.State, aer.FaultException)
	require.Len(t, aer.Events, 1)
	assert.Equal(t, "MessageChanged", aer.Events[0].Name)
	assert.Equal(t, "hi there", aer.Events[0].Item[0].StringValue())
	assert.Equal(t, "bye", aer.Events[0].Item[1].StringValue())

	res, err = bc.CallContract(h, "message", nil)
	require.NoError(t, err)
	assert.Equal(t, "bye", res.Result.StringValue())
}

func TestFaultedInvoke(t *testing.T) {
	bc := newTestChain(t)
	defer bc.Close()

	priv := bc.StandbyKeys()[0]
	h := deployInbox(t, bc, priv, "hi there")
	balanceBefore := bc.GetAccountState(priv.GetScriptHash()).Balance.Uint64()

	tx := signedTx(t, bc, priv, transaction.InvokeType, &transaction.Invoke{
		Contract: h,
		Method:   "setMessage",
		Params:   smartcontract.Parameters{smartcontract.Make("")},
	})
	poolAndMine(t, bc, tx)

	aer, err := bc.GetAppExecResult(tx.Hash())
	require.NoError(t, err)
	assert.Equal(t, state.FaultState, aer.State)
	assert.Contains(t, aer.FaultException, "message cannot be empty")
	assert.Equal(t, tx.SystemFee, aer.GasConsumed)

	// State is untouched, the fee is spent anyway.
	res, err := bc.CallContract(h, "message", nil)
	require.NoError(t, err)
	assert.Equal(t, "hi there", res.Result.StringValue())

	account := bc.GetAccountState(priv.GetScriptHash())
	assert.Equal(t, balanceBefore-tx.FeeTotal(), account.Balance.Uint64())
	assert.Equal(t, tx.Nonce, account.Nonce)
}

func TestGasExhaustionFaults(t *testing.T) {
	bc := newTestChain(t)
	defer bc.Close()

	priv := bc.StandbyKeys()[0]
	h := deployInbox(t, bc, priv, "hi there")

	tx := transaction.New(transaction.InvokeType, &transaction.Invoke{
		Contract: h,
		Method:   "setMessage",
		Params:   smartcontract.Parameters{smartcontract.Make("bye")},
	})
	tx.Sender = priv.GetScriptHash()
	tx.Nonce = bc.GetAccountState(tx.Sender).Nonce + 1
	tx.SystemFee = 1 // nowhere near enough
	tx.ValidUntilBlock = bc.BlockHeight() + 10
	require.NoError(t, tx.Sign(bc.GetConfig().Magic, priv))
	poolAndMine(t, bc, tx)

	aer, err := bc.GetAppExecResult(tx.Hash())
	require.NoError(t, err)
	assert.Equal(t, state.FaultState, aer.State)
	assert.Contains(t, aer.FaultException, "gas limit exceeded")
}

func TestPoolTxRejections(t *testing.T) {
	bc := newTestChain(t)
	defer bc.Close()
	priv := bc.StandbyKeys()[0]

	t.Run("expired", func(t *testing.T) {
		tx := signedTx(t, bc, priv, transaction.TransferType, &transaction.Transfer{
			To: util.Uint160{1}, Amount: uint256.NewInt(1),
		})
		poolAndMine(t, bc, tx)
		late := transaction.New(transaction.TransferType, &transaction.Transfer{
			To: util.Uint160{1}, Amount: uint256.NewInt(1),
		})
		late.Sender = priv.GetScriptHash()
		late.Nonce = bc.GetAccountState(late.Sender).Nonce + 1
		late.SystemFee = 100_0000
		late.ValidUntilBlock = 0
		require.NoError(t, late.Sign(bc.GetConfig().Magic, priv))
		require.ErrorIs(t, bc.PoolTx(late), ErrExpired)
	})

	t.Run("nonce too low", func(t *testing.T) {
		tx := transaction.New(transaction.TransferType, &transaction.Transfer{
			To: util.Uint160{1}, Amount: uint256.NewInt(1),
		})
		tx.Sender = priv.GetScriptHash()
		tx.Nonce = 0
		tx.SystemFee = 100_0000
		tx.ValidUntilBlock = bc.BlockHeight() + 10
		require.NoError(t, tx.Sign(bc.GetConfig().Magic, priv))
		require.ErrorIs(t, bc.PoolTx(tx), ErrNonceTooLow)
	})

	t.Run("bad witness", func(t *testing.T) {
		other, err := keys.NewPrivateKey()
		require.NoError(t, err)
		tx := signedTx(t, bc, priv, transaction.TransferType, &transaction.Transfer{
			To: util.Uint160{1}, Amount: uint256.NewInt(1),
		})
		tx.Witness.PublicKey = other.PublicKey().Bytes()
		require.Error(t, bc.PoolTx(tx))
	})

	t.Run("insufficient funds", func(t *testing.T) {
		pauper, err := keys.NewPrivateKey()
		require.NoError(t, err)
		tx := signedTx(t, bc, pauper, transaction.TransferType, &transaction.Transfer{
			To: util.Uint160{1}, Amount: uint256.NewInt(1),
		})
		require.ErrorIs(t, bc.PoolTx(tx), ErrInsufficientFunds)
	})

	t.Run("double pool", func(t *testing.T) {
		tx := signedTx(t, bc, priv, transaction.TransferType, &transaction.Transfer{
			To: util.Uint160{1}, Amount: uint256.NewInt(1),
		})
		require.NoError(t, bc.PoolTx(tx))
		require.ErrorIs(t, bc.PoolTx(tx), ErrAlreadyExists)
	})
}

func TestNonceSequencePerBlock(t *testing.T) {
	bc := newTestChain(t)
	defer bc.Close()
	priv := bc.StandbyKeys()[0]

	mkTransfer := func(nonce uint32, fee uint64) *transaction.Transaction {
		tx := transaction.New(transaction.TransferType, &transaction.Transfer{
			To: util.Uint160{1}, Amount: uint256.NewInt(1),
		})
		tx.Sender = priv.GetScriptHash()
		tx.Nonce = nonce
		tx.SystemFee = 100_0000
		tx.NetworkFee = fee
		tx.ValidUntilBlock = bc.BlockHeight() + 10
		require.NoError(t, tx.Sign(bc.GetConfig().Magic, priv))
		return tx
	}

	// The second transaction pays more, but it can't jump the queue: its
	// nonce only becomes valid after the first one is in.
	tx1 := mkTransfer(1, 10)
	tx2 := mkTransfer(2, 1000)
	require.NoError(t, bc.PoolTx(tx1))
	require.NoError(t, bc.PoolTx(tx2))

	b, err := bc.MineBlock()
	require.NoError(t, err)
	require.Len(t, b.Transactions, 2)
	assert.Equal(t, uint32(1), b.Transactions[0].Nonce)
	assert.Equal(t, uint32(2), b.Transactions[1].Nonce)
	assert.Equal(t, uint32(2), bc.GetAccountState(priv.GetScriptHash()).Nonce)
}

func TestMempoolConflict(t *testing.T) {
	bc := newTestChain(t)
	defer bc.Close()
	priv := bc.StandbyKeys()[0]

	tx1 := signedTx(t, bc, priv, transaction.TransferType, &transaction.Transfer{
		To: util.Uint160{1}, Amount: uint256.NewInt(1),
	})
	tx2 := signedTx(t, bc, priv, transaction.TransferType, &transaction.Transfer{
		To: util.Uint160{2}, Amount: uint256.NewInt(2),
	})
	require.NoError(t, bc.PoolTx(tx1))
	require.ErrorIs(t, bc.PoolTx(tx2), mempool.ErrConflict)
}

func TestBlockSubscription(t *testing.T) {
	bc := newTestChain(t)
	defer bc.Close()
	priv := bc.StandbyKeys()[0]

	blockCh := make(chan *block.Block, 8)
	execCh := make(chan *state.AppExecResult, 8)
	bc.SubscribeForBlocks(blockCh)
	bc.SubscribeForExecutions(execCh)
	defer bc.UnsubscribeFromBlocks(blockCh)
	defer bc.UnsubscribeFromExecutions(execCh)

	tx := signedTx(t, bc, priv, transaction.TransferType, &transaction.Transfer{
		To: util.Uint160{1}, Amount: uint256.NewInt(1),
	})
	poolAndMine(t, bc, tx)

	b := <-blockCh
	assert.Equal(t, bc.CurrentBlockHash(), b.Hash())
	aer := <-execCh
	assert.Equal(t, tx.Hash(), aer.TxHash)
}

func TestRejectDuplicateDeploy(t *testing.T) {
	bc := newTestChain(t)
	defer bc.Close()
	priv := bc.StandbyKeys()[0]
	deployInbox(t, bc, priv, "hi there")

	impl, _ := bc.management.Registry().Get("Inbox")
	tx := signedTx(t, bc, priv, transaction.DeployType, &transaction.Deploy{
		ContractName: "Inbox",
		Manifest:     *impl.Manifest(),
		Params:       smartcontract.Parameters{smartcontract.Make("again")},
	})
	poolAndMine(t, bc, tx)

	aer, err := bc.GetAppExecResult(tx.Hash())
	require.NoError(t, err)
	assert.Equal(t, state.FaultState, aer.State)
	assert.Contains(t, aer.FaultException, "already deployed")
}
