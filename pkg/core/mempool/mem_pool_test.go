package mempool

import (
	"testing"

	"github.com/localnet-dev/localnet/pkg/core/transaction"
	"github.com/localnet-dev/localnet/pkg/smartcontract"
	"github.com/localnet-dev/localnet/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPoolTx(sender util.Uint160, nonce uint32, netFee uint64) *transaction.Transaction {
	tx := transaction.New(transaction.InvokeType, &transaction.Invoke{
		Contract: util.Uint160{1},
		Method:   "message",
		Params:   smartcontract.Parameters{},
	})
	tx.Sender = sender
	tx.Nonce = nonce
	tx.NetworkFee = netFee
	tx.ValidUntilBlock = 100
	return tx
}

func TestAddAndGet(t *testing.T) {
	mp := New(10)
	tx := newPoolTx(util.Uint160{1}, 1, 0)

	require.NoError(t, mp.Add(tx))
	assert.Equal(t, 1, mp.Count())
	assert.True(t, mp.ContainsKey(tx.Hash()))

	got, ok := mp.TryGetValue(tx.Hash())
	require.True(t, ok)
	assert.Equal(t, tx, got)

	require.ErrorIs(t, mp.Add(tx), ErrDup)
}

func TestNonceConflict(t *testing.T) {
	mp := New(10)
	sender := util.Uint160{1}

	require.NoError(t, mp.Add(newPoolTx(sender, 1, 10)))
	require.ErrorIs(t, mp.Add(newPoolTx(sender, 1, 20)), ErrConflict)
	require.NoError(t, mp.Add(newPoolTx(sender, 2, 10)))
}

func TestFeeOrdering(t *testing.T) {
	mp := New(10)
	for i, fee := range []uint64{10, 50, 30} {
		require.NoError(t, mp.Add(newPoolTx(util.Uint160{byte(i + 1)}, 1, fee)))
	}

	txes := mp.GetVerifiedTransactions(0)
	require.Len(t, txes, 3)
	assert.Equal(t, uint64(50), txes[0].NetworkFee)
	assert.Equal(t, uint64(30), txes[1].NetworkFee)
	assert.Equal(t, uint64(10), txes[2].NetworkFee)

	limited := mp.GetVerifiedTransactions(2)
	require.Len(t, limited, 2)
	assert.Equal(t, uint64(50), limited[0].NetworkFee)
}

func TestCapacityEviction(t *testing.T) {
	mp := New(3)
	cheap := newPoolTx(util.Uint160{1}, 1, 1)
	require.NoError(t, mp.Add(cheap))
	require.NoError(t, mp.Add(newPoolTx(util.Uint160{2}, 1, 10)))
	require.NoError(t, mp.Add(newPoolTx(util.Uint160{3}, 1, 10)))

	// Doesn't pay more than the worst pooled one.
	require.ErrorIs(t, mp.Add(newPoolTx(util.Uint160{4}, 1, 1)), ErrOOM)
	assert.True(t, mp.ContainsKey(cheap.Hash()))

	// Outbids the cheapest one.
	rich := newPoolTx(util.Uint160{5}, 1, 100)
	require.NoError(t, mp.Add(rich))
	assert.Equal(t, 3, mp.Count())
	assert.False(t, mp.ContainsKey(cheap.Hash()))
	assert.True(t, mp.ContainsKey(rich.Hash()))
}

func TestRemove(t *testing.T) {
	mp := New(10)
	tx := newPoolTx(util.Uint160{1}, 1, 0)
	require.NoError(t, mp.Add(tx))

	mp.Remove(tx.Hash())
	assert.Equal(t, 0, mp.Count())
	assert.False(t, mp.ContainsKey(tx.Hash()))

	// Removing a missing hash is a no-op.
	mp.Remove(tx.Hash())
}

func TestRemoveStale(t *testing.T) {
	mp := New(10)
	keep := newPoolTx(util.Uint160{1}, 1, 0)
	drop := newPoolTx(util.Uint160{2}, 1, 0)
	require.NoError(t, mp.Add(keep))
	require.NoError(t, mp.Add(drop))

	mp.RemoveStale(func(tx *transaction.Transaction) bool {
		return tx.Hash() == keep.Hash()
	})
	assert.Equal(t, 1, mp.Count())
	assert.True(t, mp.ContainsKey(keep.Hash()))
	assert.False(t, mp.ContainsKey(drop.Hash()))
}
