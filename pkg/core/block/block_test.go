package block

import (
	"testing"

	"github.com/localnet-dev/localnet/pkg/core/transaction"
	"github.com/localnet-dev/localnet/pkg/crypto/keys"
	"github.com/localnet-dev/localnet/pkg/io"
	"github.com/localnet-dev/localnet/pkg/smartcontract"
	"github.com/localnet-dev/localnet/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTx(t *testing.T, nonce uint32) *transaction.Transaction {
	t.Helper()
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	tx := transaction.New(transaction.InvokeType, &transaction.Invoke{
		Contract: util.Uint160{1},
		Method:   "message",
		Params:   smartcontract.Parameters{},
	})
	tx.Nonce = nonce
	tx.Sender = priv.GetScriptHash()
	tx.ValidUntilBlock = 100
	require.NoError(t, tx.Sign(42, priv))
	return tx
}

func TestHeaderRoundTrip(t *testing.T) {
	h := &Header{
		Version:    0,
		PrevHash:   util.Uint256{1, 2},
		MerkleRoot: util.Uint256{3, 4},
		Timestamp:  1660000000000,
		Index:      10,
		Nonce:      0xdeadbeef,
	}

	data, err := io.ToByteArray(h)
	require.NoError(t, err)

	dec := new(Header)
	require.NoError(t, io.FromByteArray(dec, data))
	assert.Equal(t, h.Hash(), dec.Hash())
	assert.Equal(t, h.Index, dec.Index)
	assert.Equal(t, h.Timestamp, dec.Timestamp)
}

func TestBlockRoundTrip(t *testing.T) {
	b := New(Header{
		PrevHash:  util.Uint256{7},
		Timestamp: 1660000000000,
		Index:     1,
		Nonce:     1,
	}, []*transaction.Transaction{newTestTx(t, 1), newTestTx(t, 2)})

	data, err := io.ToByteArray(b)
	require.NoError(t, err)

	dec := new(Block)
	require.NoError(t, io.FromByteArray(dec, data))
	assert.Equal(t, b.Hash(), dec.Hash())
	require.Len(t, dec.Transactions, 2)
	assert.Equal(t, b.Transactions[0].Hash(), dec.Transactions[0].Hash())
	assert.Equal(t, b.MerkleRoot, dec.ComputeMerkleRoot())
}

func TestMerkleRootBinding(t *testing.T) {
	b := New(Header{Index: 1}, []*transaction.Transaction{newTestTx(t, 1)})
	hashBefore := b.Hash()

	b.Transactions = append(b.Transactions, newTestTx(t, 2))
	assert.NotEqual(t, b.MerkleRoot, b.ComputeMerkleRoot())

	b.RebuildMerkleRoot()
	assert.NotEqual(t, hashBefore, b.Hash())
	assert.Equal(t, b.MerkleRoot, b.ComputeMerkleRoot())
}

func TestEmptyBlockMerkle(t *testing.T) {
	b := New(Header{Index: 5}, nil)
	assert.Equal(t, util.Uint256{}, b.MerkleRoot)
}
