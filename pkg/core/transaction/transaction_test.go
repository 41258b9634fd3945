package transaction

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/localnet-dev/localnet/pkg/crypto/keys"
	"github.com/localnet-dev/localnet/pkg/smartcontract"
	"github.com/localnet-dev/localnet/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMagic uint32 = 42

func newSignedInvoke(t *testing.T) (*Transaction, *keys.PrivateKey) {
	t.Helper()
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)

	tx := New(InvokeType, &Invoke{
		Contract: util.Uint160{0xca, 0xfe},
		Method:   "setMessage",
		Params:   smartcontract.Parameters{smartcontract.Make("hi there")},
	})
	tx.Nonce = 1
	tx.Sender = priv.GetScriptHash()
	tx.SystemFee = 100_0000
	tx.ValidUntilBlock = 100
	require.NoError(t, tx.Sign(testMagic, priv))
	return tx, priv
}

func TestTransactionRoundTrip(t *testing.T) {
	tx, _ := newSignedInvoke(t)

	data, err := tx.Bytes()
	require.NoError(t, err)

	dec, err := NewTransactionFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, tx.Hash(), dec.Hash())
	assert.Equal(t, tx.Sender, dec.Sender)
	assert.Equal(t, tx.Witness, dec.Witness)

	inv, ok := dec.Data.(*Invoke)
	require.True(t, ok)
	assert.Equal(t, "setMessage", inv.Method)
	require.NoError(t, dec.VerifyWitness(testMagic))
}

func TestTransferRoundTrip(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)

	tx := New(TransferType, &Transfer{
		To:     util.Uint160{7},
		Amount: uint256.NewInt(100500),
	})
	tx.Sender = priv.GetScriptHash()
	tx.ValidUntilBlock = 10
	require.NoError(t, tx.Sign(testMagic, priv))

	data, err := tx.Bytes()
	require.NoError(t, err)
	dec, err := NewTransactionFromBytes(data)
	require.NoError(t, err)

	tr, ok := dec.Data.(*Transfer)
	require.True(t, ok)
	assert.Equal(t, uint64(100500), tr.Amount.Uint64())
}

func TestSignRequiresMatchingKey(t *testing.T) {
	tx, _ := newSignedInvoke(t)
	other, err := keys.NewPrivateKey()
	require.NoError(t, err)
	require.Error(t, tx.Sign(testMagic, other))
}

func TestVerifyWitness(t *testing.T) {
	tx, priv := newSignedInvoke(t)

	t.Run("ok", func(t *testing.T) {
		require.NoError(t, tx.VerifyWitness(testMagic))
	})
	t.Run("wrong network", func(t *testing.T) {
		require.Error(t, tx.VerifyWitness(testMagic+1))
	})
	t.Run("tampered field", func(t *testing.T) {
		data, err := tx.Bytes()
		require.NoError(t, err)
		// Bump the nonce in the serialized form.
		data[0]++
		dec, err := NewTransactionFromBytes(data)
		require.NoError(t, err)
		require.Error(t, dec.VerifyWitness(testMagic))
	})
	t.Run("wrong key", func(t *testing.T) {
		other, err := keys.NewPrivateKey()
		require.NoError(t, err)
		tampered := *tx
		tampered.Witness.PublicKey = other.PublicKey().Bytes()
		require.Error(t, tampered.VerifyWitness(testMagic))
	})
	_ = priv
}

func TestDecodeUnknownType(t *testing.T) {
	tx, _ := newSignedInvoke(t)
	data, err := tx.Bytes()
	require.NoError(t, err)
	// The type byte follows nonce(4) + sender(20) + fees(16) + vub(4).
	data[44] = 0x77
	_, err = NewTransactionFromBytes(data)
	require.ErrorIs(t, err, ErrUnknownType)
}
