package chaintest

import (
	"testing"

	"github.com/localnet-dev/localnet/pkg/core/transaction"
	"github.com/localnet-dev/localnet/pkg/crypto/keys"
	"github.com/localnet-dev/localnet/pkg/util"
	"github.com/stretchr/testify/require"
)

// Signer is an account that can sign test transactions.
type Signer struct {
	privateKey *keys.PrivateKey
}

// NewSigner wraps the given key into a Signer.
func NewSigner(priv *keys.PrivateKey) *Signer {
	return &Signer{privateKey: priv}
}

// ScriptHash returns the account script hash of the signer.
func (s *Signer) ScriptHash() util.Uint160 {
	return s.privateKey.GetScriptHash()
}

// Address returns the address of the signer.
func (s *Signer) Address() string {
	return s.privateKey.Address()
}

// PrivateKey returns the key behind the signer.
func (s *Signer) PrivateKey() *keys.PrivateKey {
	return s.privateKey
}

// SignTx signs the transaction for the given network failing the test on
// error.
func (s *Signer) SignTx(t testing.TB, magic uint32, tx *transaction.Transaction) {
	require.NoError(t, tx.Sign(magic, s.privateKey))
}
