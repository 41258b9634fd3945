package wallet

import (
	"path/filepath"
	"testing"

	"github.com/localnet-dev/localnet/pkg/crypto/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testScrypt = keys.ScryptParams{N: 256, R: 1, P: 1}

func newTestWallet(t *testing.T) *Wallet {
	t.Helper()
	w, err := NewWallet(filepath.Join(t.TempDir(), "wallet.json"))
	require.NoError(t, err)
	w.Scrypt = testScrypt
	return w
}

func TestCreateAccountAndReload(t *testing.T) {
	w := newTestWallet(t)
	account, err := w.CreateAccount("deployer", "pass")
	require.NoError(t, err)
	require.True(t, account.CanSign())
	assert.NotEmpty(t, account.EncryptedWIF)

	reloaded, err := NewWalletFromFile(w.Path())
	require.NoError(t, err)
	require.Len(t, reloaded.Accounts, 1)
	assert.Equal(t, testScrypt, reloaded.Scrypt)

	got := reloaded.Accounts[0]
	assert.Equal(t, "deployer", got.Label)
	assert.Equal(t, account.Address, got.Address)
	assert.False(t, got.CanSign())

	require.Error(t, got.Decrypt("wrong", reloaded.Scrypt))
	require.NoError(t, got.Decrypt("pass", reloaded.Scrypt))
	require.True(t, got.CanSign())
	assert.Equal(t, account.PrivateKey().Bytes(), got.PrivateKey().Bytes())
}

func TestGetAccount(t *testing.T) {
	w := newTestWallet(t)
	a1, err := w.CreateAccount("one", "pass")
	require.NoError(t, err)
	a2, err := w.CreateAccount("two", "pass")
	require.NoError(t, err)

	assert.Equal(t, a1, w.GetAccount(a1.ScriptHash()))
	assert.Equal(t, a2, w.GetAccount(a2.ScriptHash()))

	stranger, err := NewAccount()
	require.NoError(t, err)
	assert.Nil(t, w.GetAccount(stranger.ScriptHash()))
}

func TestGetChangeAddress(t *testing.T) {
	w := newTestWallet(t)
	_, err := w.GetChangeAddress()
	require.Error(t, err)

	a1, err := w.CreateAccount("one", "pass")
	require.NoError(t, err)
	a2, err := w.CreateAccount("two", "pass")
	require.NoError(t, err)

	got, err := w.GetChangeAddress()
	require.NoError(t, err)
	assert.Equal(t, a1, got)

	a1.Locked = true
	got, err = w.GetChangeAddress()
	require.NoError(t, err)
	assert.Equal(t, a2, got)

	a2.Default = true
	a1.Locked = false
	got, err = w.GetChangeAddress()
	require.NoError(t, err)
	assert.Equal(t, a2, got)
}

func TestAccountFromWIF(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)

	account, err := NewAccountFromWIF(priv.WIF())
	require.NoError(t, err)
	assert.Equal(t, priv.Address(), account.Address)
	assert.Equal(t, priv.GetScriptHash(), account.ScriptHash())
}

func TestAccountFromEncryptedWIF(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	encrypted, err := keys.EncryptKey(priv, "pass", testScrypt)
	require.NoError(t, err)

	account, err := NewAccountFromEncryptedWIF(encrypted, "pass", testScrypt)
	require.NoError(t, err)
	assert.Equal(t, priv.Address(), account.Address)

	_, err = NewAccountFromEncryptedWIF(encrypted, "wrong", testScrypt)
	require.Error(t, err)
}

func TestAccountClose(t *testing.T) {
	account, err := NewAccount()
	require.NoError(t, err)
	require.NoError(t, account.Encrypt("pass", testScrypt))
	account.Close()
	assert.False(t, account.CanSign())
	assert.Nil(t, account.PrivateKey())
}
