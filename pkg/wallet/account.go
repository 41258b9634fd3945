package wallet

import (
	"errors"

	"github.com/localnet-dev/localnet/pkg/crypto/keys"
	"github.com/localnet-dev/localnet/pkg/encoding/address"
	"github.com/localnet-dev/localnet/pkg/util"
)

// Account represents a single account inside a wallet. It holds the private
// key along with some metadata.
type Account struct {
	// privateKey is only set when the account is decrypted.
	privateKey *keys.PrivateKey

	// Address of the account.
	Address string `json:"address"`

	// EncryptedWIF is the encrypted form of the account key, this is what
	// the wallet file actually stores.
	EncryptedWIF string `json:"key"`

	// Label is a label the user had made for this account.
	Label string `json:"label"`

	// Indicates whether the account is locked by the user. The client
	// shouldn't spend the funds in a locked account.
	Locked bool `json:"lock"`

	// Indicates whether the account is the default one.
	Default bool `json:"isDefault"`
}

// NewAccount creates a new Account with a random generated PrivateKey.
func NewAccount() (*Account, error) {
	priv, err := keys.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	return NewAccountFromPrivateKey(priv), nil
}

// NewAccountFromPrivateKey creates an account from the given PrivateKey.
func NewAccountFromPrivateKey(p *keys.PrivateKey) *Account {
	return &Account{
		privateKey: p,
		Address:    p.Address(),
	}
}

// NewAccountFromWIF creates a new Account from the given WIF.
func NewAccountFromWIF(wif string) (*Account, error) {
	privKey, err := keys.NewPrivateKeyFromWIF(wif)
	if err != nil {
		return nil, err
	}
	return NewAccountFromPrivateKey(privKey), nil
}

// NewAccountFromEncryptedWIF creates a new Account from the given encrypted
// WIF.
func NewAccountFromEncryptedWIF(wif string, pass string, scrypt keys.ScryptParams) (*Account, error) {
	priv, err := keys.DecryptKey(wif, pass, scrypt)
	if err != nil {
		return nil, err
	}
	a := NewAccountFromPrivateKey(priv)
	a.EncryptedWIF = wif
	return a, nil
}

// PrivateKey returns private key corresponding to the account, nil when the
// account hasn't been decrypted.
func (a *Account) PrivateKey() *keys.PrivateKey {
	return a.privateKey
}

// ScriptHash returns the script hash of the account address.
func (a *Account) ScriptHash() util.Uint160 {
	h, _ := address.StringToUint160(a.Address)
	return h
}

// CanSign returns true when the account key is available.
func (a *Account) CanSign() bool {
	return a.privateKey != nil
}

// Encrypt encrypts the account's PrivateKey with the given passphrase. The
// plain key stays available until Close.
func (a *Account) Encrypt(passphrase string, scrypt keys.ScryptParams) error {
	if a.privateKey == nil {
		return errors.New("no private key to encrypt")
	}
	wif, err := keys.EncryptKey(a.privateKey, passphrase, scrypt)
	if err != nil {
		return err
	}
	a.EncryptedWIF = wif
	return nil
}

// Decrypt decrypts the EncryptedWIF with the given passphrase returning
// error if anything goes wrong.
func (a *Account) Decrypt(passphrase string, scrypt keys.ScryptParams) error {
	if a.EncryptedWIF == "" {
		return errors.New("no encrypted wif in the account")
	}
	priv, err := keys.DecryptKey(a.EncryptedWIF, passphrase, scrypt)
	if err != nil {
		return err
	}
	a.privateKey = priv
	return nil
}

// Close wipes the decrypted key material from the account.
func (a *Account) Close() {
	if a.privateKey == nil {
		return
	}
	a.privateKey.Destroy()
	a.privateKey = nil
}
