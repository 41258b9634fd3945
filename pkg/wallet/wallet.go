// Package wallet implements a JSON file of passphrase-encrypted accounts.
// The chain itself never needs a wallet, it's for users of the CLI keeping
// keys between sessions.
package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/localnet-dev/localnet/pkg/crypto/keys"
	"github.com/localnet-dev/localnet/pkg/util"
)

// walletVersion is written into new wallet files.
const walletVersion = "1.0"

// Wallet represents a wallet holding one or more accounts.
type Wallet struct {
	// Version of the wallet format.
	Version string `json:"version"`

	// Accounts is a list of accounts the wallet holds.
	Accounts []*Account `json:"accounts"`

	// Scrypt are the key encryption parameters of this wallet.
	Scrypt keys.ScryptParams `json:"scrypt"`

	// Extra can hold anything a wallet user wants attached.
	Extra map[string]any `json:"extra,omitempty"`

	// Path of the underlying file.
	path string
}

// NewWallet creates a new empty wallet at the given location.
func NewWallet(location string) (*Wallet, error) {
	file, err := os.Create(location)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return newWallet(location), nil
}

// NewWalletFromFile reads the wallet found at the given location.
func NewWalletFromFile(location string) (*Wallet, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, err
	}
	w := newWallet(location)
	if err := json.Unmarshal(data, w); err != nil {
		return nil, fmt.Errorf("malformed wallet file: %w", err)
	}
	return w, nil
}

func newWallet(location string) *Wallet {
	return &Wallet{
		Version: walletVersion,
		Scrypt:  keys.DefaultScryptParams(),
		path:    location,
	}
}

// Path returns the location of the wallet file.
func (w *Wallet) Path() string {
	return w.path
}

// AddAccount adds an existing account to the wallet.
func (w *Wallet) AddAccount(account *Account) {
	w.Accounts = append(w.Accounts, account)
}

// CreateAccount generates a new account, encrypts it under the passphrase
// and saves the wallet.
func (w *Wallet) CreateAccount(label, passphrase string) (*Account, error) {
	account, err := NewAccount()
	if err != nil {
		return nil, err
	}
	account.Label = label
	if err := account.Encrypt(passphrase, w.Scrypt); err != nil {
		return nil, err
	}
	w.AddAccount(account)
	return account, w.Save()
}

// GetAccount returns the account with the given script hash, nil when the
// wallet doesn't have it.
func (w *Wallet) GetAccount(h util.Uint160) *Account {
	for _, account := range w.Accounts {
		if account.ScriptHash() == h {
			return account
		}
	}
	return nil
}

// GetChangeAddress returns the default account of the wallet, falling back
// to the first unlocked one.
func (w *Wallet) GetChangeAddress() (*Account, error) {
	var candidate *Account
	for _, account := range w.Accounts {
		if account.Locked {
			continue
		}
		if account.Default {
			return account, nil
		}
		if candidate == nil {
			candidate = account
		}
	}
	if candidate == nil {
		return nil, errors.New("no usable accounts in the wallet")
	}
	return candidate, nil
}

// JSON outputs a pretty JSON representation of the wallet.
func (w *Wallet) JSON() ([]byte, error) {
	return json.MarshalIndent(w, "", "	")
}

// Save saves the wallet data to the file it was opened from.
func (w *Wallet) Save() error {
	data, err := w.JSON()
	if err != nil {
		return err
	}
	return os.WriteFile(w.path, data, 0644)
}

// Close wipes the decrypted keys of all the wallet accounts.
func (w *Wallet) Close() {
	for _, account := range w.Accounts {
		account.Close()
	}
}
