package state

import (
	"github.com/holiman/uint256"
	"github.com/localnet-dev/localnet/pkg/io"
	"github.com/localnet-dev/localnet/pkg/util"
)

// Account represents the state of an account: its native token balance and
// the nonce of the last accepted transaction.
type Account struct {
	ScriptHash util.Uint160
	Balance    *uint256.Int
	Nonce      uint32
}

// NewAccount returns a new Account object with a zero balance.
func NewAccount(scriptHash util.Uint160) *Account {
	return &Account{
		ScriptHash: scriptHash,
		Balance:    uint256.NewInt(0),
	}
}

// CanPay returns whether the account balance covers the given amount.
func (a *Account) CanPay(amount *uint256.Int) bool {
	return a.Balance.Cmp(amount) >= 0
}

// Add adds the given amount to the account balance.
func (a *Account) Add(amount *uint256.Int) {
	a.Balance = new(uint256.Int).Add(a.Balance, amount)
}

// Sub subtracts the given amount from the account balance, it must be
// checked with CanPay first.
func (a *Account) Sub(amount *uint256.Int) {
	a.Balance = new(uint256.Int).Sub(a.Balance, amount)
}

// EncodeBinary implements the io.Serializable interface.
func (a *Account) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(a.ScriptHash.BytesBE())
	w.WriteVarBytes(a.Balance.Bytes())
	w.WriteU32LE(a.Nonce)
}

// DecodeBinary implements the io.Serializable interface.
func (a *Account) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(a.ScriptHash[:])
	a.Balance = new(uint256.Int).SetBytes(r.ReadVarBytes(32))
	a.Nonce = r.ReadU32LE()
}
