// Package transaction contains the transaction model: a signed request to
// either deploy a contract or invoke a method of an already deployed one.
package transaction

import (
	"errors"
	"fmt"

	"github.com/localnet-dev/localnet/pkg/crypto/hash"
	"github.com/localnet-dev/localnet/pkg/io"
	"github.com/localnet-dev/localnet/pkg/util"
)

// Type represents the type of the transaction payload.
type Type uint8

// Supported transaction types.
const (
	// TransferType moves native tokens between accounts.
	TransferType Type = 0x01
	// DeployType deploys a new contract.
	DeployType Type = 0x02
	// InvokeType calls a method of a deployed contract.
	InvokeType Type = 0x03
)

// String implements the stringer interface.
func (t Type) String() string {
	switch t {
	case TransferType:
		return "Transfer"
	case DeployType:
		return "Deploy"
	case InvokeType:
		return "Invoke"
	default:
		return "Unknown"
	}
}

// ErrUnknownType is returned when decoding a transaction with a bad type
// byte.
var ErrUnknownType = errors.New("unknown transaction type")

// Payload is the type-specific part of the transaction.
type Payload interface {
	io.Serializable
}

// Transaction is a single signed operation accepted by the chain.
type Transaction struct {
	// Nonce is the account's transaction counter, it must be exactly one
	// above the last accepted nonce of the sender.
	Nonce uint32
	// Sender is the script hash of the paying (and signing) account.
	Sender util.Uint160
	// SystemFee is the amount the sender is ready to pay for the
	// execution of the payload. Execution exceeding it faults.
	SystemFee uint64
	// NetworkFee is an additional priority fee, it only affects mempool
	// ordering.
	NetworkFee uint64
	// ValidUntilBlock is the last block index this transaction is valid
	// at.
	ValidUntilBlock uint32
	// Type determines the concrete type of Data.
	Type Type
	// Data is the payload, a *Transfer, *Deploy or *Invoke.
	Data Payload
	// Witness holds the sender's signature.
	Witness Witness

	hash   util.Uint256
	hashed bool
}

// New returns a new transaction of the given type with the given payload.
func New(typ Type, data Payload) *Transaction {
	return &Transaction{
		Type: typ,
		Data: data,
	}
}

// Hash returns the hash of the transaction, it's cached after the first
// computation.
func (t *Transaction) Hash() util.Uint256 {
	if !t.hashed {
		if t.createHash() != nil {
			panic("failed to compute hash!")
		}
	}
	return t.hash
}

// createHash creates the hash of the transaction.
func (t *Transaction) createHash() error {
	buf := io.NewBufBinWriter()
	t.encodeSignedPart(buf.BinWriter)
	if buf.Err != nil {
		return buf.Err
	}
	t.hash = hash.DoubleSha256(buf.Bytes())
	t.hashed = true
	return nil
}

// encodeSignedPart writes all the fields covered by the signature.
func (t *Transaction) encodeSignedPart(w *io.BinWriter) {
	w.WriteU32LE(t.Nonce)
	w.WriteBytes(t.Sender.BytesBE())
	w.WriteU64LE(t.SystemFee)
	w.WriteU64LE(t.NetworkFee)
	w.WriteU32LE(t.ValidUntilBlock)
	w.WriteB(byte(t.Type))
	if t.Data != nil {
		t.Data.EncodeBinary(w)
	}
}

// EncodeBinary implements the io.Serializable interface.
func (t *Transaction) EncodeBinary(w *io.BinWriter) {
	t.encodeSignedPart(w)
	t.Witness.EncodeBinary(w)
}

// DecodeBinary implements the io.Serializable interface.
func (t *Transaction) DecodeBinary(r *io.BinReader) {
	t.Nonce = r.ReadU32LE()
	r.ReadBytes(t.Sender[:])
	t.SystemFee = r.ReadU64LE()
	t.NetworkFee = r.ReadU64LE()
	t.ValidUntilBlock = r.ReadU32LE()
	t.Type = Type(r.ReadB())
	if r.Err != nil {
		return
	}
	switch t.Type {
	case TransferType:
		t.Data = new(Transfer)
	case DeployType:
		t.Data = new(Deploy)
	case InvokeType:
		t.Data = new(Invoke)
	default:
		r.Err = fmt.Errorf("%w: %d", ErrUnknownType, t.Type)
		return
	}
	t.Data.DecodeBinary(r)
	t.Witness.DecodeBinary(r)
	if r.Err == nil {
		r.Err = t.createHash()
	}
}

// Bytes converts the transaction to []byte.
func (t *Transaction) Bytes() ([]byte, error) {
	return io.ToByteArray(t)
}

// NewTransactionFromBytes decodes a byte array into a Transaction.
func NewTransactionFromBytes(b []byte) (*Transaction, error) {
	tx := new(Transaction)
	if err := io.FromByteArray(tx, b); err != nil {
		return nil, err
	}
	return tx, nil
}

// FeeTotal returns the sum of the system and network fees.
func (t *Transaction) FeeTotal() uint64 {
	return t.SystemFee + t.NetworkFee
}
