// Package block contains the blocks of the chain and their headers.
package block

import (
	"errors"

	"github.com/localnet-dev/localnet/pkg/core/transaction"
	"github.com/localnet-dev/localnet/pkg/crypto/hash"
	"github.com/localnet-dev/localnet/pkg/io"
	"github.com/localnet-dev/localnet/pkg/util"
)

// ErrMaxContentsPerBlock is returned when the number of transactions in a
// block exceeds the decoding limit.
var ErrMaxContentsPerBlock = errors.New("the number of contents exceeds the maximum number of contents per block")

// maxTransactionsPerBlock is a hard decoding cap, the chain configuration
// can only set a lower limit.
const maxTransactionsPerBlock = 0xffff

// Block is a chunk of transactions sealed under a common header.
type Block struct {
	Header

	// Transactions in the order they're executed.
	Transactions []*transaction.Transaction
}

// New creates a block on top of the given header filling in the merkle root
// from the given transactions.
func New(h Header, txes []*transaction.Transaction) *Block {
	b := &Block{
		Header:       h,
		Transactions: txes,
	}
	b.RebuildMerkleRoot()
	return b
}

// ComputeMerkleRoot computes the merkle root of the block transactions.
func (b *Block) ComputeMerkleRoot() util.Uint256 {
	hashes := make([]util.Uint256, len(b.Transactions))
	for i, tx := range b.Transactions {
		hashes[i] = tx.Hash()
	}
	return hash.CalcMerkleRoot(hashes)
}

// RebuildMerkleRoot rebuilds the merkle root of the block.
func (b *Block) RebuildMerkleRoot() {
	b.MerkleRoot = b.ComputeMerkleRoot()
	b.hashed = false
}

// EncodeBinary implements the io.Serializable interface.
func (b *Block) EncodeBinary(w *io.BinWriter) {
	b.Header.EncodeBinary(w)
	io.WriteArray(w, b.Transactions)
}

// DecodeBinary implements the io.Serializable interface.
func (b *Block) DecodeBinary(r *io.BinReader) {
	b.Header.DecodeBinary(r)
	contentsCount := r.ReadVarUint()
	if contentsCount > maxTransactionsPerBlock {
		r.Err = ErrMaxContentsPerBlock
		return
	}
	txes := make([]*transaction.Transaction, contentsCount)
	for i := 0; i < int(contentsCount); i++ {
		tx := new(transaction.Transaction)
		tx.DecodeBinary(r)
		txes[i] = tx
	}
	b.Transactions = txes
}
