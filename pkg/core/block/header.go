package block

import (
	"github.com/localnet-dev/localnet/pkg/crypto/hash"
	"github.com/localnet-dev/localnet/pkg/io"
	"github.com/localnet-dev/localnet/pkg/util"
)

// Header holds the base info of a block.
type Header struct {
	// Version of the block format, currently 0.
	Version uint32
	// PrevHash is the hash of the previous block.
	PrevHash util.Uint256
	// MerkleRoot is the root of the transaction hash tree.
	MerkleRoot util.Uint256
	// Timestamp is block creation time in milliseconds since the epoch.
	Timestamp uint64
	// Index is the height of the block.
	Index uint32
	// Nonce is a random number generated by the block producer.
	Nonce uint64

	hash   util.Uint256
	hashed bool
}

// Hash returns the hash of the block, it's cached after the first
// computation.
func (h *Header) Hash() util.Uint256 {
	if !h.hashed {
		h.createHash()
	}
	return h.hash
}

func (h *Header) createHash() {
	buf := io.NewBufBinWriter()
	h.EncodeBinary(buf.BinWriter)
	if buf.Err != nil {
		panic("failed to compute hash!")
	}
	h.hash = hash.DoubleSha256(buf.Bytes())
	h.hashed = true
}

// EncodeBinary implements the io.Serializable interface.
func (h *Header) EncodeBinary(w *io.BinWriter) {
	w.WriteU32LE(h.Version)
	w.WriteBytes(h.PrevHash.BytesBE())
	w.WriteBytes(h.MerkleRoot.BytesBE())
	w.WriteU64LE(h.Timestamp)
	w.WriteU32LE(h.Index)
	w.WriteU64LE(h.Nonce)
}

// DecodeBinary implements the io.Serializable interface.
func (h *Header) DecodeBinary(r *io.BinReader) {
	h.Version = r.ReadU32LE()
	r.ReadBytes(h.PrevHash[:])
	r.ReadBytes(h.MerkleRoot[:])
	h.Timestamp = r.ReadU64LE()
	h.Index = r.ReadU32LE()
	h.Nonce = r.ReadU64LE()
	if r.Err == nil {
		h.createHash()
	}
}
