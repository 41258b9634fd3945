package state

import (
	"github.com/localnet-dev/localnet/pkg/crypto/hash"
	"github.com/localnet-dev/localnet/pkg/io"
	"github.com/localnet-dev/localnet/pkg/smartcontract/manifest"
	"github.com/localnet-dev/localnet/pkg/util"
)

// Contract holds information about a deployed contract.
type Contract struct {
	// ID is a small sequential number assigned on deployment, contract
	// storage keys are built from it instead of the 20-byte hash.
	ID            int32
	Hash          util.Uint160
	ContractName  string
	Checksum      uint32
	UpdateCounter uint16
	Manifest      manifest.Manifest
}

// EncodeBinary implements the io.Serializable interface.
func (c *Contract) EncodeBinary(w *io.BinWriter) {
	w.WriteU32LE(uint32(c.ID))
	w.WriteBytes(c.Hash.BytesBE())
	w.WriteString(c.ContractName)
	w.WriteU32LE(c.Checksum)
	w.WriteU16LE(c.UpdateCounter)
	c.Manifest.EncodeBinary(w)
}

// CreateContractHash returns the deterministic hash a contract gets when
// deployed by the given sender. Different senders deploying the same named
// implementation get different hashes.
func CreateContractHash(sender util.Uint160, checksum uint32, name string) util.Uint160 {
	w := io.NewBufBinWriter()
	w.WriteBytes(sender.BytesBE())
	w.WriteU32LE(checksum)
	w.WriteString(name)
	if w.Err != nil {
		panic(w.Err)
	}
	return hash.Hash160(w.Bytes())
}

// DecodeBinary implements the io.Serializable interface.
func (c *Contract) DecodeBinary(r *io.BinReader) {
	c.ID = int32(r.ReadU32LE())
	r.ReadBytes(c.Hash[:])
	c.ContractName = r.ReadString()
	c.Checksum = r.ReadU32LE()
	c.UpdateCounter = r.ReadU16LE()
	c.Manifest.DecodeBinary(r)
}
