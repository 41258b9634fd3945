package transaction

import (
	"github.com/holiman/uint256"
	"github.com/localnet-dev/localnet/pkg/io"
	"github.com/localnet-dev/localnet/pkg/smartcontract"
	"github.com/localnet-dev/localnet/pkg/smartcontract/manifest"
	"github.com/localnet-dev/localnet/pkg/util"
)

// Transfer moves native tokens from the sender to another account.
type Transfer struct {
	To     util.Uint160
	Amount *uint256.Int
}

// EncodeBinary implements the io.Serializable interface.
func (t *Transfer) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(t.To.BytesBE())
	w.WriteVarBytes(t.Amount.Bytes())
}

// DecodeBinary implements the io.Serializable interface.
func (t *Transfer) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(t.To[:])
	t.Amount = new(uint256.Int).SetBytes(r.ReadVarBytes(32))
}

// Deploy requests a deployment of a registered contract implementation
// under the sender's account.
type Deploy struct {
	// ContractName is the name of a contract implementation registered
	// with the chain, the analogue of compiled code.
	ContractName string
	// Manifest describes the deployed contract interface. Its checksum
	// is a part of the resulting contract hash.
	Manifest manifest.Manifest
	// Params are passed to the contract's _deploy method.
	Params smartcontract.Parameters
}

// EncodeBinary implements the io.Serializable interface.
func (d *Deploy) EncodeBinary(w *io.BinWriter) {
	w.WriteString(d.ContractName)
	d.Manifest.EncodeBinary(w)
	d.Params.EncodeBinary(w)
}

// DecodeBinary implements the io.Serializable interface.
func (d *Deploy) DecodeBinary(r *io.BinReader) {
	d.ContractName = r.ReadString()
	d.Manifest.DecodeBinary(r)
	d.Params.DecodeBinary(r)
}

// Invoke calls a method of a deployed contract.
type Invoke struct {
	Contract util.Uint160
	Method   string
	Params   smartcontract.Parameters
}

// EncodeBinary implements the io.Serializable interface.
func (inv *Invoke) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(inv.Contract.BytesBE())
	w.WriteString(inv.Method)
	inv.Params.EncodeBinary(w)
}

// DecodeBinary implements the io.Serializable interface.
func (inv *Invoke) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(inv.Contract[:])
	inv.Method = r.ReadString()
	inv.Params.DecodeBinary(r)
}
