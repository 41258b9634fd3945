package state

import (
	"github.com/localnet-dev/localnet/pkg/io"
	"github.com/localnet-dev/localnet/pkg/smartcontract"
	"github.com/localnet-dev/localnet/pkg/util"
)

// NotificationEvent is a tuple of the scripthash of the emitting contract, the
// event name and the arguments it was emitted with.
type NotificationEvent struct {
	ScriptHash util.Uint160             `json:"contract"`
	Name       string                   `json:"eventname"`
	Item       []smartcontract.Parameter `json:"state"`
}

// EncodeBinary implements the io.Serializable interface.
func (ne *NotificationEvent) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(ne.ScriptHash.BytesBE())
	w.WriteString(ne.Name)
	smartcontract.Parameters(ne.Item).EncodeBinary(w)
}

// DecodeBinary implements the io.Serializable interface.
func (ne *NotificationEvent) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(ne.ScriptHash[:])
	ne.Name = r.ReadString()
	params := new(smartcontract.Parameters)
	params.DecodeBinary(r)
	ne.Item = *params
}
