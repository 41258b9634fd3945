package state

import (
	"github.com/localnet-dev/localnet/pkg/io"
	"github.com/localnet-dev/localnet/pkg/smartcontract"
	"github.com/localnet-dev/localnet/pkg/util"
)

// ExecState represents the outcome of a transaction execution.
type ExecState byte

const (
	// HaltState means the execution finished successfully and all its
	// state changes were persisted.
	HaltState ExecState = 1
	// FaultState means the execution failed, its state changes were
	// rolled back and only fees were charged.
	FaultState ExecState = 2
)

// String implements the stringer interface.
func (s ExecState) String() string {
	switch s {
	case HaltState:
		return "HALT"
	case FaultState:
		return "FAULT"
	default:
		return "UNKNOWN"
	}
}

// AppExecResult represents the result of a transaction execution: the
// outcome, the value returned by the invoked method, consumed gas and the
// notifications emitted during execution.
type AppExecResult struct {
	TxHash         util.Uint256
	State          ExecState
	GasConsumed    uint64
	Result         smartcontract.Parameter
	Events         []NotificationEvent
	FaultException string
}

// EncodeBinary implements the io.Serializable interface.
func (aer *AppExecResult) EncodeBinary(w *io.BinWriter) {
	w.WriteBytes(aer.TxHash.BytesBE())
	w.WriteB(byte(aer.State))
	w.WriteU64LE(aer.GasConsumed)
	aer.Result.EncodeBinary(w)
	io.WriteArray(w, eventPtrs(aer.Events))
	w.WriteString(aer.FaultException)
}

// DecodeBinary implements the io.Serializable interface.
func (aer *AppExecResult) DecodeBinary(r *io.BinReader) {
	r.ReadBytes(aer.TxHash[:])
	aer.State = ExecState(r.ReadB())
	aer.GasConsumed = r.ReadU64LE()
	aer.Result.DecodeBinary(r)
	events := io.ReadArray[NotificationEvent](r)
	aer.Events = make([]NotificationEvent, len(events))
	for i := range events {
		aer.Events[i] = *events[i]
	}
	aer.FaultException = r.ReadString()
}

func eventPtrs(events []NotificationEvent) []*NotificationEvent {
	res := make([]*NotificationEvent, len(events))
	for i := range events {
		res[i] = &events[i]
	}
	return res
}
