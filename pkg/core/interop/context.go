// Package interop contains the Context given to contract methods during
// execution. It is the only window a contract has into the chain: storage,
// gas, notifications and block environment all go through it.
package interop

import (
	"encoding/binary"
	"fmt"

	"github.com/localnet-dev/localnet/pkg/core/state"
	"github.com/localnet-dev/localnet/pkg/smartcontract"
	"github.com/localnet-dev/localnet/pkg/util"
	"github.com/twmb/murmur3"
)

// Storage is the storage access layer behind the Context, it's implemented
// by the chain's data access object.
type Storage interface {
	GetStorageItem(id int32, key []byte) state.StorageItem
	PutStorageItem(id int32, key []byte, value state.StorageItem)
	DeleteStorageItem(id int32, key []byte)
	SeekStorage(id int32, prefix []byte, f func(k, v []byte) bool)
}

// Limits are the execution prices and bounds the chain configuration sets.
type Limits struct {
	BaseExecFee        uint64
	StoragePrice       uint64
	MaxStorageKeyLen   int
	MaxStorageValueLen int
}

// faultError wraps errors raised by Context methods, the executor recovers
// it and turns the whole invocation into a FAULT result.
type faultError struct {
	err error
}

func (f faultError) Error() string {
	return f.err.Error()
}

// Fault aborts the current execution with the given error. All the effects
// of the invocation are rolled back, only the fee charge stays.
func Fault(format string, args ...any) {
	panic(faultError{err: fmt.Errorf(format, args...)})
}

// Recover converts a recovered panic value into the fault error that caused
// it. Panics that didn't come from a Fault call are re-raised.
func Recover(r any) error {
	if r == nil {
		return nil
	}
	if f, ok := r.(faultError); ok {
		return f.err
	}
	panic(r)
}

// Context is passed to every executing contract method.
type Context struct {
	// Network is the magic number of the chain.
	Network uint32
	// BlockHeight is the index of the block being processed.
	BlockHeight uint32
	// BlockTime is the timestamp of the block being processed,
	// milliseconds since the epoch.
	BlockTime uint64
	// TxHash is the hash of the transaction being executed.
	TxHash util.Uint256
	// Sender is the account that signed the transaction.
	Sender util.Uint160
	// Contract is the contract being executed.
	Contract *state.Contract
	// ReadOnly is set for safe method calls, any storage write faults.
	ReadOnly bool

	store       Storage
	limits      Limits
	gasLimit    uint64
	gasConsumed uint64
	events      []state.NotificationEvent
	rndCounter  uint64
}

// NewContext returns an execution context over the given storage with the
// given gas limit.
func NewContext(store Storage, limits Limits, gasLimit uint64) *Context {
	return &Context{
		store:    store,
		limits:   limits,
		gasLimit: gasLimit,
	}
}

// AddGas charges the given amount of gas faulting the execution when the
// limit is exhausted.
func (ic *Context) AddGas(amount uint64) {
	ic.gasConsumed += amount
	if ic.gasConsumed > ic.gasLimit {
		Fault("gas limit exceeded")
	}
}

// GasConsumed returns the amount of gas charged so far.
func (ic *Context) GasConsumed() uint64 {
	return ic.gasConsumed
}

// GasLeft returns the amount of gas still available to the execution.
func (ic *Context) GasLeft() uint64 {
	return ic.gasLimit - ic.gasConsumed
}

func (ic *Context) checkStorageKey(key []byte) {
	if len(key) == 0 || len(key) > ic.limits.MaxStorageKeyLen {
		Fault("invalid storage key length %d", len(key))
	}
}

// GetStorage returns the contract storage value under the given key, nil
// when there is none.
func (ic *Context) GetStorage(key []byte) []byte {
	ic.AddGas(ic.limits.BaseExecFee)
	ic.checkStorageKey(key)
	return ic.store.GetStorageItem(ic.Contract.ID, key)
}

// PutStorage stores the value under the given key in the contract storage.
// Writes are priced per byte and refused in read-only executions.
func (ic *Context) PutStorage(key, value []byte) {
	ic.checkStorageKey(key)
	if len(value) > ic.limits.MaxStorageValueLen {
		Fault("storage value is too big (%d bytes)", len(value))
	}
	if ic.ReadOnly {
		Fault("storage write in a read-only call")
	}
	ic.AddGas(uint64(len(key)+len(value)) * ic.limits.StoragePrice)
	ic.store.PutStorageItem(ic.Contract.ID, key, value)
}

// DeleteStorage removes the value under the given key from the contract
// storage.
func (ic *Context) DeleteStorage(key []byte) {
	ic.checkStorageKey(key)
	if ic.ReadOnly {
		Fault("storage write in a read-only call")
	}
	ic.AddGas(ic.limits.BaseExecFee)
	ic.store.DeleteStorageItem(ic.Contract.ID, key)
}

// FindStorage iterates over contract storage entries with the given key
// prefix in ascending key order, the callback returns false to stop.
func (ic *Context) FindStorage(prefix []byte, f func(key, value []byte) bool) {
	ic.AddGas(ic.limits.BaseExecFee)
	ic.store.SeekStorage(ic.Contract.ID, prefix, func(k, v []byte) bool {
		ic.AddGas(ic.limits.BaseExecFee)
		return f(k, v)
	})
}

// Notify emits a notification event from the executing contract. Events are
// collected into the execution result once the invocation halts.
func (ic *Context) Notify(name string, items ...smartcontract.Parameter) {
	ic.AddGas(ic.limits.BaseExecFee)
	ic.events = append(ic.events, state.NotificationEvent{
		ScriptHash: ic.Contract.Hash,
		Name:       name,
		Item:       items,
	})
}

// Events returns the notifications emitted during the execution.
func (ic *Context) Events() []state.NotificationEvent {
	return ic.events
}

// GetRandom returns the next value of the execution's deterministic random
// sequence. The sequence is seeded by the transaction hash and the block
// environment, so it's stable across replays but unpredictable beforehand.
func (ic *Context) GetRandom() uint64 {
	ic.AddGas(ic.limits.BaseExecFee)
	seed := make([]byte, util.Uint256Size+16)
	copy(seed, ic.TxHash.BytesBE())
	binary.LittleEndian.PutUint64(seed[util.Uint256Size:], ic.BlockTime)
	binary.LittleEndian.PutUint64(seed[util.Uint256Size+8:], ic.rndCounter)
	ic.rndCounter++
	return murmur3.SeedSum64(uint64(ic.Network), seed)
}
