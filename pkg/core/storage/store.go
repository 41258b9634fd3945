package storage

import (
	"errors"
	"fmt"

	"github.com/localnet-dev/localnet/pkg/core/storage/dbconfig"
)

// KeyPrefix constants.
const (
	// DataBlock is the prefix of stored blocks keyed by hash.
	DataBlock KeyPrefix = 0x01
	// DataTransaction is the prefix of stored transactions keyed by hash.
	DataTransaction KeyPrefix = 0x02
	// DataExecResult is the prefix of per-transaction execution results.
	DataExecResult KeyPrefix = 0x03
	// STAccount is the prefix of account states.
	STAccount KeyPrefix = 0x40
	// STContract is the prefix of contract states keyed by hash.
	STContract KeyPrefix = 0x50
	// STContractID maps int32 contract IDs to contract hashes.
	STContractID KeyPrefix = 0x51
	// STStorage is the prefix of contract storage items, the four bytes
	// following it are the contract ID.
	STStorage KeyPrefix = 0x70
	// IXBlockHeight maps block indexes to block hashes.
	IXBlockHeight KeyPrefix = 0x80
	// SYSCurrentBlock stores the current block hash and height.
	SYSCurrentBlock KeyPrefix = 0xc0
	// SYSContractCount stores the number of deployed contracts.
	SYSContractCount KeyPrefix = 0xc1
	// SYSStandbyKeys stores the keys of the pre-funded genesis accounts.
	SYSStandbyKeys KeyPrefix = 0xc2
	// SYSVersion stores the storage format version.
	SYSVersion KeyPrefix = 0xf0
)

// ErrKeyNotFound is an error returned by Store implementations
// when a certain key is not found.
var ErrKeyNotFound = errors.New("key not found")

type (
	// Store is anything that can persist and retrieve the blockchain data.
	Store interface {
		Batch() Batch
		Delete(k []byte) error
		Get([]byte) ([]byte, error)
		Put(k, v []byte) error
		PutBatch(Batch) error
		// Seek calls f for all the key-value pairs with the given key
		// prefix, in the ascending key order.
		Seek(k []byte, f func(k, v []byte))
		Close() error
	}

	// Batch represents an abstraction on top of batch operations.
	// Every Store implementation is responsible for casting a Batch
	// to its appropriate type. Batches can only be used in a single
	// thread.
	Batch interface {
		Put(k, v []byte)
		Delete(k []byte)
		Len() int
	}

	// KeyPrefix is a constant byte added as a prefix for each key
	// stored.
	KeyPrefix uint8
)

// Bytes returns the bytes representation of KeyPrefix.
func (k KeyPrefix) Bytes() []byte {
	return []byte{byte(k)}
}

// AppendPrefix appends byteslice b to the given KeyPrefix.
func AppendPrefix(k KeyPrefix, b []byte) []byte {
	dest := make([]byte, len(b)+1)
	dest[0] = byte(k)
	copy(dest[1:], b)
	return dest
}

// AppendPrefixInt append int n to the given KeyPrefix.
func AppendPrefixInt(k KeyPrefix, n int) []byte {
	b := []byte{
		byte(n),
		byte(n >> 8),
		byte(n >> 16),
		byte(n >> 24),
	}
	return AppendPrefix(k, b)
}

// NewStore creates storage with preselected in configuration database type.
func NewStore(cfg dbconfig.DBConfiguration) (Store, error) {
	var store Store
	var err error
	switch cfg.Type {
	case dbconfig.LevelDB:
		store, err = NewLevelDBStore(cfg.LevelDBOptions)
	case dbconfig.InMemoryDB:
		store = NewMemoryStore()
	case dbconfig.BoltDB:
		store, err = NewBoltDBStore(cfg.BoltDBOptions)
	default:
		return nil, fmt.Errorf("unknown storage: %s", cfg.Type)
	}
	return store, err
}
