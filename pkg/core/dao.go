package core

import (
	"encoding/binary"

	"github.com/localnet-dev/localnet/pkg/core/block"
	"github.com/localnet-dev/localnet/pkg/core/state"
	"github.com/localnet-dev/localnet/pkg/core/storage"
	"github.com/localnet-dev/localnet/pkg/core/transaction"
	"github.com/localnet-dev/localnet/pkg/io"
	"github.com/localnet-dev/localnet/pkg/util"
)

// dao is the data access layer between chain logic and the storage, all
// chain state reads and writes go through it. It wraps the backing store
// into a cache, so everything written since the last Persist can be thrown
// away at once.
type dao struct {
	store *storage.MemCachedStore
}

func newDao(backend storage.Store) *dao {
	return &dao{store: storage.NewMemCachedStore(backend)}
}

// getWrapped returns a dao collecting changes on top of this one. Used for
// tentative transaction execution: a faulted transaction's changes are
// simply never persisted down.
func (d *dao) getWrapped() *dao {
	return newDao(d.store)
}

// persist flushes the accumulated changes one layer down.
func (d *dao) persist() (int, error) {
	return d.store.Persist()
}

func (d *dao) getAndDecode(entity io.Serializable, key []byte) error {
	entityBytes, err := d.store.Get(key)
	if err != nil {
		return err
	}
	return io.FromByteArray(entity, entityBytes)
}

func (d *dao) putWithBuffer(entity io.Serializable, key []byte) error {
	entityBytes, err := io.ToByteArray(entity)
	if err != nil {
		return err
	}
	return d.store.Put(key, entityBytes)
}

// -- accounts.

// GetAccount returns the account state for the given script hash, a fresh
// zero-balance account when there's none yet.
func (d *dao) GetAccount(hash util.Uint160) *state.Account {
	account := new(state.Account)
	key := storage.AppendPrefix(storage.STAccount, hash.BytesBE())
	if err := d.getAndDecode(account, key); err != nil {
		return state.NewAccount(hash)
	}
	return account
}

// PutAccount stores the given account state.
func (d *dao) PutAccount(account *state.Account) error {
	key := storage.AppendPrefix(storage.STAccount, account.ScriptHash.BytesBE())
	return d.putWithBuffer(account, key)
}

// -- contracts.

// GetContract returns the deployed contract with the given hash, nil when
// there's none.
func (d *dao) GetContract(hash util.Uint160) *state.Contract {
	contract := new(state.Contract)
	key := storage.AppendPrefix(storage.STContract, hash.BytesBE())
	if err := d.getAndDecode(contract, key); err != nil {
		return nil
	}
	return contract
}

// GetContractByID resolves a contract ID into the contract state.
func (d *dao) GetContractByID(id int32) *state.Contract {
	hashBytes, err := d.store.Get(storage.AppendPrefixInt(storage.STContractID, int(id)))
	if err != nil {
		return nil
	}
	hash, err := util.Uint160DecodeBytesBE(hashBytes)
	if err != nil {
		return nil
	}
	return d.GetContract(hash)
}

// PutContract stores the given contract state together with its ID index
// entry.
func (d *dao) PutContract(cs *state.Contract) {
	key := storage.AppendPrefix(storage.STContract, cs.Hash.BytesBE())
	if err := d.putWithBuffer(cs, key); err != nil {
		panic(err)
	}
	idKey := storage.AppendPrefixInt(storage.STContractID, int(cs.ID))
	if err := d.store.Put(idKey, cs.Hash.BytesBE()); err != nil {
		panic(err)
	}
}

// DeleteContract removes the contract state and its ID index entry.
func (d *dao) DeleteContract(hash util.Uint160) {
	cs := d.GetContract(hash)
	if cs == nil {
		return
	}
	_ = d.store.Delete(storage.AppendPrefixInt(storage.STContractID, int(cs.ID)))
	_ = d.store.Delete(storage.AppendPrefix(storage.STContract, hash.BytesBE()))
}

// GetAndUpdateNextContractID returns the next free contract ID advancing
// the persistent counter.
func (d *dao) GetAndUpdateNextContractID() int32 {
	var id int32 = 1
	key := []byte{byte(storage.SYSContractCount)}
	data, err := d.store.Get(key)
	if err == nil {
		id = int32(binary.LittleEndian.Uint32(data)) + 1
	}
	next := make([]byte, 4)
	binary.LittleEndian.PutUint32(next, uint32(id))
	if err := d.store.Put(key, next); err != nil {
		panic(err)
	}
	return id
}

// -- contract storage items.

func makeStorageItemKey(id int32, key []byte) []byte {
	return append(storage.AppendPrefixInt(storage.STStorage, int(id)), key...)
}

// GetStorageItem returns the contract storage value for the given key, nil
// when there's none.
func (d *dao) GetStorageItem(id int32, key []byte) state.StorageItem {
	b, err := d.store.Get(makeStorageItemKey(id, key))
	if err != nil {
		return nil
	}
	return b
}

// PutStorageItem stores the given value in the contract storage.
func (d *dao) PutStorageItem(id int32, key []byte, value state.StorageItem) {
	if err := d.store.Put(makeStorageItemKey(id, key), value); err != nil {
		panic(err)
	}
}

// DeleteStorageItem removes the value from the contract storage.
func (d *dao) DeleteStorageItem(id int32, key []byte) {
	if err := d.store.Delete(makeStorageItemKey(id, key)); err != nil {
		panic(err)
	}
}

// SeekStorage iterates over the contract's storage entries with the given
// key prefix in ascending key order.
func (d *dao) SeekStorage(id int32, prefix []byte, f func(k, v []byte) bool) {
	lookupKey := makeStorageItemKey(id, prefix)
	stripLen := len(lookupKey) - len(prefix)
	stopped := false
	d.store.Seek(lookupKey, func(k, v []byte) {
		if !stopped && !f(k[stripLen:], v) {
			stopped = true
		}
	})
}

// -- blocks and transactions.

// StoreAsBlock stores the given block and its height index entry.
func (d *dao) StoreAsBlock(b *block.Block) error {
	key := storage.AppendPrefix(storage.DataBlock, b.Hash().BytesBE())
	if err := d.putWithBuffer(b, key); err != nil {
		return err
	}
	return d.store.Put(storage.AppendPrefixInt(storage.IXBlockHeight, int(b.Index)), b.Hash().BytesBE())
}

// GetBlock returns the block with the given hash.
func (d *dao) GetBlock(hash util.Uint256) (*block.Block, error) {
	b := new(block.Block)
	key := storage.AppendPrefix(storage.DataBlock, hash.BytesBE())
	if err := d.getAndDecode(b, key); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBlockHash resolves a block height into the block hash.
func (d *dao) GetBlockHash(index uint32) (util.Uint256, error) {
	b, err := d.store.Get(storage.AppendPrefixInt(storage.IXBlockHeight, int(index)))
	if err != nil {
		return util.Uint256{}, err
	}
	return util.Uint256DecodeBytesBE(b)
}

// StoreAsTransaction stores the given transaction prefixed by the height of
// the block it was included into.
func (d *dao) StoreAsTransaction(tx *transaction.Transaction, index uint32) error {
	key := storage.AppendPrefix(storage.DataTransaction, tx.Hash().BytesBE())
	buf := io.NewBufBinWriter()
	buf.WriteU32LE(index)
	tx.EncodeBinary(buf.BinWriter)
	if buf.Err != nil {
		return buf.Err
	}
	return d.store.Put(key, buf.Bytes())
}

// GetTransaction returns the transaction with the given hash and the height
// of the block it was included into.
func (d *dao) GetTransaction(hash util.Uint256) (*transaction.Transaction, uint32, error) {
	key := storage.AppendPrefix(storage.DataTransaction, hash.BytesBE())
	b, err := d.store.Get(key)
	if err != nil {
		return nil, 0, err
	}
	r := io.NewBinReaderFromBuf(b)
	index := r.ReadU32LE()
	tx := new(transaction.Transaction)
	tx.DecodeBinary(r)
	if r.Err != nil {
		return nil, 0, r.Err
	}
	return tx, index, nil
}

// PutAppExecResult stores the execution result of a transaction.
func (d *dao) PutAppExecResult(aer *state.AppExecResult) error {
	key := storage.AppendPrefix(storage.DataExecResult, aer.TxHash.BytesBE())
	return d.putWithBuffer(aer, key)
}

// GetAppExecResult returns the execution result of the transaction with the
// given hash.
func (d *dao) GetAppExecResult(hash util.Uint256) (*state.AppExecResult, error) {
	aer := new(state.AppExecResult)
	key := storage.AppendPrefix(storage.DataExecResult, hash.BytesBE())
	if err := d.getAndDecode(aer, key); err != nil {
		return nil, err
	}
	return aer, nil
}

// -- chain pointers.

// GetCurrentBlockHeight returns the height of the last stored block.
func (d *dao) GetCurrentBlockHeight() (uint32, error) {
	b, err := d.store.Get([]byte{byte(storage.SYSCurrentBlock)})
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[32:36]), nil
}

// GetCurrentHeaderHash returns the hash of the last stored block.
func (d *dao) GetCurrentHeaderHash() (util.Uint256, error) {
	b, err := d.store.Get([]byte{byte(storage.SYSCurrentBlock)})
	if err != nil {
		return util.Uint256{}, err
	}
	return util.Uint256DecodeBytesBE(b[:32])
}

// StoreCurrentBlock updates the chain tip pointer.
func (d *dao) StoreCurrentBlock(b *block.Block) error {
	buf := io.NewBufBinWriter()
	buf.WriteBytes(b.Hash().BytesBE())
	buf.WriteU32LE(b.Index)
	if buf.Err != nil {
		return buf.Err
	}
	return d.store.Put([]byte{byte(storage.SYSCurrentBlock)}, buf.Bytes())
}

// PutStandbyKeys stores the private keys of the genesis accounts, they're
// a part of the chain state so that reopening a persistent simulator gives
// back the same accounts.
func (d *dao) PutStandbyKeys(privKeys [][]byte) error {
	buf := io.NewBufBinWriter()
	buf.WriteVarUint(uint64(len(privKeys)))
	for _, k := range privKeys {
		buf.WriteVarBytes(k)
	}
	if buf.Err != nil {
		return buf.Err
	}
	return d.store.Put([]byte{byte(storage.SYSStandbyKeys)}, buf.Bytes())
}

// GetStandbyKeys returns the stored genesis account keys.
func (d *dao) GetStandbyKeys() ([][]byte, error) {
	b, err := d.store.Get([]byte{byte(storage.SYSStandbyKeys)})
	if err != nil {
		return nil, err
	}
	r := io.NewBinReaderFromBuf(b)
	n := r.ReadVarUint()
	privKeys := make([][]byte, 0, n)
	for i := uint64(0); i < n; i++ {
		privKeys = append(privKeys, r.ReadVarBytes(32))
	}
	return privKeys, r.Err
}

// GetVersion returns the version marker the database was initialized with.
func (d *dao) GetVersion() (string, error) {
	b, err := d.store.Get([]byte{byte(storage.SYSVersion)})
	return string(b), err
}

// PutVersion stores the database version marker.
func (d *dao) PutVersion(v string) error {
	return d.store.Put([]byte{byte(storage.SYSVersion)}, []byte(v))
}
