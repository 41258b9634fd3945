// Package core implements the simulated chain itself. The Blockchain
// accepts signed transactions, executes them against registered contract
// implementations and seals the results into blocks, either on demand or on
// a timer.
package core

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru"
	"github.com/holiman/uint256"
	"github.com/localnet-dev/localnet/pkg/config"
	"github.com/localnet-dev/localnet/pkg/core/block"
	"github.com/localnet-dev/localnet/pkg/core/contracts"
	"github.com/localnet-dev/localnet/pkg/core/interop"
	"github.com/localnet-dev/localnet/pkg/core/mempool"
	"github.com/localnet-dev/localnet/pkg/core/state"
	"github.com/localnet-dev/localnet/pkg/core/storage"
	"github.com/localnet-dev/localnet/pkg/core/transaction"
	"github.com/localnet-dev/localnet/pkg/crypto/keys"
	"github.com/localnet-dev/localnet/pkg/smartcontract"
	"github.com/localnet-dev/localnet/pkg/util"
	"go.uber.org/zap"
)

const (
	version = "0.1.0"

	defaultMemPoolSize = 50000
	blockCacheSize     = 1000

	// maxGasInvoke is the execution budget of read-only calls, they're
	// free but still bounded.
	maxGasInvoke = 100_0000_0000

	// genesisTime is the timestamp of every genesis block, milliseconds
	// since the epoch.
	genesisTime = 1600000000000
)

// Chain-level errors.
var (
	// ErrAlreadyExists is returned when the transaction is already on the
	// chain or in the pool.
	ErrAlreadyExists = errors.New("already exists")
	// ErrExpired is returned when the transaction can no longer make it
	// into a block.
	ErrExpired = errors.New("transaction is expired")
	// ErrNonceTooLow is returned when the sender account has already gone
	// past the transaction's nonce.
	ErrNonceTooLow = errors.New("nonce is too low")
	// ErrInsufficientFunds is returned when the sender can't cover the
	// transaction fees.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Blockchain represents the simulated chain.
type Blockchain struct {
	config config.ProtocolConfiguration

	// The underlying database.
	store storage.Store
	// The layer on top of the store, all chain state goes through it.
	dao *dao

	log        *zap.Logger
	memPool    *mempool.Pool
	management *contracts.Management
	blockCache *lru.Cache

	lock             sync.RWMutex
	blockHeight      uint32
	currentBlockHash util.Uint256
	currentBlockTime uint64

	standby []*keys.PrivateKey

	subLock   sync.RWMutex
	blockSubs map[chan<- *block.Block]bool
	execSubs  map[chan<- *state.AppExecResult]bool
}

// NewBlockchain returns a Blockchain over the given store. A fresh store
// gets a genesis block and the configured number of funded accounts, an
// already initialized one is picked up where it was left.
func NewBlockchain(s storage.Store, cfg config.ProtocolConfiguration, log *zap.Logger) (*Blockchain, error) {
	if log == nil {
		return nil, errors.New("empty logger")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cache, err := lru.New(blockCacheSize)
	if err != nil {
		return nil, err
	}
	bc := &Blockchain{
		config:     cfg,
		store:      s,
		dao:        newDao(s),
		log:        log,
		memPool:    mempool.New(defaultMemPoolSize),
		management: contracts.NewManagement(contracts.NewRegistry()),
		blockCache: cache,
		blockSubs:  make(map[chan<- *block.Block]bool),
		execSubs:   make(map[chan<- *state.AppExecResult]bool),
	}
	if err := bc.init(); err != nil {
		return nil, err
	}
	return bc, nil
}

func (bc *Blockchain) init() error {
	ver, err := bc.dao.GetVersion()
	if err != nil {
		bc.log.Info("no storage version found, initializing the chain")
		return bc.initFresh()
	}
	if ver != version {
		return fmt.Errorf("storage version mismatch: %s != %s", ver, version)
	}
	return bc.initExisting()
}

func (bc *Blockchain) initFresh() error {
	if err := bc.dao.PutVersion(version); err != nil {
		return err
	}

	// The genesis state is a pure function of the configuration: the
	// account keys come from the seed and the genesis header carries no
	// wall clock time. Chains sharing a configuration share a history,
	// so dumps taken on one can be replayed on another.
	rawKeys := make([][]byte, bc.config.StandbyAccounts)
	bc.standby = make([]*keys.PrivateKey, bc.config.StandbyAccounts)
	for i := range bc.standby {
		priv, err := standbyKey(bc.config.Seed, i)
		if err != nil {
			return err
		}
		bc.standby[i] = priv
		rawKeys[i] = priv.Bytes()

		account := state.NewAccount(priv.GetScriptHash())
		account.Add(uint256.NewInt(bc.config.InitialBalance))
		if err := bc.dao.PutAccount(account); err != nil {
			return err
		}
	}
	if err := bc.dao.PutStandbyKeys(rawKeys); err != nil {
		return err
	}

	genesis := block.New(block.Header{
		Timestamp: genesisTime,
		Nonce:     uint64(bc.config.Magic),
	}, nil)
	if err := bc.dao.StoreAsBlock(genesis); err != nil {
		return err
	}
	if err := bc.dao.StoreCurrentBlock(genesis); err != nil {
		return err
	}
	if _, err := bc.dao.persist(); err != nil {
		return err
	}

	bc.currentBlockHash = genesis.Hash()
	bc.currentBlockTime = genesis.Timestamp
	bc.log.Info("chain initialized",
		zap.Uint32("magic", bc.config.Magic),
		zap.Int("accounts", len(bc.standby)),
		zap.String("genesis", genesis.Hash().StringLE()))
	return nil
}

// standbyKey derives the i-th genesis account key from the seed.
func standbyKey(seed string, i int) (*keys.PrivateKey, error) {
	data := make([]byte, len(seed)+4)
	copy(data, seed)
	binary.LittleEndian.PutUint32(data[len(seed):], uint32(i))
	raw := sha256.Sum256(data)
	return keys.NewPrivateKeyFromBytes(raw[:])
}

func (bc *Blockchain) initExisting() error {
	height, err := bc.dao.GetCurrentBlockHeight()
	if err != nil {
		return err
	}
	hash, err := bc.dao.GetCurrentHeaderHash()
	if err != nil {
		return err
	}
	top, err := bc.dao.GetBlock(hash)
	if err != nil {
		return err
	}

	rawKeys, err := bc.dao.GetStandbyKeys()
	if err != nil {
		return err
	}
	bc.standby = make([]*keys.PrivateKey, len(rawKeys))
	for i, raw := range rawKeys {
		priv, err := keys.NewPrivateKeyFromBytes(raw)
		if err != nil {
			return err
		}
		bc.standby[i] = priv
	}

	bc.blockHeight = height
	bc.currentBlockHash = hash
	bc.currentBlockTime = top.Timestamp
	updateBlockHeightMetric(height)
	bc.log.Info("restored existing chain", zap.Uint32("blockHeight", height))
	return nil
}

// Close flushes and closes the underlying store.
func (bc *Blockchain) Close() error {
	bc.lock.Lock()
	defer bc.lock.Unlock()
	if _, err := bc.dao.persist(); err != nil {
		return err
	}
	return bc.store.Close()
}

// GetConfig returns the protocol configuration of the chain.
func (bc *Blockchain) GetConfig() config.ProtocolConfiguration {
	return bc.config
}

// RegisterContract makes a contract implementation available for
// deployment.
func (bc *Blockchain) RegisterContract(c *contracts.Contract) error {
	return bc.management.Registry().Register(c)
}

// Registry returns the registry of contract implementations known to the
// chain.
func (bc *Blockchain) Registry() *contracts.Registry {
	return bc.management.Registry()
}

// StandbyKeys returns the keys of the pre-funded genesis accounts.
func (bc *Blockchain) StandbyKeys() []*keys.PrivateKey {
	privKeys := make([]*keys.PrivateKey, len(bc.standby))
	copy(privKeys, bc.standby)
	return privKeys
}

// BlockHeight returns the height of the last accepted block.
func (bc *Blockchain) BlockHeight() uint32 {
	bc.lock.RLock()
	defer bc.lock.RUnlock()
	return bc.blockHeight
}

// CurrentBlockHash returns the hash of the last accepted block.
func (bc *Blockchain) CurrentBlockHash() util.Uint256 {
	bc.lock.RLock()
	defer bc.lock.RUnlock()
	return bc.currentBlockHash
}

// PoolTx verifies the transaction and puts it into the mempool.
func (bc *Blockchain) PoolTx(t *transaction.Transaction) error {
	bc.lock.RLock()
	defer bc.lock.RUnlock()

	if _, _, err := bc.dao.GetTransaction(t.Hash()); err == nil {
		return fmt.Errorf("%w: on the chain", ErrAlreadyExists)
	}
	if err := bc.verifyTx(bc.dao, t, bc.blockHeight+1); err != nil {
		return err
	}
	if err := bc.memPool.Add(t); err != nil {
		if errors.Is(err, mempool.ErrDup) {
			return fmt.Errorf("%w: in the pool", ErrAlreadyExists)
		}
		return err
	}
	updateMempoolMetrics(bc.memPool.Count())
	return nil
}

// verifyTx checks the transaction against the given state assuming it runs
// at the given height.
func (bc *Blockchain) verifyTx(d *dao, t *transaction.Transaction, height uint32) error {
	if t.ValidUntilBlock < height {
		return fmt.Errorf("%w: valid until %d, current height %d", ErrExpired, t.ValidUntilBlock, height)
	}
	if t.ValidUntilBlock > height+bc.config.MaxValidUntilBlockIncrement {
		return fmt.Errorf("transaction is valid too long: %d blocks ahead", t.ValidUntilBlock-height)
	}
	if err := t.VerifyWitness(bc.config.Magic); err != nil {
		return err
	}
	account := d.GetAccount(t.Sender)
	if t.Nonce <= account.Nonce {
		return fmt.Errorf("%w: account at %d, transaction has %d", ErrNonceTooLow, account.Nonce, t.Nonce)
	}
	if !account.CanPay(uint256.NewInt(t.FeeTotal())) {
		return ErrInsufficientFunds
	}
	return nil
}

// MineBlock seals the current mempool contents into a new block and adds it
// to the chain. An empty block is produced when the pool has nothing valid.
func (bc *Blockchain) MineBlock() (*block.Block, error) {
	bc.lock.RLock()
	height := bc.blockHeight
	prevHash := bc.currentBlockHash
	prevTime := bc.currentBlockTime
	bc.lock.RUnlock()

	var (
		txes     []*transaction.Transaction
		expected = make(map[util.Uint160]uint32)
	)
	for _, t := range bc.memPool.GetVerifiedTransactions(0) {
		if len(txes) == bc.config.MaxTransactionsPerBlock {
			break
		}
		if t.ValidUntilBlock < height+1 {
			continue
		}
		next, ok := expected[t.Sender]
		if !ok {
			next = bc.dao.GetAccount(t.Sender).Nonce + 1
		}
		// Out-of-order nonces wait for the next block.
		if t.Nonce != next {
			continue
		}
		expected[t.Sender] = next + 1
		txes = append(txes, t)
	}

	timestamp := uint64(time.Now().UnixMilli())
	if timestamp <= prevTime {
		timestamp = prevTime + 1
	}
	var nonceBytes [8]byte
	if _, err := rand.Read(nonceBytes[:]); err != nil {
		return nil, err
	}

	b := block.New(block.Header{
		PrevHash:  prevHash,
		Timestamp: timestamp,
		Index:     height + 1,
		Nonce:     binary.LittleEndian.Uint64(nonceBytes[:]),
	}, txes)
	if err := bc.AddBlock(b); err != nil {
		return nil, err
	}
	return b, nil
}

// AddBlock verifies the given block and, when everything checks out,
// executes its transactions and appends it to the chain. The whole block is
// stored atomically.
func (bc *Blockchain) AddBlock(b *block.Block) error {
	bc.lock.Lock()

	if err := bc.verifyBlock(b); err != nil {
		bc.lock.Unlock()
		return fmt.Errorf("block %s is invalid: %w", b.Hash().StringLE(), err)
	}
	results, err := bc.storeBlock(b)
	if err != nil {
		bc.lock.Unlock()
		return err
	}

	bc.blockHeight = b.Index
	bc.currentBlockHash = b.Hash()
	bc.currentBlockTime = b.Timestamp
	bc.memPool.RemoveStale(func(t *transaction.Transaction) bool {
		if t.ValidUntilBlock < b.Index+1 {
			return false
		}
		_, _, err := bc.dao.GetTransaction(t.Hash())
		return err != nil
	})

	updateBlockHeightMetric(b.Index)
	updateMempoolMetrics(bc.memPool.Count())
	bc.log.Info("accepted block",
		zap.Uint32("index", b.Index),
		zap.String("hash", b.Hash().StringLE()),
		zap.Int("txes", len(b.Transactions)))
	bc.lock.Unlock()

	// Subscribers are notified outside of the chain lock, a slow reader
	// can't stall block acceptance state-wise, only delay the next one.
	bc.notify(b, results)
	return nil
}

func (bc *Blockchain) verifyBlock(b *block.Block) error {
	if b.Index != bc.blockHeight+1 {
		return fmt.Errorf("expected index %d", bc.blockHeight+1)
	}
	if b.PrevHash != bc.currentBlockHash {
		return errors.New("previous block hash mismatch")
	}
	if b.Timestamp <= bc.currentBlockTime {
		return errors.New("timestamp is not ahead of the previous block")
	}
	if len(b.Transactions) > bc.config.MaxTransactionsPerBlock {
		return fmt.Errorf("too many transactions: %d", len(b.Transactions))
	}
	if b.MerkleRoot != b.ComputeMerkleRoot() {
		return errors.New("merkle root mismatch")
	}
	return nil
}

// storeBlock executes the block's transactions and writes everything into
// the chain state. The changes hit the underlying database in one batch.
func (bc *Blockchain) storeBlock(b *block.Block) ([]*state.AppExecResult, error) {
	cache := bc.dao.getWrapped()
	results := make([]*state.AppExecResult, 0, len(b.Transactions))

	for _, t := range b.Transactions {
		if err := bc.verifyTx(cache, t, b.Index); err != nil {
			return nil, fmt.Errorf("transaction %s is invalid: %w", t.Hash().StringLE(), err)
		}
		if t.Nonce != cache.GetAccount(t.Sender).Nonce+1 {
			return nil, fmt.Errorf("transaction %s is out of nonce order", t.Hash().StringLE())
		}

		// Fees are charged and the nonce advances whatever the execution
		// outcome.
		account := cache.GetAccount(t.Sender)
		account.Sub(uint256.NewInt(t.FeeTotal()))
		account.Nonce = t.Nonce
		if err := cache.PutAccount(account); err != nil {
			return nil, err
		}

		aer := bc.executeTransaction(cache, b, t)
		results = append(results, aer)
		if err := cache.PutAppExecResult(aer); err != nil {
			return nil, err
		}
		if err := cache.StoreAsTransaction(t, b.Index); err != nil {
			return nil, err
		}
	}

	if err := cache.StoreAsBlock(b); err != nil {
		return nil, err
	}
	if err := cache.StoreCurrentBlock(b); err != nil {
		return nil, err
	}
	if _, err := cache.persist(); err != nil {
		return nil, err
	}
	if _, err := bc.dao.persist(); err != nil {
		return nil, err
	}
	bc.blockCache.Add(b.Hash(), b)
	return results, nil
}

// executeTransaction runs the transaction payload on a throwaway state
// layer. The layer is persisted on HALT and dropped on FAULT, so a faulted
// transaction leaves no trace but the spent fee.
func (bc *Blockchain) executeTransaction(blockCache *dao, b *block.Block, t *transaction.Transaction) *state.AppExecResult {
	txCache := blockCache.getWrapped()
	ic := interop.NewContext(txCache, interop.Limits{
		BaseExecFee:        bc.config.BaseExecFee,
		StoragePrice:       bc.config.StoragePrice,
		MaxStorageKeyLen:   bc.config.MaxStorageKeyLen,
		MaxStorageValueLen: bc.config.MaxStorageValueLen,
	}, t.SystemFee)
	ic.Network = bc.config.Magic
	ic.BlockHeight = b.Index
	ic.BlockTime = b.Timestamp
	ic.TxHash = t.Hash()
	ic.Sender = t.Sender

	result, err := bc.executePayload(ic, txCache, t)
	if err == nil {
		_, err = txCache.persist()
	}
	if err != nil {
		bc.log.Debug("transaction faulted",
			zap.String("hash", t.Hash().StringLE()),
			zap.Error(err))
		return &state.AppExecResult{
			TxHash:         t.Hash(),
			State:          state.FaultState,
			GasConsumed:    t.SystemFee,
			Result:         smartcontract.Make(nil),
			FaultException: err.Error(),
		}
	}
	return &state.AppExecResult{
		TxHash:      t.Hash(),
		State:       state.HaltState,
		GasConsumed: ic.GasConsumed(),
		Result:      result,
		Events:      ic.Events(),
	}
}

func (bc *Blockchain) executePayload(ic *interop.Context, cache *dao, t *transaction.Transaction) (result smartcontract.Parameter, err error) {
	defer func() {
		if rErr := interop.Recover(recover()); rErr != nil {
			err = rErr
		}
	}()

	switch data := t.Data.(type) {
	case *transaction.Transfer:
		ic.AddGas(bc.config.BaseExecFee)
		sender := cache.GetAccount(t.Sender)
		if !sender.CanPay(data.Amount) {
			return result, ErrInsufficientFunds
		}
		sender.Sub(data.Amount)
		if err := cache.PutAccount(sender); err != nil {
			return result, err
		}
		receiver := cache.GetAccount(data.To)
		receiver.Add(data.Amount)
		if err := cache.PutAccount(receiver); err != nil {
			return result, err
		}
		return smartcontract.Make(true), nil
	case *transaction.Deploy:
		ic.AddGas(bc.config.BaseExecFee + bc.config.DeployFee)
		cs, err := bc.management.Deploy(ic, cache, data.ContractName, &data.Manifest, data.Params)
		if err != nil {
			return result, err
		}
		return smartcontract.Make(cs.Hash), nil
	case *transaction.Invoke:
		ic.AddGas(bc.config.BaseExecFee)
		return bc.management.Call(ic, cache, data.Contract, data.Method, data.Params)
	default:
		return result, transaction.ErrUnknownType
	}
}

// CallContract invokes a contract method against the current chain state
// without a transaction. Any state changes are discarded, so it's the way
// to read contract data: calling a safe method costs nothing and changes
// nothing.
func (bc *Blockchain) CallContract(h util.Uint160, method string, params []smartcontract.Parameter) (*state.AppExecResult, error) {
	bc.lock.RLock()
	defer bc.lock.RUnlock()

	cache := bc.dao.getWrapped()
	ic := interop.NewContext(cache, interop.Limits{
		BaseExecFee:        bc.config.BaseExecFee,
		StoragePrice:       bc.config.StoragePrice,
		MaxStorageKeyLen:   bc.config.MaxStorageKeyLen,
		MaxStorageValueLen: bc.config.MaxStorageValueLen,
	}, maxGasInvoke)
	ic.Network = bc.config.Magic
	ic.BlockHeight = bc.blockHeight
	ic.BlockTime = bc.currentBlockTime

	var (
		result smartcontract.Parameter
		err    error
	)
	func() {
		defer func() {
			if rErr := interop.Recover(recover()); rErr != nil {
				err = rErr
			}
		}()
		result, err = bc.management.Call(ic, cache, h, method, params)
	}()
	if err != nil {
		return &state.AppExecResult{
			State:          state.FaultState,
			GasConsumed:    ic.GasConsumed(),
			Result:         smartcontract.Make(nil),
			FaultException: err.Error(),
		}, nil
	}
	return &state.AppExecResult{
		State:       state.HaltState,
		GasConsumed: ic.GasConsumed(),
		Result:      result,
		Events:      ic.Events(),
	}, nil
}

// GetBlock returns the block with the given hash.
func (bc *Blockchain) GetBlock(hash util.Uint256) (*block.Block, error) {
	if b, ok := bc.blockCache.Get(hash); ok {
		return b.(*block.Block), nil
	}
	b, err := bc.dao.GetBlock(hash)
	if err != nil {
		return nil, err
	}
	bc.blockCache.Add(hash, b)
	return b, nil
}

// GetBlockByIndex returns the block at the given height.
func (bc *Blockchain) GetBlockByIndex(index uint32) (*block.Block, error) {
	hash, err := bc.dao.GetBlockHash(index)
	if err != nil {
		return nil, err
	}
	return bc.GetBlock(hash)
}

// GetTransaction returns the stored transaction with the given hash and the
// height of the block it's in.
func (bc *Blockchain) GetTransaction(hash util.Uint256) (*transaction.Transaction, uint32, error) {
	return bc.dao.GetTransaction(hash)
}

// GetAppExecResult returns the execution result of the transaction with the
// given hash.
func (bc *Blockchain) GetAppExecResult(hash util.Uint256) (*state.AppExecResult, error) {
	return bc.dao.GetAppExecResult(hash)
}

// GetContractState returns the deployed contract with the given hash, nil
// when there's none.
func (bc *Blockchain) GetContractState(hash util.Uint160) *state.Contract {
	return bc.dao.GetContract(hash)
}

// GetAccountState returns the state of the given account, a zero-balance
// one when the chain has never seen it.
func (bc *Blockchain) GetAccountState(hash util.Uint160) *state.Account {
	return bc.dao.GetAccount(hash)
}

// GetStorageItem reads a raw storage entry of a deployed contract.
func (bc *Blockchain) GetStorageItem(hash util.Uint160, key []byte) ([]byte, error) {
	cs := bc.dao.GetContract(hash)
	if cs == nil {
		return nil, contracts.ErrContractNotFound
	}
	item := bc.dao.GetStorageItem(cs.ID, key)
	if item == nil {
		return nil, storage.ErrKeyNotFound
	}
	return item, nil
}

// SubscribeForBlocks adds the given channel to the new block event
// broadcasting. The subscriber must keep reading or everything stalls.
func (bc *Blockchain) SubscribeForBlocks(ch chan<- *block.Block) {
	bc.subLock.Lock()
	defer bc.subLock.Unlock()
	bc.blockSubs[ch] = true
}

// UnsubscribeFromBlocks removes the given channel from block event
// broadcasting.
func (bc *Blockchain) UnsubscribeFromBlocks(ch chan<- *block.Block) {
	bc.subLock.Lock()
	defer bc.subLock.Unlock()
	delete(bc.blockSubs, ch)
}

// SubscribeForExecutions adds the given channel to the execution result
// broadcasting.
func (bc *Blockchain) SubscribeForExecutions(ch chan<- *state.AppExecResult) {
	bc.subLock.Lock()
	defer bc.subLock.Unlock()
	bc.execSubs[ch] = true
}

// UnsubscribeFromExecutions removes the given channel from execution result
// broadcasting.
func (bc *Blockchain) UnsubscribeFromExecutions(ch chan<- *state.AppExecResult) {
	bc.subLock.Lock()
	defer bc.subLock.Unlock()
	delete(bc.execSubs, ch)
}

func (bc *Blockchain) notify(b *block.Block, results []*state.AppExecResult) {
	bc.subLock.RLock()
	defer bc.subLock.RUnlock()
	for ch := range bc.blockSubs {
		ch <- b
	}
	for ch := range bc.execSubs {
		for _, aer := range results {
			ch <- aer
		}
	}
}

// Run produces blocks on the configured interval until the context is done.
// Blocks are only mined when there is something in the mempool.
func (bc *Blockchain) Run(ctx context.Context) {
	ticker := time.NewTicker(bc.config.TimePerBlock)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if bc.memPool.Count() == 0 {
				continue
			}
			if _, err := bc.MineBlock(); err != nil {
				bc.log.Error("failed to mine block", zap.Error(err))
			}
		}
	}
}
