// Package mempool contains the transaction pool: transactions accepted from
// clients wait here, ordered by fee, until the next block picks them up.
package mempool

import (
	"errors"
	"sort"
	"sync"

	"github.com/localnet-dev/localnet/pkg/core/transaction"
	"github.com/localnet-dev/localnet/pkg/util"
)

var (
	// ErrConflict is returned when the pool already holds a transaction
	// with the same sender and nonce but a different hash.
	ErrConflict = errors.New("conflicting transaction in the pool")
	// ErrDup is returned when the transaction is already in the pool.
	ErrDup = errors.New("already in the pool")
	// ErrOOM is returned when the pool is full and the candidate doesn't
	// pay enough to displace anything.
	ErrOOM = errors.New("the pool is full")
)

type item struct {
	txn *transaction.Transaction
}

// CompareTo returns the priority ordering of two items, higher total fee
// wins, hash breaks ties to keep the order deterministic.
func (p item) CompareTo(other item) int {
	if p.txn.FeeTotal() != other.txn.FeeTotal() {
		if p.txn.FeeTotal() > other.txn.FeeTotal() {
			return 1
		}
		return -1
	}
	return -p.txn.Hash().CompareTo(other.txn.Hash())
}

// Pool stores unconfirmed transactions sorted by priority.
type Pool struct {
	lock     sync.RWMutex
	verified map[util.Uint256]*item
	sorted   []*item // ascending by priority

	capacity int
}

// New returns a new Pool with the given transaction capacity.
func New(capacity int) *Pool {
	return &Pool{
		verified: make(map[util.Uint256]*item, capacity),
		capacity: capacity,
	}
}

// Count returns the current number of transactions in the pool.
func (mp *Pool) Count() int {
	mp.lock.RLock()
	defer mp.lock.RUnlock()
	return len(mp.sorted)
}

// ContainsKey checks whether the given transaction hash is in the pool.
func (mp *Pool) ContainsKey(hash util.Uint256) bool {
	mp.lock.RLock()
	defer mp.lock.RUnlock()
	_, ok := mp.verified[hash]
	return ok
}

// TryGetValue returns the transaction with the given hash if it's in the
// pool.
func (mp *Pool) TryGetValue(hash util.Uint256) (*transaction.Transaction, bool) {
	mp.lock.RLock()
	defer mp.lock.RUnlock()
	if it, ok := mp.verified[hash]; ok {
		return it.txn, true
	}
	return nil, false
}

// Add tries to add the given transaction to the pool. When the pool is full,
// the candidate must outbid the worst pooled transaction to get in.
func (mp *Pool) Add(t *transaction.Transaction) error {
	pItem := &item{txn: t}

	mp.lock.Lock()
	defer mp.lock.Unlock()

	if _, ok := mp.verified[t.Hash()]; ok {
		return ErrDup
	}
	for _, it := range mp.sorted {
		if it.txn.Sender == t.Sender && it.txn.Nonce == t.Nonce {
			return ErrConflict
		}
	}

	if len(mp.sorted) == mp.capacity {
		if mp.sorted[0].CompareTo(*pItem) >= 0 {
			return ErrOOM
		}
		evicted := mp.sorted[0]
		mp.sorted = mp.sorted[1:]
		delete(mp.verified, evicted.txn.Hash())
	}

	n := sort.Search(len(mp.sorted), func(n int) bool {
		return mp.sorted[n].CompareTo(*pItem) > 0
	})
	mp.sorted = append(mp.sorted, nil)
	copy(mp.sorted[n+1:], mp.sorted[n:])
	mp.sorted[n] = pItem
	mp.verified[t.Hash()] = pItem
	return nil
}

// Remove removes the transaction with the given hash from the pool.
func (mp *Pool) Remove(hash util.Uint256) {
	mp.lock.Lock()
	defer mp.lock.Unlock()
	mp.removeInternal(hash)
}

func (mp *Pool) removeInternal(hash util.Uint256) {
	it, ok := mp.verified[hash]
	if !ok {
		return
	}
	delete(mp.verified, hash)
	for n, cur := range mp.sorted {
		if cur == it {
			mp.sorted = append(mp.sorted[:n], mp.sorted[n+1:]...)
			break
		}
	}
}

// GetVerifiedTransactions returns pooled transactions in the order they
// should enter a block, best paying first. Up to limit transactions are
// returned, zero limit means all.
func (mp *Pool) GetVerifiedTransactions(limit int) []*transaction.Transaction {
	mp.lock.RLock()
	defer mp.lock.RUnlock()

	n := len(mp.sorted)
	if limit > 0 && limit < n {
		n = limit
	}
	txes := make([]*transaction.Transaction, n)
	for i := 0; i < n; i++ {
		txes[i] = mp.sorted[len(mp.sorted)-1-i].txn
	}
	return txes
}

// RemoveStale drops transactions that no longer satisfy the given predicate,
// it is called after every accepted block to get rid of included and expired
// transactions.
func (mp *Pool) RemoveStale(isOK func(*transaction.Transaction) bool) {
	mp.lock.Lock()
	defer mp.lock.Unlock()

	newSorted := mp.sorted[:0]
	for _, it := range mp.sorted {
		if isOK(it.txn) {
			newSorted = append(newSorted, it)
		} else {
			delete(mp.verified, it.txn.Hash())
		}
	}
	mp.sorted = newSorted
}
