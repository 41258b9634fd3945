package storage

import (
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory implementation of a Store, mainly
// used for testing. Do not use MemoryStore in production.
type MemoryStore struct {
	mut sync.RWMutex
	mem map[string][]byte
}

// MemoryBatch is an in-memory batch compatible with MemoryStore.
type MemoryBatch struct {
	put map[string][]byte
	del map[string]bool
}

// Put implements the Batch interface.
func (b *MemoryBatch) Put(k, v []byte) {
	vcopy := make([]byte, len(v))
	copy(vcopy, v)
	key := string(k)
	b.put[key] = vcopy
	delete(b.del, key)
}

// Delete implements the Batch interface.
func (b *MemoryBatch) Delete(k []byte) {
	key := string(k)
	delete(b.put, key)
	b.del[key] = true
}

// Len implements the Batch interface.
func (b *MemoryBatch) Len() int {
	return len(b.put) + len(b.del)
}

// NewMemoryStore creates a new MemoryStore object.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mem: make(map[string][]byte),
	}
}

// Get implements the Store interface.
func (s *MemoryStore) Get(key []byte) ([]byte, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()
	if val, ok := s.mem[string(key)]; ok {
		return val, nil
	}
	return nil, ErrKeyNotFound
}

// Put implements the Store interface. Never returns an error.
func (s *MemoryStore) Put(key, value []byte) error {
	vcopy := make([]byte, len(value))
	copy(vcopy, value)
	s.mut.Lock()
	s.mem[string(key)] = vcopy
	s.mut.Unlock()
	return nil
}

// Delete implements the Store interface. Never returns an error.
func (s *MemoryStore) Delete(key []byte) error {
	s.mut.Lock()
	delete(s.mem, string(key))
	s.mut.Unlock()
	return nil
}

// PutBatch implements the Store interface. Never returns an error.
func (s *MemoryStore) PutBatch(batch Batch) error {
	b := batch.(*MemoryBatch)
	s.mut.Lock()
	defer s.mut.Unlock()
	for k := range b.del {
		delete(s.mem, k)
	}
	for k, v := range b.put {
		s.mem[k] = v
	}
	return nil
}

// Seek implements the Store interface.
func (s *MemoryStore) Seek(key []byte, f func(k, v []byte)) {
	s.mut.RLock()
	defer s.mut.RUnlock()

	sk := string(key)
	var memList []KeyValue
	for k, v := range s.mem {
		if strings.HasPrefix(k, sk) {
			memList = append(memList, KeyValue{
				Key:   []byte(k),
				Value: v,
			})
		}
	}
	sort.Slice(memList, func(i, j int) bool {
		return string(memList[i].Key) < string(memList[j].Key)
	})
	for _, kv := range memList {
		f(kv.Key, kv.Value)
	}
}

// Batch implements the Batch interface and returns a compatible Batch.
func (s *MemoryStore) Batch() Batch {
	return newMemoryBatch()
}

// newMemoryBatch returns a new memory batch.
func newMemoryBatch() *MemoryBatch {
	return &MemoryBatch{
		put: make(map[string][]byte),
		del: make(map[string]bool),
	}
}

// Close implements the Store interface and clears up memory. Never returns
// an error.
func (s *MemoryStore) Close() error {
	s.mut.Lock()
	s.mem = nil
	s.mut.Unlock()
	return nil
}

// KeyValue represents a KV pair.
type KeyValue struct {
	Key   []byte
	Value []byte
}
