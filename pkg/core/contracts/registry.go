package contracts

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the contract implementations available for deployment.
type Registry struct {
	lock      sync.RWMutex
	contracts map[string]*Contract
}

// NewRegistry returns an empty contract registry.
func NewRegistry() *Registry {
	return &Registry{contracts: make(map[string]*Contract)}
}

// Register adds a contract implementation to the registry. The name must
// not be taken and the manifest must be well-formed.
func (r *Registry) Register(c *Contract) error {
	if err := c.manifest.IsValid(); err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.contracts[c.Name()]; ok {
		return fmt.Errorf("contract %s is already registered", c.Name())
	}
	r.contracts[c.Name()] = c
	return nil
}

// Get returns the implementation registered under the given name.
func (r *Registry) Get(name string) (*Contract, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	c, ok := r.contracts[name]
	return c, ok
}

// Names returns the sorted names of all registered contracts.
func (r *Registry) Names() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	names := make([]string, 0, len(r.contracts))
	for name := range r.contracts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
