// Package contracts implements the contract machinery of the chain. A
// contract here is a native Go implementation registered under a name, the
// management layer binds registered implementations to on-chain contract
// states on deployment.
package contracts

import (
	"fmt"

	"github.com/localnet-dev/localnet/pkg/core/interop"
	"github.com/localnet-dev/localnet/pkg/smartcontract"
	"github.com/localnet-dev/localnet/pkg/smartcontract/manifest"
	"github.com/twmb/murmur3"
)

// MethodFunc is the implementation of a single contract method. It returns
// the method's result and faults via the context on any error.
type MethodFunc func(ic *interop.Context, params []smartcontract.Parameter) smartcontract.Parameter

// Contract couples a manifest with the Go implementations of its methods.
type Contract struct {
	manifest *manifest.Manifest
	methods  map[string]MethodFunc
}

// New starts a contract implementation with the given name. Methods and
// events are added afterwards.
func New(name string) *Contract {
	return &Contract{
		manifest: manifest.NewManifest(name),
		methods:  make(map[string]MethodFunc),
	}
}

// Name returns the name the contract is registered under.
func (c *Contract) Name() string {
	return c.manifest.Name
}

// Manifest returns the contract's manifest.
func (c *Contract) Manifest() *manifest.Manifest {
	return c.manifest
}

// AddMethod adds a method to the contract's interface together with its
// implementation.
func (c *Contract) AddMethod(md manifest.Method, impl MethodFunc) {
	c.manifest.ABI.Methods = append(c.manifest.ABI.Methods, md)
	c.methods[md.Name] = impl
}

// AddEvent declares an event the contract can emit.
func (c *Contract) AddEvent(name string, params ...manifest.Parameter) {
	c.manifest.ABI.Events = append(c.manifest.ABI.Events, manifest.Event{
		Name:       name,
		Parameters: params,
	})
}

// Checksum returns the checksum of the contract interface, it is mixed into
// the hash of every deployed instance. The manifest JSON form is ordered,
// so the value is stable.
func (c *Contract) Checksum() uint32 {
	data, err := c.manifest.ToJSON()
	if err != nil {
		panic(fmt.Errorf("invalid manifest: %w", err))
	}
	return murmur3.Sum32(data)
}

// GetMethod returns the implementation and the declaration of the named
// method.
func (c *Contract) GetMethod(name string) (MethodFunc, *manifest.Method) {
	impl, ok := c.methods[name]
	if !ok {
		return nil, nil
	}
	return impl, c.manifest.ABI.GetMethod(name)
}
