package contracts

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/localnet-dev/localnet/pkg/core/interop"
	"github.com/localnet-dev/localnet/pkg/core/state"
	"github.com/localnet-dev/localnet/pkg/smartcontract"
	"github.com/localnet-dev/localnet/pkg/smartcontract/manifest"
	"github.com/localnet-dev/localnet/pkg/util"
)

// Management errors.
var (
	// ErrAlreadyDeployed is returned on an attempt to deploy a contract
	// that the sender has already deployed.
	ErrAlreadyDeployed = errors.New("contract already deployed")
	// ErrContractNotFound is returned when the requested contract isn't
	// on the chain.
	ErrContractNotFound = errors.New("contract not found")
	// ErrUnknownImplementation is returned when no implementation is
	// registered under the requested name.
	ErrUnknownImplementation = errors.New("unknown contract implementation")
	// ErrManifestMismatch is returned when the manifest attached to a
	// deployment differs from the registered one.
	ErrManifestMismatch = errors.New("declared manifest does not match the registered one")
	// ErrMethodNotFound is returned when invoking a method the contract
	// doesn't have.
	ErrMethodNotFound = errors.New("method not found")
)

// DAO is the contract-state access the management layer needs, it's
// implemented by the chain's data access object.
type DAO interface {
	interop.Storage

	GetContract(hash util.Uint160) *state.Contract
	PutContract(cs *state.Contract)
	DeleteContract(hash util.Uint160)
	GetAndUpdateNextContractID() int32
}

// Management deploys, updates and destroys contracts backed by a registry
// of implementations.
type Management struct {
	reg *Registry
}

// NewManagement returns a management layer over the given registry.
func NewManagement(reg *Registry) *Management {
	return &Management{reg: reg}
}

// Registry returns the implementation registry behind the management.
func (m *Management) Registry() *Registry {
	return m.reg
}

// Deploy puts a new instance of the named implementation on the chain on
// behalf of ic.Sender. The declared manifest pins the interface the
// deployer expects and must match the registered one. The contract's
// _deploy method, when present, runs before Deploy returns.
func (m *Management) Deploy(ic *interop.Context, d DAO, name string, declared *manifest.Manifest, params []smartcontract.Parameter) (*state.Contract, error) {
	impl, ok := m.reg.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownImplementation, name)
	}
	if err := checkDeclared(impl, declared); err != nil {
		return nil, err
	}

	checksum := impl.Checksum()
	h := state.CreateContractHash(ic.Sender, checksum, name)
	if d.GetContract(h) != nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyDeployed, h.StringLE())
	}

	cs := &state.Contract{
		ID:           d.GetAndUpdateNextContractID(),
		Hash:         h,
		ContractName: name,
		Checksum:     checksum,
		Manifest:     *impl.Manifest(),
	}
	d.PutContract(cs)

	if err := m.callDeploy(ic, d, impl, cs, params, false); err != nil {
		return nil, err
	}
	return cs, nil
}

// Update re-binds a deployed contract to the current registered
// implementation. The hash and the checksum stay (they're the contract's
// identity), the manifest follows the implementation and the update counter
// grows. _deploy runs again with the update flag set.
func (m *Management) Update(ic *interop.Context, d DAO, h util.Uint160, params []smartcontract.Parameter) (*state.Contract, error) {
	cs := d.GetContract(h)
	if cs == nil {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, h.StringLE())
	}
	if cs.Hash != state.CreateContractHash(ic.Sender, cs.Checksum, cs.ContractName) {
		return nil, errors.New("only the deployer can update the contract")
	}
	impl, ok := m.reg.Get(cs.ContractName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownImplementation, cs.ContractName)
	}

	cs.Manifest = *impl.Manifest()
	cs.UpdateCounter++
	d.PutContract(cs)

	if err := m.callDeploy(ic, d, impl, cs, params, true); err != nil {
		return nil, err
	}
	return cs, nil
}

// Destroy removes a contract and all of its storage from the chain.
func (m *Management) Destroy(ic *interop.Context, d DAO, h util.Uint160) error {
	cs := d.GetContract(h)
	if cs == nil {
		return fmt.Errorf("%w: %s", ErrContractNotFound, h.StringLE())
	}
	if cs.Hash != state.CreateContractHash(ic.Sender, cs.Checksum, cs.ContractName) {
		return errors.New("only the deployer can destroy the contract")
	}

	var keys [][]byte
	d.SeekStorage(cs.ID, nil, func(k, _ []byte) bool {
		keys = append(keys, append([]byte(nil), k...))
		return true
	})
	for _, k := range keys {
		d.DeleteStorageItem(cs.ID, k)
	}
	d.DeleteContract(h)
	return nil
}

// Call invokes a method of a deployed contract. Safe methods run with
// storage writes disabled. Resolution failures are returned as errors,
// faults raised by the method itself propagate as panics for the executor
// to recover.
func (m *Management) Call(ic *interop.Context, d DAO, h util.Uint160, method string, params []smartcontract.Parameter) (smartcontract.Parameter, error) {
	if strings.HasPrefix(method, "_") {
		return smartcontract.Parameter{}, fmt.Errorf("%w: %s is internal", ErrMethodNotFound, method)
	}
	cs := d.GetContract(h)
	if cs == nil {
		return smartcontract.Parameter{}, fmt.Errorf("%w: %s", ErrContractNotFound, h.StringLE())
	}
	impl, ok := m.reg.Get(cs.ContractName)
	if !ok {
		return smartcontract.Parameter{}, fmt.Errorf("%w: %s", ErrUnknownImplementation, cs.ContractName)
	}
	fn, md := impl.GetMethod(method)
	if fn == nil {
		return smartcontract.Parameter{}, fmt.Errorf("%w: %s has no %s", ErrMethodNotFound, cs.ContractName, method)
	}
	if len(params) != len(md.Parameters) {
		return smartcontract.Parameter{}, fmt.Errorf("%s expects %d parameters, got %d", method, len(md.Parameters), len(params))
	}

	ic.Contract = cs
	ic.ReadOnly = md.Safe
	return fn(ic, params), nil
}

func (m *Management) callDeploy(ic *interop.Context, d DAO, impl *Contract, cs *state.Contract, params []smartcontract.Parameter, update bool) error {
	fn, _ := impl.GetMethod(manifest.MethodDeploy)
	if fn == nil {
		return nil
	}
	ic.Contract = cs
	ic.ReadOnly = false
	fn(ic, append(params, smartcontract.Make(update)))
	return nil
}

func checkDeclared(impl *Contract, declared *manifest.Manifest) error {
	if declared == nil {
		return nil
	}
	want, err := impl.Manifest().ToJSON()
	if err != nil {
		return err
	}
	got, err := declared.ToJSON()
	if err != nil {
		return err
	}
	if !bytes.Equal(want, got) {
		return ErrManifestMismatch
	}
	return nil
}
