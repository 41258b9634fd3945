// Package manifest defines the contract metadata model: the name of the
// contract, its callable methods and declared events. It is the only
// description of a contract the chain core works with, there is no
// compiled form beyond it.
package manifest

import (
	"errors"
	"fmt"
	"math"

	"github.com/localnet-dev/localnet/pkg/io"
	"github.com/localnet-dev/localnet/pkg/smartcontract"
	json "github.com/nspcc-dev/go-ordered-json"
)

const (
	// MaxManifestSize is the max length for a valid contract manifest.
	MaxManifestSize = math.MaxUint16

	// MethodDeploy is the name of the method called during contract
	// deployment, it receives constructor parameters.
	MethodDeploy = "_deploy"
)

// ABI represents a contract application binary interface.
type ABI struct {
	Methods []Method `json:"methods"`
	Events  []Event  `json:"events"`
}

// Manifest represents contract metadata.
type Manifest struct {
	// Name is a contract's name.
	Name string `json:"name"`
	// ABI is a contract's ABI.
	ABI ABI `json:"abi"`
	// SupportedStandards is a list of standards supported by the contract.
	SupportedStandards []string `json:"supportedstandards"`
	// Extra is implementation-defined user data.
	Extra any `json:"extra"`
}

// NewManifest returns a new manifest with necessary fields initialized.
func NewManifest(name string) *Manifest {
	return &Manifest{
		Name: name,
		ABI: ABI{
			Methods: []Method{},
			Events:  []Event{},
		},
		SupportedStandards: []string{},
	}
}

// GetMethod returns the method with the specified name.
func (a *ABI) GetMethod(name string) *Method {
	for i := range a.Methods {
		if a.Methods[i].Name == name {
			return &a.Methods[i]
		}
	}
	return nil
}

// GetEvent returns the event with the specified name.
func (a *ABI) GetEvent(name string) *Event {
	for i := range a.Events {
		if a.Events[i].Name == name {
			return &a.Events[i]
		}
	}
	return nil
}

// IsValid checks manifest internal consistency: a non-empty name, no
// duplicate method or event names, valid parameter definitions.
func (m *Manifest) IsValid() error {
	if m.Name == "" {
		return errors.New("no name")
	}
	seenMethods := make(map[string]bool, len(m.ABI.Methods))
	for i := range m.ABI.Methods {
		meth := &m.ABI.Methods[i]
		if err := meth.IsValid(); err != nil {
			return fmt.Errorf("method %q: %w", meth.Name, err)
		}
		if seenMethods[meth.Name] {
			return fmt.Errorf("duplicate method %q", meth.Name)
		}
		seenMethods[meth.Name] = true
	}
	seenEvents := make(map[string]bool, len(m.ABI.Events))
	for i := range m.ABI.Events {
		ev := &m.ABI.Events[i]
		if ev.Name == "" {
			return errors.New("empty event name")
		}
		if seenEvents[ev.Name] {
			return fmt.Errorf("duplicate event %q", ev.Name)
		}
		seenEvents[ev.Name] = true
	}
	return nil
}

// ToJSON serializes the manifest with a stable field and map ordering, the
// result is what checksums are computed over.
func (m *Manifest) ToJSON() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	if len(data) > MaxManifestSize {
		return nil, fmt.Errorf("manifest exceeds %d bytes", MaxManifestSize)
	}
	return data, nil
}

// FromJSON deserializes the manifest from its JSON representation.
func (m *Manifest) FromJSON(data []byte) error {
	if len(data) > MaxManifestSize {
		return fmt.Errorf("manifest exceeds %d bytes", MaxManifestSize)
	}
	return json.Unmarshal(data, m)
}

// EncodeBinary implements the io.Serializable interface.
func (m *Manifest) EncodeBinary(w *io.BinWriter) {
	data, err := m.ToJSON()
	if err != nil {
		w.Err = err
		return
	}
	w.WriteVarBytes(data)
}

// DecodeBinary implements the io.Serializable interface.
func (m *Manifest) DecodeBinary(r *io.BinReader) {
	data := r.ReadVarBytes(MaxManifestSize)
	if r.Err != nil {
		return
	}
	r.Err = m.FromJSON(data)
}

// Parameter represents a contract method's parameter definition.
type Parameter struct {
	Name string                  `json:"name"`
	Type smartcontract.ParamType `json:"type"`
}

// NewParameter returns a new parameter of the specified name and type.
func NewParameter(name string, typ smartcontract.ParamType) Parameter {
	return Parameter{
		Name: name,
		Type: typ,
	}
}

// Event is a description of a single notification event.
type Event struct {
	Name       string      `json:"name"`
	Parameters []Parameter `json:"parameters"`
}
