package manifest

import (
	"errors"
	"fmt"

	"github.com/localnet-dev/localnet/pkg/smartcontract"
)

// Method represents method's metadata. A method with the Safe flag set is a
// view: it may read contract storage but any write attempt faults.
type Method struct {
	Name       string                  `json:"name"`
	Parameters []Parameter             `json:"parameters"`
	ReturnType smartcontract.ParamType `json:"returntype"`
	Safe       bool                    `json:"safe"`
}

// NewMethod returns a Method with the given signature.
func NewMethod(name string, ret smartcontract.ParamType, safe bool, params ...Parameter) Method {
	if params == nil {
		params = []Parameter{}
	}
	return Method{
		Name:       name,
		Parameters: params,
		ReturnType: ret,
		Safe:       safe,
	}
}

// IsValid checks method definition consistency.
func (m *Method) IsValid() error {
	if m.Name == "" {
		return errors.New("empty name")
	}
	seen := make(map[string]bool, len(m.Parameters))
	for i := range m.Parameters {
		p := &m.Parameters[i]
		if p.Name == "" {
			return fmt.Errorf("parameter #%d: empty name", i)
		}
		if p.Type == smartcontract.VoidType {
			return fmt.Errorf("parameter %q: void type", p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate parameter %q", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}
