package smartcontract

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/localnet-dev/localnet/pkg/io"
	"github.com/localnet-dev/localnet/pkg/util"
)

// MaxNestingDepth is the maximum allowed nesting level of Array parameters.
const MaxNestingDepth = 8

// Parameter represents a smart contract parameter: a typed value passed to
// or returned from a contract method.
type Parameter struct {
	// Type of the parameter.
	Type ParamType `json:"type"`
	// The actual value of the parameter. The concrete Go type depends on
	// Type: bool, int64, []byte, string, util.Uint160, util.Uint256 or
	// []Parameter.
	Value any `json:"value"`
}

// NewParameter returns a Parameter with a proper initialized Value of the
// given ParamType.
func NewParameter(t ParamType) Parameter {
	return Parameter{
		Type:  t,
		Value: nil,
	}
}

// Make is a convenience shorthand turning a plain Go value into a Parameter.
// It panics on unsupported types, the set of supported ones is the set the
// Parameter itself can hold.
func Make(v any) Parameter {
	switch val := v.(type) {
	case bool:
		return Parameter{Type: BoolType, Value: val}
	case int:
		return Parameter{Type: IntegerType, Value: int64(val)}
	case int64:
		return Parameter{Type: IntegerType, Value: val}
	case []byte:
		return Parameter{Type: ByteArrayType, Value: val}
	case string:
		return Parameter{Type: StringType, Value: val}
	case util.Uint160:
		return Parameter{Type: Hash160Type, Value: val}
	case util.Uint256:
		return Parameter{Type: Hash256Type, Value: val}
	case []Parameter:
		return Parameter{Type: ArrayType, Value: val}
	case Parameter:
		return val
	case nil:
		return Parameter{Type: VoidType}
	default:
		panic(fmt.Sprintf("unsupported parameter value %T", v))
	}
}

// MakeArray turns a list of plain Go values into an Array parameter.
func MakeArray(vs ...any) Parameter {
	arr := make([]Parameter, len(vs))
	for i := range vs {
		arr[i] = Make(vs[i])
	}
	return Parameter{Type: ArrayType, Value: arr}
}

// BoolValue returns the boolean held by p, or false when p holds something
// else.
func (p Parameter) BoolValue() bool {
	v, _ := p.Value.(bool)
	return v
}

// IntValue returns the integer held by p, or zero when p holds something
// else.
func (p Parameter) IntValue() int64 {
	v, _ := p.Value.(int64)
	return v
}

// StringValue returns the string held by p. Byte arrays are converted
// transparently, any other content turns into an empty string.
func (p Parameter) StringValue() string {
	switch v := p.Value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// BytesValue returns the byte slice held by p. Strings are converted
// transparently, any other content turns into nil.
func (p Parameter) BytesValue() []byte {
	switch v := p.Value.(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	default:
		return nil
	}
}

// Hash160Value returns the Uint160 held by p, or a zero one when p holds
// something else.
func (p Parameter) Hash160Value() util.Uint160 {
	v, _ := p.Value.(util.Uint160)
	return v
}

// ArrayValue returns the parameter array held by p, or nil when p holds
// something else.
func (p Parameter) ArrayValue() []Parameter {
	v, _ := p.Value.([]Parameter)
	return v
}

// Parameters is just an array of Parameter.
type Parameters []Parameter

// EncodeBinary implements the io.Serializable interface.
func (ps Parameters) EncodeBinary(w *io.BinWriter) {
	w.WriteVarUint(uint64(len(ps)))
	for i := range ps {
		ps[i].EncodeBinary(w)
	}
}

// DecodeBinary implements the io.Serializable interface.
func (ps *Parameters) DecodeBinary(r *io.BinReader) {
	l := r.ReadVarUint()
	if l > io.MaxArraySize {
		r.Err = fmt.Errorf("array is too big (%d)", l)
		return
	}
	arr := make([]Parameter, l)
	for i := range arr {
		arr[i].DecodeBinary(r)
	}
	*ps = arr
}

// EncodeBinary implements the io.Serializable interface.
func (p Parameter) EncodeBinary(w *io.BinWriter) {
	p.encodeBinary(w, 0)
}

func (p Parameter) encodeBinary(w *io.BinWriter, depth int) {
	if depth > MaxNestingDepth {
		w.Err = errors.New("too deeply nested parameter")
		return
	}
	w.WriteB(byte(p.Type))
	switch p.Type {
	case BoolType:
		w.WriteBool(p.BoolValue())
	case IntegerType:
		w.WriteU64LE(uint64(p.IntValue()))
	case ByteArrayType, PublicKeyType, SignatureType:
		w.WriteVarBytes(p.BytesValue())
	case StringType:
		w.WriteString(p.StringValue())
	case Hash160Type:
		v := p.Hash160Value()
		w.WriteBytes(v.BytesBE())
	case Hash256Type:
		v, ok := p.Value.(util.Uint256)
		if !ok {
			w.Err = errors.New("not a Hash256 parameter")
			return
		}
		w.WriteBytes(v.BytesBE())
	case ArrayType:
		v := p.ArrayValue()
		w.WriteVarUint(uint64(len(v)))
		for i := range v {
			v[i].encodeBinary(w, depth+1)
		}
	case VoidType, AnyType:
	default:
		w.Err = fmt.Errorf("unsupported parameter type %d", p.Type)
	}
}

// DecodeBinary implements the io.Serializable interface.
func (p *Parameter) DecodeBinary(r *io.BinReader) {
	p.decodeBinary(r, 0)
}

func (p *Parameter) decodeBinary(r *io.BinReader, depth int) {
	if depth > MaxNestingDepth {
		r.Err = errors.New("too deeply nested parameter")
		return
	}
	t, err := ConvertToParamType(int(r.ReadB()))
	if r.Err != nil {
		return
	}
	if err != nil {
		r.Err = err
		return
	}
	p.Type = t
	switch t {
	case BoolType:
		p.Value = r.ReadBool()
	case IntegerType:
		p.Value = int64(r.ReadU64LE())
	case ByteArrayType, PublicKeyType, SignatureType:
		p.Value = r.ReadVarBytes()
	case StringType:
		p.Value = r.ReadString()
	case Hash160Type:
		var u util.Uint160
		r.ReadBytes(u[:])
		p.Value = u
	case Hash256Type:
		var u util.Uint256
		r.ReadBytes(u[:])
		p.Value = u
	case ArrayType:
		l := r.ReadVarUint()
		if l > io.MaxArraySize {
			r.Err = fmt.Errorf("array is too big (%d)", l)
			return
		}
		arr := make([]Parameter, l)
		for i := range arr {
			arr[i].decodeBinary(r, depth+1)
		}
		p.Value = arr
	case VoidType, AnyType:
		p.Value = nil
	}
}

// MarshalJSON implements the json.Marshaler interface.
func (p Parameter) MarshalJSON() ([]byte, error) {
	type rawParameter struct {
		Type  ParamType       `json:"type"`
		Value json.RawMessage `json:"value,omitempty"`
	}
	var (
		resultRawValue json.RawMessage
		err            error
	)
	switch p.Type {
	case BoolType, IntegerType, StringType, Hash160Type, Hash256Type, ArrayType:
		resultRawValue, err = json.Marshal(p.Value)
	case ByteArrayType, PublicKeyType, SignatureType:
		resultRawValue, err = json.Marshal(hex.EncodeToString(p.BytesValue()))
	case VoidType, AnyType:
	default:
		return nil, fmt.Errorf("can't marshal %s", p.Type)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(rawParameter{Type: p.Type, Value: resultRawValue})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (p *Parameter) UnmarshalJSON(data []byte) error {
	type rawParameter struct {
		Type  ParamType       `json:"type"`
		Value json.RawMessage `json:"value,omitempty"`
	}
	var raw rawParameter
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Type = raw.Type
	switch raw.Type {
	case BoolType:
		var b bool
		if err := json.Unmarshal(raw.Value, &b); err != nil {
			return err
		}
		p.Value = b
	case IntegerType:
		var i int64
		if err := json.Unmarshal(raw.Value, &i); err != nil {
			return err
		}
		p.Value = i
	case StringType:
		var s string
		if err := json.Unmarshal(raw.Value, &s); err != nil {
			return err
		}
		p.Value = s
	case ByteArrayType, PublicKeyType, SignatureType:
		var s string
		if err := json.Unmarshal(raw.Value, &s); err != nil {
			return err
		}
		b, err := hex.DecodeString(s)
		if err != nil {
			return err
		}
		p.Value = b
	case Hash160Type:
		var u util.Uint160
		if err := json.Unmarshal(raw.Value, &u); err != nil {
			return err
		}
		p.Value = u
	case Hash256Type:
		var u util.Uint256
		if err := json.Unmarshal(raw.Value, &u); err != nil {
			return err
		}
		p.Value = u
	case ArrayType:
		var arr []Parameter
		if err := json.Unmarshal(raw.Value, &arr); err != nil {
			return err
		}
		p.Value = arr
	case VoidType, AnyType:
		p.Value = nil
	default:
		return fmt.Errorf("can't unmarshal parameter type %d", raw.Type)
	}
	return nil
}
