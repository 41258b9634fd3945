package smartcontract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParamType represents the Type of the smart contract parameter.
type ParamType int

// A list of supported smart contract parameter types.
const (
	UnknownType   ParamType = -1
	AnyType       ParamType = 0x00
	BoolType      ParamType = 0x10
	IntegerType   ParamType = 0x11
	ByteArrayType ParamType = 0x12
	StringType    ParamType = 0x13
	Hash160Type   ParamType = 0x14
	Hash256Type   ParamType = 0x15
	PublicKeyType ParamType = 0x16
	SignatureType ParamType = 0x17
	ArrayType     ParamType = 0x20
	VoidType      ParamType = 0xff
)

// validParamTypes contains a map of known ParamTypes.
var validParamTypes = map[ParamType]bool{
	UnknownType:   true,
	AnyType:       true,
	BoolType:      true,
	IntegerType:   true,
	ByteArrayType: true,
	StringType:    true,
	Hash160Type:   true,
	Hash256Type:   true,
	PublicKeyType: true,
	SignatureType: true,
	ArrayType:     true,
	VoidType:      true,
}

// String implements the stringer interface.
func (pt ParamType) String() string {
	switch pt {
	case SignatureType:
		return "Signature"
	case BoolType:
		return "Boolean"
	case IntegerType:
		return "Integer"
	case Hash160Type:
		return "Hash160"
	case Hash256Type:
		return "Hash256"
	case ByteArrayType:
		return "ByteArray"
	case PublicKeyType:
		return "PublicKey"
	case StringType:
		return "String"
	case ArrayType:
		return "Array"
	case AnyType:
		return "Any"
	case VoidType:
		return "Void"
	default:
		return ""
	}
}

// MarshalJSON implements the json.Marshaler interface.
func (pt ParamType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + pt.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (pt *ParamType) UnmarshalJSON(data []byte) error {
	var js string
	if err := json.Unmarshal(data, &js); err != nil {
		return err
	}
	p, err := ParseParamType(js)
	if err != nil {
		return err
	}
	*pt = p
	return nil
}

// ParseParamType is a user-friendly relaxed parsing of a string into a
// ParamType.
func ParseParamType(typ string) (ParamType, error) {
	switch strings.ToLower(typ) {
	case "signature":
		return SignatureType, nil
	case "bool", "boolean":
		return BoolType, nil
	case "int", "integer":
		return IntegerType, nil
	case "hash160":
		return Hash160Type, nil
	case "hash256":
		return Hash256Type, nil
	case "bytes", "bytearray", "bytestring":
		return ByteArrayType, nil
	case "key", "publickey":
		return PublicKeyType, nil
	case "string":
		return StringType, nil
	case "array", "struct":
		return ArrayType, nil
	case "any":
		return AnyType, nil
	case "void":
		return VoidType, nil
	default:
		return UnknownType, fmt.Errorf("unknown parameter type: %s", typ)
	}
}

// ConvertToParamType converts the provided value to the parameter type if it's
// a valid type.
func ConvertToParamType(val int) (ParamType, error) {
	if validParamTypes[ParamType(val)] {
		return ParamType(val), nil
	}
	return UnknownType, fmt.Errorf("unknown parameter type: %d", val)
}
