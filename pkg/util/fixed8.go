package util

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	precision = 8
	decimals  = 100000000
)

// ErrInvalidFixed8Format is returned when Fixed8 parsing fails.
var ErrInvalidFixed8Format = errors.New("invalid Fixed8 format")

// Fixed8 represents a fixed-point number with precision 10^-8. It's used
// for human-readable fee representation.
type Fixed8 int64

// String implements the Stringer interface.
func (f Fixed8) String() string {
	buf := new(bytes.Buffer)
	val := int64(f)
	if val < 0 {
		buf.WriteRune('-')
		val = -val
	}
	str := strconv.FormatInt(val/decimals, 10)
	buf.WriteString(str)
	val %= decimals
	if val > 0 {
		buf.WriteRune('.')
		str = strconv.FormatInt(val, 10)
		for i := len(str); i < precision; i++ {
			buf.WriteRune('0')
		}
		buf.WriteString(strings.TrimRight(str, "0"))
	}
	return buf.String()
}

// FloatValue returns the original value representing Fixed8 as a float64.
func (f Fixed8) FloatValue() float64 {
	return float64(f) / decimals
}

// IntegralValue returns the integer part of f.
func (f Fixed8) IntegralValue() int64 {
	return int64(f) / decimals
}

// FractionalValue returns the decimal part of f.
func (f Fixed8) FractionalValue() int32 {
	return int32(int64(f) % decimals)
}

// Fixed8FromInt64 returns a Fixed8 representation of the int64 value.
func Fixed8FromInt64(val int64) Fixed8 {
	return Fixed8(val * decimals)
}

// Fixed8FromFloat returns a Fixed8 representation of the float64 value.
func Fixed8FromFloat(val float64) Fixed8 {
	return Fixed8(int64(decimals * val))
}

// Fixed8FromString parses a string of the form "123.456" into a Fixed8.
func Fixed8FromString(s string) (Fixed8, error) {
	num := strings.SplitN(s, ".", 2)
	intPart, err := strconv.ParseInt(num[0], 10, 64)
	if err != nil {
		return 0, ErrInvalidFixed8Format
	}
	if len(num) == 1 {
		return Fixed8(intPart * decimals), nil
	}
	fracStr := num[1]
	if len(fracStr) > precision {
		return 0, fmt.Errorf("%w: fraction exceeds precision %d", ErrInvalidFixed8Format, precision)
	}
	fracPart, err := strconv.ParseInt(fracStr, 10, 64)
	if err != nil || fracPart < 0 {
		return 0, ErrInvalidFixed8Format
	}
	for i := len(fracStr); i < precision; i++ {
		fracPart *= 10
	}
	if intPart < 0 {
		return Fixed8(intPart*decimals - fracPart), nil
	}
	return Fixed8(intPart*decimals + fracPart), nil
}

// MarshalJSON implements the json marshaller interface.
func (f Fixed8) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.String() + `"`), nil
}

// UnmarshalJSON implements the json unmarshaller interface.
func (f *Fixed8) UnmarshalJSON(data []byte) error {
	if len(data) > 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	v, err := Fixed8FromString(string(data))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
