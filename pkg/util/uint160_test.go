package util

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint160DecodeString(t *testing.T) {
	hexStr := "2d3b96ae1bcc5a585e075e3b81920210dec16302"
	val, err := Uint160DecodeStringBE(hexStr)
	require.NoError(t, err)
	assert.Equal(t, hexStr, val.String())

	_, err = Uint160DecodeStringBE(hexStr[1:])
	require.Error(t, err)

	_, err = Uint160DecodeStringBE(hexStr[:len(hexStr)-2] + "zz")
	require.Error(t, err)
}

func TestUint160DecodeBytes(t *testing.T) {
	b := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
	val, err := Uint160DecodeBytesBE(b)
	require.NoError(t, err)
	assert.Equal(t, b, val.BytesBE())
	assert.Equal(t, ArrayReverse(b), val.BytesLE())

	_, err = Uint160DecodeBytesBE(b[1:])
	require.Error(t, err)
}

func TestUint160Equals(t *testing.T) {
	a := "2d3b96ae1bcc5a585e075e3b81920210dec16302"
	b := "4d3b96ae1bcc5a585e075e3b81920210dec16302"

	ua, err := Uint160DecodeStringBE(a)
	require.NoError(t, err)
	ub, err := Uint160DecodeStringBE(b)
	require.NoError(t, err)
	assert.False(t, ua.Equals(ub), "%s and %s cannot be equal", ua, ub)
	assert.True(t, ua.Equals(ua), "%s and %s must be equal", ua, ua)
	assert.True(t, ua.Less(ub))
	assert.False(t, ub.Less(ua))
}

func TestUint160MarshalJSON(t *testing.T) {
	str := "0263c1de100292813b5e075e585acc1bae963b2d"
	expected, err := Uint160DecodeStringBE(str)
	require.NoError(t, err)

	data, err := json.Marshal(expected)
	require.NoError(t, err)
	assert.Equal(t, `"0x`+str+`"`, string(data))

	var u Uint160
	require.NoError(t, json.Unmarshal(data, &u))
	assert.True(t, expected.Equals(u))

	// 0x prefix is optional.
	require.NoError(t, json.Unmarshal([]byte(`"`+str+`"`), &u))
	assert.True(t, expected.Equals(u))
}
