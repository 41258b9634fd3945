package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed8String(t *testing.T) {
	tests := map[string]Fixed8{
		"123.456":    Fixed8(12345600000),
		"12.34":      Fixed8(1234000000),
		"0.1":        Fixed8(10000000),
		"1":          Fixed8FromInt64(1),
		"-2":         Fixed8FromInt64(-2),
		"1000000000": Fixed8FromInt64(1000000000),
	}
	for expected, f := range tests {
		assert.Equal(t, expected, f.String())
	}
}

func TestFixed8FromString(t *testing.T) {
	val, err := Fixed8FromString("123.45")
	require.NoError(t, err)
	assert.Equal(t, Fixed8(12345000000), val)

	val, err = Fixed8FromString("123")
	require.NoError(t, err)
	assert.Equal(t, Fixed8FromInt64(123), val)

	_, err = Fixed8FromString("123.123456789") // fraction too long
	require.Error(t, err)

	_, err = Fixed8FromString("notanumber")
	require.Error(t, err)
}

func TestFixed8Parts(t *testing.T) {
	f, err := Fixed8FromString("123.45")
	require.NoError(t, err)
	assert.Equal(t, int64(123), f.IntegralValue())
	assert.Equal(t, int32(45000000), f.FractionalValue())
	assert.InDelta(t, 123.45, f.FloatValue(), 0.000001)
}

func TestFixed8JSON(t *testing.T) {
	f, err := Fixed8FromString("0.5")
	require.NoError(t, err)
	data, err := f.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"0.5"`, string(data))

	var dec Fixed8
	require.NoError(t, dec.UnmarshalJSON(data))
	assert.Equal(t, f, dec)
}
