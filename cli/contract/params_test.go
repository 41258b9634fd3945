package contract

import (
	"testing"

	"github.com/localnet-dev/localnet/pkg/encoding/address"
	"github.com/localnet-dev/localnet/pkg/smartcontract"
	"github.com/localnet-dev/localnet/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParam(t *testing.T) {
	u := util.Uint160{1, 2, 3}

	cases := map[string]smartcontract.Parameter{
		"true":                                  smartcontract.Make(true),
		"false":                                 smartcontract.Make(false),
		"42":                                    smartcontract.Make(42),
		"-7":                                    smartcontract.Make(-7),
		"hello":                                 smartcontract.Make("hello"),
		"bool:true":                             smartcontract.Make(true),
		"int:42":                                smartcontract.Make(42),
		"string:42":                             smartcontract.Make("42"),
		"string:bool:true":                      smartcontract.Make("bool:true"),
		"bytes:cafe":                            smartcontract.Make([]byte{0xca, 0xfe}),
		"hash160:0x" + u.String():               smartcontract.Make(u),
		"address:" + address.Uint160ToString(u): smartcontract.Make(u),
	}
	for in, expected := range cases {
		actual, err := parseParam(in)
		require.NoError(t, err, in)
		assert.Equal(t, expected, actual, in)
	}
}

func TestParseParamErrors(t *testing.T) {
	for _, in := range []string{"bool:maybe", "int:one", "bytes:zz", "hash160:tooshort"} {
		_, err := parseParam(in)
		require.Error(t, err, in)
	}
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"1", "two", "true"})
	require.NoError(t, err)
	require.Len(t, params, 3)
	assert.EqualValues(t, 1, params[0].IntValue())
	assert.Equal(t, "two", params[1].StringValue())
	assert.True(t, params[2].BoolValue())
}
