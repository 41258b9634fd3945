package flags

import (
	"flag"
	"testing"

	"github.com/localnet-dev/localnet/pkg/encoding/address"
	"github.com/localnet-dev/localnet/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressSet(t *testing.T) {
	u := util.Uint160{1, 2, 3}

	var a Address
	require.Error(t, a.Set("not an address"))
	require.NoError(t, a.Set(address.Uint160ToString(u)))
	assert.True(t, a.IsSet)
	assert.Equal(t, u, a.Uint160())
	assert.Equal(t, address.Uint160ToString(u), a.String())

	var h Address
	require.NoError(t, h.Set("0x"+u.String()))
	assert.Equal(t, u, h.Uint160())
}

func TestAddressUnsetPanics(t *testing.T) {
	var a Address
	require.Panics(t, func() { a.Uint160() })
}

func TestAddressFlagApply(t *testing.T) {
	f := AddressFlag{Name: "from, f", Usage: "sender"}
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	f.Apply(set)

	u := util.Uint160{7}
	require.NoError(t, set.Parse([]string{"--from", address.Uint160ToString(u)}))
	got := set.Lookup("f").Value.(*Address)
	assert.Equal(t, u, got.Uint160())
	assert.Contains(t, f.String(), "--from value")
	assert.Equal(t, "from, f", f.GetName())
}

func TestFixed8Set(t *testing.T) {
	var f Fixed8
	require.Error(t, f.Set("not-a-number"))
	require.NoError(t, f.Set("1.5"))
	assert.Equal(t, util.Fixed8FromFloat(1.5), f.Fixed8())
	assert.Equal(t, "1.5", f.String())
}

func TestFixed8FlagApply(t *testing.T) {
	f := Fixed8Flag{Name: "gas", Usage: "fee"}
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	f.Apply(set)

	require.NoError(t, set.Parse([]string{"--gas", "0.001"}))
	got := set.Lookup("gas").Value.(*Fixed8)
	assert.Equal(t, util.Fixed8FromFloat(0.001), got.Fixed8())
}
