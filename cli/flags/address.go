package flags

import (
	"flag"
	"strings"

	"github.com/localnet-dev/localnet/pkg/encoding/address"
	"github.com/localnet-dev/localnet/pkg/util"
	"github.com/urfave/cli"
)

// Address is a wrapper for a Uint160 with flag.Value methods.
type Address struct {
	IsSet bool
	Value util.Uint160
}

// AddressFlag is a flag with type Uint160.
type AddressFlag struct {
	Name  string
	Usage string
	Value Address
}

var (
	_ flag.Value = (*Address)(nil)
	_ cli.Flag   = AddressFlag{}
)

// String implements the fmt.Stringer interface.
func (a Address) String() string {
	return address.Uint160ToString(a.Value)
}

// Set implements the flag.Value interface.
func (a *Address) Set(s string) error {
	addr, err := ParseAddress(s)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	a.IsSet = true
	a.Value = addr
	return nil
}

// Uint160 casts an address to Uint160. It is a programmer error to call it
// without checking that the value was provided.
func (a *Address) Uint160() (u util.Uint160) {
	if !a.IsSet {
		panic("address was not set")
	}
	return a.Value
}

// String returns a readable representation of this value
// (for usage defaults).
func (f AddressFlag) String() string {
	var names []string
	eachName(f.Name, func(name string) {
		names = append(names, getNameHelp(name))
	})

	return strings.Join(names, ", ") + "\t" + f.Usage
}

// GetName returns the name of the flag.
func (f AddressFlag) GetName() string {
	return f.Name
}

// Apply populates the flag given the flag set and environment.
// Ignores errors.
func (f AddressFlag) Apply(set *flag.FlagSet) {
	eachName(f.Name, func(name string) {
		set.Var(&f.Value, name, f.Usage)
	})
}

// AddressFromContext returns the parsed address value of the named flag.
func AddressFromContext(ctx *cli.Context, name string) Address {
	return *ctx.Generic(name).(*Address)
}

// ParseAddress parses a Uint160 from either an address or a hex script
// hash representation.
func ParseAddress(s string) (util.Uint160, error) {
	u, err := address.StringToUint160(s)
	if err == nil {
		return u, nil
	}
	return util.Uint160DecodeStringBE(strings.TrimPrefix(s, "0x"))
}
