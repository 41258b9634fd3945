// Package address implements conversion of script hashes to and from
// base58-check encoded account addresses.
package address

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/localnet-dev/localnet/pkg/crypto/hash"
	"github.com/localnet-dev/localnet/pkg/util"
	"github.com/mr-tron/base58"
)

// Prefix is the byte used to prepend to addresses when encoding them, it can
// be changed and defines the network the address belongs to.
var Prefix = byte(0x35)

// ErrBadAddress is returned on malformed address input.
var ErrBadAddress = errors.New("invalid address")

// Uint160ToString returns the base58-check encoded address from the given
// script hash.
func Uint160ToString(u util.Uint160) string {
	// Prepend the address version.
	b := append([]byte{Prefix}, u.BytesBE()...)
	b = append(b, hash.Checksum(b)...)
	return base58.Encode(b)
}

// StringToUint160 attempts to decode the given address string into a script
// hash.
func StringToUint160(s string) (util.Uint160, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("%w: %s", ErrBadAddress, err)
	}
	if len(b) != 1+util.Uint160Size+4 {
		return util.Uint160{}, fmt.Errorf("%w: wrong length %d", ErrBadAddress, len(b))
	}
	payload, checksum := b[:1+util.Uint160Size], b[1+util.Uint160Size:]
	if !bytes.Equal(hash.Checksum(payload), checksum) {
		return util.Uint160{}, fmt.Errorf("%w: checksum mismatch", ErrBadAddress)
	}
	if payload[0] != Prefix {
		return util.Uint160{}, fmt.Errorf("%w: unknown prefix %#x", ErrBadAddress, payload[0])
	}
	return util.Uint160DecodeBytesBE(payload[1:])
}
