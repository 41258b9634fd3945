package keys

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/localnet-dev/localnet/pkg/crypto/hash"
	"github.com/mr-tron/base58"
)

// WIFVersion is the version used to decode and encode WIF keys.
const WIFVersion = 0x80

// ErrBadWIF is returned when the WIF being decoded is malformed.
var ErrBadWIF = errors.New("invalid WIF")

// WIFEncode encodes the given private key into a WIF string.
func WIFEncode(p *PrivateKey) string {
	buf := make([]byte, 0, 34)
	buf = append(buf, WIFVersion)
	buf = append(buf, p.Bytes()...)
	// Compressed public key marker.
	buf = append(buf, 0x01)
	buf = append(buf, hash.Checksum(buf)...)
	return base58.Encode(buf)
}

// WIF returns the WIF encoding of the private key.
func (p *PrivateKey) WIF() string {
	return WIFEncode(p)
}

// NewPrivateKeyFromWIF returns the private key encoded in the given WIF
// string.
func NewPrivateKeyFromWIF(wif string) (*PrivateKey, error) {
	return WIFDecode(wif)
}

// WIFDecode decodes the given WIF string into a private key.
func WIFDecode(wif string) (*PrivateKey, error) {
	b, err := base58.Decode(wif)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadWIF, err)
	}
	if len(b) != 38 {
		return nil, fmt.Errorf("%w: expected 38 bytes got %d", ErrBadWIF, len(b))
	}
	if b[0] != WIFVersion {
		return nil, fmt.Errorf("%w: expected version %#x got %#x", ErrBadWIF, WIFVersion, b[0])
	}
	if b[33] != 0x01 {
		return nil, fmt.Errorf("%w: key is not compressed", ErrBadWIF)
	}
	payload, checksum := b[:34], b[34:]
	if !bytes.Equal(hash.Checksum(payload), checksum) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrBadWIF)
	}
	return NewPrivateKeyFromBytes(payload[1:33])
}
