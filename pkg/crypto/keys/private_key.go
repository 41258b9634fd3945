package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/localnet-dev/localnet/pkg/crypto/hash"
	"github.com/localnet-dev/localnet/pkg/util"
	"github.com/nspcc-dev/rfc6979"
)

// SignatureLen is the length of a standard signature (r and s field
// elements, 32 bytes each).
const SignatureLen = 64

// PrivateKey represents a secp256k1 private key.
type PrivateKey struct {
	k *secp256k1.PrivateKey
}

// NewPrivateKey creates a new random secp256k1 private key.
func NewPrivateKey() (*PrivateKey, error) {
	k, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{k: k}, nil
}

// NewPrivateKeyFromHex returns a PrivateKey created from the given hex string.
func NewPrivateKeyFromHex(str string) (*PrivateKey, error) {
	b, err := hex.DecodeString(str)
	if err != nil {
		return nil, err
	}
	return NewPrivateKeyFromBytes(b)
}

// NewPrivateKeyFromBytes returns a PrivateKey from the given byte slice.
func NewPrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("invalid byte length: expected %d bytes got %d", 32, len(b))
	}
	return &PrivateKey{k: secp256k1.PrivKeyFromBytes(b)}, nil
}

// PublicKey derives the public key from the private key.
func (p *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{k: p.k.PubKey()}
}

// GetScriptHash returns the script hash of the key owner account.
func (p *PrivateKey) GetScriptHash() util.Uint160 {
	return p.PublicKey().GetScriptHash()
}

// Address derives the account address that is coupled with the private key
// and returns it as a string.
func (p *PrivateKey) Address() string {
	return p.PublicKey().Address()
}

// Sign signs arbitrary length data using the private key. The signature is
// deterministic (RFC 6979) over the sha256 digest of the data.
func (p *PrivateKey) Sign(data []byte) []byte {
	digest := sha256.Sum256(data)
	return p.signHash(digest[:])
}

// SignHashable signs the network-bound hash of the given item.
func (p *PrivateKey) SignHashable(net uint32, hh hash.Hashable) []byte {
	h := hash.NetSha256(net, hh)
	return p.signHash(h.BytesBE())
}

func (p *PrivateKey) signHash(digest []byte) []byte {
	r, s := rfc6979.SignECDSA(p.k.ToECDSA(), digest, sha256.New)

	signature := make([]byte, SignatureLen)
	rBytes, sBytes := r.Bytes(), s.Bytes()
	copy(signature[32-len(rBytes):], rBytes)
	copy(signature[64-len(sBytes):], sBytes)
	return signature
}

// Bytes returns the underlying bytes of the PrivateKey.
func (p *PrivateKey) Bytes() []byte {
	return p.k.Serialize()
}

// String implements the stringer interface.
func (p *PrivateKey) String() string {
	return hex.EncodeToString(p.Bytes())
}

// Destroy wipes the contents of the private key from memory. Any operations
// with the key after call to Destroy have undefined behavior.
func (p *PrivateKey) Destroy() {
	p.k.Zero()
}
