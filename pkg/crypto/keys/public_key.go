package keys

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/localnet-dev/localnet/pkg/crypto/hash"
	"github.com/localnet-dev/localnet/pkg/encoding/address"
	"github.com/localnet-dev/localnet/pkg/util"
)

// PublicKey represents a secp256k1 public key.
type PublicKey struct {
	k *secp256k1.PublicKey
}

// NewPublicKeyFromBytes returns a public key created from b using the
// compressed 33-byte serialization format.
func NewPublicKeyFromBytes(b []byte) (*PublicKey, error) {
	k, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, err
	}
	return &PublicKey{k: k}, nil
}

// NewPublicKeyFromString returns a public key created from its compressed
// hex representation.
func NewPublicKeyFromString(s string) (*PublicKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return NewPublicKeyFromBytes(b)
}

// Bytes returns the compressed byte array representation of the public key.
func (p *PublicKey) Bytes() []byte {
	return p.k.SerializeCompressed()
}

// String implements the Stringer interface.
func (p *PublicKey) String() string {
	return hex.EncodeToString(p.Bytes())
}

// GetScriptHash returns a Hash160 of the serialized key, it's the account
// identifier associated with the key.
func (p *PublicKey) GetScriptHash() util.Uint160 {
	return hash.Hash160(p.Bytes())
}

// Address returns a base58-encoded account address associated with the key.
func (p *PublicKey) Address() string {
	return address.Uint160ToString(p.GetScriptHash())
}

// Equal returns true in case public keys are equal.
func (p *PublicKey) Equal(key *PublicKey) bool {
	return p.k.IsEqual(key.k)
}

// Verify returns true if the signature is valid and corresponds to the data
// and this key.
func (p *PublicKey) Verify(signature []byte, data []byte) bool {
	digest := sha256.Sum256(data)
	return p.verifyHash(signature, digest[:])
}

// VerifyHashable returns true if the signature is valid and corresponds to
// the network-bound hash of the item and this key.
func (p *PublicKey) VerifyHashable(signature []byte, net uint32, hh hash.Hashable) bool {
	h := hash.NetSha256(net, hh)
	return p.verifyHash(signature, h.BytesBE())
}

func (p *PublicKey) verifyHash(signature []byte, digest []byte) bool {
	if len(signature) != SignatureLen {
		return false
	}
	rBytes := new(big.Int).SetBytes(signature[0:32])
	sBytes := new(big.Int).SetBytes(signature[32:64])
	return ecdsa.Verify(p.k.ToECDSA(), digest, rBytes, sBytes)
}
