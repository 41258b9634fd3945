package keys

import (
	"bytes"
	"crypto/aes"
	"errors"
	"fmt"

	"github.com/localnet-dev/localnet/pkg/crypto/hash"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/text/unicode/norm"
)

// encryptedKeyPrefix makes every encrypted key start with the same base58
// characters.
var encryptedKeyPrefix = []byte{0x01, 0x42, 0xe0}

// ScryptParams is a json-serializable container for scrypt KDF parameters.
type ScryptParams struct {
	N int `json:"n"`
	R int `json:"r"`
	P int `json:"p"`
}

// DefaultScryptParams returns the parameters used by default for key
// encryption.
func DefaultScryptParams() ScryptParams {
	return ScryptParams{N: 16384, R: 8, P: 8}
}

// EncryptKey encrypts the private key under the given passphrase producing
// a base58-encoded string. The address of the key is mixed into the KDF
// salt, so decryption verifies the passphrase.
func EncryptKey(priv *PrivateKey, passphrase string, params ScryptParams) (string, error) {
	address := priv.Address()
	addrHash := hash.Checksum([]byte(address))

	phraseNorm := norm.NFKC.Bytes([]byte(passphrase))
	derivedKey, err := scrypt.Key(phraseNorm, addrHash, params.N, params.R, params.P, 64)
	if err != nil {
		return "", err
	}
	derivedKey1 := derivedKey[:32]
	derivedKey2 := derivedKey[32:]

	xr := xor(priv.Bytes(), derivedKey1)
	encrypted, err := aesEncrypt(xr, derivedKey2)
	if err != nil {
		return "", err
	}

	buf := new(bytes.Buffer)
	buf.Write(encryptedKeyPrefix)
	buf.Write(addrHash)
	buf.Write(encrypted)
	buf.Write(hash.Checksum(buf.Bytes()))
	return base58.Encode(buf.Bytes()), nil
}

// DecryptKey decrypts an encrypted key returning the private key. A wrong
// passphrase is detected and reported as an error.
func DecryptKey(key string, passphrase string, params ScryptParams) (*PrivateKey, error) {
	b, err := base58.Decode(key)
	if err != nil {
		return nil, err
	}
	if len(b) != len(encryptedKeyPrefix)+4+32+4 {
		return nil, fmt.Errorf("invalid encrypted key length %d", len(b))
	}
	data, checksum := b[:len(b)-4], b[len(b)-4:]
	if !bytes.Equal(hash.Checksum(data), checksum) {
		return nil, errors.New("bad encrypted key checksum")
	}
	if !bytes.Equal(data[:3], encryptedKeyPrefix) {
		return nil, errors.New("bad encrypted key prefix")
	}
	addrHash := data[3:7]

	phraseNorm := norm.NFKC.Bytes([]byte(passphrase))
	derivedKey, err := scrypt.Key(phraseNorm, addrHash, params.N, params.R, params.P, 64)
	if err != nil {
		return nil, err
	}
	derivedKey1 := derivedKey[:32]
	derivedKey2 := derivedKey[32:]

	decrypted, err := aesDecrypt(data[7:], derivedKey2)
	if err != nil {
		return nil, err
	}
	priv, err := NewPrivateKeyFromBytes(xor(decrypted, derivedKey1))
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(addrHash, hash.Checksum([]byte(priv.Address()))) {
		return nil, errors.New("wrong passphrase")
	}
	return priv, nil
}

func aesEncrypt(src, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(src))
	for i := 0; i < len(src); i += block.BlockSize() {
		block.Encrypt(out[i:], src[i:])
	}
	return out, nil
}

func aesDecrypt(src, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(src))
	for i := 0; i < len(src); i += block.BlockSize() {
		block.Decrypt(out[i:], src[i:])
	}
	return out, nil
}

func xor(a, b []byte) []byte {
	if len(a) != len(b) {
		panic("cannot XOR slices of different lengths")
	}
	out := make([]byte, len(a))
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}
