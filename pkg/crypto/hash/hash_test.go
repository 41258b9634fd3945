package hash

import (
	"encoding/hex"
	"testing"

	"github.com/localnet-dev/localnet/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSha256(t *testing.T) {
	input := []byte("hello")
	data := Sha256(input)

	expected := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	actual := hex.EncodeToString(data.BytesBE())

	assert.Equal(t, expected, actual)
}

func TestHashDoubleSha256(t *testing.T) {
	input := []byte("hello")
	data := DoubleSha256(input)

	firstSha := Sha256(input)
	doubleSha := Sha256(firstSha.BytesBE())
	expected := hex.EncodeToString(doubleSha.BytesBE())

	actual := hex.EncodeToString(data.BytesBE())
	assert.Equal(t, expected, actual)
}

func TestHash160(t *testing.T) {
	// Hash160 of a compressed public key.
	input := "02cccafb41b220cab63fd77108d2d1ebcffa32be26da29a04dca4996afce5f75db"
	publicKeyBytes, err := hex.DecodeString(input)
	require.NoError(t, err)
	data := Hash160(publicKeyBytes)

	ripemd := RipeMD160(Sha256(publicKeyBytes).BytesBE())
	assert.Equal(t, ripemd, data)
}

func TestCalcMerkleRoot(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, util.Uint256{}, CalcMerkleRoot(nil))
	})
	t.Run("single", func(t *testing.T) {
		h := Sha256([]byte("a"))
		assert.Equal(t, h, CalcMerkleRoot([]util.Uint256{h}))
	})
	t.Run("pair", func(t *testing.T) {
		h1, h2 := Sha256([]byte("a")), Sha256([]byte("b"))
		expected := DoubleSha256(append(h1.BytesBE(), h2.BytesBE()...))
		assert.Equal(t, expected, CalcMerkleRoot([]util.Uint256{h1, h2}))
	})
	t.Run("odd tail is paired with itself", func(t *testing.T) {
		h1, h2, h3 := Sha256([]byte("a")), Sha256([]byte("b")), Sha256([]byte("c"))
		l := DoubleSha256(append(h1.BytesBE(), h2.BytesBE()...))
		r := DoubleSha256(append(h3.BytesBE(), h3.BytesBE()...))
		expected := DoubleSha256(append(l.BytesBE(), r.BytesBE()...))
		assert.Equal(t, expected, CalcMerkleRoot([]util.Uint256{h1, h2, h3}))
	})
}
