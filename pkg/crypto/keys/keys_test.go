package keys

import (
	"testing"

	"github.com/localnet-dev/localnet/pkg/encoding/address"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerify(t *testing.T) {
	priv, err := NewPrivateKey()
	require.NoError(t, err)

	data := []byte("sample message")
	sig := priv.Sign(data)
	require.Len(t, sig, SignatureLen)

	pub := priv.PublicKey()
	assert.True(t, pub.Verify(sig, data))
	assert.False(t, pub.Verify(sig, []byte("other message")))

	// Signing is deterministic.
	assert.Equal(t, sig, priv.Sign(data))

	// Truncated signatures are rejected, not panicked on.
	assert.False(t, pub.Verify(sig[:40], data))
}

func TestPrivateKeyFromHex(t *testing.T) {
	priv, err := NewPrivateKey()
	require.NoError(t, err)

	dec, err := NewPrivateKeyFromHex(priv.String())
	require.NoError(t, err)
	assert.Equal(t, priv.Bytes(), dec.Bytes())

	_, err = NewPrivateKeyFromHex("zz")
	require.Error(t, err)

	_, err = NewPrivateKeyFromBytes(make([]byte, 31))
	require.Error(t, err)
}

func TestPublicKeySerialization(t *testing.T) {
	priv, err := NewPrivateKey()
	require.NoError(t, err)
	pub := priv.PublicKey()

	dec, err := NewPublicKeyFromString(pub.String())
	require.NoError(t, err)
	assert.True(t, pub.Equal(dec))
	assert.Equal(t, pub.GetScriptHash(), dec.GetScriptHash())
}

func TestAddress(t *testing.T) {
	priv, err := NewPrivateKey()
	require.NoError(t, err)

	addr := priv.Address()
	u, err := address.StringToUint160(addr)
	require.NoError(t, err)
	assert.Equal(t, priv.GetScriptHash(), u)
}

func TestWIFRoundTrip(t *testing.T) {
	priv, err := NewPrivateKey()
	require.NoError(t, err)

	wif := WIFEncode(priv)
	dec, err := WIFDecode(wif)
	require.NoError(t, err)
	assert.Equal(t, priv.Bytes(), dec.Bytes())

	_, err = WIFDecode(wif[:len(wif)-2])
	require.ErrorIs(t, err, ErrBadWIF)
}
