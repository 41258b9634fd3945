package manifest

import (
	"testing"

	"github.com/localnet-dev/localnet/pkg/io"
	"github.com/localnet-dev/localnet/pkg/smartcontract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManifest() *Manifest {
	m := NewManifest("Test")
	m.ABI.Methods = []Method{
		NewMethod("message", smartcontract.StringType, true),
		NewMethod("setMessage", smartcontract.VoidType, false,
			NewParameter("message", smartcontract.StringType)),
	}
	m.ABI.Events = []Event{{
		Name: "MessageChanged",
		Parameters: []Parameter{
			NewParameter("old", smartcontract.StringType),
			NewParameter("new", smartcontract.StringType),
		},
	}}
	return m
}

func TestManifestIsValid(t *testing.T) {
	m := newTestManifest()
	require.NoError(t, m.IsValid())

	t.Run("no name", func(t *testing.T) {
		bad := newTestManifest()
		bad.Name = ""
		require.Error(t, bad.IsValid())
	})
	t.Run("duplicate method", func(t *testing.T) {
		bad := newTestManifest()
		bad.ABI.Methods = append(bad.ABI.Methods, bad.ABI.Methods[0])
		require.Error(t, bad.IsValid())
	})
	t.Run("duplicate event", func(t *testing.T) {
		bad := newTestManifest()
		bad.ABI.Events = append(bad.ABI.Events, bad.ABI.Events[0])
		require.Error(t, bad.IsValid())
	})
	t.Run("void parameter", func(t *testing.T) {
		bad := newTestManifest()
		bad.ABI.Methods[1].Parameters[0].Type = smartcontract.VoidType
		require.Error(t, bad.IsValid())
	})
	t.Run("duplicate method parameter", func(t *testing.T) {
		bad := newTestManifest()
		bad.ABI.Methods[1].Parameters = append(bad.ABI.Methods[1].Parameters,
			NewParameter("message", smartcontract.IntegerType))
		require.Error(t, bad.IsValid())
	})
}

func TestManifestJSONRoundTrip(t *testing.T) {
	m := newTestManifest()
	data, err := m.ToJSON()
	require.NoError(t, err)

	dec := new(Manifest)
	require.NoError(t, dec.FromJSON(data))
	assert.Equal(t, m.Name, dec.Name)
	require.Equal(t, len(m.ABI.Methods), len(dec.ABI.Methods))
	assert.Equal(t, m.ABI.Methods[0].Name, dec.ABI.Methods[0].Name)
	assert.True(t, dec.ABI.Methods[0].Safe)
	assert.False(t, dec.ABI.Methods[1].Safe)

	// Serialization is stable, checksums depend on it.
	again, err := m.ToJSON()
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestManifestSerializable(t *testing.T) {
	m := newTestManifest()
	w := io.NewBufBinWriter()
	m.EncodeBinary(w.BinWriter)
	require.NoError(t, w.Err)

	dec := new(Manifest)
	r := io.NewBinReaderFromBuf(w.Bytes())
	dec.DecodeBinary(r)
	require.NoError(t, r.Err)
	assert.Equal(t, m.Name, dec.Name)
	assert.NotNil(t, dec.ABI.GetMethod("setMessage"))
	assert.Nil(t, dec.ABI.GetMethod("missing"))
	assert.NotNil(t, dec.ABI.GetEvent("MessageChanged"))
}
