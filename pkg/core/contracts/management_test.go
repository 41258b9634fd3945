package contracts

import (
	"fmt"
	"strings"
	"testing"

	"github.com/localnet-dev/localnet/pkg/core/interop"
	"github.com/localnet-dev/localnet/pkg/core/state"
	"github.com/localnet-dev/localnet/pkg/smartcontract"
	"github.com/localnet-dev/localnet/pkg/smartcontract/manifest"
	"github.com/localnet-dev/localnet/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDAO struct {
	contracts map[util.Uint160]*state.Contract
	items     map[string][]byte
	nextID    int32
}

func newTestDAO() *testDAO {
	return &testDAO{
		contracts: make(map[util.Uint160]*state.Contract),
		items:     make(map[string][]byte),
	}
}

func (d *testDAO) storageKey(id int32, key []byte) string {
	return fmt.Sprintf("%d:%s", id, key)
}

func (d *testDAO) GetStorageItem(id int32, key []byte) state.StorageItem {
	return d.items[d.storageKey(id, key)]
}

func (d *testDAO) PutStorageItem(id int32, key []byte, value state.StorageItem) {
	d.items[d.storageKey(id, key)] = value
}

func (d *testDAO) DeleteStorageItem(id int32, key []byte) {
	delete(d.items, d.storageKey(id, key))
}

func (d *testDAO) SeekStorage(id int32, prefix []byte, f func(k, v []byte) bool) {
	idPrefix := fmt.Sprintf("%d:", id)
	for k, v := range d.items {
		if strings.HasPrefix(k, idPrefix+string(prefix)) {
			if !f([]byte(strings.TrimPrefix(k, idPrefix)), v) {
				return
			}
		}
	}
}

func (d *testDAO) GetContract(h util.Uint160) *state.Contract {
	return d.contracts[h]
}

func (d *testDAO) PutContract(cs *state.Contract) {
	d.contracts[cs.Hash] = cs
}

func (d *testDAO) DeleteContract(h util.Uint160) {
	delete(d.contracts, h)
}

func (d *testDAO) GetAndUpdateNextContractID() int32 {
	d.nextID++
	return d.nextID
}

var messageKey = []byte("message")

func newInbox() *Contract {
	c := New("Inbox")
	c.AddMethod(manifest.NewMethod(manifest.MethodDeploy, smartcontract.VoidType, false,
		manifest.Parameter{Name: "message", Type: smartcontract.StringType}),
		func(ic *interop.Context, params []smartcontract.Parameter) smartcontract.Parameter {
			ic.PutStorage(messageKey, []byte(params[0].StringValue()))
			return smartcontract.Make(nil)
		})
	c.AddMethod(manifest.NewMethod("message", smartcontract.StringType, true),
		func(ic *interop.Context, _ []smartcontract.Parameter) smartcontract.Parameter {
			return smartcontract.Make(string(ic.GetStorage(messageKey)))
		})
	c.AddMethod(manifest.NewMethod("setMessage", smartcontract.VoidType, false,
		manifest.Parameter{Name: "newMessage", Type: smartcontract.StringType}),
		func(ic *interop.Context, params []smartcontract.Parameter) smartcontract.Parameter {
			ic.PutStorage(messageKey, []byte(params[0].StringValue()))
			return smartcontract.Make(nil)
		})
	return c
}

func newTestManagement(t *testing.T) *Management {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newInbox()))
	return NewManagement(reg)
}

func newDeployContext(d DAO) *interop.Context {
	ic := interop.NewContext(d, interop.Limits{
		BaseExecFee:        100,
		StoragePrice:       10,
		MaxStorageKeyLen:   64,
		MaxStorageValueLen: 1024,
	}, 100_0000_0000)
	ic.Sender = util.Uint160{1, 2, 3}
	return ic
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(newInbox()))
	require.Error(t, reg.Register(newInbox()))

	c, ok := reg.Get("Inbox")
	require.True(t, ok)
	assert.Equal(t, "Inbox", c.Name())
	assert.Equal(t, []string{"Inbox"}, reg.Names())

	_, ok = reg.Get("Outbox")
	assert.False(t, ok)
}

func TestChecksumStability(t *testing.T) {
	assert.Equal(t, newInbox().Checksum(), newInbox().Checksum())

	other := newInbox()
	other.AddEvent("MessageChanged", manifest.Parameter{Name: "new", Type: smartcontract.StringType})
	assert.NotEqual(t, newInbox().Checksum(), other.Checksum())
}

func TestDeploy(t *testing.T) {
	m := newTestManagement(t)
	d := newTestDAO()
	ic := newDeployContext(d)

	cs, err := m.Deploy(ic, d, "Inbox", nil, []smartcontract.Parameter{smartcontract.Make("hi there")})
	require.NoError(t, err)
	assert.Equal(t, int32(1), cs.ID)
	assert.Equal(t, "Inbox", cs.ContractName)
	assert.Equal(t, state.CreateContractHash(ic.Sender, cs.Checksum, "Inbox"), cs.Hash)
	require.NotNil(t, d.GetContract(cs.Hash))

	// _deploy has run and set the initial message.
	assert.Equal(t, []byte("hi there"), []byte(d.GetStorageItem(cs.ID, messageKey)))

	// Same sender, same implementation: refused.
	_, err = m.Deploy(ic, d, "Inbox", nil, []smartcontract.Parameter{smartcontract.Make("again")})
	require.ErrorIs(t, err, ErrAlreadyDeployed)

	// A different sender gets an independent instance.
	ic2 := newDeployContext(d)
	ic2.Sender = util.Uint160{9}
	cs2, err := m.Deploy(ic2, d, "Inbox", nil, []smartcontract.Parameter{smartcontract.Make("mine")})
	require.NoError(t, err)
	assert.NotEqual(t, cs.Hash, cs2.Hash)
	assert.Equal(t, int32(2), cs2.ID)
}

func TestDeployUnknownImplementation(t *testing.T) {
	m := newTestManagement(t)
	d := newTestDAO()

	_, err := m.Deploy(newDeployContext(d), d, "Outbox", nil, nil)
	require.ErrorIs(t, err, ErrUnknownImplementation)
}

func TestDeployManifestMismatch(t *testing.T) {
	m := newTestManagement(t)
	d := newTestDAO()

	declared := manifest.NewManifest("Inbox")
	_, err := m.Deploy(newDeployContext(d), d, "Inbox", declared, nil)
	require.ErrorIs(t, err, ErrManifestMismatch)

	impl, _ := m.Registry().Get("Inbox")
	_, err = m.Deploy(newDeployContext(d), d, "Inbox", impl.Manifest(),
		[]smartcontract.Parameter{smartcontract.Make("hi")})
	require.NoError(t, err)
}

func TestCall(t *testing.T) {
	m := newTestManagement(t)
	d := newTestDAO()
	ic := newDeployContext(d)
	cs, err := m.Deploy(ic, d, "Inbox", nil, []smartcontract.Parameter{smartcontract.Make("hi there")})
	require.NoError(t, err)

	t.Run("safe method", func(t *testing.T) {
		res, err := m.Call(newDeployContext(d), d, cs.Hash, "message", nil)
		require.NoError(t, err)
		assert.Equal(t, "hi there", res.StringValue())
	})
	t.Run("state change", func(t *testing.T) {
		_, err := m.Call(newDeployContext(d), d, cs.Hash, "setMessage",
			[]smartcontract.Parameter{smartcontract.Make("bye")})
		require.NoError(t, err)
		res, err := m.Call(newDeployContext(d), d, cs.Hash, "message", nil)
		require.NoError(t, err)
		assert.Equal(t, "bye", res.StringValue())
	})
	t.Run("missing method", func(t *testing.T) {
		_, err := m.Call(newDeployContext(d), d, cs.Hash, "missing", nil)
		require.ErrorIs(t, err, ErrMethodNotFound)
	})
	t.Run("internal method", func(t *testing.T) {
		_, err := m.Call(newDeployContext(d), d, cs.Hash, "_deploy", nil)
		require.ErrorIs(t, err, ErrMethodNotFound)
	})
	t.Run("bad parameter count", func(t *testing.T) {
		_, err := m.Call(newDeployContext(d), d, cs.Hash, "setMessage", nil)
		require.Error(t, err)
	})
	t.Run("missing contract", func(t *testing.T) {
		_, err := m.Call(newDeployContext(d), d, util.Uint160{0xff}, "message", nil)
		require.ErrorIs(t, err, ErrContractNotFound)
	})
}

func TestUpdateAndDestroy(t *testing.T) {
	m := newTestManagement(t)
	d := newTestDAO()
	ic := newDeployContext(d)
	cs, err := m.Deploy(ic, d, "Inbox", nil, []smartcontract.Parameter{smartcontract.Make("hi")})
	require.NoError(t, err)

	t.Run("update by stranger", func(t *testing.T) {
		other := newDeployContext(d)
		other.Sender = util.Uint160{9}
		_, err := m.Update(other, d, cs.Hash, []smartcontract.Parameter{smartcontract.Make("x")})
		require.Error(t, err)
	})
	t.Run("update", func(t *testing.T) {
		updated, err := m.Update(newDeployContext(d), d, cs.Hash,
			[]smartcontract.Parameter{smartcontract.Make("updated")})
		require.NoError(t, err)
		assert.Equal(t, cs.Hash, updated.Hash)
		assert.Equal(t, uint16(1), updated.UpdateCounter)
		assert.Equal(t, []byte("updated"), []byte(d.GetStorageItem(cs.ID, messageKey)))
	})
	t.Run("destroy by stranger", func(t *testing.T) {
		other := newDeployContext(d)
		other.Sender = util.Uint160{9}
		require.Error(t, m.Destroy(other, d, cs.Hash))
	})
	t.Run("destroy", func(t *testing.T) {
		require.NoError(t, m.Destroy(newDeployContext(d), d, cs.Hash))
		assert.Nil(t, d.GetContract(cs.Hash))
		assert.Nil(t, d.GetStorageItem(cs.ID, messageKey))
		require.ErrorIs(t, m.Destroy(newDeployContext(d), d, cs.Hash), ErrContractNotFound)
	})
}
