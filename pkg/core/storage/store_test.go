package storage

import (
	"path/filepath"
	"testing"

	"github.com/localnet-dev/localnet/pkg/core/storage/dbconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dbSetup struct {
	name   string
	create func(t *testing.T) Store
}

var testStores = []dbSetup{
	{
		name: "MemoryStore",
		create: func(t *testing.T) Store {
			return NewMemoryStore()
		},
	},
	{
		name: "BoltDBStore",
		create: func(t *testing.T) Store {
			s, err := NewBoltDBStore(dbconfig.BoltDBOptions{
				FilePath: filepath.Join(t.TempDir(), "test.bolt"),
			})
			require.NoError(t, err)
			return s
		},
	},
	{
		name: "LevelDBStore",
		create: func(t *testing.T) Store {
			s, err := NewLevelDBStore(dbconfig.LevelDBOptions{
				DataDirectoryPath: t.TempDir(),
			})
			require.NoError(t, err)
			return s
		},
	},
}

func TestPutGetDelete(t *testing.T) {
	for _, setup := range testStores {
		t.Run(setup.name, func(t *testing.T) {
			s := setup.create(t)
			t.Cleanup(func() { require.NoError(t, s.Close()) })

			key := []byte("foo")
			value := []byte("bar")
			require.NoError(t, s.Put(key, value))

			result, err := s.Get(key)
			require.NoError(t, err)
			assert.Equal(t, value, result)

			require.NoError(t, s.Delete(key))
			_, err = s.Get(key)
			require.ErrorIs(t, err, ErrKeyNotFound)

			_, err = s.Get([]byte("missing"))
			require.ErrorIs(t, err, ErrKeyNotFound)
		})
	}
}

func TestPutBatch(t *testing.T) {
	for _, setup := range testStores {
		t.Run(setup.name, func(t *testing.T) {
			s := setup.create(t)
			t.Cleanup(func() { require.NoError(t, s.Close()) })

			require.NoError(t, s.Put([]byte("stale"), []byte("value")))

			b := s.Batch()
			b.Put([]byte("key1"), []byte("value1"))
			b.Put([]byte("key2"), []byte("value2"))
			b.Delete([]byte("stale"))
			assert.Equal(t, 3, b.Len())
			require.NoError(t, s.PutBatch(b))

			v, err := s.Get([]byte("key1"))
			require.NoError(t, err)
			assert.Equal(t, []byte("value1"), v)

			_, err = s.Get([]byte("stale"))
			require.ErrorIs(t, err, ErrKeyNotFound)
		})
	}
}

func TestSeek(t *testing.T) {
	for _, setup := range testStores {
		t.Run(setup.name, func(t *testing.T) {
			s := setup.create(t)
			t.Cleanup(func() { require.NoError(t, s.Close()) })

			require.NoError(t, s.Put([]byte("01\x02"), []byte("c")))
			require.NoError(t, s.Put([]byte("01\x01"), []byte("b")))
			require.NoError(t, s.Put([]byte("01\x00"), []byte("a")))
			require.NoError(t, s.Put([]byte("02\x00"), []byte("other")))

			var got []string
			s.Seek([]byte("01"), func(k, v []byte) {
				got = append(got, string(v))
			})
			assert.Equal(t, []string{"a", "b", "c"}, got)
		})
	}
}

func TestNewStoreDispatch(t *testing.T) {
	s, err := NewStore(dbconfig.DBConfiguration{Type: dbconfig.InMemoryDB})
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)
	require.NoError(t, s.Close())

	_, err = NewStore(dbconfig.DBConfiguration{Type: "redis"})
	require.Error(t, err)
}

func TestAppendPrefix(t *testing.T) {
	k := AppendPrefix(STStorage, []byte{1, 2})
	assert.Equal(t, []byte{byte(STStorage), 1, 2}, k)

	ki := AppendPrefixInt(STStorage, 0x01020304)
	assert.Equal(t, []byte{byte(STStorage), 4, 3, 2, 1}, ki)
}
