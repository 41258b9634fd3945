package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/localnet-dev/localnet/pkg/core/storage/dbconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	path := writeConfig(t, "{}")
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultMagic, cfg.ProtocolConfiguration.Magic)
	assert.Equal(t, DefaultStandbyAccounts, cfg.ProtocolConfiguration.StandbyAccounts)
	assert.Equal(t, dbconfig.InMemoryDB, cfg.ApplicationConfiguration.DBConfiguration.Type)
	assert.Equal(t, "info", cfg.ApplicationConfiguration.LogLevel)
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
ProtocolConfiguration:
  Magic: 42
  StandbyAccounts: 3
  TimePerBlock: 250ms
ApplicationConfiguration:
  LogLevel: debug
  DBConfiguration:
    Type: boltdb
    BoltDBOptions:
      FilePath: ./chain.bolt
  Prometheus:
    Enabled: true
    Port: 2112
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, uint32(42), cfg.ProtocolConfiguration.Magic)
	assert.Equal(t, 3, cfg.ProtocolConfiguration.StandbyAccounts)
	assert.Equal(t, 250*time.Millisecond, cfg.ProtocolConfiguration.TimePerBlock)
	assert.Equal(t, dbconfig.BoltDB, cfg.ApplicationConfiguration.DBConfiguration.Type)
	assert.Equal(t, "./chain.bolt", cfg.ApplicationConfiguration.DBConfiguration.BoltDBOptions.FilePath)
	assert.True(t, cfg.ApplicationConfiguration.Prometheus.Enabled)
	assert.Equal(t, ":2112", cfg.ApplicationConfiguration.Prometheus.GetAddress())
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)

	_, err = LoadFile(writeConfig(t, "][ not yaml"))
	require.Error(t, err)

	_, err = LoadFile(writeConfig(t, "ProtocolConfiguration:\n  StandbyAccounts: -1\n"))
	require.Error(t, err)
}

func TestProtocolValidate(t *testing.T) {
	good := DefaultProtocolConfiguration()
	require.NoError(t, good.Validate())

	bad := good
	bad.MaxStorageKeyLen = 0
	require.Error(t, bad.Validate())

	bad = good
	bad.MaxTransactionsPerBlock = 0
	require.Error(t, bad.Validate())
}
