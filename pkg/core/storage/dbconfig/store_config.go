/*
Package dbconfig is a micropackage that contains storage DB configuration
options.
*/
package dbconfig

// Supported storage types.
const (
	// InMemoryDB is the memory storage type, nothing is saved on disk.
	InMemoryDB = "inmemory"
	// BoltDB is the BoltDB storage type.
	BoltDB = "boltdb"
	// LevelDB is the LevelDB storage type.
	LevelDB = "leveldb"
)

type (
	// DBConfiguration describes configuration for DB. Supported types:
	// [LevelDB], [BoltDB] or [InMemoryDB] (not persisted).
	DBConfiguration struct {
		Type           string         `yaml:"Type"`
		LevelDBOptions LevelDBOptions `yaml:"LevelDBOptions"`
		BoltDBOptions  BoltDBOptions  `yaml:"BoltDBOptions"`
	}
	// LevelDBOptions is the configuration for LevelDB.
	LevelDBOptions struct {
		DataDirectoryPath string `yaml:"DataDirectoryPath"`
		ReadOnly          bool   `yaml:"ReadOnly"`
	}
	// BoltDBOptions is the configuration for BoltDB.
	BoltDBOptions struct {
		FilePath string `yaml:"FilePath"`
		ReadOnly bool   `yaml:"ReadOnly"`
	}
)
