package config

import (
	"errors"
	"time"
)

// Default protocol settings, used when the corresponding YAML keys are
// absent.
const (
	// DefaultMagic is the network magic of a freshly created private
	// simulator.
	DefaultMagic uint32 = 0x4c4e4554 // "LNET"
	// DefaultStandbyAccounts is the number of pre-funded accounts created
	// in the genesis block.
	DefaultStandbyAccounts = 10
	// DefaultInitialBalance is the balance (in the smallest unit) of every
	// standby account.
	DefaultInitialBalance uint64 = 100_0000_0000
	// DefaultTimePerBlock is the block production interval.
	DefaultTimePerBlock = time.Second
	// DefaultSeed produces the default set of genesis account keys. Two
	// simulators sharing a seed and a magic have identical genesis state,
	// which makes chain dumps portable between them.
	DefaultSeed = "localnet default seed"
	// DefaultMaxTransactionsPerBlock bounds the block size.
	DefaultMaxTransactionsPerBlock = 512

	// DefaultMaxStorageKeyLen is the maximum length of a contract storage
	// key.
	DefaultMaxStorageKeyLen = 64
	// DefaultMaxStorageValueLen is the maximum length of a contract
	// storage value.
	DefaultMaxStorageValueLen = 65535

	// DefaultBaseExecFee is charged for any transaction before its
	// payload runs.
	DefaultBaseExecFee uint64 = 100_0000
	// DefaultDeployFee is charged for contract deployment on top of the
	// base fee.
	DefaultDeployFee uint64 = 10_0000_0000
	// DefaultStoragePrice is charged per byte of contract storage
	// written.
	DefaultStoragePrice uint64 = 10000
)

// ProtocolConfiguration represents the protocol config.
type ProtocolConfiguration struct {
	// Magic is the network identifier mixed into signed hashes, it keeps
	// signatures from one simulator from being replayed on another.
	Magic uint32 `yaml:"Magic"`
	// StandbyAccounts is the number of funded accounts in genesis.
	StandbyAccounts int `yaml:"StandbyAccounts"`
	// Seed deterministically generates the keys of the standby accounts.
	// Anyone knowing the seed controls the accounts, which is the point:
	// it's a simulator, not a bank.
	Seed string `yaml:"Seed"`
	// InitialBalance is the genesis balance of each standby account.
	InitialBalance uint64 `yaml:"InitialBalance"`
	// TimePerBlock is the block production interval of the `chain run`
	// mode. The testing harness produces blocks on demand instead.
	TimePerBlock            time.Duration `yaml:"TimePerBlock"`
	MaxTransactionsPerBlock int           `yaml:"MaxTransactionsPerBlock"`
	// MaxValidUntilBlockIncrement is the upper bound for a transaction
	// lifetime expressed in blocks.
	MaxValidUntilBlockIncrement uint32 `yaml:"MaxValidUntilBlockIncrement"`

	MaxStorageKeyLen   int `yaml:"MaxStorageKeyLen"`
	MaxStorageValueLen int `yaml:"MaxStorageValueLen"`

	BaseExecFee  uint64 `yaml:"BaseExecFee"`
	DeployFee    uint64 `yaml:"DeployFee"`
	StoragePrice uint64 `yaml:"StoragePrice"`
}

// DefaultProtocolConfiguration returns the protocol configuration of a
// default private simulator.
func DefaultProtocolConfiguration() ProtocolConfiguration {
	return ProtocolConfiguration{
		Magic:                       DefaultMagic,
		StandbyAccounts:             DefaultStandbyAccounts,
		Seed:                        DefaultSeed,
		InitialBalance:              DefaultInitialBalance,
		TimePerBlock:                DefaultTimePerBlock,
		MaxTransactionsPerBlock:     DefaultMaxTransactionsPerBlock,
		MaxValidUntilBlockIncrement: 5760,
		MaxStorageKeyLen:            DefaultMaxStorageKeyLen,
		MaxStorageValueLen:          DefaultMaxStorageValueLen,
		BaseExecFee:                 DefaultBaseExecFee,
		DeployFee:                   DefaultDeployFee,
		StoragePrice:                DefaultStoragePrice,
	}
}

// Validate checks ProtocolConfiguration for internal consistency.
func (p ProtocolConfiguration) Validate() error {
	if p.StandbyAccounts <= 0 {
		return errors.New("StandbyAccounts must be positive")
	}
	if p.Seed == "" {
		return errors.New("Seed must not be empty")
	}
	if p.TimePerBlock <= 0 {
		return errors.New("TimePerBlock must be positive")
	}
	if p.MaxTransactionsPerBlock <= 0 {
		return errors.New("MaxTransactionsPerBlock must be positive")
	}
	if p.MaxStorageKeyLen <= 0 || p.MaxStorageValueLen <= 0 {
		return errors.New("storage limits must be positive")
	}
	if p.MaxValidUntilBlockIncrement == 0 {
		return errors.New("MaxValidUntilBlockIncrement must be positive")
	}
	return nil
}
