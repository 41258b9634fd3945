package state

// StorageItem is the contract storage value.
type StorageItem []byte
