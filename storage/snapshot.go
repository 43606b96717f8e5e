// Package storage defines the key-value snapshot abstraction the executor
// and write pipeline read and write through, plus the concrete BadgerDB
// backend.
package storage

// Snapshot is a read-only view of the database as of some point in time.
// All instance and schema reads during query execution go through one.
type Snapshot interface {
	// Get returns the value stored under key. ok is false if key is absent.
	Get(key []byte) (value []byte, ok bool, err error)
	// Iterate returns an Iterator over every key with the given prefix, in
	// ascending key order.
	Iterate(prefix []byte) (Iterator, error)
	// Close releases resources held by the snapshot.
	Close() error
}

// WritableSnapshot extends Snapshot with mutation, scoped to one write
// transaction. Writes are not visible to other snapshots until Commit.
type WritableSnapshot interface {
	Snapshot
	Put(key, value []byte) error
	Delete(key []byte) error
	Commit() error
	Rollback() error
}

// Iterator walks a range of keys in ascending order.
type Iterator interface {
	// Next advances to the next key, returning false at end of range or on
	// error (check Err to distinguish).
	Next() bool
	Key() []byte
	Value() []byte
	Err() error
	Close() error
}
