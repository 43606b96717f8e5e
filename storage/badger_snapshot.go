package storage

import (
	"github.com/dgraph-io/badger/v4"
)

// BadgerDatabase opens and owns a BadgerDB instance, handing out read and
// write snapshots. Memtables and block cache are sized larger than badger's
// defaults, since instance and type-edge traffic is read-heavy and
// range-scan dominated.
type BadgerDatabase struct {
	db *badger.DB
}

// OpenBadgerDatabase opens (creating if absent) a BadgerDB-backed database
// at path.
func OpenBadgerDatabase(path string) (*BadgerDatabase, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.MemTableSize = 128 << 20
	opts.BlockCacheSize = 256 << 20
	opts.IndexCacheSize = 100 << 20
	opts.DetectConflicts = false
	opts.NumCompactors = 4
	opts.ValueThreshold = 1 << 10

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerDatabase{db: db}, nil
}

// Close closes the underlying BadgerDB handle.
func (d *BadgerDatabase) Close() error { return d.db.Close() }

// OpenSnapshot returns a read-only Snapshot as of the current database
// state.
func (d *BadgerDatabase) OpenSnapshot() Snapshot {
	return &badgerSnapshot{txn: d.db.NewTransaction(false)}
}

// OpenWritableSnapshot begins a new write transaction.
func (d *BadgerDatabase) OpenWritableSnapshot() WritableSnapshot {
	return &badgerSnapshot{txn: d.db.NewTransaction(true), writable: true}
}

type badgerSnapshot struct {
	txn      *badger.Txn
	writable bool
}

func (s *badgerSnapshot) Get(key []byte) ([]byte, bool, error) {
	item, err := s.txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out []byte
	err = item.Value(func(val []byte) error {
		out = append([]byte{}, val...)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (s *badgerSnapshot) Iterate(prefix []byte) (Iterator, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = true
	it := s.txn.NewIterator(opts)
	it.Seek(prefix)
	return &badgerIterator{it: it, prefix: prefix, started: false}, nil
}

func (s *badgerSnapshot) Put(key, value []byte) error {
	return s.txn.Set(key, value)
}

func (s *badgerSnapshot) Delete(key []byte) error {
	return s.txn.Delete(key)
}

func (s *badgerSnapshot) Commit() error {
	return s.txn.Commit()
}

func (s *badgerSnapshot) Rollback() error {
	s.txn.Discard()
	return nil
}

func (s *badgerSnapshot) Close() error {
	s.txn.Discard()
	return nil
}

type badgerIterator struct {
	it      *badger.Iterator
	prefix  []byte
	started bool
	err     error
}

func (i *badgerIterator) Next() bool {
	if !i.started {
		i.started = true
	} else {
		i.it.Next()
	}
	if !i.it.ValidForPrefix(i.prefix) {
		return false
	}
	return true
}

func (i *badgerIterator) Key() []byte {
	return i.it.Item().KeyCopy(nil)
}

func (i *badgerIterator) Value() []byte {
	var out []byte
	i.err = i.it.Item().Value(func(val []byte) error {
		out = append([]byte{}, val...)
		return nil
	})
	return out
}

func (i *badgerIterator) Err() error { return i.err }

func (i *badgerIterator) Close() error {
	i.it.Close()
	return nil
}
