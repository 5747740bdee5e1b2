// ABOUTME: Badger-backed key-value store for notes.
// ABOUTME: Opens on-disk or in-memory databases and retries conflicting transactions.

package kvstore

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
)

// maxTxnAttempts bounds how often a read-modify-write transaction is
// retried after losing a race with another writer.
const maxTxnAttempts = 5

// Store holds an open badger database.
type Store struct {
	db *badger.DB
}

// Option configures badger before it is opened.
type Option func(*badger.Options)

// InMemory keeps all data in memory; nothing is written to dir.
func InMemory() Option {
	return func(o *badger.Options) {
		*o = o.WithInMemory(true).WithDir("").WithValueDir("")
	}
}

// Open opens (creating if needed) a badger database rooted at dir.
func Open(dir string, opts ...Option) (*Store, error) {
	options := badger.DefaultOptions(dir).WithLogger(nil)
	for _, opt := range opts {
		opt(&options)
	}

	if !options.InMemory {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create badger directory: %w", err)
		}
	}

	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// update runs fn in a read-write transaction, retrying when badger reports
// that a concurrent transaction committed a conflicting write first.
func (s *Store) update(fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxTxnAttempts; attempt++ {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}
