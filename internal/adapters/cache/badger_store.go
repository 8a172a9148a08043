package cache

import (
	"context"
	"errors"
	"fmt"
	"spacetime-service/internal/ports"

	"github.com/dgraph-io/badger/v4"
)

var badgerPrefix = []byte("result/")

// BadgerStore keeps entries in an embedded badger database.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// OpenBadger opens a badger database at path, or an in-memory one when path is empty.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger %q: %w", path, err)
	}
	return db, nil
}

func badgerKey(key string) []byte {
	return append(append([]byte(nil), badgerPrefix...), key...)
}

func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badger store: get %q: %w", key, err)
	}
	return out, nil
}

func (s *BadgerStore) Put(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(key), value)
	})
	if err != nil {
		return fmt.Errorf("badger store: set %q: %w", key, err)
	}
	return nil
}

func (s *BadgerStore) Delete(_ context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(badgerKey(key))
	})
	if err != nil {
		return fmt.Errorf("badger store: delete %q: %w", key, err)
	}
	return nil
}

func (s *BadgerStore) Scan(ctx context.Context, fn func(key string, size int64) error) error {
	var listing []keySize
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = badgerPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(badgerPrefix); it.ValidForPrefix(badgerPrefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			k := item.KeyCopy(nil)
			listing = append(listing, keySize{
				key:  string(k[len(badgerPrefix):]),
				size: item.ValueSize(),
			})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badger store: scan: %w", err)
	}

	for _, r := range listing {
		if err := fn(r.key, r.size); err != nil {
			return err
		}
	}
	return nil
}

func (s *BadgerStore) Describe() string { return "badger" }
