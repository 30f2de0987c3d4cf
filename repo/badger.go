package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v3"
)

type (
	BadgerRepository struct {
		db *badger.DB
	}
)

func NewBadgerRepository(dir string) (*BadgerRepository, error) {
	return openBadger(badger.DefaultOptions(dir))
}

// NewInMemoryBadgerRepository keeps the whole database in memory.
func NewInMemoryBadgerRepository() (*BadgerRepository, error) {
	return openBadger(badger.DefaultOptions("").WithInMemory(true))
}

func openBadger(options badger.Options) (*BadgerRepository, error) {
	options.Logger = nil

	db, err := badger.Open(options)
	if err != nil {
		return nil, notAvailable(err)
	}
	return &BadgerRepository{db}, nil
}

// ListCollection returns the posts in import order. Keys carry a zero-padded
// sequence number so that badger's sorted iteration matches it.
func (r *BadgerRepository) ListCollection(ctx context.Context, name string) ([]Post, error) {
	posts := make([]Post, 0)
	if err := r.db.View(func(txn *badger.Txn) error {
		gen, err := r.generation(txn, name)
		if err != nil || gen == 0 {
			return err
		}
		prefix := r.entryPrefix(name, gen)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var post Post
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &post)
			}); err != nil {
				return fmt.Errorf("%w: key=%s, err=%s", ErrMalformedEntry, item.Key(), err)
			}
			posts = append(posts, post)
		}
		return nil
	}); err != nil {
		if errors.Is(err, badger.ErrDBClosed) {
			return nil, notAvailable(err)
		}
		return nil, err
	}
	return posts, nil
}

// PutCollection replaces every post of the collection. The posts are written
// under a new generation which becomes visible in a single update, so readers
// see either the old or the new collection. Old entries are dropped last.
func (r *BadgerRepository) PutCollection(ctx context.Context, name string, posts []Post) error {
	var current uint64
	if err := r.db.View(func(txn *badger.Txn) error {
		gen, err := r.generation(txn, name)
		current = gen
		return err
	}); err != nil {
		return err
	}
	next := current + 1

	// stale entries of an interrupted import
	if err := r.db.DropPrefix(r.entryPrefix(name, next)); err != nil {
		return err
	}
	wb := r.db.NewWriteBatch()
	defer wb.Cancel()
	for i, post := range posts {
		if err := ctx.Err(); err != nil {
			return err
		}
		b, err := json.Marshal(post)
		if err != nil {
			return err
		}
		if err := wb.Set(r.entryKey(name, next, i), b); err != nil {
			return err
		}
	}
	if err := wb.Flush(); err != nil {
		return err
	}

	if err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(r.generationKey(name), []byte(strconv.FormatUint(next, 10)))
	}); err != nil {
		return err
	}
	if current > 0 {
		return r.db.DropPrefix(r.entryPrefix(name, current))
	}
	return nil
}

// generation returns the visible generation of the collection, 0 if none.
func (r *BadgerRepository) generation(txn *badger.Txn, name string) (uint64, error) {
	item, err := txn.Get(r.generationKey(name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	var gen uint64
	err = item.Value(func(val []byte) error {
		gen, err = strconv.ParseUint(string(val), 10, 64)
		return err
	})
	return gen, err
}

// collectionPrefix length-prefixes the name so that no collection's keys
// start with another collection's prefix.
func (r *BadgerRepository) collectionPrefix(name string) string {
	return fmt.Sprintf("c:%d:%s:", len(name), name)
}

func (r *BadgerRepository) generationKey(name string) []byte {
	return []byte(r.collectionPrefix(name) + "gen")
}

func (r *BadgerRepository) entryPrefix(name string, gen uint64) []byte {
	return []byte(fmt.Sprintf("%s%010d:", r.collectionPrefix(name), gen))
}

func (r *BadgerRepository) entryKey(name string, gen uint64, seq int) []byte {
	return append(r.entryPrefix(name, gen), fmt.Sprintf("%010d", seq)...)
}

func (r *BadgerRepository) Close() error {
	return r.db.Close()
}
