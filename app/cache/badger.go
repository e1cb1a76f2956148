package cache

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

const badgerPrefix = "cache:"

// Badger keeps entries in a badger database under the cache: prefix, so it
// can share the handle used by the repositories.
type Badger struct {
	db *badger.DB
}

func NewBadger(db *badger.DB) *Badger {
	return &Badger{db: db}
}

func (b *Badger) Get(_ context.Context, key string) (*Entry, bool, error) {
	var entry *Entry
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			entry, err = decode(val)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "cache get %q", key)
	}
	return entry, true, nil
}

func (b *Badger) Set(_ context.Context, key string, entry *Entry, ttl time.Duration) error {
	data, err := encode(entry)
	if err != nil {
		return err
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(badgerPrefix+key), data).WithTTL(ttl))
	})
	return errors.Wrapf(err, "cache set %q", key)
}

func (b *Badger) Clear(context.Context) error {
	return errors.Wrap(b.db.DropPrefix([]byte(badgerPrefix)), "cache clear")
}
