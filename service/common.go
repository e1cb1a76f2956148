package service

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"yatube/app/cache"
	"yatube/app/config"
	"yatube/app/log"
	"yatube/app/repositories"
)

// loadConfig is swapped in tests.
var loadConfig = config.Load

// backend is an opened store plus the page cache that goes with it.
type backend struct {
	store  *repositories.Store
	cache  cache.Store
	badger *badger.DB
	closer []func() error
}

// Close releases everything in reverse open order.
func (b *backend) Close() error {
	var first error
	for i := len(b.closer) - 1; i >= 0; i-- {
		if err := b.closer[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openBackend opens the configured store and page cache. The badger page
// cache shares the store's database handle when both use badger.
func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	b := &backend{}
	fail := func(err error) (*backend, error) {
		b.Close()
		return nil, err
	}

	switch cfg.StorageDriver {
	case "badger":
		db, err := openBadgerDir(cfg.BadgerPath)
		if err != nil {
			return fail(err)
		}
		b.badger = db
		b.closer = append(b.closer, db.Close)
		b.store = repositories.NewBadgerStore(db)
	case "postgres", "sqlite":
		var (
			store *repositories.Store
			err   error
		)
		if cfg.StorageDriver == "postgres" {
			store, err = openGorm(repositories.OpenPostgres(cfg.DatabaseDSN))
		} else {
			store, err = openGorm(repositories.OpenSQLite(cfg.SQLitePath))
		}
		if err != nil {
			return fail(err)
		}
		b.closer = append(b.closer, store.Close)
		b.store = store
	default:
		return fail(errors.Errorf("unknown storage driver %q", cfg.StorageDriver))
	}

	switch cfg.CacheDriver {
	case "badger":
		db := b.badger
		if db == nil {
			var err error
			db, err = openBadgerDir(filepath.Join(cfg.BadgerPath, "cache"))
			if err != nil {
				return fail(err)
			}
			b.closer = append(b.closer, db.Close)
		}
		b.cache = cache.NewBadger(db)
	case "redis":
		client, err := cache.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fail(err)
		}
		b.closer = append(b.closer, client.Close)
		b.cache = cache.NewRedis(client, "yatube:")
	default:
		b.cache = cache.Noop{}
	}

	log.Log.WithField("storage", cfg.StorageDriver).WithField("cache", cfg.CacheDriver).Debug("backend opened")
	return b, nil
}

// openGorm migrates the schema before handing out the store.
func openGorm(db *gorm.DB, err error) (*repositories.Store, error) {
	if err != nil {
		return nil, err
	}
	store := repositories.NewGormStore(db)
	if err := repositories.Migrate(db); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func openBadgerDir(path string) (*badger.DB, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, errors.Wrap(err, "create database directory")
	}
	return repositories.OpenBadger(path)
}
