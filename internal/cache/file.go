package cache

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/buntdb"
)

var fileAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// fileStore is a Store backed by buntdb, used for the "file://" cache URL
// scheme. It gives a single-node deployment snapshot persistence across
// restarts without standing up Redis; "file://:memory:" (or an empty
// path) keeps everything in memory.
type fileStore struct {
	db *buntdb.DB
}

func newFileStore(path string) (*fileStore, error) {
	if path == "" {
		path = ":memory:"
	}

	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cache: opening %q: %w", path, err)
	}
	return &fileStore{db: db}, nil
}

func (f *fileStore) Get(ctx context.Context, key string) (interface{}, bool, error) {
	var raw string
	err := f.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(key)
		if err != nil {
			return err
		}
		raw = v
		return nil
	})
	if err == buntdb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: file get: %w", err)
	}

	var value interface{}
	if err := fileAPI.UnmarshalFromString(raw, &value); err != nil {
		return nil, false, fmt.Errorf("cache: unmarshaling cached value: %w", err)
	}
	return value, true, nil
}

func (f *fileStore) Set(ctx context.Context, key string, value interface{}) error {
	encoded, err := fileAPI.MarshalToString(value)
	if err != nil {
		return fmt.Errorf("cache: marshaling value for %q: %w", key, err)
	}

	err = f.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key, encoded, nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("cache: file set: %w", err)
	}
	return nil
}
