package cache

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	goredis "github.com/go-redis/redis/v8"
	jsoniter "github.com/json-iterator/go"
)

var api = jsoniter.ConfigCompatibleWithStandardLibrary

// redisStore is a Store backed by Redis, used for the "redis://" cache
// URL scheme. Values are JSON-encoded on the way in and out.
type redisStore struct {
	rdb    *goredis.Client
	prefix string
}

func newRedisStore(u *url.URL) (*redisStore, error) {
	opts := &goredis.Options{Addr: u.Host}

	if path := strings.TrimPrefix(u.Path, "/"); path != "" {
		db, err := strconv.Atoi(path)
		if err != nil {
			return nil, fmt.Errorf("cache: parsing redis db from %q: %w", u.Path, err)
		}
		opts.DB = db
	}

	if u.User != nil {
		if password, ok := u.User.Password(); ok {
			opts.Password = password
		}
	}

	return &redisStore{
		rdb:    goredis.NewClient(opts),
		prefix: u.Query().Get("prefix"),
	}, nil
}

func (r *redisStore) key(key string) string {
	return r.prefix + key
}

func (r *redisStore) Get(ctx context.Context, key string) (interface{}, bool, error) {
	raw, err := r.rdb.Get(ctx, r.key(key)).Result()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: redis get: %w", err)
	}

	var value interface{}
	if err := api.Unmarshal([]byte(raw), &value); err != nil {
		return nil, false, fmt.Errorf("cache: unmarshaling cached value: %w", err)
	}
	return value, true, nil
}

func (r *redisStore) Set(ctx context.Context, key string, value interface{}) error {
	encoded, err := api.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshaling value for %q: %w", key, err)
	}

	if err := r.rdb.Set(ctx, r.key(key), encoded, 0).Err(); err != nil {
		return fmt.Errorf("cache: redis set: %w", err)
	}
	return nil
}
