/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Networked correlation store backend: maps the Store interface
// directly onto the SET ... EX / GET / SCAN ... MATCH ... COUNT
// command surface named by name in the external interfaces.
package correlate

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the networked Store implementation.
type RedisStore struct {
	cli *redis.Client
}

// OpenRedis builds a RedisStore against addr (host:port).
func OpenRedis(addr, password string, db int) *RedisStore {
	return &RedisStore{cli: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.cli.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.cli.Get(ctx, key).Result()
	if err == redis.Nil {
		return ``, false, nil
	}
	if err != nil {
		return ``, false, err
	}
	return v, true, nil
}

func (s *RedisStore) Scan(ctx context.Context, pattern string, count int) ([]string, error) {
	var out []string
	var cursor uint64
	for {
		keys, next, err := s.cli.Scan(ctx, cursor, pattern, int64(count)).Result()
		if err != nil {
			return out, err
		}
		out = append(out, keys...)
		cursor = next
		if cursor == 0 || len(out) >= count {
			break
		}
	}
	if len(out) > count {
		out = out[:count]
	}
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.cli.Close()
}
