/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package sink

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKVSink fans events into a per-stream list: each WriteKV call is
// an LPUSH onto "<prefix>:<stream>", independent of the correlation
// store's own keyspace.
type RedisKVSink struct {
	cli    *redis.Client
	prefix string
}

func OpenRedisKVSink(addr, password string, db int, prefix string) *RedisKVSink {
	return &RedisKVSink{
		cli: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		prefix: prefix,
	}
}

func (s *RedisKVSink) WriteKV(ctx context.Context, stream string, value []byte) error {
	key := s.prefix + `:` + stream
	if err := s.cli.LPush(ctx, key, value).Err(); err != nil {
		return fmt.Errorf("writing to kv stream %q: %w", stream, err)
	}
	return nil
}

func (s *RedisKVSink) Close() error {
	return s.cli.Close()
}
