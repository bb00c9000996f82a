/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package correlate implements the correlation store client: a thin,
// typed surface over a string key/value store supporting SET ... EX,
// GET, and SCAN ... MATCH ... COUNT, plus the three higher level
// operations (record_dhcp, record_fingerprint, lookup_correlations)
// built on top of it. Two backends are provided: an embedded
// go.etcd.io/bbolt store, and a networked github.com/redis/go-redis/v9
// store that matches the command surface directly.
package correlate

import (
	"context"
	"time"
)

// Store is the minimal command surface the correlation client needs.
// Both backends (bbolt, redis) implement it.
type Store interface {
	// Set writes value under key with the given ttl. ttl <= 0 means no
	// expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the value for key, and ok == false if it is absent or
	// expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Scan returns up to count keys matching pattern (a "*"-suffixed
	// prefix, matching the correlation key namespaces).
	Scan(ctx context.Context, pattern string, count int) ([]string, error)
	Close() error
}
