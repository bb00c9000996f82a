/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Embedded correlation store backend, built on the bbolt key/value
// store. bbolt has no native key expiry, so each record carries its
// own expiry timestamp and Get/Scan filter out anything that has
// lapsed, deleting it lazily on read.
package correlate

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

var correlationBucket = []byte(`correlation`)

type boltRecord struct {
	Value   string `json:"v"`
	Expires int64  `json:"exp"` // unix seconds; 0 means no expiry
}

// BBoltStore is the embedded, single-process Store implementation.
type BBoltStore struct {
	db *bbolt.DB
}

// OpenBBolt opens (creating if absent) a bbolt database at path and
// ensures the correlation bucket exists.
func OpenBBolt(path string) (*BBoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(correlationBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &BBoltStore{db: db}, nil
}

func (s *BBoltStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	rec := boltRecord{Value: value}
	if ttl > 0 {
		rec.Expires = time.Now().Add(ttl).Unix()
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(correlationBucket).Put([]byte(key), b)
	})
}

func (s *BBoltStore) Get(_ context.Context, key string) (string, bool, error) {
	var rec boltRecord
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(correlationBucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &rec)
	})
	if err != nil || !found {
		return ``, false, err
	}
	if rec.expired() {
		_ = s.delete(key)
		return ``, false, nil
	}
	return rec.Value, true, nil
}

func (s *BBoltStore) Scan(_ context.Context, pattern string, count int) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, `*`)
	var out []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(correlationBucket).Cursor()
		for k, v := c.Seek([]byte(prefix)); k != nil && strings.HasPrefix(string(k), prefix); k, v = c.Next() {
			var rec boltRecord
			if err := json.Unmarshal(v, &rec); err == nil && !rec.expired() {
				out = append(out, string(k))
			}
			if len(out) >= count {
				break
			}
		}
		return nil
	})
	return out, err
}

func (s *BBoltStore) Close() error {
	return s.db.Close()
}

func (s *BBoltStore) delete(key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(correlationBucket).Delete([]byte(key))
	})
}

func (r boltRecord) expired() bool {
	return r.Expires != 0 && time.Now().Unix() > r.Expires
}
