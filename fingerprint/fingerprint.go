/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package fingerprint extracts fingerprint metadata from an alert's
// embedded rule metadata object, using github.com/buger/jsonparser the
// same best-effort way event.Event reads its fields.
package fingerprint

import (
	"strconv"
	"strings"

	"github.com/buger/jsonparser"
)

// recognised metadata keys.
const (
	keyOS     = `fingerprint_os`
	keySource = `fingerprint_source`
	keyExpire = `fingerprint_expire`
	keyType   = `fingerprint_type`
)

// Metadata is the optional sub-record parsed from alert.metadata.
type Metadata struct {
	OS      string
	Source  string
	Type    string // "client", "server", or ""
	Expire  int64  // seconds; 0 means "use default TTL policy"
	Present bool
}

// Extract parses the raw alert.metadata object (native or
// string-encoded) and returns its Metadata. A nil or empty input, or
// one with none of the four recognised keys, yields Present == false.
// When a key is repeated across the object, the last occurrence seen
// wins, matching the rule-metadata convention where a later directive
// overrides an earlier one.
func Extract(metadataRaw []byte) Metadata {
	m := Metadata{OS: `unknown`, Source: `unknown`}
	if len(metadataRaw) == 0 {
		return m
	}
	jsonparser.ObjectEach(metadataRaw, func(key, value []byte, dataType jsonparser.ValueType, offset int) error {
		tok, ok := firstToken(value, dataType)
		switch string(key) {
		case keyOS:
			m.Present = true
			if ok {
				m.OS = tok
			}
		case keySource:
			m.Present = true
			if ok {
				m.Source = tok
			}
		case keyType:
			m.Present = true
			if ok {
				lv := strings.ToLower(tok)
				if lv == `client` || lv == `server` {
					m.Type = lv
				}
			}
		case keyExpire:
			m.Present = true
			m.Expire = 0
			if ok {
				if n, err := strconv.ParseInt(tok, 10, 64); err == nil && n >= 0 {
					m.Expire = n
				}
			}
		}
		return nil
	})
	return m
}

// firstToken normalises a metadata value to a single text token:
// strips surrounding quotes and array brackets, and for an array value
// takes only the first element.
func firstToken(value []byte, dt jsonparser.ValueType) (string, bool) {
	var raw string
	switch dt {
	case jsonparser.Array:
		var first string
		var found bool
		jsonparser.ArrayEach(value, func(v []byte, vdt jsonparser.ValueType, offset int, err error) {
			if found {
				return
			}
			found = true
			first = string(v)
		})
		if !found {
			return ``, false
		}
		raw = first
	default:
		raw = string(value)
	}
	raw = strings.Trim(raw, `"[] `)
	raw = strings.TrimSpace(raw)
	if raw == `` {
		return ``, false
	}
	return raw, true
}
