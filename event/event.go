/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package event implements the JSON normaliser: parse a record exactly
// once, classify it by event_type, and provide best-effort field
// access to every later stage so nothing re-parses the tree. Field
// access follows github.com/buger/jsonparser's zero-allocation,
// best-effort style already used by processors/json.go and
// processors/jsonfilter.go — a missing or wrongly typed field yields
// the zero value, never an error.
package event

import (
	"github.com/buger/jsonparser"

	"github.com/sentrybridge/sentrybridge/counters"
	"github.com/sentrybridge/sentrybridge/log"
)

// maxLoggedPayload bounds the prefix of malformed input included in a
// warning log, matching the original decoder's 256 byte bound.
const maxLoggedPayload = 256

// Event wraps one parsed record. The zero value is not valid; build
// one with Normalize.
type Event struct {
	raw       []byte
	eventType string
}

// Normalize parses raw and extracts event_type. On malformed input
// (empty payload, unparseable JSON, or a missing/non-string
// event_type) it increments invalid_json_count, logs a bounded warning,
// and returns ok=false — the caller must drop the record without
// further processing.
func Normalize(raw []byte, lg *log.Logger, cnt *counters.Counters) (*Event, bool) {
	if len(raw) == 0 {
		cnt.InvalidJSON()
		lg.Warn("dropping empty event")
		return nil, false
	}
	et, err := jsonparser.GetString(raw, "event_type")
	if err != nil || et == `` {
		cnt.InvalidJSON()
		lg.Warn("dropping malformed event", log.KV("payload", boundedPrefix(raw)))
		return nil, false
	}
	return &Event{raw: raw, eventType: et}, true
}

func boundedPrefix(raw []byte) string {
	if len(raw) > maxLoggedPayload {
		return string(raw[:maxLoggedPayload])
	}
	return string(raw)
}

// Type returns the event's event_type.
func (e *Event) Type() string {
	return e.eventType
}

// Raw returns the original, unmodified input bytes.
func (e *Event) Raw() []byte {
	return e.raw
}

// GetString returns the string at path, or "" if absent or of another
// type.
func (e *Event) GetString(path ...string) string {
	v, err := jsonparser.GetString(e.raw, path...)
	if err != nil {
		return ``
	}
	return v
}

// GetInt returns the integer at path, or 0 if absent or of another
// type.
func (e *Event) GetInt(path ...string) int64 {
	v, err := jsonparser.GetInt(e.raw, path...)
	if err != nil {
		return 0
	}
	return v
}

// GetFloat returns the float at path, or 0 if absent or of another
// type.
func (e *Event) GetFloat(path ...string) float64 {
	v, err := jsonparser.GetFloat(e.raw, path...)
	if err != nil {
		return 0
	}
	return v
}

// GetBool returns the bool at path, or false if absent or of another
// type.
func (e *Event) GetBool(path ...string) bool {
	v, err := jsonparser.GetBoolean(e.raw, path...)
	if err != nil {
		return false
	}
	return v
}

// Exists reports whether path resolves to any value.
func (e *Event) Exists(path ...string) bool {
	_, _, _, err := jsonparser.Get(e.raw, path...)
	return err == nil
}

// GetObject returns the raw bytes of the object or string at path,
// accepting both encodings: the upstream sensor sometimes emits a
// nested object natively and sometimes as a re-serialised JSON string.
// Callers should feed the result back through jsonparser as if it were
// a fresh top-level document.
func (e *Event) GetObject(path ...string) ([]byte, bool) {
	v, dt, _, err := jsonparser.Get(e.raw, path...)
	if err != nil {
		return nil, false
	}
	switch dt {
	case jsonparser.Object:
		return v, true
	case jsonparser.String:
		// a re-serialised object arrives as a JSON string; jsonparser.Get
		// returns its contents still escaped, so unescape them to get
		// the object's JSON text back.
		s, err := jsonparser.ParseString(v)
		if err != nil {
			return nil, false
		}
		return []byte(s), true
	default:
		return nil, false
	}
}
