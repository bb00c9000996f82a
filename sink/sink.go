/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package sink implements the heterogeneous downstream destinations
// the router fans events out to: a relational database, a key/value
// store, a search/indexing cluster, named pipes, flat files, and an
// external command. Delivery to any one sink is independent and
// best-effort; a failure is logged, never propagated to the other
// sinks handling the same event. Failures are not counted.
package sink

import "context"

// Kind enumerates the sink types a [Sink "name"] configuration section
// may declare.
const (
	KindSQL    = `sql`
	KindKV     = `kv`
	KindSearch = `search`
	KindPipe   = `pipe`
	KindFile   = `file`
	KindExec   = `exec`
)

// AlertRow is the subset of a normalised alert the SQL sink persists.
// Kept independent of the alert package's NormalisedAlert so sink has
// no dependency on the alert decoder.
type AlertRow struct {
	Timestamp    string
	SrcIP        string
	SrcPort      int64
	DestIP       string
	DestPort     int64
	Proto        string
	SignatureID  string
	SignatureRev int64
	Signature    string
	Classtype    string
	ClassDesc    string
	RawJSON      string
}

// SQLSink persists one row per alert.
type SQLSink interface {
	WriteAlert(ctx context.Context, row AlertRow) error
	Close() error
}

// LineSink receives one line per event: the rewritten JSON for alerts,
// the raw line for everything else. Implemented by the pipe, file,
// and exec sinks.
type LineSink interface {
	WriteLine(ctx context.Context, line []byte) error
	Close() error
}

// KVSink writes one value under a named stream (e.g. "alert",
// "dhcp", "client_stats").
type KVSink interface {
	WriteKV(ctx context.Context, stream string, value []byte) error
	Close() error
}

// SearchSink indexes a document by id. The ndp package depends on this
// exact shape via its own local interface; Index satisfies both.
type SearchSink interface {
	Index(ctx context.Context, index, id string, body []byte) error
	Close() error
}
