/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package ndp implements the network-discovery/de-duplication
// collector: it inspects non-alert events protocol by protocol and
// emits a normalised, content-addressed, duplicate-suppressed
// observation to the search cluster.
package ndp

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/minio/highwayhash"

	"github.com/sentrybridge/sentrybridge/cidr"
	"github.com/sentrybridge/sentrybridge/counters"
	"github.com/sentrybridge/sentrybridge/event"
	"github.com/sentrybridge/sentrybridge/log"
)

// digestKey is a fixed 32-byte highwayhash key. Observation ids need
// only be stable within a single running process (dedup is a
// process-local single-slot comparison and the search cluster does not
// require cross-restart id continuity), so a fixed key is used rather
// than one generated per process start: it keeps digests reproducible
// across a test run and across restarts, which a random key would not.
var digestKey = make([]byte, 32)

// sum128 returns the 128-bit observation id over data; sum128Hex
// renders it as 32 hex characters.
func sum128(data []byte) [highwayhash.Size128]byte {
	return highwayhash.Sum128(data, digestKey)
}

func sum128Hex(data []byte) string {
	d := sum128(data)
	return hex.EncodeToString(d[:])
}

// SearchSink is the minimal surface the NDP collector needs from the
// search-cluster sink: index a document by id.
type SearchSink interface {
	Index(ctx context.Context, index, id string, body []byte) error
}

// Config carries the NDP-relevant subset of the global configuration.
type Config struct {
	Enable bool

	RoutingFlow     bool
	RoutingFileinfo bool
	RoutingTLS      bool
	RoutingDNS      bool
	RoutingSSH      bool
	RoutingHTTP     bool
	RoutingSMB      bool
	RoutingFTP      bool

	SMBInternal bool
	Debug       bool
	Description string

	// RequireBothExternal switches the external-candidate rule from
	// "either endpoint outside the ignore set" (the default) to
	// "both endpoints outside the ignore set".
	RequireBothExternal bool

	// TLSClientSoftwareVersion reads server.software_version from the
	// TLS client subobject instead of the server subobject.
	TLSClientSoftwareVersion bool

	SMBInterestingCommands map[string]struct{}
	FTPInterestingCommands map[string]struct{}
}

// Collector holds the per-process dedup state (LastSeenDigests) and
// dispatches incoming events to the per-protocol subroutines.
type Collector struct {
	cfg    Config
	ignore *cidr.Set
	sink   SearchSink
	cnt    *counters.Counters
	lg     *log.KVLogger

	mtx      sync.Mutex
	lastSeen map[string][highwayhash.Size128]byte
}

// New builds a Collector. sink may be nil only if cfg.Enable is false.
func New(cfg Config, ignore *cidr.Set, sink SearchSink, cnt *counters.Counters, lg *log.Logger) *Collector {
	return &Collector{
		cfg:      cfg,
		ignore:   ignore,
		sink:     sink,
		cnt:      cnt,
		lg:       log.NewLoggerWithKV(lg, log.KV(`component`, `ndp`)),
		lastSeen: make(map[string][highwayhash.Size128]byte),
	}
}

const (
	slotFlow         = `flow`
	slotFileinfo     = `fileinfo`
	slotTLS          = `tls`
	slotDNS          = `dns`
	slotSSH          = `ssh`
	slotHTTPURL      = `http_url`
	slotHTTPUA       = `http_user_agent`
	slotSMB          = `smb`
	slotFTP          = `ftp`
	indexNDP         = `ndp`
)

// Collect dispatches ev to the protocol subroutine named by its
// event_type, when NDP is globally enabled, the per-protocol routing
// flag is set, and the event passes the external-candidate gate.
func (c *Collector) Collect(ctx context.Context, ev *event.Event) {
	if c == nil || !c.cfg.Enable {
		return
	}
	et := ev.Type()
	if !c.externalCandidate(ev, et) {
		c.debugf(et, "", "skip-ignored")
		return
	}
	switch et {
	case `flow`:
		if c.cfg.RoutingFlow {
			c.collectFlow(ctx, ev)
		}
	case `fileinfo`:
		if c.cfg.RoutingFileinfo {
			c.collectFileinfo(ctx, ev)
		}
	case `tls`:
		if c.cfg.RoutingTLS {
			c.collectTLS(ctx, ev)
		}
	case `dns`:
		if c.cfg.RoutingDNS {
			c.collectDNS(ctx, ev)
		}
	case `ssh`:
		if c.cfg.RoutingSSH {
			c.collectSSH(ctx, ev)
		}
	case `http`:
		if c.cfg.RoutingHTTP {
			c.collectHTTP(ctx, ev)
		}
	case `smb`:
		if c.cfg.RoutingSMB {
			c.collectSMB(ctx, ev)
		}
	case `ftp`:
		if c.cfg.RoutingFTP {
			c.collectFTP(ctx, ev)
		}
	}
}

// externalCandidate implements the "external candidate" rule: by
// default either src or dest lying outside the ignore set is enough to
// include the event; RequireBothExternal demands both. smb bypasses
// the check entirely when SMBInternal is set.
func (c *Collector) externalCandidate(ev *event.Event, et string) bool {
	if et == `smb` && c.cfg.SMBInternal {
		return true
	}
	srcExternal := !c.ignore.ContainsString(ev.GetString(`src_ip`))
	destExternal := !c.ignore.ContainsString(ev.GetString(`dest_ip`))
	if c.cfg.RequireBothExternal {
		return srcExternal && destExternal
	}
	return srcExternal || destExternal
}

// checkDedup reports whether digest matches the last digest recorded
// for slot. It never mutates the slot; callers update it only after a
// successful emit.
func (c *Collector) checkDedup(slot string, digest [highwayhash.Size128]byte) bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	last, ok := c.lastSeen[slot]
	return ok && last == digest
}

func (c *Collector) commit(slot string, digest [highwayhash.Size128]byte) {
	c.mtx.Lock()
	c.lastSeen[slot] = digest
	c.mtx.Unlock()
}

// emit hands body to the search sink under the ndp index with id equal
// to the hex digest, then, only on success, commits the slot and
// increments the emit counter.
func (c *Collector) emit(ctx context.Context, slot string, digest [highwayhash.Size128]byte, body map[string]interface{}) {
	id := hex.EncodeToString(digest[:])
	b, err := json.Marshal(body)
	if err != nil {
		c.lg.Warn("failed to marshal ndp observation", log.KV(`type`, slot), log.KVErr(err))
		return
	}
	if err := c.sink.Index(ctx, indexNDP, id, b); err != nil {
		c.lg.Warn("ndp sink delivery failed", log.KV(`type`, slot), log.KVErr(err))
		return
	}
	c.commit(slot, digest)
	c.cnt.NDPEmit()
	c.debugf(slot, id, "emit")
}

// dedupOrEmit is the shared emit path every protocol subroutine calls:
// compute digest over canon, skip if it matches the slot's last value,
// otherwise build and deliver the observation.
func (c *Collector) dedupOrEmit(ctx context.Context, slot string, canon []byte, body map[string]interface{}) {
	digest := sum128(canon)
	if c.checkDedup(slot, digest) {
		c.cnt.NDPSkipInc()
		c.debugf(slot, hex.EncodeToString(digest[:]), "skip-dedup")
		return
	}
	c.emit(ctx, slot, digest, body)
}

func (c *Collector) debugf(slot, digest, decision string) {
	if !c.cfg.Debug {
		return
	}
	c.lg.Debug("ndp decision", log.KV(`type`, slot), log.KV(`digest`, digest), log.KV(`decision`, decision))
}

// newObservation seeds a fresh observation document (never a mutation
// of the input event) with the fields common to every protocol, common
// fields that are empty are simply never set by the caller.
func newObservation(obsType string, ev *event.Event, description string) map[string]interface{} {
	body := map[string]interface{}{`type`: obsType}
	setIfPresent(body, `timestamp`, ev.GetString(`timestamp`))
	setIfPresent(body, `host`, ev.GetString(`host`))
	setIfPresent(body, `src_ip`, ev.GetString(`src_ip`))
	setIfPresent(body, `dest_ip`, ev.GetString(`dest_ip`))
	setIfPresent(body, `src_dns`, ev.GetString(`src_dns`))
	setIfPresent(body, `dest_dns`, ev.GetString(`dest_dns`))
	if p := ev.GetInt(`src_port`); p != 0 {
		body[`src_port`] = p
	}
	if p := ev.GetInt(`dest_port`); p != 0 {
		body[`dest_port`] = p
	}
	if fid := ev.GetInt(`flow_id`); fid != 0 {
		body[`flow_id`] = fid
	}
	setIfPresent(body, `description`, description)
	return body
}

func setIfPresent(body map[string]interface{}, key, value string) {
	if value != `` {
		body[key] = value
	}
}
