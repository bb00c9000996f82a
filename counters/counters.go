/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package counters implements the process-wide monotonic tallies:
// accepted counts per event class, the invalid_json_count, and the two
// NDP outcome counters (emits and dedup skips). Increments are either a single atomic add (the
// fixed outcome counters) or a short mutex-guarded map lookup followed
// by an atomic add (the open-ended per-class counters), the same
// connHot/connDead bookkeeping style used elsewhere for connection
// accounting, rather than introducing a counters-owning actor
// goroutine — increments never need to be observed together
// atomically.
package counters

import (
	"sync"
	"sync/atomic"
)

const (
	InvalidJSON = `invalid_json_count`
	NDP         = `ndp`
	NDPSkip     = `ndp_skip`
)

// Counters holds per-class accepted counts plus the fixed outcome
// counters. The zero value is not ready to use; call New.
type Counters struct {
	invalidJSON uint64
	ndp         uint64
	ndpSkip     uint64

	mtx      sync.Mutex
	accepted map[string]*uint64
}

func New() *Counters {
	return &Counters{accepted: make(map[string]*uint64)}
}

func (c *Counters) slot(class string) *uint64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	p, ok := c.accepted[class]
	if !ok {
		var v uint64
		p = &v
		c.accepted[class] = p
	}
	return p
}

// Accepted increments the accepted count for the given event class.
func (c *Counters) Accepted(class string) {
	atomic.AddUint64(c.slot(class), 1)
}

// AcceptedCount returns the current accepted count for class.
func (c *Counters) AcceptedCount(class string) uint64 {
	c.mtx.Lock()
	p, ok := c.accepted[class]
	c.mtx.Unlock()
	if !ok {
		return 0
	}
	return atomic.LoadUint64(p)
}

func (c *Counters) InvalidJSON() {
	atomic.AddUint64(&c.invalidJSON, 1)
}

func (c *Counters) InvalidJSONCount() uint64 {
	return atomic.LoadUint64(&c.invalidJSON)
}

func (c *Counters) NDPEmit() {
	atomic.AddUint64(&c.ndp, 1)
}

func (c *Counters) NDPEmitCount() uint64 {
	return atomic.LoadUint64(&c.ndp)
}

func (c *Counters) NDPSkipInc() {
	atomic.AddUint64(&c.ndpSkip, 1)
}

func (c *Counters) NDPSkipCount() uint64 {
	return atomic.LoadUint64(&c.ndpSkip)
}

// Snapshot returns a point-in-time copy suitable for feeding a
// dedicated stats sink.
func (c *Counters) Snapshot() map[string]uint64 {
	c.mtx.Lock()
	out := make(map[string]uint64, len(c.accepted)+3)
	for k, p := range c.accepted {
		out[k] = atomic.LoadUint64(p)
	}
	c.mtx.Unlock()
	out[InvalidJSON] = c.InvalidJSONCount()
	out[NDP] = c.NDPEmitCount()
	out[NDPSkip] = c.NDPSkipCount()
	return out
}
