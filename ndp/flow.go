/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package ndp

import (
	"context"

	"github.com/sentrybridge/sentrybridge/event"
)

// collectFlow emits a flow observation whenever the nested flow object
// carries any non-empty state. Unlike every other protocol, a single
// flow event is examined once per endpoint (src_ip, then dest_ip): each
// endpoint that is itself outside the ignore set gets its own tagged
// document (direction, ip_address) and its own dedup digest against the
// shared flow slot, so one event can yield zero, one, or two documents.
func (c *Collector) collectFlow(ctx context.Context, ev *event.Event) {
	state := ev.GetString(`flow`, `state`)
	if state == `` {
		return
	}

	for _, endpoint := range [...]struct {
		direction string
		ip        string
	}{
		{`src_ip`, ev.GetString(`src_ip`)},
		{`dest_ip`, ev.GetString(`dest_ip`)},
	} {
		if endpoint.ip == `` || c.ignore.ContainsString(endpoint.ip) {
			continue
		}
		digest := sum128([]byte(endpoint.ip))
		if c.checkDedup(slotFlow, digest) {
			c.cnt.NDPSkipInc()
			c.debugf(slotFlow, "", "skip-dedup")
			continue
		}
		body := newObservation(`flow`, ev, c.cfg.Description)
		setIfPresent(body, `proto`, ev.GetString(`proto`))
		setIfPresent(body, `state`, state)
		body[`direction`] = endpoint.direction
		body[`ip_address`] = endpoint.ip
		c.emit(ctx, slotFlow, digest, body)
	}
}
