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

// collectDNS emits only query records; any other nested dns.type is
// dropped silently (not a malformed event, just out of scope for this
// collector).
func (c *Collector) collectDNS(ctx context.Context, ev *event.Event) {
	if ev.GetString(`dns`, `type`) != `query` {
		return
	}
	rrname := ev.GetString(`dns`, `rrname`)
	if rrname == `` {
		return
	}
	body := newObservation(`dns`, ev, c.cfg.Description)
	setIfPresent(body, `rrname`, rrname)
	setIfPresent(body, `rrtype`, ev.GetString(`dns`, `rrtype`))
	c.dedupOrEmit(ctx, slotDNS, []byte(rrname), body)
}
