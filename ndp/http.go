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

// collectHTTP emits up to two independent observations per event, each
// with its own dedup slot: a URL observation (hostname+url) and a
// user-agent observation (http_user_agent). One may be skipped as a
// repeat while the other is freshly emitted.
func (c *Collector) collectHTTP(ctx context.Context, ev *event.Event) {
	hostname := ev.GetString(`http`, `hostname`)
	url := ev.GetString(`http`, `url`)
	if hostname != `` || url != `` {
		body := newObservation(`http`, ev, c.cfg.Description)
		setIfPresent(body, `hostname`, hostname)
		setIfPresent(body, `url`, url)
		c.dedupOrEmit(ctx, slotHTTPURL, []byte(hostname+url), body)
	}

	ua := ev.GetString(`http`, `http_user_agent`)
	if ua != `` {
		body := newObservation(`user_agent`, ev, c.cfg.Description)
		setIfPresent(body, `http_user_agent`, ua)
		c.dedupOrEmit(ctx, slotHTTPUA, []byte(ua), body)
	}
}
