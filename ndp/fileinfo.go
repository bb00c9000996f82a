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

// collectFileinfo dedups on the embedded file's md5 hash.
func (c *Collector) collectFileinfo(ctx context.Context, ev *event.Event) {
	md5 := ev.GetString(`fileinfo`, `md5`)
	if md5 == `` {
		return
	}
	body := newObservation(`fileinfo`, ev, c.cfg.Description)
	setIfPresent(body, `md5`, md5)
	setIfPresent(body, `filename`, ev.GetString(`fileinfo`, `filename`))
	setIfPresent(body, `sha256`, ev.GetString(`fileinfo`, `sha256`))
	if size := ev.GetInt(`fileinfo`, `size`); size != 0 {
		body[`size`] = size
	}
	c.dedupOrEmit(ctx, slotFileinfo, []byte(md5), body)
}
