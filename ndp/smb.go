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

// collectSMB dedups on "command|filename", gated on command being a
// member of the configured interesting-command set. Reads and writes
// of the same file are emitted separately by design: that is the
// intended granularity for lateral-movement signal.
func (c *Collector) collectSMB(ctx context.Context, ev *event.Event) {
	command := ev.GetString(`smb`, `command`)
	if _, ok := c.cfg.SMBInterestingCommands[command]; !ok {
		return
	}
	filename := ev.GetString(`smb`, `filename`)

	body := newObservation(`smb`, ev, c.cfg.Description)
	setIfPresent(body, `command`, command)
	setIfPresent(body, `filename`, filename)

	c.dedupOrEmit(ctx, slotSMB, []byte(command+`|`+filename), body)
}
