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

// collectFTP dedups on "command|command_data", gated on command being
// a member of the configured interesting-command set.
func (c *Collector) collectFTP(ctx context.Context, ev *event.Event) {
	command := ev.GetString(`ftp`, `command`)
	if _, ok := c.cfg.FTPInterestingCommands[command]; !ok {
		return
	}
	data := ev.GetString(`ftp`, `command_data`)

	body := newObservation(`ftp`, ev, c.cfg.Description)
	setIfPresent(body, `command`, command)
	setIfPresent(body, `command_data`, data)

	c.dedupOrEmit(ctx, slotFTP, []byte(command+`|`+data), body)
}
