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
	"strconv"

	"github.com/sentrybridge/sentrybridge/event"
)

// collectSSH dedups on "dest_ip:dest_port:server_version:client_version".
func (c *Collector) collectSSH(ctx context.Context, ev *event.Event) {
	dest := ev.GetString(`dest_ip`)
	port := ev.GetInt(`dest_port`)
	serverVer := ev.GetString(`ssh`, `server`, `software_version`)
	clientVer := ev.GetString(`ssh`, `client`, `software_version`)
	if dest == `` && serverVer == `` && clientVer == `` {
		return
	}

	body := newObservation(`ssh`, ev, c.cfg.Description)
	setIfPresent(body, `server_software_version`, serverVer)
	setIfPresent(body, `client_software_version`, clientVer)

	canon := dest + `:` + strconv.FormatInt(port, 10) + `:` + serverVer + `:` + clientVer
	c.dedupOrEmit(ctx, slotSSH, []byte(canon), body)
}
