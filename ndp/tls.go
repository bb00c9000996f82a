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

// collectTLS dedups on "ja3:ja3s". An event carrying neither hash is
// almost certainly a sensor misconfiguration: it is logged and dropped
// without touching any counter.
func (c *Collector) collectTLS(ctx context.Context, ev *event.Event) {
	ja3 := ev.GetString(`tls`, `ja3`, `hash`)
	ja3s := ev.GetString(`tls`, `ja3s`, `hash`)
	if ja3 == `` && ja3s == `` {
		c.lg.Warn("tls event missing both ja3 and ja3s hashes")
		return
	}

	body := newObservation(`tls`, ev, c.cfg.Description)
	setIfPresent(body, `ja3`, ja3)
	setIfPresent(body, `ja3s`, ja3s)
	setIfPresent(body, `sni`, ev.GetString(`tls`, `sni`))
	setIfPresent(body, `version`, ev.GetString(`tls`, `version`))

	softwareVersionSubobject := `server`
	if c.cfg.TLSClientSoftwareVersion {
		softwareVersionSubobject = `client`
	}
	setIfPresent(body, `software_version`, ev.GetString(`tls`, softwareVersionSubobject, `software_version`))

	c.dedupOrEmit(ctx, slotTLS, []byte(ja3+`:`+ja3s), body)
}
