/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package route

import (
	"context"
	"crypto/sha1"
	"encoding/hex"

	"github.com/sentrybridge/sentrybridge/event"
	"github.com/sentrybridge/sentrybridge/log"
	"github.com/sentrybridge/sentrybridge/sink"
)

// RouteDHCP records a DHCP lease into the correlation store when
// fingerprinting is enabled, then offers the raw event to every sink
// enabled for the "dhcp" or "all" class.
func (r *Router) RouteDHCP(ctx context.Context, ev *event.Event, fingerprintEnabled bool) {
	r.cnt.Accepted(ClassDHCP)
	if fingerprintEnabled && r.corr != nil {
		assigned := ev.GetString(`dhcp`, `assigned_ip`)
		dest := ev.GetString(`dest_ip`)
		if err := r.corr.RecordDHCP(ctx, assigned, dest, ev.Raw()); err != nil {
			r.lg.Warn("dhcp correlation write failed", log.KVErr(err))
		}
	}
	r.deliverGeneric(ctx, ClassDHCP, ev.Raw())
}

func (r *Router) deliverGeneric(ctx context.Context, class string, raw []byte) {
	var fns []func() error
	for _, w := range r.sinks {
		w := w
		if !w.allows(class) {
			continue
		}
		switch w.kind {
		case sink.KindKV:
			fns = append(fns, func() error { return w.kv.WriteKV(ctx, class, raw) })
		case sink.KindSearch:
			fns = append(fns, func() error { return w.search.Index(ctx, class, digestID(raw), raw) })
		case sink.KindPipe, sink.KindFile, sink.KindExec:
			fns = append(fns, func() error { return w.line.WriteLine(ctx, raw) })
		}
	}
	r.fanOut(fns)
}

// digestID gives the generic (non-NDP) search delivery path a stable
// document id; the content-addressed NDP observation ids are computed
// separately by the ndp package itself.
func digestID(raw []byte) string {
	sum := sha1.Sum(raw)
	return hex.EncodeToString(sum[:])
}
