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

	"github.com/sentrybridge/sentrybridge/event"
)

// RouteStats hands an incoming "stats" event to the dedicated stats
// sink, when one is registered, then offers it to the generic "all"
// sinks like every other event.
func (r *Router) RouteStats(ctx context.Context, ev *event.Event) {
	r.cnt.Accepted(ClassStats)
	if r.stats != nil {
		if err := r.stats.WriteStats(ctx, ev.Raw()); err != nil {
			r.lg.Warn("stats sink delivery failed")
		}
	}
	r.deliverGeneric(ctx, ClassAll, ev.Raw())
}

// RouteClientStats forwards client_stats events, when enabled, once to
// every sink enabled for the "client_stats" or "all" class; when
// disabled, only the generic "all" sinks receive them.
func (r *Router) RouteClientStats(ctx context.Context, ev *event.Event, enabled bool) {
	r.cnt.Accepted(ClassClientStats)
	if enabled {
		r.deliverGeneric(ctx, ClassClientStats, ev.Raw())
		return
	}
	r.deliverGeneric(ctx, ClassAll, ev.Raw())
}

// RouteGeneric handles every other event_type, including "anomaly" and
// anything unrecognised: not an error, just a pass-through to whatever
// sinks are enabled for "all" events.
func (r *Router) RouteGeneric(ctx context.Context, ev *event.Event) {
	r.cnt.Accepted(ev.Type())
	r.deliverGeneric(ctx, ClassAll, ev.Raw())
}
