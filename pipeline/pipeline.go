/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package pipeline wires the normaliser, alert decoder, NDP collector,
// and router into the single per-event dispatch the rest of the
// process drives: one JSON record in, zero or more sink deliveries
// out. It holds no network listeners or file handles of its own —
// those belong to the cmd entrypoint — only the decision of where a
// parsed event goes next.
package pipeline

import (
	"context"

	"github.com/sentrybridge/sentrybridge/alert"
	"github.com/sentrybridge/sentrybridge/counters"
	"github.com/sentrybridge/sentrybridge/event"
	"github.com/sentrybridge/sentrybridge/log"
	"github.com/sentrybridge/sentrybridge/ndp"
	"github.com/sentrybridge/sentrybridge/route"
)

// event_type values given dedicated handling. Everything else falls
// through to RouteGeneric.
const (
	typeAlert       = `alert`
	typeDHCP        = `dhcp`
	typeStats       = `stats`
	typeClientStats = `client_stats`
)

// Pipeline is the C1-C8 dispatcher. Build one per process; it is safe
// for concurrent use by multiple reader goroutines since every
// collaborator it holds is itself concurrency-safe.
type Pipeline struct {
	decoder         *alert.Decoder
	ndp             *ndp.Collector
	router          *route.Router
	cnt             *counters.Counters
	lg              *log.KVLogger
	fingerprint     bool
	clientStatsMode bool
}

// New builds a Pipeline. ndpCollector may be nil when NDP is globally
// disabled; clientStatsEnabled mirrors Global.Client_Stats.
func New(decoder *alert.Decoder, ndpCollector *ndp.Collector, router *route.Router, cnt *counters.Counters, fingerprintEnabled, clientStatsEnabled bool, lg *log.Logger) *Pipeline {
	return &Pipeline{
		decoder:         decoder,
		ndp:             ndpCollector,
		router:          router,
		cnt:             cnt,
		lg:              log.NewLoggerWithKV(lg, log.KV(`component`, `pipeline`)),
		fingerprint:     fingerprintEnabled,
		clientStatsMode: clientStatsEnabled,
	}
}

// Process parses raw as one JSON event and dispatches it to the
// appropriate decoder/collector/router path. Malformed input is
// counted and logged by event.Normalize and otherwise ignored here —
// there is nothing further for the pipeline to do with it.
func (p *Pipeline) Process(ctx context.Context, raw []byte, baseLg *log.Logger) {
	ev, ok := event.Normalize(raw, baseLg, p.cnt)
	if !ok {
		return
	}
	p.Dispatch(ctx, ev)
}

// Dispatch routes an already-normalised event. Exposed separately from
// Process so callers that already hold an *event.Event (tests, or a
// future batched reader) don't have to re-serialise and re-parse it.
func (p *Pipeline) Dispatch(ctx context.Context, ev *event.Event) {
	switch ev.Type() {
	case typeAlert:
		na := p.decoder.Decode(ctx, ev)
		p.router.RouteAlert(ctx, na)
	case typeDHCP:
		p.router.RouteDHCP(ctx, ev, p.fingerprint)
	case typeStats:
		p.router.RouteStats(ctx, ev)
	case typeClientStats:
		p.router.RouteClientStats(ctx, ev, p.clientStatsMode)
	default:
		if p.ndp != nil {
			p.ndp.Collect(ctx, ev)
		}
		p.router.RouteGeneric(ctx, ev)
	}
}
