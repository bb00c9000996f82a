/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package route implements the fan-out router: given an event's class
// and the configured sink-enablement matrix, it delivers the
// appropriate representation (rewritten alert JSON or raw event) to
// every enabled sink. Each sink is independent; one failing never
// short-circuits the others handling the same event.
package route

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sentrybridge/sentrybridge/correlate"
	"github.com/sentrybridge/sentrybridge/counters"
	"github.com/sentrybridge/sentrybridge/log"
	"github.com/sentrybridge/sentrybridge/sink"
)

// class names used by the sink-enablement matrix. "all" is the
// wildcard matching every event regardless of its own class.
const (
	ClassAlert       = `alert`
	ClassDHCP        = `dhcp`
	ClassStats       = `stats`
	ClassClientStats = `client_stats`
	ClassAll         = `all`
)

const (
	alertsIndex = `alerts`
)

// wiredSink is one configured [Sink "name"] section bound to its live
// handle. Exactly one of the handle fields is set, matching Kind.
type wiredSink struct {
	name    string
	kind    string
	classes map[string]struct{} // empty means every class

	sql    sink.SQLSink
	kv     sink.KVSink
	search sink.SearchSink
	line   sink.LineSink
}

func (w wiredSink) allows(class string) bool {
	if len(w.classes) == 0 {
		return true
	}
	if _, ok := w.classes[class]; ok {
		return true
	}
	_, ok := w.classes[ClassAll]
	return ok
}

func (w wiredSink) allowsOnly(class string) bool {
	_, ok := w.classes[class]
	return ok || len(w.classes) == 0
}

// Router holds every wired sink plus the correlation store client used
// for DHCP recording.
type Router struct {
	sinks []wiredSink
	stats sink.StatsSink

	corr *correlate.Client
	cnt  *counters.Counters
	lg   *log.KVLogger
}

func New(corr *correlate.Client, cnt *counters.Counters, lg *log.Logger) *Router {
	return &Router{
		corr: corr,
		cnt:  cnt,
		lg:   log.NewLoggerWithKV(lg, log.KV(`component`, `route`)),
	}
}

// RegisterSQL wires a named SQL sink, enabled for the given classes
// (empty means every class).
func (r *Router) RegisterSQL(name string, classes []string, s sink.SQLSink) {
	r.sinks = append(r.sinks, wiredSink{name: name, kind: sink.KindSQL, classes: classSet(classes), sql: s})
}

func (r *Router) RegisterKV(name string, classes []string, s sink.KVSink) {
	r.sinks = append(r.sinks, wiredSink{name: name, kind: sink.KindKV, classes: classSet(classes), kv: s})
}

func (r *Router) RegisterSearch(name string, classes []string, s sink.SearchSink) {
	r.sinks = append(r.sinks, wiredSink{name: name, kind: sink.KindSearch, classes: classSet(classes), search: s})
}

func (r *Router) RegisterLine(name, kind string, classes []string, s sink.LineSink) {
	r.sinks = append(r.sinks, wiredSink{name: name, kind: kind, classes: classSet(classes), line: s})
}

func (r *Router) RegisterStats(s sink.StatsSink) {
	r.stats = s
}

func classSet(classes []string) map[string]struct{} {
	if len(classes) == 0 {
		return nil
	}
	m := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		m[c] = struct{}{}
	}
	return m
}

// fanOut runs each of fns concurrently, logging (but never returning)
// individual failures. It always waits for every goroutine to finish,
// matching the "best effort per sink" delivery contract.
func (r *Router) fanOut(fns []func() error) {
	var g errgroup.Group
	for _, fn := range fns {
		fn := fn
		g.Go(func() error {
			if err := fn(); err != nil {
				r.lg.Warn("sink delivery failed", log.KVErr(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Close shuts down every registered sink, collecting but not stopping
// on individual failures.
func (r *Router) Close() error {
	var firstErr error
	for _, w := range r.sinks {
		var err error
		switch w.kind {
		case sink.KindSQL:
			err = w.sql.Close()
		case sink.KindKV:
			err = w.kv.Close()
		case sink.KindSearch:
			err = w.search.Close()
		default:
			err = w.line.Close()
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if r.stats != nil {
		if err := r.stats.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if r.corr != nil {
		if err := r.corr.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
