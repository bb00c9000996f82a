/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package sink

import (
	"context"
)

// StatsSink receives incoming "stats" events, routed here instead of
// the generic line sinks. A line sink (file, pipe, exec) fills this
// role through the LineStatsSink adapter below; StatsSink exists as its
// own named type so the router's wiring reads as intent rather than
// reuse.
type StatsSink interface {
	WriteStats(ctx context.Context, line []byte) error
	Close() error
}

// LineStatsSink adapts any LineSink to the StatsSink role.
type LineStatsSink struct {
	Sink LineSink
}

func (s LineStatsSink) WriteStats(ctx context.Context, line []byte) error {
	return s.Sink.WriteLine(ctx, line)
}

func (s LineStatsSink) Close() error {
	return s.Sink.Close()
}
