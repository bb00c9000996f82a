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

	"github.com/sentrybridge/sentrybridge/alert"
	"github.com/sentrybridge/sentrybridge/sink"
)

// RouteAlert delivers a decoded alert. A fingerprint-source alert (one
// consumed into the correlation store) is excluded from SQL, KV, and
// line sinks specifically enabled for the "alert" class — it may still
// reach any sink enabled for "all" events, and always reaches search
// and exec sinks enabled for "alert", matching "it may still go to
// external/search if enabled".
func (r *Router) RouteAlert(ctx context.Context, na *alert.NormalisedAlert) {
	r.cnt.Accepted(ClassAlert)
	body := []byte(na.NewJSONString)
	row := sink.AlertRow{
		Timestamp: na.Timestamp, SrcIP: na.SrcIP, SrcPort: na.SrcPort,
		DestIP: na.DestIP, DestPort: na.DestPort, Proto: na.Proto,
		SignatureID: na.SignatureID, SignatureRev: na.SignatureRev, Signature: na.Signature,
		Classtype: na.Classtype, ClassDesc: na.ClassDesc, RawJSON: na.NewJSONString,
	}

	var fns []func() error
	for _, w := range r.sinks {
		w := w
		switch w.kind {
		case sink.KindSQL:
			if !w.allows(ClassAlert) || (na.FingerprintSource && !w.allowsOnly(ClassAll)) {
				continue
			}
			fns = append(fns, func() error { return w.sql.WriteAlert(ctx, row) })
		case sink.KindKV:
			if !w.allows(ClassAlert) || (na.FingerprintSource && !w.allowsOnly(ClassAll)) {
				continue
			}
			fns = append(fns, func() error { return w.kv.WriteKV(ctx, ClassAlert, body) })
		case sink.KindPipe, sink.KindFile:
			if !w.allows(ClassAlert) || (na.FingerprintSource && !w.allowsOnly(ClassAll)) {
				continue
			}
			fns = append(fns, func() error { return w.line.WriteLine(ctx, body) })
		case sink.KindExec:
			if !w.allows(ClassAlert) {
				continue
			}
			fns = append(fns, func() error { return w.line.WriteLine(ctx, body) })
		case sink.KindSearch:
			if !w.allows(ClassAlert) {
				continue
			}
			id := na.SignatureID
			if id == `` {
				id = na.Timestamp
			}
			fns = append(fns, func() error { return w.search.Index(ctx, alertsIndex, id+`-`+na.SrcIP, body) })
		}
	}
	r.fanOut(fns)
}
