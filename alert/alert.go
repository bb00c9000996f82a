/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package alert builds the normalised alert record: resolves the
// classification token against the classifications table, splices
// cross-event correlation into the outgoing JSON when the alert falls
// inside the fingerprint-interest set, and records a new fingerprint
// into the correlation store when the alert's rule metadata declares
// one.
package alert

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/buger/jsonparser"

	"github.com/sentrybridge/sentrybridge/cidr"
	"github.com/sentrybridge/sentrybridge/correlate"
	"github.com/sentrybridge/sentrybridge/event"
	"github.com/sentrybridge/sentrybridge/fingerprint"
	"github.com/sentrybridge/sentrybridge/log"
)

// defaultPayloadBufferSize bounds new_json_string when the caller
// configures no explicit payload-buffer-size.
const defaultPayloadBufferSize = 64 * 1024

// NormalisedAlert is the decoded, enriched alert record handed to the
// router.
type NormalisedAlert struct {
	Timestamp string
	SrcIP     string
	SrcPort   int64
	DestIP    string
	DestPort  int64
	Proto     string
	FlowID    int64

	SignatureID  string
	SignatureRev int64
	Signature    string
	Classtype    string
	ClassDesc    string

	Fingerprint fingerprint.Metadata

	// FingerprintSource is true when this alert's metadata declared a
	// new fingerprint that was written to the correlation store. Such
	// alerts are excluded from the SQL/KV-alert/pipe/file fan-out by
	// the router and are consumed into the correlation store instead.
	FingerprintSource bool

	// NewJSONString is the rewritten JSON serialisation downstream
	// sinks consume: the original event plus classification and
	// correlation fields, bounded by the configured payload buffer
	// size.
	NewJSONString string
}

// Decoder builds NormalisedAlert values. classifications maps a
// classtype token to its human readable description; fpInterest gates
// correlation-store lookups (fingerprint writes are not gated by it);
// corr may be nil, in which case
// no correlation work is attempted. payloadBufferSize of 0 selects
// defaultPayloadBufferSize.
type Decoder struct {
	classifications   map[string]string
	fpInterest        *cidr.Set
	corr              *correlate.Client
	fingerprintEnable bool
	payloadBufferSize int
	lg                *log.KVLogger
}

func NewDecoder(classifications map[string]string, fpInterest *cidr.Set, corr *correlate.Client, fingerprintEnable bool, payloadBufferSize uint64, lg *log.Logger) *Decoder {
	if payloadBufferSize == 0 {
		payloadBufferSize = defaultPayloadBufferSize
	}
	return &Decoder{
		classifications:   classifications,
		fpInterest:        fpInterest,
		corr:              corr,
		fingerprintEnable: fingerprintEnable,
		payloadBufferSize: int(payloadBufferSize),
		lg:                log.NewLoggerWithKV(lg, log.KV(`component`, `alert`)),
	}
}

// Decode builds a NormalisedAlert from ev, which must have event_type
// == "alert". Every sub-failure (missing metadata, unparseable stored
// correlation, an over-budget splice) is non-fatal: the alert proceeds
// with whatever enrichment succeeded.
func (d *Decoder) Decode(ctx context.Context, ev *event.Event) *NormalisedAlert {
	na := &NormalisedAlert{
		Timestamp: ev.GetString(`timestamp`),
		SrcIP:     ev.GetString(`src_ip`),
		SrcPort:   ev.GetInt(`src_port`),
		DestIP:    ev.GetString(`dest_ip`),
		DestPort:  ev.GetInt(`dest_port`),
		Proto:     ev.GetString(`proto`),
		FlowID:    ev.GetInt(`flow_id`),

		SignatureID:  ev.GetString(`alert`, `signature_id`),
		SignatureRev: ev.GetInt(`alert`, `rev`),
		Signature:    ev.GetString(`alert`, `signature`),
		Classtype:    ev.GetString(`alert`, `classtype`),
	}
	if na.SignatureID == `` {
		// signature_id is frequently numeric in the wire format.
		if n := ev.GetInt(`alert`, `signature_id`); n != 0 {
			na.SignatureID = strconv.FormatInt(n, 10)
		}
	}
	if na.Classtype == `` {
		na.Classtype = ev.GetString(`classtype`)
	}
	na.ClassDesc = d.resolveClassification(na.Classtype)

	if metaRaw, ok := ev.GetObject(`alert`, `metadata`); ok {
		na.Fingerprint = fingerprint.Extract(metaRaw)
	} else {
		na.Fingerprint = fingerprint.Extract(nil)
	}

	out := ev.Raw()
	out = d.spliceClassification(out, na.ClassDesc)

	if d.corr != nil && d.fpInterest != nil {
		out = d.spliceCorrelations(ctx, out, `src`, na.SrcIP)
		out = d.spliceCorrelations(ctx, out, `dest`, na.DestIP)
	}

	if d.corr != nil && d.fingerprintEnable && na.Fingerprint.Present && na.SrcIP != `` {
		if err := d.corr.RecordFingerprint(ctx, d.fingerprintRecord(ev, na)); err != nil {
			d.lg.Warn("fingerprint record write failed", log.KV(`src_ip`, na.SrcIP), log.KVErr(err))
		} else {
			na.FingerprintSource = true
		}
	}

	na.NewJSONString = boundPayload(out, d.payloadBufferSize)
	return na
}

func (d *Decoder) resolveClassification(token string) string {
	if token == `` {
		return ``
	}
	if desc, ok := d.classifications[token]; ok && desc != `` {
		return desc
	}
	return token
}

func (d *Decoder) spliceClassification(raw []byte, desc string) []byte {
	if desc == `` {
		return raw
	}
	v, err := jsonparser.Set(raw, quoteJSON(desc), `classification_description`)
	if err != nil {
		d.lg.Warn("classification splice failed", log.KVErr(err))
		return raw
	}
	return v
}

// spliceCorrelations looks up correlation records for ip (src or dest,
// named by direction) and inserts them under fingerprint_<direction>_N
// and fingerprint_dhcp_<direction>. A store failure or an unparseable
// stored value is skipped with a warning; the event proceeds either
// way.
func (d *Decoder) spliceCorrelations(ctx context.Context, raw []byte, direction, ip string) []byte {
	if ip == `` || !d.fpInterest.ContainsString(ip) {
		return raw
	}
	corrs := d.corr.LookupCorrelations(ctx, ip)
	for i, fp := range corrs.Fingerprints {
		if !json.Valid([]byte(fp)) {
			d.lg.Warn("skipping unparseable stored fingerprint", log.KV(`ip`, ip))
			continue
		}
		key := `fingerprint_` + direction + `_` + strconv.Itoa(i)
		v, err := jsonparser.Set(raw, []byte(fp), key)
		if err != nil {
			d.lg.Warn("fingerprint splice failed", log.KV(`key`, key), log.KVErr(err))
			continue
		}
		raw = v
	}
	if corrs.DHCPFound && json.Valid([]byte(corrs.DHCP)) {
		key := `fingerprint_dhcp_` + direction
		if v, err := jsonparser.Set(raw, []byte(corrs.DHCP), key); err == nil {
			raw = v
		} else {
			d.lg.Warn("dhcp splice failed", log.KV(`key`, key), log.KVErr(err))
		}
	}
	return raw
}

func (d *Decoder) fingerprintRecord(ev *event.Event, na *NormalisedAlert) correlate.FingerprintRecord {
	fp := na.Fingerprint
	fpJSON := []byte(`{"os":` + strconv.Quote(fp.OS) + `,"source":` + strconv.Quote(fp.Source) + `,"type":` + strconv.Quote(fp.Type) + `}`)

	var httpJSON []byte
	if ev.GetString(`app_proto`) == `http` && (ev.GetString(`http`, `http_user_agent`) != `` || ev.GetString(`http`, `xff`) != ``) {
		if raw, ok := ev.GetObject(`http`); ok {
			httpJSON = raw
		}
	}

	return correlate.FingerprintRecord{
		Timestamp:       na.Timestamp,
		SrcIP:           na.SrcIP,
		SignatureID:     na.SignatureID,
		FingerprintJSON: fpJSON,
		HTTPJSON:        httpJSON,
		Expire:          fp.Expire,
	}
}

func quoteJSON(s string) []byte {
	return []byte(strconv.Quote(s))
}

// boundPayload enforces the configured payload_buffer_size, truncating
// deterministically on overrun rather than growing without limit.
func boundPayload(raw []byte, max int) string {
	if max > 0 && len(raw) > max {
		return string(raw[:max])
	}
	return string(raw)
}
