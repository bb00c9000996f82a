/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package correlate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sentrybridge/sentrybridge/log"
)

const scanCount = 100

// Client is the typed correlation-store surface offered to the rest of
// the core. Loss of the store connection during a write is logged and
// the operation is dropped for that event; the caller's pipeline
// continues regardless of the returned error.
type Client struct {
	store   Store
	prefix  string
	ipTTL   time.Duration
	dhcpTTL time.Duration
	lg      *log.KVLogger
}

func New(store Store, prefix string, ipTTL, dhcpTTL time.Duration, lg *log.Logger) *Client {
	return &Client{
		store:   store,
		prefix:  prefix,
		ipTTL:   ipTTL,
		dhcpTTL: dhcpTTL,
		lg:      log.NewLoggerWithKV(lg, log.KV(`component`, `correlate`)),
	}
}

// RecordDHCP implements record_dhcp: if assignedIP is 0.0.0.0 and
// destIP isn't the broadcast address, destIP is used as the effective
// key instead.
func (c *Client) RecordDHCP(ctx context.Context, assignedIP, destIP string, raw []byte) error {
	ip := assignedIP
	if assignedIP == `0.0.0.0` && destIP != `255.255.255.255` {
		ip = destIP
	}
	if ip == `` {
		return nil
	}
	key := DHCPKey(c.prefix, ip)
	if err := c.store.Set(ctx, key, string(raw), c.dhcpTTL); err != nil {
		c.lg.Warn("correlation store write failed", log.KV(`key`, key), log.KVErr(err))
		return err
	}
	return nil
}

// FingerprintRecord bundles what record_fingerprint needs to compose
// its two correlation values.
type FingerprintRecord struct {
	Timestamp       string
	SrcIP           string
	SignatureID     string
	FingerprintJSON []byte // the fingerprint sub-object body; may be nil
	HTTPJSON        []byte // optional "http" sub-object body
	Expire          int64  // seconds; 0 means "use the configured IP default"
}

// RecordFingerprint implements record_fingerprint: PFX|ip|<src_ip>
// receives {timestamp, ip}; PFX|event|<src_ip>|<signature_id> receives
// the fingerprint payload, plus an "http" sub-object when supplied.
func (c *Client) RecordFingerprint(ctx context.Context, in FingerprintRecord) error {
	ipVal := fmt.Sprintf(`{"timestamp":%q,"ip":%q}`, in.Timestamp, in.SrcIP)
	ipKey := IPKey(c.prefix, in.SrcIP)
	if err := c.store.Set(ctx, ipKey, ipVal, c.ipTTL); err != nil {
		c.lg.Warn("correlation store write failed", log.KV(`key`, ipKey), log.KVErr(err))
		return err
	}

	var b strings.Builder
	b.WriteString(`{"fingerprint":`)
	if len(in.FingerprintJSON) > 0 {
		b.Write(in.FingerprintJSON)
	} else {
		b.WriteString(`{}`)
	}
	if len(in.HTTPJSON) > 0 {
		b.WriteString(`,"http":`)
		b.Write(in.HTTPJSON)
	}
	b.WriteString(`}`)

	ttl := c.ipTTL
	if in.Expire > 0 {
		ttl = time.Duration(in.Expire) * time.Second
	}
	eventKey := EventKey(c.prefix, in.SrcIP, in.SignatureID)
	if err := c.store.Set(ctx, eventKey, b.String(), ttl); err != nil {
		c.lg.Warn("correlation store write failed", log.KV(`key`, eventKey), log.KVErr(err))
		return err
	}
	return nil
}

// Correlations is the result of lookup_correlations: the most recent
// DHCP binding (if any) and every recorded fingerprint event for ip.
type Correlations struct {
	DHCP         string
	DHCPFound    bool
	Fingerprints []string
}

// LookupCorrelations implements lookup_correlations: SCAN for the
// event key pattern, GET each key, and GET the DHCP key. A store
// failure is logged and yields a partial (possibly empty) result
// rather than an error, since a missed splice is non-fatal to the
// event being enriched.
func (c *Client) LookupCorrelations(ctx context.Context, ip string) Correlations {
	var out Correlations
	if v, ok, err := c.store.Get(ctx, DHCPKey(c.prefix, ip)); err != nil {
		c.lg.Warn("correlation store read failed", log.KV(`ip`, ip), log.KVErr(err))
	} else if ok {
		out.DHCP = v
		out.DHCPFound = true
	}

	keys, err := c.store.Scan(ctx, EventScanPattern(c.prefix, ip), scanCount)
	if err != nil {
		c.lg.Warn("correlation store scan failed", log.KV(`ip`, ip), log.KVErr(err))
		return out
	}
	for _, k := range keys {
		v, ok, err := c.store.Get(ctx, k)
		if err != nil {
			c.lg.Warn("correlation store read failed", log.KV(`key`, k), log.KVErr(err))
			continue
		}
		if ok {
			out.Fingerprints = append(out.Fingerprints, v)
		}
	}
	return out
}

func (c *Client) Close() error {
	return c.store.Close()
}
