/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Command sentrybridge reads newline-framed JSON events from stdin,
// runs each through the normaliser/decoder/router pipeline, and exits
// on EOF or a fatal configuration error. Process lifetime, signal
// handling, and daemonisation are left to whatever supervises this
// binary.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/sentrybridge/sentrybridge/alert"
	"github.com/sentrybridge/sentrybridge/cidr"
	"github.com/sentrybridge/sentrybridge/config"
	"github.com/sentrybridge/sentrybridge/correlate"
	"github.com/sentrybridge/sentrybridge/counters"
	"github.com/sentrybridge/sentrybridge/log"
	"github.com/sentrybridge/sentrybridge/ndp"
	"github.com/sentrybridge/sentrybridge/pipeline"
	"github.com/sentrybridge/sentrybridge/route"
	"github.com/sentrybridge/sentrybridge/sink"
	"github.com/sentrybridge/sentrybridge/version"
)

func main() {
	var (
		confPath    = flag.String("config", "/opt/sentrybridge/sentrybridge.conf", "path to the configuration file")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		version.PrintVersion(os.Stdout)
		return
	}

	if err := run(*confPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(confPath string) error {
	cfg, err := config.Load(confPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logWtr := os.Stderr
	if cfg.Global.Log_File != `` {
		f, err := os.OpenFile(cfg.Global.Log_File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logWtr = f
	}
	baseLg := log.New(logWtr)
	if err := baseLg.SetLevelString(cfg.Global.Log_Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	// runID identifies this process instance in every structured log
	// line, the same role IngesterUUID plays for an ingest connection.
	runID := uuid.NewString()
	lg := log.NewLoggerWithKV(baseLg, log.KV(`run_id`, runID))
	lg.Info("starting", log.KV(`version`, fmt.Sprintf("%d.%d.%d", version.MajorVersion, version.MinorVersion, version.PointVersion)))

	cnt := counters.New()

	fpInterest, err := cidr.NewSet(cfg.Global.Fingerprint_Interest_Cidr)
	if err != nil {
		return fmt.Errorf("fingerprint interest CIDR set: %w", err)
	}
	ndpIgnore, err := cidr.NewSet(cfg.Global.Ndp_Ignore_Cidr)
	if err != nil {
		return fmt.Errorf("ndp ignore CIDR set: %w", err)
	}

	var corr *correlate.Client
	if cfg.Global.Fingerprint {
		store, err := openCorrelationStore(cfg)
		if err != nil {
			return fmt.Errorf("opening correlation store: %w", err)
		}
		corr = correlate.New(
			store,
			`sentrybridge`,
			time.Duration(cfg.Global.Fingerprint_Ip_Redis_Expire)*time.Second,
			time.Duration(cfg.Global.Fingerprint_Dhcp_Redis_Expire)*time.Second,
			baseLg,
		)
	}

	classifications, err := cfg.Classifications()
	if err != nil {
		return fmt.Errorf("decoding classifications: %w", err)
	}
	decoder := alert.NewDecoder(classifications, fpInterest, corr, cfg.Global.Fingerprint, cfg.Global.Payload_Buffer_Size, baseLg)

	router := route.New(corr, cnt, baseLg)
	var ndpSearchSink ndp.SearchSink
	sinks, err := cfg.Sinks()
	if err != nil {
		return fmt.Errorf("decoding sinks: %w", err)
	}
	for name, sc := range sinks {
		if !sc.Enabled {
			continue
		}
		s, kind, err := openSink(sc)
		if err != nil {
			return fmt.Errorf("sink %q: %w", name, err)
		}
		switch v := s.(type) {
		case sink.SQLSink:
			router.RegisterSQL(name, sc.Classes, v)
		case sink.KVSink:
			router.RegisterKV(name, sc.Classes, v)
		case sink.SearchSink:
			router.RegisterSearch(name, sc.Classes, v)
			if ndpSearchSink == nil {
				ndpSearchSink = v
			}
		case sink.LineSink:
			if isStatsOnly(sc.Classes) {
				router.RegisterStats(sink.LineStatsSink{Sink: v})
				continue
			}
			router.RegisterLine(name, kind, sc.Classes, v)
		}
	}

	ndpCfg := ndp.Config{
		Enable:                   cfg.Global.Ndp_Routing_Flow || cfg.Global.Ndp_Routing_Fileinfo || cfg.Global.Ndp_Routing_Tls || cfg.Global.Ndp_Routing_Dns || cfg.Global.Ndp_Routing_Ssh || cfg.Global.Ndp_Routing_Http || cfg.Global.Ndp_Routing_Smb || cfg.Global.Ndp_Routing_Ftp,
		RoutingFlow:              cfg.Global.Ndp_Routing_Flow,
		RoutingFileinfo:          cfg.Global.Ndp_Routing_Fileinfo,
		RoutingTLS:               cfg.Global.Ndp_Routing_Tls,
		RoutingDNS:               cfg.Global.Ndp_Routing_Dns,
		RoutingSSH:               cfg.Global.Ndp_Routing_Ssh,
		RoutingHTTP:              cfg.Global.Ndp_Routing_Http,
		RoutingSMB:               cfg.Global.Ndp_Routing_Smb,
		RoutingFTP:               cfg.Global.Ndp_Routing_Ftp,
		SMBInternal:              cfg.Global.Ndp_Smb_Internal,
		Debug:                    cfg.Global.Ndp_Debug,
		Description:              cfg.Global.Description,
		RequireBothExternal:      cfg.Global.Ndp_Require_Both_External,
		TLSClientSoftwareVersion: cfg.Global.Ndp_Tls_Client_Software_Version,
		SMBInterestingCommands:   toSet(cfg.Global.Smb_Interesting_Command),
		FTPInterestingCommands:   toSet(cfg.Global.Ftp_Interesting_Command),
	}
	if ndpSearchSink == nil {
		// the collector has nowhere to emit without a search sink
		ndpCfg.Enable = false
	}
	collector := ndp.New(ndpCfg, ndpIgnore, ndpSearchSink, cnt, baseLg)

	p := pipeline.New(decoder, collector, router, cnt, cfg.Global.Fingerprint, cfg.Global.Client_Stats, baseLg)
	defer router.Close()

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		cp := append([]byte(nil), line...)
		p.Process(ctx, cp, baseLg)
	}
	if err := scanner.Err(); err != nil {
		lg.Error("input scan failed", log.KVErr(err))
		return err
	}
	lg.Info("shutting down", log.KV(`accepted`, cnt.Snapshot()))
	return nil
}

func openCorrelationStore(cfg *config.Config) (correlate.Store, error) {
	switch cfg.Global.Correlation_Store {
	case `redis`:
		return correlate.OpenRedis(cfg.Global.Correlation_Dsn, ``, 0), nil
	case `bbolt`, ``:
		return correlate.OpenBBolt(cfg.Global.Correlation_Dsn)
	default:
		return nil, fmt.Errorf("unknown correlation store kind %q", cfg.Global.Correlation_Store)
	}
}

// openSink opens the live backend handle for one enabled [Sink "name"]
// section, returning the Go interface value the router registers it
// under and the raw kind string (needed for LineSink, which has three
// distinct concrete kinds).
func openSink(sc *config.SinkConfig) (interface{}, string, error) {
	switch sc.Kind {
	case sink.KindSQL:
		s, err := sink.OpenPgxAlertSink(context.Background(), sc.Dsn, ``)
		return s, sc.Kind, err
	case sink.KindKV:
		return sink.OpenRedisKVSink(sc.Dsn, ``, 0, `sentrybridge`), sc.Kind, nil
	case sink.KindSearch:
		s, err := sink.OpenElasticSearchSink([]string{sc.Dsn})
		return s, sc.Kind, err
	case sink.KindPipe:
		s, err := sink.NewPipeSink(sc.Dsn)
		return s, sc.Kind, err
	case sink.KindFile:
		s, err := sink.NewFileSink(sc.Dsn)
		return s, sc.Kind, err
	case sink.KindExec:
		return sink.NewExecSink(sc.Dsn), sc.Kind, nil
	default:
		return nil, ``, fmt.Errorf("unknown sink kind %q", sc.Kind)
	}
}

// isStatsOnly reports whether a sink section is restricted to exactly
// the stats class, in which case it is wired as the dedicated stats
// sink rather than through the generic per-class fan-out.
func isStatsOnly(classes []string) bool {
	return len(classes) == 1 && classes[0] == route.ClassStats
}

func toSet(vals []string) map[string]struct{} {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return m
}
