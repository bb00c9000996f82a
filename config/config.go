/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package config loads the ini-style configuration document via
// github.com/gravwell/gcfg, using an exported-field-with-underscores
// convention so that gcfg's name mapper can translate
// "Payload_Buffer_Size" to the ini key "payload-buffer-size". Per-sink
// and per-classification sections are free-form and are
// captured as VariableConfig blobs, then mapped into typed structs by
// reflection the same way preprocessor sections are handled.
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

const (
	defaultLogLevel = `ERROR`

	// DefaultFingerprintIPExpire and DefaultFingerprintDHCPExpire are
	// the TTLs (seconds) applied to correlation store writes when the
	// config omits FINGERPRINT_IP_REDIS_EXPIRE / FINGERPRINT_DHCP_REDIS_EXPIRE.
	DefaultFingerprintIPExpire   = 3600
	DefaultFingerprintDHCPExpire = 86400

	envLogLevel       string = `SENTRYBRIDGE_LOG_LEVEL`
	envCorrelationDsn string = `SENTRYBRIDGE_CORRELATION_DSN`
	envFtpCommands    string = `SENTRYBRIDGE_FTP_INTERESTING_COMMAND`
)

var (
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrNoSinksEnabled   = errors.New("no sinks enabled")
	ErrBadCIDR          = errors.New("invalid CIDR entry in configuration")
	ErrUnknownSinkKind  = errors.New("unknown sink kind")
	ErrMissingSinkDSN   = errors.New("sink enabled but missing a connection target")
)

// Global holds the top level [Global] section: pipeline-wide tunables,
// routing flags, and the CIDR/command lists that gate enrichment.
type Global struct {
	Payload_Buffer_Size uint64 // bytes; 0 means "use the built in default"
	Fingerprint         bool
	Client_Stats        bool
	Description         string // free text, included verbatim in NDP records

	Ndp_Routing_Flow     bool
	Ndp_Routing_Fileinfo bool
	Ndp_Routing_Tls      bool
	Ndp_Routing_Dns      bool
	Ndp_Routing_Ssh      bool
	Ndp_Routing_Http     bool
	Ndp_Routing_Smb      bool
	Ndp_Routing_Ftp      bool
	Ndp_Smb_Internal     bool
	Ndp_Debug            bool

	// Ndp_Require_Both_External switches the external-candidate rule
	// from "either src or dest outside the ignore set" (the default,
	// preserving observed behaviour) to "both src and dest outside the
	// ignore set".
	Ndp_Require_Both_External bool

	// Ndp_Tls_Client_Software_Version reads server.software_version
	// from the TLS client subobject instead of the server subobject,
	// for compatibility with sensors emitting the older layout.
	Ndp_Tls_Client_Software_Version bool

	Fingerprint_Interest_Cidr []string
	Ndp_Ignore_Cidr           []string

	Smb_Interesting_Command []string
	Ftp_Interesting_Command []string

	Fingerprint_Ip_Redis_Expire   int64 // seconds
	Fingerprint_Dhcp_Redis_Expire int64 // seconds

	Log_Level string
	Log_File  string

	Correlation_Store string // "bbolt" or "redis"
	Correlation_Dsn   string // bbolt file path, or redis address
}

// SinkConfig is one `[Sink "name"]` section: a named, independently
// enableable fan-out target plus the per-class allow list that governs
// which event classes it receives.
type SinkConfig struct {
	Kind    string // sql, kv, search, pipe, file, exec
	Enabled bool
	Dsn     string

	// Classes restricts the sink to the listed event classes; empty
	// means "all classes".
	Classes []string
}

// ClassificationConfig is one `[Classification "token"]` section,
// resolving a classtype token to a human readable description.
type ClassificationConfig struct {
	Description string
}

// Config is the fully decoded configuration document.
type Config struct {
	Global         Global
	Sink           map[string]*VariableConfig
	Classification map[string]*VariableConfig
}

// Load reads and decodes the config file at path, then runs Verify.
func Load(path string) (*Config, error) {
	c := &Config{}
	if err := LoadConfigFile(c, path); err != nil {
		return nil, err
	}
	if err := c.Verify(); err != nil {
		return nil, err
	}
	return c, nil
}

// Verify normalizes defaults and validates the decoded configuration:
// load any environment overrides, then reject anything structurally
// invalid before the pipeline starts.
func (c *Config) Verify() error {
	if err := LoadEnvVar(&c.Global.Log_Level, envLogLevel, defaultLogLevel); err != nil {
		return err
	}
	// Correlation_Dsn carries the store address (a bbolt file path or a
	// redis host:port; no password is parsed out of it); allow it (or a
	// path to a file holding it) to be supplied out of band instead of
	// committed to the config file.
	if err := LoadEnvVar(&c.Global.Correlation_Dsn, envCorrelationDsn, ``); err != nil {
		return err
	}
	if err := LoadEnvVar(&c.Global.Ftp_Interesting_Command, envFtpCommands, nil); err != nil {
		return err
	}
	c.Global.Log_Level = strings.ToUpper(strings.TrimSpace(c.Global.Log_Level))
	if c.Global.Log_Level == `` {
		c.Global.Log_Level = defaultLogLevel
	}
	switch c.Global.Log_Level {
	case `DEBUG`, `INFO`, `WARN`, `ERROR`, `CRITICAL`, `FATAL`:
	default:
		return ErrInvalidLogLevel
	}

	if c.Global.Fingerprint_Ip_Redis_Expire <= 0 {
		c.Global.Fingerprint_Ip_Redis_Expire = DefaultFingerprintIPExpire
	}
	if c.Global.Fingerprint_Dhcp_Redis_Expire <= 0 {
		c.Global.Fingerprint_Dhcp_Redis_Expire = DefaultFingerprintDHCPExpire
	}

	for _, c4 := range c.Global.Fingerprint_Interest_Cidr {
		if !validCIDROrIP(c4) {
			return fmt.Errorf("%w: %s", ErrBadCIDR, c4)
		}
	}
	for _, c7 := range c.Global.Ndp_Ignore_Cidr {
		if !validCIDROrIP(c7) {
			return fmt.Errorf("%w: %s", ErrBadCIDR, c7)
		}
	}

	sinks, err := c.Sinks()
	if err != nil {
		return err
	}
	var anyEnabled bool
	for name, sc := range sinks {
		if !sc.Enabled {
			continue
		}
		anyEnabled = true
		switch sc.Kind {
		case `sql`, `kv`, `search`, `pipe`, `file`, `exec`:
		default:
			return fmt.Errorf("sink %q: %w: %s", name, ErrUnknownSinkKind, sc.Kind)
		}
		if sc.Dsn == `` && sc.Kind != `exec` {
			return fmt.Errorf("sink %q: %w", name, ErrMissingSinkDSN)
		}
	}
	if !anyEnabled {
		return ErrNoSinksEnabled
	}
	return nil
}

func validCIDROrIP(v string) bool {
	if v == `` {
		return false
	}
	if _, _, err := net.ParseCIDR(v); err == nil {
		return true
	}
	return net.ParseIP(v) != nil
}

// Sinks decodes every configured [Sink "name"] section into a typed
// SinkConfig via VariableConfig.MapTo, the same mechanism preprocessor
// sections are mapped onto typed structs with.
func (c *Config) Sinks() (map[string]*SinkConfig, error) {
	out := make(map[string]*SinkConfig, len(c.Sink))
	for name, vc := range c.Sink {
		var sc SinkConfig
		if err := vc.MapTo(&sc); err != nil {
			return nil, fmt.Errorf("sink %q: %w", name, err)
		}
		out[name] = &sc
	}
	return out, nil
}

// Classifications decodes every [Classification "token"] section into
// a token -> description map consumed by the alert decoder.
func (c *Config) Classifications() (map[string]string, error) {
	out := make(map[string]string, len(c.Classification))
	for token, vc := range c.Classification {
		var cc ClassificationConfig
		if err := vc.MapTo(&cc); err != nil {
			return nil, fmt.Errorf("classification %q: %w", token, err)
		}
		out[token] = cc.Description
	}
	return out, nil
}
