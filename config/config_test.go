/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[Global]
Payload-Buffer-Size=4096
Fingerprint=true
Client-Stats=true
Description="edge sensor 1"
Ndp-Routing-Flow=true
Ndp-Routing-Dns=true
Ndp-Smb-Internal=false
Ndp-Debug=false
Fingerprint-Interest-Cidr=10.0.0.0/8
Fingerprint-Interest-Cidr=192.168.1.1
Ndp-Ignore-Cidr=127.0.0.0/8
Smb-Interesting-Command=write
Ftp-Interesting-Command=stor
Log-Level=INFO
Correlation-Store=bbolt
Correlation-Dsn=/var/lib/sentrybridge/correlate.db

[Sink "primary-sql"]
Kind=sql
Enabled=true
Dsn=postgres://localhost/sentrybridge

[Sink "alert-pipe"]
Kind=pipe
Enabled=true
Dsn=/var/run/sentrybridge/alerts.fifo
Classes=alert

[Classification "trojan-activity"]
Description="A Network Trojan was Detected"
`

func TestLoadConfigBytesAndVerify(t *testing.T) {
	var c Config
	require.NoError(t, LoadConfigBytes(&c, []byte(sampleConfig)))
	require.NoError(t, c.Verify())

	require.EqualValues(t, 4096, c.Global.Payload_Buffer_Size)
	require.True(t, c.Global.Fingerprint)
	require.True(t, c.Global.Client_Stats)
	require.Equal(t, `edge sensor 1`, c.Global.Description)
	require.ElementsMatch(t, []string{`10.0.0.0/8`, `192.168.1.1`}, c.Global.Fingerprint_Interest_Cidr)
	require.Equal(t, []string{`127.0.0.0/8`}, c.Global.Ndp_Ignore_Cidr)
	require.EqualValues(t, DefaultFingerprintIPExpire, c.Global.Fingerprint_Ip_Redis_Expire)
	require.EqualValues(t, DefaultFingerprintDHCPExpire, c.Global.Fingerprint_Dhcp_Redis_Expire)

	sinks, err := c.Sinks()
	require.NoError(t, err)
	require.Len(t, sinks, 2)
	require.Equal(t, `sql`, sinks[`primary-sql`].Kind)
	require.True(t, sinks[`primary-sql`].Enabled)
	require.Equal(t, []string{`alert`}, sinks[`alert-pipe`].Classes)

	classes, err := c.Classifications()
	require.NoError(t, err)
	require.Equal(t, `A Network Trojan was Detected`, classes[`trojan-activity`])
}

func TestVerifyRejectsBadCIDR(t *testing.T) {
	var c Config
	require.NoError(t, LoadConfigBytes(&c, []byte(`
[Global]
Fingerprint-Interest-Cidr=not-a-cidr
[Sink "x"]
Kind=sql
Enabled=true
Dsn=postgres://localhost/db
`)))
	require.ErrorIs(t, c.Verify(), ErrBadCIDR)
}

func TestVerifyRejectsNoSinksEnabled(t *testing.T) {
	var c Config
	require.NoError(t, LoadConfigBytes(&c, []byte(`
[Sink "x"]
Kind=sql
Enabled=false
Dsn=postgres://localhost/db
`)))
	require.ErrorIs(t, c.Verify(), ErrNoSinksEnabled)
}

func TestVerifyRejectsMissingDSN(t *testing.T) {
	var c Config
	require.NoError(t, LoadConfigBytes(&c, []byte(`
[Sink "x"]
Kind=sql
Enabled=true
`)))
	require.ErrorIs(t, c.Verify(), ErrMissingSinkDSN)
}

func TestVerifyAppliesCorrelationDsnAndFtpCommandEnvOverrides(t *testing.T) {
	t.Setenv(envCorrelationDsn, `redis://:secret@cache:6379/0`)
	t.Setenv(envFtpCommands, `RETR, STOR`)

	var c Config
	require.NoError(t, LoadConfigBytes(&c, []byte(`
[Sink "x"]
Kind=exec
Enabled=true
`)))
	require.NoError(t, c.Verify())
	require.Equal(t, `redis://:secret@cache:6379/0`, c.Global.Correlation_Dsn)
	require.Equal(t, []string{`RETR`, `STOR`}, c.Global.Ftp_Interesting_Command)
}

func TestVerifyAllowsExecSinkWithoutDSN(t *testing.T) {
	var c Config
	require.NoError(t, LoadConfigBytes(&c, []byte(`
[Sink "runner"]
Kind=exec
Enabled=true
`)))
	require.NoError(t, c.Verify())
}
