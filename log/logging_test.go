/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelGating(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	require.NoError(t, l.SetLevel(WARN))

	l.Info("should not appear")
	require.Zero(t, buf.Len())

	l.Warn("should appear", KV("k", "v"))
	require.Contains(t, buf.String(), "should appear")
	require.Contains(t, buf.String(), `k="v"`)
}

func TestLevelFromString(t *testing.T) {
	lvl, err := LevelFromString("ERROR")
	require.NoError(t, err)
	require.Equal(t, ERROR, lvl)

	_, err = LevelFromString("NOPE")
	require.ErrorIs(t, err, ErrInvalidLevel)
}

func TestKVLoggerAttachesFixedFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	kvl := NewLoggerWithKV(l, KV("component", "ndp"))
	kvl.Warn("dropped", KV("type", "tls"))

	line := buf.String()
	require.True(t, strings.Contains(line, `component="ndp"`))
	require.True(t, strings.Contains(line, `type="tls"`))
}

func TestDiscardLoggerNeverPanics(t *testing.T) {
	l := NewDiscardLogger()
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
}
