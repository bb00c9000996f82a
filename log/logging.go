/*************************************************************************
 * Copyright 2018 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package log provides the structured logger used by every component of
// the bridge. Records are RFC5424 syslog lines carrying key/value
// structured data, so a single log line can be grepped or machine
// parsed without a JSON log shipper in the loop.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/crewjam/rfc5424"
)

const (
	DEBUG    Level = 1
	INFO     Level = 2
	WARN     Level = 3
	ERROR    Level = 4
	CRITICAL Level = 5
	FATAL    Level = 6
)

const defaultAppname = `sentrybridge`

var ErrInvalidLevel = errors.New("invalid log level")

type Level int

func (l Level) String() string {
	switch l {
	case DEBUG:
		return `DEBUG`
	case INFO:
		return `INFO`
	case WARN:
		return `WARN`
	case ERROR:
		return `ERROR`
	case CRITICAL:
		return `CRITICAL`
	case FATAL:
		return `FATAL`
	}
	return `UNKNOWN`
}

func (l Level) priority() rfc5424.Priority {
	switch l {
	case DEBUG:
		return rfc5424.Debug
	case INFO:
		return rfc5424.Info
	case WARN:
		return rfc5424.Warning
	case ERROR:
		return rfc5424.Error
	case CRITICAL:
		return rfc5424.Crit
	case FATAL:
		return rfc5424.Emergency
	}
	return rfc5424.Info
}

func LevelFromString(s string) (Level, error) {
	switch s {
	case `DEBUG`:
		return DEBUG, nil
	case `INFO`:
		return INFO, nil
	case `WARN`:
		return WARN, nil
	case `ERROR`:
		return ERROR, nil
	case `CRITICAL`:
		return CRITICAL, nil
	case `FATAL`, `OFF`:
		return FATAL, nil
	}
	return 0, ErrInvalidLevel
}

// Logger is a minimal, concurrency-safe structured logger. It carries a
// single output writer and no relay fan-out; the bridge has no remote
// log shipping collaborator.
type Logger struct {
	mtx      sync.Mutex
	wtr      io.Writer
	lvl      Level
	appname  string
	hostname string
}

// New builds a Logger that writes to wtr. Callers typically pass
// os.Stderr in production and a bytes.Buffer in tests.
func New(wtr io.Writer) *Logger {
	host, _ := os.Hostname()
	return &Logger{
		wtr:      wtr,
		lvl:      INFO,
		appname:  defaultAppname,
		hostname: host,
	}
}

// NewDiscardLogger returns a Logger that drops everything; used by
// callers (tests, library embedders) that don't care about log output.
func NewDiscardLogger() *Logger {
	return New(io.Discard)
}

func (l *Logger) SetAppname(name string) {
	if name != `` {
		l.appname = name
	}
}

func (l *Logger) SetLevel(lvl Level) error {
	if lvl < DEBUG || lvl > FATAL {
		return ErrInvalidLevel
	}
	l.lvl = lvl
	return nil
}

func (l *Logger) SetLevelString(s string) error {
	lvl, err := LevelFromString(s)
	if err != nil {
		return err
	}
	return l.SetLevel(lvl)
}

func (l *Logger) GetLevel() Level {
	return l.lvl
}

func (l *Logger) Debug(msg string, sds ...rfc5424.SDParam) { l.output(DEBUG, msg, sds...) }
func (l *Logger) Info(msg string, sds ...rfc5424.SDParam)  { l.output(INFO, msg, sds...) }
func (l *Logger) Warn(msg string, sds ...rfc5424.SDParam)  { l.output(WARN, msg, sds...) }
func (l *Logger) Error(msg string, sds ...rfc5424.SDParam) { l.output(ERROR, msg, sds...) }
func (l *Logger) Critical(msg string, sds ...rfc5424.SDParam) {
	l.output(CRITICAL, msg, sds...)
}

// Fatal logs at FATAL and terminates the process. Reserved for the
// allocation-failure posture: anything that would otherwise mask a
// sizing bug in the configured payload buffer.
func (l *Logger) Fatal(msg string, sds ...rfc5424.SDParam) {
	l.output(FATAL, msg, sds...)
	os.Exit(1)
}

func (l *Logger) output(lvl Level, msg string, sds ...rfc5424.SDParam) {
	if lvl < l.lvl {
		return
	}
	ts := time.Now().UTC()
	m := rfc5424.Message{
		Priority:  lvl.priority(),
		Timestamp: ts,
		Hostname:  l.hostname,
		AppName:   l.appname,
		ProcessID: fmt.Sprintf("%d", os.Getpid()),
		Message:   []byte(msg),
	}
	if len(sds) > 0 {
		m.StructuredData = []rfc5424.StructuredData{{
			ID:     `kv@1`,
			Params: sds,
		}}
	}
	b, err := m.MarshalBinary()
	if err != nil {
		return
	}
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.wtr.Write(b)
	l.wtr.Write([]byte("\n"))
}
