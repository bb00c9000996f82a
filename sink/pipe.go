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
	"fmt"
	"os"
	"sync"
	"syscall"
)

// PipeSink writes one line per event to a named pipe, creating it with
// mkfifo if it does not already exist. Opening blocks until a reader
// attaches, matching the usual named-pipe contract; Open therefore
// happens lazily on first write rather than at construction.
type PipeSink struct {
	path string
	mtx  sync.Mutex
	f    *os.File
}

func NewPipeSink(path string) (*PipeSink, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := syscall.Mkfifo(path, 0600); err != nil {
			return nil, fmt.Errorf("creating named pipe %s: %w", path, err)
		}
	}
	return &PipeSink{path: path}, nil
}

func (s *PipeSink) WriteLine(_ context.Context, line []byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.f == nil {
		f, err := os.OpenFile(s.path, os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("opening named pipe %s: %w", s.path, err)
		}
		s.f = f
	}
	if _, err := s.f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing to named pipe %s: %w", s.path, err)
	}
	return nil
}

func (s *PipeSink) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.f == nil {
		return nil
	}
	return s.f.Close()
}
