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
)

// FileSink appends one line per event to a flat file.
type FileSink struct {
	mtx sync.Mutex
	f   *os.File
}

func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening sink file %s: %w", path, err)
	}
	return &FileSink{f: f}, nil
}

func (s *FileSink) WriteLine(_ context.Context, line []byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if _, err := s.f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing to sink file: %w", err)
	}
	return nil
}

func (s *FileSink) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.f.Close()
}
