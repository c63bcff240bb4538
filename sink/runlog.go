// Copyright (c) 2025–2026 The aq6315 developers. All rights reserved.
// Project site: https://github.com/osalab/aq6315
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package sink

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// RunLog is the append-only, timestamped record of one acquisition run. It
// satisfies cmdlog.Eventer, so it can double as the audit sink for every
// instrument exchange.
type RunLog struct {
	f      *os.File
	logger zerolog.Logger
}

// OpenRunLog opens (appending) the run log inside dir.
func OpenRunLog(dir string) (*RunLog, error) {
	f, err := os.OpenFile(
		filepath.Join(dir, LogName),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY,
		0o644,
	)
	if err != nil {
		return nil, err
	}
	cw := zerolog.ConsoleWriter{
		Out:        f,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	return &RunLog{
		f:      f,
		logger: zerolog.New(cw).With().Timestamp().Logger(),
	}, nil
}

// Eventf records one milestone.
func (l *RunLog) Eventf(format string, a ...any) {
	l.logger.Info().Msgf(format, a...)
}

// Close flushes and closes the underlying file.
func (l *RunLog) Close() error {
	return l.f.Close()
}
