// Copyright (c) 2025–2026 The aq6315 developers. All rights reserved.
// Project site: https://github.com/osalab/aq6315
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package sink persists completed acquisitions: a CSV table with an
// annotated header, a rendered line plot, and an append-only run log, all
// under a per-run output directory.
package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/osalab/aq6315"
)

// File names inside a run directory.
const (
	CSVName  = "osa_trace.csv"
	PlotName = "osa_plot.png"
	LogName  = "osa_run.log"
)

// Dir is a per-run output directory. It satisfies aq6315.Sink.
type Dir struct {
	Path string
	Log  *RunLog // optional; milestones are recorded here when present

	// now stands in for time.Now in tests.
	now func() time.Time
}

// NewDir returns a Dir rooted at path, logging milestones to log when it is
// non-nil.
func NewDir(path string, log *RunLog) Dir {
	return Dir{Path: path, Log: log, now: time.Now}
}

// Persist writes the trace as CSV and PNG. It is only called with fully
// stitched traces; nothing is written if parsing the trace fails.
func (d Dir) Persist(cfg aq6315.Config, tr aq6315.Trace) error {
	pts, err := tr.Points()
	if err != nil {
		return err
	}

	now := time.Now()
	if d.now != nil {
		now = d.now()
	}

	csvPath := filepath.Join(d.Path, CSVName)
	f, err := os.Create(csvPath)
	if err != nil {
		return err
	}
	if err := writeCSV(f, cfg, tr, now); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", csvPath, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	plotPath := filepath.Join(d.Path, PlotName)
	if err := savePlot(plotPath, pts); err != nil {
		return fmt.Errorf("writing %s: %w", plotPath, err)
	}

	d.eventf("data saved: %s, plot saved: %s", csvPath, plotPath)
	return nil
}

func (d Dir) eventf(format string, a ...any) {
	if d.Log != nil {
		d.Log.Eventf(format, a...)
	}
}

// NewRunDir creates and returns the next free YYYY-MM-DD/run_NNNN directory
// under base.
func NewRunDir(base string, now time.Time) (string, error) {
	day := filepath.Join(base, now.Format("2006-01-02"))
	if err := os.MkdirAll(day, 0o755); err != nil {
		return "", err
	}
	for i := 1; ; i++ {
		run := filepath.Join(day, fmt.Sprintf("run_%04d", i))
		err := os.Mkdir(run, 0o755)
		if err == nil {
			return run, nil
		}
		if !os.IsExist(err) {
			return "", err
		}
	}
}
