// Copyright (c) 2025–2026 The aq6315 developers. All rights reserved.
// Project site: https://github.com/osalab/aq6315
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

/*
Package aq6315 drives an Ando AQ6315E optical spectrum analyzer over a GPIB
link. The instrument's trace buffer cannot hold an arbitrarily wide span in
one sweep, so acquisition covers [start, stop] as a sequence of sub-range
sweeps no wider than the configured step, stitched into a single trace with
the shared boundary sample at each seam kept exactly once.

A minimal run looks like:

	ctrl, cleanup, err := conn.Setup() // connutil, or any other Link
	defer cleanup()
	osa := aq6315.New(ctrl)
	err = osa.Run(cfg, sink.NewDir(dir, runLog))
*/
package aq6315

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Link is the command/response channel to the instrument. Command is
// fire-and-forget; Query writes a request and reads one delimited response.
// *gpib.Controller satisfies Link, as does the cmdlog audit wrapper. The
// Query half matches gotmc/query's Queryer, so its typed helpers work on any
// Link.
type Link interface {
	Command(format string, a ...any) error
	Query(cmd string) (string, error)
}

// Option configures an OSA.
type Option func(*OSA)

// WithPollInterval sets the delay between sweep-status polls.
func WithPollInterval(d time.Duration) Option {
	return func(o *OSA) { o.pollInterval = d }
}

// WithMaxPolls bounds the number of sweep-status polls per segment. When the
// register still reads busy after n polls, Scan fails with PollTimeoutError
// instead of hanging on an instrument that never finishes.
func WithMaxPolls(n int) Option {
	return func(o *OSA) { o.maxPolls = n }
}

// WithSettleDelay sets the pause between selecting digital transfer mode and
// reading trace data out.
func WithSettleDelay(d time.Duration) Option {
	return func(o *OSA) { o.settleDelay = d }
}

// WithLogf redirects progress messages. The default is log.Printf.
func WithLogf(f func(format string, a ...any)) Option {
	return func(o *OSA) { o.logf = f }
}

// OSA drives one AQ6315E through a Link. Methods issue commands strictly
// sequentially; the type is not safe for concurrent use, matching the single
// physical instrument behind it.
type OSA struct {
	link Link

	pollInterval time.Duration
	maxPolls     int
	settleDelay  time.Duration
	logf         func(format string, a ...any)
}

// Defaults for the sweep-completion poll and the digital-transfer settle
// pause. 1500 polls at 200 ms bounds a stuck sweep at five minutes.
const (
	DefaultPollInterval = 200 * time.Millisecond
	DefaultMaxPolls     = 1500
	DefaultSettleDelay  = 500 * time.Millisecond
)

// New returns an OSA speaking through link.
func New(link Link, opts ...Option) *OSA {
	o := &OSA{
		link:         link,
		pollInterval: DefaultPollInterval,
		maxPolls:     DefaultMaxPolls,
		settleDelay:  DefaultSettleDelay,
		logf:         log.Printf,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Identify queries *IDN? and returns the identification string with any
// non-printable bytes replaced, the way the instrument's occasionally noisy
// first response needs.
func (o *OSA) Identify() (string, error) {
	resp, err := o.link.Query("*IDN?")
	if err != nil {
		return "", fmt.Errorf("identification query: %w", err)
	}
	clean := strings.Map(func(r rune) rune {
		if r < 32 || r > 126 {
			return '.'
		}
		return r
	}, resp)
	return strings.Trim(clean, "."), nil
}

// Setup validates cfg and programs the instrument state shared by every
// segment: sensitivity, resolution bandwidth, averaging, linear scale in
// μW/nm, reference level, and trace A as the active output trace. Resolution
// is set before the settings that depend on it. Nothing is retried; the first
// link failure aborts and is returned.
func (o *OSA) Setup(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := o.link.Command(string(cfg.Sensitivity)); err != nil {
		return fmt.Errorf("set sensitivity: %w", err)
	}

	// Read the current resolution back before changing it, so the change
	// lands after the instrument has serviced its setting queue.
	if _, err := o.link.Query("RESLN?"); err != nil {
		return fmt.Errorf("read resolution: %w", err)
	}
	if err := o.link.Command(resolutionCmds[cfg.Resolution]); err != nil {
		return fmt.Errorf("set resolution: %w", err)
	}

	if err := o.link.Command("AVCNT %d", cfg.AveragingCount); err != nil {
		return fmt.Errorf("set averaging: %w", err)
	}
	if err := o.link.Command("LSCL 0"); err != nil { // linear scale
		return fmt.Errorf("set scale: %w", err)
	}
	if err := o.link.Command("LSUNT 2"); err != nil { // μW/nm
		return fmt.Errorf("set units: %w", err)
	}

	if cfg.AutoReference {
		if err := o.link.Command("REFLA"); err != nil {
			return fmt.Errorf("set auto reference: %w", err)
		}
	} else {
		if err := o.link.Command("REFLU%.2f", cfg.ReferenceLevel); err != nil {
			return fmt.Errorf("set reference level: %w", err)
		}
	}

	if err := o.link.Command("ACTTRC A"); err != nil {
		return fmt.Errorf("set active trace: %w", err)
	}

	o.logf("OSA configured: %g–%g nm, step %g nm, resolution %g nm, averaging %d, sensitivity %s, reference %s",
		cfg.StartWavelength, cfg.StopWavelength, cfg.StepSize,
		cfg.Resolution, cfg.AveragingCount, cfg.Sensitivity, cfg.ReferenceDesc())
	return nil
}

// Sink persists a completed acquisition. Implementations receive the trace
// exactly as stitched, wavelengths strictly increasing.
type Sink interface {
	Persist(cfg Config, tr Trace) error
}

// Run performs one full acquisition: Setup, Scan, then persist through s.
// Nothing is persisted unless the scan completed.
func (o *OSA) Run(cfg Config, s Sink) error {
	if err := o.Setup(cfg); err != nil {
		return err
	}
	tr, err := o.Scan(cfg)
	if err != nil {
		return err
	}
	return s.Persist(cfg, tr)
}
