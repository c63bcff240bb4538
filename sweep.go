// Copyright (c) 2025–2026 The aq6315 developers. All rights reserved.
// Project site: https://github.com/osalab/aq6315
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package aq6315

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gotmc/query"
)

// errSweepActive is the poll operation's retryable "register still busy"
// state. It never escapes sweepAndWait.
var errSweepActive = errors.New("sweep in progress")

// Scan covers [cfg.StartWavelength, cfg.StopWavelength] with sub-range sweeps
// no wider than cfg.StepSize and stitches the per-segment traces into one
// trace with strictly increasing wavelengths.
//
// Every segment's raw trace includes its right boundary sample, which the
// next segment reproduces as its first sample; for every segment but the
// last, that sample is dropped before stitching, after checking it agrees
// with the seam partner. The final segment may be narrower than StepSize and
// is never trimmed.
//
// A degenerate span (start >= stop) yields an empty trace without touching
// the instrument.
func (o *OSA) Scan(cfg Config) (Trace, error) {
	var (
		acc      Trace
		pending  string // wavelength token trimmed from the previous segment
		haveSeam bool
	)

	for cur := cfg.StartWavelength; cur < cfg.StopWavelength; cur += cfg.StepSize {
		stop := min(cur+cfg.StepSize, cfg.StopWavelength)

		if err := o.setWindow(cur, stop); err != nil {
			return Trace{}, err
		}
		if err := o.sweepAndWait(); err != nil {
			return Trace{}, err
		}
		seg, err := o.fetchTrace()
		if err != nil {
			return Trace{}, err
		}

		if haveSeam {
			if err := checkSeam(pending, seg.Wavelengths[0]); err != nil {
				return Trace{}, err
			}
			haveSeam = false
		}
		if stop < cfg.StopWavelength {
			pending = seg.trimLast()
			haveSeam = true
		}
		acc.append(seg)
		o.logf("segment %.2f–%.2f nm: %d samples (total %d)", cur, stop, seg.Len(), acc.Len())
	}

	return acc, nil
}

// setWindow restricts the instrument's active sweep span.
func (o *OSA) setWindow(start, stop float64) error {
	if err := o.link.Command("STAWL%.2f", start); err != nil {
		return fmt.Errorf("set start wavelength: %w", err)
	}
	if err := o.link.Command("STPWL%.2f", stop); err != nil {
		return fmt.Errorf("set stop wavelength: %w", err)
	}
	return nil
}

// sweepAndWait triggers a single sweep and blocks until the SWEEP? register
// reads idle, polling at the configured interval. The poll count is bounded;
// a sweep still busy after maxPolls reads fails with PollTimeoutError rather
// than hanging forever on a wedged instrument.
func (o *OSA) sweepAndWait() error {
	if err := o.link.Command("SGL"); err != nil {
		return fmt.Errorf("trigger sweep: %w", err)
	}

	op := func() error {
		status, err := query.Int(o.link, "SWEEP?")
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read sweep status: %w", err))
		}
		if status > 0 {
			return errSweepActive
		}
		return nil
	}
	b := backoff.WithMaxRetries(
		backoff.NewConstantBackOff(o.pollInterval),
		uint64(o.maxPolls),
	)
	err := backoff.Retry(op, b)
	if errors.Is(err, errSweepActive) {
		return PollTimeoutError{Attempts: o.maxPolls + 1, Interval: o.pollInterval}
	}
	return err
}

// traceNames are the instrument's trace buffers, indexed as ACTV? reports.
const traceNames = "ABC"

// fetchTrace reads the active trace buffer back as text tokens. The
// instrument is switched to digital transfer mode and given a settle pause
// before the wavelength and level registers are read out.
func (o *OSA) fetchTrace() (Trace, error) {
	idx, err := query.Int(o.link, "ACTV?")
	if err != nil {
		return Trace{}, fmt.Errorf("read active trace: %w", err)
	}
	if idx < 0 || idx >= len(traceNames) {
		return Trace{}, malformedf("active trace index %d out of range", idx)
	}
	name := traceNames[idx : idx+1]

	if err := o.link.Command("LDTDIG3"); err != nil {
		return Trace{}, fmt.Errorf("select digital transfer: %w", err)
	}
	if o.settleDelay > 0 {
		time.Sleep(o.settleDelay)
	}

	wresp, err := o.link.Query("WDAT" + name)
	if err != nil {
		return Trace{}, fmt.Errorf("read wavelength data: %w", err)
	}
	lresp, err := o.link.Query("LDAT" + name)
	if err != nil {
		return Trace{}, fmt.Errorf("read level data: %w", err)
	}

	wl, err := parseDataResponse(wresp)
	if err != nil {
		return Trace{}, err
	}
	lv, err := parseDataResponse(lresp)
	if err != nil {
		return Trace{}, err
	}
	if len(wl) != len(lv) {
		return Trace{}, malformedf("%d wavelengths but %d levels", len(wl), len(lv))
	}
	return Trace{Wavelengths: wl, Levels: lv}, nil
}

// checkSeam verifies that the boundary sample dropped from the previous
// segment names the same wavelength the next segment starts at. The tokens
// are compared as parsed values so formatting differences don't matter.
func checkSeam(dropped, first string) error {
	a, errA := parseWavelength(dropped)
	b, errB := parseWavelength(first)
	if errA != nil {
		return errA
	}
	if errB != nil {
		return errB
	}
	if a != b {
		return malformedf("segment seam mismatch: dropped %s nm, next segment starts at %s nm", dropped, first)
	}
	return nil
}

func parseWavelength(tok string) (float64, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, malformedf("seam wavelength %q is not numeric", tok)
	}
	return v, nil
}
