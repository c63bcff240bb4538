// Copyright (c) 2025–2026 The aq6315 developers. All rights reserved.
// Project site: https://github.com/osalab/aq6315
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package aq6315

import (
	"fmt"
	"time"
)

// UnsupportedResolutionError indicates the requested resolution bandwidth is
// not one of the discrete values the AQ6315E accepts.
type UnsupportedResolutionError struct {
	Resolution float64 // nm
}

func (e UnsupportedResolutionError) Error() string {
	return fmt.Sprintf(
		"unsupported resolution %g nm (supported: %v)",
		e.Resolution, SupportedResolutions(),
	)
}

// PollTimeoutError indicates the sweep-status register never returned to idle
// within the configured number of polls.
type PollTimeoutError struct {
	Attempts int
	Interval time.Duration
}

func (e PollTimeoutError) Error() string {
	return fmt.Sprintf(
		"sweep did not complete after %d status polls at %s intervals",
		e.Attempts, e.Interval,
	)
}

// MalformedTraceError indicates the instrument returned trace data that does
// not satisfy the digital-transfer format: mismatched wavelength/level
// lengths, a count prefix that disagrees with the payload, non-numeric
// tokens, or a segment seam whose boundary samples disagree.
type MalformedTraceError struct {
	Reason string
}

func (e MalformedTraceError) Error() string {
	return "malformed trace data: " + e.Reason
}

func malformedf(format string, a ...any) MalformedTraceError {
	return MalformedTraceError{Reason: fmt.Sprintf(format, a...)}
}
