// Copyright (c) 2025–2026 The aq6315 developers. All rights reserved.
// Project site: https://github.com/osalab/aq6315
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package aq6315

import (
	"strconv"
	"strings"
)

// Trace holds acquired spectrum data as two parallel sequences of text
// tokens, ordered by increasing wavelength. The tokens are kept exactly as
// the instrument sent them (whitespace-trimmed); parsing to numeric values is
// deferred to Points or to whatever persists the trace.
type Trace struct {
	Wavelengths []string
	Levels      []string
}

// Len returns the number of samples in the trace.
func (t Trace) Len() int { return len(t.Wavelengths) }

// Point is one parsed spectrum sample.
type Point struct {
	Wavelength float64 // nm
	Level      float64 // μW/nm
}

// Points parses the trace into numeric samples.
func (t Trace) Points() ([]Point, error) {
	if len(t.Wavelengths) != len(t.Levels) {
		return nil, malformedf(
			"%d wavelengths but %d levels", len(t.Wavelengths), len(t.Levels),
		)
	}
	pts := make([]Point, len(t.Wavelengths))
	for i := range t.Wavelengths {
		w, err := strconv.ParseFloat(t.Wavelengths[i], 64)
		if err != nil {
			return nil, malformedf("wavelength %q is not numeric", t.Wavelengths[i])
		}
		l, err := strconv.ParseFloat(t.Levels[i], 64)
		if err != nil {
			return nil, malformedf("level %q is not numeric", t.Levels[i])
		}
		pts[i] = Point{Wavelength: w, Level: l}
	}
	return pts, nil
}

// append extends the trace with another, already-trimmed, trace.
func (t *Trace) append(seg Trace) {
	t.Wavelengths = append(t.Wavelengths, seg.Wavelengths...)
	t.Levels = append(t.Levels, seg.Levels...)
}

// trimLast drops the final sample and returns its wavelength token. Callers
// guarantee the trace is nonempty.
func (t *Trace) trimLast() string {
	last := t.Wavelengths[len(t.Wavelengths)-1]
	t.Wavelengths = t.Wavelengths[:len(t.Wavelengths)-1]
	t.Levels = t.Levels[:len(t.Levels)-1]
	return last
}

// parseDataResponse splits one WDAT/LDAT response into data tokens. The first
// comma-separated field is the sample count the instrument prepends; it is
// checked against the payload and then discarded.
func parseDataResponse(resp string) ([]string, error) {
	fields := strings.Split(strings.TrimSpace(resp), ",")
	if len(fields) < 2 {
		return nil, malformedf("response %q has no data fields", resp)
	}
	count, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return nil, malformedf("count prefix %q is not an integer", fields[0])
	}
	tokens := fields[1:]
	if count != len(tokens) {
		return nil, malformedf("count prefix %d but %d data fields", count, len(tokens))
	}
	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if _, err := strconv.ParseFloat(tok, 64); err != nil {
			return nil, malformedf("data field %q is not numeric", tok)
		}
		tokens[i] = tok
	}
	return tokens, nil
}
