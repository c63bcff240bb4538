// Copyright (c) 2025–2026 The aq6315 developers. All rights reserved.
// Project site: https://github.com/osalab/aq6315
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package aq6315

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// windows extracts the [start, stop] pairs the engine programmed, in order.
func windows(t *testing.T, f *fakeInstrument) [][2]float64 {
	t.Helper()
	starts := f.commandsWithPrefix("STAWL")
	stops := f.commandsWithPrefix("STPWL")
	require.Equal(t, len(starts), len(stops))
	out := make([][2]float64, len(starts))
	for i := range starts {
		a, err := strconv.ParseFloat(starts[i][len("STAWL"):], 64)
		require.NoError(t, err)
		b, err := strconv.ParseFloat(stops[i][len("STPWL"):], 64)
		require.NoError(t, err)
		out[i] = [2]float64{a, b}
	}
	return out
}

func requireStrictlyIncreasing(t *testing.T, tr Trace) {
	t.Helper()
	pts, err := tr.Points()
	require.NoError(t, err)
	for i := 1; i < len(pts); i++ {
		require.Greater(t, pts[i].Wavelength, pts[i-1].Wavelength,
			"wavelength order violated at sample %d", i)
	}
}

func TestScanTilesFullSpan(t *testing.T) {
	f := &fakeInstrument{}
	osa := testOSA(f)

	cfg := testConfig() // 1525–1625 nm, step 5
	tr, err := osa.Scan(cfg)
	require.NoError(t, err)

	w := windows(t, f)
	require.Len(t, w, 20, "ceil((1625-1525)/5) segments")

	// Windows tile the span: no gaps, no window wider than the step.
	assert.Equal(t, cfg.StartWavelength, w[0][0])
	assert.Equal(t, cfg.StopWavelength, w[len(w)-1][1])
	for i, win := range w {
		assert.LessOrEqual(t, win[1]-win[0], cfg.StepSize)
		if i > 0 {
			assert.Equal(t, w[i-1][1], win[0], "gap before window %d", i)
		}
	}

	// 19 trimmed segments and one untrimmed.
	assert.Equal(t, 20*samplesPerSegment-19, tr.Len())
	assert.Equal(t, "1525.00", tr.Wavelengths[0])
	assert.Equal(t, "1625.00", tr.Wavelengths[tr.Len()-1])
	requireStrictlyIncreasing(t, tr)
}

func TestScanRemainderSegment(t *testing.T) {
	f := &fakeInstrument{}
	osa := testOSA(f)

	cfg := testConfig()
	cfg.StopWavelength = 1540
	cfg.StepSize = 7

	tr, err := osa.Scan(cfg)
	require.NoError(t, err)

	assert.Equal(t, [][2]float64{
		{1525, 1532},
		{1532, 1539},
		{1539, 1540},
	}, windows(t, f))

	// Two trimmed full-width segments plus the width-1 remainder.
	assert.Equal(t, 3*samplesPerSegment-2, tr.Len())
	assert.Equal(t, "1540.00", tr.Wavelengths[tr.Len()-1])
	requireStrictlyIncreasing(t, tr)
}

func TestScanSingleSegmentNoTrim(t *testing.T) {
	f := &fakeInstrument{}
	osa := testOSA(f)

	cfg := testConfig()
	cfg.StopWavelength = 1530
	cfg.StepSize = 50 // wider than the span

	tr, err := osa.Scan(cfg)
	require.NoError(t, err)
	require.Len(t, windows(t, f), 1)
	assert.Equal(t, [2]float64{1525, 1530}, windows(t, f)[0])
	assert.Equal(t, samplesPerSegment, tr.Len(), "single segment is never trimmed")
	assert.Equal(t, "1530.00", tr.Wavelengths[tr.Len()-1])
}

func TestScanDegenerateSpan(t *testing.T) {
	for name, cfg := range map[string]Config{
		"equal":    {StartWavelength: 1550, StopWavelength: 1550, StepSize: 5},
		"inverted": {StartWavelength: 1600, StopWavelength: 1550, StepSize: 5},
	} {
		t.Run(name, func(t *testing.T) {
			f := &fakeInstrument{}
			osa := testOSA(f)

			tr, err := osa.Scan(cfg)
			require.NoError(t, err)
			assert.Zero(t, tr.Len())
			assert.Empty(t, f.commands, "no instrument traffic for an empty span")
			assert.Empty(t, f.queries)
		})
	}
}

func TestSweepPollCount(t *testing.T) {
	const busy = 7
	f := &fakeInstrument{busyPerSGL: busy}
	osa := testOSA(f)

	cfg := testConfig()
	cfg.StopWavelength = 1530 // one segment, one sweep

	_, err := osa.Scan(cfg)
	require.NoError(t, err)
	assert.Equal(t, busy+1, f.queryCount("SWEEP?"),
		"N busy responses then idle take exactly N+1 polls")
}

func TestSweepPollTimeout(t *testing.T) {
	f := &fakeInstrument{busyPerSGL: 1 << 20}
	osa := New(f,
		WithPollInterval(0),
		WithMaxPolls(3),
		WithSettleDelay(0),
		WithLogf(func(string, ...any) {}),
	)

	cfg := testConfig()
	cfg.StopWavelength = 1530

	_, err := osa.Scan(cfg)
	var pte PollTimeoutError
	require.ErrorAs(t, err, &pte)
	assert.Equal(t, 4, pte.Attempts)
	assert.Equal(t, 4, f.queryCount("SWEEP?"))
}

func TestScanSeamMismatch(t *testing.T) {
	f := &fakeInstrument{skewSeams: 0.25}
	osa := testOSA(f)

	_, err := osa.Scan(testConfig())
	var mte MalformedTraceError
	require.ErrorAs(t, err, &mte)
	assert.Contains(t, mte.Reason, "seam")
}

func TestFetchRejectsBadTraceIndex(t *testing.T) {
	f := &fakeInstrument{
		queryOverride: func(cmd string) (string, bool) {
			if cmd == "ACTV?" {
				return "7", true
			}
			return "", false
		},
	}
	osa := testOSA(f)

	_, err := osa.Scan(testConfig())
	var mte MalformedTraceError
	require.ErrorAs(t, err, &mte)
	assert.Contains(t, mte.Reason, "out of range")
}

func TestFetchRejectsLengthMismatch(t *testing.T) {
	f := &fakeInstrument{
		queryOverride: func(cmd string) (string, bool) {
			if cmd == "LDATA" {
				return "2,0.0010,0.0020", true
			}
			return "", false
		},
	}
	osa := testOSA(f)

	_, err := osa.Scan(testConfig())
	var mte MalformedTraceError
	require.ErrorAs(t, err, &mte)
	assert.Contains(t, mte.Reason, "wavelengths but")
}

func TestFetchRejectsCountMismatch(t *testing.T) {
	f := &fakeInstrument{
		queryOverride: func(cmd string) (string, bool) {
			if cmd == "WDATA" {
				return "5,1525.00,1526.00", true
			}
			return "", false
		},
	}
	osa := testOSA(f)

	_, err := osa.Scan(testConfig())
	var mte MalformedTraceError
	require.ErrorAs(t, err, &mte)
	assert.Contains(t, mte.Reason, "count prefix")
}
