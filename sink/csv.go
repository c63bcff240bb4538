// Copyright (c) 2025–2026 The aq6315 developers. All rights reserved.
// Project site: https://github.com/osalab/aq6315
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package sink

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/osalab/aq6315"
)

// writeCSV emits the commented header block followed by the two-column data
// table. The data tokens are written exactly as the instrument sent them.
func writeCSV(w io.Writer, cfg aq6315.Config, tr aq6315.Trace, now time.Time) error {
	cw := csv.NewWriter(w)

	header := []string{
		"# AQ6315E Spectrum Data",
		fmt.Sprintf("# Timestamp: %s", now.Format("2006-01-02 15:04:05")),
		fmt.Sprintf("# Start: %g nm", cfg.StartWavelength),
		fmt.Sprintf("# Stop: %g nm", cfg.StopWavelength),
		fmt.Sprintf("# Step size: %g nm", cfg.StepSize),
		fmt.Sprintf("# Resolution: %g nm", cfg.Resolution),
		fmt.Sprintf("# Averaging count: %d", cfg.AveragingCount),
		fmt.Sprintf("# Sensitivity: %s", cfg.Sensitivity),
		fmt.Sprintf("# Reference level: %s", cfg.ReferenceDesc()),
		"# Scale: Linear",
		"# Units: μW/nm",
	}
	for _, line := range header {
		if err := cw.Write([]string{line}); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"Wavelength (nm)", "Level (μW/nm)"}); err != nil {
		return err
	}

	for i := range tr.Wavelengths {
		if err := cw.Write([]string{tr.Wavelengths[i], tr.Levels[i]}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
