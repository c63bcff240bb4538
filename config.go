// Copyright (c) 2025–2026 The aq6315 developers. All rights reserved.
// Project site: https://github.com/osalab/aq6315
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package aq6315

import (
	"fmt"
	"sort"
)

// Sensitivity selects one of the AQ6315E measurement sensitivity modes. The
// values are the literal command mnemonics the instrument expects.
type Sensitivity string

// Sensitivity modes, in increasing order of sweep time.
const (
	SensNormalHold Sensitivity = "SNHD"
	SensNormalAuto Sensitivity = "SNAT"
	SensHigh1      Sensitivity = "SHI1"
	SensHigh2      Sensitivity = "SHI2"
	SensHigh3      Sensitivity = "SHI3"
)

func (s Sensitivity) valid() bool {
	switch s {
	case SensNormalHold, SensNormalAuto, SensHigh1, SensHigh2, SensHigh3:
		return true
	}
	return false
}

// resolutionCmds maps the discrete resolution bandwidths the instrument
// supports, in nm, to their setup commands.
var resolutionCmds = map[float64]string{
	0.05: "RESLN0.05",
	0.1:  "RESLN0.10",
	0.2:  "RESLN0.20",
	0.5:  "RESLN0.50",
	1.0:  "RESLN1.00",
	2.0:  "RESLN2.00",
	5.0:  "RESLN5.00",
}

// SupportedResolutions returns the resolution bandwidths, in nm, that the
// instrument accepts, in increasing order.
func SupportedResolutions() []float64 {
	rs := make([]float64, 0, len(resolutionCmds))
	for r := range resolutionCmds {
		rs = append(rs, r)
	}
	sort.Float64s(rs)
	return rs
}

// Config describes one acquisition: the wavelength span to cover, the width
// of each sub-range sweep, and the instrument settings applied before the
// first sweep. Wavelengths and step are in nm.
type Config struct {
	StartWavelength float64 `yaml:"start"`
	StopWavelength  float64 `yaml:"stop"`
	StepSize        float64 `yaml:"step"`

	Resolution     float64     `yaml:"resolution"`
	AveragingCount int         `yaml:"averaging"`
	Sensitivity    Sensitivity `yaml:"sensitivity"`

	// AutoReference selects automatic reference-level tracking. When false,
	// ReferenceLevel (nW) is programmed instead.
	AutoReference  bool    `yaml:"auto_reference"`
	ReferenceLevel float64 `yaml:"reference_level_nw"`
}

// Validate reports the first problem with the configuration. A nil return
// means Setup will not reject it and Scan has a nonempty span to cover.
func (c Config) Validate() error {
	if c.StartWavelength >= c.StopWavelength {
		return fmt.Errorf(
			"start wavelength %g nm must be below stop wavelength %g nm",
			c.StartWavelength, c.StopWavelength,
		)
	}
	if c.StepSize <= 0 {
		return fmt.Errorf("step size %g nm must be positive", c.StepSize)
	}
	if _, ok := resolutionCmds[c.Resolution]; !ok {
		return UnsupportedResolutionError{Resolution: c.Resolution}
	}
	if c.AveragingCount < 1 {
		return fmt.Errorf("averaging count %d must be at least 1", c.AveragingCount)
	}
	if !c.Sensitivity.valid() {
		return fmt.Errorf("unknown sensitivity mode %q", string(c.Sensitivity))
	}
	return nil
}

// ReferenceDesc describes the reference-level setting for run logs and file
// headers, e.g. "AUTO" or "12.00 nW".
func (c Config) ReferenceDesc() string {
	if c.AutoReference {
		return "AUTO"
	}
	return fmt.Sprintf("%.2f nW", c.ReferenceLevel)
}
