// Copyright (c) 2025–2026 The aq6315 developers. All rights reserved.
// Project site: https://github.com/osalab/aq6315
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package aq6315

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	mutate := func(f func(*Config)) Config {
		cfg := testConfig()
		f(&cfg)
		return cfg
	}

	cases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", testConfig(), ""},
		{
			"inverted span",
			mutate(func(c *Config) { c.StartWavelength, c.StopWavelength = 1625, 1525 }),
			"must be below",
		},
		{
			"zero width span",
			mutate(func(c *Config) { c.StopWavelength = c.StartWavelength }),
			"must be below",
		},
		{
			"zero step",
			mutate(func(c *Config) { c.StepSize = 0 }),
			"must be positive",
		},
		{
			"negative step",
			mutate(func(c *Config) { c.StepSize = -1 }),
			"must be positive",
		},
		{
			"zero averaging",
			mutate(func(c *Config) { c.AveragingCount = 0 }),
			"at least 1",
		},
		{
			"bogus sensitivity",
			mutate(func(c *Config) { c.Sensitivity = "TURBO" }),
			"sensitivity",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestConfigValidateResolution(t *testing.T) {
	for _, r := range SupportedResolutions() {
		cfg := testConfig()
		cfg.Resolution = r
		assert.NoError(t, cfg.Validate(), "resolution %g", r)
	}

	cfg := testConfig()
	cfg.Resolution = 0.25
	var ure UnsupportedResolutionError
	require.ErrorAs(t, cfg.Validate(), &ure)
	assert.Equal(t, 0.25, ure.Resolution)
}

func TestReferenceDesc(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, "AUTO", cfg.ReferenceDesc())

	cfg.AutoReference = false
	cfg.ReferenceLevel = 12
	assert.Equal(t, "12.00 nW", cfg.ReferenceDesc())
}
