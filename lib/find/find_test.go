// Copyright (c) 2025–2026 The aq6315 developers. All rights reserved.
// Project site: https://github.com/osalab/aq6315
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package find

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrologixFilter(t *testing.T) {
	assert.True(t, PrologixFilter(&Usbtty{Prod: "Prologix GPIB-USB Controller"}))
	assert.False(t, PrologixFilter(&Usbtty{Prod: "Arduino Uno"}))
}

func TestSerialFilter(t *testing.T) {
	f := SerialFilter("A603UX94")
	assert.True(t, f(&Usbtty{Serial: "A603UX94"}))
	assert.False(t, f(&Usbtty{Serial: "other"}))
}

func TestUsbttyString(t *testing.T) {
	ut := Usbtty{Dev: "ttyUSB0", IDp: "6001", IDv: "0403", Mfg: "FTDI", Prod: "Prologix GPIB-USB Controller", Serial: "A603UX94"}
	s := ut.String()
	assert.Contains(t, s, "ttyUSB0")
	assert.Contains(t, s, "Prologix")
}
