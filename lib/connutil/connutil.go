// Copyright (c) 2025–2026 The aq6315 developers. All rights reserved.
// Project site: https://github.com/osalab/aq6315
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package connutil owns the lifecycle of the GPIB link: flag registration,
// serial port setup, controller construction, and a cleanup function that
// releases the instrument and the port on every exit path.
package connutil

import (
	"flag"
	"log"
	"time"

	"go.bug.st/serial"
	"go.uber.org/multierr"

	"github.com/osalab/aq6315/gpib"
	"github.com/osalab/aq6315/lib/find"
)

// Conn holds the link parameters, populated from flags.
type Conn struct {
	SerialPort  string
	GpibPAD     int
	GpibSAD     int
	WriteDelay  time.Duration
	ReadTimeout time.Duration
	Debug       bool

	finderr error
}

// AddFlags registers the link flags. Call before flag.Parse. The default
// serial port is discovered by USB product string when possible.
func (c *Conn) AddFlags() {
	tty, err := find.Find(find.PrologixFilter)
	if err != nil {
		c.finderr = err
		tty = "ttyUSB0"
	}

	flag.StringVar(&c.SerialPort, "port", "/dev/"+tty,
		"serial port of the Prologix GPIB controller")
	flag.IntVar(&c.GpibPAD, "pad", 20, "GPIB primary address of the OSA")
	flag.IntVar(&c.GpibSAD, "sad", 0xff, "GPIB secondary address (255 = none)")
	flag.DurationVar(&c.WriteDelay, "delay", 100*time.Millisecond,
		"delay between writes to the adapter")
	flag.DurationVar(&c.ReadTimeout, "timeout", 10*time.Second,
		"link-level response timeout")
	flag.BoolVar(&c.Debug, "vlink", false, "log raw link traffic")
}

// Setup opens the serial port and builds the controller. Call after
// flag.Parse. The returned cleanup returns the instrument to front-panel
// control, drains the port, and closes it, reporting every failure.
func (c *Conn) Setup() (*gpib.Controller, func() error, error) {
	if c.finderr != nil && c.SerialPort == "/dev/ttyUSB0" {
		// Only worth mentioning when the guess wasn't overridden by -port.
		log.Printf("locating serial port failed, guessing %s: %s", c.SerialPort, c.finderr)
	}
	log.Printf("serial port = %s", c.SerialPort)

	port, err := serial.Open(c.SerialPort, &serial.Mode{BaudRate: 115200})
	if err != nil {
		return nil, nil, err
	}
	if err := port.SetReadTimeout(c.ReadTimeout); err != nil {
		port.Close()
		return nil, nil, err
	}

	opts := []gpib.Option{
		gpib.WithReadTimeout(c.ReadTimeout),
	}
	if c.WriteDelay > 0 {
		opts = append(opts, gpib.WithWriteDelay(c.WriteDelay))
	}
	if c.GpibSAD != 0xff {
		opts = append(opts, gpib.WithSecondaryAddress(c.GpibSAD))
	}
	if c.Debug {
		opts = append(opts, gpib.WithDebug())
	}

	ctrl, err := gpib.NewController(port, c.GpibPAD, false, opts...)
	if err != nil {
		port.Close()
		return nil, nil, err
	}

	cleanup := func() error {
		var errs error
		errs = multierr.Append(errs, ctrl.FrontPanel(true))
		errs = multierr.Append(errs, port.ResetInputBuffer())
		errs = multierr.Append(errs, port.Close())
		return errs
	}
	return ctrl, cleanup, nil
}
