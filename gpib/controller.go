// Copyright (c) 2025–2026 The aq6315 developers. All rights reserved.
// Project site: https://github.com/osalab/aq6315
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package gpib drives a Prologix-style GPIB controller-in-charge over a
// serial port or any other byte stream. It carries the instrument side of
// the link: plain writes for fire-and-forget commands, write-then-read for
// queries, and ++ directives for the controller itself.
package gpib

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"
	"time"
)

// Controller models a GPIB controller-in-charge addressing one instrument.
type Controller struct {
	rw  io.ReadWriter
	buf *bufio.Reader

	primaryAddr      int
	hasSecondaryAddr bool
	secondaryAddr    int
	auto             bool
	eotChar          byte
	usbTerm          byte
	readTimeout      time.Duration
	writeDelay       time.Duration
	debug            bool
}

// Option applies a configuration option to the controller.
type Option func(*Controller)

// WithSecondaryAddress sets a secondary GPIB address, which must be in the
// range 96 to 126, inclusive.
func WithSecondaryAddress(addr int) Option {
	return func(c *Controller) {
		c.hasSecondaryAddr = true
		c.secondaryAddr = addr
	}
}

// WithWriteDelay pauses after every write, for adapters and instruments that
// drop bytes when commands arrive back to back.
func WithWriteDelay(d time.Duration) Option {
	return func(c *Controller) { c.writeDelay = d }
}

// WithReadTimeout sets the controller's GPIB read timeout. This is the
// link-level response deadline, independent of any polling the caller does.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Controller) { c.readTimeout = d }
}

// WithDebug logs every command and response.
func WithDebug() Option {
	return func(c *Controller) { c.debug = true }
}

// NewController creates a GPIB controller-in-charge for the instrument at
// the given primary address, using rw as the transport to the Prologix
// adapter. Enable clear to send the Selected Device Clear message after
// initialization.
func NewController(rw io.ReadWriter, addr int, clear bool, opts ...Option) (*Controller, error) {
	c := Controller{
		rw:          rw,
		buf:         bufio.NewReader(rw),
		primaryAddr: addr,
		auto:        false,
		eotChar:     '\n',
		usbTerm:     '\n',
		readTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(&c)
	}

	if c.primaryAddr < 0 || c.primaryAddr > 30 {
		return nil, fmt.Errorf("invalid primary address %d (must be 0-30)", c.primaryAddr)
	}
	addrCmd := fmt.Sprintf("addr %d", c.primaryAddr)
	if c.hasSecondaryAddr {
		if c.secondaryAddr < 96 || c.secondaryAddr > 126 {
			return nil, fmt.Errorf("invalid secondary address %d (must be 96-126)", c.secondaryAddr)
		}
		addrCmd = fmt.Sprintf("addr %d %d", c.primaryAddr, c.secondaryAddr)
	}

	cmds := []string{
		addrCmd,  // Address the instrument.
		"mode 1", // Controller-in-charge mode.
		"auto 0", // No read-after-write; reads are explicit.
		"eoi 1",  // Assert EOI with the last character.
		"eos 0",  // CR+LF GPIB termination.
		fmt.Sprintf("read_tmo_ms %d", c.readTimeout.Milliseconds()),
		fmt.Sprintf("eot_char %d", c.eotChar),
		"eot_enable 1", // Append eot_char when EOI is detected.
	}
	if clear {
		cmds = append(cmds, "clr")
	}
	for _, cmd := range cmds {
		if err := c.CommandController(cmd); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

// Command formats according to a format specifier if arguments are given and
// sends the result to the instrument. No response is read.
func (c *Controller) Command(format string, a ...any) error {
	cmd := format
	if len(a) > 0 {
		cmd = fmt.Sprintf(format, a...)
	}
	if c.debug {
		log.Printf("gpib cmd %q", cmd)
	}
	return c.writeLine(cmd)
}

// Query sends the given command to the instrument and reads one response,
// trimmed of its termination characters. Because read-after-write is
// disabled, the adapter is told to read explicitly.
//
// TODO: binary transfers (the instrument's LDTDIG1/LDTDIG2 modes) can embed
// raw newlines and would need a length-aware read instead of ReadString.
func (c *Controller) Query(cmd string) (string, error) {
	if err := c.writeLine(cmd); err != nil {
		return "", fmt.Errorf("writing query %q: %w", cmd, err)
	}
	if !c.auto {
		if err := c.writeLine("++read eoi"); err != nil {
			return "", fmt.Errorf("requesting read: %w", err)
		}
	}
	s, err := c.buf.ReadString(c.eotChar)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading response to %q: %w", cmd, err)
	}
	s = strings.TrimRight(s, "\r\n")
	if c.debug {
		log.Printf("gpib query %q -> %q", cmd, s)
	}
	return s, nil
}

// CommandController sends a directive to the Prologix adapter itself. The
// ++ prefix keeps it off the GPIB bus.
func (c *Controller) CommandController(cmd string) error {
	return c.writeLine("++" + strings.ToLower(strings.TrimSpace(cmd)))
}

// QueryController sends a directive to the adapter and reads its response.
func (c *Controller) QueryController(cmd string) (string, error) {
	if err := c.CommandController(cmd); err != nil {
		return "", err
	}
	s, err := c.buf.ReadString(c.eotChar)
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// Version returns the adapter's version string.
func (c *Controller) Version() (string, error) {
	return c.QueryController("ver")
}

// FrontPanel returns the instrument to local front-panel control when local
// is true, or asserts remote control when false.
func (c *Controller) FrontPanel(local bool) error {
	if local {
		return c.CommandController("loc")
	}
	return c.CommandController("llo")
}

func (c *Controller) writeLine(s string) error {
	line := fmt.Sprintf("%s%c", strings.TrimSpace(s), c.usbTerm)
	if _, err := io.WriteString(c.rw, line); err != nil {
		return err
	}
	if c.writeDelay > 0 {
		time.Sleep(c.writeDelay)
	}
	return nil
}
