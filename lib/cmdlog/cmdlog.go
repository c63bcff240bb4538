// Copyright (c) 2025–2026 The aq6315 developers. All rights reserved.
// Project site: https://github.com/osalab/aq6315
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package cmdlog wraps an instrument link so that every command and query is
// echoed to the console and recorded as a timestamped audit event.
package cmdlog

import (
	"fmt"
	"log"

	"github.com/charmbracelet/lipgloss"

	"github.com/osalab/aq6315"
)

var (
	cmdStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	respStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Eventer receives one durable audit record per instrument exchange.
// *sink.RunLog satisfies it.
type Eventer interface {
	Eventf(format string, a ...any)
}

// Recorder forwards to an underlying Link and audits every exchange. It
// satisfies aq6315.Link itself, so it can be slotted between the driver and
// the transport.
type Recorder struct {
	link  aq6315.Link
	audit Eventer
}

// Wrap decorates link. audit may be nil, leaving console echo only.
func Wrap(link aq6315.Link, audit Eventer) *Recorder {
	return &Recorder{link: link, audit: audit}
}

// Command forwards a fire-and-forget command.
func (r *Recorder) Command(format string, a ...any) error {
	cmd := format
	if len(a) > 0 {
		cmd = fmt.Sprintf(format, a...)
	}
	err := r.link.Command(format, a...)
	if err != nil {
		log.Printf("%s: %s", cmdStyle.Render(cmd), errStyle.Render(err.Error()))
		r.eventf("cmd %s failed: %s", cmd, err)
		return err
	}
	log.Printf("%s", cmdStyle.Render(cmd))
	r.eventf("cmd %s", cmd)
	return nil
}

// Query forwards a query and audits the response.
func (r *Recorder) Query(cmd string) (string, error) {
	resp, err := r.link.Query(cmd)
	if err != nil {
		log.Printf("%s: %s", cmdStyle.Render(cmd), errStyle.Render(err.Error()))
		r.eventf("query %s failed: %s", cmd, err)
		return resp, err
	}
	log.Printf("%s: [%d] %s", cmdStyle.Render(cmd), len(resp), respStyle.Render(clip(resp)))
	r.eventf("query %s -> %d bytes", cmd, len(resp))
	return resp, nil
}

func (r *Recorder) eventf(format string, a ...any) {
	if r.audit != nil {
		r.audit.Eventf(format, a...)
	}
}

// clip keeps trace dumps from flooding the console.
func clip(s string) string {
	const max = 72
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
