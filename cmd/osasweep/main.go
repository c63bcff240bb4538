// Copyright (c) 2025–2026 The aq6315 developers. All rights reserved.
// Project site: https://github.com/osalab/aq6315
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Command osasweep performs one segmented acquisition on an Ando AQ6315E
// optical spectrum analyzer: configure, sweep the requested span in
// step-sized sub-ranges, and persist the stitched trace as CSV plus a plot
// image under a fresh run directory.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/osalab/aq6315"
	"github.com/osalab/aq6315/lib/cmdlog"
	"github.com/osalab/aq6315/lib/connutil"
	"github.com/osalab/aq6315/sink"
)

func main() {
	log.SetFlags(log.Lmicroseconds)

	var conn connutil.Conn
	conn.AddFlags()

	var (
		cfgPath  = flag.String("config", "", "YAML acquisition config, overriding the sweep flags")
		outBase  = flag.String("out", ".", "base directory for run output")
		pollIvl  = flag.Duration("poll", aq6315.DefaultPollInterval, "sweep-status poll interval")
		maxPolls = flag.Int("max-polls", aq6315.DefaultMaxPolls, "maximum status polls per segment")
		sens     = flag.String("sens", string(aq6315.SensNormalAuto), "sensitivity mnemonic (SNHD, SNAT, SHI1, SHI2, SHI3)")
	)
	var cfg aq6315.Config
	flag.Float64Var(&cfg.StartWavelength, "start", 1525, "start wavelength (nm)")
	flag.Float64Var(&cfg.StopWavelength, "stop", 1625, "stop wavelength (nm)")
	flag.Float64Var(&cfg.StepSize, "step", 5, "sub-range sweep width (nm)")
	flag.Float64Var(&cfg.Resolution, "resln", 0.05, "resolution bandwidth (nm)")
	flag.IntVar(&cfg.AveragingCount, "avg", 5, "averaging count")
	flag.BoolVar(&cfg.AutoReference, "autoref", true, "automatic reference level")
	flag.Float64Var(&cfg.ReferenceLevel, "ref", 12.0, "reference level in nW, ignored with -autoref")
	flag.Parse()
	cfg.Sensitivity = aq6315.Sensitivity(*sens)

	if *cfgPath != "" {
		if err := loadConfig(*cfgPath, &cfg); err != nil {
			log.Fatalf("loading %s: %s", *cfgPath, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	if err := run(&conn, cfg, *outBase, *pollIvl, *maxPolls); err != nil {
		log.Fatal(err)
	}
}

// run owns the link and the run directory; every exit path releases both.
func run(conn *connutil.Conn, cfg aq6315.Config, outBase string, pollIvl time.Duration, maxPolls int) error {
	runDir, err := sink.NewRunDir(outBase, time.Now())
	if err != nil {
		return fmt.Errorf("creating run directory: %w", err)
	}
	log.Printf("run directory = %s", runDir)

	runLog, err := sink.OpenRunLog(runDir)
	if err != nil {
		return err
	}
	defer runLog.Close()

	ctrl, cleanup, err := conn.Setup()
	if err != nil {
		return fmt.Errorf("opening GPIB link: %w", err)
	}
	defer func() {
		if err := cleanup(); err != nil {
			log.Printf("link cleanup: %s", err)
		}
	}()

	// Progress lines go to the console and to the durable run log.
	logf := func(format string, a ...any) {
		log.Printf(format, a...)
		runLog.Eventf(format, a...)
	}

	osa := aq6315.New(
		cmdlog.Wrap(ctrl, runLog),
		aq6315.WithPollInterval(pollIvl),
		aq6315.WithMaxPolls(maxPolls),
		aq6315.WithLogf(logf),
	)

	idn, err := osa.Identify()
	if err != nil {
		return err
	}
	logf("connected to: %s", idn)
	// The AQ6315E needs a beat after its first exchange before it will
	// accept setup commands without choking.
	time.Sleep(time.Second)

	logf("starting scan loop")
	if err := osa.Run(cfg, sink.NewDir(runDir, runLog)); err != nil {
		return err
	}
	logf("scan loop completed")
	return nil
}

func loadConfig(path string, cfg *aq6315.Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return yaml.NewDecoder(f).Decode(cfg)
}
