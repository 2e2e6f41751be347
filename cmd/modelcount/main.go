// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command modelcount is the exact propositional model counter's driver
// (spec §4's C10, §6's CLI contract): it reads a DIMACS CNF formula,
// preprocesses it, runs the sweep, and prints the `c o KEY=VALUE` banner
// and result block.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/gops/agent"

	"github.com/grailbio/modelcount/cnf"
	"github.com/grailbio/modelcount/engine"
	"github.com/grailbio/modelcount/errors"
	"github.com/grailbio/modelcount/log"
	"github.com/grailbio/modelcount/must"
	"github.com/grailbio/modelcount/progress"
)

func main() {
	turns := flag.Int("turns", 400, "per-variable iteration budget for the variable reorderer")
	trace := flag.Int("trace", 0, "trace bitmask: 1=competition, 2=progress, 4=dump clauses, 8=dump bitsets")
	timeout := flag.Float64("timeout", 0, "wall-clock seconds limit (0 = unlimited)")
	cpuTimeout := flag.Float64("cpu-timeout", 0, "CPU seconds limit (0 = unlimited)")
	maxrss := flag.Float64("maxrss", 0, "memory limit in GB (0 = unlimited)")
	noreduce := flag.Bool("noreduce", false, "skip unit propagation and variable reordering")
	gopsEnabled := flag.Bool("gops", false, "enable the gops diagnostics agent")
	flag.Parse()

	if *gopsEnabled {
		must.Nil(agent.Listen(agent.Options{}), "starting gops agent")
		defer agent.Close()
	}

	store, err := parseInput(flag.Arg(0))
	if err != nil {
		fatal(err)
	}

	rep := progress.New(os.Stdout, traceLevel(*trace))
	log.SetOutputter(rep)

	cfg := engine.Config{
		Turns:    *turns,
		Trace:    *trace,
		Wall:     seconds(*timeout),
		CPU:      seconds(*cpuTimeout),
		MaxRSS:   int64(*maxrss * (1 << 30)),
		NoReduce: *noreduce,
	}
	outcome, err := engine.Run(store, cfg, rep)
	if err != nil {
		os.Exit(1)
	}
	if outcome.Status != progress.StatusSuccess {
		os.Exit(1)
	}
}

// parseInput opens and parses the CNF input at path, chaining any error
// from closing the reader into the returned error via errors.CleanUp so a
// failure during Close isn't silently dropped behind a successful parse.
func parseInput(path string) (store *cnf.Store, err error) {
	r, err := cnf.Open(path)
	if err != nil {
		return nil, err
	}
	defer errors.CleanUp(r.Close, &err)
	return cnf.Parse(r)
}

func seconds(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}

func traceLevel(mask int) log.Level {
	if mask&(progress.TraceDumpBitsets|progress.TraceDumpClauses) != 0 {
		return log.Debug
	}
	if mask&(progress.TraceNormal|progress.TraceCompetition) != 0 {
		return log.Info
	}
	return log.Error
}

func fatal(err error) {
	if errors.Is(errors.Syntax, err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
