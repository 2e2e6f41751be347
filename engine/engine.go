// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package engine wires the preprocessor and sweep together and drives a
// single counting run end to end (spec §4's top-to-bottom data flow: DIMACS
// -> clause store -> preprocessing -> clause index -> sweep). It also owns
// the run's external interruption surface: the wall/CPU/memory limits of
// spec §5/§7 and the OS signal handling of spec §6, fanned in from a
// separate watchdog goroutine via errorreporter.T (the cross-goroutine
// accumulator this codebase already uses for that purpose) and coordinated
// with golang.org/x/sync/errgroup. The sweep algorithm itself stays
// single-threaded per spec §5's non-goal of parallelism; only this driver
// layer runs more than one goroutine.
package engine

import (
	"context"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/grailbio/modelcount/bigint"
	"github.com/grailbio/modelcount/clauseindex"
	"github.com/grailbio/modelcount/cnf"
	"github.com/grailbio/modelcount/errors"
	"github.com/grailbio/modelcount/errorreporter"
	"github.com/grailbio/modelcount/limits"
	"github.com/grailbio/modelcount/progress"
	"github.com/grailbio/modelcount/region"
	"github.com/grailbio/modelcount/sweep"

	"math/rand"
)

// Config holds the CLI-derived knobs of spec §6.
type Config struct {
	Turns     int
	Trace     int
	Wall      time.Duration
	CPU       time.Duration
	MaxRSS    int64
	NoReduce  bool
}

// Outcome is the final, fully-scaled result of a run.
type Outcome struct {
	Status     progress.Status
	Satisfied  bool
	Count      bigint.Int
	Operations int64
}

// Run preprocesses and sweeps the already-parsed formula in store, and
// returns the Outcome. rep receives the progress banner and final result
// block; if rep is nil a no-op reporter is used.
func Run(store *cnf.Store, cfg Config, rep *progress.Reporter) (Outcome, error) {
	start := time.Now()
	checker := limits.NewChecker(limits.Limits{Wall: cfg.Wall, CPU: cfg.CPU, MaxRSSBytes: cfg.MaxRSS})
	var reporter errorreporter.T

	store.Dedup()

	unusedVariables := store.CountAbsentVariables()
	if !cfg.NoReduce {
		var err error
		unusedVariables, err = store.UnitPropagate()
		if err == cnf.UnsatError {
			if rep != nil {
				rep.Unsatisfiable(limits.CPUSeconds(), time.Since(start).Seconds(), progress.StatusSuccess, 0)
			}
			return Outcome{Status: progress.StatusSuccess, Satisfied: false}, nil
		} else if err != nil {
			return Outcome{}, err
		}
		store.Renumber()
		rng := rand.New(rand.NewSource(1))
		region.Preprocess(store, cfg.Turns, rng)
	}

	idx := clauseindex.Build(store)
	eng := sweep.New(store, idx)
	eng.SetTrace(cfg.Trace)

	g, _ := errgroup.WithContext(context.Background())
	stop := make(chan struct{})
	g.Go(func() error {
		return watch(checker, &reporter, cfg, rep, stop)
	})

	var result sweep.Result
	var sweepErr error
	g.Go(func() error {
		defer close(stop)
		result, sweepErr = eng.Run(func() error {
			if err := reporter.Err(); err != nil {
				return err
			}
			return checker.Check()
		})
		return nil
	})
	_ = g.Wait()

	elapsed := time.Since(start)
	cpu := limits.CPUSeconds()

	if sweepErr != nil {
		status := classify(sweepErr)
		if rep != nil {
			rep.Unknown(cpu, elapsed.Seconds(), status, result.Operations)
		}
		return Outcome{Status: status, Operations: result.Operations}, sweepErr
	}

	total := bigint.Mul(result.Count, bigint.PowerOfTwo(uint(unusedVariables)))
	if total.Zero() {
		if rep != nil {
			rep.Unsatisfiable(cpu, elapsed.Seconds(), progress.StatusSuccess, result.Operations)
		}
		return Outcome{Status: progress.StatusSuccess, Satisfied: false, Operations: result.Operations}, nil
	}
	if rep != nil {
		rep.Satisfiable(total, log10Estimate(total), cpu, elapsed.Seconds(), progress.StatusSuccess, result.Operations)
	}
	return Outcome{Status: progress.StatusSuccess, Satisfied: true, Count: total, Operations: result.Operations}, nil
}

// watch polls checker and relays OS signals into reporter until stop is
// closed, implementing spec §5's cancellation surface (SIGINT/SIGTERM
// halt, SIGTSTP dumps progress and continues).
func watch(checker *limits.Checker, reporter *errorreporter.T, cfg Config, rep *progress.Reporter, stop chan struct{}) error {
	sigs := make(chan os.Signal, 4)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGTSTP)
	defer signal.Stop(sigs)

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return nil
		case sig := <-sigs:
			switch sig {
			case syscall.SIGINT, syscall.SIGTERM:
				reporter.Set(errors.E(errors.Interrupted, "halted by signal"))
			case syscall.SIGTSTP:
				if rep != nil {
					rep.Banner("SIGTSTP", "progress dump requested")
				}
			}
		case <-ticker.C:
			if err := checker.Check(); err != nil {
				reporter.Set(err)
			}
		}
	}
}

func classify(err error) progress.Status {
	switch {
	case errors.Is(errors.MemoryExceeded, err):
		return progress.StatusMemoryExceeded
	case errors.Is(errors.Timeout, err):
		return progress.StatusTimeExceeded
	case errors.Is(errors.Interrupted, err):
		return progress.StatusSigterm
	default:
		return progress.StatusUnknown
	}
}

// log10Estimate estimates log10(|count|) from count's decimal string,
// using only its digit count and leading digit, which avoids a float64
// conversion that would overflow for large counts.
func log10Estimate(count bigint.Int) float64 {
	s := count.String()
	if len(s) > 0 && s[0] == '-' {
		s = s[1:]
	}
	if s == "0" {
		return math.Inf(-1)
	}
	lead := 0.0
	switch s[0] {
	case '1':
		lead = 0
	default:
		lead = math.Log10(float64(s[0] - '0'))
	}
	return float64(len(s)-1) + lead
}
