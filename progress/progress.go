// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package progress renders the `c o KEY=VALUE` banner and final result
// block described in spec §6. It is also a log.Outputter, so ordinary
// leveled log output (spec's ambient logging, see log.Outputter) and the
// solver's own progress lines share one destination without interleaving,
// since driver-level goroutines (the sweep and the limits watchdog) write
// concurrently even though the sweep algorithm itself is single-threaded.
package progress

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/grailbio/modelcount/log"
)

// Trace bits, per spec §6's --trace=MASK.
const (
	TraceCompetition = 1 << 0
	TraceNormal      = 1 << 1
	TraceDumpClauses = 1 << 2
	TraceDumpBitsets = 1 << 3
)

// Status is the final `c o STATUS=` value (spec §6).
type Status string

const (
	StatusSuccess        Status = "SUCCESS"
	StatusMemoryExceeded  Status = "MEMORY-EXCEEDED"
	StatusTimeExceeded    Status = "TIME-EXCEEDED"
	StatusUnknown         Status = "UNKNOWN"
	StatusSigterm         Status = "SIGTERM"
)

// Reporter serializes writes from multiple goroutines onto one
// destination through a mutex-guarded buffered writer.
// It doubles as a log.Outputter: leveled log calls and the solver's own
// `c o ...` lines interleave cleanly.
type Reporter struct {
	mu    sync.Mutex
	w     *bufio.Writer
	level log.Level
}

// New returns a Reporter writing to w at the given log level.
func New(w io.Writer, level log.Level) *Reporter {
	return &Reporter{w: bufio.NewWriter(w), level: level}
}

// Level implements log.Outputter.
func (r *Reporter) Level() log.Level { return r.level }

// Output implements log.Outputter.
func (r *Reporter) Output(calldepth int, level log.Level, s string) error {
	if level > r.level {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := fmt.Fprintf(r.w, "c %s\n", s)
	if err == nil {
		err = r.w.Flush()
	}
	return err
}

// DumpClauses writes one trace line for a clause being processed by the
// sweep, gated by --trace bit 3 (spec §6, NEW/EXPANDED FEATURES). It is a
// log.Outputter write like any other leveled log call, so it interleaves
// cleanly with the banner.
func DumpClauses(pos int, lits []int) {
	log.Debug.Printf("trace clause %d: %v", pos, lits)
}

// DumpBitsets writes one trace line per live bitset in the sweep's current
// clauseSet, gated by --trace bit 4 (spec §6). bitsets are pre-rendered by
// the caller (sweep owns the Bitset/Window types; progress doesn't need to
// import them just to log their contents).
func DumpBitsets(pos int, bitsets []string) {
	log.Debug.Printf("trace step %d bitsets: %v", pos, bitsets)
}

// Banner writes one `c o KEY=VALUE` record (spec §6).
func (r *Reporter) Banner(key string, value interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "c o %s=%v\n", key, value)
	r.w.Flush()
}

// Satisfiable reports the final satisfiable result block (spec §6): the
// `s SATISFIABLE` line, the model-count lines, and the trailing `c o`
// status records. log10Estimate is the base-10 logarithm of count,
// computed by the caller from the exact BigInt count.
func (r *Reporter) Satisfiable(count fmt.Stringer, log10Estimate float64, cpuSeconds, elapsedSeconds float64, status Status, operations int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, "s SATISFIABLE")
	fmt.Fprintln(r.w, "c s mc")
	fmt.Fprintf(r.w, "c s log10-estimate %g\n", log10Estimate)
	fmt.Fprintf(r.w, "c s exact arb int %s\n", count.String())
	r.finish(cpuSeconds, elapsedSeconds, status, operations)
}

// Unsatisfiable reports the final unsatisfiable result block.
func (r *Reporter) Unsatisfiable(cpuSeconds, elapsedSeconds float64, status Status, operations int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, "s UNSATISFIABLE")
	r.finish(cpuSeconds, elapsedSeconds, status, operations)
}

// Unknown reports a halt before the sweep determined a count (time,
// memory, or signal).
func (r *Reporter) Unknown(cpuSeconds, elapsedSeconds float64, status Status, operations int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, "s UNKNOWN")
	r.finish(cpuSeconds, elapsedSeconds, status, operations)
}

func (r *Reporter) finish(cpuSeconds, elapsedSeconds float64, status Status, operations int64) {
	fmt.Fprintf(r.w, "c o CPU-TIME-SECONDS=%g\n", cpuSeconds)
	fmt.Fprintf(r.w, "c o ELAPSED-TIME-SECONDS=%g\n", elapsedSeconds)
	fmt.Fprintf(r.w, "c o STATUS=%s\n", status)
	fmt.Fprintf(r.w, "c o OPERATIONS=%d\n", operations)
	r.w.Flush()
}
