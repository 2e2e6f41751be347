// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package limits polls the wall-clock, CPU, and memory budgets described
// in spec §5/§7: a soft limit exceeded halts the sweep with a tagged
// error rather than letting the process run unbounded. Memory usage is
// read from the OS via golang.org/x/sys/unix.Getrusage, following the
// same rusage-polling idiom as stress/oom's /proc/meminfo check, adapted
// from a one-shot probe into a recurring limit check.
package limits

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/grailbio/modelcount/errors"
)

// Limits holds the configured soft limits; a zero value for any field
// disables that check.
type Limits struct {
	Wall    time.Duration
	CPU     time.Duration
	MaxRSSBytes int64
}

// Checker polls Limits against wall-clock elapsed time and the process's
// own rusage, used both at sweep step boundaries and periodically during
// combine (spec §5, "polled cadence").
type Checker struct {
	limits Limits
	start  time.Time
}

// NewChecker returns a Checker with its wall-clock origin set to now.
func NewChecker(l Limits) *Checker {
	return &Checker{limits: l, start: time.Now()}
}

// Elapsed returns the wall-clock duration since the Checker was created.
func (c *Checker) Elapsed() time.Duration {
	return time.Since(c.start)
}

// Check returns a tagged error if any configured limit has been
// exceeded, or nil if the run may continue.
func (c *Checker) Check() error {
	if c.limits.Wall > 0 {
		if time.Since(c.start) > c.limits.Wall {
			return errors.E(errors.Timeout, "wall-clock limit exceeded")
		}
	}
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return nil // best-effort: a failed probe should not itself halt the sweep
	}
	if c.limits.CPU > 0 {
		cpu := time.Duration(ru.Utime.Sec)*time.Second + time.Duration(ru.Utime.Usec)*time.Microsecond +
			time.Duration(ru.Stime.Sec)*time.Second + time.Duration(ru.Stime.Usec)*time.Microsecond
		if cpu > c.limits.CPU {
			return errors.E(errors.Timeout, "CPU-time limit exceeded")
		}
	}
	if c.limits.MaxRSSBytes > 0 {
		// ru.Maxrss is KB on Linux.
		if ru.Maxrss*1024 > c.limits.MaxRSSBytes {
			return errors.E(errors.MemoryExceeded, "memory limit exceeded")
		}
	}
	return nil
}

// CPUSeconds returns the process's current CPU time in seconds (user +
// system), for the final `c o CPU-TIME-SECONDS=` report.
func CPUSeconds() float64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	user := float64(ru.Utime.Sec) + float64(ru.Utime.Usec)/1e6
	sys := float64(ru.Stime.Sec) + float64(ru.Stime.Usec)/1e6
	return user + sys
}
