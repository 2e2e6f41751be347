// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package sweep_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grailbio/modelcount/clauseindex"
	"github.com/grailbio/modelcount/cnf"
	"github.com/grailbio/modelcount/log"
	"github.com/grailbio/modelcount/progress"
	"github.com/grailbio/modelcount/sweep"
)

var errAbort = errors.New("aborted by check")

type captureOutputter struct {
	level    log.Level
	messages []string
}

func (c *captureOutputter) Level() log.Level { return c.level }

func (c *captureOutputter) Output(calldepth int, level log.Level, s string) error {
	if level <= c.level {
		c.messages = append(c.messages, s)
	}
	return nil
}

func buildEngine(t *testing.T, dimacs string) *sweep.Engine {
	t.Helper()
	store, err := cnf.Parse(strings.NewReader(dimacs))
	require.NoError(t, err)
	idx := clauseindex.Build(store)
	return sweep.New(store, idx)
}

func TestRunSingleClause(t *testing.T) {
	eng := buildEngine(t, "p cnf 2 1\n1 2 0\n")
	result, err := eng.Run(nil)
	require.NoError(t, err)
	require.Equal(t, "3", result.Count.String())
}

func TestRunPollsCheckAndCanAbort(t *testing.T) {
	eng := buildEngine(t, "p cnf 2 1\n1 2 0\n")
	calls := 0
	_, err := eng.Run(func() error {
		calls++
		return errAbort
	})
	require.Equal(t, errAbort, err)
	require.Equal(t, 1, calls)
}

func TestSetTraceDumpsClausesAndBitsetsThroughLogOutputter(t *testing.T) {
	out := &captureOutputter{level: log.Debug}
	defer log.SetOutputter(log.SetOutputter(out))

	eng := buildEngine(t, "p cnf 2 1\n1 2 0\n")
	eng.SetTrace(progress.TraceDumpClauses | progress.TraceDumpBitsets)
	_, err := eng.Run(nil)
	require.NoError(t, err)

	var sawClause, sawBitsets bool
	for _, m := range out.messages {
		if strings.Contains(m, "trace clause") {
			sawClause = true
		}
		if strings.Contains(m, "trace step") {
			sawBitsets = true
		}
	}
	require.True(t, sawClause, "expected a trace clause dump")
	require.True(t, sawBitsets, "expected a trace bitset dump")
}

func TestSetTraceDefaultOffProducesNoDumps(t *testing.T) {
	out := &captureOutputter{level: log.Debug}
	defer log.SetOutputter(log.SetOutputter(out))

	eng := buildEngine(t, "p cnf 2 1\n1 2 0\n")
	_, err := eng.Run(nil)
	require.NoError(t, err)
	require.Empty(t, out.messages)
}
