// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package engine_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grailbio/modelcount/cnf"
	"github.com/grailbio/modelcount/engine"
)

func count(t *testing.T, dimacs string) engine.Outcome {
	t.Helper()
	store, err := cnf.Parse(strings.NewReader(dimacs))
	require.NoError(t, err)
	out, err := engine.Run(store, engine.Config{Turns: 50}, nil)
	require.NoError(t, err)
	return out
}

// Scenarios S1-S6 from spec §8.
func TestScenarioS1NoClauses(t *testing.T) {
	out := count(t, "p cnf 3 0\n")
	require.True(t, out.Satisfied)
	require.Equal(t, "8", out.Count.String())
}

func TestScenarioS2SingleClause(t *testing.T) {
	out := count(t, "p cnf 2 1\n1 2 0\n")
	require.True(t, out.Satisfied)
	require.Equal(t, "3", out.Count.String())
}

func TestScenarioS3ExactlyOneTrue(t *testing.T) {
	out := count(t, "p cnf 2 2\n1 2 0\n-1 -2 0\n")
	require.True(t, out.Satisfied)
	require.Equal(t, "2", out.Count.String())
}

func TestScenarioS4Chain(t *testing.T) {
	out := count(t, "p cnf 3 2\n1 -2 0\n2 -3 0\n")
	require.True(t, out.Satisfied)
	require.Equal(t, "5", out.Count.String())
}

func TestScenarioS5Disconnected(t *testing.T) {
	out := count(t, "p cnf 4 3\n1 2 0\n3 4 0\n-1 -3 0\n")
	require.True(t, out.Satisfied)
	require.Equal(t, "8", out.Count.String())
}

func TestScenarioS6Unsat(t *testing.T) {
	out := count(t, "p cnf 1 2\n1 0\n-1 0\n")
	require.False(t, out.Satisfied)
}

func TestNoReduceSkipsUnitPropagationAndReorderOnly(t *testing.T) {
	store, err := cnf.Parse(strings.NewReader("p cnf 3 0\n"))
	require.NoError(t, err)
	out, err := engine.Run(store, engine.Config{Turns: 50, NoReduce: true}, nil)
	require.NoError(t, err)
	require.True(t, out.Satisfied)
	require.Equal(t, "8", out.Count.String())
}

// bruteForce counts satisfying assignments of a small CNF by exhaustive
// enumeration, used as an oracle to cross-validate the sweep engine.
func bruteForce(numVars int, clauses [][]int) int {
	total := 0
	for assignment := 0; assignment < (1 << uint(numVars)); assignment++ {
		satisfied := true
		for _, c := range clauses {
			clauseSat := false
			for _, l := range c {
				v := l
				neg := false
				if v < 0 {
					v = -v
					neg = true
				}
				bit := (assignment >> uint(v-1)) & 1
				val := bit == 1
				if neg {
					val = !val
				}
				if val {
					clauseSat = true
					break
				}
			}
			if !clauseSat {
				satisfied = false
				break
			}
		}
		if satisfied {
			total++
		}
	}
	return total
}

func dimacsOf(numVars int, clauses [][]int) string {
	var b strings.Builder
	b.WriteString("p cnf ")
	b.WriteString(itoa(numVars))
	b.WriteString(" ")
	b.WriteString(itoa(len(clauses)))
	b.WriteString("\n")
	for _, c := range clauses {
		for _, l := range c {
			b.WriteString(itoa(l))
			b.WriteString(" ")
		}
		b.WriteString("0\n")
	}
	return b.String()
}

func itoa(n int) string {
	neg := n < 0
	if neg {
		n = -n
	}
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

// TestRandomFormulasMatchBruteForceOracle cross-validates the sweep engine
// against exhaustive enumeration over small random CNF formulas (V in
// 1..12, C in 0..20, per the pending randomized property test plan).
func TestRandomFormulasMatchBruteForceOracle(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 40; trial++ {
		numVars := 1 + rng.Intn(12)
		numClauses := rng.Intn(21)
		var clauses [][]int
		for c := 0; c < numClauses; c++ {
			width := 1 + rng.Intn(numVars)
			seen := make(map[int]bool)
			var lits []int
			for len(lits) < width {
				v := 1 + rng.Intn(numVars)
				if seen[v] {
					continue
				}
				seen[v] = true
				l := v
				if rng.Intn(2) == 0 {
					l = -v
				}
				lits = append(lits, l)
			}
			clauses = append(clauses, lits)
		}

		want := bruteForce(numVars, clauses)
		out := count(t, dimacsOf(numVars, clauses))

		if want == 0 {
			require.Falsef(t, out.Satisfied, "trial %d: expected UNSAT for %v / %v", trial, numVars, clauses)
			continue
		}
		require.Truef(t, out.Satisfied, "trial %d: expected SAT for %v / %v", trial, numVars, clauses)
		require.Equalf(t, itoa(want), out.Count.String(), "trial %d: count mismatch for %v / %v", trial, numVars, clauses)
	}
}
