// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package cnf implements the clause store (spec §4.1): DIMACS CNF input
// (including transparent gzip/zstd decompression), clause normalization,
// deduplication, and unit propagation.
package cnf

import (
	"sort"

	"github.com/grailbio/modelcount/errors"
	"github.com/grailbio/modelcount/log"
)

// Clause is a set of distinct literals kept in sorted ascending order by
// (|lit|, lit). Pos is the clause's stable index in the store's ordered
// sequence; PosAdded is a mutable generation tag used by the sweep.
type Clause struct {
	Lits     []int
	Pos      int
	PosAdded int
}

// Store is the clause store (C4): an ordered sequence of clauses with
// sorted literals, owning every clause for the lifetime of a run.
type Store struct {
	Clauses []*Clause
	NumVars int
}

// NewStore returns an empty Store over numVars variables.
func NewStore(numVars int) *Store {
	return &Store{NumVars: numVars}
}

// Add normalizes lits (dedupe, sort by (|lit|, lit)) and appends it as a
// new clause, unless it is a tautology (contains both l and -l), which is
// silently dropped per spec §3 ("On construction, any clause containing
// both l and -l is eliminated").
func (s *Store) Add(lits []int) {
	norm := normalize(lits)
	if norm == nil {
		return
	}
	s.Clauses = append(s.Clauses, &Clause{Lits: norm, Pos: len(s.Clauses), PosAdded: -1})
}

// normalize sorts lits by (|lit|, lit), removes duplicates, and returns nil
// if the resulting clause is a tautology.
func normalize(lits []int) []int {
	out := append([]int(nil), lits...)
	sort.Slice(out, func(i, j int) bool {
		ai, aj := abs(out[i]), abs(out[j])
		if ai != aj {
			return ai < aj
		}
		return out[i] < out[j]
	})
	deduped := out[:0]
	for i, l := range out {
		if i > 0 && l == out[i-1] {
			continue
		}
		deduped = append(deduped, l)
	}
	for i, l := range deduped {
		if i > 0 && deduped[i-1] == -l {
			return nil
		}
	}
	return deduped
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Dedup sorts clauses lexicographically by literal sequence and removes
// adjacent duplicates (spec §4.1's dedup()), then renumbers Pos.
func (s *Store) Dedup() {
	sort.Slice(s.Clauses, func(i, j int) bool {
		return lexLess(s.Clauses[i].Lits, s.Clauses[j].Lits)
	})
	out := s.Clauses[:0]
	for i, c := range s.Clauses {
		if i > 0 && lexEqual(c.Lits, s.Clauses[i-1].Lits) {
			continue
		}
		out = append(out, c)
	}
	s.Clauses = out
	s.renumber()
}

func (s *Store) renumber() {
	for i, c := range s.Clauses {
		c.Pos = i
		c.PosAdded = -1
	}
}

func lexLess(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func lexEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// UnsatError reports that unit propagation derived an empty clause (spec
// §4.1's failure mode).
var UnsatError = errors.E(errors.Invalid, "unsatisfiable by unit propagation")

// CountAbsentVariables returns the number of variables 1..NumVars that do
// not appear in any clause currently in the store. It performs no
// simplification; unlike UnitPropagate's return value this is available
// even when --noreduce skips propagation, since a variable with zero
// occurrences is unconstrained independent of any optimization pass (spec
// §4.1, scenario S1: "p cnf 3 0" counts all 3 variables this way).
func (s *Store) CountAbsentVariables() int {
	present := make([]bool, s.NumVars+1)
	for _, c := range s.Clauses {
		for _, l := range c.Lits {
			present[abs(l)] = true
		}
	}
	absent := 0
	for v := 1; v <= s.NumVars; v++ {
		if !present[v] {
			absent++
		}
	}
	return absent
}

// UnitPropagate repeatedly finds a unit clause {l} and removes clauses
// satisfied by l, and removes -l from clauses that contain it. If any
// clause becomes empty, it returns UnsatError. Otherwise it returns the
// number of variables that appear in no surviving clause and were not
// assigned by propagation; those variables each contribute a factor of 2 to
// the final count (spec §4.1). Assigned variables contribute a factor of 1.
func (s *Store) UnitPropagate() (unusedVariables int, err error) {
	assigned := make(map[int]bool) // variable -> true literal is positive
	hasAssignment := make([]bool, s.NumVars+1)

	active := make([]*Clause, len(s.Clauses))
	copy(active, s.Clauses)

	changed := true
	for changed {
		changed = false
		for idx, c := range active {
			if c == nil {
				continue
			}
			if len(c.Lits) == 0 {
				return 0, UnsatError
			}
			if len(c.Lits) != 1 {
				continue
			}
			l := c.Lits[0]
			v := abs(l)
			if hasAssignment[v] {
				continue
			}
			hasAssignment[v] = true
			assigned[v] = l > 0
			changed = true
			log.Debug.Printf("cnf: unit propagate %d", l)
			// The unit clause itself is trivially satisfied by its own
			// literal; mark it redundant along with every other clause
			// containing l.
			active[idx] = nil
			for i, other := range active {
				if other == nil {
					continue
				}
				filtered := other.Lits[:0]
				satisfied := false
				for _, ol := range other.Lits {
					if ol == l {
						satisfied = true
						break
					}
					if ol == -l {
						continue
					}
					filtered = append(filtered, ol)
				}
				if satisfied {
					active[i] = nil
					continue
				}
				if len(filtered) == 0 && len(other.Lits) > 0 {
					return 0, UnsatError
				}
				other.Lits = filtered
			}
		}
	}

	surviving := active[:0]
	for _, c := range active {
		if c != nil {
			surviving = append(surviving, c)
		}
	}
	s.Clauses = surviving

	stillPresent := make([]bool, s.NumVars+1)
	for _, c := range s.Clauses {
		for _, l := range c.Lits {
			stillPresent[abs(l)] = true
		}
	}
	// A variable absent from every surviving clause and not assigned by
	// propagation (for instance one that never appeared in the formula) is
	// unconstrained and contributes a free factor of 2 (spec §4.1); an
	// assigned variable has exactly one value.
	for v := 1; v <= s.NumVars; v++ {
		if !stillPresent[v] && !hasAssignment[v] {
			unusedVariables++
		}
	}

	s.renumber()
	return unusedVariables, nil
}

// Renumber reassigns variable identifiers contiguously 1..V' after
// propagation has dropped some variables entirely, per spec §4.1.
// s.NumVars is set to the resulting variable count, and the old->new
// mapping is returned. The mapping is determined by
// the order variables first appear across clauses.
func (s *Store) Renumber() (mapping map[int]int) {
	mapping = make(map[int]int)
	next := 1
	for _, c := range s.Clauses {
		for _, l := range c.Lits {
			v := abs(l)
			if _, ok := mapping[v]; !ok {
				mapping[v] = next
				next++
			}
		}
	}
	for _, c := range s.Clauses {
		for i, l := range c.Lits {
			nv := mapping[abs(l)]
			if l > 0 {
				c.Lits[i] = nv
			} else {
				c.Lits[i] = -nv
			}
		}
		sort.Slice(c.Lits, func(i, j int) bool {
			ai, aj := abs(c.Lits[i]), abs(c.Lits[j])
			if ai != aj {
				return ai < aj
			}
			return c.Lits[i] < c.Lits[j]
		})
	}
	s.NumVars = next - 1
	return mapping
}
