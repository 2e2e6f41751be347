// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package clauseindex computes the first/last-variable maps the sweep
// engine needs once clauses are frozen (spec §4.5, C7): for each clause
// position, which variables enter scope there (firstVars) and which are
// retired there (lastVars). The original design stores these as
// zero-terminated arrays; a Go slice's length plays that role here.
package clauseindex

import "github.com/grailbio/modelcount/cnf"

// Index holds the derived first/last-variable lists, one entry per clause
// position.
type Index struct {
	// FirstVars[c] lists the variables v with firstPos(v) == c.
	FirstVars [][]int
	// LastVars[c] lists the variables v with lastPos(v) == c.
	LastVars [][]int
	// NumFirstVars[c] == len(FirstVars[c]).
	NumFirstVars []int
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Build computes firstPos/lastPos for every variable appearing in store's
// clauses and derives FirstVars/LastVars/NumFirstVars (spec §4.5). A
// variable with no occurrences (already fully retired by unit propagation)
// is simply absent from both lists.
func Build(store *cnf.Store) *Index {
	firstPos := make([]int, store.NumVars+1)
	lastPos := make([]int, store.NumVars+1)
	for i := range firstPos {
		firstPos[i] = -1
		lastPos[i] = -1
	}
	for _, c := range store.Clauses {
		for _, l := range c.Lits {
			v := absInt(l)
			if firstPos[v] == -1 {
				firstPos[v] = c.Pos
			}
			lastPos[v] = c.Pos
		}
	}

	idx := &Index{
		FirstVars:    make([][]int, len(store.Clauses)),
		LastVars:     make([][]int, len(store.Clauses)),
		NumFirstVars: make([]int, len(store.Clauses)),
	}
	for v := 1; v <= store.NumVars; v++ {
		if firstPos[v] == -1 {
			continue
		}
		idx.FirstVars[firstPos[v]] = append(idx.FirstVars[firstPos[v]], v)
		idx.LastVars[lastPos[v]] = append(idx.LastVars[lastPos[v]], v)
	}
	for i := range idx.FirstVars {
		idx.NumFirstVars[i] = len(idx.FirstVars[i])
	}
	return idx
}
