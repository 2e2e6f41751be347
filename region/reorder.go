// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package region

import (
	"math/rand"
	"sort"

	"github.com/grailbio/modelcount/cnf"
)

// Preprocess decomposes store's variables into regions, reorders each
// region to approximately minimize total clause span, and renumbers
// variables so that each region occupies a contiguous interval in the
// final order (spec §4.4). Clause literals are remapped to the new
// numbering, each clause's literals re-sorted, and the clauses themselves
// re-sorted (via Store.Dedup). It returns the old->new variable mapping.
func Preprocess(store *cnf.Store, maxTurns int, rng *rand.Rand) map[int]int {
	regions := Decompose(store.NumVars, store.Clauses)

	mapping := make(map[int]int, store.NumVars)
	nextID := 1
	for _, reg := range regions {
		ordered := Optimize(reg, store.Clauses, maxTurns, rng)
		for _, v := range ordered {
			mapping[v] = nextID
			nextID++
		}
	}

	for _, c := range store.Clauses {
		for i, l := range c.Lits {
			v := abs(l)
			nv := mapping[v]
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
	store.Dedup()
	return mapping
}
