// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package region implements connected-component region decomposition and
// per-region variable reordering (spec §4.4, components C5/C6): it
// partitions variables into regions via clause adjacency, then reorders
// variables within each region to minimize the total clause "span" —
// shrinking the live window the sweep engine has to carry.
package region

import (
	"math"
	"math/rand"
	"sort"

	"github.com/grailbio/modelcount/cnf"
)

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// buildAdjacency returns, for each variable 1..numVars, the set of other
// variables it shares a clause with.
func buildAdjacency(numVars int, clauses []*cnf.Clause) [][]int {
	adj := make([][]int, numVars+1)
	seen := make([]map[int]bool, numVars+1)
	for _, c := range clauses {
		for _, li := range c.Lits {
			vi := abs(li)
			if seen[vi] == nil {
				seen[vi] = make(map[int]bool)
			}
			for _, lj := range c.Lits {
				vj := abs(lj)
				if vj == vi || seen[vi][vj] {
					continue
				}
				seen[vi][vj] = true
				adj[vi] = append(adj[vi], vj)
			}
		}
	}
	return adj
}

// Decompose partitions variables 1..numVars into connected components via
// clause adjacency (spec §4.4): BFS from variable 1, then restart from the
// smallest unvisited variable until all are assigned. Variables with no
// clauses at all form singleton regions, each visited in increasing order.
func Decompose(numVars int, clauses []*cnf.Clause) [][]int {
	adj := buildAdjacency(numVars, clauses)
	visited := make([]bool, numVars+1)
	var regions [][]int
	for start := 1; start <= numVars; start++ {
		if visited[start] {
			continue
		}
		queue := []int{start}
		visited[start] = true
		var region []int
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			region = append(region, v)
			for _, u := range adj[v] {
				if !visited[u] {
					visited[u] = true
					queue = append(queue, u)
				}
			}
		}
		regions = append(regions, region)
	}
	return regions
}

// spanK picks the K bucket from §4.4's suggested schedule
// r = 1 - (ln(10+V)+ln(10+C))/K, with K decreasing as the region's clause
// count C grows.
func spanK(numClauses int) float64 {
	switch {
	case numClauses < 1000:
		return 1e8
	case numClauses < 10000:
		return 1e6
	case numClauses < 100000:
		return 1e5
	default:
		return 1e4
	}
}

// Optimize reorders the variables in region (a connected component) to
// approximately minimize Σ_c (maxVar(c) - minVar(c)) summed over the
// clauses whose variables lie entirely within region, via the iterative
// coordinate-sort of spec §4.4. maxTurns bounds the number of iterations
// (--turns, default 400); it is a performance knob only (§9's Open
// Question notes the span objective never affects correctness).
//
// The returned slice is a permutation of region: position i in the result
// is the i'th variable in the new order.
func Optimize(regionVars []int, clauses []*cnf.Clause, maxTurns int, rng *rand.Rand) []int {
	n := len(regionVars)
	if n <= 1 {
		return append([]int(nil), regionVars...)
	}
	inRegion := make(map[int]bool, n)
	for _, v := range regionVars {
		inRegion[v] = true
	}
	var relevant []*cnf.Clause
	for _, c := range clauses {
		all := true
		for _, l := range c.Lits {
			if !inRegion[abs(l)] {
				all = false
				break
			}
		}
		if all && len(c.Lits) > 0 {
			relevant = append(relevant, c)
		}
	}

	order := append([]int(nil), regionVars...)
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	rank := make(map[int]int, n)
	for i, v := range order {
		rank[v] = i
	}

	weight := make(map[int]float64, n)
	increment := 1.0
	r := 1 - (math.Log(10+float64(n))+math.Log(10+float64(len(relevant))))/spanK(len(relevant))
	if r <= 0 {
		r = 0.99
	}

	for turn := 0; turn < maxTurns; turn++ {
		for v := range weight {
			weight[v] = 0
		}
		for _, c := range relevant {
			minV, maxV := 0, 0
			minRank, maxRank := math.MaxInt32, -1
			for _, l := range c.Lits {
				v := abs(l)
				rk := rank[v]
				if rk < minRank {
					minRank, minV = rk, v
				}
				if rk > maxRank {
					maxRank, maxV = rk, v
				}
			}
			span := maxRank - minRank
			delta := increment * math.Sqrt(10+float64(span))
			weight[minV] += delta
			weight[maxV] -= delta
		}

		newOrder := append([]int(nil), order...)
		sort.SliceStable(newOrder, func(i, j int) bool {
			return weight[newOrder[i]] > weight[newOrder[j]]
		})

		changed := false
		for i, v := range newOrder {
			if rank[v] != i {
				changed = true
			}
			rank[v] = i
		}
		order = newOrder
		if !changed {
			break
		}
		increment *= r
	}
	return order
}
