// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package clauseindex_test

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/modelcount/clauseindex"
	"github.com/grailbio/modelcount/cnf"
)

func contains(vs []int, v int) bool {
	for _, x := range vs {
		if x == v {
			return true
		}
	}
	return false
}

func TestBuildFirstLastVars(t *testing.T) {
	s := cnf.NewStore(4)
	s.Add([]int{1, 2})
	s.Add([]int{2, 3})
	s.Add([]int{3, 4})

	idx := clauseindex.Build(s)
	require.Len(t, idx.FirstVars, 3)
	require.Len(t, idx.LastVars, 3)

	// Testable property 7: firstPos(v) == c iff v is in FirstVars[c], and
	// likewise for lastPos/LastVars.
	require.True(t, contains(idx.FirstVars[0], 1))
	require.True(t, contains(idx.FirstVars[0], 2))
	require.False(t, contains(idx.FirstVars[1], 2)) // 2 already entered at clause 0
	require.True(t, contains(idx.FirstVars[1], 3))
	require.True(t, contains(idx.FirstVars[2], 4))

	require.True(t, contains(idx.LastVars[0], 1)) // 1 never appears again
	require.False(t, contains(idx.LastVars[0], 2))
	require.True(t, contains(idx.LastVars[1], 2))
	require.True(t, contains(idx.LastVars[2], 3))
	require.True(t, contains(idx.LastVars[2], 4))

	for c, vs := range idx.FirstVars {
		require.Equal(t, len(vs), idx.NumFirstVars[c])
	}
}

func TestBuildMatchesExpectedIndexExactly(t *testing.T) {
	s := cnf.NewStore(4)
	s.Add([]int{1, 2})
	s.Add([]int{2, 3})
	s.Add([]int{3, 4})

	idx := clauseindex.Build(s)
	want := &clauseindex.Index{
		FirstVars:    [][]int{{1, 2}, {3}, {4}},
		LastVars:     [][]int{{1}, {2}, {3, 4}},
		NumFirstVars: []int{2, 1, 1},
	}
	// deep.Equal renders a field-by-field diff on mismatch, which is far
	// more useful than require.Equal's dump for a struct this
	// slice-shaped (spec's domain stack item 7).
	if diff := deep.Equal(want, idx); diff != nil {
		t.Fatalf("Build result differs from expected: %v", diff)
	}
}

func TestBuildSkipsFullyResolvedVariables(t *testing.T) {
	s := cnf.NewStore(3)
	s.Add([]int{1, 2})
	// variable 3 never appears in any clause (e.g. resolved by unit
	// propagation before clauseindex.Build runs).
	idx := clauseindex.Build(s)
	for _, vs := range idx.FirstVars {
		require.False(t, contains(vs, 3))
	}
	for _, vs := range idx.LastVars {
		require.False(t, contains(vs, 3))
	}
}
