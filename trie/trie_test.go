// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package trie_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grailbio/modelcount/bitset"
	"github.com/grailbio/modelcount/trie"
)

func TestContainsSubsetOfEmptyTrie(t *testing.T) {
	w := &bitset.Window{}
	bs := bitset.New()
	bs.Set(w, 3)
	tr := trie.New()
	require.False(t, tr.ContainsSubsetOf(w, bs))
}

func TestContainsSubsetOfExactMatch(t *testing.T) {
	w := &bitset.Window{}
	tr := trie.New()
	tr.Insert([]int{2, 5, 9})

	bs := bitset.New()
	bs.Set(w, 2)
	bs.Set(w, 5)
	bs.Set(w, 9)
	require.True(t, tr.ContainsSubsetOf(w, bs))
}

func TestContainsSubsetOfSuperset(t *testing.T) {
	w := &bitset.Window{}
	tr := trie.New()
	tr.Insert([]int{2, 5})

	bs := bitset.New()
	bs.Set(w, 2)
	bs.Set(w, 5)
	bs.Set(w, 9) // bs has an extra bit; inserted clause is still a subset
	require.True(t, tr.ContainsSubsetOf(w, bs))
}

func TestContainsSubsetOfMissingBit(t *testing.T) {
	w := &bitset.Window{}
	tr := trie.New()
	tr.Insert([]int{2, 5, 9})

	bs := bitset.New()
	bs.Set(w, 2)
	bs.Set(w, 9) // missing 5
	require.False(t, tr.ContainsSubsetOf(w, bs))
}

func TestContainsSubsetOfMultipleClausesSharedPrefix(t *testing.T) {
	w := &bitset.Window{}
	tr := trie.New()
	tr.Insert([]int{2, 5})
	tr.Insert([]int{2, 9})
	tr.Insert([]int{3, 9})

	bs := bitset.New()
	bs.Set(w, 2)
	bs.Set(w, 9)
	require.True(t, tr.ContainsSubsetOf(w, bs))

	bs2 := bitset.New()
	bs2.Set(w, 2)
	bs2.Set(w, 7)
	require.False(t, tr.ContainsSubsetOf(w, bs2))
}

func TestContainsSubsetOfPrunesPastLastSetBit(t *testing.T) {
	w := &bitset.Window{}
	tr := trie.New()
	tr.Insert([]int{2, 100})

	bs := bitset.New()
	bs.Set(w, 2) // last set bit is 2, well below the inserted clause's 100
	require.False(t, tr.ContainsSubsetOf(w, bs))
}

func TestContainsSubsetOfEmptyClauseAlwaysMatches(t *testing.T) {
	w := &bitset.Window{}
	tr := trie.New()
	tr.Insert(nil) // the empty literal set is a subset of anything

	bs := bitset.New()
	bs.Set(w, 4)
	require.True(t, tr.ContainsSubsetOf(w, bs))

	empty := bitset.New()
	require.True(t, tr.ContainsSubsetOf(w, empty))
}
