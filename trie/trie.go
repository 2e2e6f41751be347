// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package trie implements the literal trie (spec §4.6, C8): a ternary
// decision tree over clauses' sorted literal bit positions, used by the
// sweep to test subset-containment ("is some inserted clause's literal set
// a subset of this bitset?"). A trie is built fresh at every sweep step
// from the clauses eligible at that step and discarded at the step's end
// (spec §3, "owned per sweep step").
package trie

import "github.com/grailbio/modelcount/bitset"

type kind int

const (
	emptyKind kind = iota
	sentinelKind
	nodeKind
)

// node is the trie's tagged variant {Empty, Sentinel, Node(lit, bitPos,
// present, absent)} (spec §9, "Dynamic dispatch... a tagged variant"). A
// nil *node is Empty. absent chains siblings at the same depth (other
// clauses' alternatives); present descends into the subtree matching the
// rest of one clause's literals once bitPos is consumed.
type node struct {
	kind    kind
	bitPos  int
	present *node
	absent  *node
}

// Trie is the root of a literal trie, rebuilt fresh each sweep step.
type Trie struct {
	root *node
}

// New returns an empty trie.
func New() *Trie {
	return &Trie{}
}

// Insert adds a clause whose literals occupy bitPositions, given in the
// clause's sorted literal order, to t.
func (t *Trie) Insert(bitPositions []int) {
	t.root = insert(t.root, bitPositions)
}

func insert(n *node, positions []int) *node {
	if len(positions) == 0 {
		return ensureSentinel(n)
	}
	return ensureNode(n, positions[0], positions[1:])
}

func ensureSentinel(n *node) *node {
	if n == nil {
		return &node{kind: sentinelKind}
	}
	if n.kind == sentinelKind {
		return n
	}
	n.absent = ensureSentinel(n.absent)
	return n
}

func ensureNode(n *node, pos int, rest []int) *node {
	if n == nil {
		nn := &node{kind: nodeKind, bitPos: pos}
		nn.present = insert(nil, rest)
		return nn
	}
	if n.kind == nodeKind && n.bitPos == pos {
		n.present = insert(n.present, rest)
		return n
	}
	n.absent = ensureNode(n.absent, pos, rest)
	return n
}

// ContainsSubsetOf reports whether any inserted clause's literal set is a
// subset of bs's set bits: clause ⊆ bs. The search recurses using
// lastSetBit(bs) as an upper bound, pruning whenever a node's bitPos
// exceeds it — no set bit can exist past the last one (spec §4.6).
func (t *Trie) ContainsSubsetOf(w *bitset.Window, bs *bitset.Bitset) bool {
	last := bs.LastSetBit(w)
	return containsSubsetOf(t.root, w, bs, last)
}

func containsSubsetOf(n *node, w *bitset.Window, bs *bitset.Bitset, last int) bool {
	for n != nil {
		switch n.kind {
		case sentinelKind:
			return true
		case nodeKind:
			if n.bitPos <= last && bs.IsSet(w, n.bitPos) && containsSubsetOf(n.present, w, bs, last) {
				return true
			}
		}
		n = n.absent
	}
	return false
}
