// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package intern implements the per-"first variable" canonicalizing hash
// tables described in spec §4.3: one chained-bucket hashtable per variable,
// keyed by the smallest variable appearing in a bitset's content, with
// split-move rehashing on overflow and a free list that recycles retired
// bitset storage (a single arena-style allocator for the whole sweep,
// mirroring the "stackOfBitSetPtrs" of the original design).
package intern

import (
	"math/bits"

	gbitset "github.com/grailbio/modelcount/bitset"
)

const (
	initialCapacity = 4
	loadFactorNum   = 3
	loadFactorDen   = 4
)

// table is one variable's chained-bucket hashtable.
type table struct {
	buckets []*gbitset.Bitset
	count   int
}

// Tables owns every per-variable intern table plus the shared free list
// that recycles Bitset storage once a table is flushed.
type Tables struct {
	win    *gbitset.Window
	byVar  map[int]*table
	free   *gbitset.Bitset
	nAlloc int
	nFree  int
}

// New returns an empty set of intern tables operating against win.
func New(win *gbitset.Window) *Tables {
	return &Tables{win: win, byVar: make(map[int]*table)}
}

// Alloc returns a zeroed Bitset, preferring to recycle one from the free
// list before allocating fresh storage.
func (t *Tables) Alloc() *gbitset.Bitset {
	if t.free != nil {
		bs := t.free
		t.free = bs.Next
		bs.Next = nil
		return bs
	}
	t.nAlloc++
	return gbitset.New()
}

func (t *Tables) release(bs *gbitset.Bitset) {
	bs.Reset()
	bs.Next = t.free
	t.free = bs
	t.nFree++
}

// Free returns bs to the free list for recycling. Callers use this for
// scratch bitsets that were tried with Intern but turned out to duplicate
// an existing canonical entry (so bs itself was never adopted into a
// table) and for scratch bitsets discarded without ever being offered to
// Intern at all.
func (t *Tables) Free(bs *gbitset.Bitset) {
	t.release(bs)
}

func bucketIndex(hash, capacity int) int {
	return int(uint32(hash) & uint32(capacity-1))
}

func (t *Tables) tableFor(v int) *table {
	tb, ok := t.byVar[v]
	if !ok {
		tb = &table{buckets: make([]*gbitset.Bitset, initialCapacity)}
		t.byVar[v] = tb
	}
	return tb
}

// Intern canonicalizes bs: if a bitset with equal (length, bits) already
// exists in the table for bs's first variable, that canonical bitset is
// returned and bs is not inserted; otherwise bs is inserted and returned
// (spec §4.3, testable property 1: intern(bs) == bs for an already-interned
// bs).
func (t *Tables) Intern(bs *gbitset.Bitset) *gbitset.Bitset {
	first := bs.FirstSetBit(t.win)
	v := 0
	if first >= 0 {
		v = gbitset.BitPosToVar(first)
	}
	bs.HashCode = bs.ComputeHash()
	tb := t.tableFor(v)

	idx := bucketIndex(bs.HashCode, len(tb.buckets))
	for cur := tb.buckets[idx]; cur != nil; cur = cur.Next {
		if cur.HashCode == bs.HashCode && gbitset.Equal(cur, bs) {
			return cur
		}
	}

	bs.Next = tb.buckets[idx]
	tb.buckets[idx] = bs
	tb.count++
	bs.SavedSize = bs.Cardinality()

	if tb.count*loadFactorDen > len(tb.buckets)*loadFactorNum {
		t.grow(tb)
	}
	return bs
}

// grow doubles tb's bucket array and redistributes entries by split-move
// rehashing: an entry moves from bucket i to bucket i+oldCapacity iff bit
// log2(oldCapacity) of its hash code is 1 (spec §4.3).
func (t *Tables) grow(tb *table) {
	oldCap := len(tb.buckets)
	splitBit := uint(bits.TrailingZeros(uint(oldCap)))
	newBuckets := make([]*gbitset.Bitset, oldCap*2)
	for i := 0; i < oldCap; i++ {
		var lo, hi *gbitset.Bitset
		cur := tb.buckets[i]
		for cur != nil {
			next := cur.Next
			if (uint32(cur.HashCode)>>splitBit)&1 == 1 {
				cur.Next = hi
				hi = cur
			} else {
				cur.Next = lo
				lo = cur
			}
			cur = next
		}
		newBuckets[i] = lo
		newBuckets[i+oldCap] = hi
	}
	tb.buckets = newBuckets
}

// FlushVars deletes, all at once, every bitset whose table is keyed by one
// of vars, returning their storage to the free list (spec §4.3's
// flushVars: "an entry moves iff..." rehash happens on growth only; flush
// always frees the whole per-variable table).
func (t *Tables) FlushVars(vars []int) {
	for _, v := range vars {
		tb, ok := t.byVar[v]
		if !ok {
			continue
		}
		for _, head := range tb.buckets {
			for head != nil {
				next := head.Next
				t.release(head)
				head = next
			}
		}
		delete(t.byVar, v)
	}
}

// Len returns the number of canonical bitsets currently interned for
// variable v (0 if v has no table).
func (t *Tables) Len(v int) int {
	tb, ok := t.byVar[v]
	if !ok {
		return 0
	}
	return tb.count
}
