// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bitset

import (
	"math/bits"

	"github.com/grailbio/modelcount/bigint"
)

// Window tracks the process-wide count of low-order words that have been
// elided from every live Bitset's storage (spec §3, "unusedWords"). It is
// owned by the sweep engine and advances monotonically as variables retire.
type Window struct {
	// UnusedWords is the number of 64-bit words, counted from word 0 of the
	// logical (global) bit space, that have been dropped from storage.
	UnusedWords int
}

// globalWord/globalBit split a global bit index into its word and in-word
// bit offset, ignoring windowing.
func globalWord(bit int) int { return bit >> 6 }
func globalBitOff(bit int) uint {
	return uint(bit) & 63
}

// storedWord returns the index into a Bitset's words slice that holds the
// given global bit, given the current window.
func (w *Window) storedWord(bit int) int {
	return globalWord(bit) - w.UnusedWords
}

// Bitset is a bit-indexed subset of {0,...,2*(V+1)-1}, stored as a
// windowed, trailing-zero-trimmed array of 64-bit words (spec §3, §4.2). A
// Bitset additionally carries the sweep's per-assignment bookkeeping:
// Contribution, PreviousContribution, SavedSize, HashCode and PosAdded.
//
// The zero Bitset is the empty bitset (length 0, no words), ready to use.
type Bitset struct {
	words []uint64 // words[i] holds global word (i + window.UnusedWords)
	// length is the index of the highest nonzero word in words, plus one;
	// 0 if words is entirely zero. Invariant maintained at every mutation.
	length int

	Contribution         bigint.Int
	PreviousContribution bigint.Int
	SavedSize            int
	HashCode             int
	PosAdded             int

	// Next chains this Bitset into an intern-table bucket, and also links
	// free (recycled) Bitsets in the intern table's free list.
	Next *Bitset
}

// New returns a new, empty Bitset with PosAdded set to -1 (the sentinel for
// "never touched this sweep", per spec §3/§4.7).
func New() *Bitset {
	return &Bitset{PosAdded: -1}
}

// Reset clears bs back to the empty Bitset, preserving its Next link (used
// when recycling a Bitset from a free list).
func (bs *Bitset) Reset() {
	for i := range bs.words {
		bs.words[i] = 0
	}
	bs.words = bs.words[:0]
	bs.length = 0
	bs.Contribution = bigint.Int{}
	bs.PreviousContribution = bigint.Int{}
	bs.SavedSize = 0
	bs.HashCode = 0
	bs.PosAdded = -1
}

// EnsureSize grows bs's storage so that it can hold at least nWords words,
// without changing bs's logical length.
func (bs *Bitset) EnsureSize(nWords int) {
	if cap(bs.words) >= nWords {
		if len(bs.words) < nWords {
			bs.words = bs.words[:nWords]
			for i := bs.length; i < nWords; i++ {
				bs.words[i] = 0
			}
		}
		return
	}
	grown := make([]uint64, nWords)
	copy(grown, bs.words)
	bs.words = grown
}

func (bs *Bitset) trim() {
	n := len(bs.words)
	for n > 0 && bs.words[n-1] == 0 {
		n--
	}
	bs.length = n
	bs.words = bs.words[:n]
}

// Set sets the given global bit.
func (bs *Bitset) Set(w *Window, bit int) {
	wordIdx := w.storedWord(bit)
	if wordIdx >= len(bs.words) {
		bs.EnsureSize(wordIdx + 1)
	}
	bs.words[wordIdx] |= 1 << globalBitOff(bit)
	if wordIdx+1 > bs.length {
		bs.length = wordIdx + 1
	}
}

// IsSet reports whether the given global bit is set.
func (bs *Bitset) IsSet(w *Window, bit int) bool {
	wordIdx := w.storedWord(bit)
	if wordIdx < 0 || wordIdx >= len(bs.words) {
		return false
	}
	return bs.words[wordIdx]&(1<<globalBitOff(bit)) != 0
}

// Clear clears the given global bit.
func (bs *Bitset) Clear(w *Window, bit int) {
	wordIdx := w.storedWord(bit)
	if wordIdx < 0 || wordIdx >= len(bs.words) {
		return
	}
	bs.words[wordIdx] &^= 1 << globalBitOff(bit)
	if wordIdx+1 == bs.length {
		bs.trim()
	}
}

// ClearAll clears every bit in bs.
func (bs *Bitset) ClearAll() {
	for i := range bs.words {
		bs.words[i] = 0
	}
	bs.words = bs.words[:0]
	bs.length = 0
}

// Cardinality returns the number of set bits (popcount).
func (bs *Bitset) Cardinality() int {
	n := 0
	for _, word := range bs.words[:bs.length] {
		n += bits.OnesCount64(word)
	}
	return n
}

// Copy overwrites dst's bits with src's.
func Copy(dst, src *Bitset) {
	dst.EnsureSize(src.length)
	for i := 0; i < src.length; i++ {
		dst.words[i] = src.words[i]
	}
	dst.length = src.length
	dst.words = dst.words[:dst.length]
}

// CopyOr sets dst to the bitwise OR of a and b.
func CopyOr(dst, a, b *Bitset) {
	n := a.length
	if b.length > n {
		n = b.length
	}
	dst.EnsureSize(n)
	dst.words = dst.words[:n]
	for i := 0; i < n; i++ {
		var aw, bw uint64
		if i < a.length {
			aw = a.words[i]
		}
		if i < b.length {
			bw = b.words[i]
		}
		dst.words[i] = aw | bw
	}
	dst.trim()
}

// AndNot computes dst &^= src in place (spec's andNot(dest, src)).
func AndNot(dst *Bitset, src *Bitset) {
	n := dst.length
	if src.length < n {
		n = src.length
	}
	for i := 0; i < n; i++ {
		dst.words[i] &^= src.words[i]
	}
	dst.trim()
}

// Equal reports whether a and b have identical (length, bits).
func Equal(a, b *Bitset) bool {
	if a.length != b.length {
		return false
	}
	for i := 0; i < a.length; i++ {
		if a.words[i] != b.words[i] {
			return false
		}
	}
	return true
}

// Intersects reports whether a and b share any set bit.
func Intersects(a, b *Bitset) bool {
	n := a.length
	if b.length < n {
		n = b.length
	}
	for i := 0; i < n; i++ {
		if a.words[i]&b.words[i] != 0 {
			return true
		}
	}
	return false
}

// NextSetBit returns the smallest global bit >= from that is set, or -1 if
// none exists (testable property 3: NextSetBit(lastSetBit+1) == -1).
func (bs *Bitset) NextSetBit(w *Window, from int) int {
	startWord := w.storedWord(from)
	if startWord < 0 {
		startWord = 0
		from = w.UnusedWords * 64
	}
	if startWord >= bs.length {
		return -1
	}
	word := bs.words[startWord] &^ ((uint64(1) << globalBitOff(from)) - 1)
	wordIdx := startWord
	for word == 0 {
		wordIdx++
		if wordIdx >= bs.length {
			return -1
		}
		word = bs.words[wordIdx]
	}
	return (wordIdx+w.UnusedWords)*64 + bits.TrailingZeros64(word)
}

// LastSetBit returns the global index of the highest set bit, or -1 if bs
// is empty.
func (bs *Bitset) LastSetBit(w *Window) int {
	if bs.length == 0 {
		return -1
	}
	word := bs.words[bs.length-1]
	return (bs.length-1+w.UnusedWords)*64 + 63 - bits.LeadingZeros64(word)
}

// FirstSetBit returns the global index of the lowest set bit, or -1 if bs
// is empty. Used by the intern table to key bs by its smallest variable.
func (bs *Bitset) FirstSetBit(w *Window) int {
	for i := 0; i < bs.length; i++ {
		if bs.words[i] != 0 {
			return (i+w.UnusedWords)*64 + bits.TrailingZeros64(bs.words[i])
		}
	}
	return -1
}

// Reduce drops the first k words of bs's storage (guaranteed zero by the
// caller, per the window advance in spec §4.7 step 5) and shrinks its
// stored length accordingly.
func Reduce(bs *Bitset, k int) {
	if k <= 0 {
		return
	}
	if k >= len(bs.words) {
		bs.words = bs.words[:0]
		bs.length = 0
		return
	}
	copy(bs.words, bs.words[k:])
	bs.words = bs.words[:len(bs.words)-k]
	if bs.length > k {
		bs.length -= k
	} else {
		bs.length = 0
	}
}

// Bits returns the sorted global bit positions currently set in bs. It
// exists for debug dumping (spec §6, --trace bit 4) and is not used on any
// hot path.
func (bs *Bitset) Bits(w *Window) []int {
	var out []int
	for i := 0; i < bs.length; i++ {
		word := bs.words[i]
		for word != 0 {
			lowBit := word & -word
			off := bits.TrailingZeros64(word)
			out = append(out, (i+w.UnusedWords)*64+off)
			word &^= lowBit
		}
	}
	return out
}

// MakeNegBitSet fills neg with the literal-negation of bs: for every set
// bit at an even position b (a negative literal), bit b+1 is set in neg;
// for an odd position (a positive literal), bit b-1 is set. By
// construction neg and bs never intersect (spec §4.2, testable property 6).
func MakeNegBitSet(w *Window, neg, bs *Bitset) {
	neg.ClearAll()
	for i := 0; i < bs.length; i++ {
		word := bs.words[i]
		for word != 0 {
			lowBit := word & -word
			off := bits.TrailingZeros64(word)
			global := (i+w.UnusedWords)*64 + off
			if global%2 == 0 {
				neg.Set(w, global+1)
			} else {
				neg.Set(w, global-1)
			}
			word &^= lowBit
		}
	}
}
