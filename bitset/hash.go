// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bitset

// primes is the fixed table of large odd primes used by the content hash
// (spec §4.2); ComputeHash uses the first 21 of its 22 entries. Values are
// unrelated to any particular machine word size; they only need to be odd
// and large enough to spread bits well.
var primes = [22]uint64{
	0x9E3779B97F4A7C55, 0xC2B2AE3D27D4EB4F, 0x165667B19E3779F9,
	0xD6E8FEB86659FD99, 0xA24BAED4963EE40D, 0x9FB21C651E98DF25,
	0xFF51AFD7ED558CCD, 0xC4CEB9FE1A85ECCD, 0x2545F4914F6CDD3B,
	0x94D049BB13311243, 0xBF58476D1CE4E5FF, 0x589965CC75374CC3,
	0x1D8E4E27C47D124F, 0xEB44ACCAB455D165, 0x2127599BF4325C3B,
	0xB5297A4EF27C7B57, 0x68E31DA4877D5F59, 0x3F2C4B1E9A7D5E07,
	0x5851F42D4C957F65, 0x14057B7EF7678155, 0xA3C59AC2F6F1E9B3,
	0x9C06FAF4D023E3AB,
}

// shuffle mixes the high bits of w into its low bits, per §4.2's σ.
func shuffle(w uint64) uint64 {
	return w ^ (w >> 16) ^ (w >> 32) ^ (w >> 48)
}

// ComputeHash computes the content hash of bs per spec §4.2: it depends
// only on (length, bits), so equal bitsets hash equally regardless of
// allocation history (testable property 1/2's precondition).
func (bs *Bitset) ComputeHash() int {
	if bs.length == 0 {
		return 0
	}
	s := 0
	for bs.words[s] == 0 {
		s++
	}
	e := bs.length - 1
	h := shuffle(bs.words[s]) * primes[0]
	limit := e
	if s+20 < limit {
		limit = s + 20
	}
	for p := s + 1; p <= limit; p++ {
		h ^= shuffle(bs.words[p]) * primes[p-s]
	}
	return int(int32(uint32(h) ^ uint32(h>>32)))
}

// LitToBitPos maps a DIMACS literal to its bit position per spec §3:
// LIT2BITPOS(l) = 2*|l|+1 if l>0, else 2*|l|. Positions 0 and 1 are unused
// sentinels, reserved by construction since variables are numbered from 1.
func LitToBitPos(lit int) int {
	v := lit
	if v < 0 {
		v = -v
	}
	if lit > 0 {
		return 2*v + 1
	}
	return 2 * v
}

// BitPosToVar returns the variable (1-based) a bit position belongs to.
func BitPosToVar(pos int) int {
	return pos / 2
}

// BitPosIsPositive reports whether pos corresponds to a positive literal.
func BitPosIsPositive(pos int) bool {
	return pos%2 == 1
}
