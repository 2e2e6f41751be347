// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package bitset_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	gbitset "github.com/grailbio/modelcount/bitset"
)

func TestSetIsSetClear(t *testing.T) {
	w := &gbitset.Window{}
	bs := gbitset.New()
	require.False(t, bs.IsSet(w, 10))
	bs.Set(w, 10)
	require.True(t, bs.IsSet(w, 10))
	bs.Set(w, 200)
	require.True(t, bs.IsSet(w, 200))
	bs.Clear(w, 10)
	require.False(t, bs.IsSet(w, 10))
	require.True(t, bs.IsSet(w, 200))
}

func TestCardinalityAndEqual(t *testing.T) {
	w := &gbitset.Window{}
	a := gbitset.New()
	b := gbitset.New()
	for _, bit := range []int{4, 8, 130} {
		a.Set(w, bit)
		b.Set(w, bit)
	}
	require.Equal(t, 3, a.Cardinality())
	require.True(t, gbitset.Equal(a, b))
	b.Set(w, 9)
	require.False(t, gbitset.Equal(a, b))
}

func TestCopyOrAndNotIntersects(t *testing.T) {
	w := &gbitset.Window{}
	a := gbitset.New()
	b := gbitset.New()
	a.Set(w, 2)
	a.Set(w, 66)
	b.Set(w, 3)
	b.Set(w, 66)

	or := gbitset.New()
	gbitset.CopyOr(or, a, b)
	require.True(t, or.IsSet(w, 2))
	require.True(t, or.IsSet(w, 3))
	require.True(t, or.IsSet(w, 66))
	require.True(t, gbitset.Intersects(a, b))

	gbitset.AndNot(or, b)
	require.True(t, or.IsSet(w, 2))
	require.False(t, or.IsSet(w, 3))
	require.False(t, or.IsSet(w, 66))
}

func TestNextLastFirstSetBit(t *testing.T) {
	w := &gbitset.Window{}
	bs := gbitset.New()
	require.Equal(t, -1, bs.LastSetBit(w))
	require.Equal(t, -1, bs.FirstSetBit(w))

	bs.Set(w, 5)
	bs.Set(w, 70)
	bs.Set(w, 200)
	require.Equal(t, 5, bs.FirstSetBit(w))
	require.Equal(t, 200, bs.LastSetBit(w))
	require.Equal(t, 70, bs.NextSetBit(w, 6))
	require.Equal(t, -1, bs.NextSetBit(w, bs.LastSetBit(w)+1))
}

func TestMakeNegBitSet(t *testing.T) {
	w := &gbitset.Window{}
	bs := gbitset.New()
	neg := gbitset.New()
	// LitToBitPos(1) = 3 (odd, positive); LitToBitPos(-2) = 4 (even, negative).
	bs.Set(w, gbitset.LitToBitPos(1))
	bs.Set(w, gbitset.LitToBitPos(-2))
	gbitset.MakeNegBitSet(w, neg, bs)

	require.False(t, gbitset.Intersects(bs, neg))
	require.Equal(t, bs.Cardinality(), neg.Cardinality())
	require.True(t, neg.IsSet(w, gbitset.LitToBitPos(-1)))
	require.True(t, neg.IsSet(w, gbitset.LitToBitPos(2)))
}

func TestReduceWindowAdvance(t *testing.T) {
	w := &gbitset.Window{}
	bs := gbitset.New()
	bs.Set(w, 70) // word 1
	bs.Set(w, 200)

	gbitset.Reduce(bs, 1)
	w.UnusedWords = 1

	require.True(t, bs.IsSet(w, 70))
	require.True(t, bs.IsSet(w, 200))
	require.False(t, bs.IsSet(w, 5))
}

func TestTrailingZeroTrimInvariant(t *testing.T) {
	w := &gbitset.Window{}
	bs := gbitset.New()
	bs.Set(w, 5)
	bs.Set(w, 70)
	bs.Clear(w, 70)
	// length must shrink back to cover only the highest remaining word.
	require.Equal(t, 5, bs.LastSetBit(w))
}

func TestComputeHashContentOnly(t *testing.T) {
	w := &gbitset.Window{}
	a := gbitset.New()
	b := gbitset.New()
	for _, bit := range []int{3, 9, 500, 900} {
		a.Set(w, bit)
	}
	for _, bit := range []int{900, 500, 9, 3} {
		b.Set(w, bit)
	}
	require.True(t, gbitset.Equal(a, b))
	require.Equal(t, a.ComputeHash(), b.ComputeHash())

	b.Set(w, 901)
	require.NotEqual(t, a.ComputeHash(), b.ComputeHash())
}

func TestLitToBitPosRoundTrip(t *testing.T) {
	require.Equal(t, 3, gbitset.LitToBitPos(1))
	require.Equal(t, 2, gbitset.LitToBitPos(-1))
	require.True(t, gbitset.BitPosIsPositive(gbitset.LitToBitPos(5)))
	require.False(t, gbitset.BitPosIsPositive(gbitset.LitToBitPos(-5)))
	require.Equal(t, 5, gbitset.BitPosToVar(gbitset.LitToBitPos(5)))
	require.Equal(t, 5, gbitset.BitPosToVar(gbitset.LitToBitPos(-5)))
}
