// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package bigint_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grailbio/modelcount/bigint"
)

func TestZeroAndSign(t *testing.T) {
	var zero bigint.Int
	require.True(t, zero.Zero())
	require.Equal(t, 0, zero.Sign())

	one := bigint.FromInt64(1)
	require.False(t, one.Zero())
	require.Equal(t, 1, one.Sign())

	neg := bigint.FromInt64(-5)
	require.Equal(t, -1, neg.Sign())
}

func TestAddSubNeg(t *testing.T) {
	a := bigint.FromInt64(7)
	b := bigint.FromInt64(3)
	require.Equal(t, "10", bigint.Add(a, b).String())
	require.Equal(t, "4", bigint.Sub(a, b).String())
	require.Equal(t, "-7", bigint.Neg(a).String())
}

func TestMulAndPowerOfTwo(t *testing.T) {
	require.Equal(t, "8", bigint.PowerOfTwo(3).String())
	a := bigint.FromInt64(6)
	require.Equal(t, "48", bigint.Mul(a, bigint.PowerOfTwo(3)).String())
}

func TestLshRsh(t *testing.T) {
	a := bigint.FromInt64(5)
	require.Equal(t, "40", bigint.Lsh(a, 3).String())
	require.Equal(t, "5", bigint.Rsh(bigint.Lsh(a, 3), 3).String())
}

func TestRshPreservesSignForNegatives(t *testing.T) {
	// Rsh must round negative contribution deltas toward zero (spec §4.7's
	// combine phase), not toward minus infinity like math/big's Rsh.
	a := bigint.FromInt64(-40)
	require.Equal(t, "-5", bigint.Rsh(a, 3).String())
	require.Equal(t, "-40", bigint.Rsh(a, 0).String())
}

func TestCmp(t *testing.T) {
	a := bigint.FromInt64(3)
	b := bigint.FromInt64(5)
	require.Equal(t, -1, bigint.Cmp(a, b))
	require.Equal(t, 1, bigint.Cmp(b, a))
	require.Equal(t, 0, bigint.Cmp(a, a))
}
