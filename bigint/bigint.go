// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package bigint provides the narrow arbitrary-precision integer facade
// used by the sweep engine: shift, add, subtract, negate, sign, and decimal
// I/O. Everything else about the underlying representation is deliberately
// hidden behind this type so that the engine never depends on math/big's
// much larger API.
package bigint

import "math/big"

// Int is a signed arbitrary-precision integer. The zero Int is zero.
type Int struct {
	v big.Int
}

// FromInt64 returns the Int with value n.
func FromInt64(n int64) Int {
	var i Int
	i.v.SetInt64(n)
	return i
}

// Zero reports whether i is zero.
func (i Int) Zero() bool {
	return i.v.Sign() == 0
}

// Sign returns -1, 0, or 1 depending on whether i is negative, zero, or
// positive.
func (i Int) Sign() int {
	return i.v.Sign()
}

// Add returns a+b.
func Add(a, b Int) Int {
	var r Int
	r.v.Add(&a.v, &b.v)
	return r
}

// Sub returns a-b.
func Sub(a, b Int) Int {
	var r Int
	r.v.Sub(&a.v, &b.v)
	return r
}

// Neg returns -a.
func Neg(a Int) Int {
	var r Int
	r.v.Neg(&a.v)
	return r
}

// Lsh returns a shifted left (multiplied by 2^n) by n bits. n must be >= 0.
func Lsh(a Int, n uint) Int {
	var r Int
	r.v.Lsh(&a.v, n)
	return r
}

// Rsh returns a shifted right (divided by 2^n, rounding toward zero) by n
// bits, preserving sign. n must be >= 0. Contribution values may be
// negative (see §4.7's delta computation), so this shifts the magnitude and
// reapplies the sign, rather than using math/big's floor-based Rsh (which
// rounds negative values toward minus infinity).
func Rsh(a Int, n uint) Int {
	if n == 0 {
		return a
	}
	if a.v.Sign() >= 0 {
		var r Int
		r.v.Rsh(&a.v, n)
		return r
	}
	var neg, shifted Int
	neg.v.Neg(&a.v)
	shifted.v.Rsh(&neg.v, n)
	return Neg(shifted)
}

// Mul returns a*b.
func Mul(a, b Int) Int {
	var r Int
	r.v.Mul(&a.v, &b.v)
	return r
}

// PowerOfTwo returns 2^n as an Int.
func PowerOfTwo(n uint) Int {
	var r Int
	r.v.Lsh(big.NewInt(1), n)
	return r
}

// String returns the decimal representation of i.
func (i Int) String() string {
	return i.v.String()
}

// Cmp compares a and b, returning -1, 0, or 1 per the usual convention.
func Cmp(a, b Int) int {
	return a.v.Cmp(&b.v)
}
