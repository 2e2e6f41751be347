// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package bitset implements the windowed, content-hashed bit-indexed set
// (spec §3, §4.2, C2): each literal occupies a fixed global bit position,
// and a Bitset tracks which of those positions are set using a
// trailing-zero-trimmed []uint64 whose low-order words are elided as the
// sweep's Window advances.
package bitset
