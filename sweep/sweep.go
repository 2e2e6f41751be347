// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package sweep implements the main inclusion-exclusion loop over clauses
// (spec §4.7, C9): it maintains a double-buffered blocklist of canonical,
// contribution-bearing bitsets and advances it one clause at a time,
// applying the shift/retire/trie-build/combine/window-advance/table-flush
// phases in the order the correctness of the algorithm depends on (spec
// §5, "phases 1-8 are executed in the order given").
package sweep

import (
	"fmt"

	"github.com/grailbio/modelcount/bigint"
	"github.com/grailbio/modelcount/bitset"
	"github.com/grailbio/modelcount/clauseindex"
	"github.com/grailbio/modelcount/cnf"
	"github.com/grailbio/modelcount/intern"
	"github.com/grailbio/modelcount/progress"
	"github.com/grailbio/modelcount/trie"
)

// combinePollInterval is the number of combine-phase operations between
// polls of the caller-supplied cancellation check (spec §5, "every N
// combine operations (N ≈ 10^5)").
const combinePollInterval = 100000

// wordBits is the number of variables whose bit positions fill one storage
// word: each variable occupies two bit positions and a word holds 64 bits,
// so word k holds variables 32k..32k+31 (spec §4.7 step 5, "every group of
// wordLength/2 = 32 fully-processed variables"). A word is freed once every
// variable it holds has retired.
const wordBits = 64 / 2

// Result is the outcome of a completed (or aborted) sweep.
type Result struct {
	// Count is contribution(emptyBitSet) at the end of the sweep, before
	// the 2^unusedVariables scale-up the caller applies (spec §4.7's
	// "final answer").
	Count bigint.Int
	// Operations is the number of combine-phase candidate evaluations
	// performed, reported as c o OPERATIONS=<N>.
	Operations int64
}

// Engine owns every piece of process-wide mutable state the sweep
// touches: the clause-indexed bitsets, the intern tables, the storage
// window, and the scratch singletons (spec §9, "Rearchitect as a single
// Engine value that owns them; no other globals should survive").
type Engine struct {
	store *cnf.Store
	index *clauseindex.Index
	win   *bitset.Window
	tables *intern.Tables

	clauseBitsets []*bitset.Bitset // one per clause, by Pos
	varClauses    [][]*cnf.Clause  // occurrence list, by variable

	clauseSet     []*bitset.Bitset
	nextClauseSet []*bitset.Bitset

	// Scratch singletons owned by the engine for the lifetime of the
	// sweep (spec §3, "Scratch bitsets... are singletons owned by the
	// sweep engine").
	toRemove *bitset.Bitset
	negBS    *bitset.Bitset

	retired       []bool // retired[v] once v's last clause has been swept
	retiredPrefix int    // variables 1..retiredPrefix have all retired
	operations    int64

	// trace is the --trace bitmask (progress.TraceDumpClauses/
	// TraceDumpBitsets); zero by default, so dumping costs nothing unless
	// explicitly requested.
	trace int
}

// SetTrace sets the --trace bitmask consulted by step's per-clause debug
// dumps (spec §6, bits 3 and 4).
func (e *Engine) SetTrace(trace int) {
	e.trace = trace
}

// New builds an Engine over store's clauses, using idx's first/last
// variable maps. store must already be preprocessed (unit-propagated,
// region-reordered) and idx built from the same, frozen clause set.
func New(store *cnf.Store, idx *clauseindex.Index) *Engine {
	win := &bitset.Window{}
	e := &Engine{
		store:    store,
		index:    idx,
		win:      win,
		tables:   intern.New(win),
		toRemove: bitset.New(),
		negBS:    bitset.New(),
	}
	e.clauseBitsets = make([]*bitset.Bitset, len(store.Clauses))
	e.varClauses = make([][]*cnf.Clause, store.NumVars+1)
	for _, c := range store.Clauses {
		bs := bitset.New()
		for _, l := range c.Lits {
			bs.Set(win, bitset.LitToBitPos(l))
			v := bitset.BitPosToVar(bitset.LitToBitPos(l))
			e.varClauses[v] = append(e.varClauses[v], c)
		}
		e.clauseBitsets[c.Pos] = bs
	}
	return e
}

func clauseBitPositions(c *cnf.Clause) []int {
	out := make([]int, len(c.Lits))
	for i, l := range c.Lits {
		out[i] = bitset.LitToBitPos(l)
	}
	return out
}

// Run executes the sweep to completion, polling check (if non-nil) at
// every step boundary and every combinePollInterval combine operations;
// if check returns a non-nil error, Run stops and returns it along with
// the Operations count accumulated so far.
func (e *Engine) Run(check func() error) (Result, error) {
	empty := bitset.New()
	empty.Contribution = bigint.FromInt64(1)
	e.tables.Intern(empty)
	e.clauseSet = []*bitset.Bitset{empty}

	for pos, clause := range e.store.Clauses {
		if check != nil {
			if err := check(); err != nil {
				return Result{Operations: e.operations}, err
			}
		}
		if err := e.step(pos, clause, check); err != nil {
			return Result{Operations: e.operations}, err
		}
	}

	var count bigint.Int
	if len(e.clauseSet) > 0 {
		count = e.clauseSet[0].Contribution
	}
	return Result{Count: count, Operations: e.operations}, nil
}

func (e *Engine) step(pos int, thisClause *cnf.Clause, check func() error) error {
	if e.trace&progress.TraceDumpClauses != 0 {
		progress.DumpClauses(pos, thisClause.Lits)
	}
	if e.trace&progress.TraceDumpBitsets != 0 {
		dump := make([]string, len(e.clauseSet))
		for i, bs := range e.clauseSet {
			dump[i] = fmt.Sprintf("{contribution=%s bits=%v}", bs.Contribution.String(), bs.Bits(e.win))
		}
		progress.DumpBitsets(pos, dump)
	}

	thisBitSet := e.clauseBitsets[pos]
	e.negBS.ClearAll()
	bitset.MakeNegBitSet(e.win, e.negBS, thisBitSet)

	// Phase 1: shift.
	shift := uint(e.index.NumFirstVars[pos])
	for _, bs := range e.clauseSet {
		bs.PreviousContribution = bs.Contribution
		if shift > 0 {
			bs.Contribution = bigint.Mul(bs.Contribution, bigint.PowerOfTwo(shift))
		}
	}

	lastVars := e.index.LastVars[pos]
	e.nextClauseSet = e.nextClauseSet[:0]

	// Phase 2: retire.
	if len(lastVars) == 0 {
		e.nextClauseSet = append(e.nextClauseSet, e.clauseSet...)
		for _, bs := range e.clauseSet {
			bs.PosAdded = pos
		}
	} else {
		e.toRemove.ClearAll()
		for _, v := range lastVars {
			e.toRemove.Set(e.win, 2*v)
			e.toRemove.Set(e.win, 2*v+1)
		}
		for _, bs := range e.clauseSet {
			if bs.PreviousContribution.Zero() {
				continue
			}
			cand := e.tables.Alloc()
			bitset.Copy(cand, bs)
			bitset.AndNot(cand, e.toRemove)
			if bitset.Equal(cand, bs) {
				e.tables.Free(cand)
				if bs.PosAdded < pos {
					e.nextClauseSet = append(e.nextClauseSet, bs)
					bs.PosAdded = pos
				}
				continue
			}
			next := e.tables.Intern(cand)
			if next != cand {
				e.tables.Free(cand)
			}
			next.Contribution = bigint.Add(next.Contribution, bs.Contribution)
			if next.PosAdded < pos {
				e.nextClauseSet = append(e.nextClauseSet, next)
				next.PosAdded = pos
			}
		}
	}

	// Phase 3: trie build.
	thisTree := trie.New()
	for _, l := range thisClause.Lits {
		v := bitset.BitPosToVar(bitset.LitToBitPos(l))
		for _, other := range e.varClauses[v] {
			if other.Pos <= pos || other.PosAdded >= pos {
				continue
			}
			if bitset.Intersects(e.negBS, e.clauseBitsets[other.Pos]) {
				continue
			}
			other.PosAdded = pos
			thisTree.Insert(clauseBitPositions(other))
		}
	}

	// Phase 4: combine.
	if !thisTree.ContainsSubsetOf(e.win, thisBitSet) {
		for _, otherBitSet := range e.clauseSet {
			if otherBitSet.PreviousContribution.Zero() {
				continue
			}
			e.operations++
			if check != nil && e.operations%combinePollInterval == 0 {
				if err := check(); err != nil {
					return err
				}
			}
			if bitset.Intersects(otherBitSet, e.negBS) {
				continue
			}
			full := e.tables.Alloc()
			bitset.CopyOr(full, thisBitSet, otherBitSet)
			extra := full.Cardinality() - otherBitSet.SavedSize
			if len(lastVars) > 0 {
				bitset.AndNot(full, e.toRemove)
			}
			if thisTree.ContainsSubsetOf(e.win, full) {
				e.tables.Free(full)
				continue
			}
			delta := bigint.Neg(bigint.Rsh(bigint.Lsh(otherBitSet.PreviousContribution, shift), uint(extra)))

			next := e.tables.Intern(full)
			if next != full {
				e.tables.Free(full)
			}
			if next.PosAdded == pos {
				next.Contribution = bigint.Add(next.Contribution, delta)
			} else {
				next.Contribution = delta
				e.nextClauseSet = append(e.nextClauseSet, next)
				next.PosAdded = pos
			}
		}
	}

	// Phase 5: window advance.
	if len(lastVars) > 0 {
		if e.retired == nil {
			e.retired = make([]bool, e.store.NumVars+2)
		}
		for _, v := range lastVars {
			e.retired[v] = true
		}
		for e.retired[e.retiredPrefix+1] {
			e.retiredPrefix++
		}
		// Variable 0 is never used, so words 0..k-1 are free once
		// variables 1..32k-1 have all retired.
		newUnused := (e.retiredPrefix + 1) / wordBits
		delta := newUnused - e.win.UnusedWords
		if delta > 0 {
			e.win.UnusedWords += delta
			bitset.Reduce(e.toRemove, delta)
			bitset.Reduce(e.negBS, delta)
			for _, bs := range e.clauseSet {
				if bs.PosAdded != pos { // entries also in nextClauseSet are reduced below
					bitset.Reduce(bs, delta)
				}
			}
			for _, bs := range e.nextClauseSet {
				bitset.Reduce(bs, delta)
			}
			for p := pos + 1; p < len(e.clauseBitsets); p++ {
				bitset.Reduce(e.clauseBitsets[p], delta)
			}
		}
	}

	// Phase 6: retirement of tables.
	if len(lastVars) > 0 {
		e.tables.FlushVars(lastVars)
	}

	// Phase 7: free trie (garbage collected; thisTree goes out of scope).
	// Phase 8: swap buffers.
	e.clauseSet, e.nextClauseSet = e.nextClauseSet, e.clauseSet
	return nil
}

// Operations returns the running combine-operation counter, for c o
// OPERATIONS= progress reporting mid-run.
func (e *Engine) Operations() int64 {
	return e.operations
}
