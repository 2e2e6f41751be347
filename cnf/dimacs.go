// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cnf

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/DataDog/zstd"
	"github.com/klauspost/compress/gzip"

	"github.com/grailbio/modelcount/errors"
)

var (
	gzipMagic = [2]byte{0x1f, 0x8b}
	zstdMagic = [4]byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Open opens path for reading a DIMACS CNF formula, transparently
// decompressing gzip- or zstd-compressed input (sniffed by magic bytes,
// SPEC_FULL.md domain stack #1). path of "-" or "" reads from stdin, per
// spec §6. The caller must Close the returned reader.
func Open(path string) (io.ReadCloser, error) {
	var f *os.File
	if path == "-" || path == "" {
		f = os.Stdin
	} else {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, errors.E(errors.NotExist, "opening CNF input", err)
		}
	}
	br := bufio.NewReader(f)
	magic, err := br.Peek(4)
	if err != nil && err != io.EOF {
		closeIfFile(f)
		return nil, errors.E(errors.Syntax, "reading CNF input header", err)
	}
	switch {
	case len(magic) >= 2 && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1]:
		gr, err := gzip.NewReader(br)
		if err != nil {
			closeIfFile(f)
			return nil, errors.E(errors.Syntax, "opening gzip CNF input", err)
		}
		return &readCloserChain{Reader: gr, closers: []io.Closer{gr, f}}, nil
	case len(magic) == 4 && magic[0] == zstdMagic[0] && magic[1] == zstdMagic[1] &&
		magic[2] == zstdMagic[2] && magic[3] == zstdMagic[3]:
		zr := zstd.NewReader(br)
		return &readCloserChain{Reader: zr, closers: []io.Closer{zr, f}}, nil
	default:
		return &readCloserChain{Reader: br, closers: []io.Closer{f}}, nil
	}
}

func closeIfFile(f *os.File) {
	if f != os.Stdin {
		f.Close()
	}
}

type readCloserChain struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloserChain) Close() error {
	var first error
	for _, c := range r.closers {
		if c == os.Stdin {
			continue
		}
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Parse reads a DIMACS CNF formula from r: a header "p cnf V C" followed by
// C clauses, each a whitespace-separated list of signed nonzero integers
// terminated by 0 (clauses may span multiple lines). Lines beginning with
// 'c' are comments and skipped. Syntax errors are reported with
// errors.Syntax (spec §6).
func Parse(r io.Reader) (*Store, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var numVars, numClauses int
	var sawHeader bool
	var store *Store
	var cur []int
	clausesRead := 0

	for sc.Scan() {
		line := sc.Text()
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "c" {
			continue
		}
		if fields[0] == "p" {
			if sawHeader {
				return nil, errors.E(errors.Syntax, "duplicate DIMACS header")
			}
			if len(fields) != 4 || fields[1] != "cnf" {
				return nil, errors.E(errors.Syntax, "expected 'p cnf V C' header")
			}
			v, err := strconv.Atoi(fields[2])
			if err != nil || v < 0 {
				return nil, errors.E(errors.Syntax, "invalid variable count", err)
			}
			c, err := strconv.Atoi(fields[3])
			if err != nil || c < 0 {
				return nil, errors.E(errors.Syntax, "invalid clause count", err)
			}
			numVars, numClauses = v, c
			sawHeader = true
			store = NewStore(numVars)
			continue
		}
		if !sawHeader {
			return nil, errors.E(errors.Syntax, "clause data before 'p cnf' header")
		}
		for _, tok := range fields {
			n, err := strconv.Atoi(tok)
			if err != nil {
				return nil, errors.E(errors.Syntax, "malformed literal", err)
			}
			if n == 0 {
				store.Add(cur)
				cur = nil
				clausesRead++
				continue
			}
			if abs(n) > numVars {
				return nil, errors.E(errors.Syntax, "literal exceeds declared variable count")
			}
			cur = append(cur, n)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.E(errors.Syntax, "reading CNF input", err)
	}
	if !sawHeader {
		return nil, errors.E(errors.Syntax, "missing 'p cnf V C' header")
	}
	if len(cur) != 0 {
		return nil, errors.E(errors.Syntax, "clause missing terminating 0")
	}
	if clausesRead != numClauses {
		return nil, errors.E(errors.Syntax, "clause count does not match header")
	}
	return store, nil
}
