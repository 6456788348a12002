// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spm

import "github.com/chenhengqi/go-spmalloc/ir"

// freqEqualTolerance is the tolerance below which two execution
// frequencies are treated as equal — the gate the DPRG walker uses to
// decide whether it is cheap enough to descend into a callee instead of
// deferring it behind a compensation transfer.
const freqEqualTolerance = 1e-2

func freqEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < freqEqualTolerance
}

// PropagateFrequencies computes BlockData.MaxExecFreq for every block
// reachable from a procedure with no callers, recursing into callees at
// their call sites. A callee reached while already on the current call
// path (a back edge in the call graph, i.e. recursion) is walked with its
// access regions cleared afterward: code that can re-enter itself is
// assumed never to benefit from scratchpad residency, since the set of
// live variables at re-entry isn't known statically.
func PropagateFrequencies(blockData map[ir.Block]*BlockData, g ir.Graph) {
	w := &freqWalker{blockData: blockData, onStack: make(map[ir.Proc]bool)}
	for _, p := range g.Procs() {
		if len(p.Callers()) == 0 {
			w.walkProc(p, 1.0, false)
		}
	}
}

type freqWalker struct {
	blockData map[ir.Block]*BlockData
	onStack   map[ir.Proc]bool
}

func (w *freqWalker) walkProc(p ir.Proc, irgFreq float64, inRecursion bool) {
	w.onStack[p] = true
	defer delete(w.onStack, p)
	for _, b := range p.Blocks() {
		w.walkBlock(b, irgFreq, inRecursion)
	}
}

func (w *freqWalker) walkBlock(b ir.Block, irgFreq float64, inRecursion bool) {
	bd := w.blockData[b]
	freq := irgFreq * b.LocalExecFreq()
	if freq > bd.MaxExecFreq {
		bd.MaxExecFreq = freq
	}
	for _, callee := range bd.Callees {
		calleeProc := callee.Proc
		start := calleeProc.StartBlock()
		calleeBD := w.blockData[start]
		if freq > calleeBD.MaxExecFreq {
			recursing := inRecursion || w.onStack[calleeProc]
			w.walkProc(calleeProc, freq, recursing)
		}
	}
	if inRecursion {
		for i := range bd.Regions {
			bd.Regions[i] = nil
		}
	}
}
