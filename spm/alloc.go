// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spm computes and materialises a scratchpad-memory allocation
// for a compiled program: which stack and global variables should reside
// in a small, software-managed fast memory region at each program point,
// and the copy-in/copy-out/move code that keeps the region consistent as
// control flow moves between them.
package spm

import "github.com/chenhengqi/go-spmalloc/ir"

// Result is everything FindAllocation computed for one compilation unit:
// per-block allocations plus the loop closures that pin loop-carried
// variables to a fixed address.
type Result struct {
	BlockData map[ir.Block]*BlockData
	Loops     []*LoopData
}

// FindAllocation runs the full C1 through C7 pipeline over g: it collects
// every memory access, propagates execution frequencies from every
// procedure with no callers, and walks the dynamic program reachability graph computing
// one AllocResult per region of every reachable block. The rewriter (C9)
// is applied separately, by RewriteGraph, once the caller is ready to
// emit code.
func FindAllocation(ctx *Context, g ir.Graph, classify ir.AccessClassifier) (*Result, error) {
	if classify == nil {
		return nil, ErrMissingClassifier
	}
	blockData, err := CollectGraphData(ctx, g, classify)
	if err != nil {
		return nil, err
	}
	PropagateFrequencies(blockData, g)

	w := NewWalker(ctx, blockData, classify)
	if err := w.Run(g); err != nil {
		return nil, err
	}

	loops := make([]*LoopData, 0, len(w.loopInfo))
	for _, ld := range w.loopInfo {
		loops = append(loops, ld)
	}
	ctx.Log.Debug("allocation complete", "blocks", len(blockData), "loops", len(loops))
	return &Result{BlockData: blockData, Loops: loops}, nil
}

// RewriteGraph applies a Result to g's instructions: every resident
// access is retargeted to its scratchpad address, and the transfer code
// for region boundaries, join compensation and loop closures is spliced
// in through rw.
func RewriteGraph(ctx *Context, rw *Rewriter, g ir.Graph, classify ir.AccessClassifier, res *Result) {
	for _, p := range g.Procs() {
		for _, b := range p.Blocks() {
			bd := res.BlockData[b]
			if bd == nil {
				continue
			}
			rw.RetargetBlock(ctx, b, bd, classify)
			for i, alloc := range bd.Allocations {
				if alloc == nil {
					continue
				}
				exit := regionExitInstr(b, bd, i)
				if exit == nil {
					continue
				}
				rw.MaterializeBlockExit(ctx, exit, alloc)
			}
		}
	}
	for _, loop := range res.Loops {
		preheaderExit := loopPreheaderExit(loop)
		if preheaderExit == nil {
			continue
		}
		rw.MaterializePreheader(ctx, preheaderExit, loop)
	}
}

// regionExitInstr returns the instruction immediately after region i's
// last instruction — the call that opens the next region, or the block's
// Terminator past the last region.
func regionExitInstr(b ir.Block, bd *BlockData, region int) ir.Instr {
	if region >= len(bd.Callees) {
		return b.Terminator()
	}
	return bd.Callees[region].Instr
}

// loopPreheaderExit locates the single edge entering the loop from
// outside it and returns the terminator of its source block, or nil if
// none is found (a loop with no reachable pre-header, which FindAllocation
// never produces but a hand-built fixture might).
func loopPreheaderExit(loop *LoopData) ir.Instr {
	for _, pred := range loop.Header.Preds() {
		if pred.LoopOf() != loop.IRLoop {
			return pred.Terminator()
		}
	}
	return nil
}
