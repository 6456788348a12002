// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spm

import "github.com/chenhengqi/go-spmalloc/ir"

// chunkSizes lists the access widths, widest first, the rewriter breaks a
// transfer into. A variable's size need not be a multiple of any one of
// these; emitTransfer falls through to smaller widths for the remainder.
var chunkSizes = []int{4, 2, 1}

func chunkSize(remaining int) int {
	for _, c := range chunkSizes {
		if remaining >= c {
			return c
		}
	}
	return 1
}

// ScratchLiveness answers, for a program point, whether the rewriter's
// scratch register already holds a live value there — information only
// an external liveness analysis has, which is why it's injected rather
// than computed here.
type ScratchLiveness interface {
	// LiveAt returns the instruction whose result currently occupies the
	// scratch register immediately before at, or ok=false if the
	// register is dead there and free to clobber without saving it.
	LiveAt(at ir.Instr) (value ir.Instr, ok bool)
}

// Rewriter materialises the transfer plans C5 through C8 computed: it
// retargets memory accesses already resident in the scratchpad to their
// SPM address, and emits copy code at region boundaries, loop pre-headers
// and join compensation points.
type Rewriter struct {
	Emit       ir.Emitter
	Liveness   ScratchLiveness
	ScratchReg string
}

// RetargetBlock rewrites every resident memory access in block to address
// the scratchpad instead of RAM.
func (rw *Rewriter) RetargetBlock(ctx *Context, block ir.Block, bd *BlockData, classify ir.AccessClassifier) {
	region := 0
	for _, instr := range block.Instrs() {
		if callee := instr.CalleeOf(); callee != nil {
			region++
			continue
		}
		acc, ok := classify(instr)
		if !ok {
			continue
		}
		alloc := bd.Allocations[region]
		if alloc == nil {
			continue
		}
		v, ok := ctx.Registry.Lookup(acc.VarID)
		if !ok {
			continue
		}
		if _, resident := alloc.Resident[v]; !resident {
			continue
		}
		cell := findCellFor(alloc, v)
		if cell == nil {
			continue
		}
		rw.Emit.Retarget(instr, ctx.Props.StartAddr+cell.Addr)
	}
}

// MaterializeBlockExit emits, immediately before blockExit, the transfer
// sequence for one region's copy-ins/swapouts plus any join compensation
// attached to it.
func (rw *Rewriter) MaterializeBlockExit(ctx *Context, blockExit ir.Instr, alloc *AllocResult) {
	transfers := transfersFor(alloc)
	transfers = append(transfers, alloc.Compensation...)
	rw.emitSequence(blockExit, transfers, ctx.Props)
}

// MaterializePreheader emits a loop's pre-header transfer plan
// immediately before preheaderExit, pinning every loop-carried variable
// to its closed-loop address before the loop is first entered.
func (rw *Rewriter) MaterializePreheader(ctx *Context, preheaderExit ir.Instr, loop *LoopData) {
	rw.emitSequence(preheaderExit, loop.Transfers, ctx.Props)
}

// transfersFor collects one region's copy-in and swapout transfers,
// dropping an IN for any variable whose first access in the region was a
// write — the old RAM value would be clobbered immediately, so bringing
// it in at all is wasted traffic — and dropping a clean (non-dirty)
// swapout, which evictCell already represented as a nil transfer.
func transfersFor(alloc *AllocResult) []*Transfer {
	var out []*Transfer
	for v, t := range alloc.CopyIn {
		if _, writeFirst := alloc.WriteFirst[v]; writeFirst {
			continue
		}
		out = append(out, t)
	}
	for _, t := range alloc.Swapout {
		if t != nil {
			out = append(out, t)
		}
	}
	sortTransfers(out)
	return out
}

func (rw *Rewriter) emitSequence(before ir.Instr, transfers []*Transfer, props *Properties) {
	if len(transfers) == 0 {
		return
	}
	live, hasLive := rw.Liveness.LiveAt(before)
	if hasLive {
		rw.Emit.InsertBefore(before, rw.Emit.NewPush(rw.ScratchReg))
	}
	for _, t := range transfers {
		rw.emitOne(before, t, props)
	}
	if hasLive {
		pop := rw.Emit.NewPop(rw.ScratchReg)
		rw.Emit.InsertBefore(before, pop)
		rw.Emit.ReconstructSSA([]ir.Instr{live, pop})
	}
}

func (rw *Rewriter) emitOne(before ir.Instr, t *Transfer, props *Properties) {
	size := t.Var.Size
	ref := t.Var.Ref()
	for offset := 0; offset < size; {
		n := chunkSize(size - offset)
		switch t.Direction {
		case DirIn:
			load := rw.Emit.NewLoadVar(ref, offset, n)
			rw.Emit.InsertBefore(before, load)
			store := rw.Emit.NewStoreSPM(props.StartAddr+t.ToAddr+int64(offset), n, load)
			rw.Emit.InsertBefore(before, store)
		case DirOut:
			load := rw.Emit.NewLoadSPM(props.StartAddr+t.FromAddr+int64(offset), n)
			rw.Emit.InsertBefore(before, load)
			store := rw.Emit.NewStoreVar(ref, offset, n, load)
			rw.Emit.InsertBefore(before, store)
		case DirMov:
			load := rw.Emit.NewLoadSPM(props.StartAddr+t.FromAddr+int64(offset), n)
			rw.Emit.InsertBefore(before, load)
			store := rw.Emit.NewStoreSPM(props.StartAddr+t.ToAddr+int64(offset), n, load)
			rw.Emit.InsertBefore(before, store)
		}
		offset += n
	}
}
