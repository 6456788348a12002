// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spm

import "github.com/chenhengqi/go-spmalloc/ir"

// lastAlloc returns a block's final region allocation — the one every
// successor or caller joins against — or nil if the block hasn't been
// walked yet.
func lastAlloc(bd *BlockData) *AllocResult {
	if len(bd.Allocations) == 0 {
		return nil
	}
	return bd.Allocations[len(bd.Allocations)-1]
}

// JoinCond reconciles every predecessor of block other than base against
// base's exit allocation, attaching each discrepancy as that predecessor's
// exit-time compensation.
func JoinCond(blockData map[ir.Block]*BlockData, block, base ir.Block) {
	joinAgainstBase(blockData, block, base)
}

// JoinReturn picks the highest-frequency predecessor of a procedure's end
// block as the base allocation callers join against, reconciles every
// other predecessor against it, and returns the chosen predecessor.
func JoinReturn(blockData map[ir.Block]*BlockData, endBlock ir.Block) ir.Block {
	preds := endBlock.Preds()
	base := preds[0]
	for _, p := range preds[1:] {
		if p.LocalExecFreq() > base.LocalExecFreq() {
			base = p
		}
	}
	joinAgainstBase(blockData, endBlock, base)
	return base
}

func joinAgainstBase(blockData map[ir.Block]*BlockData, block, base ir.Block) {
	baseAlloc := lastAlloc(blockData[base])
	for _, pred := range block.Preds() {
		if pred == base {
			continue
		}
		predAlloc := lastAlloc(blockData[pred])
		if predAlloc == nil {
			continue
		}
		if comp := Diff(baseAlloc, predAlloc); len(comp) > 0 {
			predAlloc.Compensation = append(predAlloc.Compensation, comp...)
		}
	}
}

// LoopData is the allocator's per-loop bookkeeping: every block the
// walker visited while inside the loop, every variable accessed from
// within it (stack variables of other procedures excluded), and the
// transfer plan that pins each such variable to one
// fixed address for the loop's whole duration.
type LoopData struct {
	Header      ir.Block
	IRLoop      *ir.Loop
	Members     []ir.Block
	MemAccesses map[*VarInfo]struct{}
	Transfers   []*Transfer
}

// CloseLoop pins every loop-carried variable to the address it holds in
// the final pass through the loop (lastLoopBlock's exit allocation),
// re-pinning every other in-loop region that disagrees, and stores in
// loop.Transfers the pre-header transfer plan that establishes this
// layout before the loop is first entered.
func CloseLoop(blockData map[ir.Block]*BlockData, loop *LoopData, lastLoopBlock ir.Block) {
	lastBD := blockData[lastLoopBlock]
	lastAllocRes := lastAlloc(lastBD)

	var loopVars []*VarInfo
	targetAddr := make(map[*VarInfo]int64)
	for _, cell := range lastAllocRes.Layout[1:] {
		if _, carried := loop.MemAccesses[cell.Content]; carried {
			loopVars = append(loopVars, cell.Content)
			targetAddr[cell.Content] = cell.Addr
		}
	}
	if len(loopVars) == 0 {
		loop.Transfers = nil
		return
	}

	toEvict := make(map[*VarInfo]int64)
	seen := make(map[ir.Block]struct{})
	for _, block := range loop.Members {
		if _, dup := seen[block]; dup {
			continue
		}
		seen[block] = struct{}{}
		bd := blockData[block]
		for _, alloc := range bd.Allocations {
			if alloc == nil || alloc == lastAllocRes {
				continue
			}
			for _, v := range loopVars {
				delete(alloc.CopyIn, v)
				delete(alloc.Swapout, v)
			}
			for _, v := range loopVars {
				for _, dirty := range repinLoopVar(alloc, v, targetAddr[v]) {
					if _, already := toEvict[dirty.Var]; !already {
						toEvict[dirty.Var] = dirty.Addr
					}
				}
			}
		}
	}

	loop.Transfers = nil
	for v, addr := range toEvict {
		loop.Transfers = append(loop.Transfers, &Transfer{Direction: DirOut, Var: v, FromAddr: addr})
	}
	for _, v := range loopVars {
		loop.Transfers = append(loop.Transfers, &Transfer{Direction: DirIn, Var: v, ToAddr: targetAddr[v]})
	}
	sortTransfers(loop.Transfers)
}

type evictedEntry struct {
	Var  *VarInfo
	Addr int64
}

// repinLoopVar ensures alloc holds v at exactly targetAddr, evicting
// whatever currently occupies that span and dropping v's own cell first
// if it was resident at some other address. The bytes reclaimed from the
// evicted span that v doesn't consume are folded back in as gap — on the
// preceding cell for the leading slack, on v's own new cell for the
// trailing slack — the same residual bookkeeping forcedInsert does,
// rather than being dropped on the floor. It returns the dirty cells it
// had to evict, for the caller to fold into the loop's pre-header flush.
func repinLoopVar(alloc *AllocResult, v *VarInfo, targetAddr int64) []evictedEntry {
	for _, c := range alloc.Layout[1:] {
		if c.Content == v && c.Addr == targetAddr {
			return nil
		}
	}
	removeCellFor(alloc, v)
	recomputeLayout(alloc)

	last := alloc.Layout[len(alloc.Layout)-1]
	capacity := last.Addr + cellSize(last.Content) + last.GapSize
	end := targetAddr + int64(v.Size)

	predIdx := 0
	for i := 1; i < len(alloc.Layout); i++ {
		c := alloc.Layout[i]
		if c.Addr+cellSize(c.Content) <= targetAddr {
			predIdx = i
			continue
		}
		break
	}
	pred := alloc.Layout[predIdx]
	predContentEnd := pred.Addr + cellSize(pred.Content)

	var evicted []evictedEntry
	evictIdx := predIdx + 1
	for evictIdx < len(alloc.Layout) && alloc.Layout[evictIdx].Addr < end {
		c := alloc.Layout[evictIdx]
		if c.Content != nil {
			if _, dirty := alloc.Modified[c.Content]; dirty {
				evicted = append(evicted, evictedEntry{Var: c.Content, Addr: c.Addr})
			}
			delete(alloc.Resident, c.Content)
			delete(alloc.Modified, c.Content)
			delete(alloc.WriteFirst, c.Content)
			delete(alloc.CopyIn, c.Content)
			delete(alloc.Swapout, c.Content)
		}
		alloc.Layout = append(alloc.Layout[:evictIdx], alloc.Layout[evictIdx+1:]...)
	}

	nextRemainingAddr := capacity
	if evictIdx < len(alloc.Layout) {
		nextRemainingAddr = alloc.Layout[evictIdx].Addr
	}

	pred.GapSize = targetAddr - predContentEnd
	cell := &SpmContent{Content: v, GapSize: nextRemainingAddr - end}
	tail := append([]*SpmContent{}, alloc.Layout[evictIdx:]...)
	alloc.Layout = append(append(alloc.Layout[:evictIdx], cell), tail...)
	alloc.Resident[v] = struct{}{}
	recomputeLayout(alloc)
	return evicted
}

func removeCellFor(alloc *AllocResult, v *VarInfo) {
	for i := 1; i < len(alloc.Layout); i++ {
		if alloc.Layout[i].Content == v {
			prev := alloc.Layout[i-1]
			prev.GapSize += cellSize(v) + alloc.Layout[i].GapSize
			alloc.Layout = append(alloc.Layout[:i], alloc.Layout[i+1:]...)
			delete(alloc.Resident, v)
			return
		}
	}
}
