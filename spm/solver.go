// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spm

// Direction classifies a Transfer by which way bytes move.
type Direction int

const (
	// DirIn moves a variable from RAM into the scratchpad.
	DirIn Direction = iota
	// DirOut writes a dirty scratchpad-resident variable back to RAM
	// and drops its residency.
	DirOut
	// DirMov repositions a variable already resident, scratchpad to
	// scratchpad, as part of a join's compensation (see Diff). CloseLoop
	// emits only DirOut and DirIn.
	DirMov
)

func (d Direction) String() string {
	switch d {
	case DirIn:
		return "in"
	case DirOut:
		return "out"
	case DirMov:
		return "mov"
	default:
		return "?"
	}
}

// Transfer describes one variable-sized copy the rewriter must materialise
// as load/store instruction pairs. FromAddr/ToAddr are scratchpad-relative
// offsets (not yet including Properties.StartAddr) and are meaningful only
// for the directions that use them: DirIn sets ToAddr, DirOut sets
// FromAddr, DirMov sets both.
type Transfer struct {
	Direction Direction
	Var       *VarInfo
	FromAddr  int64
	ToAddr    int64
}

// AllocResult is the scratchpad configuration computed for one region: the
// physical layout plus the bookkeeping sets the join engine and rewriter
// need to reconcile it against a neighbour or materialise it into code.
type AllocResult struct {
	Layout []*SpmContent

	Resident   map[*VarInfo]struct{}
	Modified   map[*VarInfo]struct{}
	WriteFirst map[*VarInfo]struct{}

	// CopyIn/Swapout record the transfers this region's solve decided on,
	// keyed by variable. A Swapout entry with a nil value is a clean
	// eviction: the var left residency but needs no write-back.
	CopyIn  map[*VarInfo]*Transfer
	Swapout map[*VarInfo]*Transfer

	FreeSpace int64

	// Compensation holds transfers a join attached to this region to be
	// executed at its exit, reconciling it with whichever sibling region
	// the join chose as the base.
	Compensation []*Transfer

	// retainSet is populated and consumed entirely within one Solve
	// call: the set of vars the current region's accesses confirmed
	// should stay resident, making them ineligible for forcedInsert to
	// evict later in the same region.
	retainSet map[*VarInfo]struct{}
}

func newAllocResult() *AllocResult {
	return &AllocResult{
		Resident:   make(map[*VarInfo]struct{}),
		Modified:   make(map[*VarInfo]struct{}),
		WriteFirst: make(map[*VarInfo]struct{}),
		CopyIn:     make(map[*VarInfo]*Transfer),
		Swapout:    make(map[*VarInfo]*Transfer),
		retainSet:  make(map[*VarInfo]struct{}),
	}
}

// Solve computes the AllocResult for one region, given the predecessor
// region's result to seed from (nil for the very first region of a walk)
// and, when this region is the first of a block reached from a different
// block, that predecessor block's dead set.
func Solve(ctx *Context, bd *BlockData, regionIdx int, pred *AllocResult, deadSet map[*VarInfo]struct{}) *AllocResult {
	res := newAllocResult()
	if pred != nil {
		seedFromPred(res, pred, deadSet)
	} else {
		res.Layout = newLayout(ctx.Props.Size)
		res.FreeSpace = ctx.Props.Size
	}

	for _, acc := range bd.Regions[regionIdx] {
		v := acc.Var
		if _, resident := res.Resident[v]; resident {
			if _, evicting := res.Swapout[v]; !evicting {
				res.retainSet[v] = struct{}{}
				if acc.Modified {
					res.Modified[v] = struct{}{}
				}
			}
			continue
		}
		if int64(v.Size) <= res.FreeSpace {
			if benefit(ctx, bd, acc) > 0 {
				if !bestFitInsert(res, acc) {
					forcedInsert(res, acc)
				}
			}
		} else {
			forcedInsert(res, acc)
		}
	}
	return res
}

// seedFromPred copies pred's layout cell by cell, collapsing any cell
// whose content is in deadSet into the preceding cell's gap (that stack
// frame has died, so its slot can be reclaimed before this region even
// starts) and inheriting pred's modified set as-is.
func seedFromPred(res *AllocResult, pred *AllocResult, deadSet map[*VarInfo]struct{}) {
	for v := range pred.Modified {
		res.Modified[v] = struct{}{}
	}
	sentinel := &SpmContent{Content: nil}
	res.Layout = []*SpmContent{sentinel}
	last := sentinel
	for _, c := range pred.Layout[1:] {
		if deadSet != nil {
			if _, dead := deadSet[c.Content]; dead {
				last.GapSize += cellSize(c.Content) + c.GapSize
				continue
			}
		}
		cell := &SpmContent{Content: c.Content, GapSize: c.GapSize}
		res.Layout = append(res.Layout, cell)
		res.Resident[c.Content] = struct{}{}
		last = cell
	}
	recomputeLayout(res)
}

// benefit scores inserting acc.Var with no specific eviction candidate in
// mind: the latency gained minus the cost of bringing it in. Solve
// consults it only when free space already covers acc.Var; when free
// space runs short, Solve calls forcedInsert without it, and forcedInsert
// picks its window purely by the minimal-residual-gap rule.
func benefit(ctx *Context, bd *BlockData, acc *NodeAccess) float64 {
	latencyGain := bd.MaxExecFreq * float64(acc.AccessCount) * ctx.Props.LatencyDiff
	migrationCost := ctx.Props.ThroughputSPM * float64(acc.Var.Size)
	return latencyGain - migrationCost
}
