// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spm

import (
	"sort"

	"github.com/chenhengqi/go-spmalloc/ir"
)

// NodeAccess is the coalesced record of every reference a block's
// instructions make to one variable within a single region. Region
// boundaries are calls: a block with N calls has N+1 regions, numbered
// 0..N, region i running between callee i-1 (exclusive) and callee i
// (exclusive).
type NodeAccess struct {
	Var         *VarInfo
	AccessCount int
	Modified    bool
	WriteFirst  bool
}

// FreqPerByte is the sort key best-fit and the region scan use: how much
// traffic this variable generates per byte of scratchpad it would occupy.
func (n *NodeAccess) FreqPerByte() float64 {
	if n.Var.Size == 0 {
		return 0
	}
	return float64(n.AccessCount) / float64(n.Var.Size)
}

// CalleeAccess records one call site within a block, in schedule order.
type CalleeAccess struct {
	Instr ir.Instr
	Proc  ir.Proc
}

// BlockData is everything the allocator has computed or cached about one
// basic block, accumulated across C2 through C9.
type BlockData struct {
	Block ir.Block

	Callees []CalleeAccess
	// Regions holds one access list per region; len(Regions) ==
	// len(Callees)+1. The call-site list occupies its own Callees slice
	// rather than index 0 of Regions, so Regions[i] is the access list for
	// the straight-line run immediately following callee i-1.
	Regions [][]*NodeAccess

	// MaxExecFreq is the highest whole-program execution frequency this
	// block has been reached at, across every call path the walker has
	// explored so far.
	MaxExecFreq float64

	// Allocations holds one *AllocResult per region, populated as the
	// walker reaches it; len(Allocations) == len(Regions).
	Allocations []*AllocResult

	// DeadSet is non-nil only on blocks that are direct predecessors of
	// their procedure's end block: the set of every stack VarInfo seen
	// anywhere in the procedure, since the whole frame dies at return.
	DeadSet map[*VarInfo]struct{}

	// CompensationCallees records callees reached across a frequency
	// discontinuity (the walker did not descend into them), so a
	// compensating transfer plan can be attached before the call
	// instead of folding it into the callee's own region solve.
	CompensationCallees map[ir.Proc]struct{}
}

// CollectGraphData runs the access collector over every procedure in g,
// returning one BlockData per block.
func CollectGraphData(ctx *Context, g ir.Graph, classify ir.AccessClassifier) (map[ir.Block]*BlockData, error) {
	if classify == nil {
		return nil, ErrMissingClassifier
	}
	out := make(map[ir.Block]*BlockData)
	for _, p := range g.Procs() {
		if err := collectProcData(ctx, p, classify, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func collectProcData(ctx *Context, proc ir.Proc, classify ir.AccessClassifier, out map[ir.Block]*BlockData) error {
	stackVars := make(map[*VarInfo]struct{})
	for _, b := range proc.Blocks() {
		bd, err := collectBlockData(ctx, b, classify, stackVars)
		if err != nil {
			return err
		}
		out[b] = bd
	}
	end := proc.EndBlock()
	for _, pred := range end.Preds() {
		if bd, ok := out[pred]; ok {
			bd.DeadSet = stackVars
		}
	}
	return nil
}

func collectBlockData(ctx *Context, b ir.Block, classify ir.AccessClassifier, stackVars map[*VarInfo]struct{}) (*BlockData, error) {
	bd := &BlockData{Block: b}

	var regions [][]*NodeAccess
	var index []map[string]*NodeAccess
	newRegion := func() {
		regions = append(regions, nil)
		index = append(index, make(map[string]*NodeAccess))
	}
	newRegion()

	for _, instr := range b.Instrs() {
		if callee := instr.CalleeOf(); callee != nil {
			bd.Callees = append(bd.Callees, CalleeAccess{Instr: instr, Proc: callee})
			newRegion()
			continue
		}
		acc, ok := classify(instr)
		if !ok {
			continue
		}
		if ctx.Props != nil && int64(acc.Size) > ctx.Props.Size {
			ctx.Log.Debug("dropping oversized access", "err", ErrOversizedVariable, "var", acc.VarID, "size", acc.Size, "spm_size", ctx.Props.Size)
			continue
		}
		kind := KindStack
		if acc.Kind == ir.GlobalAccess {
			kind = KindGlobal
		}
		v := ctx.Registry.intern(kind, acc.VarID, acc.Size)
		if kind == KindStack {
			stackVars[v] = struct{}{}
		}

		cur := len(regions) - 1
		if na, ok := index[cur][v.ID]; ok {
			na.AccessCount++
			na.Modified = na.Modified || acc.Modified
			continue
		}
		na := &NodeAccess{Var: v, AccessCount: 1, Modified: acc.Modified, WriteFirst: acc.Modified}
		index[cur][v.ID] = na
		regions[cur] = append(regions[cur], na)
	}

	for _, region := range regions {
		sort.SliceStable(region, func(i, j int) bool {
			return region[i].FreqPerByte() > region[j].FreqPerByte()
		})
	}
	bd.Regions = regions
	bd.Allocations = make([]*AllocResult, len(regions))
	return bd, nil
}
