// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spm

import "github.com/chenhengqi/go-spmalloc/ir"

// predState is the outcome of inspecting a block's predecessors: whether
// every one of them has already been allocated, and if not, whether the
// gap is a plain forward-edge dependency or a loop still in flight.
type predState int

const (
	predUnknown predState = iota
	predNotDone
	predsDone
	unfinishedLoop
	finishedLoop
	condJoin
)

// Timestamp is one pending unit of walk work: a block to allocate, the
// predecessor context it's being reached from, and the call-path state
// (caller to resume, enclosing loops) needed to resume correctly once
// this sub-walk completes.
type Timestamp struct {
	Block ir.Block

	LastBlock ir.Block
	LastAlloc *AllocResult

	CallerTimestamp *Timestamp
	FinishedCallees int
	FinishedPreds   predState

	IRGExecFreq float64
	CurLoops    []*LoopData
}

func cloneLoops(ls []*LoopData) []*LoopData {
	out := make([]*LoopData, len(ls))
	copy(out, ls)
	return out
}

// Walker drives the dynamic program reachability graph walk: a FIFO
// workqueue of Timestamps, seeded from the program's entry procedure,
// that runs each block's region solve in turn and schedules whatever the
// solve unblocks next.
type Walker struct {
	ctx       *Context
	blockData map[ir.Block]*BlockData
	loopInfo  map[*ir.Loop]*LoopData
	classify  ir.AccessClassifier
	queue     []*Timestamp
}

func NewWalker(ctx *Context, blockData map[ir.Block]*BlockData, classify ir.AccessClassifier) *Walker {
	return &Walker{
		ctx:       ctx,
		blockData: blockData,
		loopInfo:  make(map[*ir.Loop]*LoopData),
		classify:  classify,
	}
}

func (w *Walker) push(ts *Timestamp) { w.queue = append(w.queue, ts) }

func (w *Walker) pop() *Timestamp {
	ts := w.queue[0]
	w.queue = w.queue[1:]
	return ts
}

// Run walks g to completion, leaving every reachable block's Allocations
// populated in w's blockData.
func (w *Walker) Run(g ir.Graph) error {
	main := g.MainProc()
	if main == nil {
		return ErrNoMainProc
	}
	seed := &Timestamp{
		Block:         main.StartBlock(),
		FinishedPreds: predsDone,
		IRGExecFreq:   1.0,
	}
	w.process(seed)
	for len(w.queue) > 0 {
		w.process(w.pop())
	}
	return nil
}

func (w *Walker) process(ts *Timestamp) {
	block := ts.Block
	bd := w.blockData[block]

	if ts.FinishedPreds == predUnknown {
		w.ensurePredsVisited(ts)
	}
	if ts.FinishedPreds == predNotDone {
		return
	}
	if ts.FinishedCallees == 0 && lastAlloc(bd) != nil && ts.FinishedPreds != finishedLoop {
		// Already fully allocated via a different arrival; nothing left
		// to do for this timestamp.
		return
	}

	switch ts.FinishedPreds {
	case finishedLoop:
		w.closeLoopAndContinue(ts, bd)
		return
	case unfinishedLoop:
		w.enterLoop(ts, block)
	case condJoin:
		JoinCond(w.blockData, block, ts.LastBlock)
	}

	if block == block.Proc().EndBlock() {
		caller := ts.CallerTimestamp
		if caller == nil {
			return
		}
		returnBlock := JoinReturn(w.blockData, block)
		returnBD := w.blockData[returnBlock]
		caller.LastBlock = returnBlock
		caller.LastAlloc = lastAlloc(returnBD)
		caller.FinishedCallees++
		w.push(caller)
		return
	}

	blockExecFreq := bd.MaxExecFreq
	curAlloc := Solve(w.ctx, bd, ts.FinishedCallees, ts.LastAlloc, deadSetFor(ts, w))
	bd.Allocations[ts.FinishedCallees] = curAlloc

	for _, loop := range ts.CurLoops {
		loop.Members = append(loop.Members, block)
		for _, acc := range bd.Regions[ts.FinishedCallees] {
			v := acc.Var
			if v.Kind != KindStack || block.Proc() == loop.Header.Proc() {
				loop.MemAccesses[v] = struct{}{}
			}
		}
	}

	if ts.FinishedCallees < len(bd.Callees) {
		callee := bd.Callees[ts.FinishedCallees]
		calleeStart := callee.Proc.StartBlock()
		calleeBD := w.blockData[calleeStart]
		if freqEqual(calleeBD.MaxExecFreq, blockExecFreq) {
			w.push(&Timestamp{
				Block:           calleeStart,
				FinishedPreds:   predUnknown,
				CallerTimestamp: cloneTimestamp(ts),
				LastBlock:       block,
				LastAlloc:       curAlloc,
				IRGExecFreq:     blockExecFreq,
				CurLoops:        cloneLoops(ts.CurLoops),
			})
		} else {
			if bd.CompensationCallees == nil {
				bd.CompensationCallees = make(map[ir.Proc]struct{})
			}
			bd.CompensationCallees[callee.Proc] = struct{}{}
			ts.FinishedCallees++
			w.push(ts)
		}
		return
	}

	for _, succ := range block.Succs() {
		if ts.FinishedPreds == unfinishedLoop {
			innerLoop := ts.CurLoops[len(ts.CurLoops)-1]
			succLoop := succ.LoopOf()
			if succLoop == nil || succLoop != innerLoop.IRLoop {
				continue
			}
		}
		w.push(&Timestamp{
			Block:           succ,
			FinishedPreds:   predUnknown,
			LastBlock:       block,
			LastAlloc:       curAlloc,
			CallerTimestamp: ts.CallerTimestamp,
			IRGExecFreq:     ts.IRGExecFreq,
			CurLoops:        ts.CurLoops,
		})
	}
}

func cloneTimestamp(ts *Timestamp) *Timestamp {
	cp := *ts
	cp.CurLoops = cloneLoops(ts.CurLoops)
	return &cp
}

func deadSetFor(ts *Timestamp, w *Walker) map[*VarInfo]struct{} {
	if ts.FinishedCallees != 0 || ts.LastBlock == nil {
		return nil
	}
	prevBD := w.blockData[ts.LastBlock]
	return prevBD.DeadSet
}

func (w *Walker) ensurePredsVisited(ts *Timestamp) {
	block := ts.Block
	preds := block.Preds()
	for i, pred := range preds {
		isBack := block.IsBackEdge(i)
		predDone := lastAlloc(w.blockData[pred]) != nil
		switch {
		case predDone && isBack:
			ts.FinishedPreds = finishedLoop
		case !predDone && isBack:
			ts.FinishedPreds = unfinishedLoop
		case !predDone && !isBack:
			ts.FinishedPreds = predNotDone
			return
		}
	}
	if ts.FinishedPreds == predUnknown {
		if len(preds) > 1 {
			ts.FinishedPreds = condJoin
		} else {
			ts.FinishedPreds = predsDone
		}
	}
}

func (w *Walker) enterLoop(ts *Timestamp, block ir.Block) {
	irLoop := block.LoopOf()
	ld, ok := w.loopInfo[irLoop]
	if !ok {
		ld = &LoopData{Header: block, IRLoop: irLoop, MemAccesses: make(map[*VarInfo]struct{})}
		w.loopInfo[irLoop] = ld
	}
	ts.CurLoops = append(cloneLoops(ts.CurLoops), ld)
}

func (w *Walker) closeLoopAndContinue(ts *Timestamp, bd *BlockData) {
	innerLoop := ts.CurLoops[len(ts.CurLoops)-1]
	var lastLoopBlock ir.Block
	for i, pred := range ts.Block.Preds() {
		if ts.Block.IsBackEdge(i) {
			lastLoopBlock = pred
		}
	}
	invariant(lastLoopBlock != nil, "closing loop at header %s with no back-edge predecessor", ts.Block.ID())
	CloseLoop(w.blockData, innerLoop, lastLoopBlock)

	curAlloc := lastAlloc(bd)
	outerLoops := ts.CurLoops[:len(ts.CurLoops)-1]
	for _, succ := range ts.Block.Succs() {
		if succLoop := succ.LoopOf(); succLoop != nil && succLoop == innerLoop.IRLoop {
			continue
		}
		w.push(&Timestamp{
			Block:           succ,
			FinishedPreds:   predUnknown,
			LastBlock:       ts.Block,
			LastAlloc:       curAlloc,
			CallerTimestamp: ts.CallerTimestamp,
			IRGExecFreq:     ts.IRGExecFreq,
			CurLoops:        cloneLoops(outerLoops),
		})
	}
}
