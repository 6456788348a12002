// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package synthir is an in-memory implementation of package ir, built
// for tests, documentation examples, and the demo command: a whole
// compilation unit — procedures, blocks, instructions, loops — can be
// assembled with Builder and then fed straight to spm.FindAllocation.
package synthir

import "github.com/chenhengqi/go-spmalloc/ir"

// Instr is one synthetic instruction. A non-nil Callee makes it a call;
// otherwise VarID (if non-empty) makes it a memory access that
// ClassifyAccess reports.
type Instr struct {
	IDVal    string
	Callee   *Proc
	VarID    string
	VarKind  ir.AccessKind
	VarSize  int
	Modified bool

	// Retargeted records the SPM address Emitter.Retarget last rewrote
	// this access to, nil until that happens. Tests assert on it.
	Retargeted *int64

	// Gen is set on instructions synthir.Emitter generated, carrying
	// the detail a test needs to assert on (kind, address, operand
	// size) that doesn't fit the plain ir.Instr surface.
	Gen *GenInstr

	blk *Block
}

func (i *Instr) ID() string          { return i.IDVal }
func (i *Instr) CalleeOf() ir.Proc {
	if i.Callee == nil {
		return nil
	}
	return i.Callee
}

// Block is one synthetic basic block.
type Block struct {
	IDVal      string
	ProcVal    *Proc
	InstrsVal  []*Instr
	PredsVal   []*Block
	SuccsVal   []*Block
	BackEdges  []bool
	LoopVal    *ir.Loop
	FreqVal    float64

	// term is a synthetic trailing marker instruction, always present
	// and always last, giving the rewriter a stable splice point for
	// code appended at block exit. ClassifyAccess never reports it as
	// an access and CalleeOf never reports it as a call.
	term *Instr
}

func (b *Block) ID() string           { return b.IDVal }
func (b *Block) Proc() ir.Proc        { return b.ProcVal }
func (b *Block) Instrs() []ir.Instr {
	out := make([]ir.Instr, len(b.InstrsVal))
	for i, n := range b.InstrsVal {
		out[i] = n
	}
	return out
}
func (b *Block) Preds() []ir.Block {
	out := make([]ir.Block, len(b.PredsVal))
	for i, p := range b.PredsVal {
		out[i] = p
	}
	return out
}
func (b *Block) Succs() []ir.Block {
	out := make([]ir.Block, len(b.SuccsVal))
	for i, s := range b.SuccsVal {
		out[i] = s
	}
	return out
}
func (b *Block) IsBackEdge(predIdx int) bool {
	if predIdx >= len(b.BackEdges) {
		return false
	}
	return b.BackEdges[predIdx]
}
func (b *Block) LoopOf() *ir.Loop        { return b.LoopVal }
func (b *Block) LocalExecFreq() float64  { return b.FreqVal }
func (b *Block) Terminator() ir.Instr    { return b.term }

// Proc is one synthetic procedure.
type Proc struct {
	IDVal        string
	BlocksVal    []*Block
	StartVal     *Block
	EndVal       *Block
	CallersVal   []*Proc
	CalleesVal   []*Proc
}

func (p *Proc) ID() string      { return p.IDVal }
func (p *Proc) Blocks() []ir.Block {
	out := make([]ir.Block, len(p.BlocksVal))
	for i, b := range p.BlocksVal {
		out[i] = b
	}
	return out
}
func (p *Proc) StartBlock() ir.Block { return p.StartVal }
func (p *Proc) EndBlock() ir.Block   { return p.EndVal }
func (p *Proc) Callers() []ir.Proc {
	out := make([]ir.Proc, len(p.CallersVal))
	for i, c := range p.CallersVal {
		out[i] = c
	}
	return out
}
func (p *Proc) Callees() []ir.Proc {
	out := make([]ir.Proc, len(p.CalleesVal))
	for i, c := range p.CalleesVal {
		out[i] = c
	}
	return out
}

// Graph is a whole synthetic compilation unit.
type Graph struct {
	ProcsVal []*Proc
	MainVal  *Proc
}

func (g *Graph) Procs() []ir.Proc {
	out := make([]ir.Proc, len(g.ProcsVal))
	for i, p := range g.ProcsVal {
		out[i] = p
	}
	return out
}
func (g *Graph) MainProc() ir.Proc {
	if g.MainVal == nil {
		return nil
	}
	return g.MainVal
}

// ClassifyAccess is the ir.AccessClassifier every synthir fixture uses:
// it reads the Access fields a Builder stamped directly onto the Instr.
func ClassifyAccess(instr ir.Instr) (ir.Access, bool) {
	i, ok := instr.(*Instr)
	if !ok || i.VarID == "" {
		return ir.Access{}, false
	}
	return ir.Access{Kind: i.VarKind, VarID: i.VarID, Size: i.VarSize, Modified: i.Modified}, true
}
