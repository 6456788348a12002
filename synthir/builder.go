// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package synthir

import "github.com/chenhengqi/go-spmalloc/ir"

// Builder assembles a Graph one procedure/block/instruction at a time.
// It exists so fixtures in tests read as a short sequence of calls
// instead of hand-wired struct literals with manual Preds/Succs upkeep.
type Builder struct {
	g        *Graph
	instrSeq int
}

func NewBuilder() *Builder {
	return &Builder{g: &Graph{}}
}

// Proc adds a new, empty procedure with a single block, and returns it.
func (b *Builder) Proc(id string) *ProcBuilder {
	entry := newBlock(id + ".entry")
	p := &Proc{IDVal: id, BlocksVal: []*Block{entry}, StartVal: entry, EndVal: entry}
	entry.ProcVal = p
	b.g.ProcsVal = append(b.g.ProcsVal, p)
	return &ProcBuilder{b: b, p: p}
}

// newBlock returns a Block pre-populated with its trailing terminator
// marker, which Instrs() includes like any other instruction.
func newBlock(id string) *Block {
	blk := &Block{IDVal: id}
	term := &Instr{IDVal: id + ".term", blk: blk}
	blk.term = term
	blk.InstrsVal = []*Instr{term}
	return blk
}

// SetMain designates p as the graph's entry procedure.
func (b *Builder) SetMain(p *ProcBuilder) { b.g.MainVal = p.p }

func (b *Builder) Build() *Graph { return b.g }

func (b *Builder) nextInstrID(prefix string) string {
	b.instrSeq++
	return prefix
}

// ProcBuilder adds blocks to one procedure.
type ProcBuilder struct {
	b *Builder
	p *Proc
}

func (pb *ProcBuilder) Proc() *Proc { return pb.p }

// Block adds a new block to this procedure, with no edges yet.
func (pb *ProcBuilder) Block(id string) *BlockBuilder {
	blk := newBlock(id)
	blk.ProcVal = pb.p
	pb.p.BlocksVal = append(pb.p.BlocksVal, blk)
	return &BlockBuilder{pb: pb, blk: blk}
}

// Entry returns a BlockBuilder for this procedure's single initial block
// (created by Proc), so callers can add instructions to it directly.
func (pb *ProcBuilder) Entry() *BlockBuilder {
	return &BlockBuilder{pb: pb, blk: pb.p.StartVal}
}

// SetEnd designates b as this procedure's end block (defaults to the
// entry block for single-block procedures).
func (pb *ProcBuilder) SetEnd(b *BlockBuilder) { pb.p.EndVal = b.blk }

// CallTo records a call-graph edge from this procedure to callee, used by
// PropagateFrequencies independent of any one call-site instruction.
func (pb *ProcBuilder) CallTo(callee *ProcBuilder) {
	pb.p.CalleesVal = append(pb.p.CalleesVal, callee.p)
	callee.p.CallersVal = append(callee.p.CallersVal, pb.p)
}

// BlockBuilder adds instructions and edges to one block.
type BlockBuilder struct {
	pb  *ProcBuilder
	blk *Block
}

func (bb *BlockBuilder) Block() *Block { return bb.blk }

// Freq sets this block's execution frequency relative to its procedure's
// entry.
func (bb *BlockBuilder) Freq(f float64) *BlockBuilder {
	bb.blk.FreqVal = f
	return bb
}

// Loop marks this block as belonging to loop. It marks no edge as a back
// edge; the edge that closes the loop is marked by passing backEdge=true
// to To.
func (bb *BlockBuilder) Loop(loop *ir.Loop) *BlockBuilder {
	bb.blk.LoopVal = loop
	return bb
}

// Access appends a memory-access instruction, ahead of the block's
// terminator marker.
func (bb *BlockBuilder) Access(id string, varID string, kind ir.AccessKind, size int, modified bool) *BlockBuilder {
	bb.append(&Instr{IDVal: id, VarID: varID, VarKind: kind, VarSize: size, Modified: modified, blk: bb.blk})
	return bb
}

// Call appends a call instruction to callee, ahead of the block's
// terminator marker.
func (bb *BlockBuilder) Call(id string, callee *ProcBuilder) *BlockBuilder {
	bb.append(&Instr{IDVal: id, Callee: callee.p, blk: bb.blk})
	return bb
}

func (bb *BlockBuilder) append(i *Instr) {
	n := len(bb.blk.InstrsVal)
	bb.blk.InstrsVal = append(bb.blk.InstrsVal[:n-1:n-1], i, bb.blk.term)
}

// To adds a successor edge from this block to target. backEdge marks the
// edge as a loop back edge from target's point of view.
func (bb *BlockBuilder) To(target *BlockBuilder, backEdge bool) *BlockBuilder {
	bb.blk.SuccsVal = append(bb.blk.SuccsVal, target.blk)
	target.blk.PredsVal = append(target.blk.PredsVal, bb.blk)
	target.blk.BackEdges = append(target.blk.BackEdges, backEdge)
	return bb
}
