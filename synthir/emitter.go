// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package synthir

import (
	"fmt"

	"github.com/chenhengqi/go-spmalloc/ir"
)

// GenKind distinguishes the instructions Emitter synthesises from the
// ones a Builder fixture starts with.
type GenKind int

const (
	GenLoadSPM GenKind = iota
	GenStoreSPM
	GenLoadVar
	GenStoreVar
	GenPush
	GenPop
)

// GenInstr is a rewriter-emitted instruction, spliced into a block's
// instruction list wrapped as an *Instr so Emitter's own insertion logic
// only ever deals with one concrete type. Tests can still inspect the
// original GenInstr through Instr.Gen.
type GenInstr struct {
	Kind   GenKind
	Addr   int64
	Var    ir.VarRef
	Offset int
	Size   int
	Reg    string
	Src    ir.Instr
}

// Emitter implements ir.Emitter by splicing generated instructions into
// the same synthir Block instruction slices the fixture was built from,
// using each Instr's back pointer to its owning Block.
type Emitter struct {
	seq int
}

func NewEmitter() *Emitter { return &Emitter{} }

func (e *Emitter) next() string { e.seq++; return fmt.Sprintf("gen%d", e.seq) }

func (e *Emitter) wrap(g *GenInstr) *Instr {
	return &Instr{IDVal: e.next(), Gen: g}
}

func (e *Emitter) NewLoadSPM(addr int64, size int) ir.Instr {
	return e.wrap(&GenInstr{Kind: GenLoadSPM, Addr: addr, Size: size})
}
func (e *Emitter) NewStoreSPM(addr int64, size int, src ir.Instr) ir.Instr {
	return e.wrap(&GenInstr{Kind: GenStoreSPM, Addr: addr, Size: size, Src: src})
}
func (e *Emitter) NewLoadVar(v ir.VarRef, offset, size int) ir.Instr {
	return e.wrap(&GenInstr{Kind: GenLoadVar, Var: v, Offset: offset, Size: size})
}
func (e *Emitter) NewStoreVar(v ir.VarRef, offset, size int, src ir.Instr) ir.Instr {
	return e.wrap(&GenInstr{Kind: GenStoreVar, Var: v, Offset: offset, Size: size, Src: src})
}
func (e *Emitter) NewPush(reg string) ir.Instr {
	return e.wrap(&GenInstr{Kind: GenPush, Reg: reg})
}
func (e *Emitter) NewPop(reg string) ir.Instr {
	return e.wrap(&GenInstr{Kind: GenPop, Reg: reg})
}

// InsertBefore splices n immediately before at within at's block. A nil
// at, or one with no owning block, is a no-op.
func (e *Emitter) InsertBefore(at ir.Instr, n ir.Instr) {
	target, ok := at.(*Instr)
	if !ok || target == nil || target.blk == nil {
		return
	}
	gen, ok := n.(*Instr)
	if !ok {
		return
	}
	gen.blk = target.blk
	idx := indexOf(target.blk.InstrsVal, target)
	target.blk.InstrsVal = insertAt(target.blk.InstrsVal, idx, gen)
}

func (e *Emitter) InsertAfter(at ir.Instr, n ir.Instr) {
	target, ok := at.(*Instr)
	if !ok || target == nil || target.blk == nil {
		return
	}
	gen, ok := n.(*Instr)
	if !ok {
		return
	}
	gen.blk = target.blk
	idx := indexOf(target.blk.InstrsVal, target)
	target.blk.InstrsVal = insertAt(target.blk.InstrsVal, idx+1, gen)
}

func (e *Emitter) Retarget(instr ir.Instr, spmAddr int64) {
	if i, ok := instr.(*Instr); ok {
		i.Retargeted = &spmAddr
	}
}

func (e *Emitter) ReconstructSSA(copies []ir.Instr) {}

func insertAt(instrs []*Instr, idx int, n *Instr) []*Instr {
	if idx < 0 || idx > len(instrs) {
		idx = len(instrs)
	}
	out := make([]*Instr, 0, len(instrs)+1)
	out = append(out, instrs[:idx]...)
	out = append(out, n)
	out = append(out, instrs[idx:]...)
	return out
}

func indexOf(instrs []*Instr, at *Instr) int {
	for i, n := range instrs {
		if n == at {
			return i
		}
	}
	return len(instrs)
}
