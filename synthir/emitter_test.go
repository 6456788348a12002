// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package synthir

import (
	"testing"

	"github.com/chenhengqi/go-spmalloc/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitterInsertBeforeSplicesIntoOwningBlock(t *testing.T) {
	b := NewBuilder()
	p := b.Proc("p")
	p.Entry().Access("a0", "x", ir.StackAccess, 4, false)
	term := p.Entry().Block().Terminator()

	e := NewEmitter()
	load := e.NewLoadSPM(16, 4)
	e.InsertBefore(term, load)

	instrs := p.Entry().Block().Instrs()
	require.Len(t, instrs, 3, "original access + generated load + terminator")
	assert.Equal(t, load.ID(), instrs[1].ID())
	assert.Same(t, term, instrs[2])
}

func TestEmitterInsertAfter(t *testing.T) {
	b := NewBuilder()
	p := b.Proc("p")
	p.Entry().Access("a0", "x", ir.StackAccess, 4, false)
	first := p.Entry().Block().Instrs()[0]

	e := NewEmitter()
	store := e.NewStoreSPM(16, 4, first)
	e.InsertAfter(first, store)

	instrs := p.Entry().Block().Instrs()
	require.Len(t, instrs, 3)
	assert.Equal(t, store.ID(), instrs[1].ID())
}

func TestEmitterRetargetSetsAddress(t *testing.T) {
	b := NewBuilder()
	p := b.Proc("p")
	p.Entry().Access("a0", "x", ir.StackAccess, 4, false)
	instr := p.Entry().Block().Instrs()[0]

	e := NewEmitter()
	e.Retarget(instr, 128)

	i, ok := instr.(*Instr)
	require.True(t, ok)
	require.NotNil(t, i.Retargeted)
	assert.Equal(t, int64(128), *i.Retargeted)
}

func TestEmitterGenInstrKinds(t *testing.T) {
	e := NewEmitter()
	ref := ir.VarRef{ID: "x", Kind: ir.StackAccess, Size: 4}

	load := e.NewLoadVar(ref, 0, 4).(*Instr)
	assert.Equal(t, GenLoadVar, load.Gen.Kind)
	assert.Equal(t, ref, load.Gen.Var)

	push := e.NewPush("r0").(*Instr)
	assert.Equal(t, GenPush, push.Gen.Kind)
	assert.Equal(t, "r0", push.Gen.Reg)

	pop := e.NewPop("r0").(*Instr)
	assert.Equal(t, GenPop, pop.Gen.Kind)
}

func TestEmitterInsertBeforeNilIsNoop(t *testing.T) {
	e := NewEmitter()
	assert.NotPanics(t, func() {
		e.InsertBefore(nil, e.NewLoadSPM(0, 4))
	})
}
