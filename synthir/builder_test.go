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

func TestBuilderTerminatorAlwaysLast(t *testing.T) {
	b := NewBuilder()
	p := b.Proc("p")
	p.Entry().
		Access("a0", "x", ir.StackAccess, 4, false).
		Call("c0", p)

	instrs := p.Entry().Block().Instrs()
	require.NotEmpty(t, instrs)
	last := instrs[len(instrs)-1]
	assert.Same(t, p.Entry().Block().Terminator(), last)

	for _, instr := range instrs[:len(instrs)-1] {
		assert.NotEqual(t, last.ID(), instr.ID())
	}
}

func TestBuilderGraphWiring(t *testing.T) {
	b := NewBuilder()
	callee := b.Proc("callee")
	main := b.Proc("main")
	main.CallTo(callee)
	b.SetMain(main)
	g := b.Build()

	require.Len(t, g.Procs(), 2)
	require.Equal(t, "main", g.MainProc().ID())

	require.Len(t, main.Proc().Callees(), 1)
	assert.Equal(t, "callee", main.Proc().Callees()[0].ID())
	require.Len(t, callee.Proc().Callers(), 1)
	assert.Equal(t, "main", callee.Proc().Callers()[0].ID())
}

func TestBuilderToWiresPredsAndSuccsAndBackEdges(t *testing.T) {
	b := NewBuilder()
	p := b.Proc("p")
	header := p.Block("header")
	body := p.Block("body")
	header.To(body, false)
	body.To(header, true)

	require.Len(t, header.Block().Succs(), 1)
	assert.Equal(t, body.Block(), header.Block().Succs()[0])

	preds := header.Block().Preds()
	require.Len(t, preds, 1)
	assert.Equal(t, body.Block(), preds[0])
	assert.True(t, header.Block().IsBackEdge(0))
}

func TestClassifyAccessIgnoresCallsAndTerminators(t *testing.T) {
	b := NewBuilder()
	p := b.Proc("p")
	p.Entry().Access("a0", "x", ir.StackAccess, 4, true).Call("c0", p)

	instrs := p.Entry().Block().Instrs()
	var sawAccess, sawCallOrTerm int
	for _, instr := range instrs {
		if acc, ok := ClassifyAccess(instr); ok {
			sawAccess++
			assert.Equal(t, "x", acc.VarID)
			assert.True(t, acc.Modified)
		} else {
			sawCallOrTerm++
		}
	}
	assert.Equal(t, 1, sawAccess)
	assert.Equal(t, 2, sawCallOrTerm, "the call instruction and the trailing terminator are both non-accesses")
}
