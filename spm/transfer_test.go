// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transferByVar(ts []*Transfer, id string) *Transfer {
	for _, t := range ts {
		if t.Var.ID == id {
			return t
		}
	}
	return nil
}

func TestDiffMovesInsAndOuts(t *testing.T) {
	varA := &VarInfo{ID: "A", Size: 4}
	varB := &VarInfo{ID: "B", Size: 4}
	varC := &VarInfo{ID: "C", Size: 4}
	varD := &VarInfo{ID: "D", Size: 4}

	target := newAllocResult()
	target.Layout = newLayout(100)
	target.FreeSpace = 100
	require.True(t, bestFitInsert(target, &NodeAccess{Var: varA, AccessCount: 1}))
	require.True(t, bestFitInsert(target, &NodeAccess{Var: varB, AccessCount: 1}))

	source := newAllocResult()
	source.Layout = newLayout(100)
	source.FreeSpace = 100
	require.True(t, bestFitInsert(source, &NodeAccess{Var: varB, AccessCount: 1}))
	require.True(t, bestFitInsert(source, &NodeAccess{Var: varA, AccessCount: 1}))
	require.True(t, bestFitInsert(source, &NodeAccess{Var: varC, AccessCount: 1, Modified: true}))
	require.True(t, bestFitInsert(source, &NodeAccess{Var: varD, AccessCount: 1}))

	out := Diff(target, source)

	require.Len(t, out, 3, "D is clean and absent from target, so it should be dropped silently")

	movA := transferByVar(out, "A")
	require.NotNil(t, movA)
	assert.Equal(t, DirMov, movA.Direction)
	assert.Equal(t, findCellFor(source, varA).Addr, movA.FromAddr)
	assert.Equal(t, findCellFor(target, varA).Addr, movA.ToAddr)

	movB := transferByVar(out, "B")
	require.NotNil(t, movB)
	assert.Equal(t, DirMov, movB.Direction)

	outC := transferByVar(out, "C")
	require.NotNil(t, outC)
	assert.Equal(t, DirOut, outC.Direction)
	assert.Equal(t, findCellFor(source, varC).Addr, outC.FromAddr)

	assert.Nil(t, transferByVar(out, "D"))
}

func TestDiffPureIn(t *testing.T) {
	varA := &VarInfo{ID: "A", Size: 4}
	target := newAllocResult()
	target.Layout = newLayout(100)
	target.FreeSpace = 100
	require.True(t, bestFitInsert(target, &NodeAccess{Var: varA, AccessCount: 1}))

	source := newAllocResult()
	source.Layout = newLayout(100)

	out := Diff(target, source)
	require.Len(t, out, 1)
	assert.Equal(t, DirIn, out[0].Direction)
	assert.Equal(t, varA, out[0].Var)
}

func TestSortTransfersOrdersByVarID(t *testing.T) {
	ts := []*Transfer{
		{Var: &VarInfo{ID: "z"}},
		{Var: &VarInfo{ID: "a"}},
		{Var: &VarInfo{ID: "m"}},
	}
	sortTransfers(ts)
	require.Len(t, ts, 3)
	assert.Equal(t, "a", ts[0].Var.ID)
	assert.Equal(t, "m", ts[1].Var.ID)
	assert.Equal(t, "z", ts[2].Var.ID)
}
