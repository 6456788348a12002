// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLayoutSingleSentinelGap(t *testing.T) {
	l := newLayout(256)
	require.Len(t, l, 1)
	assert.Equal(t, int64(0), l[0].Addr)
	assert.Nil(t, l[0].Content)
	assert.Equal(t, int64(256), l[0].GapSize)
}

func TestBestFitInsertFillsSmallestFittingGap(t *testing.T) {
	res := newAllocResult()
	res.Layout = newLayout(100)
	res.FreeSpace = 100

	a := &VarInfo{ID: "a", Size: 10}
	ok := bestFitInsert(res, &NodeAccess{Var: a, AccessCount: 1, Modified: true})
	require.True(t, ok)

	assert.Contains(t, res.Resident, a)
	assert.Contains(t, res.Modified, a)
	assert.Equal(t, int64(0), res.CopyIn[a].ToAddr)
	assert.Equal(t, int64(90), res.FreeSpace)
}

func TestBestFitInsertTieBreaksByAscendingAddress(t *testing.T) {
	existing := &VarInfo{ID: "x", Size: 10}
	res := newAllocResult()
	res.Layout = []*SpmContent{
		{Content: nil, GapSize: 5},
		{Content: existing, GapSize: 5},
	}
	res.Resident[existing] = struct{}{}

	a := &VarInfo{ID: "a", Size: 5}
	ok := bestFitInsert(res, &NodeAccess{Var: a, AccessCount: 1})
	require.True(t, ok)

	cell := findCellFor(res, a)
	require.NotNil(t, cell)
	assert.Equal(t, int64(0), cell.Addr, "tie between equal-size gaps should take the first one encountered")
}

func TestBestFitInsertReportsFalseWhenNoGapFits(t *testing.T) {
	res := newAllocResult()
	res.Layout = newLayout(4)
	ok := bestFitInsert(res, &NodeAccess{Var: &VarInfo{ID: "big", Size: 8}, AccessCount: 1})
	assert.False(t, ok)
}

func TestForcedInsertEvictsMinimalResidualWindow(t *testing.T) {
	varA := &VarInfo{ID: "A", Size: 4}
	varB := &VarInfo{ID: "B", Size: 4}

	res := newAllocResult()
	res.Layout = []*SpmContent{
		{Content: nil, GapSize: 0},
		{Content: varA, GapSize: 0},
		{Content: varB, GapSize: 0},
	}
	res.Resident[varA] = struct{}{}
	res.Resident[varB] = struct{}{}
	recomputeLayout(res)

	newVar := &VarInfo{ID: "C", Size: 4}
	ok := forcedInsert(res, &NodeAccess{Var: newVar, AccessCount: 1})
	require.True(t, ok)

	assert.NotContains(t, res.Resident, varA, "the first feasible eviction window should win the tie against an equal-size later one")
	assert.Contains(t, res.Resident, varB)
	assert.Contains(t, res.Resident, newVar)
	_, sawOut := res.Swapout[varA]
	assert.True(t, sawOut, "evicted var should have a swapout entry even if clean (nil value)")
}

func TestForcedInsertSkipsRetainedCells(t *testing.T) {
	varA := &VarInfo{ID: "A", Size: 4}
	res := newAllocResult()
	res.Layout = []*SpmContent{
		{Content: nil, GapSize: 0},
		{Content: varA, GapSize: 0},
	}
	res.Resident[varA] = struct{}{}
	res.retainSet[varA] = struct{}{}
	recomputeLayout(res)

	ok := forcedInsert(res, &NodeAccess{Var: &VarInfo{ID: "B", Size: 4}, AccessCount: 1})
	assert.False(t, ok, "a retained cell must never be chosen for eviction")
}

func TestEvictCellRecordsSwapoutOnlyWhenDirty(t *testing.T) {
	clean := &VarInfo{ID: "clean", Size: 4}
	dirty := &VarInfo{ID: "dirty", Size: 4}

	res := newAllocResult()
	res.Resident[clean] = struct{}{}
	res.Resident[dirty] = struct{}{}
	res.Modified[dirty] = struct{}{}

	evictCell(res, &SpmContent{Addr: 0, Content: clean})
	evictCell(res, &SpmContent{Addr: 4, Content: dirty})

	assert.Nil(t, res.Swapout[clean])
	require.NotNil(t, res.Swapout[dirty])
	assert.Equal(t, int64(4), res.Swapout[dirty].FromAddr)
	assert.NotContains(t, res.Resident, clean)
	assert.NotContains(t, res.Resident, dirty)
}
