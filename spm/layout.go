// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spm

// SpmContent is one occupied or free cell of a scratchpad layout. Layouts
// are kept as an address-ordered slice with a sentinel cell at index 0
// (Addr 0, Content nil) standing in for "nothing before the first real
// cell"; GapSize is the free space between this cell's end and the next
// cell's Addr (or the end of the scratchpad, for the last cell).
type SpmContent struct {
	Addr    int64
	Content *VarInfo
	GapSize int64
}

func cellSize(v *VarInfo) int64 {
	if v == nil {
		return 0
	}
	return int64(v.Size)
}

// newLayout returns a fresh single-sentinel layout for an empty
// scratchpad of the given capacity.
func newLayout(capacity int64) []*SpmContent {
	return []*SpmContent{{Addr: 0, Content: nil, GapSize: capacity}}
}

// recomputeLayout restores the Addr invariant (Addr[i+1] == Addr[i] +
// size(Content[i]) + GapSize[i]) after a structural edit, and resets
// res.FreeSpace to the sum of every cell's GapSize.
//
// Deriving both from scratch here, rather than tracking them
// incrementally at every insert/evict site, trades a little extra work
// for eliminating an entire class of off-by-one bookkeeping bugs.
func recomputeLayout(res *AllocResult) {
	var addr, free int64
	for _, c := range res.Layout {
		c.Addr = addr
		addr += cellSize(c.Content) + c.GapSize
		free += c.GapSize
	}
	res.FreeSpace = free
}

// bestFitInsert places v in the smallest gap that fits it, tie-broken by
// the first such gap encountered in ascending-address order. It reports
// false if no gap is large enough.
func bestFitInsert(res *AllocResult, acc *NodeAccess) bool {
	v := acc.Var
	bestIdx := -1
	var bestGap int64
	for i, c := range res.Layout {
		if c.GapSize >= int64(v.Size) && (bestIdx == -1 || c.GapSize < bestGap) {
			bestIdx, bestGap = i, c.GapSize
		}
	}
	if bestIdx == -1 {
		return false
	}
	prev := res.Layout[bestIdx]
	cell := &SpmContent{Content: v, GapSize: prev.GapSize - int64(v.Size)}
	prev.GapSize = 0
	tail := append([]*SpmContent{}, res.Layout[bestIdx+1:]...)
	res.Layout = append(append(res.Layout[:bestIdx+1], cell), tail...)

	res.CopyIn[v] = &Transfer{Direction: DirIn, Var: v}
	res.Resident[v] = struct{}{}
	if acc.Modified {
		res.Modified[v] = struct{}{}
	}
	if acc.WriteFirst {
		res.WriteFirst[v] = struct{}{}
	}
	recomputeLayout(res)
	res.CopyIn[v].ToAddr = cellAddrOf(res, v)
	return true
}

// isEvictCandidate is the predicate forcedInsert uses to decide whether a
// resident var may be displaced: anything not already retained or
// scheduled for copy-in this region is fair game.
func isEvictCandidate(res *AllocResult, v *VarInfo) bool {
	if v == nil {
		return false
	}
	if _, retained := res.retainSet[v]; retained {
		return false
	}
	if _, queued := res.CopyIn[v]; queued {
		return false
	}
	return true
}

// forcedInsert evicts the cheapest contiguous run of evictable cells wide
// enough to hold v — "cheapest" meaning minimal residual gap after v is
// placed, ties broken by the first window found in ascending-address
// order — and inserts v there. It reports false if no feasible window
// exists (every cell is retained, or the scratchpad is smaller than v).
func forcedInsert(res *AllocResult, acc *NodeAccess) bool {
	v := acc.Var
	n := len(res.Layout)
	bestStart, bestEnd := -1, -1
	var bestResidual int64

	for start := 1; start < n; start++ {
		if !isEvictCandidate(res, res.Layout[start].Content) {
			continue
		}
		swapoutSize := res.Layout[start-1].GapSize
		end := start
		feasible := true
		for {
			c := res.Layout[end]
			swapoutSize += cellSize(c.Content) + c.GapSize
			if swapoutSize >= int64(v.Size) {
				break
			}
			end++
			if end >= n || !isEvictCandidate(res, res.Layout[end].Content) {
				feasible = false
				break
			}
		}
		if !feasible {
			continue
		}
		residual := swapoutSize - int64(v.Size)
		if bestStart == -1 || residual < bestResidual {
			bestStart, bestEnd, bestResidual = start, end, residual
		}
	}
	if bestStart == -1 {
		return false
	}

	for i := bestStart; i <= bestEnd; i++ {
		evictCell(res, res.Layout[i])
	}
	prev := res.Layout[bestStart-1]
	cell := &SpmContent{Content: v, GapSize: bestResidual}
	prev.GapSize = 0
	tail := append([]*SpmContent{}, res.Layout[bestEnd+1:]...)
	res.Layout = append(append(res.Layout[:bestStart], cell), tail...)

	res.CopyIn[v] = &Transfer{Direction: DirIn, Var: v}
	res.Resident[v] = struct{}{}
	if acc.Modified {
		res.Modified[v] = struct{}{}
	}
	if acc.WriteFirst {
		res.WriteFirst[v] = struct{}{}
	}
	recomputeLayout(res)
	res.CopyIn[v].ToAddr = cellAddrOf(res, v)
	return true
}

// evictCell removes one resident cell, recording an OUT transfer only if
// its content was modified since residency began (a clean var needs no
// write-back — the RAM copy is already current).
func evictCell(res *AllocResult, c *SpmContent) {
	v := c.Content
	if _, dirty := res.Modified[v]; dirty {
		res.Swapout[v] = &Transfer{Direction: DirOut, Var: v, FromAddr: c.Addr}
	} else {
		res.Swapout[v] = nil
	}
	delete(res.Resident, v)
	delete(res.Modified, v)
	delete(res.WriteFirst, v)
}

func cellAddrOf(res *AllocResult, v *VarInfo) int64 {
	for _, c := range res.Layout {
		if c.Content == v {
			return c.Addr
		}
	}
	return 0
}

func findCellFor(res *AllocResult, v *VarInfo) *SpmContent {
	for _, c := range res.Layout {
		if c.Content == v {
			return c
		}
	}
	return nil
}
