// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spm

import "sort"

// Diff reconciles source against target, returning the transfers that
// turn source's scratchpad contents into target's: a var resident in
// both but at different addresses becomes a DirMov, a var resident only
// in target becomes a DirIn, and a var resident only in source becomes a
// DirOut if dirty (dropped silently otherwise — its RAM copy is already
// current). Both allocations are left unmodified; the caller attaches the
// result as whichever side's exit-time compensation is appropriate.
func Diff(target, source *AllocResult) []*Transfer {
	var out []*Transfer
	si := 1
	for _, tcell := range target.Layout[1:] {
		for si < len(source.Layout) && source.Layout[si].Addr < tcell.Addr {
			out = append(out, outIfDirty(target, source, source.Layout[si])...)
			si++
		}
		if si < len(source.Layout) && source.Layout[si].Content == tcell.Content && source.Layout[si].Addr == tcell.Addr {
			si++
			continue
		}
		if scell := findCellFor(source, tcell.Content); scell != nil {
			out = append(out, &Transfer{Direction: DirMov, Var: tcell.Content, FromAddr: scell.Addr, ToAddr: tcell.Addr})
		} else {
			out = append(out, &Transfer{Direction: DirIn, Var: tcell.Content, ToAddr: tcell.Addr})
		}
	}
	for si < len(source.Layout) {
		out = append(out, outIfDirty(target, source, source.Layout[si])...)
		si++
	}
	sortTransfers(out)
	return out
}

func outIfDirty(target, source *AllocResult, c *SpmContent) []*Transfer {
	if c.Content == nil {
		return nil
	}
	if _, inTarget := target.Resident[c.Content]; inTarget {
		return nil
	}
	if _, dirty := source.Modified[c.Content]; dirty {
		return []*Transfer{{Direction: DirOut, Var: c.Content, FromAddr: c.Addr}}
	}
	return nil
}

// sortTransfers orders transfers deterministically, independent of Go's
// unordered map iteration, while preserving the one ordering constraint
// the rewriter depends on for correctness: every DirOut, which reads an
// SPM cell before it is overwritten, must be emitted before any DirIn or
// DirMov that writes that cell's address with new contents. Within the
// OUT group and within the IN/MOV group, transfers are further ordered
// by variable ID for a stable, reproducible instruction sequence.
func sortTransfers(ts []*Transfer) {
	sort.SliceStable(ts, func(i, j int) bool {
		ri, rj := transferRank(ts[i]), transferRank(ts[j])
		if ri != rj {
			return ri < rj
		}
		return ts[i].Var.ID < ts[j].Var.ID
	})
}

// transferRank places DirOut ahead of DirIn/DirMov so an eviction's
// flush-to-RAM is always emitted before a later transfer reuses the
// freed address.
func transferRank(t *Transfer) int {
	if t.Direction == DirOut {
		return 0
	}
	return 1
}
