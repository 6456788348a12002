// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spm

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

var dumpConfig = &spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// DumpLayout renders one region's scratchpad layout as a line per cell,
// in address order: its byte range [start, end), variable ID, and whether
// it's dirty.
// Intended for Debug-level logging and test failure output, not for
// parsing.
func DumpLayout(res *AllocResult) string {
	if res == nil {
		return "<nil>"
	}
	var b strings.Builder
	for _, c := range res.Layout {
		if c.Content == nil {
			continue
		}
		_, dirty := res.Modified[c.Content]
		fmt.Fprintf(&b, "  [%6d,%6d) %-16s dirty=%v\n", c.Addr, c.Addr+cellSize(c.Content), c.Content.ID, dirty)
	}
	if b.Len() == 0 {
		return "  <empty>\n"
	}
	return b.String()
}

// DumpBlock pretty-prints a BlockData's access regions with go-spew and
// each solved region's layout with DumpLayout, for use behind a
// Debug-level log gate.
func DumpBlock(bd *BlockData) string {
	if bd == nil {
		return "<nil>"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "block %s: %d callees, %d regions\n", bd.Block.ID(), len(bd.Callees), len(bd.Regions))
	for i, region := range bd.Regions {
		fmt.Fprintf(&b, " region %d accesses:\n%s", i, dumpConfig.Sdump(region))
		if i < len(bd.Allocations) && bd.Allocations[i] != nil {
			fmt.Fprintf(&b, " region %d layout:\n%s", i, DumpLayout(bd.Allocations[i]))
		}
	}
	return b.String()
}
