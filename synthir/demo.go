// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package synthir

import "github.com/chenhengqi/go-spmalloc/ir"

// Demo builds a small but non-trivial fixture: a main procedure with a
// global counter, a loop that calls a leaf procedure once per iteration,
// and a loop-carried pointer variable — enough to exercise the access
// collector, the frequency propagator, loop closure, and a forced
// eviction or two under a small scratchpad.
func Demo() *Graph {
	b := NewBuilder()

	hot := b.Proc("hot")
	hot.Entry().Access("hot.tmp", "local_tmp", ir.StackAccess, 4, true)

	main := b.Proc("main")
	main.Entry().Access("main.g0", "g_total", ir.GlobalAccess, 4, true)

	header := main.Block("main.header").Freq(1.0)
	body := main.Block("main.body").Freq(0.9)
	exit := main.Block("main.exit").Freq(1.0)

	loop := &ir.Loop{Header: header.Block()}
	header.Loop(loop)
	body.Loop(loop)

	main.Entry().To(header, false)
	header.To(body, false)
	header.To(exit, false)

	body.Access("body.arr", "arr_ptr", ir.StackAccess, 8, false)
	body.Call("body.call", hot)
	body.Access("body.g0", "g_total", ir.GlobalAccess, 4, true)
	body.To(header, true)

	exit.Access("exit.g0", "g_total", ir.GlobalAccess, 4, false)

	main.CallTo(hot)
	main.SetEnd(exit)
	b.SetMain(main)

	return b.Build()
}
