// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package synthir

import "github.com/chenhengqi/go-spmalloc/ir"

// NoLiveness is a spm.ScratchLiveness that always reports the scratch
// register dead, for callers (the demo command, most tests) that don't
// need the rewriter to save/restore it around a transfer sequence.
type NoLiveness struct{}

func (NoLiveness) LiveAt(at ir.Instr) (ir.Instr, bool) { return nil, false }
