// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spm

import (
	"log/slog"
)

// Properties is the cost model and physical geometry the solver and the
// benefit heuristic are parameterized over.
type Properties struct {
	// StartAddr is the scratchpad's base address in the processor's
	// address space; every SPM offset the allocator hands to an
	// ir.Emitter is already relative to this.
	StartAddr int64
	// Size is the scratchpad's usable capacity in bytes.
	Size int64
	// LatencyDiff is the per-access latency saved (in the solver's time
	// unit) by residing in SPM instead of RAM.
	LatencyDiff float64
	// ThroughputRAM and ThroughputSPM are the per-byte cost of a
	// transfer leg on each side of the copy; both feed the migration
	// term of the benefit heuristic.
	ThroughputRAM float64
	ThroughputSPM float64
}

// Context bundles the state threaded through a single allocation run:
// the variable registry, the configured cost model, and the logger every
// component reports through. A Context is not safe for concurrent use.
type Context struct {
	Registry *Registry
	Props    *Properties
	Log      *slog.Logger
}

// NewContext constructs a Context with a discarding logger if log is nil.
func NewContext(props *Properties, log *slog.Logger) *Context {
	if log == nil {
		log = slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}
	return &Context{
		Registry: NewRegistry(),
		Props:    props,
		Log:      log,
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
