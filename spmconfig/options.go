// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spmconfig binds the scratchpad allocator's cost model to
// command-line flags, separate from package spm so callers that embed
// the allocator in a larger pipeline aren't forced to depend on pflag.
package spmconfig

import (
	"fmt"

	"github.com/chenhengqi/go-spmalloc/spm"
	"github.com/spf13/pflag"
)

// Options is the flag-bindable form of spm.Properties, plus the switches
// that only make sense at the command-line boundary.
type Options struct {
	StartAddr     int64
	Size          int64
	LatencyDiff   float64
	ThroughputRAM float64
	ThroughputSPM float64

	Verbose bool
}

// Default returns the option set the demo fixtures were tuned against.
func Default() *Options {
	return &Options{
		StartAddr:     0,
		Size:          4096,
		LatencyDiff:   4.0,
		ThroughputRAM: 1.0,
		ThroughputSPM: 0.25,
	}
}

// BindFlags registers o's fields on fs, one long-form flag per field;
// --verbose also has the shorthand -v.
func (o *Options) BindFlags(fs *pflag.FlagSet) {
	fs.Int64Var(&o.StartAddr, "start-addr", o.StartAddr, "scratchpad base address")
	fs.Int64Var(&o.Size, "size", o.Size, "scratchpad capacity in bytes")
	fs.Float64Var(&o.LatencyDiff, "latency-diff", o.LatencyDiff, "per-access latency saved by SPM residency")
	fs.Float64Var(&o.ThroughputRAM, "tp-ram", o.ThroughputRAM, "per-byte transfer cost on the RAM side")
	fs.Float64Var(&o.ThroughputSPM, "tp-spm", o.ThroughputSPM, "per-byte transfer cost on the SPM side")
	fs.BoolVarP(&o.Verbose, "verbose", "v", o.Verbose, "print per-block access and layout detail")
}

// Validate rejects option combinations the solver has no sane behaviour
// for.
func (o *Options) Validate() error {
	if o.Size <= 0 {
		return fmt.Errorf("size must be > 0, got %d", o.Size)
	}
	if o.ThroughputRAM < 0 || o.ThroughputSPM < 0 {
		return fmt.Errorf("throughput costs must be >= 0")
	}
	return nil
}

// Properties converts o to the form package spm consumes.
func (o *Options) Properties() *spm.Properties {
	return &spm.Properties{
		StartAddr:     o.StartAddr,
		Size:          o.Size,
		LatencyDiff:   o.LatencyDiff,
		ThroughputRAM: o.ThroughputRAM,
		ThroughputSPM: o.ThroughputSPM,
	}
}
