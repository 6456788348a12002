// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command spmalloc runs the scratchpad allocator over a small built-in
// demo program and prints a summary of the result: each block's region
// count and loop, each loop closure's variable and pre-header transfer
// counts, and, with --verbose, each block's accesses and layouts. It
// exists to give the allocator an entry point a reader can run without
// wiring up a real compiler backend first.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/chenhengqi/go-spmalloc/spm"
	"github.com/chenhengqi/go-spmalloc/spmconfig"
	"github.com/chenhengqi/go-spmalloc/synthir"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := spmconfig.Default()

	root := &cobra.Command{
		Use:          "spmalloc",
		Short:        "compute a scratchpad-memory allocation for the built-in demo program",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}
	opts.BindFlags(root.Flags())
	return root
}

func run(cmd *cobra.Command, opts *spmconfig.Options) error {
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("spmalloc: %w", err)
	}

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	ctx := spm.NewContext(opts.Properties(), log)
	g := synthir.Demo()

	res, err := spm.FindAllocation(ctx, g, synthir.ClassifyAccess)
	if err != nil {
		log.Error("allocation failed", "err", err)
		return err
	}

	rw := &spm.Rewriter{Emit: synthir.NewEmitter(), Liveness: synthir.NoLiveness{}, ScratchReg: "r0"}
	spm.RewriteGraph(ctx, rw, g, synthir.ClassifyAccess, res)

	printReport(cmd, opts, g, res)
	return nil
}

func printReport(cmd *cobra.Command, opts *spmconfig.Options, g *synthir.Graph, res *spm.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scratchpad: %d bytes at 0x%x\n\n", opts.Size, opts.StartAddr)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROC\tBLOCK\tREGIONS\tLOOPS")
	for _, p := range g.Procs() {
		for _, b := range p.Blocks() {
			bd := res.BlockData[b]
			if bd == nil {
				continue
			}
			inLoop := "-"
			if b.LoopOf() != nil {
				inLoop = b.LoopOf().Header.ID()
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.ID(), b.ID(), len(bd.Allocations), inLoop)
		}
	}
	tw.Flush()

	if len(res.Loops) == 0 {
		return
	}
	fmt.Fprintln(out, "\nloop closures:")
	for _, loop := range res.Loops {
		fmt.Fprintf(out, " %s: %d variable(s) accessed in loop, %d pre-header transfer(s)\n",
			loop.Header.ID(), len(loop.MemAccesses), len(loop.Transfers))
	}

	if opts.Verbose {
		fmt.Fprintln(out, "\nper-block detail:")
		for _, p := range g.Procs() {
			for _, b := range p.Blocks() {
				if bd := res.BlockData[b]; bd != nil {
					fmt.Fprint(out, spm.DumpBlock(bd))
				}
			}
		}
	}
}
