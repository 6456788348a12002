// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spm

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// ErrMissingClassifier is returned by the access collector when no
// ir.AccessClassifier was supplied; there is no sensible default.
var ErrMissingClassifier = errors.New("spm: access classifier not configured")

// ErrNoMainProc is returned when an ir.Graph reports no entry procedure
// for the walker to seed from.
var ErrNoMainProc = errors.New("spm: graph has no main procedure")

// ErrOversizedVariable is never returned to the caller: an access whose
// size exceeds the scratchpad's capacity is silently dropped from its
// block's access list and logged at Debug. It is kept here so tests can
// assert on the Debug record without depending on the log message text.
var ErrOversizedVariable = errors.New("spm: variable larger than scratchpad capacity")

// invariant panics with a stack trace when an internal consistency check
// fails. These are programmer errors — a wrong cell ordering, a region
// index out of range — never conditions a caller can recover from.
func invariant(cond bool, format string, args ...any) {
	if cond {
		return
	}
	panic(pkgerrors.Errorf("spm: invariant violated: %s", fmt.Sprintf(format, args...)))
}
