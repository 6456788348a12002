// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandPrintsLayoutReport(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--size=128"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "scratchpad: 128 bytes")
	assert.Contains(t, out.String(), "loop closures:")
}

func TestRootCommandRejectsInvalidSize(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--size=0"})

	assert.Error(t, cmd.Execute())
}

func TestRootCommandVerbosePrintsPerBlockDetail(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--verbose"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "per-block detail:")
}
