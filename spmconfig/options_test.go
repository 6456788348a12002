// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spmconfig

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindFlagsOverridesDefaults(t *testing.T) {
	opts := Default()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts.BindFlags(fs)

	require.NoError(t, fs.Parse([]string{"--size=8192", "--start-addr=16", "--verbose"}))
	assert.Equal(t, int64(8192), opts.Size)
	assert.Equal(t, int64(16), opts.StartAddr)
	assert.True(t, opts.Verbose)
}

func TestValidateRejectsNonPositiveSize(t *testing.T) {
	opts := Default()
	opts.Size = 0
	assert.Error(t, opts.Validate())

	opts.Size = -1
	assert.Error(t, opts.Validate())
}

func TestValidateRejectsNegativeThroughput(t *testing.T) {
	opts := Default()
	opts.ThroughputRAM = -1
	assert.Error(t, opts.Validate())
}

func TestValidateAcceptsDefaults(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestPropertiesConversion(t *testing.T) {
	opts := Default()
	props := opts.Properties()
	assert.Equal(t, opts.StartAddr, props.StartAddr)
	assert.Equal(t, opts.Size, props.Size)
	assert.Equal(t, opts.LatencyDiff, props.LatencyDiff)
	assert.Equal(t, opts.ThroughputRAM, props.ThroughputRAM)
	assert.Equal(t, opts.ThroughputSPM, props.ThroughputSPM)
}
