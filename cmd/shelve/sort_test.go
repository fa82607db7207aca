package main

import (
	"testing"

	"github.com/jamesainslie/shelve/pkg/shelve/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBreakpoints(t *testing.T) {
	bps, err := parseBreakpoints([]string{"1K", "1M", "1G"})
	require.NoError(t, err)
	assert.Equal(t, []int64{types.KiB, types.MiB, types.GiB}, bps)
}

func TestParseBreakpoints_Empty(t *testing.T) {
	bps, err := parseBreakpoints(nil)
	require.NoError(t, err)
	assert.Nil(t, bps)
}

func TestParseBreakpoints_Invalid(t *testing.T) {
	_, err := parseBreakpoints([]string{"1K", "huge"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "huge")
}
