package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeNextRangeFitsInChunk(t *testing.T) {
	// "one two" = 2 tokens produced, max 5, chunk size 10 (remaining fits).
	r, err := ComputeNextRange("one two", Tokens, 5, 10)
	require.NoError(t, err)
	require.Len(t, r.Ranges, 1)
	assert.Equal(t, 2, *r.Ranges[0].Start)
	assert.Equal(t, 4, *r.Ranges[0].End)
}

func TestComputeNextRangeExceedsChunk(t *testing.T) {
	// remaining (8) exceeds chunk size (3): open-start range sized to chunk.
	r, err := ComputeNextRange("one two", Tokens, 10, 3)
	require.NoError(t, err)
	require.Len(t, r.Ranges, 1)
	assert.Nil(t, r.Ranges[0].Start)
	assert.Equal(t, 3, *r.Ranges[0].End)
}

func TestComputeNextRangeExhausted(t *testing.T) {
	r, err := ComputeNextRange("one two", Tokens, 2, 5)
	require.NoError(t, err)
	require.Len(t, r.Ranges, 1)
	assert.Equal(t, 2, *r.Ranges[0].Start)
	assert.Equal(t, 2, *r.Ranges[0].End)
}

func TestComputeFullRange(t *testing.T) {
	r, err := ComputeFullRange(Chars, 100, 10)
	require.NoError(t, err)
	require.Len(t, r.Ranges, 1)
	assert.Equal(t, 0, *r.Ranges[0].Start)
	assert.Equal(t, 99, *r.Ranges[0].End)
}
