package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimWords(t *testing.T) {
	r := Range{Unit: Words, Ranges: []Subrange{{Start: intp(0), End: intp(1)}}}
	trimmed, err := r.Trim("one two three four")
	require.NoError(t, err)
	assert.Equal(t, "one two ", trimmed)
}

func TestTrimNoExcess(t *testing.T) {
	r := Range{Unit: Words, Ranges: []Subrange{{Start: intp(0), End: intp(10)}}}
	trimmed, err := r.Trim("one two three")
	require.NoError(t, err)
	assert.Equal(t, "one two three", trimmed)
}

func TestTrimOpenEndedNoOp(t *testing.T) {
	r := Range{Unit: Words, Ranges: []Subrange{{Start: intp(0), End: nil}}}
	trimmed, err := r.Trim("one two three")
	require.NoError(t, err)
	assert.Equal(t, "one two three", trimmed)
}

func TestTrimRejectsMultiRange(t *testing.T) {
	r := Range{Unit: Words, Ranges: []Subrange{
		{Start: intp(0), End: intp(1)},
		{Start: intp(2), End: intp(3)},
	}}
	_, err := r.Trim("one two three four")
	assert.Error(t, err)
}
