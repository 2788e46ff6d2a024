package stubmodel

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storium/figmentator/internal/figmodel"
	"github.com/storium/figmentator/internal/rng"
)

func intp(v int) *int { return &v }

func TestFigmentateFillsWordRangePartially(t *testing.T) {
	m := New()
	ok, err := m.Startup(nil)
	require.NoError(t, err)
	require.True(t, ok)

	desc := ""
	fc := &figmodel.FigmentContext{
		Entry: &figmodel.SceneEntry{Description: &desc},
		Range: &rng.Range{Unit: rng.Words, Ranges: []rng.Subrange{{Start: intp(0), End: intp(4)}}},
	}

	out, err := m.Figmentate(context.Background(), []*figmodel.FigmentContext{fc})
	require.NoError(t, err)
	assert.Equal(t, figmodel.StatusPartial, out[0].Status)
	assert.Equal(t, "Lorem ipsum dolor sit amet", *out[0].Entry.Description)
}

func TestFigmentateFailsOnMismatchedStart(t *testing.T) {
	m := New()
	_, err := m.Startup(nil)
	require.NoError(t, err)

	desc := "already has words here"
	fc := &figmodel.FigmentContext{
		Entry: &figmodel.SceneEntry{Description: &desc},
		Range: &rng.Range{Unit: rng.Words, Ranges: []rng.Subrange{{Start: intp(0), End: intp(1)}}},
	}

	out, err := m.Figmentate(context.Background(), []*figmodel.FigmentContext{fc})
	require.NoError(t, err)
	assert.Equal(t, figmodel.StatusFailed, out[0].Status)
}

func TestFigmentateMissingRangeFails(t *testing.T) {
	m := New()
	_, err := m.Startup(nil)
	require.NoError(t, err)

	desc := ""
	fc := &figmodel.FigmentContext{Entry: &figmodel.SceneEntry{Description: &desc}}

	out, err := m.Figmentate(context.Background(), []*figmodel.FigmentContext{fc})
	require.NoError(t, err)
	assert.Equal(t, figmodel.StatusFailed, out[0].Status)
}

func TestFigmentateTokensAdvanceAcrossCalls(t *testing.T) {
	m := New()
	_, err := m.Startup(nil)
	require.NoError(t, err)

	desc := ""
	fc := &figmodel.FigmentContext{
		Entry: &figmodel.SceneEntry{Description: &desc},
		Range: &rng.Range{Unit: rng.Tokens, Ranges: []rng.Subrange{{Start: intp(0), End: intp(0)}}},
	}
	out, err := m.Figmentate(context.Background(), []*figmodel.FigmentContext{fc})
	require.NoError(t, err)
	assert.Equal(t, figmodel.StatusPartial, out[0].Status)
	assert.Len(t, strings.Fields(*out[0].Entry.Description), 1)

	fc.Range = &rng.Range{Unit: rng.Tokens, Ranges: []rng.Subrange{{Start: intp(1), End: intp(1)}}}
	out, err = m.Figmentate(context.Background(), []*figmodel.FigmentContext{fc})
	require.NoError(t, err)
	assert.Equal(t, figmodel.StatusPartial, out[0].Status)
	assert.Len(t, strings.Fields(*out[0].Entry.Description), 2)
}

func TestFigmentateCharsRangeExactBoundary(t *testing.T) {
	m := New()
	_, err := m.Startup(nil)
	require.NoError(t, err)

	desc := ""
	fc := &figmodel.FigmentContext{
		Entry: &figmodel.SceneEntry{Description: &desc},
		Range: &rng.Range{Unit: rng.Chars, Ranges: []rng.Subrange{{Start: intp(0), End: intp(2)}}},
	}

	out, err := m.Figmentate(context.Background(), []*figmodel.FigmentContext{fc})
	require.NoError(t, err)
	// The stub generates exactly the requested chunk count, so it lands
	// exactly on the boundary (Partial), never overshooting; see
	// internal/figmodel for overshoot/trim coverage.
	assert.Equal(t, figmodel.StatusPartial, out[0].Status)
	assert.Equal(t, "Lor", *out[0].Entry.Description)
}
