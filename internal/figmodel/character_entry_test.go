package figmodel

import (
	"context"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storium/figmentator/internal/profanity"
	"github.com/storium/figmentator/internal/rng"
)

// fakeModel is a minimal CharacterEntryModel used to exercise the shared
// batch algorithm without any real inference.
type fakeModel struct {
	samples []string
}

func (m *fakeModel) Startup(map[string]interface{}) (bool, error) { return true, nil }
func (m *fakeModel) Shutdown() error                               { return nil }
func (m *fakeModel) Preprocess(context.Context, map[string]interface{}, interface{}) (interface{}, error) {
	return nil, nil
}
func (m *fakeModel) Figmentate(ctx context.Context, contexts []*FigmentContext) ([]*FigmentContext, error) {
	return nil, nil
}

func (m *fakeModel) Validate(fc *FigmentContext) *rng.Slice {
	return ValidateCharacterEntry(hclog.NewNullLogger(), fc)
}

func (m *fakeModel) Process(ctx context.Context, fc *FigmentContext) (ProcessedEntry, error) {
	return ProcessedEntry{"index": 0}, nil
}

func (m *fakeModel) Sample(ctx context.Context, processed []ProcessedEntry) ([]string, error) {
	return m.samples, nil
}

func intp(v int) *int { return &v }

func newContext(description string, unit rng.Unit, start, end *int) *FigmentContext {
	return &FigmentContext{
		Range: &rng.Range{Unit: unit, Ranges: []rng.Subrange{{Start: start, End: end}}},
		Entry: &SceneEntry{Description: &description},
	}
}

func noopFilter(t *testing.T) *profanity.Filter {
	t.Helper()
	f, err := profanity.New(nil, nil)
	require.NoError(t, err)
	return f
}

func TestRunCharacterEntryFigmentateCompletesOnFiniteRange(t *testing.T) {
	model := &fakeModel{samples: []string{" two three four"}}
	fc := newContext("one", rng.Words, intp(1), intp(2))

	out, err := RunCharacterEntryFigmentate(context.Background(), model, noopFilter(t), hclog.NewNullLogger(), []*FigmentContext{fc})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, StatusCompleted, out[0].Status)
	// The model overshot (4 words where only 3 were asked for); the
	// result is trimmed back to the last whole-chunk boundary.
	assert.Equal(t, "one two three ", *out[0].Entry.Description)
}

func TestRunCharacterEntryFigmentateTrimsOvershootToWholeChunkBoundary(t *testing.T) {
	model := &fakeModel{samples: []string{" two three four five"}}
	fc := newContext("one", rng.Words, intp(1), intp(1))

	out, err := RunCharacterEntryFigmentate(context.Background(), model, noopFilter(t), hclog.NewNullLogger(), []*FigmentContext{fc})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, out[0].Status)
	assert.Equal(t, "one two ", *out[0].Entry.Description)

	count, err := rng.Words.Count(*out[0].Entry.Description, true)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRunCharacterEntryFigmentatePartialWhenShortOfDemand(t *testing.T) {
	model := &fakeModel{samples: []string{" two"}}
	fc := newContext("one", rng.Words, intp(1), intp(5))

	out, err := RunCharacterEntryFigmentate(context.Background(), model, noopFilter(t), hclog.NewNullLogger(), []*FigmentContext{fc})
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, out[0].Status)
}

func TestRunCharacterEntryFigmentateFailsWithoutRange(t *testing.T) {
	model := &fakeModel{}
	fc := &FigmentContext{Entry: &SceneEntry{}}

	out, err := RunCharacterEntryFigmentate(context.Background(), model, noopFilter(t), hclog.NewNullLogger(), []*FigmentContext{fc})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, out[0].Status)
}

func TestRunCharacterEntryFigmentateFailsOnEmptySample(t *testing.T) {
	model := &fakeModel{samples: []string{""}}
	fc := newContext("one", rng.Words, intp(1), intp(2))

	out, err := RunCharacterEntryFigmentate(context.Background(), model, noopFilter(t), hclog.NewNullLogger(), []*FigmentContext{fc})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, out[0].Status)
}
