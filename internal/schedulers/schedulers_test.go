package schedulers_test

import (
	"context"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storium/figmentator/internal/figmodel"
	"github.com/storium/figmentator/internal/pool"
	"github.com/storium/figmentator/internal/resource"
	"github.com/storium/figmentator/internal/scheduler"
	"github.com/storium/figmentator/internal/schedulers"
)

type okPool struct{}

func (okPool) Startup(ctx context.Context, properties map[string]interface{}) (bool, error) {
	return true, nil
}
func (okPool) Shutdown(ctx context.Context) error { return nil }
func (okPool) Preprocess(ctx context.Context, storySnapshot map[string]interface{}, data interface{}) (interface{}, error) {
	return storySnapshot, nil
}
func (okPool) Figmentate(ctx context.Context, contexts []*figmodel.FigmentContext) ([]*figmodel.FigmentContext, error) {
	return contexts, nil
}

func TestCollectionStartupAndShutdown(t *testing.T) {
	logger := hclog.NewNullLogger()
	c := schedulers.New(logger)

	res := resource.New(logger, func() pool.WorkerPool { return okPool{} }, nil)
	s := scheduler.New(logger, scheduler.DefaultSettings(), res)
	c.Register(figmodel.SceneEntrySuggestion, s)

	c.Startup(context.Background())
	assert.Contains(t, c.Types(), figmodel.SceneEntrySuggestion)

	got, ok := c.Get(figmodel.SceneEntrySuggestion)
	assert.True(t, ok)
	assert.Same(t, s, got)

	c.Shutdown(context.Background())
}

func TestCollectionGetUnknownType(t *testing.T) {
	c := schedulers.New(hclog.NewNullLogger())
	_, ok := c.Get(figmodel.SuggestionType("nope"))
	require.False(t, ok)
}
