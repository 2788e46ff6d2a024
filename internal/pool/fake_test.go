package pool

import (
	"context"

	"github.com/storium/figmentator/internal/figmodel"
)

// fakeModel is a minimal figmodel.Model used to exercise pool dispatch
// without any real inference.
type fakeModel struct {
	startCalls int
	started    bool
}

func (m *fakeModel) Startup(map[string]interface{}) (bool, error) {
	m.startCalls++
	m.started = true
	return true, nil
}

func (m *fakeModel) Shutdown() error {
	m.started = false
	return nil
}

func (m *fakeModel) Preprocess(ctx context.Context, storySnapshot map[string]interface{}, data interface{}) (interface{}, error) {
	return storySnapshot, nil
}

func (m *fakeModel) Figmentate(ctx context.Context, contexts []*figmodel.FigmentContext) ([]*figmodel.FigmentContext, error) {
	for _, fc := range contexts {
		fc.Status = figmodel.StatusCompleted
	}
	return contexts, nil
}
