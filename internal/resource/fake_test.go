package resource

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/storium/figmentator/internal/figmodel"
	"github.com/storium/figmentator/internal/pool"
)

// fakePool is a minimal pool.WorkerPool used to exercise resource
// lifecycle and crash-recovery without a real model.
type fakePool struct {
	startCalls    int32
	shutdownCalls int32
	failFigmentate bool
}

func newFakePool() pool.WorkerPool {
	return &fakePool{}
}

func (p *fakePool) Startup(ctx context.Context, properties map[string]interface{}) (bool, error) {
	atomic.AddInt32(&p.startCalls, 1)
	return true, nil
}

func (p *fakePool) Shutdown(ctx context.Context) error {
	atomic.AddInt32(&p.shutdownCalls, 1)
	return nil
}

func (p *fakePool) Preprocess(ctx context.Context, storySnapshot map[string]interface{}, data interface{}) (interface{}, error) {
	return storySnapshot, nil
}

func (p *fakePool) Figmentate(ctx context.Context, contexts []*figmodel.FigmentContext) ([]*figmodel.FigmentContext, error) {
	if p.failFigmentate {
		return nil, fmt.Errorf("fakePool: figmentate failed")
	}
	for _, fc := range contexts {
		fc.Status = figmodel.StatusCompleted
	}
	return contexts, nil
}
