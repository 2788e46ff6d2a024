package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/storium/figmentator/internal/figmodel"
)

// InProcessPool runs N model instances as goroutine-guarded values in the
// current process. It is used for models cheap and safe enough to run
// in-process (the bundled example model) and for deterministic tests that
// don't want the cost or nondeterminism of real subprocesses.
type InProcessPool struct {
	mu      sync.Mutex
	workers []*inProcessWorker
	next    uint64
}

type inProcessWorker struct {
	mu    sync.Mutex
	model figmodel.Model
}

// NewInProcessPool constructs a pool of n workers, each running its own
// Model built by newModel.
func NewInProcessPool(n int, newModel func() figmodel.Model) *InProcessPool {
	workers := make([]*inProcessWorker, n)
	for i := range workers {
		workers[i] = &inProcessWorker{model: newModel()}
	}
	return &InProcessPool{workers: workers}
}

func (p *InProcessPool) pick() *inProcessWorker {
	i := atomic.AddUint64(&p.next, 1)
	return p.workers[int(i)%len(p.workers)]
}

// Startup starts every worker's model. It reports false if any worker
// fails to start.
func (p *InProcessPool) Startup(ctx context.Context, properties map[string]interface{}) (bool, error) {
	ok := true
	for _, w := range p.workers {
		w.mu.Lock()
		started, err := w.model.Startup(properties)
		w.mu.Unlock()
		if err != nil {
			return false, fmt.Errorf("pool: starting in-process worker: %w", err)
		}
		ok = ok && started
	}
	return ok, nil
}

// Shutdown shuts down every worker's model.
func (p *InProcessPool) Shutdown(ctx context.Context) error {
	for _, w := range p.workers {
		w.mu.Lock()
		err := w.model.Shutdown()
		w.mu.Unlock()
		if err != nil {
			return fmt.Errorf("pool: shutting down in-process worker: %w", err)
		}
	}
	return nil
}

// Preprocess dispatches to one worker, chosen round-robin.
func (p *InProcessPool) Preprocess(ctx context.Context, storySnapshot map[string]interface{}, data interface{}) (interface{}, error) {
	w := p.pick()
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.model.Preprocess(ctx, storySnapshot, data)
}

// Figmentate dispatches one batch to one worker, chosen round-robin.
func (p *InProcessPool) Figmentate(ctx context.Context, contexts []*figmodel.FigmentContext) ([]*figmodel.FigmentContext, error) {
	w := p.pick()
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.model.Figmentate(ctx, contexts)
}
