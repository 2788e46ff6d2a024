// Package resource implements the figmentator resource: a scoped holder
// around one running model's worker pool, with acquire/release/renew
// lifecycle and crash recovery.
package resource

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/storium/figmentator/internal/figmodel"
	"github.com/storium/figmentator/internal/pool"
)

// PoolFactory builds a fresh, unstarted worker pool. Acquire and Renew
// call it to get a pool to start; the old pool (if any) is never reused.
type PoolFactory func() pool.WorkerPool

// Resource owns one figmentator's worker pool across its Initialized ->
// Ready -> Draining -> Initialized lifecycle. The zero value is not
// usable; construct with New.
type Resource struct {
	logger     hclog.Logger
	newPool    PoolFactory
	properties map[string]interface{}

	mu      sync.Mutex
	current pool.WorkerPool
	ready   bool
	readyCh chan struct{}
	users   int
}

// New constructs a Resource in the Initialized state. properties are
// passed to the pool's Startup on every Acquire/Renew.
func New(logger hclog.Logger, newPool PoolFactory, properties map[string]interface{}) *Resource {
	return &Resource{
		logger:     logger,
		newPool:    newPool,
		properties: properties,
		readyCh:    make(chan struct{}),
	}
}

// clearReadyLocked drops the ready flag and re-arms the channel Enter
// waits on. Callers must hold mu.
func (r *Resource) clearReadyLocked() {
	if r.ready {
		r.ready = false
		r.readyCh = make(chan struct{})
	}
}

// setReadyLocked raises the ready flag and wakes every Enter waiting on
// it. Callers must hold mu.
func (r *Resource) setReadyLocked() {
	if !r.ready {
		r.ready = true
		close(r.readyCh)
	}
}

// Acquire builds a fresh pool and brings it up, entering the Ready state
// on success. Calling Acquire while already Ready leaks the previous
// pool; callers should use Renew instead.
func (r *Resource) Acquire(ctx context.Context) error {
	r.mu.Lock()
	r.clearReadyLocked()
	r.mu.Unlock()

	p := r.newPool()
	ok, err := p.Startup(ctx, r.properties)
	if err != nil {
		return fmt.Errorf("resource: starting pool: %w", err)
	}
	if !ok {
		return fmt.Errorf("resource: pool reported an unhealthy startup")
	}

	r.mu.Lock()
	r.current = p
	r.setReadyLocked()
	r.mu.Unlock()
	return nil
}

// Release clears ready, shuts down the current pool, and enters the
// Initialized state. Safe to call on a Resource that never acquired.
func (r *Resource) Release(ctx context.Context) error {
	r.mu.Lock()
	r.clearReadyLocked()
	p := r.current
	r.current = nil
	r.mu.Unlock()

	if p == nil {
		return nil
	}
	return p.Shutdown(ctx)
}

// Renew releases the current pool and acquires a fresh one. This is how
// a model crash is recovered: exactly one model instance exists per
// suggestion type, and Renew is the only way that instance is replaced.
func (r *Resource) Renew(ctx context.Context) error {
	if err := r.Release(ctx); err != nil {
		r.logger.Warn("resource: release during renew failed", "error", err)
	}
	return r.Acquire(ctx)
}

// Ready reports whether the resource currently has a usable pool.
func (r *Resource) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

// Enter brackets the guarded scope: callers enter before driving the
// pool and leave when done. Enter blocks until the resource is ready, so
// a request arriving during a reacquire waits for the fresh pool instead
// of failing; it returns an error only when ctx is cancelled first. If
// ready was cleared (by Process observing a pool failure) while scope
// users were active, the last user to leave triggers a Renew.
func (r *Resource) Enter(ctx context.Context) (leave func(), p pool.WorkerPool, err error) {
	for {
		r.mu.Lock()
		if r.ready {
			r.users++
			p = r.current
			r.mu.Unlock()
			return r.leave(ctx), p, nil
		}
		ch := r.readyCh
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-ch:
		}
	}
}

func (r *Resource) leave(ctx context.Context) func() {
	return func() {
		r.mu.Lock()
		r.users--
		needsRenew := !r.ready && r.users == 0
		r.mu.Unlock()

		if needsRenew {
			if err := r.Renew(ctx); err != nil {
				r.logger.Error("resource: renew after failure failed", "error", err)
			}
		}
	}
}

// Process submits one batch to p.Figmentate and reports each context's
// outcome through deliver(index, context, err). On any error every
// context is reported with the same error and ready is cleared so the
// scope's last user triggers a Renew; on success each element is
// reported with a nil error.
func (r *Resource) Process(ctx context.Context, p pool.WorkerPool, batch []*figmodel.FigmentContext, deliver func(int, *figmodel.FigmentContext, error)) {
	results, err := p.Figmentate(ctx, batch)
	if err != nil {
		r.mu.Lock()
		r.clearReadyLocked()
		r.mu.Unlock()

		for i, fc := range batch {
			deliver(i, fc, err)
		}
		return
	}

	for i, fc := range results {
		deliver(i, fc, nil)
	}
}

// Preprocess dispatches a single preprocess call through the guarded
// scope, the same crash-recovery path Process uses for batches.
func (r *Resource) Preprocess(ctx context.Context, storySnapshot map[string]interface{}, data interface{}) (interface{}, error) {
	leave, p, err := r.Enter(ctx)
	if err != nil {
		return nil, err
	}
	defer leave()

	result, err := p.Preprocess(ctx, storySnapshot, data)
	if err != nil {
		r.mu.Lock()
		r.clearReadyLocked()
		r.mu.Unlock()
		return nil, fmt.Errorf("resource: preprocessing: %w", err)
	}
	return result, nil
}
