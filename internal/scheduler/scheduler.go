// Package scheduler implements the batching scheduler: a
// per-suggestion-type input queue, a fixed pool of workers that fold
// concurrent requests into size-or-timeout bounded batches, and a
// figmentator resource that actually runs each batch.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/storium/figmentator/internal/figmodel"
	"github.com/storium/figmentator/internal/resource"
)

// Settings configures batch formation for one suggestion type.
type Settings struct {
	// WaitTime bounds how long a worker waits for more items once it
	// already holds at least one, before dispatching what it has.
	WaitTime time.Duration
	// MaxBatchSize bounds how many requests a single dispatch carries.
	MaxBatchSize int
	// NumWorkers is how many batches can be in flight concurrently.
	NumWorkers int
}

// DefaultSettings is what an unset FIG_SCHEDULER_<TYPE>_* leaves in place.
func DefaultSettings() Settings {
	return Settings{
		WaitTime:     100 * time.Millisecond,
		MaxBatchSize: 10,
		NumWorkers:   3,
	}
}

type pending struct {
	fc   *figmodel.FigmentContext
	done chan outcome
}

type outcome struct {
	fc  *figmodel.FigmentContext
	err error
}

// Scheduler batches concurrent Figmentate calls for one suggestion type
// and dispatches each batch to a Resource.
type Scheduler struct {
	logger   hclog.Logger
	settings Settings
	resource *resource.Resource

	queue   chan pending
	drain   sync.WaitGroup
	workers sync.WaitGroup
	cancel  context.CancelFunc
}

// New constructs a Scheduler bound to res. Startup must be called before
// Figmentate is used.
func New(logger hclog.Logger, settings Settings, res *resource.Resource) *Scheduler {
	if settings.MaxBatchSize < 1 {
		settings.MaxBatchSize = 1
	}
	if settings.NumWorkers < 1 {
		settings.NumWorkers = 1
	}

	return &Scheduler{
		logger:   logger,
		settings: settings,
		resource: res,
		queue:    make(chan pending, settings.MaxBatchSize*settings.NumWorkers),
	}
}

// Startup acquires the resource and starts the worker goroutines.
func (s *Scheduler) Startup(ctx context.Context) error {
	if err := s.resource.Acquire(ctx); err != nil {
		return fmt.Errorf("scheduler: acquiring resource: %w", err)
	}

	workerCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	for i := 0; i < s.settings.NumWorkers; i++ {
		s.workers.Add(1)
		go s.runWorker(workerCtx)
	}
	return nil
}

// Shutdown waits for every already-enqueued item to be dispatched,
// cancels the workers, waits for them to stop, then releases the
// resource. A batch already submitted to the resource runs to
// completion; cancellation only takes effect between batches.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.drain.Wait()
	if s.cancel != nil {
		s.cancel()
	}
	s.workers.Wait()
	return s.resource.Release(ctx)
}

// Figmentate enqueues fc, waits for it to be batched and processed, and
// returns the mutated context. If ctx is cancelled first, Figmentate
// returns ctx.Err() immediately; the scheduler still completes the
// request and simply discards the result, leaving the completion handle
// orphaned.
func (s *Scheduler) Figmentate(ctx context.Context, fc *figmodel.FigmentContext) (*figmodel.FigmentContext, error) {
	item := pending{fc: fc, done: make(chan outcome, 1)}

	s.drain.Add(1)
	select {
	case s.queue <- item:
	case <-ctx.Done():
		s.drain.Done()
		return nil, ctx.Err()
	}

	select {
	case result := <-item.done:
		return result.fc, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Preprocess dispatches directly through the resource; preprocessing is
// never batched.
func (s *Scheduler) Preprocess(ctx context.Context, storySnapshot map[string]interface{}, data interface{}) (interface{}, error) {
	return s.resource.Preprocess(ctx, storySnapshot, data)
}

// runWorker is the per-worker batching loop: blocking-take one item,
// accumulate more up to MaxBatchSize-1 bounded by WaitTime, then
// dispatch.
func (s *Scheduler) runWorker(ctx context.Context) {
	defer s.workers.Done()

	for {
		var first pending
		select {
		case <-ctx.Done():
			return
		case first = <-s.queue:
		}

		batch := s.accumulate(ctx, first)
		s.dispatch(ctx, batch)
	}
}

// accumulate grants each additional item its own WaitTime window: the
// timeout resets after every take, so a steady trickle keeps filling the
// batch until MaxBatchSize.
func (s *Scheduler) accumulate(ctx context.Context, first pending) []pending {
	batch := make([]pending, 0, s.settings.MaxBatchSize)
	batch = append(batch, first)

	for len(batch) < s.settings.MaxBatchSize {
		timer := time.NewTimer(s.settings.WaitTime)
		select {
		case item := <-s.queue:
			timer.Stop()
			batch = append(batch, item)
		case <-timer.C:
			return batch
		case <-ctx.Done():
			timer.Stop()
			return batch
		}
	}
	return batch
}

func (s *Scheduler) dispatch(ctx context.Context, batch []pending) {
	defer func() {
		for range batch {
			s.drain.Done()
		}
	}()

	contexts := make([]*figmodel.FigmentContext, len(batch))
	for i, item := range batch {
		contexts[i] = item.fc
	}

	// Blocks until the resource is ready, so a batch pulled during a
	// crash-triggered renew waits for the fresh pool rather than failing.
	leave, p, err := s.resource.Enter(ctx)
	if err != nil {
		for _, item := range batch {
			deliver(item, nil, fmt.Errorf("scheduler: entering resource: %w", err))
		}
		return
	}
	defer leave()

	s.resource.Process(context.Background(), p, contexts, func(i int, fc *figmodel.FigmentContext, err error) {
		deliver(batch[i], fc, err)
	})
}

func deliver(item pending, fc *figmodel.FigmentContext, err error) {
	item.done <- outcome{fc: fc, err: err}
}
