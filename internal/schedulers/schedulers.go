// Package schedulers holds one scheduler per registered suggestion type,
// with coordinated, failure-tolerant startup and shutdown.
package schedulers

import (
	"context"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/storium/figmentator/internal/figmodel"
	"github.com/storium/figmentator/internal/scheduler"
)

// Collection holds one scheduler per suggestion type.
type Collection struct {
	logger     hclog.Logger
	schedulers map[figmodel.SuggestionType]*scheduler.Scheduler
}

// New constructs an empty Collection.
func New(logger hclog.Logger) *Collection {
	return &Collection{
		logger:     logger,
		schedulers: map[figmodel.SuggestionType]*scheduler.Scheduler{},
	}
}

// Register adds a scheduler for a suggestion type. Call before Startup.
func (c *Collection) Register(t figmodel.SuggestionType, s *scheduler.Scheduler) {
	c.schedulers[t] = s
}

// Get returns the scheduler for a suggestion type, if one is registered.
func (c *Collection) Get(t figmodel.SuggestionType) (*scheduler.Scheduler, bool) {
	s, ok := c.schedulers[t]
	return s, ok
}

// Types returns every suggestion type with a registered scheduler. Order
// is unspecified.
func (c *Collection) Types() []figmodel.SuggestionType {
	types := make([]figmodel.SuggestionType, 0, len(c.schedulers))
	for t := range c.schedulers {
		types = append(types, t)
	}
	return types
}

// Startup brings up every registered scheduler concurrently. A failure
// starting one scheduler is logged and does not prevent the others from
// starting.
func (c *Collection) Startup(ctx context.Context) {
	var wg sync.WaitGroup
	for t, s := range c.schedulers {
		wg.Add(1)
		go func(t figmodel.SuggestionType, s *scheduler.Scheduler) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error("scheduler startup panicked", "suggestion_type", t, "panic", r)
				}
			}()
			if err := s.Startup(ctx); err != nil {
				c.logger.Error("scheduler startup failed", "suggestion_type", t, "error", err)
			}
		}(t, s)
	}
	wg.Wait()
}

// Shutdown releases every registered scheduler concurrently, the same
// failure-tolerant way Startup does.
func (c *Collection) Shutdown(ctx context.Context) {
	var wg sync.WaitGroup
	for t, s := range c.schedulers {
		wg.Add(1)
		go func(t figmodel.SuggestionType, s *scheduler.Scheduler) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error("scheduler shutdown panicked", "suggestion_type", t, "panic", r)
				}
			}()
			if err := s.Shutdown(ctx); err != nil {
				c.logger.Error("scheduler shutdown failed", "suggestion_type", t, "error", err)
			}
		}(t, s)
	}
	wg.Wait()
}
