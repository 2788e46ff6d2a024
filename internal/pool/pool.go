// Package pool implements the worker pools that back a figmentator
// resource: an in-process pool for lightweight/example models and tests,
// and a subprocess pool (via hashicorp/go-plugin) that runs a model in N
// genuinely separate OS processes so a crash never takes down the
// gateway.
package pool

import (
	"context"

	"github.com/storium/figmentator/internal/figmodel"
)

// WorkerPool is what a figmentator resource drives: it owns however many
// underlying workers a model needs and presents them as a single model
// surface. Startup/Shutdown bracket the pool's life; Preprocess and
// Figmentate do the actual work, dispatched to whichever worker the pool
// chooses.
type WorkerPool interface {
	// Startup brings up every worker and returns false if any of them
	// failed to initialize.
	Startup(ctx context.Context, properties map[string]interface{}) (bool, error)

	// Shutdown tears down every worker. Safe to call on a pool that never
	// finished Startup.
	Shutdown(ctx context.Context) error

	// Preprocess dispatches to a single worker (preprocessing is never
	// batched).
	Preprocess(ctx context.Context, storySnapshot map[string]interface{}, data interface{}) (interface{}, error)

	// Figmentate dispatches one batch to a single worker and returns its
	// result.
	Figmentate(ctx context.Context, contexts []*figmodel.FigmentContext) ([]*figmodel.FigmentContext, error)
}
