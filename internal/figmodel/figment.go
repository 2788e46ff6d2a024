package figmodel

import "github.com/storium/figmentator/internal/rng"

// FigmentStatus tracks a FigmentContext through generation. It only ever
// moves forward: Pending -> (Failed | Partial | Completed).
type FigmentStatus string

const (
	// StatusPending is the status of a context that has not yet been
	// processed by a model.
	StatusPending FigmentStatus = "pending"
	// StatusFailed means validation failed or the model produced no text.
	StatusFailed FigmentStatus = "failed"
	// StatusPartial means generation produced text but demand (a finite
	// range) was not yet satisfied.
	StatusPartial FigmentStatus = "partial"
	// StatusCompleted means generation satisfied the requested finite
	// range. A context with no range fails validation instead.
	StatusCompleted FigmentStatus = "completed"
)

// FigmentContext carries one in-flight generation request through the
// scheduler and into a model's Figmentate call.
type FigmentContext struct {
	Status FigmentStatus
	Range  *rng.Range
	Entry  *SceneEntry
	Data   interface{}
}
