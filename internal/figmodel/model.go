package figmodel

import (
	"context"

	"github.com/storium/figmentator/internal/rng"
)

// Model is the contract every generation backend must satisfy. A Model
// instance is owned by exactly one worker at a time; Startup/Shutdown
// bracket its lifetime and Preprocess/Figmentate do the actual work.
type Model interface {
	// Startup loads whatever the model needs (weights, a client, a
	// subprocess) and reports whether it came up healthy.
	Startup(properties map[string]interface{}) (bool, error)

	// Shutdown releases everything Startup acquired.
	Shutdown() error

	// Preprocess turns a raw story snapshot into whatever opaque
	// representation Figmentate wants to consume. data, if non-nil, is a
	// previously preprocessed snapshot of the same story that can be
	// incrementally updated instead of recomputed from scratch.
	Preprocess(ctx context.Context, storySnapshot map[string]interface{}, data interface{}) (interface{}, error)

	// Figmentate generates a figment for every context in the batch,
	// mutating each context's Entry and Status in place, and returns the
	// same slice.
	Figmentate(ctx context.Context, contexts []*FigmentContext) ([]*FigmentContext, error)
}

// ProcessedEntry is the intermediate representation a CharacterEntryModel
// produces from a validated FigmentContext, ready for batched sampling.
type ProcessedEntry map[string]interface{}

// CharacterEntryModel refines Model for backends that generate a
// continuation of a character's scene entry description. Validate/Process
// run per-context; Sample runs once over the whole surviving batch so a
// model can batch its underlying inference call.
type CharacterEntryModel interface {
	Model

	// Validate checks that a context's range is well-formed for a
	// character entry continuation and returns the half-open slice of
	// chunks still required, or nil if the context cannot be satisfied.
	Validate(fc *FigmentContext) *rng.Slice

	// Process performs any per-context preparation (e.g. tokenization)
	// needed before Sample runs. A nil return fails the context.
	Process(ctx context.Context, fc *FigmentContext) (ProcessedEntry, error)

	// Sample generates one continuation string per processed entry, in
	// the same order. An empty string at position i fails that context.
	Sample(ctx context.Context, processed []ProcessedEntry) ([]string, error)
}
