// Package stubmodel is a dependency-free example model, useful for
// exercising the gateway end-to-end without a real inference backend. It
// "generates" a slice of a fixed lorem-ipsum stream under whatever unit
// the request asks for, driven by the shared CharacterEntryModel default
// algorithm (figmodel.RunCharacterEntryFigmentate) the same way any real
// model would be.
package stubmodel

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/text/unicode/norm"

	"github.com/storium/figmentator/internal/figmodel"
	"github.com/storium/figmentator/internal/profanity"
	"github.com/storium/figmentator/internal/registry"
	"github.com/storium/figmentator/internal/rng"
)

func init() {
	registry.Register(figmodel.SceneEntrySuggestion, func() figmodel.Model {
		return New()
	})
}

const loremIpsum = `Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do ` +
	`eiusmod tempor incididunt ut labore et dolore magna aliqua. Ut enim ad minim ` +
	`veniam, quis nostrud exercitation ullamco laboris nisi ut aliquip ex ea commodo ` +
	`consequat. Duis aute irure dolor in reprehenderit in voluptate velit esse ` +
	`cillum dolore eu fugiat nulla pariatur. Excepteur sint occaecat cupidatat non ` +
	`proident, sunt in culpa qui officia deserunt mollit anim id est laborum.`

// defaultWant bounds how many chunks Sample produces for an open-ended
// subrange, which Validate never actually lets through (it requires an
// end), but Process defends against anyway.
const defaultWant = 20

// Model is a trivial figmodel.CharacterEntryModel: it never actually
// consults the story, it just serves up a rotating slice of lorem ipsum
// text under whichever unit the caller asked for. It exists to give
// operators and tests something to run the gateway against without
// standing up real inference.
type Model struct {
	logger hclog.Logger
	filter *profanity.Filter

	chunks map[rng.Unit][]string

	preprocessTime time.Duration
	generationTime time.Duration
}

// New constructs a stub model with default (near-instant) simulated
// latencies; Startup can override them via properties.
func New() *Model {
	normalized := norm.NFC.String(loremIpsum)

	chunks := map[rng.Unit][]string{}
	for _, unit := range []rng.Unit{rng.Chars, rng.Words, rng.Tokens, rng.Sentences} {
		pieces, err := unit.Chunk(normalized, true)
		if err != nil {
			// The lorem-ipsum stream is fixed and known good; a chunking
			// failure here would be a programming error.
			panic(err)
		}
		out := make([]string, pieces.Len())
		for i := range out {
			out[i] = pieces.At(i)
		}
		chunks[unit] = out
	}

	filter, err := profanity.Default()
	if err != nil {
		filter = &profanity.Filter{}
	}

	return &Model{
		logger: hclog.NewNullLogger(),
		filter: filter,
		chunks: chunks,
	}
}

// Startup reads optional "preprocess_time"/"generation_time" (seconds, as
// float64) properties to simulate a slow backend for latency testing.
func (m *Model) Startup(properties map[string]interface{}) (bool, error) {
	if seconds, ok := floatProperty(properties, "preprocess_time"); ok {
		m.preprocessTime = time.Duration(seconds * float64(time.Second))
	}
	if seconds, ok := floatProperty(properties, "generation_time"); ok {
		m.generationTime = time.Duration(seconds * float64(time.Second))
	}
	return true, nil
}

// Shutdown is a no-op: the stub model holds no resources.
func (m *Model) Shutdown() error {
	return nil
}

// Preprocess returns the story snapshot unmodified, after simulating
// preprocessing latency.
func (m *Model) Preprocess(ctx context.Context, storySnapshot map[string]interface{}, data interface{}) (interface{}, error) {
	if err := sleep(ctx, m.preprocessTime); err != nil {
		return nil, err
	}
	return storySnapshot, nil
}

// Figmentate delegates to the shared CharacterEntryModel default
// algorithm: validate each context, process the survivors, sample the
// batch once, filter profanity, then decide completed vs. partial.
func (m *Model) Figmentate(ctx context.Context, contexts []*figmodel.FigmentContext) ([]*figmodel.FigmentContext, error) {
	return figmodel.RunCharacterEntryFigmentate(ctx, m, m.filter, m.logger, contexts)
}

// Validate requires exactly one bounded subrange whose start (if given)
// lines up with the description's current chunked length.
func (m *Model) Validate(fc *figmodel.FigmentContext) *rng.Slice {
	return figmodel.ValidateCharacterEntry(m.logger, fc)
}

// Process computes how many new chunks of the requested unit are needed
// to satisfy the subrange's end, starting from the description's current
// length.
func (m *Model) Process(ctx context.Context, fc *figmodel.FigmentContext) (figmodel.ProcessedEntry, error) {
	entry := fc.Entry
	if entry.Description == nil {
		empty := ""
		entry.Description = &empty
	}

	unit := fc.Range.Unit
	chunks, err := unit.Chunk(*entry.Description, false)
	if err != nil {
		return nil, err
	}
	index := chunks.Len()

	textRange := fc.Range.Slices()[0]
	want := defaultWant
	if textRange.Stop != nil {
		want = *textRange.Stop - index
		if want < 0 {
			want = 0
		}
	}

	leadSpace := (unit == rng.Words || unit == rng.Tokens || unit == rng.Sentences) &&
		*entry.Description != "" && !isAllSpace(*entry.Description)

	return figmodel.ProcessedEntry{
		"unit":      string(unit),
		"index":     index,
		"want":      want,
		"leadSpace": leadSpace,
	}, nil
}

// Sample renders want chunks of the requested unit starting at index,
// wrapping around the fixed lorem-ipsum stream if it runs out, joining
// them the way that unit's chunker would have produced them contiguously.
func (m *Model) Sample(ctx context.Context, processed []figmodel.ProcessedEntry) ([]string, error) {
	samples := make([]string, len(processed))
	for i, p := range processed {
		unit := rng.Unit(p["unit"].(string))
		index := p["index"].(int)
		want := p["want"].(int)
		leadSpace, _ := p["leadSpace"].(bool)

		samples[i] = m.slice(unit, index, want, leadSpace)
	}

	if err := sleep(ctx, m.generationTime); err != nil {
		return nil, err
	}
	return samples, nil
}

func (m *Model) slice(unit rng.Unit, index, want int, leadSpace bool) string {
	pieces := m.chunks[unit]
	if want <= 0 || len(pieces) == 0 {
		return ""
	}

	selected := make([]string, want)
	for i := 0; i < want; i++ {
		selected[i] = pieces[(index+i)%len(pieces)]
	}

	var joined string
	switch unit {
	case rng.Chars:
		joined = strings.Join(selected, "")
	default:
		joined = strings.Join(selected, " ")
	}

	if leadSpace {
		joined = " " + joined
	}
	return joined
}

func isAllSpace(s string) bool {
	return strings.TrimSpace(s) == ""
}

func floatProperty(properties map[string]interface{}, key string) (float64, bool) {
	if properties == nil {
		return 0, false
	}
	v, ok := properties[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
