package figmodel

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/storium/figmentator/internal/profanity"
	"github.com/storium/figmentator/internal/rng"
)

// ValidateCharacterEntry implements the Validate every CharacterEntryModel
// shares: it requires exactly one subrange with a known end, and (if a
// start is given) that it lines up with how much of the description
// already exists.
func ValidateCharacterEntry(logger hclog.Logger, fc *FigmentContext) *rng.Slice {
	entry := fc.Entry
	if entry.Description == nil {
		empty := ""
		entry.Description = &empty
	}

	if fc.Range == nil {
		logger.Warn("no range specified")
		return nil
	}

	if len(fc.Range.Ranges) > 1 {
		logger.Warn("too many ranges specified")
		return nil
	}

	textRange := fc.Range.Slices()[0]
	if textRange.Stop == nil {
		logger.Warn("no range end specified")
		return nil
	}

	chunks, err := fc.Range.Unit.Chunk(*entry.Description, false)
	if err != nil {
		logger.Warn("failed to chunk description", "error", err)
		return nil
	}
	index := chunks.Len()

	if textRange.Start != nil && *textRange.Start != index {
		logger.Warn("unexpected range start specified", "start", *textRange.Start, "index", index)
		return nil
	}

	return &textRange
}

// RunCharacterEntryFigmentate implements the shared batch algorithm every
// CharacterEntryModel uses: validate and process each context, sample the
// survivors as one batch, filter profanity out of the results, then apply
// each result and decide completed-vs-partial.
func RunCharacterEntryFigmentate(
	ctx context.Context,
	model CharacterEntryModel,
	filter *profanity.Filter,
	logger hclog.Logger,
	contexts []*FigmentContext,
) ([]*FigmentContext, error) {
	var segments []rng.Slice
	var processed []ProcessedEntry
	var survivors []*FigmentContext

	for _, fc := range contexts {
		segment := model.Validate(fc)
		if segment == nil {
			fc.Status = StatusFailed
			continue
		}

		entry, err := model.Process(ctx, fc)
		if err != nil {
			return nil, fmt.Errorf("figmodel: processing context: %w", err)
		}
		if entry == nil {
			fc.Status = StatusFailed
			continue
		}

		segments = append(segments, *segment)
		processed = append(processed, entry)
		survivors = append(survivors, fc)
	}

	var samples []string
	if len(processed) > 0 {
		var err error
		samples, err = model.Sample(ctx, processed)
		if err != nil {
			return nil, fmt.Errorf("figmodel: sampling: %w", err)
		}
	}

	for i, fc := range survivors {
		sample := samples[i]
		filtered, err := filter.Filter(sample)
		if err != nil {
			return nil, fmt.Errorf("figmodel: filtering sample: %w", err)
		}

		if filtered == "" {
			fc.Status = StatusFailed
			continue
		}

		*fc.Entry.Description += filtered
		chunks, err := fc.Range.Unit.Chunk(*fc.Entry.Description, true)
		if err != nil {
			return nil, fmt.Errorf("figmodel: chunking result: %w", err)
		}

		segment := segments[i]
		if fc.Range.IsFinite() && chunks.Len() > *segment.Stop {
			trimmed, err := fc.Range.Trim(*fc.Entry.Description)
			if err != nil {
				return nil, fmt.Errorf("figmodel: trimming overshoot: %w", err)
			}
			fc.Entry.Description = &trimmed
			fc.Status = StatusCompleted
		} else {
			fc.Status = StatusPartial
		}
	}

	return contexts, nil
}
