package rng

import (
	"fmt"
	"strings"
)

// Trim truncates text at the byte position preceding the (end+1)-th
// chunk, by locating the rightmost occurrence of that chunk in text. It
// only applies to a Range naming exactly one Subrange, and is a no-op
// when that Subrange's stop bound is unset.
func (r Range) Trim(text string) (string, error) {
	if len(r.Ranges) != 1 {
		return "", fmt.Errorf("rng: Trim requires exactly one subrange, got %d", len(r.Ranges))
	}

	stop := r.Ranges[0].ToSlice().Stop
	if stop == nil {
		return text, nil
	}

	chunks, err := r.Unit.Chunk(text, true)
	if err != nil {
		return "", err
	}

	if chunks.Len() <= *stop {
		return text, nil
	}

	boundary := chunks.At(*stop)
	idx := strings.LastIndex(text, boundary)
	if idx < 0 {
		return text, nil
	}
	return text[:idx], nil
}
