package rng

import "fmt"

// ComputeNextRange returns the next subrange of unit-chunks to request
// for text already produced, bounded by chunkSize and by maxLength
// overall. If text already exceeds maxLength, it returns a Range with no
// subranges; if text is exactly at maxLength, it returns the subrange
// n-n, where n is the current chunk count.
func ComputeNextRange(text string, unit Unit, maxLength, chunkSize int) (Range, error) {
	if chunkSize <= 0 {
		return Range{}, fmt.Errorf("rng: chunkSize must be positive, got %d", chunkSize)
	}

	textLen, err := unit.Count(text, false)
	if err != nil {
		return Range{}, err
	}

	remaining := maxLength - textLen

	var subranges []Subrange
	switch {
	case remaining > 0:
		size := remaining
		if chunkSize < remaining {
			size = chunkSize
		}

		var start *int
		var end int
		if size == remaining {
			s := textLen
			start = &s
			end = textLen + remaining - 1
		} else {
			end = size
		}
		subranges = append(subranges, Subrange{Start: start, End: &end})
	case remaining == 0:
		s := textLen
		e := textLen
		subranges = append(subranges, Subrange{Start: &s, End: &e})
	}

	return Range{Unit: unit, Ranges: subranges}, nil
}

// ComputeFullRange returns the range spanning [0, maxLength-1] under unit.
func ComputeFullRange(unit Unit, maxLength, chunkSize int) (Range, error) {
	if chunkSize <= 0 {
		return Range{}, fmt.Errorf("rng: chunkSize must be positive, got %d", chunkSize)
	}

	start := 0
	end := maxLength - 1
	return Range{Unit: unit, Ranges: []Subrange{{Start: &start, End: &end}}}, nil
}
