package rng

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/unicode/norm"
)

// Chunks is the result of chunking a string under some Unit: a sequence
// whose length is the "chunk count" used to evaluate completion, and
// whose elements can be located back in the original text for trimming.
type Chunks interface {
	Len() int
	At(i int) string
}

type runeChunks []rune

func (c runeChunks) Len() int      { return len(c) }
func (c runeChunks) At(i int) string { return string(c[i]) }

type stringChunks []string

func (c stringChunks) Len() int        { return len(c) }
func (c stringChunks) At(i int) string { return c[i] }

// word and non-word/non-space runs, mirroring a simple tokenizer that
// separates contiguous word characters from contiguous punctuation.
var wordPattern = regexp2.MustCompile(`\w+|[^\w\s]+`, regexp2.None)

// backtick isolates the one character that can't appear inside a Go raw
// string literal, so the sentence-boundary pattern below can still be
// written mostly as raw strings.
const backtick = "`"

// sentenceBoundary matches the whitespace run between two sentences: it
// requires two word characters, optional trailing punctuation and a
// closing quote/markdown marker, then whitespace, then an optional
// opening quote/markdown marker and an uppercase letter. English-centric
// by design (see the Open Questions in DESIGN.md).
var sentenceBoundary = regexp2.MustCompile(
	`(?<=\w\w[!"#$%&'()*+,\-./:;<=>?@\[\]^_`+backtick+`{|}~]*[.?!]+[*_~"'”´’‚,„]*)(?:\s|\r\n)+(?=[*_~"'“`+backtick+`‘]*[A-Z])`,
	regexp2.None,
)

// Chunk splits text into the unit's chunks. keepFragments only affects
// the sentences unit: when false, a trailing sentence fragment (one that
// doesn't itself end a sentence) is dropped.
func (u Unit) Chunk(text string, keepFragments bool) (Chunks, error) {
	switch u {
	case Chars:
		return runeChunks([]rune(norm.NFC.String(text))), nil
	case Words:
		words, err := findAllStrings(wordPattern, text)
		if err != nil {
			return nil, err
		}
		return stringChunks(words), nil
	case Tokens:
		return stringChunks(strings.Fields(text)), nil
	case Sentences:
		sentences, err := splitSentences(text, keepFragments)
		if err != nil {
			return nil, err
		}
		return stringChunks(sentences), nil
	default:
		return nil, fmt.Errorf("rng: unknown unit %q", u)
	}
}

// Count is a convenience for len(Chunk(text, keepFragments)).
func (u Unit) Count(text string, keepFragments bool) (int, error) {
	chunks, err := u.Chunk(text, keepFragments)
	if err != nil {
		return 0, err
	}
	return chunks.Len(), nil
}

func findAllStrings(re *regexp2.Regexp, text string) ([]string, error) {
	runes := []rune(text)
	var out []string
	m, err := re.FindStringMatch(text)
	if err != nil {
		return nil, err
	}
	for m != nil {
		out = append(out, string(runes[m.Index:m.Index+m.Length]))
		m, err = re.FindNextMatch(m)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func splitSentences(text string, keepFragments bool) ([]string, error) {
	pieces, err := splitByBoundary(text)
	if err != nil {
		return nil, err
	}

	if !keepFragments && len(pieces) > 0 {
		last := pieces[len(pieces)-1]
		probe, err := splitByBoundary(last + " A")
		if err != nil {
			return nil, err
		}
		if len(probe) == 1 {
			// The last sentence never reached a boundary on its own; it's
			// a fragment, so drop it.
			pieces = pieces[:len(pieces)-1]
		}
	}

	return pieces, nil
}

func splitByBoundary(text string) ([]string, error) {
	runes := []rune(text)
	m, err := sentenceBoundary.FindStringMatch(text)
	if err != nil {
		return nil, err
	}

	var pieces []string
	lastEnd := 0
	for m != nil {
		pieces = append(pieces, string(runes[lastEnd:m.Index]))
		lastEnd = m.Index + m.Length
		m, err = sentenceBoundary.FindNextMatch(m)
		if err != nil {
			return nil, err
		}
	}
	pieces = append(pieces, string(runes[lastEnd:]))
	return pieces, nil
}
