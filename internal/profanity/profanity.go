// Package profanity compiles a punctuation-tolerant, homoglyph-aware
// regex from a wordlist and a character substitution map, and uses it to
// mask matches in generated text.
package profanity

import (
	"embed"
	"fmt"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
	jsoniter "github.com/json-iterator/go"
)

//go:embed resources/wordlist.txt resources/homoglyphs.json
var bundled embed.FS

const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Filter masks every occurrence of a profane word, tolerating punctuation
// inserted between its characters and homoglyph substitutions of them.
type Filter struct {
	pattern *regexp2.Regexp
}

// New compiles a Filter from an explicit wordlist and homoglyph map. An
// empty wordlist yields a Filter whose Filter method is a no-op.
func New(words []string, homoglyphs map[string][]string) (*Filter, error) {
	punctuationRun := punctuationRunClass()

	var wordPatterns []string
	for _, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		wordPatterns = append(wordPatterns, wordPattern(word, homoglyphs, punctuationRun))
	}

	if len(wordPatterns) == 0 {
		return &Filter{}, nil
	}

	combined := fmt.Sprintf(`\b(%s)(?=\s|$)`, strings.Join(wordPatterns, "|"))
	re, err := regexp2.Compile(combined, regexp2.IgnoreCase)
	if err != nil {
		return nil, fmt.Errorf("profanity: compiling filter: %w", err)
	}

	return &Filter{pattern: re}, nil
}

// Default loads the bundled wordlist and homoglyph map.
func Default() (*Filter, error) {
	rawWords, err := bundled.ReadFile("resources/wordlist.txt")
	if err != nil {
		return nil, fmt.Errorf("profanity: reading wordlist: %w", err)
	}

	rawMap, err := bundled.ReadFile("resources/homoglyphs.json")
	if err != nil {
		return nil, fmt.Errorf("profanity: reading homoglyph map: %w", err)
	}

	var homoglyphs map[string][]string
	if err := jsoniter.Unmarshal(rawMap, &homoglyphs); err != nil {
		return nil, fmt.Errorf("profanity: parsing homoglyph map: %w", err)
	}

	words := strings.Split(strings.TrimSpace(string(rawWords)), "\n")
	return New(words, homoglyphs)
}

// Filter replaces every match with '*' repeated to the match's length.
// The result always has the same rune length as the input.
func (f *Filter) Filter(text string) (string, error) {
	if f == nil || f.pattern == nil {
		return text, nil
	}

	runes := []rune(text)
	var out strings.Builder

	lastEnd := 0
	m, err := f.pattern.FindStringMatch(text)
	if err != nil {
		return "", fmt.Errorf("profanity: matching: %w", err)
	}
	for m != nil {
		out.WriteString(string(runes[lastEnd:m.Index]))
		out.WriteString(strings.Repeat("*", m.Length))
		lastEnd = m.Index + m.Length

		m, err = f.pattern.FindNextMatch(m)
		if err != nil {
			return "", fmt.Errorf("profanity: matching: %w", err)
		}
	}
	out.WriteString(string(runes[lastEnd:]))

	return out.String(), nil
}

// punctuationRunClass builds a regex fragment matching any run (including
// zero) of ASCII punctuation, appropriately escaped. '_' is a word
// character, which regexp2 refuses to see escaped, so it stays bare.
func punctuationRunClass() string {
	var b strings.Builder
	b.WriteString("[")
	for _, c := range asciiPunctuation {
		if c != '_' {
			b.WriteString("\\")
		}
		b.WriteRune(c)
	}
	b.WriteString("]*")
	return b.String()
}

// wordPattern compiles one profane word into a regex: each character
// becomes a bracket class of its homoglyph substitutions (or \s for
// whitespace), followed by an optional run of punctuation.
func wordPattern(word string, homoglyphs map[string][]string, punctuationRun string) string {
	var b strings.Builder
	for _, c := range word {
		var subs []string
		switch {
		case unicode.IsSpace(c):
			subs = []string{`\s`}
		default:
			if found, ok := homoglyphs[string(c)]; ok {
				subs = escapeSubs(found)
			} else {
				subs = escapeSubs([]string{string(c)})
			}
		}

		b.WriteString("[")
		b.WriteString(strings.Join(subs, ","))
		b.WriteString("]")
		b.WriteString(punctuationRun)
	}
	return b.String()
}

func escapeSubs(subs []string) []string {
	out := make([]string, len(subs))
	for i, s := range subs {
		if len(s) == 1 && s != "_" && strings.ContainsRune(asciiPunctuation, rune(s[0])) {
			out[i] = "\\" + s
		} else {
			out[i] = s
		}
	}
	return out
}
