package moderation

import (
	"context"
	"fmt"
	"unicode"

	"github.com/abadojack/whatlanggo"
	goahocorasick "github.com/anknown/ahocorasick"
)

// LexiconClassifier flags text containing entries of a toxicity lexicon.
// Matching runs over a normalized view of the input (lowercased, leet speak
// folded, punctuation and spacing stripped) so trivial obfuscation like
// "b.4.d word" still hits.
type LexiconClassifier struct {
	matcher *goahocorasick.Machine
}

func NewLexiconClassifier(lexicon []string) (*LexiconClassifier, error) {
	if len(lexicon) == 0 {
		return nil, fmt.Errorf("empty toxicity lexicon")
	}
	patterns := make([][]rune, len(lexicon))
	for i, word := range lexicon {
		patterns[i] = normalizeRunes([]rune(word))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &LexiconClassifier{matcher: m}, nil
}

func (c *LexiconClassifier) Classify(_ context.Context, text string) (Classification, error) {
	normalized := normalizeRunes([]rune(text))
	if len(normalized) == 0 {
		return Classification{Label: LabelClean}, nil
	}

	info := whatlanggo.Detect(text)
	feedback := []string{"lang:" + info.Lang.Iso6391()}

	spans := c.matcher.MultiPatternSearch(normalized, false)
	if len(spans) == 0 {
		return Classification{Label: LabelClean, Feedback: feedback}, nil
	}

	matched := 0
	for _, span := range spans {
		feedback = append(feedback, "match:"+string(span.Word))
		matched += len(span.Word)
	}

	// Score grows with the share of the text covered by lexicon hits,
	// floored so that a single hit is already well above any clean text.
	score := 0.5 + 0.5*float64(matched)/float64(len(normalized))
	if score > 1 {
		score = 1
	}
	return Classification{Label: LabelToxic, Score: score, Feedback: feedback}, nil
}

func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		clean := simplifyRune(r)
		if isNoise(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplifyRune maps common leet speak characters back to their standard
// alphabet counterparts.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
