// Package chunker splits long-form text into synthesis-safe segments.
//
// The synthesis provider enforces a maximum input size per call, so source
// text is cut on sentence boundaries into segments no longer than a
// configured character budget. Segment order matches document order and is
// relied on when the per-segment audio is merged back together.
package chunker

import (
	"regexp"
	"strings"
)

// DefaultMaxChunkSize is the default per-segment character budget. It must
// stay under the synthesis provider's per-call input ceiling.
const DefaultMaxChunkSize = 4000

// Segment is one bounded slice of source text. Index is the segment's
// position in document order; the merge step addresses audio by it.
type Segment struct {
	Index int
	Text  string
}

// Sentences end on '.', '!' or '?' followed by whitespace or end of input.
// Terminators inside abbreviations or doubled terminators are not treated
// specially; whatever the pattern matches is respected.
var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+`)

// Split cuts text into ordered segments of at most maxChunkSize characters.
//
// Sentences are accumulated greedily into a running segment; when adding the
// next sentence would exceed the budget the running segment is emitted and a
// new one started. A single sentence longer than the budget is re-split on
// word boundaries with the same rule. A single word longer than the budget
// is emitted as its own oversized segment.
//
// Split is deterministic: the same (text, maxChunkSize) always produces the
// identical sequence.
func Split(text string, maxChunkSize int) []Segment {
	if maxChunkSize <= 0 {
		maxChunkSize = DefaultMaxChunkSize
	}
	if text == "" {
		return nil
	}
	if len(text) <= maxChunkSize {
		return []Segment{{Index: 0, Text: text}}
	}

	var pieces []string
	var current string

	emit := func() {
		if current != "" {
			pieces = append(pieces, current)
			current = ""
		}
	}

	for _, raw := range sentencePattern.FindAllString(text, -1) {
		sentence := strings.TrimSpace(raw)
		if sentence == "" {
			continue
		}

		if len(sentence) > maxChunkSize {
			emit()
			pieces = append(pieces, splitWords(sentence, maxChunkSize)...)
			continue
		}

		if current == "" {
			current = sentence
			continue
		}
		if len(current)+1+len(sentence) > maxChunkSize {
			emit()
			current = sentence
		} else {
			current += " " + sentence
		}
	}
	emit()

	segments := make([]Segment, len(pieces))
	for i, p := range pieces {
		segments[i] = Segment{Index: i, Text: p}
	}
	return segments
}

// splitWords applies the accumulate-until-exceeds rule on whitespace-delimited
// words, for sentences that alone exceed the budget.
func splitWords(sentence string, maxChunkSize int) []string {
	var pieces []string
	var current string

	for _, word := range strings.Fields(sentence) {
		if current == "" {
			current = word
			continue
		}
		if len(current)+1+len(word) > maxChunkSize {
			pieces = append(pieces, current)
			current = word
		} else {
			current += " " + word
		}
	}
	if current != "" {
		pieces = append(pieces, current)
	}
	return pieces
}

// TotalCharacters sums segment lengths, for usage metering.
func TotalCharacters(segments []Segment) int {
	total := 0
	for _, s := range segments {
		total += len(s.Text)
	}
	return total
}
