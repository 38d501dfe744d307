package chunker

import (
	"reflect"
	"strings"
	"testing"
)

func segmentTexts(segments []Segment) []string {
	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}
	return texts
}

func TestSplitEmptyText(t *testing.T) {
	if segments := Split("", 100); len(segments) != 0 {
		t.Errorf("Expected no segments for empty text, got %d", len(segments))
	}
}

func TestSplitUnderBudgetReturnsInputVerbatim(t *testing.T) {
	text := "Hello world. This is a test."
	segments := Split(text, 100)

	if len(segments) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(segments))
	}
	if segments[0].Text != text {
		t.Errorf("Expected segment %q, got %q", text, segments[0].Text)
	}
	if segments[0].Index != 0 {
		t.Errorf("Expected index 0, got %d", segments[0].Index)
	}
}

func TestSplitOnSentenceBoundaries(t *testing.T) {
	segments := Split("Hello world. This is a test.", 15)

	want := []string{"Hello world.", "This is a test."}
	if !reflect.DeepEqual(segmentTexts(segments), want) {
		t.Errorf("Expected %v, got %v", want, segmentTexts(segments))
	}
}

func TestSplitGreedyAccumulation(t *testing.T) {
	// Both sentences fit one budget together, so they stay together.
	segments := Split("One two. Three four. Five six seven eight nine ten eleven twelve.", 20)

	// The last sentence exceeds 20 characters and is word-split.
	want := []string{"One two. Three four.", "Five six seven eight", "nine ten eleven", "twelve."}
	if !reflect.DeepEqual(segmentTexts(segments), want) {
		t.Errorf("Expected %v, got %v", want, segmentTexts(segments))
	}
}

func TestSplitOversizedSentenceFallsBackToWords(t *testing.T) {
	sentence := strings.Repeat("word ", 20) + "end."
	segments := Split(sentence+" Short one.", 30)

	for _, s := range segments {
		if len(s.Text) > 30 {
			t.Errorf("Segment %d exceeds budget: %d chars", s.Index, len(s.Text))
		}
	}
}

func TestSplitOversizedWordIsEmittedAlone(t *testing.T) {
	long := strings.Repeat("x", 50)
	segments := Split("Tiny. "+long+" more words here. Tail sentence goes on a while.", 20)

	found := false
	for _, s := range segments {
		if s.Text == long {
			found = true
		} else if len(s.Text) > 20 {
			t.Errorf("Unexpected oversized segment: %q", s.Text)
		}
	}
	if !found {
		t.Error("Expected the oversized word to be emitted as its own segment")
	}
}

func TestSplitBudgetInvariant(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("The quick brown fox jumps over the lazy dog. ")
		if i%7 == 0 {
			b.WriteString("Does it though! Yes? ")
		}
	}
	text := b.String()

	for _, max := range []int{50, 100, 500, 4000} {
		for _, s := range Split(text, max) {
			if len(s.Text) > max {
				t.Errorf("maxChunkSize=%d: segment %d has %d chars", max, s.Index, len(s.Text))
			}
		}
	}
}

func TestSplitDeterminism(t *testing.T) {
	text := strings.Repeat("Grace and peace to you all. Hear the word today! Will you listen? ", 40)

	first := Split(text, 200)
	second := Split(text, 200)

	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical output across calls")
	}
}

func TestSplitIndexesAreSequential(t *testing.T) {
	text := strings.Repeat("A short sentence here. ", 50)
	for i, s := range Split(text, 60) {
		if s.Index != i {
			t.Errorf("Expected index %d, got %d", i, s.Index)
		}
	}
}

func TestSplitDefaultBudget(t *testing.T) {
	text := strings.Repeat("Filler sentence for the default budget path. ", 200)
	for _, s := range Split(text, 0) {
		if len(s.Text) > DefaultMaxChunkSize {
			t.Errorf("Segment exceeds default budget: %d chars", len(s.Text))
		}
	}
}

func TestTotalCharacters(t *testing.T) {
	segments := []Segment{{0, "abcd"}, {1, "ef"}}
	if got := TotalCharacters(segments); got != 6 {
		t.Errorf("Expected 6, got %d", got)
	}
}
