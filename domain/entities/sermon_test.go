package entities

import (
	"testing"
	"time"
)

func TestSermonValidate(t *testing.T) {
	sermon := &Sermon{Title: "On Grace", Body: "Text."}
	if err := sermon.Validate(); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}

	if err := (&Sermon{Body: "Text."}).Validate(); err == nil {
		t.Error("Expected error for missing title")
	}
	if err := (&Sermon{Title: "On Grace"}).Validate(); err == nil {
		t.Error("Expected error for missing body")
	}
}

func TestSermonHasSourceText(t *testing.T) {
	if (&Sermon{Body: ""}).HasSourceText() {
		t.Error("Expected no source text for empty body")
	}
	if (&Sermon{Body: " \n\t  "}).HasSourceText() {
		t.Error("Expected no source text for whitespace body")
	}
	if !(&Sermon{Body: "In the beginning."}).HasSourceText() {
		t.Error("Expected source text to be detected")
	}
}

func TestSermonAudioFor(t *testing.T) {
	sermon := &Sermon{}
	if sermon.AudioFor("en-US") != nil {
		t.Error("Expected nil artifact when none generated")
	}

	sermon.Audio = map[string]*GeneratedAudio{
		"en-US": {LanguageCode: "en-US", AudioURL: "https://example.com/a.mp3"},
	}
	if artifact := sermon.AudioFor("en-US"); artifact == nil || artifact.AudioURL == "" {
		t.Error("Expected artifact for en-US")
	}
	if sermon.AudioFor("es-ES") != nil {
		t.Error("Expected nil artifact for language without audio")
	}
}

func TestCacheEntryIsStale(t *testing.T) {
	now := time.Now()
	ttl := 30 * 24 * time.Hour

	fresh := &CacheEntry{CreatedAt: now.Add(-ttl + time.Minute)}
	if fresh.IsStale(ttl, now) {
		t.Error("Expected entry within TTL to be fresh")
	}

	stale := &CacheEntry{CreatedAt: now.Add(-ttl - time.Millisecond)}
	if !stale.IsStale(ttl, now) {
		t.Error("Expected entry past TTL to be stale")
	}
}
