package entities

import (
	"errors"
	"time"
)

// Sermon represents a sermon document with its source text and any
// generated audio artifacts, keyed by language code.
type Sermon struct {
	// ID is the hex ObjectID; the repository fills it in after reads
	// and inserts, so decoding skips the raw _id.
	ID        string                     `json:"id" bson:"-"`
	Title     string                     `json:"title" bson:"title"`
	Speaker   string                     `json:"speaker" bson:"speaker"`
	Body      string                     `json:"body" bson:"body"`
	Audio     map[string]*GeneratedAudio `json:"audio,omitempty" bson:"audio,omitempty"`
	CreatedAt time.Time                  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at" bson:"updated_at"`
}

// GeneratedAudio is the persisted artifact for one (sermon, language) pair.
// Its presence is the authoritative idempotency signal: once AudioURL is set,
// generation for that pair short-circuits.
type GeneratedAudio struct {
	LanguageCode string    `json:"language_code" bson:"language_code"`
	VoiceName    string    `json:"voice_name" bson:"voice_name"`
	AudioURL     string    `json:"audio_url" bson:"audio_url"`
	ChunkCount   int       `json:"chunk_count" bson:"chunk_count"`
	GeneratedAt  time.Time `json:"generated_at" bson:"generated_at"`
}

// UsageRecord is an append-only metering entry for one generation run.
// Written fire-and-forget, never read back by the core.
type UsageRecord struct {
	ID              string    `json:"id" bson:"_id"`
	SermonID        string    `json:"sermon_id" bson:"sermon_id"`
	UserID          string    `json:"user_id" bson:"user_id"`
	ChunkCount      int       `json:"chunk_count" bson:"chunk_count"`
	CachedChunks    int       `json:"cached_chunks" bson:"cached_chunks"`
	TotalCharacters int       `json:"total_characters" bson:"total_characters"`
	Language        string    `json:"language" bson:"language"`
	Timestamp       time.Time `json:"timestamp" bson:"timestamp"`
}

// AudioFor returns the generated artifact for a language, or nil.
func (s *Sermon) AudioFor(languageCode string) *GeneratedAudio {
	if s.Audio == nil {
		return nil
	}
	return s.Audio[languageCode]
}

// HasSourceText reports whether there is anything to synthesize.
func (s *Sermon) HasSourceText() bool {
	for _, r := range s.Body {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return true
		}
	}
	return false
}

func (s *Sermon) Validate() error {
	if s.Title == "" {
		return errors.New("title is required")
	}
	if s.Body == "" {
		return errors.New("body is required")
	}
	return nil
}
