package entities

import "time"

// CacheEntry is one content-addressed synthesis result. The key is the
// fingerprint of (segment text, voice); the audio payload is stored
// base64-encoded so the document store only ever sees text fields.
type CacheEntry struct {
	Key            string    `json:"key" bson:"_id"`
	AudioBase64    string    `json:"audio_base64" bson:"audio_base64"`
	TextLength     int       `json:"text_length" bson:"text_length"`
	LanguageCode   string    `json:"language_code" bson:"language_code"`
	VoiceName      string    `json:"voice_name" bson:"voice_name"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at" bson:"last_accessed_at"`
	AccessCount    int64     `json:"access_count" bson:"access_count"`
}

// IsStale reports whether the entry has outlived ttl at the given instant.
// Stale entries are treated as cache misses but stay in storage until an
// explicit sweep removes them.
func (e *CacheEntry) IsStale(ttl time.Duration, now time.Time) bool {
	return now.Sub(e.CreatedAt) > ttl
}
