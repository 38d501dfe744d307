// Package fingerprint derives cache keys for (segment text, voice) pairs.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/gospelstack/sermon-audio/domain/repositories"
)

// Key returns the deterministic cache key for a text segment synthesized
// with a given voice. The voice fields are serialized in fixed order so the
// digest input is stable; any difference in text or voice, including
// whitespace, yields a different key. SHA-256 collisions are accepted as
// negligible, so the key is the sole identity of a cache entry.
func Key(segmentText string, voice repositories.VoiceConfig) string {
	h := sha256.New()
	h.Write([]byte(segmentText))
	h.Write([]byte{'|'})
	h.Write([]byte(voice.LanguageCode))
	h.Write([]byte{'|'})
	h.Write([]byte(voice.VoiceName))
	return hex.EncodeToString(h.Sum(nil))
}
