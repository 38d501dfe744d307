package repositories

import (
	"context"
	"fmt"
)

// VoiceConfig selects a concrete synthesis voice.
type VoiceConfig struct {
	LanguageCode string `json:"language_code"`
	VoiceName    string `json:"voice_name"`
}

// TextToSpeech abstracts the external speech-synthesis provider. One call
// synthesizes one text segment; the segment must already respect the
// provider's input ceiling (the chunker enforces this upstream). The adapter
// performs no retries itself.
type TextToSpeech interface {
	SynthesizeAudio(ctx context.Context, text string, voice VoiceConfig) ([]byte, error)
}

// SynthesisError carries the provider's status and message for a failed
// synthesis call. The orchestrator owns the retry policy; adapters only
// report.
type SynthesisError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("%s synthesis failed (status %d): %s", e.Provider, e.StatusCode, e.Message)
}
