package tts

import (
	"context"

	"go.uber.org/zap"

	"github.com/gospelstack/sermon-audio/domain/repositories"
)

// MockTTS is a placeholder synthesis provider for local development and
// tests; it fabricates audio bytes proportional to the input text.
type MockTTS struct {
	logger *zap.Logger
}

// NewMockTTS creates a new mock text-to-speech service
func NewMockTTS(logger *zap.Logger) repositories.TextToSpeech {
	return &MockTTS{
		logger: logger,
	}
}

// SynthesizeAudio implements repositories.TextToSpeech
func (t *MockTTS) SynthesizeAudio(ctx context.Context, text string, voice repositories.VoiceConfig) ([]byte, error) {
	t.logger.Info("Processing text-to-speech",
		zap.Int("textLength", len(text)),
		zap.String("voice", voice.VoiceName))

	// Mock audio data - generate based on text length
	audioSize := len(text) * 100 // Simulate audio size
	mockAudio := make([]byte, audioSize)

	// Fill with some pattern to simulate audio data
	for i := range mockAudio {
		mockAudio[i] = byte(i % 256)
	}

	return mockAudio, nil
}
