package tts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/gospelstack/sermon-audio/domain/repositories"
)

func TestNewElevenLabsTTS(t *testing.T) {
	logger := zaptest.NewLogger(t)

	// Test without API key
	os.Unsetenv("ELEVEN_LABS_API_KEY")
	config := NewElevenLabsConfigFromEnv()
	_, err := NewElevenLabsTTS(config, logger)
	if err == nil {
		t.Error("Expected error when API key is not set")
	}

	// Test with API key
	os.Setenv("ELEVEN_LABS_API_KEY", "test-api-key")
	defer os.Unsetenv("ELEVEN_LABS_API_KEY")

	config = NewElevenLabsConfigFromEnv()
	tts, err := NewElevenLabsTTS(config, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	if tts.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", tts.apiKey)
	}

	if tts.voiceID != defaultVoiceID {
		t.Errorf("Expected default voice ID '%s', got '%s'", defaultVoiceID, tts.voiceID)
	}
}

func TestValidateElevenLabsConfig(t *testing.T) {
	if err := ValidateElevenLabsConfig(ElevenLabsConfig{APIKey: "k", Stability: 1.5}); err == nil {
		t.Error("Expected error for out-of-range stability")
	}
	if err := ValidateElevenLabsConfig(ElevenLabsConfig{APIKey: "k", Clarity: -0.1}); err == nil {
		t.Error("Expected error for out-of-range clarity")
	}
	if err := ValidateElevenLabsConfig(ElevenLabsConfig{APIKey: "k"}); err != nil {
		t.Errorf("Unexpected error for valid config: %v", err)
	}
}

func TestElevenLabsTTS_SynthesizeAudio_EmptyText(t *testing.T) {
	logger := zaptest.NewLogger(t)
	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "test-api-key"}, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	voice := repositories.VoiceConfig{LanguageCode: "en-US"}

	ctx := context.Background()
	if _, err = tts.SynthesizeAudio(ctx, "", voice); err == nil {
		t.Error("Expected error for empty text")
	}
	if _, err = tts.SynthesizeAudio(ctx, "   ", voice); err == nil {
		t.Error("Expected error for whitespace-only text")
	}
}

func TestElevenLabsTTS_SynthesizeAudio(t *testing.T) {
	logger := zaptest.NewLogger(t)
	audio := []byte("fake-mp3-bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("xi-api-key") != "test-api-key" {
			t.Errorf("Expected API key header, got %q", r.Header.Get("xi-api-key"))
		}
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
		w.Write(audio)
	}))
	defer server.Close()

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{
		APIKey:     "test-api-key",
		APIBaseURL: server.URL,
	}, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	voice := repositories.VoiceConfig{LanguageCode: "en-US", VoiceName: "en-US-Neural2-D"}
	got, err := tts.SynthesizeAudio(context.Background(), "Hello there.", voice)
	if err != nil {
		t.Fatalf("SynthesizeAudio failed: %v", err)
	}
	if string(got) != string(audio) {
		t.Errorf("Expected %q, got %q", audio, got)
	}
}

func TestElevenLabsTTS_SynthesizeAudio_ProviderError(t *testing.T) {
	logger := zaptest.NewLogger(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("rate limited"))
	}))
	defer server.Close()

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{
		APIKey:     "test-api-key",
		APIBaseURL: server.URL,
	}, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	voice := repositories.VoiceConfig{LanguageCode: "en-US"}
	_, err = tts.SynthesizeAudio(context.Background(), "Hello there.", voice)

	var synthErr *repositories.SynthesisError
	if !errors.As(err, &synthErr) {
		t.Fatalf("Expected SynthesisError, got %v", err)
	}
	if synthErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", synthErr.StatusCode)
	}
	if synthErr.Provider != "elevenlabs" {
		t.Errorf("Expected provider elevenlabs, got %s", synthErr.Provider)
	}
}
