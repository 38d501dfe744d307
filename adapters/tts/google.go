package tts

import (
	"context"
	"fmt"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"go.uber.org/zap"
	"google.golang.org/grpc/status"

	"github.com/gospelstack/sermon-audio/domain/repositories"
)

// GoogleTTS implements TextToSpeech using the Google Cloud Text-to-Speech
// API. Voice addressing maps directly: VoiceConfig.LanguageCode and
// VoiceConfig.VoiceName are the API's language code and voice name.
type GoogleTTS struct {
	client *texttospeech.Client
	logger *zap.Logger
}

// Ensure GoogleTTS implements the TextToSpeech interface
var _ repositories.TextToSpeech = (*GoogleTTS)(nil)

// NewGoogleTTS creates a new Google Cloud TTS adapter. Credentials come
// from the ambient environment (GOOGLE_APPLICATION_CREDENTIALS).
func NewGoogleTTS(ctx context.Context, logger *zap.Logger) (*GoogleTTS, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}

	return &GoogleTTS{
		client: client,
		logger: logger,
	}, nil
}

// SynthesizeAudio converts one text segment to MP3 audio. The segment must
// already fit the provider's per-call input ceiling; the chunker guarantees
// that upstream and this adapter does not re-validate it.
func (g *GoogleTTS) SynthesizeAudio(ctx context.Context, text string, voice repositories.VoiceConfig) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: voice.LanguageCode,
			Name:         voice.VoiceName,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}

	resp, err := g.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		synthErr := &repositories.SynthesisError{
			Provider: "google",
			Message:  err.Error(),
		}
		if st, ok := status.FromError(err); ok {
			synthErr.StatusCode = int(st.Code())
			synthErr.Message = st.Message()
		}
		return nil, synthErr
	}

	g.logger.Debug("Synthesized segment",
		zap.String("language", voice.LanguageCode),
		zap.String("voice", voice.VoiceName),
		zap.Int("textLength", len(text)),
		zap.Int("audioBytes", len(resp.AudioContent)))

	return resp.AudioContent, nil
}

// Close releases the underlying client
func (g *GoogleTTS) Close() error {
	return g.client.Close()
}
