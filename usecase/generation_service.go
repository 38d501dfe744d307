package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gospelstack/sermon-audio/domain/entities"
	"github.com/gospelstack/sermon-audio/domain/repositories"
	"github.com/gospelstack/sermon-audio/internal/chunker"
	"github.com/gospelstack/sermon-audio/internal/fingerprint"
	"github.com/gospelstack/sermon-audio/internal/voice"
)

// GenerationState names a stage of the generation run.
type GenerationState string

const (
	StateChunking     GenerationState = "chunking"
	StateResolving    GenerationState = "resolving"
	StateSynthesizing GenerationState = "synthesizing"
	StateMerging      GenerationState = "merging"
	StatePersisting   GenerationState = "persisting"
	StateCompleted    GenerationState = "completed"
	StateFailed       GenerationState = "failed"
)

var (
	// ErrSermonNotFound is returned when the sermon does not exist.
	ErrSermonNotFound = errors.New("sermon not found")
	// ErrNoSourceText is returned when the sermon has nothing to synthesize.
	ErrNoSourceText = errors.New("sermon has no source text to synthesize")
)

// ProgressEvent describes one state transition of a generation run.
type ProgressEvent struct {
	SermonID     string          `json:"sermon_id"`
	LanguageCode string          `json:"language_code"`
	State        GenerationState `json:"state"`
	ChunksDone   int             `json:"chunks_done,omitempty"`
	ChunksTotal  int             `json:"chunks_total,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// ProgressNotifier receives state transitions as a run advances. Delivery
// is best-effort; notification must never block or fail the run.
type ProgressNotifier interface {
	NotifyProgress(event ProgressEvent)
}

// NopNotifier discards progress events.
type NopNotifier struct{}

func (NopNotifier) NotifyProgress(ProgressEvent) {}

// GenerationResult is the outcome of a successful generation request.
// Cached is true only when the run short-circuited on an existing artifact.
type GenerationResult struct {
	URL        string `json:"url"`
	Cached     bool   `json:"cached"`
	ChunkCount int    `json:"chunk_count"`
}

// AudioStatus is the read-only artifact state for one (sermon, language).
type AudioStatus struct {
	HasAudio    bool       `json:"has_audio"`
	URL         string     `json:"url,omitempty"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
}

// GenerationConfig tunes a GenerationService.
type GenerationConfig struct {
	// MaxChunkSize is the per-segment character budget. Must stay under
	// the synthesis provider's per-call input ceiling.
	MaxChunkSize int
	// MaxConcurrentSynthesis bounds the synthesis fan-out within one run.
	MaxConcurrentSynthesis int
	// SynthesisTimeout bounds each individual provider call.
	SynthesisTimeout time.Duration
	// MaxRetries is the number of retries after a failed synthesis call.
	MaxRetries uint64
}

func (c GenerationConfig) withDefaults() GenerationConfig {
	if c.MaxChunkSize <= 0 {
		c.MaxChunkSize = chunker.DefaultMaxChunkSize
	}
	if c.MaxConcurrentSynthesis <= 0 {
		c.MaxConcurrentSynthesis = 4
	}
	if c.SynthesisTimeout <= 0 {
		c.SynthesisTimeout = 60 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 2
	}
	return c
}

// GenerationService orchestrates audio generation for sermons: chunking,
// per-chunk cache resolution, bounded-concurrency synthesis, ordered merge,
// artifact persistence. Generation is idempotent per (sermon, language).
type GenerationService struct {
	sermons  repositories.SermonRepository
	cache    repositories.SynthesisCache
	claims   repositories.GenerationClaims
	blobs    repositories.BlobStore
	tts      repositories.TextToSpeech
	usage    repositories.UsageRecorder
	notifier ProgressNotifier
	config   GenerationConfig
	logger   *zap.Logger
}

// NewGenerationService creates a new generation service
func NewGenerationService(
	sermons repositories.SermonRepository,
	cache repositories.SynthesisCache,
	claims repositories.GenerationClaims,
	blobs repositories.BlobStore,
	tts repositories.TextToSpeech,
	usage repositories.UsageRecorder,
	notifier ProgressNotifier,
	config GenerationConfig,
	logger *zap.Logger,
) *GenerationService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &GenerationService{
		sermons:  sermons,
		cache:    cache,
		claims:   claims,
		blobs:    blobs,
		tts:      tts,
		usage:    usage,
		notifier: notifier,
		config:   config.withDefaults(),
		logger:   logger,
	}
}

// chunkWork is one unique fingerprint within a run. Identical segments
// share a single synthesis call and fan the payload out to every index.
type chunkWork struct {
	key     string
	text    string
	indices []int
}

// GenerateAudio produces (or returns) the audio artifact for one sermon and
// language. The voiceName override, when non-empty, replaces the resolved
// voice name. UserID is only used for usage metering.
func (s *GenerationService) GenerateAudio(ctx context.Context, sermonID, languageTag, voiceName, userID string) (*GenerationResult, error) {
	sermon, err := s.sermons.GetByID(ctx, sermonID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sermon: %w", err)
	}
	if sermon == nil {
		return nil, ErrSermonNotFound
	}

	voiceCfg := voice.Resolve(languageTag)
	if voiceName != "" {
		voiceCfg.VoiceName = voiceName
	}
	languageCode := voiceCfg.LanguageCode

	// Idempotency short-circuit: an existing artifact is authoritative.
	if artifact := sermon.AudioFor(languageCode); artifact != nil && artifact.AudioURL != "" {
		return &GenerationResult{
			URL:        artifact.AudioURL,
			Cached:     true,
			ChunkCount: artifact.ChunkCount,
		}, nil
	}

	if !sermon.HasSourceText() {
		return nil, ErrNoSourceText
	}

	if err := s.claims.Claim(ctx, sermonID, languageCode); err != nil {
		return nil, err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.claims.Release(releaseCtx, sermonID, languageCode); err != nil {
			s.logger.Warn("Failed to release generation claim",
				zap.String("sermon_id", sermonID),
				zap.String("language_code", languageCode),
				zap.Error(err))
		}
	}()

	// A concurrent run may have finished between the read above and the
	// claim; re-check under the claim before doing any work.
	sermon, err = s.sermons.GetByID(ctx, sermonID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload sermon: %w", err)
	}
	if sermon == nil {
		return nil, ErrSermonNotFound
	}
	if artifact := sermon.AudioFor(languageCode); artifact != nil && artifact.AudioURL != "" {
		return &GenerationResult{
			URL:        artifact.AudioURL,
			Cached:     true,
			ChunkCount: artifact.ChunkCount,
		}, nil
	}

	result, err := s.run(ctx, sermon, voiceCfg, userID)
	if err != nil {
		s.notifier.NotifyProgress(ProgressEvent{
			SermonID:     sermonID,
			LanguageCode: languageCode,
			State:        StateFailed,
			Error:        err.Error(),
		})
		return nil, err
	}
	return result, nil
}

func (s *GenerationService) run(ctx context.Context, sermon *entities.Sermon, voiceCfg repositories.VoiceConfig, userID string) (*GenerationResult, error) {
	languageCode := voiceCfg.LanguageCode
	notify := func(state GenerationState, done, total int) {
		s.notifier.NotifyProgress(ProgressEvent{
			SermonID:     sermon.ID,
			LanguageCode: languageCode,
			State:        state,
			ChunksDone:   done,
			ChunksTotal:  total,
		})
	}

	notify(StateChunking, 0, 0)
	segments := chunker.Split(sermon.Body, s.config.MaxChunkSize)
	if len(segments) == 0 {
		// HasSourceText passed, so zero segments is a chunker invariant
		// violation, not an empty document.
		return nil, fmt.Errorf("chunker produced no segments for non-empty text")
	}

	s.logger.Info("Chunked sermon text",
		zap.String("sermon_id", sermon.ID),
		zap.String("language_code", languageCode),
		zap.Int("segments", len(segments)))

	// Resolve each unique fingerprint against the cache. Identical
	// segments collapse to one unit of work.
	notify(StateResolving, 0, len(segments))

	payloads := make([][]byte, len(segments))
	unique := make(map[string]*chunkWork)
	order := make([]string, 0, len(segments))
	for _, seg := range segments {
		key := fingerprint.Key(seg.Text, voiceCfg)
		work, ok := unique[key]
		if !ok {
			work = &chunkWork{key: key, text: seg.Text}
			unique[key] = work
			order = append(order, key)
		}
		work.indices = append(work.indices, seg.Index)
	}

	var pending []*chunkWork
	cachedChunks := 0
	for _, key := range order {
		work := unique[key]
		payload, hit := s.cache.Lookup(ctx, work.key)
		if hit {
			for _, i := range work.indices {
				payloads[i] = payload
			}
			cachedChunks += len(work.indices)
			go func(key string) {
				accessCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				s.cache.RecordAccess(accessCtx, key)
			}(work.key)
			continue
		}
		pending = append(pending, work)
	}

	s.logger.Info("Resolved segments against cache",
		zap.String("sermon_id", sermon.ID),
		zap.Int("cached", cachedChunks),
		zap.Int("pending", len(pending)))

	// Synthesize the misses with a bounded fan-out. Each worker writes
	// only its own indices, so payloads needs no locking.
	var done atomic.Int64
	done.Store(int64(cachedChunks))
	notify(StateSynthesizing, cachedChunks, len(segments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxConcurrentSynthesis)
	for _, work := range pending {
		work := work
		g.Go(func() error {
			payload, err := s.synthesizeWithRetry(gctx, work.text, voiceCfg)
			if err != nil {
				return fmt.Errorf("segment %d: %w", work.indices[0], err)
			}
			for _, i := range work.indices {
				payloads[i] = payload
			}

			// A failed cache write never fails the run; the audio is
			// already in hand.
			entry := &entities.CacheEntry{
				Key:          work.key,
				AudioBase64:  base64.StdEncoding.EncodeToString(payload),
				TextLength:   len(work.text),
				LanguageCode: voiceCfg.LanguageCode,
				VoiceName:    voiceCfg.VoiceName,
			}
			if err := s.cache.Store(gctx, entry); err != nil {
				s.logger.Warn("Failed to cache synthesized segment",
					zap.String("key", work.key),
					zap.Error(err))
			}

			notify(StateSynthesizing, int(done.Add(int64(len(work.indices)))), len(segments))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge in chunker order, never completion order. Concatenated MP3
	// frames are accepted as good enough for playback.
	notify(StateMerging, len(segments), len(segments))
	var merged bytes.Buffer
	for i, payload := range payloads {
		if payload == nil {
			return nil, fmt.Errorf("segment %d has no payload after synthesis", i)
		}
		merged.Write(payload)
	}

	notify(StatePersisting, len(segments), len(segments))
	path := fmt.Sprintf("sermons/%s/audio/%s.mp3", sermon.ID, languageCode)
	if err := s.blobs.Put(ctx, path, merged.Bytes(), "audio/mpeg"); err != nil {
		return nil, fmt.Errorf("failed to upload merged audio: %w", err)
	}
	url, err := s.blobs.GetURL(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve audio URL: %w", err)
	}

	artifact := &entities.GeneratedAudio{
		LanguageCode: languageCode,
		VoiceName:    voiceCfg.VoiceName,
		AudioURL:     url,
		ChunkCount:   len(segments),
		GeneratedAt:  time.Now(),
	}
	if err := s.sermons.SetGeneratedAudio(ctx, sermon.ID, artifact); err != nil {
		// The blob is uploaded but unrecorded; a later run re-uploads
		// over the same path. Known gap, surfaced loudly.
		s.logger.Error("Uploaded audio but failed to record artifact",
			zap.String("sermon_id", sermon.ID),
			zap.String("path", path),
			zap.Error(err))
		return nil, fmt.Errorf("failed to record generated audio: %w", err)
	}

	s.recordUsage(sermon.ID, userID, languageCode, len(segments), cachedChunks, chunker.TotalCharacters(segments))

	notify(StateCompleted, len(segments), len(segments))
	s.logger.Info("Generated sermon audio",
		zap.String("sermon_id", sermon.ID),
		zap.String("language_code", languageCode),
		zap.Int("chunks", len(segments)),
		zap.Int("cached_chunks", cachedChunks),
		zap.Int("bytes", merged.Len()))

	return &GenerationResult{
		URL:        url,
		Cached:     false,
		ChunkCount: len(segments),
	}, nil
}

// synthesizeWithRetry wraps one provider call in a per-call timeout and a
// bounded exponential backoff.
func (s *GenerationService) synthesizeWithRetry(ctx context.Context, text string, voiceCfg repositories.VoiceConfig) ([]byte, error) {
	var payload []byte

	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.config.SynthesisTimeout)
		defer cancel()

		audio, err := s.tts.SynthesizeAudio(callCtx, text, voiceCfg)
		if err != nil {
			return err
		}
		payload = audio
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.config.MaxRetries),
		ctx)

	err := backoff.RetryNotify(operation, policy, func(err error, next time.Duration) {
		s.logger.Warn("Synthesis attempt failed, retrying",
			zap.Duration("backoff", next),
			zap.Error(err))
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// recordUsage appends a metering record without blocking the response path.
func (s *GenerationService) recordUsage(sermonID, userID, languageCode string, chunks, cachedChunks, totalCharacters int) {
	record := &entities.UsageRecord{
		SermonID:        sermonID,
		UserID:          userID,
		ChunkCount:      chunks,
		CachedChunks:    cachedChunks,
		TotalCharacters: totalCharacters,
		Language:        languageCode,
		Timestamp:       time.Now(),
	}

	go func() {
		usageCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.usage.Record(usageCtx, record); err != nil {
			s.logger.Warn("Failed to record usage", zap.Error(err))
		}
	}()
}

// CheckAudioStatus reports the artifact state for one (sermon, language)
// pair. Pure read, no side effects.
func (s *GenerationService) CheckAudioStatus(ctx context.Context, sermonID, languageTag string) (*AudioStatus, error) {
	sermon, err := s.sermons.GetByID(ctx, sermonID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sermon: %w", err)
	}
	if sermon == nil {
		return nil, ErrSermonNotFound
	}

	voiceCfg := voice.Resolve(languageTag)
	artifact := sermon.AudioFor(voiceCfg.LanguageCode)
	if artifact == nil || artifact.AudioURL == "" {
		return &AudioStatus{HasAudio: false}, nil
	}

	generatedAt := artifact.GeneratedAt
	return &AudioStatus{
		HasAudio:    true,
		URL:         artifact.AudioURL,
		GeneratedAt: &generatedAt,
	}, nil
}
