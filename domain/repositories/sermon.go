package repositories

import (
	"context"
	"errors"

	"github.com/gospelstack/sermon-audio/domain/entities"
)

// ErrGenerationInProgress is returned by Claim when another run already
// holds the claim for the same (sermon, language) pair.
var ErrGenerationInProgress = errors.New("audio generation already in progress")

// SermonRepository defines data access methods for sermons.
type SermonRepository interface {
	Create(ctx context.Context, sermon *entities.Sermon) error
	GetByID(ctx context.Context, id string) (*entities.Sermon, error)
	Update(ctx context.Context, sermon *entities.Sermon) error
	Delete(ctx context.Context, id string) error
	// SetGeneratedAudio atomically records the artifact for one language
	// on an existing sermon document.
	SetGeneratedAudio(ctx context.Context, sermonID string, audio *entities.GeneratedAudio) error
}

// GenerationClaims is the advisory lock around first-time generation.
// Claim fails with ErrGenerationInProgress when the pair is already
// claimed; Release is safe to call even if the claim expired.
type GenerationClaims interface {
	Claim(ctx context.Context, sermonID, languageCode string) error
	Release(ctx context.Context, sermonID, languageCode string) error
}
