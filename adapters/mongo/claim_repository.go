package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/gospelstack/sermon-audio/domain/repositories"
)

// claimTTL bounds how long a claim can block other callers. A claim older
// than this belongs to a crashed run and may be taken over.
const claimTTL = 10 * time.Minute

// ClaimRepository implements the per-(sermon, language) advisory lock on a
// MongoDB collection. The claim document's _id is the pair itself, so the
// unique index on _id is the mutual exclusion.
type ClaimRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewClaimRepository creates a new MongoDB generation-claim repository
func NewClaimRepository(db *mongo.Database, logger *zap.Logger) repositories.GenerationClaims {
	return &ClaimRepository{
		collection: db.Collection("generation_claims"),
		logger:     logger,
	}
}

func claimID(sermonID, languageCode string) string {
	return sermonID + ":" + languageCode
}

// Claim implements repositories.GenerationClaims
func (r *ClaimRepository) Claim(ctx context.Context, sermonID, languageCode string) error {
	id := claimID(sermonID, languageCode)
	doc := bson.M{
		"_id":           id,
		"sermon_id":     sermonID,
		"language_code": languageCode,
		"claimed_at":    time.Now(),
	}

	_, err := r.collection.InsertOne(ctx, doc)
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to claim generation: %w", err)
	}

	// Someone holds the claim. Take it over only if it is stale.
	var existing struct {
		ClaimedAt time.Time `bson:"claimed_at"`
	}
	findErr := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&existing)
	if findErr != nil {
		if errors.Is(findErr, mongo.ErrNoDocuments) {
			// Released between our insert and read; let the caller retry.
			return repositories.ErrGenerationInProgress
		}
		return fmt.Errorf("failed to inspect existing claim: %w", findErr)
	}

	if time.Since(existing.ClaimedAt) < claimTTL {
		return repositories.ErrGenerationInProgress
	}

	r.logger.Warn("Taking over stale generation claim",
		zap.String("sermon_id", sermonID),
		zap.String("language_code", languageCode),
		zap.Time("claimed_at", existing.ClaimedAt))

	result, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": id, "claimed_at": existing.ClaimedAt},
		doc)
	if err != nil {
		return fmt.Errorf("failed to take over stale claim: %w", err)
	}
	if result.ModifiedCount == 0 {
		// Another caller won the takeover race.
		return repositories.ErrGenerationInProgress
	}

	return nil
}

// Release implements repositories.GenerationClaims
func (r *ClaimRepository) Release(ctx context.Context, sermonID, languageCode string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": claimID(sermonID, languageCode)})
	if err != nil {
		return fmt.Errorf("failed to release claim: %w", err)
	}
	return nil
}
