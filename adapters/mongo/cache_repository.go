package mongo

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/gospelstack/sermon-audio/domain/entities"
	"github.com/gospelstack/sermon-audio/domain/repositories"
)

// DefaultCacheTTL is the age past which a cache entry is treated as stale.
const DefaultCacheTTL = 30 * 24 * time.Hour

// CacheRepository is the MongoDB-backed synthesis cache. Entries are keyed
// by fingerprint in the _id field, so concurrent stores for the same key
// collapse to last-writer-wins on a single document.
type CacheRepository struct {
	collection *mongo.Collection
	ttl        time.Duration
	logger     *zap.Logger
}

// NewCacheRepository creates a new MongoDB synthesis cache. A non-positive
// ttl falls back to DefaultCacheTTL.
func NewCacheRepository(db *mongo.Database, ttl time.Duration, logger *zap.Logger) repositories.SynthesisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CacheRepository{
		collection: db.Collection("synthesis_cache"),
		ttl:        ttl,
		logger:     logger,
	}
}

// Lookup implements repositories.SynthesisCache. Any backing-store failure
// degrades to a miss: re-synthesizing is preferred over surfacing an error.
func (r *CacheRepository) Lookup(ctx context.Context, key string) ([]byte, bool) {
	var entry entities.CacheEntry
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Warn("Cache lookup failed, treating as miss",
				zap.String("key", key),
				zap.Error(err))
		}
		return nil, false
	}

	if entry.IsStale(r.ttl, time.Now()) {
		return nil, false
	}

	payload, err := base64.StdEncoding.DecodeString(entry.AudioBase64)
	if err != nil {
		r.logger.Warn("Cache entry holds undecodable audio, treating as miss",
			zap.String("key", key),
			zap.Error(err))
		return nil, false
	}

	return payload, true
}

// Store implements repositories.SynthesisCache. The upsert keeps the first
// CreatedAt on overwrite, so an entry's TTL clock never resets.
func (r *CacheRepository) Store(ctx context.Context, entry *entities.CacheEntry) error {
	if entry == nil || entry.Key == "" {
		return errors.New("cache entry requires a key")
	}

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"audio_base64":     entry.AudioBase64,
			"text_length":      entry.TextLength,
			"language_code":    entry.LanguageCode,
			"voice_name":       entry.VoiceName,
			"last_accessed_at": now,
		},
		"$setOnInsert": bson.M{
			"created_at":   now,
			"access_count": int64(0),
		},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": entry.Key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	return nil
}

// RecordAccess implements repositories.SynthesisCache. Failures are logged
// and swallowed; access metering must never block or fail a request.
func (r *CacheRepository) RecordAccess(ctx context.Context, key string) {
	update := bson.M{
		"$inc": bson.M{"access_count": 1},
		"$set": bson.M{"last_accessed_at": time.Now()},
	}

	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": key}, update); err != nil {
		r.logger.Warn("Failed to record cache access",
			zap.String("key", key),
			zap.Error(err))
	}
}

// Sweep implements repositories.SynthesisCache. Safe to run concurrently
// with lookups and stores: it only removes entries already past the TTL,
// which lookups already treat as misses.
func (r *CacheRepository) Sweep(ctx context.Context, ttl time.Duration) (int64, error) {
	if ttl <= 0 {
		ttl = r.ttl
	}
	cutoff := time.Now().Add(-ttl)

	result, err := r.collection.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to sweep cache: %w", err)
	}

	r.logger.Info("Swept stale cache entries",
		zap.Int64("deleted", result.DeletedCount),
		zap.Duration("ttl", ttl))

	return result.DeletedCount, nil
}
