package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gospelstack/sermon-audio/domain/entities"
	"github.com/gospelstack/sermon-audio/domain/repositories"
)

type SermonRepository struct {
	collection *mongo.Collection
}

// NewSermonRepository creates a new MongoDB sermon repository
func NewSermonRepository(db *mongo.Database) repositories.SermonRepository {
	return &SermonRepository{
		collection: db.Collection("sermons"),
	}
}

// Create implements repositories.SermonRepository
func (r *SermonRepository) Create(ctx context.Context, sermon *entities.Sermon) error {
	if sermon == nil {
		return errors.New("sermon cannot be nil")
	}
	if err := sermon.Validate(); err != nil {
		return err
	}

	now := time.Now()
	if sermon.CreatedAt.IsZero() {
		sermon.CreatedAt = now
	}
	sermon.UpdatedAt = now

	doc := bson.M{
		"title":      sermon.Title,
		"speaker":    sermon.Speaker,
		"body":       sermon.Body,
		"audio":      sermon.Audio,
		"created_at": sermon.CreatedAt,
		"updated_at": sermon.UpdatedAt,
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create sermon: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		sermon.ID = oid.Hex()
	}

	return nil
}

// GetByID implements repositories.SermonRepository
func (r *SermonRepository) GetByID(ctx context.Context, id string) (*entities.Sermon, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// An ID that does not parse as an ObjectID cannot identify a
		// stored sermon, so it reads as not found rather than an error.
		return nil, nil
	}

	var sermon entities.Sermon
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&sermon)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // No sermon found, return nil without error
		}
		return nil, fmt.Errorf("failed to get sermon %s: %w", id, err)
	}
	sermon.ID = id

	return &sermon, nil
}

// Update implements repositories.SermonRepository
func (r *SermonRepository) Update(ctx context.Context, sermon *entities.Sermon) error {
	if sermon == nil {
		return errors.New("sermon cannot be nil")
	}
	if sermon.ID == "" {
		return errors.New("sermon ID cannot be empty")
	}

	objectID, err := primitive.ObjectIDFromHex(sermon.ID)
	if err != nil {
		return fmt.Errorf("invalid sermon ID format: %w", err)
	}

	update := bson.M{
		"$set": bson.M{
			"title":      sermon.Title,
			"speaker":    sermon.Speaker,
			"body":       sermon.Body,
			"updated_at": time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update sermon: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("sermon %s not found", sermon.ID)
	}

	return nil
}

// Delete implements repositories.SermonRepository
func (r *SermonRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid sermon ID format: %w", err)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete sermon: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("sermon %s not found", id)
	}

	return nil
}

// SetGeneratedAudio implements repositories.SermonRepository. The artifact
// for one language is written with a single atomic $set so a reader never
// observes a half-written artifact.
func (r *SermonRepository) SetGeneratedAudio(ctx context.Context, sermonID string, audio *entities.GeneratedAudio) error {
	if audio == nil {
		return errors.New("audio cannot be nil")
	}

	objectID, err := primitive.ObjectIDFromHex(sermonID)
	if err != nil {
		return fmt.Errorf("invalid sermon ID format: %w", err)
	}

	update := bson.M{
		"$set": bson.M{
			"audio." + audio.LanguageCode: audio,
			"updated_at":                  time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to record generated audio: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("sermon %s not found", sermonID)
	}

	return nil
}
