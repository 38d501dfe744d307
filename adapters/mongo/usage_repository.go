package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gospelstack/sermon-audio/domain/entities"
	"github.com/gospelstack/sermon-audio/domain/repositories"
)

type UsageRepository struct {
	collection *mongo.Collection
}

// NewUsageRepository creates a new MongoDB usage recorder
func NewUsageRepository(db *mongo.Database) repositories.UsageRecorder {
	return &UsageRepository{
		collection: db.Collection("usage_records"),
	}
}

// Record implements repositories.UsageRecorder
func (r *UsageRepository) Record(ctx context.Context, record *entities.UsageRecord) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}

	return nil
}
