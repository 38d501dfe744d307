package mongo

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Client wraps the MongoDB client and database
type Client struct {
	*mongo.Client
	Database *mongo.Database
	logger   *zap.Logger
}

// NewClient creates a new MongoDB client connection
func NewClient(logger *zap.Logger) (*Client, error) {
	// Get MongoDB URI from environment variable
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017" // Default for development
	}

	// Get database name from environment variable
	dbName := os.Getenv("MONGODB_DATABASE")
	if dbName == "" {
		dbName = "sermonaudio" // Default database name
	}

	// Set client options
	clientOptions := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(10).
		SetMinPoolSize(1).
		SetMaxConnIdleTime(30 * time.Minute).
		SetServerSelectionTimeout(5 * time.Second).
		SetConnectTimeout(10 * time.Second)

	// Create context for connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect to MongoDB
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("Successfully connected to MongoDB",
		zap.String("database", dbName))

	return &Client{
		Client:   client,
		Database: client.Database(dbName),
		logger:   logger,
	}, nil
}

// EnsureIndexes creates the indexes the repositories rely on. Called once on
// startup; Mongo treats re-creating an identical index as a no-op.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	// Sweep deletes synthesis_cache entries by a created_at range.
	_, err := c.Database.Collection("synthesis_cache").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to index synthesis_cache: %w", err)
	}

	// Claims past the staleness bound are reaped by Mongo's TTL monitor
	// even when no later run ever takes them over.
	_, err = c.Database.Collection("generation_claims").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "claimed_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(claimTTL / time.Second)),
	})
	if err != nil {
		return fmt.Errorf("failed to index generation_claims: %w", err)
	}

	_, err = c.Database.Collection("usage_records").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sermon_id", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to index usage_records: %w", err)
	}

	c.logger.Info("Ensured MongoDB indexes")
	return nil
}

// Close closes the MongoDB connection
func (c *Client) Close(ctx context.Context) error {
	if err := c.Client.Disconnect(ctx); err != nil {
		c.logger.Error("Failed to disconnect from MongoDB", zap.Error(err))
		return err
	}
	c.logger.Info("Disconnected from MongoDB")
	return nil
}
