package infra

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"tourplanner/internal/config"
)

// NewMongoClient connects to MongoDB. It returns nil without error when no URI is
// configured.
func NewMongoClient(ctx context.Context, cfg config.Config) (*mongo.Client, error) {
	if cfg.Mongo.URI == "" {
		return nil, nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, nil
}
