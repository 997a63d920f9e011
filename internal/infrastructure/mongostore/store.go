// Package mongostore keeps the durable key-value records in a MongoDB collection
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CollectionName holds one document per key
const CollectionName = "kv_records"

type record struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Store is a MongoDB-backed key-value store
type Store struct {
	client *mongo.Client
	col    *mongo.Collection
	logger *slog.Logger
}

// NewStore connects to uri and uses dbName.kv_records
func NewStore(uri, dbName string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect failed: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping failed: %w", err)
	}

	logger.Info("mongo store connected", slog.String("database", dbName))
	return &Store{
		client: client,
		col:    client.Database(dbName).Collection(CollectionName),
		logger: logger,
	}, nil
}

// Read retrieves a value; a missing key is reported as ok=false
func (s *Store) Read(ctx context.Context, key string) (string, bool, error) {
	var rec record
	err := s.col.FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("mongo: find %s: %w", key, err)
	}
	return rec.Value, true, nil
}

// Write upserts a value
func (s *Store) Write(ctx context.Context, key, value string) error {
	rec := record{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := s.col.ReplaceOne(ctx, bson.D{{Key: "_id", Value: key}}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo: replace %s: %w", key, err)
	}
	return nil
}

// Remove deletes a key
func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: key}}); err != nil {
		return fmt.Errorf("mongo: delete %s: %w", key, err)
	}
	return nil
}

// Ping checks the primary
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
