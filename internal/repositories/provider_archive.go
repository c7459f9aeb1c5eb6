package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProviderArchiveEntry is one raw recommendation exchange kept for debugging and
// replaying provider behaviour.
type ProviderArchiveEntry struct {
	TripID    string    `bson:"trip_id" json:"trip_id"`
	Day       int       `bson:"day" json:"day"`
	Revision  int       `bson:"revision" json:"revision"`
	Source    string    `bson:"source" json:"source"`
	Request   bson.M    `bson:"request,omitempty" json:"request,omitempty"`
	Response  bson.M    `bson:"response,omitempty" json:"response,omitempty"`
	Error     string    `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type ProviderArchive interface {
	Save(ctx context.Context, entry ProviderArchiveEntry) error
	ListForTrip(ctx context.Context, tripID string) ([]ProviderArchiveEntry, error)
}

type mongoProviderArchive struct {
	collection *mongo.Collection
}

// NewProviderArchive returns a no-op archive when client is nil.
func NewProviderArchive(client *mongo.Client, database, collection string) ProviderArchive {
	if client == nil {
		return noopProviderArchive{}
	}
	return &mongoProviderArchive{collection: client.Database(database).Collection(collection)}
}

func (a *mongoProviderArchive) Save(ctx context.Context, entry ProviderArchiveEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if _, err := a.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("archive provider response: %w", err)
	}
	return nil
}

func (a *mongoProviderArchive) ListForTrip(ctx context.Context, tripID string) ([]ProviderArchiveEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "day", Value: 1}, {Key: "created_at", Value: 1}})
	cursor, err := a.collection.Find(ctx, bson.M{"trip_id": tripID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []ProviderArchiveEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

type noopProviderArchive struct{}

func (noopProviderArchive) Save(context.Context, ProviderArchiveEntry) error { return nil }

func (noopProviderArchive) ListForTrip(context.Context, string) ([]ProviderArchiveEntry, error) {
	return nil, nil
}

// ToDocument converts any JSON-encodable value into a bson document for archiving.
func ToDocument(v any) bson.M {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return bson.M{"encode_error": err.Error()}
	}
	var doc bson.M
	if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
		return bson.M{"raw": string(raw)}
	}
	return doc
}
