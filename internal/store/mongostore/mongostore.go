// Package mongostore implements store.Store on top of MongoDB, using a
// unique index on (intendedAt, name) as the distributed lease primitive
// and a TTL index on startedAt for automatic history expiry.
package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/google/uuid"
	"github.com/hzerrad/cronsched/internal/store"
)

// Connect opens a Mongo connection and pings it before returning, using
// the same connection-pool tuning as the rest of the stack's Mongo
// client construction.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetMinPoolSize(2).
		SetMaxPoolSize(50).
		SetMaxConnIdleTime(5 * time.Minute).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}
	return client, nil
}

type record struct {
	ID         string     `bson:"_id"`
	Name       string     `bson:"name"`
	IntendedAt time.Time  `bson:"intendedAt"`
	StartedAt  time.Time  `bson:"startedAt"`
	FinishedAt *time.Time `bson:"finishedAt,omitempty"`
	Result     string     `bson:"result,omitempty"`
	Error      string     `bson:"error,omitempty"`
}

// Store is a store.Store backed by a single Mongo collection.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// New wraps an existing client and database/collection pair.
func New(client *mongo.Client, database, collection string) *Store {
	return &Store{client: client, collection: client.Database(database).Collection(collection)}
}

func (s *Store) InsertHistory(ctx context.Context, rec store.HistoryRecord) (string, error) {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	doc := record{
		ID:         id,
		Name:       rec.Name,
		IntendedAt: rec.IntendedAt.Truncate(time.Second),
		StartedAt:  rec.StartedAt,
	}

	_, err := s.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", store.ErrDuplicateKey
		}
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateHistory(ctx context.Context, id string, finishedAt time.Time, result, execErr string) error {
	_, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"finishedAt": finishedAt,
			"result":     result,
			"error":      execErr,
		}},
	)
	return err
}

func (s *Store) FindRecent(ctx context.Context, name string, limit int) ([]store.HistoryRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.collection.Find(ctx, bson.M{"name": name}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []record
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	result := make([]store.HistoryRecord, 0, len(docs))
	for _, d := range docs {
		result = append(result, store.HistoryRecord{
			ID:         d.ID,
			Name:       d.Name,
			IntendedAt: d.IntendedAt,
			StartedAt:  d.StartedAt,
			FinishedAt: d.FinishedAt,
			Result:     d.Result,
			Error:      d.Error,
		})
	}
	return result, nil
}

func (s *Store) CreateUniqueIndex(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "intendedAt", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *Store) CreateTtlIndex(ctx context.Context, seconds int) error {
	if seconds < 300 {
		return store.ErrTTLTooShort
	}
	expireAfter := int32(seconds)
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "startedAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(expireAfter),
	})
	return err
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
