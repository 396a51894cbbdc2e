package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/taskhive/taskhive/biz/activity/structs"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/paging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoStore struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewMongoStore stores entries in a MongoDB collection.
func NewMongoStore(collection *mongo.Collection, l *logger.Logger) (Store, error) {
	if collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	s := &mongoStore{collection: collection, logger: l}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// ConnectMongo connects to uri and returns the collection with a function
// that disconnects the client.
func ConnectMongo(ctx context.Context, uri, database, collection string) (*mongo.Collection, func(context.Context) error, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client.Database(database).Collection(collection), client.Disconnect, nil
}

func (s *mongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "workspace_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (s *mongoStore) Save(ctx context.Context, e *structs.Entry) error {
	_, err := s.collection.InsertOne(ctx, e)
	if err != nil && s.logger != nil {
		s.logger.Error(ctx, "Failed to save activity in Mongo", "error", err, "entry_id", e.ID)
	}
	return err
}

func (s *mongoStore) ListByUser(ctx context.Context, userID string, before *paging.Cursor, limit int) ([]*structs.Entry, error) {
	return s.loadMany(ctx, bson.M{"user_id": userID}, before, limit)
}

func (s *mongoStore) ListByWorkspace(ctx context.Context, workspaceID string, before *paging.Cursor, limit int) ([]*structs.Entry, error) {
	return s.loadMany(ctx, bson.M{"workspace_id": workspaceID}, before, limit)
}

func (s *mongoStore) loadMany(ctx context.Context, filter bson.M, before *paging.Cursor, limit int) ([]*structs.Entry, error) {
	if before != nil {
		filter["$or"] = bson.A{
			bson.M{"created_at": bson.M{"$lt": before.Time}},
			bson.M{"created_at": before.Time, "id": bson.M{"$lt": before.ID}},
		}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "id", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []*structs.Entry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
