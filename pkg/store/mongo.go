package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/subway/pkg/line"
	"github.com/matzehuels/subway/pkg/snapshot"
)

// DefaultMongoDatabase is used when the connection URL names no database.
const DefaultMongoDatabase = "subway"

// MongoStore stores one document per line in the "lines" collection, keyed
// by line ID.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri, verifies the connection and opens the
// "lines" collection in database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection("lines"),
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, id line.LineID) (*line.Line, error) {
	var snap snapshot.Line
	err := s.coll.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find line: %w", err)
	}
	return snap.ToLine()
}

func (s *MongoStore) Put(ctx context.Context, l *line.Line) error {
	snap := snapshot.FromLine(l)
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": snap.ID}, snap, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace line: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id line.LineID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return fmt.Errorf("delete line: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]*line.Line, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find lines: %w", err)
	}
	var snaps []snapshot.Line
	if err := cur.All(ctx, &snaps); err != nil {
		return nil, fmt.Errorf("decode lines: %w", err)
	}
	return toLines(snaps)
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
