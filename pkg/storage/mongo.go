package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	apperr "github.com/matzehuels/routesim/pkg/errors"
	"github.com/matzehuels/routesim/pkg/graph"
)

// Default MongoDB names.
const (
	DefaultMongoDatabase   = "routesim"
	DefaultMongoCollection = "topologies"
)

// MongoOptions configures a MongoStore.
type MongoOptions struct {
	URI        string
	Database   string // Defaults to DefaultMongoDatabase
	Collection string // Defaults to DefaultMongoCollection
}

// MongoStore keeps topologies in a MongoDB collection, one document per
// name (the name is the document _id).
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.URI == "" {
		return nil, fmt.Errorf("mongo store requires a URI")
	}
	if opts.Database == "" {
		opts.Database = DefaultMongoDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
	}, nil
}

func (s *MongoStore) Save(ctx context.Context, name string, doc graph.Document) (*Record, error) {
	if err := apperr.ValidateName(name); err != nil {
		return nil, err
	}

	existing, err := s.find(ctx, name)
	if err != nil && !apperr.Is(err, apperr.ErrCodeNotFound) {
		return nil, err
	}
	rec := stamp(existing, name, doc)

	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": name}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("save %q: %w", name, err)
	}
	return &rec, nil
}

func (s *MongoStore) Load(ctx context.Context, name string) (*Record, error) {
	if err := apperr.ValidateName(name); err != nil {
		return nil, err
	}
	return s.find(ctx, name)
}

func (s *MongoStore) find(ctx context.Context, name string) (*Record, error) {
	var rec Record
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}
	return &rec, nil
}

func (s *MongoStore) List(ctx context.Context) ([]Record, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list topologies: %w", err)
	}
	var records []Record
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode topologies: %w", err)
	}
	return records, nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := apperr.ValidateName(name); err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	if res.DeletedCount == 0 {
		return notFound(name)
	}
	return nil
}

// Close disconnects the client, waiting at most ten seconds.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Drop removes the whole collection. Used by tests.
func (s *MongoStore) Drop(ctx context.Context) error {
	return s.coll.Drop(ctx)
}

var _ Store = (*MongoStore)(nil)
