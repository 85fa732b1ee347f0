package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/flowplan/flowplan/pkg/errors"
)

// MongoConfig configures the MongoDB backend.
type MongoConfig struct {
	// URI is the connection string, e.g. mongodb://localhost:27017.
	URI string

	// Database is the database name. Defaults to "flowplan".
	Database string

	// Collection is the collection name. Defaults to "plans".
	Collection string

	// ConnectTimeout bounds the initial connect and ping. Defaults to 10s.
	ConnectTimeout time.Duration
}

// MongoStore persists plans in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo URI is required")
	}
	if cfg.Database == "" {
		cfg.Database = "flowplan"
	}
	if cfg.Collection == "" {
		cfg.Collection = "plans"
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongo")
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Get retrieves a plan by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (*Plan, error) {
	var plan Plan
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodePlanNotFound, "plan %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load plan %s", id)
	}
	return &plan, nil
}

// Put stores a plan, replacing any existing plan with the same ID.
func (s *MongoStore) Put(ctx context.Context, plan *Plan) error {
	if plan.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "plan has no ID")
	}
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": plan.ID},
		plan,
		options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "store plan %s", plan.ID)
	}
	return nil
}

// Delete removes a plan.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete plan %s", id)
	}
	return nil
}

// List returns the most recently created plans, newest first.
func (s *MongoStore) List(ctx context.Context, limit int) ([]*Plan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list plans")
	}
	defer cur.Close(ctx)

	var plans []*Plan
	if err := cur.All(ctx, &plans); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode plans")
	}
	return plans, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
