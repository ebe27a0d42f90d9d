package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoEntry struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	Revision  int64     `bson:"revision"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoStore keeps one document per key, with the key as _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func OpenMongo(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{client: client, coll: client.Database(database).Collection(collection)}, nil
}

func (s *MongoStore) Get(ctx context.Context, key string) (Entry, error) {
	var e mongoEntry
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Entry{}, nil
	}
	if err != nil {
		return Entry{}, err
	}
	return Entry{Value: e.Value, Revision: e.Revision}, nil
}

func (s *MongoStore) Put(ctx context.Context, key string, value []byte) (int64, error) {
	var e mongoEntry
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": key},
		bson.M{
			"$set": bson.M{"value": value, "updatedAt": time.Now()},
			"$inc": bson.M{"revision": 1},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&e)
	if err != nil {
		return 0, err
	}
	return e.Revision, nil
}

func (s *MongoStore) PutIf(ctx context.Context, key string, value []byte, revision int64) (int64, error) {
	now := time.Now()
	if revision == 0 {
		_, err := s.coll.InsertOne(ctx, mongoEntry{Key: key, Value: value, Revision: 1, UpdatedAt: now})
		if mongo.IsDuplicateKeyError(err) {
			return 0, ErrConflict
		}
		if err != nil {
			return 0, err
		}
		return 1, nil
	}

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": key, "revision": revision},
		bson.M{"$set": bson.M{"value": value, "revision": revision + 1, "updatedAt": now}},
	)
	if err != nil {
		return 0, err
	}
	if res.MatchedCount == 0 {
		return 0, ErrConflict
	}
	return revision + 1, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
