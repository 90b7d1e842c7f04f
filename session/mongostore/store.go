// Package mongostore backs session.Store with a MongoDB collection: one
// document per session key, one document key per stored field (prefixed to
// avoid collisions with the document's own "_id"). Grounded on the teacher's
// features/session/mongo backend.
package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/agentscope-go/shutdown/session"
)

const fieldPrefix = "f_"

// Store is a MongoDB-backed session.Store.
type Store struct {
	coll *mongo.Collection
}

// New wraps an existing collection. The caller owns the client's lifecycle.
func New(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// Save implements session.Store.
func (s *Store) Save(ctx context.Context, key, field string, value []byte) error {
	filter := bson.M{"_id": key}
	update := bson.M{"$set": bson.M{fieldPrefix + field: value}}
	opts := options.UpdateOne().SetUpsert(true)
	_, err := s.coll.UpdateOne(ctx, filter, update, opts)
	return err
}

// Get implements session.Store.
func (s *Store) Get(ctx context.Context, key, field string) ([]byte, error) {
	filter := bson.M{"_id": key}
	proj := options.FindOne().SetProjection(bson.M{fieldPrefix + field: 1})
	var doc bson.M
	err := s.coll.FindOne(ctx, filter, proj).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	v, ok := doc[fieldPrefix+field]
	if !ok {
		return nil, session.ErrNotFound
	}
	b, ok := v.(bson.Binary)
	if !ok {
		return nil, session.ErrNotFound
	}
	return b.Data, nil
}

// Delete implements session.Store.
func (s *Store) Delete(ctx context.Context, key, field string) error {
	filter := bson.M{"_id": key}
	update := bson.M{"$unset": bson.M{fieldPrefix + field: ""}}
	_, err := s.coll.UpdateOne(ctx, filter, update)
	return err
}

// Exists implements session.Store.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": key})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
