// Package redisstore backs session.Store with Redis hashes: one hash per
// session key, one hash field per stored field. This is a closer structural
// match to the save/get/delete/exists-by-field contract than a whole-object
// store would be, and gives the store the visibility-across-replicas
// property the core assumes of its external backend (spec.md §1, §5).
package redisstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/agentscope-go/shutdown/session"
)

// Store is a Redis-backed session.Store.
type Store struct {
	client *redis.Client
}

// New wraps an existing Redis client. The caller owns the client's lifecycle.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Save implements session.Store.
func (s *Store) Save(ctx context.Context, key, field string, value []byte) error {
	return s.client.HSet(ctx, key, field, value).Err()
}

// Get implements session.Store.
func (s *Store) Get(ctx context.Context, key, field string) ([]byte, error) {
	v, err := s.client.HGet(ctx, key, field).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Delete implements session.Store.
func (s *Store) Delete(ctx context.Context, key, field string) error {
	return s.client.HDel(ctx, key, field).Err()
}

// Exists implements session.Store.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
