package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"voto/internal/storage"
	"voto/pkg/platform/sentinel"
)

// Redis key prefix for collections. Each collection is one hash whose
// fields are record ids and whose values are JSON arrays of record fields.
const collectionKeyPrefix = "voto:collection:"

// Store is a Redis-backed storage.RecordStore for deployments where several
// processes share the registry state.
type Store struct {
	client *redis.Client
}

// New constructs a Redis record store. The client lifecycle is managed by
// the caller.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Key returns the Redis key holding collection.
func Key(collection string) string {
	return collectionKeyPrefix + collection
}

func (s *Store) Load(ctx context.Context, collection string) (storage.Records, error) {
	values, err := s.client.HGetAll(ctx, Key(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("load collection %s: %w", collection, err)
	}
	records := make(storage.Records, len(values))
	for id, raw := range values {
		var fields []string
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return nil, fmt.Errorf("decode record %s/%s: %w: %v", collection, id, sentinel.ErrInvalidState, err)
		}
		records[id] = fields
	}
	return records, nil
}

// Save replaces the collection inside MULTI/EXEC so concurrent readers see
// either the old or the new collection, never a mix.
func (s *Store) Save(ctx context.Context, collection string, records storage.Records) error {
	values := make(map[string]any, len(records))
	for id, fields := range records {
		if fields == nil {
			fields = []string{}
		}
		raw, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("encode record %s/%s: %w", collection, id, err)
		}
		values[id] = string(raw)
	}

	key := Key(collection)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.HSet(ctx, key, values)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save collection %s: %w", collection, err)
	}
	return nil
}
