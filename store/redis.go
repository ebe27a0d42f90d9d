package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	fieldValue    = "value"
	fieldRevision = "revision"
)

// RedisStore keeps each entry in a hash with value and revision fields.
type RedisStore struct {
	client *redis.Client
}

func OpenRedis(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return NewRedisStore(client), nil
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (Entry, error) {
	vals, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return Entry{}, err
	}
	if len(vals) == 0 {
		return Entry{}, nil
	}
	rev, err := strconv.ParseInt(vals[fieldRevision], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parse revision of %s: %w", key, err)
	}
	return Entry{Value: []byte(vals[fieldValue]), Revision: rev}, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte) (int64, error) {
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fieldValue, value)
		incr = pipe.HIncrBy(ctx, key, fieldRevision, 1)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (s *RedisStore) PutIf(ctx context.Context, key string, value []byte, revision int64) (int64, error) {
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, key, fieldRevision).Int64()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return err
		}
		if current != revision {
			return ErrConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fieldValue, value, fieldRevision, revision+1)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return 0, ErrConflict
	}
	if err != nil {
		return 0, err
	}
	return revision + 1, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
