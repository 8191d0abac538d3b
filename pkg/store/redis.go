package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/subway/pkg/line"
	"github.com/matzehuels/subway/pkg/snapshot"
)

// RedisStore stores each line as a JSON value under <prefix>line:<id> and
// keeps the set of line IDs under <prefix>lines.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to the Redis server at url and verifies the
// connection. Keys are namespaced with prefix (e.g. "subway:").
func NewRedisStore(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) lineKey(id string) string { return s.prefix + "line:" + id }
func (s *RedisStore) indexKey() string         { return s.prefix + "lines" }

func (s *RedisStore) Get(ctx context.Context, id line.LineID) (*line.Line, error) {
	data, err := s.client.Get(ctx, s.lineKey(string(id))).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return snapshot.Unmarshal(data)
}

// Put writes the line value and its index entry in one MULTI/EXEC block.
func (s *RedisStore) Put(ctx context.Context, l *line.Line) error {
	data, err := snapshot.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal line: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.lineKey(string(l.ID)), data, 0)
		pipe.SAdd(ctx, s.indexKey(), string(l.ID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id line.LineID) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.lineKey(string(id)))
		pipe.SRem(ctx, s.indexKey(), string(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]*line.Line, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}
	if len(ids) == 0 {
		return []*line.Line{}, nil
	}
	slices.Sort(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.lineKey(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	snaps := make([]snapshot.Line, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			// Index entry without a value: deleted concurrently.
			continue
		}
		var snap snapshot.Line
		if err := json.Unmarshal([]byte(str), &snap); err != nil {
			return nil, fmt.Errorf("decode line: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return toLines(snaps)
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
