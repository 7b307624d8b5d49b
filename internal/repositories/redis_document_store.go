package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

const (
	docKeyPrefix = "bizscope:doc:" // document body: bizscope:doc:{key}
	docIndexKey  = "bizscope:docs" // set of every stored key
)

// RedisDocumentStore keeps each document as a string value plus a set index of keys
type RedisDocumentStore struct {
	client *redis.Client
}

func NewRedisDocumentStore(client *redis.Client) *RedisDocumentStore {
	return &RedisDocumentStore{
		client: client,
	}
}

// OpenRedisDocumentStore connects to addr and verifies the connection
func OpenRedisDocumentStore(ctx context.Context, addr, password string, db int) (*RedisDocumentStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return NewRedisDocumentStore(client), nil
}

// Put writes the document and indexes its key in one pipeline
func (s *RedisDocumentStore) Put(ctx context.Context, key string, doc []byte) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.docKey(key), doc, 0)
	pipe.SAdd(ctx, docIndexKey, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to put document: %w", err)
	}
	return nil
}

func (s *RedisDocumentStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.docKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return data, nil
}

func (s *RedisDocumentStore) ListKeys(ctx context.Context) ([]string, error) {
	keys, err := s.client.SMembers(ctx, docIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *RedisDocumentStore) Close() error {
	return s.client.Close()
}

func (s *RedisDocumentStore) docKey(key string) string {
	return docKeyPrefix + key
}
