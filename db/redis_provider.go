package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mezonai/multisig/logx"
)

// RedisProvider implements IterableProvider for Redis. Every key is stored
// under namespace so several ledgers can share one Redis database.
type RedisProvider struct {
	client    *redis.Client
	ctx       context.Context
	namespace string
}

// NewRedisProvider connects to address and checks the connection with PING.
func NewRedisProvider(address string, database int, namespace string) (DatabaseProvider, error) {
	client := redis.NewClient(&redis.Options{
		Addr: address,
		DB:   database,
	})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logx.Info("REDIS", "connected to", address, "db", database, "namespace", namespace)

	return &RedisProvider{
		client:    client,
		ctx:       ctx,
		namespace: namespace,
	}, nil
}

func (p *RedisProvider) key(k []byte) string {
	if p.namespace == "" {
		return string(k)
	}
	return p.namespace + ":" + string(k)
}

func (p *RedisProvider) stripKey(k string) []byte {
	if p.namespace == "" {
		return []byte(k)
	}
	return []byte(k[len(p.namespace)+1:])
}

func (p *RedisProvider) Get(key []byte) ([]byte, error) {
	value, err := p.client.Get(p.ctx, p.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}

// GetBatch uses MGET; missing keys come back as nil entries and are skipped.
func (p *RedisProvider) GetBatch(keys [][]byte) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return result, nil
	}
	redisKeys := make([]string, len(keys))
	for i, k := range keys {
		redisKeys[i] = p.key(k)
	}
	values, err := p.client.MGet(p.ctx, redisKeys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		if s, ok := v.(string); ok {
			result[string(keys[i])] = []byte(s)
		}
	}
	return result, nil
}

func (p *RedisProvider) Put(key, value []byte) error {
	logx.Debug("REDIS", "Put key:", p.key(key), "value length:", len(value))
	return p.client.Set(p.ctx, p.key(key), value, 0).Err()
}

func (p *RedisProvider) Delete(key []byte) error {
	return p.client.Del(p.ctx, p.key(key)).Err()
}

func (p *RedisProvider) Has(key []byte) (bool, error) {
	count, err := p.client.Exists(p.ctx, p.key(key)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (p *RedisProvider) Close() error {
	return p.client.Close()
}

// Batch queues commands in a MULTI/EXEC pipeline so they apply atomically.
func (p *RedisProvider) Batch() DatabaseBatch {
	return &RedisBatch{
		provider: p,
		pipe:     p.client.TxPipeline(),
	}
}

// IteratePrefix walks matching keys with SCAN.
func (p *RedisProvider) IteratePrefix(prefix []byte, fn func(key, value []byte) bool) error {
	pattern := p.key(prefix) + "*"
	var cursor uint64
	for {
		keys, next, err := p.client.Scan(p.ctx, cursor, pattern, 1000).Result()
		if err != nil {
			return err
		}
		cursor = next
		for _, k := range keys {
			val, err := p.client.Get(p.ctx, k).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				return err
			}
			if !fn(p.stripKey(k), val) {
				return nil
			}
		}
		if cursor == 0 {
			return nil
		}
	}
}

// RedisBatch implements DatabaseBatch for Redis
type RedisBatch struct {
	provider *RedisProvider
	pipe     redis.Pipeliner
}

func (b *RedisBatch) Put(key, value []byte) {
	b.pipe.Set(b.provider.ctx, b.provider.key(key), value, 0)
}

func (b *RedisBatch) Delete(key []byte) {
	b.pipe.Del(b.provider.ctx, b.provider.key(key))
}

func (b *RedisBatch) Write() error {
	_, err := b.pipe.Exec(b.provider.ctx)
	return err
}

func (b *RedisBatch) Reset() {
	b.pipe.Discard()
	b.pipe = b.provider.client.TxPipeline()
}

func (b *RedisBatch) Close() {
	b.pipe.Discard()
}
