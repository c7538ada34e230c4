package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"hotelmenu/catalog-svc/internal/domain"
)

// hardExpiry bounds how long a logically-expired entry may linger in redis
// as last-resort data before redis itself drops it.
const hardExpiry = 24 * time.Hour

// RedisCache is the tenant-scoped cache. Entries carry their own expires_at
// so expiry is logical: a stale entry is a miss for Get but still readable
// through GetStale when the backend is unreachable.
type RedisCache struct {
	Client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{Client: client}
}

type cacheEnvelope struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt time.Time       `json:"expires_at"`
}

func (c *RedisCache) Key(kind, hotelID, branchID string) string {
	return "catalog:" + kind + ":" + hotelID + ":" + branchID
}

func (c *RedisCache) Get(ctx context.Context, key string, out interface{}) (bool, error) {
	return c.read(ctx, key, out, false)
}

// GetStale reads an entry regardless of logical expiry. Last-resort path for
// backend failures only.
func (c *RedisCache) GetStale(ctx context.Context, key string, out interface{}) (bool, error) {
	return c.read(ctx, key, out, true)
}

func (c *RedisCache) read(ctx context.Context, key string, out interface{}, allowStale bool) (bool, error) {
	raw, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return decodeEntry(raw, time.Now(), allowStale, out)
}

func decodeEntry(raw string, now time.Time, allowStale bool, out interface{}) (bool, error) {
	var envelope cacheEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return false, err
	}
	if !allowStale && now.After(envelope.ExpiresAt) {
		return false, nil
	}
	if err := json.Unmarshal(envelope.Value, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := encodeEntry(value, time.Now().Add(ttl))
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, key, raw, hardExpiry).Err()
}

func encodeEntry(value interface{}, expiresAt time.Time) (string, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(cacheEnvelope{Value: encoded, ExpiresAt: expiresAt})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Invalidate drops exactly one entry by its full key. Callers build the key
// with Key (plus any suffix, such as the date on sales entries) so a write
// can never clear another tenant's data.
func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	return c.Client.Del(ctx, key).Err()
}

// SaveSnapshot persists a never-expiring per-tenant copy, the lowest tier of
// the read-failure fallback chain.
func (c *RedisCache) SaveSnapshot(ctx context.Context, key string, value interface{}) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, "snapshot:"+key, encoded, 0).Err()
}

func (c *RedisCache) Snapshot(ctx context.Context, key string, out interface{}) (bool, error) {
	raw, err := c.Client.Get(ctx, "snapshot:"+key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, err
	}
	return true, nil
}

// RedisWriteQueue is the durable offline write queue: a single redis list,
// RPUSH on enqueue so LRANGE walks it FIFO.
type RedisWriteQueue struct {
	Client *redis.Client
	Key    string
}

func NewRedisWriteQueue(client *redis.Client, key string) *RedisWriteQueue {
	return &RedisWriteQueue{Client: client, Key: key}
}

func (q *RedisWriteQueue) Enqueue(ctx context.Context, write domain.QueuedWrite) error {
	raw, err := json.Marshal(write)
	if err != nil {
		return err
	}
	return q.Client.RPush(ctx, q.Key, string(raw)).Err()
}

func (q *RedisWriteQueue) Entries(ctx context.Context) ([]domain.QueueEntry, error) {
	raws, err := q.Client.LRange(ctx, q.Key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.QueueEntry, 0, len(raws))
	for _, raw := range raws {
		var write domain.QueuedWrite
		if err := json.Unmarshal([]byte(raw), &write); err != nil {
			// Unreadable entries stay queued; replay will skip them.
			entries = append(entries, domain.QueueEntry{Raw: raw})
			continue
		}
		entries = append(entries, domain.QueueEntry{Raw: raw, Write: write})
	}

	return entries, nil
}

// Remove deletes one specific replayed element by value.
func (q *RedisWriteQueue) Remove(ctx context.Context, raw string) error {
	return q.Client.LRem(ctx, q.Key, 1, raw).Err()
}

func (q *RedisWriteQueue) Len(ctx context.Context) (int64, error) {
	return q.Client.LLen(ctx, q.Key).Result()
}
