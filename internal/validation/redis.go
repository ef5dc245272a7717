package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore is the shared-cache Store for multi-instance deployments.
// Same single-use contract as MemoryStore; consumption is atomic via a
// Lua GET+DEL so two instances cannot both redeem one token.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a Redis-backed validation token store
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func redisKey(token string) string {
	return fmt.Sprintf("validation:token:%s", token)
}

// Create stores the identity under a fresh random token with the store TTL
func (s *RedisStore) Create(ctx context.Context, id Identity) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	id.CreatedAt = time.Now()

	jsonData, err := json.Marshal(id)
	if err != nil {
		return "", fmt.Errorf("failed to marshal identity: %w", err)
	}

	if err := s.rdb.Set(ctx, redisKey(token), jsonData, TTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store token in Redis: %w", err)
	}

	return token, nil
}

// Consume atomically reads and deletes the token.
// Uses a Lua script so check, read and delete happen as one operation.
func (s *RedisStore) Consume(ctx context.Context, token string) (*Identity, error) {
	script := `
		local key = KEYS[1]
		local data = redis.call('GET', key)
		if not data then
			return nil
		end
		redis.call('DEL', key)
		return data
	`

	result, err := s.rdb.Eval(ctx, script, []string{redisKey(token)}).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to execute consume script: %w", err)
	}

	jsonData, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from Redis")
	}

	var id Identity
	if err := json.Unmarshal([]byte(jsonData), &id); err != nil {
		return nil, fmt.Errorf("failed to unmarshal identity: %w", err)
	}

	return &id, nil
}
