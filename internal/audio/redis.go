package audio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DevanshMistry890/hotel-voice-agent/internal/domain"
)

// Redis stores artifacts in Redis with a TTL, so any instance behind a load
// balancer can serve audio synthesized by another.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("audio.NewRedis: ping: %w", err)
	}

	return &Redis{client: client, ttl: ttl}, nil
}

// Close releases the Redis connection.
func (r *Redis) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("audio.Redis.Close: %w", err)
	}
	return nil
}

// Put stores the artifact under its id with the configured TTL.
func (r *Redis) Put(ctx context.Context, id string, data []byte) error {
	if err := r.client.Set(ctx, key(id), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("audio.Redis.Put: %w", err)
	}
	return nil
}

// Get returns the artifact bytes, or domain.ErrNotFound when unknown or expired.
func (r *Redis) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := r.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("audio.Redis.Get: %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("audio.Redis.Get: %w", err)
	}
	return data, nil
}

func key(id string) string {
	return "audio:" + id
}
