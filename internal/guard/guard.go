// Package guard rejects repeat submissions of the same photo within the
// freshness window.
package guard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrDuplicateSubmission indicates the same image was already submitted
// within the freshness window.
var ErrDuplicateSubmission = errors.New("image already submitted within the freshness window")

// Guard records image digests and rejects repeats. userKey scopes the
// digest so two different users may submit the same stock photo without
// colliding; anonymous submissions share one scope.
type Guard interface {
	Check(ctx context.Context, userKey, imageDigest string) error
}

type redisGuard struct {
	client *redis.Client
	window time.Duration
}

// NewRedisGuard backs the guard with redis; entries expire with the
// freshness window via TTL.
func NewRedisGuard(client *redis.Client, window time.Duration) Guard {
	return &redisGuard{client: client, window: window}
}

func (g *redisGuard) Check(ctx context.Context, userKey, imageDigest string) error {
	key := fmt.Sprintf("ecoverify:seen:%s:%s", userKey, imageDigest)
	ok, err := g.client.SetNX(ctx, key, 1, g.window).Result()
	if err != nil {
		return fmt.Errorf("duplicate guard unavailable: %w", err)
	}
	if !ok {
		return ErrDuplicateSubmission
	}
	return nil
}

// ConnectRedis initializes and returns a Redis client instance.
func ConnectRedis(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

// MemoryGuard is a mutex-map Guard for tests and single-node use.
type MemoryGuard struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	window time.Duration
	now    func() time.Time
}

func NewMemoryGuard(window time.Duration) *MemoryGuard {
	return &MemoryGuard{
		seen:   make(map[string]time.Time),
		window: window,
		now:    time.Now,
	}
}

func (g *MemoryGuard) Check(_ context.Context, userKey, imageDigest string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	key := userKey + ":" + imageDigest
	if at, exists := g.seen[key]; exists && now.Sub(at) < g.window {
		return ErrDuplicateSubmission
	}
	g.seen[key] = now

	// Opportunistic sweep of expired entries.
	for k, at := range g.seen {
		if now.Sub(at) >= g.window {
			delete(g.seen, k)
		}
	}
	return nil
}
