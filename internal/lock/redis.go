// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bonitasoft/bonita-engine-sub001/internal/metrics"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	backendRedis = "redis"
	redisPrefix  = "apigate:lock:"

	// DefaultLeaseTTL bounds how long a crashed holder keeps a redis lock.
	DefaultLeaseTTL = 5 * time.Minute
	// DefaultPollInterval paces acquisition retries.
	DefaultPollInterval = 10 * time.Millisecond
)

// releaseScript deletes the key only if it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisService shares locks between nodes through SET NX PX leases.
type RedisService struct {
	client       *redis.Client
	leaseTTL     time.Duration
	pollInterval time.Duration
}

// RedisOption configures a RedisService.
type RedisOption func(*RedisService)

// WithLeaseTTL overrides DefaultLeaseTTL.
func WithLeaseTTL(d time.Duration) RedisOption {
	return func(s *RedisService) {
		if d > 0 {
			s.leaseTTL = d
		}
	}
}

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) RedisOption {
	return func(s *RedisService) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// NewRedisService creates a lock service on client.
func NewRedisService(client *redis.Client, opts ...RedisOption) *RedisService {
	s := &RedisService{client: client, leaseTTL: DefaultLeaseTTL, pollInterval: DefaultPollInterval}
	for _, o := range opts {
		o(s)
	}
	return s
}

func redisLockKey(k Key) string {
	return fmt.Sprintf("%s%s:%d", redisPrefix, k.Scope, k.TenantID)
}

func (s *RedisService) TryLock(ctx context.Context, key Key, timeout time.Duration) (Handle, error) {
	start := time.Now()
	h, err := s.acquire(ctx, key, timeout)
	metrics.RecordLockAcquire(backendRedis, key.Scope, resultLabel(err), time.Since(start))
	return h, err
}

func (s *RedisService) acquire(ctx context.Context, key Key, timeout time.Duration) (Handle, error) {
	token := uuid.NewString()
	rkey := redisLockKey(key)

	waitCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	limiter := rate.NewLimiter(rate.Every(s.pollInterval), 1)

	for {
		ok, err := s.client.SetNX(ctx, rkey, token, s.leaseTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", key, err)
		}
		if ok {
			return &redisHandle{svc: s, key: key, rkey: rkey, token: token}, nil
		}
		if timeout <= 0 {
			return nil, ErrTimeout
		}
		if err := limiter.Wait(waitCtx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, ErrTimeout
		}
	}
}

type redisHandle struct {
	svc   *RedisService
	key   Key
	rkey  string
	token string
}

func (h *redisHandle) Key() Key      { return h.key }
func (h *redisHandle) Token() string { return h.token }

func (h *redisHandle) Release(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, h.svc.client, []string{h.rkey}, h.token).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release %s: %w", h.key, err)
	}
	if n == 0 {
		return ErrNotHeld
	}
	metrics.RecordLockRelease(backendRedis)
	return nil
}
