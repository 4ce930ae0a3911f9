// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bonitasoft/bonita-engine-sub001/internal/persistence/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeFactories() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		BackendMemory: func(*testing.T) Store { return NewMemoryStore() },
		BackendSQLite: func(t *testing.T) Store {
			db, err := sqlite.Open(filepath.Join(t.TempDir(), "sessions.db"), sqlite.DefaultConfig())
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })
			s, err := OpenStore(context.Background(), StoreConfig{Backend: BackendSQLite, DB: db})
			require.NoError(t, err)
			return s
		},
		BackendRedis: func(t *testing.T) Store {
			mr := miniredis.RunT(t)
			return NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
		},
		BackendBadger: func(t *testing.T) Store {
			s, err := OpenBadgerStore("")
			require.NoError(t, err)
			return s
		},
	}
}

func testRecord(id string, now time.Time) Record {
	return Record{
		ID:        id,
		Kind:      KindTenant,
		TenantID:  3,
		UserID:    TechnicalUserID,
		UserName:  "install",
		CreatedAt: now,
		Duration:  time.Hour,
		ExpiresAt: now.Add(time.Hour),
	}
}

func TestStoreContract(t *testing.T) {
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })

			now := time.Now().UTC().Truncate(time.Millisecond)
			rec := testRecord("s1", now)
			require.NoError(t, s.Put(ctx, rec))

			got, err := s.Get(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, rec.ID, got.ID)
			assert.Equal(t, KindTenant, got.Kind)
			assert.Equal(t, int64(3), got.TenantID)
			assert.Equal(t, "install", got.UserName)
			assert.Equal(t, time.Hour, got.Duration)
			assert.True(t, rec.ExpiresAt.Equal(got.ExpiresAt))

			later := now.Add(30 * time.Minute)
			touched, err := s.Touch(ctx, "s1", later)
			require.NoError(t, err)
			assert.True(t, later.Add(time.Hour).Equal(touched.ExpiresAt), "expiry extended by duration")

			_, err = s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = s.Touch(ctx, "missing", later)
			assert.ErrorIs(t, err, ErrNotFound)

			// Expired at the given instant.
			_, err = s.Touch(ctx, "s1", later.Add(2*time.Hour))
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Put(ctx, testRecord("s2", now)))
			require.NoError(t, s.Put(ctx, testRecord("s3", now.Add(10*time.Hour))))
			n, err := s.DeleteExpired(ctx, now.Add(5*time.Hour))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, n, 1)
			_, err = s.Get(ctx, "s2")
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = s.Get(ctx, "s3")
			assert.NoError(t, err)

			require.NoError(t, s.Delete(ctx, "s3"))
			require.NoError(t, s.Delete(ctx, "s3"))
			_, err = s.Get(ctx, "s3")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestOpenStoreRejectsUnknownBackend(t *testing.T) {
	_, err := OpenStore(context.Background(), StoreConfig{Backend: "etcd"})
	assert.ErrorContains(t, err, "unknown session store backend")

	_, err = OpenStore(context.Background(), StoreConfig{Backend: BackendSQLite})
	assert.Error(t, err)
}

func TestRedisKeyExpiresWithSession(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	now := time.Now()
	mr.SetTime(now)
	rec := testRecord("ttl", now)
	rec.ExpiresAt = now.Add(time.Minute)
	require.NoError(t, s.Put(ctx, rec))
	assert.True(t, mr.Exists(redisKeyPrefix+"ttl"))

	mr.FastForward(2 * time.Minute)
	_, err := s.Get(ctx, "ttl")
	assert.ErrorIs(t, err, ErrNotFound)
}
