// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrKindMismatch = errors.New("session kind mismatch")
	ErrBadLogin     = errors.New("invalid credentials")
)

// Store persists session records.
type Store interface {
	Put(ctx context.Context, rec Record) error
	// Get returns the stored record or ErrNotFound. Expired records may still
	// be returned by backends without server side expiry.
	Get(ctx context.Context, id string) (Record, error)
	// Touch extends the expiry of a live record to now + its duration and
	// returns the renewed record. Missing or expired records yield ErrNotFound.
	Touch(ctx context.Context, id string, now time.Time) (Record, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
	Close() error
}

// Backend names accepted by OpenStore.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendBadger = "badger"
)

// StoreConfig selects and configures a session store backend.
type StoreConfig struct {
	Backend   string
	DB        *sql.DB // sqlite
	BadgerDir string  // badger; empty means in-memory
	Redis     RedisConfig
}

// OpenStore creates a Store based on the backend configuration.
func OpenStore(ctx context.Context, cfg StoreConfig) (Store, error) {
	if cfg.Backend == "" {
		cfg.Backend = BackendSQLite
	}

	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		if cfg.DB == nil {
			return nil, fmt.Errorf("session store: sqlite backend needs a database")
		}
		return NewSQLiteStore(ctx, cfg.DB)
	case BackendRedis:
		return NewRedisStore(ctx, cfg.Redis)
	case BackendBadger:
		return OpenBadgerStore(cfg.BadgerDir)
	default:
		return nil, fmt.Errorf("unknown session store backend: %s", cfg.Backend)
	}
}
