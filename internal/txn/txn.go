// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package txn scopes units of work in transactions bound to a context.
// A Run nested inside another Run joins the outer transaction instead of
// opening a second one.
package txn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bonitasoft/bonita-engine-sub001/internal/log"
	"github.com/bonitasoft/bonita-engine-sub001/internal/metrics"
)

// Manager runs fn inside a transaction. fn's error is returned unchanged
// after rollback; a panic in fn rolls back and re-panics.
type Manager interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

type ctxKey struct{}

type state struct {
	tx *sql.Tx
}

// Active reports whether ctx carries a transaction.
func Active(ctx context.Context) bool {
	_, ok := ctx.Value(ctxKey{}).(*state)
	return ok
}

// From returns the SQL transaction bound to ctx, if any. Transactions opened
// by a NopManager are active but carry no *sql.Tx.
func From(ctx context.Context) (*sql.Tx, bool) {
	st, ok := ctx.Value(ctxKey{}).(*state)
	if !ok || st.tx == nil {
		return nil, false
	}
	return st.tx, true
}

func bind(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, ctxKey{}, &state{tx: tx})
}

// Do runs fn through m and returns its value.
func Do[T any](ctx context.Context, m Manager, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := m.Run(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// QuerierFor returns the transaction bound to ctx, or db when none is.
func QuerierFor(ctx context.Context, db *sql.DB) Querier {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return db
}

// SQLManager opens *sql.Tx transactions on a database.
type SQLManager struct {
	db   *sql.DB
	opts *sql.TxOptions
}

// NewSQLManager creates a manager for db. opts may be nil.
func NewSQLManager(db *sql.DB, opts *sql.TxOptions) *SQLManager {
	return &SQLManager{db: db, opts: opts}
}

// Run implements Manager.
func (m *SQLManager) Run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if Active(ctx) {
		return fn(ctx)
	}

	start := time.Now()
	tx, err := m.db.BeginTx(ctx, m.opts)
	if err != nil {
		metrics.RecordTx("begin_error", time.Since(start))
		return fmt.Errorf("txn: begin: %w", err)
	}

	done := false
	defer func() {
		if done {
			return
		}
		// fn panicked
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger := log.WithComponentFromContext(ctx, "txn")
			logger.Error().Err(rbErr).Msg("rollback after panic failed")
		}
		metrics.RecordTx("rollback", time.Since(start))
	}()

	fnErr := fn(bind(ctx, tx))
	done = true
	if fnErr != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger := log.WithComponentFromContext(ctx, "txn")
			logger.Warn().Err(rbErr).Msg("rollback failed")
		}
		metrics.RecordTx("rollback", time.Since(start))
		return fnErr
	}
	if err := tx.Commit(); err != nil {
		metrics.RecordTx("rollback", time.Since(start))
		return fmt.Errorf("txn: commit: %w", err)
	}
	metrics.RecordTx("commit", time.Since(start))
	return nil
}

// NopManager marks the context as transactional without a database. It is
// used when every store is in memory.
type NopManager struct{}

// Run implements Manager.
func (NopManager) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if Active(ctx) {
		return fn(ctx)
	}
	return fn(bind(ctx, nil))
}
