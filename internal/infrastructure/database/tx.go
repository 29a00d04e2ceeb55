package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/whalewatch/whale-watch/internal/domain/repositories"
)

// Ensure TxManager implements TxRunner
var _ repositories.TxRunner = (*TxManager)(nil)

type txKey struct{}

// ext returns the transaction bound to ctx when present, else the base DB.
// Repositories route every query through this so calls made inside
// TxManager.WithinTx join the surrounding transaction transparently.
func ext(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}

// TxManager implements repositories.TxRunner on PostgreSQL
type TxManager struct {
	db *sqlx.DB
}

// NewTxManager creates a new transaction manager
func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx runs fn inside a transaction, committing on nil and rolling
// back on error. Nested calls join the already-open transaction.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (after: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
