package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/whalewatch/whale-watch/internal/domain/entities"
	"github.com/whalewatch/whale-watch/internal/domain/repositories"
)

// Ensure SnapshotRepo implements SnapshotRepository
var _ repositories.SnapshotRepository = (*SnapshotRepo)(nil)

// SnapshotRepo implements SnapshotRepository using PostgreSQL
type SnapshotRepo struct {
	db *sqlx.DB
}

// NewSnapshotRepo creates a new holder snapshot repository
func NewSnapshotRepo(db *sqlx.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Get retrieves the live snapshot for one (coin type, address) pair
func (r *SnapshotRepo) Get(ctx context.Context, coinType, address string) (*entities.HolderSnapshot, error) {
	var snapshot entities.HolderSnapshot
	query := `SELECT * FROM holder_snapshots WHERE coin_type = $1 AND address = $2`

	if err := sqlx.GetContext(ctx, ext(ctx, r.db), &snapshot, query, coinType, address); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return &snapshot, nil
}

// Upsert creates or overwrites the snapshot for its (coin type, address) key
func (r *SnapshotRepo) Upsert(ctx context.Context, snapshot *entities.HolderSnapshot) error {
	query := `
		INSERT INTO holder_snapshots (coin_type, address, balance, usd_value, percentage)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (coin_type, address) DO UPDATE SET
			balance = EXCLUDED.balance,
			usd_value = EXCLUDED.usd_value,
			percentage = EXCLUDED.percentage,
			updated_at = NOW()
	`

	_, err := ext(ctx, r.db).ExecContext(ctx, query,
		snapshot.CoinType,
		snapshot.Address,
		snapshot.Balance,
		snapshot.USDValue,
		snapshot.Percentage,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	return nil
}

// ListByAddress retrieves all snapshots held by one wallet across tokens
func (r *SnapshotRepo) ListByAddress(ctx context.Context, address string) ([]entities.HolderSnapshot, error) {
	var snapshots []entities.HolderSnapshot
	query := `SELECT * FROM holder_snapshots WHERE address = $1 ORDER BY usd_value DESC`

	if err := sqlx.SelectContext(ctx, ext(ctx, r.db), &snapshots, query, address); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	return snapshots, nil
}
