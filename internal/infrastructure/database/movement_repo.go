package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/whalewatch/whale-watch/internal/domain/entities"
	"github.com/whalewatch/whale-watch/internal/domain/repositories"
)

// Ensure MovementRepo implements MovementRepository
var _ repositories.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implements MovementRepository using PostgreSQL
type MovementRepo struct {
	db *sqlx.DB
}

// NewMovementRepo creates a new movement repository
func NewMovementRepo(db *sqlx.DB) *MovementRepo {
	return &MovementRepo{db: db}
}

// Append stores a new movement
func (r *MovementRepo) Append(ctx context.Context, movement *entities.Movement) error {
	query := `
		INSERT INTO whale_movements (coin_type, address, direction, amount, usd_value, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	row := ext(ctx, r.db).QueryRowxContext(ctx, query,
		movement.CoinType,
		movement.Address,
		movement.Direction,
		movement.Amount,
		movement.USDValue,
		movement.Timestamp,
	)
	if err := row.Scan(&movement.ID); err != nil {
		return fmt.Errorf("failed to append movement: %w", err)
	}

	return nil
}

// ListRecent retrieves the most recent movements for a wallet, newest first
func (r *MovementRepo) ListRecent(ctx context.Context, address string, limit int) ([]entities.Movement, error) {
	var movements []entities.Movement
	query := `
		SELECT * FROM whale_movements
		WHERE address = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	if err := sqlx.SelectContext(ctx, ext(ctx, r.db), &movements, query, address, limit); err != nil {
		return nil, fmt.Errorf("failed to list recent movements: %w", err)
	}

	return movements, nil
}

// ListAccumulates retrieves all accumulate movements for one holder
func (r *MovementRepo) ListAccumulates(ctx context.Context, coinType, address string) ([]entities.Movement, error) {
	var movements []entities.Movement
	query := `
		SELECT * FROM whale_movements
		WHERE coin_type = $1 AND address = $2 AND direction = $3
		ORDER BY timestamp
	`

	if err := sqlx.SelectContext(ctx, ext(ctx, r.db), &movements, query, coinType, address, entities.DirectionAccumulate); err != nil {
		return nil, fmt.Errorf("failed to list accumulate movements: %w", err)
	}

	return movements, nil
}
