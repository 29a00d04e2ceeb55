package repositories

import (
	"context"

	"github.com/whalewatch/whale-watch/internal/domain/entities"
)

// MovementRepository defines the interface for movement records.
// Movements are append-only; there is no update or delete.
type MovementRepository interface {
	// Append stores a new movement
	Append(ctx context.Context, movement *entities.Movement) error

	// ListRecent retrieves the most recent movements for a wallet,
	// newest first
	ListRecent(ctx context.Context, address string, limit int) ([]entities.Movement, error)

	// ListAccumulates retrieves all accumulate movements for one
	// (coin type, address) holder, used for the VWAP cost basis
	ListAccumulates(ctx context.Context, coinType, address string) ([]entities.Movement, error)
}
