package repositories

import (
	"context"

	"github.com/whalewatch/whale-watch/internal/domain/entities"
)

// SnapshotRepository defines the interface for holder snapshot operations.
// The diff engine is the only writer.
type SnapshotRepository interface {
	// Get retrieves the live snapshot for one (coin type, address) pair,
	// or nil when the holder has never been seen
	Get(ctx context.Context, coinType, address string) (*entities.HolderSnapshot, error)

	// Upsert creates or overwrites the snapshot for its (coin type, address) key
	Upsert(ctx context.Context, snapshot *entities.HolderSnapshot) error

	// ListByAddress retrieves all snapshots held by one wallet across tokens
	ListByAddress(ctx context.Context, address string) ([]entities.HolderSnapshot, error)
}
