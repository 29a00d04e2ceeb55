package repositories

import (
	"context"

	"github.com/whalewatch/whale-watch/internal/domain/entities"
)

// WalletStatsRepository defines the interface for per-wallet aggregates
type WalletStatsRepository interface {
	// Get retrieves stats for a wallet, or nil when none exist yet
	Get(ctx context.Context, address string) (*entities.WalletStats, error)

	// Upsert creates or updates stats keyed by address
	Upsert(ctx context.Context, stats *entities.WalletStats) error
}
