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

// Ensure WalletStatsRepo implements WalletStatsRepository
var _ repositories.WalletStatsRepository = (*WalletStatsRepo)(nil)

// WalletStatsRepo implements WalletStatsRepository using PostgreSQL
type WalletStatsRepo struct {
	db *sqlx.DB
}

// NewWalletStatsRepo creates a new wallet stats repository
func NewWalletStatsRepo(db *sqlx.DB) *WalletStatsRepo {
	return &WalletStatsRepo{db: db}
}

// Get retrieves stats for a wallet, or nil when none exist yet
func (r *WalletStatsRepo) Get(ctx context.Context, address string) (*entities.WalletStats, error) {
	var stats entities.WalletStats
	query := `SELECT * FROM wallet_stats WHERE address = $1`

	if err := sqlx.GetContext(ctx, ext(ctx, r.db), &stats, query, address); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get wallet stats: %w", err)
	}

	return &stats, nil
}

// Upsert creates or updates stats keyed by address
func (r *WalletStatsRepo) Upsert(ctx context.Context, stats *entities.WalletStats) error {
	query := `
		INSERT INTO wallet_stats (address, total_volume_usd, total_trades, total_pnl_usd, winning_trades)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (address) DO UPDATE SET
			total_volume_usd = EXCLUDED.total_volume_usd,
			total_trades = EXCLUDED.total_trades,
			total_pnl_usd = EXCLUDED.total_pnl_usd,
			winning_trades = EXCLUDED.winning_trades,
			updated_at = NOW()
	`

	_, err := ext(ctx, r.db).ExecContext(ctx, query,
		stats.Address,
		stats.TotalVolumeUSD,
		stats.TotalTrades,
		stats.TotalPnLUSD,
		stats.WinningTrades,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert wallet stats: %w", err)
	}

	return nil
}
