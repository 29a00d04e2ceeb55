package services

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/whalewatch/whale-watch/internal/domain/entities"
	"github.com/whalewatch/whale-watch/internal/domain/repositories"
)

// Ensure StatsService satisfies the diff engine's recorder contract
var _ StatsRecorder = (*StatsService)(nil)

// StatsService maintains per-wallet trading aggregates. The incremental
// path (Record) is authoritative and driven by detected movements;
// Refresh is an explicit wholesale overwrite from the trader-statistics
// provider and is never invoked by the monitoring loop.
type StatsService struct {
	statsRepo    repositories.WalletStatsRepository
	movementRepo repositories.MovementRepository
	traderStats  TraderStatsSource
	logger       *zap.Logger
}

// NewStatsService creates a new wallet statistics service.
// traderStats may be nil; Refresh then degrades to a no-op.
func NewStatsService(
	statsRepo repositories.WalletStatsRepository,
	movementRepo repositories.MovementRepository,
	traderStats TraderStatsSource,
	logger *zap.Logger,
) *StatsService {
	return &StatsService{
		statsRepo:    statsRepo,
		movementRepo: movementRepo,
		traderStats:  traderStats,
		logger:       logger,
	}
}

// Record applies one movement to the wallet's aggregates: volume and
// trade count always; for distributions, realized PnL against the
// volume-weighted average price of all prior accumulations of the same
// holder, counting a win when that PnL is positive.
func (s *StatsService) Record(ctx context.Context, movement *entities.Movement) (*entities.WalletStats, error) {
	stats, err := s.statsRepo.Get(ctx, movement.Address)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = &entities.WalletStats{Address: movement.Address}
	}

	stats.TotalVolumeUSD += movement.USDValue
	stats.TotalTrades++

	if movement.Direction == entities.DirectionDistribute {
		pnl, ok, err := s.realizedPnL(ctx, movement)
		if err != nil {
			return nil, err
		}
		if ok {
			stats.TotalPnLUSD += pnl
			if pnl > 0 {
				stats.WinningTrades++
			}
		}
	}

	if err := s.statsRepo.Upsert(ctx, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// realizedPnL estimates the profit of a distribution against the VWAP
// cost basis of the holder's prior accumulations. With no prior
// accumulations on record there is no basis and no PnL contribution.
func (s *StatsService) realizedPnL(ctx context.Context, movement *entities.Movement) (float64, bool, error) {
	accumulates, err := s.movementRepo.ListAccumulates(ctx, movement.CoinType, movement.Address)
	if err != nil {
		return 0, false, err
	}

	var totalUSD, totalAmount float64
	for _, a := range accumulates {
		totalUSD += a.USDValue
		totalAmount += a.Amount
	}
	if totalAmount <= 0 {
		return 0, false, nil
	}

	avgBuyPrice := totalUSD / totalAmount
	pnl := (movement.UnitPrice() - avgBuyPrice) * movement.Amount
	return pnl, true, nil
}

// Get returns the wallet's stats, or a zero-valued view when none exist.
// Reading never creates a record.
func (s *StatsService) Get(ctx context.Context, address string) (*entities.WalletStats, error) {
	stats, err := s.statsRepo.Get(ctx, address)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return &entities.WalletStats{Address: address}, nil
	}
	return stats, nil
}

// Refresh overwrites the wallet's aggregates wholesale from the
// trader-statistics provider. When the provider is unconfigured,
// unavailable or returns nothing usable, the stored stats are returned
// unchanged; existing values are never reset.
func (s *StatsService) Refresh(ctx context.Context, address string) (*entities.WalletStats, error) {
	stored, err := s.Get(ctx, address)
	if err != nil {
		return nil, err
	}

	if s.traderStats == nil {
		return stored, nil
	}

	remote, err := s.traderStats.TraderStats(ctx, address)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("Trader stats provider unavailable, keeping stored stats",
			zap.String("address", address),
			zap.Error(err),
		)
		return stored, nil
	}

	stored.TotalVolumeUSD = remote.VolumeUSD
	stored.TotalTrades = remote.TotalTrades
	stored.TotalPnLUSD = remote.PnLUSD
	stored.WinningTrades = int64(math.Round(remote.WinRate / 100 * float64(remote.TotalTrades)))

	if err := s.statsRepo.Upsert(ctx, stored); err != nil {
		return nil, err
	}
	return stored, nil
}
