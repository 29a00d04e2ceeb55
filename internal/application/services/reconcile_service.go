package services

import (
	"context"
	"math"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/whalewatch/whale-watch/internal/domain/entities"
	"github.com/whalewatch/whale-watch/internal/domain/repositories"
	"github.com/whalewatch/whale-watch/internal/infrastructure/providers"
)

// StatsRecorder applies one movement to the owning wallet's aggregates.
// Implemented by StatsService; the indirection keeps the diff engine
// testable without the full aggregator.
type StatsRecorder interface {
	Record(ctx context.Context, movement *entities.Movement) (*entities.WalletStats, error)
}

// ReconcileService diffs fetched holder rows against stored snapshots and
// turns balance changes into movements. It is the only writer of snapshots.
type ReconcileService struct {
	snapshots repositories.SnapshotRepository
	movements repositories.MovementRepository
	stats     StatsRecorder
	tx        repositories.TxRunner
	clock     clock.Clock
	minWhale  float64
	logger    *zap.Logger
}

// NewReconcileService creates a new reconcile service
func NewReconcileService(
	snapshots repositories.SnapshotRepository,
	movements repositories.MovementRepository,
	stats StatsRecorder,
	tx repositories.TxRunner,
	minWhaleHoldings float64,
	clk clock.Clock,
	logger *zap.Logger,
) *ReconcileService {
	if clk == nil {
		clk = clock.New()
	}
	return &ReconcileService{
		snapshots: snapshots,
		movements: movements,
		stats:     stats,
		tx:        tx,
		clock:     clk,
		minWhale:  minWhaleHoldings,
		logger:    logger,
	}
}

// Reconcile processes fetched holder rows for one token and returns the
// movements detected. Rows under the whale threshold are ignored entirely.
// Each row's snapshot write, movement append and stats update commit in a
// single transaction; a failed row is rolled back and skipped.
func (s *ReconcileService) Reconcile(ctx context.Context, token entities.Token, rows []providers.HolderRow) ([]entities.Movement, error) {
	var detected []entities.Movement

	for _, row := range rows {
		if row.USDValue < s.minWhale {
			continue
		}
		if err := ctx.Err(); err != nil {
			return detected, err
		}

		movement, err := s.reconcileHolder(ctx, token, row)
		if err != nil {
			if ctx.Err() != nil {
				return detected, ctx.Err()
			}
			s.logger.Error("Failed to reconcile holder, skipping",
				zap.String("coin_type", token.CoinType),
				zap.String("address", row.Address),
				zap.Error(err),
			)
			continue
		}
		if movement != nil {
			detected = append(detected, *movement)
		}
	}

	return detected, nil
}

// reconcileHolder handles one holder row inside its own transaction
func (s *ReconcileService) reconcileHolder(ctx context.Context, token entities.Token, row providers.HolderRow) (*entities.Movement, error) {
	var emitted *entities.Movement

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		stored, err := s.snapshots.Get(ctx, token.CoinType, row.Address)
		if err != nil {
			return err
		}

		if stored == nil {
			// First sighting establishes the baseline; no movement
			return s.snapshots.Upsert(ctx, &entities.HolderSnapshot{
				CoinType:   token.CoinType,
				Address:    row.Address,
				Balance:    row.Balance,
				USDValue:   row.USDValue,
				Percentage: row.Percentage,
			})
		}

		// Strict inequality: a zero delta is never a movement. Upstream
		// rounding noise can slip through; an epsilon would instead
		// swallow genuine dust trades, so noise is the lesser evil here.
		if row.Balance == stored.Balance {
			return nil
		}

		direction := entities.DirectionDistribute
		if row.Balance > stored.Balance {
			direction = entities.DirectionAccumulate
		}

		movement := &entities.Movement{
			CoinType:  token.CoinType,
			Address:   row.Address,
			Direction: direction,
			Amount:    math.Abs(row.Balance - stored.Balance),
			USDValue:  math.Abs(row.USDValue - stored.USDValue),
			Timestamp: s.clock.Now().UTC(),
		}
		if err := s.movements.Append(ctx, movement); err != nil {
			return err
		}
		if _, err := s.stats.Record(ctx, movement); err != nil {
			return err
		}

		stored.Balance = row.Balance
		stored.USDValue = row.USDValue
		stored.Percentage = row.Percentage
		if err := s.snapshots.Upsert(ctx, stored); err != nil {
			return err
		}

		emitted = movement

		s.logger.Debug("Movement detected",
			zap.String("coin_type", token.CoinType),
			zap.String("address", row.Address),
			zap.String("direction", string(direction)),
			zap.Float64("amount", movement.Amount),
			zap.Float64("usd_value", movement.USDValue),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return emitted, nil
}
