package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/whalewatch/whale-watch/internal/domain/entities"
	"github.com/whalewatch/whale-watch/internal/domain/repositories"
	"github.com/whalewatch/whale-watch/internal/infrastructure/cache"
)

const recentMovementsLimit = 10

// WalletService builds the wallet analysis read model served by the API
type WalletService struct {
	statsService *StatsService
	snapshots    repositories.SnapshotRepository
	movements    repositories.MovementRepository
	tokenRepo    repositories.TokenRepository
	activity     ActivitySource
	cache        *cache.RedisCache
	logger       *zap.Logger
}

// NewWalletService creates a new wallet service.
// activity and cache may be nil; the analysis then omits activity data
// and skips caching.
func NewWalletService(
	statsService *StatsService,
	snapshots repositories.SnapshotRepository,
	movements repositories.MovementRepository,
	tokenRepo repositories.TokenRepository,
	activity ActivitySource,
	redisCache *cache.RedisCache,
	logger *zap.Logger,
) *WalletService {
	return &WalletService{
		statsService: statsService,
		snapshots:    snapshots,
		movements:    movements,
		tokenRepo:    tokenRepo,
		activity:     activity,
		cache:        redisCache,
		logger:       logger,
	}
}

// Holding is one tracked position in the wallet analysis
type Holding struct {
	TokenSymbol string  `json:"token_symbol"`
	CoinType    string  `json:"coin_type"`
	USDValue    float64 `json:"usd_value"`
	Percentage  float64 `json:"percentage"`
}

// WalletAnalysis is the aggregated view of a wallet's profile
type WalletAnalysis struct {
	Address          string                        `json:"address"`
	TotalVolumeUSD   float64                       `json:"total_volume_usd"`
	TotalTrades      int64                         `json:"total_trades"`
	TotalPnLUSD      float64                       `json:"total_pnl_usd"`
	WinRate          float64                       `json:"win_rate"`
	AvgTradeSize     float64                       `json:"avg_trade_size"`
	TotalHoldingsUSD float64                       `json:"total_holdings_usd"`
	Holdings         []Holding                     `json:"current_holdings"`
	RecentMovements  []entities.MovementDescriptor `json:"recent_movements"`
	Activity24h      int                           `json:"activity_24h"`
}

// WalletAnalysisResponse is the API response wrapper
type WalletAnalysisResponse struct {
	Data WalletAnalysis `json:"data"`
}

// Analyze builds the wallet analysis, serving from cache when possible
func (s *WalletService) Analyze(ctx context.Context, address string) (*WalletAnalysisResponse, error) {
	cacheKey := s.cacheKey(address)

	var cached WalletAnalysisResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return &cached, nil
		}
	}

	stats, err := s.statsService.Get(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet stats: %w", err)
	}

	snapshots, err := s.snapshots.ListByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}

	symbols, err := s.tokenSymbols(ctx)
	if err != nil {
		return nil, err
	}

	holdings := make([]Holding, 0, len(snapshots))
	var totalHoldings float64
	for _, snap := range snapshots {
		totalHoldings += snap.USDValue
		holdings = append(holdings, Holding{
			TokenSymbol: symbols[snap.CoinType],
			CoinType:    snap.CoinType,
			USDValue:    snap.USDValue,
			Percentage:  snap.Percentage,
		})
	}

	recent, err := s.RecentMovements(ctx, address, recentMovementsLimit)
	if err != nil {
		return nil, err
	}

	response := &WalletAnalysisResponse{
		Data: WalletAnalysis{
			Address:          address,
			TotalVolumeUSD:   stats.TotalVolumeUSD,
			TotalTrades:      stats.TotalTrades,
			TotalPnLUSD:      stats.TotalPnLUSD,
			WinRate:          stats.WinRate(),
			AvgTradeSize:     stats.AvgTradeSize(),
			TotalHoldingsUSD: totalHoldings,
			Holdings:         holdings,
			RecentMovements:  recent,
			Activity24h:      s.recentActivityCount(ctx, address),
		},
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response); err != nil {
			s.logger.Warn("Failed to cache wallet analysis", zap.Error(err))
		}
	}
	return response, nil
}

// RecentMovements lists the wallet's newest movements as descriptors
func (s *WalletService) RecentMovements(ctx context.Context, address string, limit int) ([]entities.MovementDescriptor, error) {
	movements, err := s.movements.ListRecent(ctx, address, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}

	symbols, err := s.tokenSymbols(ctx)
	if err != nil {
		return nil, err
	}

	descriptors := make([]entities.MovementDescriptor, 0, len(movements))
	for _, m := range movements {
		descriptors = append(descriptors, m.Descriptor(symbols[m.CoinType]))
	}
	return descriptors, nil
}

// RefreshStats triggers the explicit provider-sourced stats overwrite
// and invalidates the cached analysis
func (s *WalletService) RefreshStats(ctx context.Context, address string) (*entities.WalletStats, error) {
	stats, err := s.statsService.Refresh(ctx, address)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, s.cacheKey(address)); err != nil {
			s.logger.Warn("Failed to invalidate cached analysis", zap.Error(err))
		}
	}
	return stats, nil
}

// recentActivityCount counts the wallet's provider-reported activity in
// the last 24 hours; degraded to zero when the source is unavailable
func (s *WalletService) recentActivityCount(ctx context.Context, address string) int {
	if s.activity == nil {
		return 0
	}
	entries, err := s.activity.WalletActivity(ctx, address, 24*time.Hour)
	if err != nil {
		s.logger.Debug("Wallet activity unavailable",
			zap.String("address", address),
			zap.Error(err),
		)
		return 0
	}
	return len(entries)
}

func (s *WalletService) tokenSymbols(ctx context.Context) (map[string]string, error) {
	tokens, err := s.tokenRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokens: %w", err)
	}
	symbols := make(map[string]string, len(tokens))
	for _, t := range tokens {
		symbols[t.CoinType] = t.Symbol
	}
	return symbols, nil
}

func (s *WalletService) cacheKey(address string) string {
	return fmt.Sprintf("wallet:analysis:%s", address)
}
