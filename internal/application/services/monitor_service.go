package services

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/whalewatch/whale-watch/internal/config"
	"github.com/whalewatch/whale-watch/internal/domain/entities"
	"github.com/whalewatch/whale-watch/internal/domain/repositories"
	"github.com/whalewatch/whale-watch/internal/scheduler"
)

var (
	cyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whalewatch_monitor_cycles_total",
		Help: "Total number of completed monitoring cycles",
	})
	movementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whalewatch_movements_total",
		Help: "Total number of detected whale movements",
	}, []string{"direction"})
	alertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whalewatch_alerts_total",
		Help: "Total number of fired whale alerts",
	}, []string{"priority"})
	itemErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whalewatch_item_errors_total",
		Help: "Total number of per-item failures skipped during cycles",
	})
)

// MonitorService drives the whale monitoring loop: watchlist refresh,
// per-token holder reconciliation, then alert evaluation for each
// detected movement. One cycle runs at a time; stages are paced by the
// update-interval gate and provider calls by the clients themselves.
type MonitorService struct {
	watchlist  *WatchlistService
	holders    HolderSource
	reconciler *ReconcileService
	stats      *StatsService
	policy     *AlertPolicy
	notifier   Notifier
	tokenRepo  repositories.TokenRepository
	gate       *scheduler.Gate
	cfg        config.MonitorConfig
	clock      clock.Clock
	logger     *zap.Logger
	metrics    *MonitorMetrics
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

// MonitorMetrics tracks monitor progress for introspection
type MonitorMetrics struct {
	mu                sync.RWMutex
	CyclesRun         int64
	MovementsDetected int64
	AlertsFired       int64
	ItemErrors        int64
	LastCycleTime     time.Time
	CycleLatencyMs    int64
}

// NewMonitorService creates a new monitor service
func NewMonitorService(
	watchlist *WatchlistService,
	holders HolderSource,
	reconciler *ReconcileService,
	stats *StatsService,
	policy *AlertPolicy,
	notifier Notifier,
	tokenRepo repositories.TokenRepository,
	gate *scheduler.Gate,
	cfg config.MonitorConfig,
	clk clock.Clock,
	logger *zap.Logger,
) *MonitorService {
	if clk == nil {
		clk = clock.New()
	}
	return &MonitorService{
		watchlist:  watchlist,
		holders:    holders,
		reconciler: reconciler,
		stats:      stats,
		policy:     policy,
		notifier:   notifier,
		tokenRepo:  tokenRepo,
		gate:       gate,
		cfg:        cfg,
		clock:      clk,
		logger:     logger,
		metrics:    &MonitorMetrics{},
		stopCh:     make(chan struct{}),
	}
}

// Start begins the monitoring loop
func (s *MonitorService) Start(ctx context.Context) {
	s.logger.Info("Starting whale monitor",
		zap.Float64("min_market_cap", s.cfg.MinMarketCap),
		zap.Float64("min_whale_holdings", s.cfg.MinWhaleHoldings),
		zap.Duration("update_interval", s.cfg.UpdateInterval),
		zap.Strings("manual_tokens", s.cfg.ManualTokens),
	)

	s.wg.Add(1)
	go s.runLoop(ctx)
}

// Stop gracefully stops the monitor
func (s *MonitorService) Stop() {
	s.logger.Info("Stopping whale monitor")
	close(s.stopCh)
	s.wg.Wait()
}

// GetMetrics returns a copy of the current monitor metrics
func (s *MonitorService) GetMetrics() MonitorMetrics {
	s.metrics.mu.RLock()
	defer s.metrics.mu.RUnlock()
	return MonitorMetrics{
		CyclesRun:         s.metrics.CyclesRun,
		MovementsDetected: s.metrics.MovementsDetected,
		AlertsFired:       s.metrics.AlertsFired,
		ItemErrors:        s.metrics.ItemErrors,
		LastCycleTime:     s.metrics.LastCycleTime,
		CycleLatencyMs:    s.metrics.CycleLatencyMs,
	}
}

func (s *MonitorService) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := s.clock.Ticker(s.cfg.PollInterval)
	defer ticker.Stop()

	// Run immediately on start
	s.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

// RunCycle executes one monitoring cycle. Per-item failures are logged
// and skipped; the cycle itself only stops on cancellation.
func (s *MonitorService) RunCycle(ctx context.Context) {
	start := s.clock.Now()

	tokens := s.refreshWatchlist(ctx)

	if s.gate.Due(scheduler.StageHolders) {
		if len(tokens) == 0 {
			stored, err := s.tokenRepo.GetAll(ctx)
			if err != nil {
				s.logger.Error("Failed to load watched tokens", zap.Error(err))
				s.recordItemError()
				return
			}
			tokens = stored
		}
		s.refreshHolders(ctx, tokens)
	}

	s.metrics.mu.Lock()
	s.metrics.CyclesRun++
	s.metrics.LastCycleTime = s.clock.Now()
	s.metrics.CycleLatencyMs = s.clock.Now().Sub(start).Milliseconds()
	s.metrics.mu.Unlock()
	cyclesTotal.Inc()
}

// refreshWatchlist runs the token stage when due. An empty return means
// the stage was skipped or produced nothing; the caller falls back to
// the stored watchlist.
func (s *MonitorService) refreshWatchlist(ctx context.Context) []entities.Token {
	if !s.gate.Due(scheduler.StageTokens) {
		return nil
	}
	tokens, err := s.watchlist.Select(ctx)
	if err != nil {
		// A failed pass must not consume the stage interval
		s.gate.Reset(scheduler.StageTokens)
		s.logger.Error("Watchlist selection failed", zap.Error(err))
		s.recordItemError()
		return nil
	}
	return tokens
}

func (s *MonitorService) refreshHolders(ctx context.Context, tokens []entities.Token) {
	for _, token := range tokens {
		if ctx.Err() != nil {
			return
		}

		rows, err := s.holders.TokenHolders(ctx, token.CoinType, 0, s.cfg.HolderPageSize)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("Holder fetch failed, skipping token",
				zap.String("coin_type", token.CoinType),
				zap.Error(err),
			)
			s.recordItemError()
			continue
		}

		movements, err := s.reconciler.Reconcile(ctx, token, rows)
		if err != nil {
			// Reconcile only errors on cancellation; row failures are skipped inside
			return
		}

		s.evaluateMovements(ctx, token, movements)
	}
}

func (s *MonitorService) evaluateMovements(ctx context.Context, token entities.Token, movements []entities.Movement) {
	for _, movement := range movements {
		s.metrics.mu.Lock()
		s.metrics.MovementsDetected++
		s.metrics.mu.Unlock()
		movementsTotal.WithLabelValues(string(movement.Direction)).Inc()

		stats, err := s.stats.Get(ctx, movement.Address)
		if err != nil {
			s.logger.Error("Failed to load wallet stats",
				zap.String("address", movement.Address),
				zap.Error(err),
			)
			s.recordItemError()
			continue
		}

		decision, holdings, err := s.policy.Evaluate(ctx, token, movement.Address)
		if err != nil {
			s.logger.Error("Alert evaluation failed",
				zap.String("address", movement.Address),
				zap.Error(err),
			)
			s.recordItemError()
			continue
		}
		if !decision.Fire {
			continue
		}

		alert := Alert{
			Token:            token,
			Address:          movement.Address,
			Movement:         movement.Descriptor(token.Symbol),
			Stats:            *stats,
			TotalHoldingsUSD: holdings,
			Priority:         decision.Priority,
		}
		if err := s.notifier.Notify(ctx, alert); err != nil {
			s.logger.Error("Alert delivery failed",
				zap.String("address", movement.Address),
				zap.Error(err),
			)
			s.recordItemError()
			continue
		}

		s.metrics.mu.Lock()
		s.metrics.AlertsFired++
		s.metrics.mu.Unlock()
		alertsTotal.WithLabelValues(string(decision.Priority)).Inc()
	}
}

func (s *MonitorService) recordItemError() {
	s.metrics.mu.Lock()
	s.metrics.ItemErrors++
	s.metrics.mu.Unlock()
	itemErrorsTotal.Inc()
}
