package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/whalewatch/whale-watch/internal/config"
	"github.com/whalewatch/whale-watch/internal/domain/entities"
	"github.com/whalewatch/whale-watch/internal/infrastructure/providers"
	"github.com/whalewatch/whale-watch/internal/scheduler"
	"github.com/whalewatch/whale-watch/internal/testutil"
)

// recordingNotifier captures delivered alerts for assertions
type recordingNotifier struct {
	mu     sync.Mutex
	alerts []Alert
}

func (n *recordingNotifier) Notify(_ context.Context, alert Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return nil
}

func (n *recordingNotifier) Alerts() []Alert {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Alert(nil), n.alerts...)
}

type monitorFixture struct {
	service   *MonitorService
	discovery *testutil.MockTokenDiscovery
	holders   *testutil.MockHolderSource
	tokenRepo *testutil.MockTokenRepository
	snapshots *testutil.MockSnapshotRepository
	notifier  *recordingNotifier
	clock     *clock.Mock
	cfg       config.MonitorConfig
}

func newMonitorFixture() *monitorFixture {
	logger := zap.NewNop()
	mockClock := clock.NewMock()
	mockClock.Set(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	cfg := config.MonitorConfig{
		MinMarketCap:          1000000,
		MinWhaleHoldings:      20000,
		UpdateInterval:        5 * time.Minute,
		PollInterval:          30 * time.Second,
		MemeKeywords:          []string{"lofi", "pepe"},
		MemeMarketCapCeiling:  10000000,
		UtilityAlertThreshold: 100000,
		HolderPageSize:        20,
	}

	discovery := testutil.NewMockTokenDiscovery()
	holders := testutil.NewMockHolderSource()
	tokenRepo := testutil.NewMockTokenRepository()
	snapshots := testutil.NewMockSnapshotRepository()
	movements := testutil.NewMockMovementRepository()
	statsRepo := testutil.NewMockWalletStatsRepository()
	notifier := &recordingNotifier{}

	watchlist := NewWatchlistService(discovery, tokenRepo, cfg, logger)
	statsService := NewStatsService(statsRepo, movements, nil, logger)
	reconciler := NewReconcileService(snapshots, movements, statsService, testutil.NewMockTxRunner(),
		cfg.MinWhaleHoldings, mockClock, logger)
	policy := NewAlertPolicy(snapshots, cfg.UtilityAlertThreshold, logger)
	gate := scheduler.NewGate(cfg.UpdateInterval, mockClock)

	service := NewMonitorService(watchlist, holders, reconciler, statsService, policy,
		notifier, tokenRepo, gate, cfg, mockClock, logger)

	return &monitorFixture{
		service:   service,
		discovery: discovery,
		holders:   holders,
		tokenRepo: tokenRepo,
		snapshots: snapshots,
		notifier:  notifier,
		clock:     mockClock,
		cfg:       cfg,
	}
}

func trendingLofi(ctx context.Context, minMarketCap float64) ([]providers.TrendingToken, error) {
	return []providers.TrendingToken{
		{CoinType: testutil.LofiCoinType, Symbol: "LOFI", Name: "Lofi the Cat", MarketCap: 5000000, PriceUSD: 50},
	}, nil
}

func TestRunCycleEstablishesBaselinesWithoutAlerts(t *testing.T) {
	f := newMonitorFixture()
	f.discovery.TrendingTokensFunc = trendingLofi
	f.holders.TokenHoldersFunc = func(ctx context.Context, coinType string, page, size int) ([]providers.HolderRow, error) {
		return []providers.HolderRow{testutil.CreateTestHolderRow(testutil.HolderRowBalance(1000, 50000))}, nil
	}

	f.service.RunCycle(context.Background())

	if len(f.notifier.Alerts()) != 0 {
		t.Errorf("Expected no alerts on baseline cycle, got %d", len(f.notifier.Alerts()))
	}

	metrics := f.service.GetMetrics()
	if metrics.CyclesRun != 1 {
		t.Errorf("Expected 1 cycle, got %d", metrics.CyclesRun)
	}
	if metrics.MovementsDetected != 0 {
		t.Errorf("Expected no movements on baseline cycle, got %d", metrics.MovementsDetected)
	}

	snapshot, _ := f.snapshots.Get(context.Background(), testutil.LofiCoinType, testutil.WhaleAddress)
	if snapshot == nil {
		t.Fatal("Expected baseline snapshot after first cycle")
	}
}

func TestRunCycleDetectsMovementAndFiresMemeAlert(t *testing.T) {
	f := newMonitorFixture()
	f.discovery.TrendingTokensFunc = trendingLofi

	balance := 1000.0
	f.holders.TokenHoldersFunc = func(ctx context.Context, coinType string, page, size int) ([]providers.HolderRow, error) {
		return []providers.HolderRow{testutil.CreateTestHolderRow(testutil.HolderRowBalance(balance, balance*50))}, nil
	}

	f.service.RunCycle(context.Background())

	// Next poll after the stage interval sees an increased balance
	balance = 1500
	f.clock.Add(f.cfg.UpdateInterval)
	f.service.RunCycle(context.Background())

	alerts := f.notifier.Alerts()
	if len(alerts) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(alerts))
	}

	alert := alerts[0]
	if alert.Priority != PriorityHigh {
		t.Errorf("Expected high priority for meme token, got %s", alert.Priority)
	}
	if alert.Movement.Direction != entities.DirectionAccumulate {
		t.Errorf("Expected accumulate, got %s", alert.Movement.Direction)
	}
	if alert.Movement.Amount != 500 {
		t.Errorf("Expected amount 500, got %f", alert.Movement.Amount)
	}
	if alert.Token.Symbol != "LOFI" {
		t.Errorf("Expected LOFI token, got %s", alert.Token.Symbol)
	}

	metrics := f.service.GetMetrics()
	if metrics.MovementsDetected != 1 {
		t.Errorf("Expected 1 movement, got %d", metrics.MovementsDetected)
	}
	if metrics.AlertsFired != 1 {
		t.Errorf("Expected 1 alert fired, got %d", metrics.AlertsFired)
	}
}

func TestRunCycleGateSkipsProvidersWithinInterval(t *testing.T) {
	f := newMonitorFixture()
	f.discovery.TrendingTokensFunc = trendingLofi

	f.service.RunCycle(context.Background())
	holderCalls := len(f.holders.Calls)
	discoveryCalls := len(f.discovery.Calls)

	// A poll within the update interval must not touch the providers
	f.clock.Add(30 * time.Second)
	f.service.RunCycle(context.Background())

	if len(f.holders.Calls) != holderCalls {
		t.Errorf("Expected no holder calls within interval, got %d new", len(f.holders.Calls)-holderCalls)
	}
	if len(f.discovery.Calls) != discoveryCalls {
		t.Errorf("Expected no discovery calls within interval, got %d new", len(f.discovery.Calls)-discoveryCalls)
	}

	metrics := f.service.GetMetrics()
	if metrics.CyclesRun != 2 {
		t.Errorf("Expected both cycles counted, got %d", metrics.CyclesRun)
	}
}

func TestRunCycleFallsBackToStoredTokensWhenWatchlistSkipped(t *testing.T) {
	f := newMonitorFixture()
	f.discovery.TrendingTokensFunc = func(ctx context.Context, minMarketCap float64) ([]providers.TrendingToken, error) {
		return nil, errors.New("upstream down")
	}
	f.tokenRepo.Seed(testutil.CreateTestToken())
	f.holders.TokenHoldersFunc = func(ctx context.Context, coinType string, page, size int) ([]providers.HolderRow, error) {
		return []providers.HolderRow{testutil.CreateTestHolderRow()}, nil
	}

	f.service.RunCycle(context.Background())

	// Holder stage must still run against the stored watchlist
	found := false
	for _, c := range f.holders.Calls {
		if c.Method == "TokenHolders" && c.Args[0] == testutil.LofiCoinType {
			found = true
		}
	}
	if !found {
		t.Error("Expected holder fetch for stored token despite watchlist failure")
	}
}

func TestRunCycleRetriesWatchlistAfterFailedSelection(t *testing.T) {
	f := newMonitorFixture()
	f.discovery.TrendingTokensFunc = func(ctx context.Context, minMarketCap float64) ([]providers.TrendingToken, error) {
		return nil, errors.New("upstream down")
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	f.service.RunCycle(cancelled)

	trendingCalls := func() int {
		n := 0
		for _, c := range f.discovery.Calls {
			if c.Method == "TrendingTokens" {
				n++
			}
		}
		return n
	}
	if trendingCalls() != 1 {
		t.Fatalf("Expected 1 discovery call on the failed cycle, got %d", trendingCalls())
	}

	// A failed selection must not hold the token stage for a full
	// update interval; the next poll retries it
	f.discovery.TrendingTokensFunc = trendingLofi
	f.clock.Add(f.cfg.PollInterval)
	f.service.RunCycle(context.Background())

	if trendingCalls() != 2 {
		t.Errorf("Expected discovery retry on the next poll, got %d calls", trendingCalls())
	}
}

func TestRunCycleSkipsTokenOnHolderFetchFailure(t *testing.T) {
	f := newMonitorFixture()
	f.discovery.TrendingTokensFunc = trendingLofi
	f.holders.TokenHoldersFunc = func(ctx context.Context, coinType string, page, size int) ([]providers.HolderRow, error) {
		return nil, providers.NewError(providers.KindRateLimited, "blockberry", "TokenHolders", 429, nil)
	}

	f.service.RunCycle(context.Background())

	metrics := f.service.GetMetrics()
	if metrics.CyclesRun != 1 {
		t.Errorf("Expected cycle to complete despite holder failure, got %d", metrics.CyclesRun)
	}
	if metrics.ItemErrors != 1 {
		t.Errorf("Expected 1 item error, got %d", metrics.ItemErrors)
	}
}

func TestStartStopLifecycle(t *testing.T) {
	f := newMonitorFixture()
	f.discovery.TrendingTokensFunc = trendingLofi

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.service.Start(ctx)
	f.service.Stop()

	// The immediate first cycle must have run
	metrics := f.service.GetMetrics()
	if metrics.CyclesRun < 1 {
		t.Errorf("Expected at least 1 cycle after start, got %d", metrics.CyclesRun)
	}
}
