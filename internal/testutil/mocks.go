package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/whalewatch/whale-watch/internal/domain/entities"
	"github.com/whalewatch/whale-watch/internal/infrastructure/providers"
)

type MockCall struct {
	Method string
	Args   []interface{}
}

// MockTokenRepository is a mock implementation of TokenRepository
type MockTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]entities.Token

	// Function hooks for custom behavior
	GetByCoinTypeFunc func(ctx context.Context, coinType string) (*entities.Token, error)
	GetAllFunc        func(ctx context.Context) ([]entities.Token, error)
	UpsertFunc        func(ctx context.Context, token *entities.Token) error

	// Call tracking
	Calls []MockCall
}

func NewMockTokenRepository() *MockTokenRepository {
	return &MockTokenRepository{
		tokens: make(map[string]entities.Token),
		Calls:  make([]MockCall, 0),
	}
}

func (m *MockTokenRepository) GetByCoinType(ctx context.Context, coinType string) (*entities.Token, error) {
	m.record("GetByCoinType", coinType)

	if m.GetByCoinTypeFunc != nil {
		return m.GetByCoinTypeFunc(ctx, coinType)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.tokens[coinType]; ok {
		cp := t
		return &cp, nil
	}
	return nil, nil
}

func (m *MockTokenRepository) GetAll(ctx context.Context) ([]entities.Token, error) {
	m.record("GetAll")

	if m.GetAllFunc != nil {
		return m.GetAllFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]entities.Token, 0, len(m.tokens))
	for _, t := range m.tokens {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CoinType < result[j].CoinType })
	return result, nil
}

func (m *MockTokenRepository) Upsert(ctx context.Context, token *entities.Token) error {
	m.record("Upsert", token.CoinType)

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.CoinType] = *token
	return nil
}

// Seed stores a token directly, without recording a call
func (m *MockTokenRepository) Seed(token entities.Token) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.CoinType] = token
}

func (m *MockTokenRepository) record(method string, args ...interface{}) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
	m.mu.Unlock()
}

// MockSnapshotRepository is a mock implementation of SnapshotRepository
type MockSnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[string]entities.HolderSnapshot

	// Function hooks for custom behavior
	GetFunc           func(ctx context.Context, coinType, address string) (*entities.HolderSnapshot, error)
	UpsertFunc        func(ctx context.Context, snapshot *entities.HolderSnapshot) error
	ListByAddressFunc func(ctx context.Context, address string) ([]entities.HolderSnapshot, error)

	// Call tracking
	Calls []MockCall
}

func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{
		snapshots: make(map[string]entities.HolderSnapshot),
		Calls:     make([]MockCall, 0),
	}
}

func snapshotKey(coinType, address string) string {
	return coinType + "|" + address
}

func (m *MockSnapshotRepository) Get(ctx context.Context, coinType, address string) (*entities.HolderSnapshot, error) {
	m.record("Get", coinType, address)

	if m.GetFunc != nil {
		return m.GetFunc(ctx, coinType, address)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.snapshots[snapshotKey(coinType, address)]; ok {
		cp := s
		return &cp, nil
	}
	return nil, nil
}

func (m *MockSnapshotRepository) Upsert(ctx context.Context, snapshot *entities.HolderSnapshot) error {
	m.record("Upsert", snapshot.CoinType, snapshot.Address)

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, snapshot)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshotKey(snapshot.CoinType, snapshot.Address)] = *snapshot
	return nil
}

func (m *MockSnapshotRepository) ListByAddress(ctx context.Context, address string) ([]entities.HolderSnapshot, error) {
	m.record("ListByAddress", address)

	if m.ListByAddressFunc != nil {
		return m.ListByAddressFunc(ctx, address)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]entities.HolderSnapshot, 0)
	for _, s := range m.snapshots {
		if s.Address == address {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CoinType < result[j].CoinType })
	return result, nil
}

// Seed stores a snapshot directly, without recording a call
func (m *MockSnapshotRepository) Seed(snapshot entities.HolderSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshotKey(snapshot.CoinType, snapshot.Address)] = snapshot
}

func (m *MockSnapshotRepository) record(method string, args ...interface{}) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
	m.mu.Unlock()
}

// MockMovementRepository is a mock implementation of MovementRepository
type MockMovementRepository struct {
	mu        sync.RWMutex
	movements []entities.Movement
	nextID    int64

	// Function hooks for custom behavior
	AppendFunc          func(ctx context.Context, movement *entities.Movement) error
	ListRecentFunc      func(ctx context.Context, address string, limit int) ([]entities.Movement, error)
	ListAccumulatesFunc func(ctx context.Context, coinType, address string) ([]entities.Movement, error)

	// Call tracking
	Calls []MockCall
}

func NewMockMovementRepository() *MockMovementRepository {
	return &MockMovementRepository{
		movements: make([]entities.Movement, 0),
		nextID:    1,
		Calls:     make([]MockCall, 0),
	}
}

func (m *MockMovementRepository) Append(ctx context.Context, movement *entities.Movement) error {
	m.record("Append", movement.CoinType, movement.Address, movement.Direction)

	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, movement)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	movement.ID = m.nextID
	m.nextID++
	m.movements = append(m.movements, *movement)
	return nil
}

func (m *MockMovementRepository) ListRecent(ctx context.Context, address string, limit int) ([]entities.Movement, error) {
	m.record("ListRecent", address, limit)

	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, address, limit)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]entities.Movement, 0)
	for _, mv := range m.movements {
		if mv.Address == address {
			result = append(result, mv)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp.After(result[j].Timestamp) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockMovementRepository) ListAccumulates(ctx context.Context, coinType, address string) ([]entities.Movement, error) {
	m.record("ListAccumulates", coinType, address)

	if m.ListAccumulatesFunc != nil {
		return m.ListAccumulatesFunc(ctx, coinType, address)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]entities.Movement, 0)
	for _, mv := range m.movements {
		if mv.CoinType == coinType && mv.Address == address && mv.Direction == entities.DirectionAccumulate {
			result = append(result, mv)
		}
	}
	return result, nil
}

// Movements returns a copy of all stored movements
func (m *MockMovementRepository) Movements() []entities.Movement {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]entities.Movement(nil), m.movements...)
}

// Seed stores a movement directly, without recording a call
func (m *MockMovementRepository) Seed(movement entities.Movement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if movement.ID == 0 {
		movement.ID = m.nextID
		m.nextID++
	}
	m.movements = append(m.movements, movement)
}

func (m *MockMovementRepository) record(method string, args ...interface{}) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
	m.mu.Unlock()
}

// MockWalletStatsRepository is a mock implementation of WalletStatsRepository
type MockWalletStatsRepository struct {
	mu    sync.RWMutex
	stats map[string]entities.WalletStats

	// Function hooks for custom behavior
	GetFunc    func(ctx context.Context, address string) (*entities.WalletStats, error)
	UpsertFunc func(ctx context.Context, stats *entities.WalletStats) error

	// Call tracking
	Calls []MockCall
}

func NewMockWalletStatsRepository() *MockWalletStatsRepository {
	return &MockWalletStatsRepository{
		stats: make(map[string]entities.WalletStats),
		Calls: make([]MockCall, 0),
	}
}

func (m *MockWalletStatsRepository) Get(ctx context.Context, address string) (*entities.WalletStats, error) {
	m.record("Get", address)

	if m.GetFunc != nil {
		return m.GetFunc(ctx, address)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.stats[address]; ok {
		cp := s
		return &cp, nil
	}
	return nil, nil
}

func (m *MockWalletStatsRepository) Upsert(ctx context.Context, stats *entities.WalletStats) error {
	m.record("Upsert", stats.Address)

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, stats)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[stats.Address] = *stats
	return nil
}

// Seed stores stats directly, without recording a call
func (m *MockWalletStatsRepository) Seed(stats entities.WalletStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[stats.Address] = stats
}

func (m *MockWalletStatsRepository) record(method string, args ...interface{}) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
	m.mu.Unlock()
}

// MockTxRunner runs the transactional function directly on the same context
type MockTxRunner struct {
	mu sync.Mutex

	// WithinTxFunc overrides the passthrough behavior
	WithinTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

	// Call tracking
	Calls int
}

func NewMockTxRunner() *MockTxRunner {
	return &MockTxRunner{}
}

func (m *MockTxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()

	if m.WithinTxFunc != nil {
		return m.WithinTxFunc(ctx, fn)
	}
	return fn(ctx)
}

// MockHealthChecker is a configurable health probe
type MockHealthChecker struct {
	healthy bool
}

func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	return &MockHealthChecker{healthy: healthy}
}

func (m *MockHealthChecker) HealthCheck(_ context.Context) error {
	if m.healthy {
		return nil
	}
	return errors.New("unhealthy")
}

// MockTokenDiscovery is a mock implementation of TokenDiscovery
type MockTokenDiscovery struct {
	mu sync.Mutex

	TrendingTokensFunc func(ctx context.Context, minMarketCap float64) ([]providers.TrendingToken, error)
	TokenDetailsFunc   func(ctx context.Context, coinType string) (*providers.TokenDetails, error)

	// Call tracking
	Calls []MockCall
}

func NewMockTokenDiscovery() *MockTokenDiscovery {
	return &MockTokenDiscovery{Calls: make([]MockCall, 0)}
}

func (m *MockTokenDiscovery) TrendingTokens(ctx context.Context, minMarketCap float64) ([]providers.TrendingToken, error) {
	m.record("TrendingTokens", minMarketCap)

	if m.TrendingTokensFunc != nil {
		return m.TrendingTokensFunc(ctx, minMarketCap)
	}
	return []providers.TrendingToken{}, nil
}

func (m *MockTokenDiscovery) TokenDetails(ctx context.Context, coinType string) (*providers.TokenDetails, error) {
	m.record("TokenDetails", coinType)

	if m.TokenDetailsFunc != nil {
		return m.TokenDetailsFunc(ctx, coinType)
	}
	return nil, providers.NewError(providers.KindMissingData, "mock", "TokenDetails", 0, nil)
}

func (m *MockTokenDiscovery) record(method string, args ...interface{}) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
	m.mu.Unlock()
}

// MockHolderSource is a mock implementation of HolderSource
type MockHolderSource struct {
	mu sync.Mutex

	TokenHoldersFunc func(ctx context.Context, coinType string, page, size int) ([]providers.HolderRow, error)

	// Call tracking
	Calls []MockCall
}

func NewMockHolderSource() *MockHolderSource {
	return &MockHolderSource{Calls: make([]MockCall, 0)}
}

func (m *MockHolderSource) TokenHolders(ctx context.Context, coinType string, page, size int) ([]providers.HolderRow, error) {
	m.record("TokenHolders", coinType, page, size)

	if m.TokenHoldersFunc != nil {
		return m.TokenHoldersFunc(ctx, coinType, page, size)
	}
	return []providers.HolderRow{}, nil
}

func (m *MockHolderSource) record(method string, args ...interface{}) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
	m.mu.Unlock()
}

// MockTraderStatsSource is a mock implementation of TraderStatsSource
type MockTraderStatsSource struct {
	mu sync.Mutex

	TraderStatsFunc func(ctx context.Context, address string) (*providers.TraderStats, error)

	// Call tracking
	Calls []MockCall
}

func NewMockTraderStatsSource() *MockTraderStatsSource {
	return &MockTraderStatsSource{Calls: make([]MockCall, 0)}
}

func (m *MockTraderStatsSource) TraderStats(ctx context.Context, address string) (*providers.TraderStats, error) {
	m.record("TraderStats", address)

	if m.TraderStatsFunc != nil {
		return m.TraderStatsFunc(ctx, address)
	}
	return nil, providers.NewError(providers.KindMissingData, "mock", "TraderStats", 0, nil)
}

func (m *MockTraderStatsSource) record(method string, args ...interface{}) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
	m.mu.Unlock()
}

// MockActivitySource is a mock implementation of ActivitySource
type MockActivitySource struct {
	mu sync.Mutex

	WalletActivityFunc func(ctx context.Context, address string, since time.Duration) ([]providers.ActivityEntry, error)

	// Call tracking
	Calls []MockCall
}

func NewMockActivitySource() *MockActivitySource {
	return &MockActivitySource{Calls: make([]MockCall, 0)}
}

func (m *MockActivitySource) WalletActivity(ctx context.Context, address string, since time.Duration) ([]providers.ActivityEntry, error) {
	m.record("WalletActivity", address, since)

	if m.WalletActivityFunc != nil {
		return m.WalletActivityFunc(ctx, address, since)
	}
	return []providers.ActivityEntry{}, nil
}

func (m *MockActivitySource) record(method string, args ...interface{}) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
	m.mu.Unlock()
}
