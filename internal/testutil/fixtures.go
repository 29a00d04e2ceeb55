package testutil

import (
	"time"

	"github.com/whalewatch/whale-watch/internal/domain/entities"
	"github.com/whalewatch/whale-watch/internal/infrastructure/providers"
)

// Common test addresses and coin types
const (
	LofiCoinType = "0xf22da9a24ad027cccb5f2d496cbe91de953d363513db08a3a734d361c7c17503::LOFI::LOFI"
	SuiCoinType  = "0x0000000000000000000000000000000000000000000000000000000000000002::sui::SUI"
	DeepCoinType = "0xdeeb7a4662eec9f2f3def03fb937a663dddaa2e215b8078a284d026b7946c270::deep::DEEP"

	WhaleAddress  = "0x1111111111111111111111111111111111111111111111111111111111111111"
	AliceAddress  = "0x2222222222222222222222222222222222222222222222222222222222222222"
	BobAddress    = "0x3333333333333333333333333333333333333333333333333333333333333333"
	MinnowAddress = "0x4444444444444444444444444444444444444444444444444444444444444444"
)

// BaseTime is the fixed reference time fixtures default to
var BaseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// CreateTestToken creates a test token with default values
func CreateTestToken(opts ...TokenOption) entities.Token {
	t := entities.Token{
		ID:        1,
		CoinType:  LofiCoinType,
		Symbol:    "LOFI",
		Name:      "Lofi the Cat",
		MarketCap: 5_000_000,
		PriceUSD:  0.05,
		Volume24h: 250_000,
		IsMeme:    true,
		CreatedAt: BaseTime,
		UpdatedAt: BaseTime,
	}

	for _, opt := range opts {
		opt(&t)
	}

	return t
}

type TokenOption func(*entities.Token)

func WithCoinType(coinType string) TokenOption {
	return func(t *entities.Token) {
		t.CoinType = coinType
	}
}

func WithSymbol(symbol string) TokenOption {
	return func(t *entities.Token) {
		t.Symbol = symbol
	}
}

func WithName(name string) TokenOption {
	return func(t *entities.Token) {
		t.Name = name
	}
}

func WithMarketCap(marketCap float64) TokenOption {
	return func(t *entities.Token) {
		t.MarketCap = marketCap
	}
}

func WithPrice(price float64) TokenOption {
	return func(t *entities.Token) {
		t.PriceUSD = price
	}
}

func WithIsMeme(isMeme bool) TokenOption {
	return func(t *entities.Token) {
		t.IsMeme = isMeme
	}
}

// CreateTestSnapshot creates a test holder snapshot with default values
func CreateTestSnapshot(opts ...SnapshotOption) entities.HolderSnapshot {
	s := entities.HolderSnapshot{
		ID:         1,
		CoinType:   LofiCoinType,
		Address:    WhaleAddress,
		Balance:    1000,
		USDValue:   50_000,
		Percentage: 1.5,
		CreatedAt:  BaseTime,
		UpdatedAt:  BaseTime,
	}

	for _, opt := range opts {
		opt(&s)
	}

	return s
}

type SnapshotOption func(*entities.HolderSnapshot)

func SnapshotCoinType(coinType string) SnapshotOption {
	return func(s *entities.HolderSnapshot) {
		s.CoinType = coinType
	}
}

func SnapshotAddress(address string) SnapshotOption {
	return func(s *entities.HolderSnapshot) {
		s.Address = address
	}
}

func SnapshotBalance(balance, usdValue float64) SnapshotOption {
	return func(s *entities.HolderSnapshot) {
		s.Balance = balance
		s.USDValue = usdValue
	}
}

// CreateTestMovement creates a test movement with default values
func CreateTestMovement(opts ...MovementOption) entities.Movement {
	m := entities.Movement{
		ID:        1,
		CoinType:  LofiCoinType,
		Address:   WhaleAddress,
		Direction: entities.DirectionAccumulate,
		Amount:    500,
		USDValue:  25_000,
		Timestamp: BaseTime,
		CreatedAt: BaseTime,
	}

	for _, opt := range opts {
		opt(&m)
	}

	return m
}

type MovementOption func(*entities.Movement)

func MovementDirection(direction entities.Direction) MovementOption {
	return func(m *entities.Movement) {
		m.Direction = direction
	}
}

func MovementAmount(amount, usdValue float64) MovementOption {
	return func(m *entities.Movement) {
		m.Amount = amount
		m.USDValue = usdValue
	}
}

func MovementAddress(address string) MovementOption {
	return func(m *entities.Movement) {
		m.Address = address
	}
}

func MovementCoinType(coinType string) MovementOption {
	return func(m *entities.Movement) {
		m.CoinType = coinType
	}
}

func MovementTimestamp(ts time.Time) MovementOption {
	return func(m *entities.Movement) {
		m.Timestamp = ts
	}
}

// CreateTestHolderRow creates a provider holder row with default values
func CreateTestHolderRow(opts ...HolderRowOption) providers.HolderRow {
	r := providers.HolderRow{
		Address:    WhaleAddress,
		Balance:    1000,
		USDValue:   50_000,
		Percentage: 1.5,
	}

	for _, opt := range opts {
		opt(&r)
	}

	return r
}

type HolderRowOption func(*providers.HolderRow)

func HolderRowAddress(address string) HolderRowOption {
	return func(r *providers.HolderRow) {
		r.Address = address
	}
}

func HolderRowBalance(balance, usdValue float64) HolderRowOption {
	return func(r *providers.HolderRow) {
		r.Balance = balance
		r.USDValue = usdValue
	}
}
