package services

import (
	"context"
	"time"

	"github.com/whalewatch/whale-watch/internal/infrastructure/providers"
)

// TokenDiscovery is the upstream source of trending tokens and token details
type TokenDiscovery interface {
	TrendingTokens(ctx context.Context, minMarketCap float64) ([]providers.TrendingToken, error)
	TokenDetails(ctx context.Context, coinType string) (*providers.TokenDetails, error)
}

// HolderSource is the upstream source of per-token holder lists
type HolderSource interface {
	TokenHolders(ctx context.Context, coinType string, page, size int) ([]providers.HolderRow, error)
}

// TraderStatsSource is the upstream source of aggregate trader statistics
type TraderStatsSource interface {
	TraderStats(ctx context.Context, address string) (*providers.TraderStats, error)
}

// ActivitySource is the upstream source of recent wallet activity
type ActivitySource interface {
	WalletActivity(ctx context.Context, address string, since time.Duration) ([]providers.ActivityEntry, error)
}
