package services

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/whalewatch/whale-watch/internal/config"
	"github.com/whalewatch/whale-watch/internal/domain/entities"
	"github.com/whalewatch/whale-watch/internal/domain/repositories"
)

// WatchlistService selects which tokens to monitor: trending tokens above
// the market-cap floor, unioned with the manually configured coin types.
type WatchlistService struct {
	discovery TokenDiscovery
	tokenRepo repositories.TokenRepository
	cfg       config.MonitorConfig
	logger    *zap.Logger

	memeKeywords  []string
	memeOverrides map[string]struct{}
}

// NewWatchlistService creates a new watchlist service
func NewWatchlistService(
	discovery TokenDiscovery,
	tokenRepo repositories.TokenRepository,
	cfg config.MonitorConfig,
	logger *zap.Logger,
) *WatchlistService {
	keywords := make([]string, 0, len(cfg.MemeKeywords))
	for _, k := range cfg.MemeKeywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}
	overrides := make(map[string]struct{}, len(cfg.MemeOverrides))
	for _, o := range cfg.MemeOverrides {
		overrides[o] = struct{}{}
	}
	return &WatchlistService{
		discovery:     discovery,
		tokenRepo:     tokenRepo,
		cfg:           cfg,
		logger:        logger,
		memeKeywords:  keywords,
		memeOverrides: overrides,
	}
}

// Select builds the current watchlist and upserts every member, refreshing
// market data and the meme classification. A failing discovery provider
// degrades the selection to the manual tokens instead of failing the cycle.
func (s *WatchlistService) Select(ctx context.Context) ([]entities.Token, error) {
	selected := make(map[string]entities.Token)

	trending, err := s.discovery.TrendingTokens(ctx, s.cfg.MinMarketCap)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("Trending token discovery unavailable, falling back to manual tokens",
			zap.Error(err),
		)
	}
	for _, t := range trending {
		selected[t.CoinType] = s.buildToken(t.CoinType, t.Symbol, t.Name, t.MarketCap, t.PriceUSD, t.Volume24h)
	}

	for _, coinType := range s.cfg.ManualTokens {
		coinType = strings.TrimSpace(coinType)
		if coinType == "" {
			continue
		}
		if _, ok := selected[coinType]; ok {
			continue
		}

		details, err := s.discovery.TokenDetails(ctx, coinType)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Keep a previously seen manual token alive on stale data
			stored, storeErr := s.tokenRepo.GetByCoinType(ctx, coinType)
			if storeErr == nil && stored != nil {
				selected[coinType] = *stored
				continue
			}
			s.logger.Warn("Skipping manual token with no details",
				zap.String("coin_type", coinType),
				zap.Error(err),
			)
			continue
		}
		selected[coinType] = s.buildToken(details.CoinType, details.Symbol, details.Name,
			details.MarketCap, details.PriceUSD, details.Volume24h)
	}

	tokens := make([]entities.Token, 0, len(selected))
	for _, token := range selected {
		token := token
		if err := s.tokenRepo.Upsert(ctx, &token); err != nil {
			s.logger.Error("Failed to upsert watchlist token",
				zap.String("coin_type", token.CoinType),
				zap.Error(err),
			)
			continue
		}
		tokens = append(tokens, token)
	}

	// Stable output simplifies logging; consumers do not rely on order
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].CoinType < tokens[j].CoinType })

	s.logger.Info("Watchlist selected",
		zap.Int("trending", len(trending)),
		zap.Int("manual", len(s.cfg.ManualTokens)),
		zap.Int("selected", len(tokens)),
	)
	return tokens, nil
}

func (s *WatchlistService) buildToken(coinType, symbol, name string, marketCap, price, volume float64) entities.Token {
	return entities.Token{
		CoinType:  coinType,
		Symbol:    symbol,
		Name:      name,
		MarketCap: marketCap,
		PriceUSD:  price,
		Volume24h: volume,
		IsMeme:    s.classifyMeme(coinType, symbol, name, marketCap),
	}
}

// classifyMeme applies the meme heuristic: explicit override, keyword
// match on symbol or name, or a market cap under the meme ceiling.
func (s *WatchlistService) classifyMeme(coinType, symbol, name string, marketCap float64) bool {
	if _, ok := s.memeOverrides[coinType]; ok {
		return true
	}
	haystack := strings.ToLower(symbol + " " + name)
	for _, kw := range s.memeKeywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return marketCap < s.cfg.MemeMarketCapCeiling
}
