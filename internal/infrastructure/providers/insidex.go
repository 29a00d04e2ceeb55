package providers

import (
	"context"
	"net/url"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/whalewatch/whale-watch/internal/config"
)

// InsideX is the token discovery and trader statistics provider
type InsideX struct {
	client *Client
	logger *zap.Logger
}

// NewInsideX creates an InsideX provider client
func NewInsideX(cfg config.InsideXConfig, clk clock.Clock, logger *zap.Logger) *InsideX {
	return &InsideX{
		client: NewClient(
			"insidex",
			cfg.BaseURL,
			cfg.APIKey,
			cfg.RequestTimeout,
			cfg.MaxRetries,
			cfg.RetryBase,
			cfg.MinSpacing,
			clk,
			logger,
		),
		logger: logger,
	}
}

// insidexCoin is the wire shape shared by the trending list and detail endpoints
type insidexCoin struct {
	Coin         string  `json:"coin"`
	MarketCap    float64 `json:"marketCap"`
	CoinPrice    float64 `json:"coinPrice"`
	Volume24h    float64 `json:"volume24h"`
	HoldersCount int64   `json:"holdersCount"`
	CoinMetadata struct {
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
	} `json:"coinMetadata"`
}

func (c insidexCoin) validate(op string) error {
	if c.Coin == "" || c.CoinMetadata.Symbol == "" {
		return &Error{Kind: KindMissingData, Provider: "insidex", Op: op}
	}
	if !finiteNonNegative(c.MarketCap) || !finiteNonNegative(c.CoinPrice) || !finiteNonNegative(c.Volume24h) {
		return &Error{Kind: KindMissingData, Provider: "insidex", Op: op}
	}
	return nil
}

// TrendingTokens lists trending tokens, filtered by minimum market cap.
// Rows that fail validation are dropped, not fatal.
func (x *InsideX) TrendingTokens(ctx context.Context, minMarketCap float64) ([]TrendingToken, error) {
	var raw []insidexCoin
	if err := x.client.GetJSON(ctx, "trending_tokens", "coins/trending", nil, &raw); err != nil {
		return nil, err
	}

	tokens := make([]TrendingToken, 0, len(raw))
	for _, c := range raw {
		if err := c.validate("trending_tokens"); err != nil {
			x.logger.Debug("Dropping malformed trending row", zap.String("coin", c.Coin))
			continue
		}
		if c.MarketCap < minMarketCap {
			continue
		}
		name := c.CoinMetadata.Name
		if name == "" {
			name = c.CoinMetadata.Symbol
		}
		tokens = append(tokens, TrendingToken{
			CoinType:  c.Coin,
			Symbol:    c.CoinMetadata.Symbol,
			Name:      name,
			MarketCap: c.MarketCap,
			PriceUSD:  c.CoinPrice,
			Volume24h: c.Volume24h,
		})
	}
	return tokens, nil
}

// TokenDetails fetches the detail record for one token
func (x *InsideX) TokenDetails(ctx context.Context, coinType string) (*TokenDetails, error) {
	var raw insidexCoin
	path := "coins/" + url.PathEscape(coinType)
	if err := x.client.GetJSON(ctx, "token_details", path, nil, &raw); err != nil {
		return nil, err
	}
	if raw.Coin == "" {
		raw.Coin = coinType
	}
	if err := raw.validate("token_details"); err != nil {
		return nil, err
	}
	name := raw.CoinMetadata.Name
	if name == "" {
		name = raw.CoinMetadata.Symbol
	}
	return &TokenDetails{
		CoinType:     raw.Coin,
		Symbol:       raw.CoinMetadata.Symbol,
		Name:         name,
		MarketCap:    raw.MarketCap,
		PriceUSD:     raw.CoinPrice,
		Volume24h:    raw.Volume24h,
		HoldersCount: raw.HoldersCount,
	}, nil
}

// TraderStats fetches aggregate trader statistics for a wallet
func (x *InsideX) TraderStats(ctx context.Context, address string) (*TraderStats, error) {
	var raw struct {
		TotalTrades int64   `json:"totalTrades"`
		VolumeUSD   float64 `json:"volumeUsd"`
		PnLUSD      float64 `json:"pnlUsd"`
		WinRate     float64 `json:"winRate"`
	}
	path := "traders/" + url.PathEscape(address) + "/stats"
	if err := x.client.GetJSON(ctx, "trader_stats", path, nil, &raw); err != nil {
		return nil, err
	}
	if raw.TotalTrades < 0 || !finiteNonNegative(raw.VolumeUSD) || raw.WinRate < 0 || raw.WinRate > 100 {
		return nil, &Error{Kind: KindMissingData, Provider: "insidex", Op: "trader_stats"}
	}
	return &TraderStats{
		TotalTrades: raw.TotalTrades,
		VolumeUSD:   raw.VolumeUSD,
		PnLUSD:      raw.PnLUSD,
		WinRate:     raw.WinRate,
	}, nil
}
