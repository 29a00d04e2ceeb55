package providers

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/whalewatch/whale-watch/internal/config"
)

// Blockberry is the holder list and wallet activity provider
type Blockberry struct {
	client *Client
	logger *zap.Logger
}

// NewBlockberry creates a Blockberry provider client
func NewBlockberry(cfg config.BlockberryConfig, clk clock.Clock, logger *zap.Logger) *Blockberry {
	return &Blockberry{
		client: NewClient(
			"blockberry",
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

type blockberryHolder struct {
	HolderAddress string  `json:"holderAddress"`
	Amount        float64 `json:"amount"`
	USDAmount     float64 `json:"usdAmount"`
	Percentage    float64 `json:"percentage"`
}

// TokenHolders fetches one page of top holders for a token, largest first.
// Malformed rows are dropped; a response without a content array is MissingData.
func (b *Blockberry) TokenHolders(ctx context.Context, coinType string, page, size int) ([]HolderRow, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(size))
	params.Set("orderBy", "DESC")
	params.Set("sortBy", "AMOUNT")

	var raw struct {
		Content []blockberryHolder `json:"content"`
	}
	path := "sui/v1/coins/" + url.PathEscape(coinType) + "/holders"
	if err := b.client.GetJSON(ctx, "token_holders", path, params, &raw); err != nil {
		return nil, err
	}
	if raw.Content == nil {
		return nil, &Error{Kind: KindMissingData, Provider: "blockberry", Op: "token_holders"}
	}

	rows := make([]HolderRow, 0, len(raw.Content))
	dropped := 0
	for _, h := range raw.Content {
		if h.HolderAddress == "" ||
			!finiteNonNegative(h.Amount) ||
			!finiteNonNegative(h.USDAmount) ||
			!finiteNonNegative(h.Percentage) {
			dropped++
			continue
		}
		rows = append(rows, HolderRow{
			Address:    h.HolderAddress,
			Balance:    h.Amount,
			USDValue:   h.USDAmount,
			Percentage: h.Percentage,
		})
	}
	if dropped > 0 {
		b.logger.Warn("Dropped malformed holder rows",
			zap.String("coin_type", coinType),
			zap.Int("dropped", dropped),
		)
	}
	return rows, nil
}

type blockberryActivity struct {
	Timestamp    int64    `json:"timestamp"`
	ActivityType []string `json:"activityType"`
	Details      struct {
		DetailsDto struct {
			Coins []struct {
				Symbol string  `json:"symbol"`
				Amount float64 `json:"amount"`
			} `json:"coins"`
		} `json:"detailsDto"`
	} `json:"details"`
}

// WalletActivity fetches recent activity for a wallet within the window
func (b *Blockberry) WalletActivity(ctx context.Context, address string, since time.Duration) ([]ActivityEntry, error) {
	params := url.Values{}
	params.Set("sinceMinutes", strconv.Itoa(int(since.Minutes())))

	var raw struct {
		Content []blockberryActivity `json:"content"`
	}
	path := "sui/v1/accounts/" + url.PathEscape(address) + "/activity"
	if err := b.client.GetJSON(ctx, "wallet_activity", path, params, &raw); err != nil {
		return nil, err
	}

	entries := make([]ActivityEntry, 0, len(raw.Content))
	for _, a := range raw.Content {
		entry := ActivityEntry{
			Timestamp: time.UnixMilli(a.Timestamp).UTC(),
			Types:     a.ActivityType,
		}
		for _, c := range a.Details.DetailsDto.Coins {
			entry.Coins = append(entry.Coins, ActivityCoin{Symbol: c.Symbol, Amount: c.Amount})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
