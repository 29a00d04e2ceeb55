package entities

import (
	"time"
)

// WalletStats is the aggregate trading profile of one wallet address
type WalletStats struct {
	ID             int64     `db:"id"`
	Address        string    `db:"address"`
	TotalVolumeUSD float64   `db:"total_volume_usd"`
	TotalTrades    int64     `db:"total_trades"`
	TotalPnLUSD    float64   `db:"total_pnl_usd"`
	WinningTrades  int64     `db:"winning_trades"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// WinRate returns the percentage of trades that were profitable
func (s WalletStats) WinRate() float64 {
	if s.TotalTrades == 0 {
		return 0
	}
	return float64(s.WinningTrades) / float64(s.TotalTrades) * 100
}

// AvgTradeSize returns the average USD size of a trade
func (s WalletStats) AvgTradeSize() float64 {
	if s.TotalTrades == 0 {
		return 0
	}
	return s.TotalVolumeUSD / float64(s.TotalTrades)
}
