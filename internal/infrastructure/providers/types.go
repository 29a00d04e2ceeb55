package providers

import (
	"math"
	"strings"
	"time"
)

// TrendingToken is one validated row of the discovery provider's trending list
type TrendingToken struct {
	CoinType  string
	Symbol    string
	Name      string
	MarketCap float64
	PriceUSD  float64
	Volume24h float64
}

// TokenDetails is the validated detail record for one token
type TokenDetails struct {
	CoinType     string
	Symbol       string
	Name         string
	MarketCap    float64
	PriceUSD     float64
	Volume24h    float64
	HoldersCount int64
}

// HolderRow is one validated holder entry handed to the diff engine
type HolderRow struct {
	Address    string
	Balance    float64
	USDValue   float64
	Percentage float64
}

// TraderStats is the trader-statistics provider's aggregate for a wallet
type TraderStats struct {
	TotalTrades int64
	VolumeUSD   float64
	PnLUSD      float64
	WinRate     float64
}

// ActivityCoin is one coin leg of a wallet activity entry
type ActivityCoin struct {
	Symbol string
	Amount float64
}

// ActivityEntry is one validated wallet activity record
type ActivityEntry struct {
	Timestamp time.Time
	Types     []string
	Coins     []ActivityCoin
}

// HasSwapOf reports whether the entry is a swap touching the given symbol
func (a ActivityEntry) HasSwapOf(symbol string) bool {
	swap := false
	for _, t := range a.Types {
		if t == "Swap" {
			swap = true
			break
		}
	}
	if !swap {
		return false
	}
	for _, c := range a.Coins {
		if strings.EqualFold(c.Symbol, symbol) {
			return true
		}
	}
	return false
}

// finiteNonNegative reports whether v is a usable non-negative number
func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
