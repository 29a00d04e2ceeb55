package entities

import (
	"time"
)

// Token represents a monitored token on the watchlist
type Token struct {
	ID        int64     `db:"id"`
	CoinType  string    `db:"coin_type"`
	Symbol    string    `db:"symbol"`
	Name      string    `db:"name"`
	MarketCap float64   `db:"market_cap"`
	PriceUSD  float64   `db:"price_usd"`
	Volume24h float64   `db:"volume_24h"`
	IsMeme    bool      `db:"is_meme"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
