package entities

import (
	"time"
)

// HolderSnapshot is the last observed holding of one wallet in one token.
// Exactly one live row exists per (coin_type, address) pair; it is the
// baseline the diff engine compares fresh holder data against.
type HolderSnapshot struct {
	ID         int64     `db:"id"`
	CoinType   string    `db:"coin_type"`
	Address    string    `db:"address"`
	Balance    float64   `db:"balance"`
	USDValue   float64   `db:"usd_value"`
	Percentage float64   `db:"percentage"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
