package entities

import (
	"time"
)

// Direction classifies a detected balance change
type Direction string

const (
	DirectionAccumulate Direction = "accumulate"
	DirectionDistribute Direction = "distribute"
)

// Movement is an immutable record of a detected change in a holder's
// balance between two polls. Amount and USDValue are absolute deltas.
type Movement struct {
	ID        int64     `db:"id"`
	CoinType  string    `db:"coin_type"`
	Address   string    `db:"address"`
	Direction Direction `db:"direction"`
	Amount    float64   `db:"amount"`
	USDValue  float64   `db:"usd_value"`
	Timestamp time.Time `db:"timestamp"`
	CreatedAt time.Time `db:"created_at"`
}

// UnitPrice returns the implied per-unit USD price of the movement
func (m Movement) UnitPrice() float64 {
	if m.Amount == 0 {
		return 0
	}
	return m.USDValue / m.Amount
}

// MovementDescriptor is the normalized view of a movement consumed by
// the alert policy and the wallet analysis read model
type MovementDescriptor struct {
	TokenSymbol string    `json:"token_symbol"`
	Direction   Direction `json:"direction"`
	Amount      float64   `json:"amount"`
	USDValue    float64   `json:"usd_value"`
	Timestamp   time.Time `json:"timestamp"`
}

// Descriptor builds the normalized descriptor for a movement
func (m Movement) Descriptor(tokenSymbol string) MovementDescriptor {
	return MovementDescriptor{
		TokenSymbol: tokenSymbol,
		Direction:   m.Direction,
		Amount:      m.Amount,
		USDValue:    m.USDValue,
		Timestamp:   m.Timestamp,
	}
}

// MovementFilter narrows movement queries
type MovementFilter struct {
	CoinType  *string
	Address   *string
	Direction *Direction
	Limit     int
	Offset    int
}
