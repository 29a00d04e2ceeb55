package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/whalewatch/whale-watch/internal/domain/entities"
	"github.com/whalewatch/whale-watch/internal/domain/repositories"
)

// Ensure TokenRepo implements TokenRepository
var _ repositories.TokenRepository = (*TokenRepo)(nil)

// TokenRepo implements TokenRepository using PostgreSQL
type TokenRepo struct {
	db *sqlx.DB
}

// NewTokenRepo creates a new token repository
func NewTokenRepo(db *sqlx.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// GetByCoinType retrieves a token by its chain-qualified coin type
func (r *TokenRepo) GetByCoinType(ctx context.Context, coinType string) (*entities.Token, error) {
	var token entities.Token
	query := `SELECT * FROM tokens WHERE coin_type = $1`

	if err := sqlx.GetContext(ctx, ext(ctx, r.db), &token, query, coinType); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	return &token, nil
}

// GetAll retrieves all watched tokens
func (r *TokenRepo) GetAll(ctx context.Context) ([]entities.Token, error) {
	var tokens []entities.Token
	query := `SELECT * FROM tokens ORDER BY symbol`

	if err := sqlx.SelectContext(ctx, ext(ctx, r.db), &tokens, query); err != nil {
		return nil, fmt.Errorf("failed to get tokens: %w", err)
	}

	return tokens, nil
}

// Upsert creates or updates a token keyed by coin type
func (r *TokenRepo) Upsert(ctx context.Context, token *entities.Token) error {
	query := `
		INSERT INTO tokens (coin_type, symbol, name, market_cap, price_usd, volume_24h, is_meme)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (coin_type) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			name = EXCLUDED.name,
			market_cap = EXCLUDED.market_cap,
			price_usd = EXCLUDED.price_usd,
			volume_24h = EXCLUDED.volume_24h,
			is_meme = EXCLUDED.is_meme,
			updated_at = NOW()
	`

	_, err := ext(ctx, r.db).ExecContext(ctx, query,
		token.CoinType,
		token.Symbol,
		token.Name,
		token.MarketCap,
		token.PriceUSD,
		token.Volume24h,
		token.IsMeme,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert token: %w", err)
	}

	return nil
}
