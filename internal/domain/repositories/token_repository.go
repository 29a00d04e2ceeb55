package repositories

import (
	"context"

	"github.com/whalewatch/whale-watch/internal/domain/entities"
)

// TokenRepository defines the interface for token data operations
type TokenRepository interface {
	// GetByCoinType retrieves a token by its chain-qualified coin type
	GetByCoinType(ctx context.Context, coinType string) (*entities.Token, error)

	// GetAll retrieves all watched tokens
	GetAll(ctx context.Context) ([]entities.Token, error)

	// Upsert creates or updates a token keyed by coin type
	Upsert(ctx context.Context, token *entities.Token) error
}
