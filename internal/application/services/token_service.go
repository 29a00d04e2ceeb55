package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/whalewatch/whale-watch/internal/domain/entities"
	"github.com/whalewatch/whale-watch/internal/domain/repositories"
	"github.com/whalewatch/whale-watch/internal/infrastructure/cache"
)

// TokenService provides the read-side view of watched tokens
type TokenService struct {
	tokenRepo repositories.TokenRepository
	cache     *cache.RedisCache
	logger    *zap.Logger
}

// NewTokenService creates a new token service
func NewTokenService(tokenRepo repositories.TokenRepository, redisCache *cache.RedisCache, logger *zap.Logger) *TokenService {
	return &TokenService{
		tokenRepo: tokenRepo,
		cache:     redisCache,
		logger:    logger,
	}
}

// TokenDTO is the API representation of a watched token
type TokenDTO struct {
	CoinType  string    `json:"coin_type"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	MarketCap float64   `json:"market_cap"`
	PriceUSD  float64   `json:"price_usd"`
	Volume24h float64   `json:"volume_24h"`
	IsMeme    bool      `json:"is_meme"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenListResponse is the API response for the token list
type TokenListResponse struct {
	Data  []TokenDTO `json:"data"`
	Total int        `json:"total"`
}

// TokenResponse is the API response for a single token
type TokenResponse struct {
	Data TokenDTO `json:"data"`
}

// ListTokens retrieves all watched tokens
func (s *TokenService) ListTokens(ctx context.Context) (*TokenListResponse, error) {
	cacheKey := "tokens:all"

	var cached TokenListResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return &cached, nil
		}
	}

	tokens, err := s.tokenRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}

	data := make([]TokenDTO, 0, len(tokens))
	for _, t := range tokens {
		data = append(data, toTokenDTO(t))
	}
	response := &TokenListResponse{Data: data, Total: len(data)}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response); err != nil {
			s.logger.Warn("Failed to cache token list", zap.Error(err))
		}
	}
	return response, nil
}

// GetToken retrieves one watched token, or nil when not watched
func (s *TokenService) GetToken(ctx context.Context, coinType string) (*TokenResponse, error) {
	token, err := s.tokenRepo.GetByCoinType(ctx, coinType)
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	if token == nil {
		return nil, nil
	}
	return &TokenResponse{Data: toTokenDTO(*token)}, nil
}

func toTokenDTO(t entities.Token) TokenDTO {
	return TokenDTO{
		CoinType:  t.CoinType,
		Symbol:    t.Symbol,
		Name:      t.Name,
		MarketCap: t.MarketCap,
		PriceUSD:  t.PriceUSD,
		Volume24h: t.Volume24h,
		IsMeme:    t.IsMeme,
		UpdatedAt: t.UpdatedAt,
	}
}
