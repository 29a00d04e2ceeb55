package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/whalewatch/whale-watch/internal/application/services"
)

// TokenHandler handles HTTP requests for watched-token endpoints
type TokenHandler struct {
	service *services.TokenService
	logger  *zap.Logger
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(service *services.TokenService, logger *zap.Logger) *TokenHandler {
	return &TokenHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the token routes on a chi router
func (h *TokenHandler) RegisterRoutes(r chi.Router) {
	r.Route("/tokens", func(r chi.Router) {
		r.Get("/", h.ListTokens)
		r.Get("/{coinType}", h.GetToken)
	})
}

// ListTokens handles GET /api/v1/tokens
func (h *TokenHandler) ListTokens(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response, err := h.service.ListTokens(ctx)
	if err != nil {
		h.logger.Error("Failed to list tokens", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "Failed to list tokens")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// GetToken handles GET /api/v1/tokens/{coinType}
//
// Coin types contain "::" separators and must be URL-escaped by the caller.
func (h *TokenHandler) GetToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	coinType := chi.URLParam(r, "coinType")

	if !isValidCoinType(coinType) {
		h.respondError(w, http.StatusBadRequest, "Invalid coin type format")
		return
	}

	response, err := h.service.GetToken(ctx, coinType)
	if err != nil {
		h.logger.Error("Failed to get token",
			zap.Error(err),
			zap.String("coin_type", coinType),
		)
		h.respondError(w, http.StatusInternalServerError, "Failed to get token")
		return
	}
	if response == nil {
		h.respondError(w, http.StatusNotFound, "Token is not on the watchlist")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

func (h *TokenHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *TokenHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// isValidCoinType checks the package::module::name move type format
func isValidCoinType(coinType string) bool {
	parts := strings.Split(coinType, "::")
	if len(parts) != 3 {
		return false
	}
	if !strings.HasPrefix(parts[0], "0x") || len(parts[0]) < 3 {
		return false
	}
	return parts[1] != "" && parts[2] != ""
}
