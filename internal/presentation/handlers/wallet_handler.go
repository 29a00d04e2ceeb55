package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/whalewatch/whale-watch/internal/application/services"
)

// WalletHandler handles HTTP requests for wallet endpoints
type WalletHandler struct {
	service *services.WalletService
	logger  *zap.Logger
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(service *services.WalletService, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the wallet routes on a chi router
func (h *WalletHandler) RegisterRoutes(r chi.Router) {
	r.Route("/wallets", func(r chi.Router) {
		r.Get("/{address}", h.GetAnalysis)
		r.Get("/{address}/movements", h.GetMovements)
		r.Post("/{address}/stats/refresh", h.RefreshStats)
	})
}

// GetAnalysis handles GET /api/v1/wallets/{address}
func (h *WalletHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	if !isValidAddress(address) {
		h.respondError(w, http.StatusBadRequest, "Invalid wallet address format")
		return
	}

	address = strings.ToLower(address)

	response, err := h.service.Analyze(ctx, address)
	if err != nil {
		h.logger.Error("Failed to analyze wallet",
			zap.Error(err),
			zap.String("address", address),
		)
		h.respondError(w, http.StatusInternalServerError, "Failed to analyze wallet")
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// GetMovements handles GET /api/v1/wallets/{address}/movements
func (h *WalletHandler) GetMovements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	if !isValidAddress(address) {
		h.respondError(w, http.StatusBadRequest, "Invalid wallet address format")
		return
	}

	address = strings.ToLower(address)

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 500 {
			h.respondError(w, http.StatusBadRequest, "Invalid limit (1-500)")
			return
		}
		limit = parsed
	}

	movements, err := h.service.RecentMovements(ctx, address, limit)
	if err != nil {
		h.logger.Error("Failed to list movements",
			zap.Error(err),
			zap.String("address", address),
		)
		h.respondError(w, http.StatusInternalServerError, "Failed to list movements")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"data": movements})
}

// RefreshStats handles POST /api/v1/wallets/{address}/stats/refresh
func (h *WalletHandler) RefreshStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address := chi.URLParam(r, "address")

	if !isValidAddress(address) {
		h.respondError(w, http.StatusBadRequest, "Invalid wallet address format")
		return
	}

	address = strings.ToLower(address)

	stats, err := h.service.RefreshStats(ctx, address)
	if err != nil {
		h.logger.Error("Failed to refresh wallet stats",
			zap.Error(err),
			zap.String("address", address),
		)
		h.respondError(w, http.StatusInternalServerError, "Failed to refresh wallet stats")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"address":          stats.Address,
			"total_volume_usd": stats.TotalVolumeUSD,
			"total_trades":     stats.TotalTrades,
			"total_pnl_usd":    stats.TotalPnLUSD,
			"win_rate":         stats.WinRate(),
		},
	})
}

func (h *WalletHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *WalletHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// isValidAddress checks the 32-byte hex account address format
func isValidAddress(addr string) bool {
	if len(addr) != 66 {
		return false
	}
	if !strings.HasPrefix(addr, "0x") {
		return false
	}
	for _, c := range addr[2:] {
		switch {
		case '0' <= c && c <= '9':
		case 'a' <= c && c <= 'f':
		case 'A' <= c && c <= 'F':
		default:
			return false
		}
	}
	return true
}
