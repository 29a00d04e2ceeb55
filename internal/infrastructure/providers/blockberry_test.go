package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/whalewatch/whale-watch/internal/config"
)

func newBlockberryFor(t *testing.T, handler http.HandlerFunc) *Blockberry {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewBlockberry(config.BlockberryConfig{
		BaseURL:        srv.URL,
		RequestTimeout: 2 * time.Second,
		MaxRetries:     1,
		RetryBase:      time.Millisecond,
	}, nil, zap.NewNop())
}

func TestTokenHoldersRequestShape(t *testing.T) {
	b := newBlockberryFor(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "0", q.Get("page"))
		assert.Equal(t, "20", q.Get("size"))
		assert.Equal(t, "DESC", q.Get("orderBy"))
		assert.Equal(t, "AMOUNT", q.Get("sortBy"))
		w.Write([]byte(`{"content": [
			{"holderAddress": "0x1111", "amount": 1000, "usdAmount": 50000, "percentage": 1.5}
		]}`))
	})

	rows, err := b.TokenHolders(context.Background(), "0xaaa::lofi::LOFI", 0, 20)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "0x1111", rows[0].Address)
	assert.Equal(t, 1000.0, rows[0].Balance)
	assert.Equal(t, 50000.0, rows[0].USDValue)
}

func TestTokenHoldersDropsMalformedRows(t *testing.T) {
	b := newBlockberryFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content": [
			{"holderAddress": "0x1111", "amount": 1000, "usdAmount": 50000, "percentage": 1.5},
			{"holderAddress": "", "amount": 500, "usdAmount": 25000, "percentage": 0.7},
			{"holderAddress": "0x2222", "amount": -3, "usdAmount": 100, "percentage": 0.1}
		]}`))
	})

	rows, err := b.TokenHolders(context.Background(), "0xaaa::lofi::LOFI", 0, 20)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestTokenHoldersMissingContentIsMissingData(t *testing.T) {
	b := newBlockberryFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": true}`))
	})

	_, err := b.TokenHolders(context.Background(), "0xaaa::lofi::LOFI", 0, 20)
	require.Error(t, err)
	assert.Equal(t, KindMissingData, KindOf(err))
}

func TestTokenHoldersEmptyPageIsValid(t *testing.T) {
	b := newBlockberryFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content": []}`))
	})

	rows, err := b.TokenHolders(context.Background(), "0xaaa::lofi::LOFI", 3, 20)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWalletActivityParsesEntries(t *testing.T) {
	b := newBlockberryFor(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1440", r.URL.Query().Get("sinceMinutes"))
		w.Write([]byte(`{"content": [
			{"timestamp": 1748779200000, "activityType": ["Swap"],
			 "details": {"detailsDto": {"coins": [{"symbol": "LOFI", "amount": 500}]}}}
		]}`))
	})

	entries, err := b.WalletActivity(context.Background(), "0x1111", 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"Swap"}, entries[0].Types)
	require.Len(t, entries[0].Coins, 1)
	assert.Equal(t, "LOFI", entries[0].Coins[0].Symbol)
	assert.True(t, entries[0].HasSwapOf("lofi"), "swap match is case-insensitive")
}
