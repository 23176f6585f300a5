package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"moodwall/internal/config"
	"moodwall/internal/store"
)

func testConfig() config.Config {
	key := bytes.Repeat([]byte{9}, 32)
	return config.Config{
		Env:           "development",
		Port:          "0",
		JWTSecret:     []byte("secret"),
		TokenTTL:      time.Hour,
		EncryptionKey: key,
		BlindIndexKey: key,
		CORSOrigins:   []string{"http://localhost:5173"},
		Location:      time.UTC,
	}
}

func TestOpenStoreFallsBackToMemory(t *testing.T) {
	st, closeStore, err := openStore(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	defer closeStore()
	assert.IsType(t, &store.Memory{}, st)
}

func TestBuildRouterServesAPI(t *testing.T) {
	router, err := buildRouter(testConfig(), store.NewMemory(), zap.NewNop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodOptions, "/api/wall", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOpenDBRequiresURL(t *testing.T) {
	_, err := openDB(testConfig())
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestBuildRouterRejectsBadKeys(t *testing.T) {
	cfg := testConfig()
	cfg.EncryptionKey = []byte("short")
	_, err := buildRouter(cfg, store.NewMemory(), zap.NewNop())
	assert.Error(t, err)
}
