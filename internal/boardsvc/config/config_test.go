package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	for _, key := range []string{"BOARD_SERVICE_PORT", "POSTGRES_URL", "RATE_LIMIT", "TOTAL_ROUNDS", "CHAT_HISTORY", "BOARD_ID", "DRAFT_TYPE", "TOKEN_TTL_HOURS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.DBUrl)
	assert.Equal(t, 120, cfg.RateLimit)
	assert.Equal(t, int64(1), cfg.BoardID)
	assert.Equal(t, "snake", cfg.DraftType)
	assert.Equal(t, 50, cfg.ChatHistory)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("BOARD_SERVICE_PORT", "9000")
	t.Setenv("TOTAL_ROUNDS", "5")
	t.Setenv("DRAFT_TYPE", "free")
	t.Setenv("TOKEN_TTL_HOURS", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 5, cfg.TotalRounds)
	assert.Equal(t, "free", cfg.DraftType)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"RATE_LIMIT", "fast"},
		{"RATE_LIMIT", "0"},
		{"TOTAL_ROUNDS", "-1"},
		{"CHAT_HISTORY", "0"},
		{"BOARD_ID", "abc"},
		{"TOKEN_TTL_HOURS", "0"},
		{"JWT_SECRET_KEY", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv("JWT_SECRET_KEY", "secret")
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
