package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "shop_backend.db", cfg.DBPath)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "INR", cfg.Currency)
	assert.Equal(t, 100, cfg.CreateRateLimit)
	assert.Equal(t, time.Second, cfg.CreateRateWindow)
	assert.Equal(t, 30*time.Second, cfg.CaptureLockTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("ORDER_CURRENCY", "usd")
	t.Setenv("CREATE_RATE_LIMIT", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "USD", cfg.Currency) // 统一大写
	assert.Equal(t, 7, cfg.CreateRateLimit)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("non-numeric redis db", func(t *testing.T) {
		t.Setenv("REDIS_DB", "abc")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("zero rate limit", func(t *testing.T) {
		t.Setenv("CREATE_RATE_LIMIT", "0")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad currency length", func(t *testing.T) {
		t.Setenv("ORDER_CURRENCY", "RUPEES")
		_, err := Load()
		assert.Error(t, err)
	})
}
