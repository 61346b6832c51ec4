package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "DB_DRIVER", "CHANGE_DELAY_MS", "TRIGGER_COOLDOWN_MS", "CHAT_THINKING_MS", "CHAT_TOKEN_INTERVAL_MS", "CHECKOUT_DELAY_MS", "CHECKOUT_FAILURE_RATE", "RANDOM_SEED"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, 2*time.Second, cfg.ChangeDelay)
	assert.Equal(t, 10*time.Second, cfg.TriggerCooldown)
	assert.Equal(t, 2500*time.Millisecond, cfg.ChatThinkingDelay)
	assert.Equal(t, 100*time.Millisecond, cfg.ChatTokenInterval)
	assert.Equal(t, 1500*time.Millisecond, cfg.CheckoutDelay)
	assert.Equal(t, 0.2, cfg.CheckoutFailureRate)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("CHANGE_DELAY_MS", "0")
	t.Setenv("CHAT_TOKEN_INTERVAL_MS", "5")
	t.Setenv("RANDOM_SEED", "7")
	t.Setenv("REPLIES_FILE", "replies.yaml")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.ChangeDelay)
	assert.Equal(t, 5*time.Millisecond, cfg.ChatTokenInterval)
	assert.Equal(t, uint64(7), cfg.RandomSeed)
	assert.Equal(t, "replies.yaml", cfg.RepliesFile)
}

func TestFromEnv_Invalid(t *testing.T) {
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("CHANGE_DELAY_MS", "soon")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "CHANGE_DELAY_MS")
	})

	t.Run("surreal without connection details", func(t *testing.T) {
		t.Setenv("DB_DRIVER", DriverSurreal)
		t.Setenv("SURREAL_URL", "")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "SURREAL_URL")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "postgres")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "unknown driver")
	})
}
