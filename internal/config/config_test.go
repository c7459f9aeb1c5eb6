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

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 300*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Provider.HealthTimeout)
	assert.Equal(t, 100.0, cfg.Provider.BudgetFloor)
	assert.Equal(t, 15.0, cfg.Fallback.Breakfast)
	assert.Equal(t, 8.0, cfg.Fallback.Transfer)
	assert.Equal(t, 10.0, cfg.Fallback.Activity)
	assert.Equal(t, "redis", cfg.TripState.Backend)
	assert.False(t, cfg.IsProduction())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RECOMMENDER_URL", "http://recommender:8000")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TOURPLANNER_FALLBACK_BREAKFAST", "18")
	t.Setenv("TOURPLANNER_MODE", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "http://recommender:8000", cfg.Provider.BaseURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 18.0, cfg.Fallback.Breakfast)
	assert.True(t, cfg.IsProduction())
}
