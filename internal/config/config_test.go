package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/payday/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "payday", cfg.DB.Name)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "funds.moved", cfg.Kafka.Topic)
	assert.Equal(t, "0 0 1 * *", cfg.Jobs.BillResetCron)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("ROUTING_RULES_FILE", "/etc/payday/rules.yaml")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "/etc/payday/rules.yaml", cfg.Routing.RulesFile)
	assert.Equal(t, "postgres://postgres:@db.internal:5432/payday?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS", "0")

	_, err := config.Load()
	assert.Error(t, err)
}
