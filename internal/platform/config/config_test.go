package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("yaml file with env overrides", func(t *testing.T) {
		// Arrange
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
serviceName: sales-test
server:
  port: "9090"
mongo:
  uri: mongodb://mongo:27017
  database: sales_test
kafka:
  brokers: [kafka:9092]
inventory:
  compensationTimeout: 2s
auth:
  jwtSecret: from-file
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		t.Setenv("PORT", "7070")
		t.Setenv("REDIS_ADDR", "redis:6379")

		// Act
		cfg, err := Load(path)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "sales-test", cfg.ServiceName)
		assert.Equal(t, "7070", cfg.Server.Port)
		assert.Equal(t, "sales_test", cfg.Mongo.Database)
		assert.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, 2*time.Second, cfg.Inventory.CompensationTimeout)
		assert.True(t, cfg.Redis.Enabled())
		assert.False(t, cfg.Postgres.Enabled())
		assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
	})

	t.Run("missing file falls back to defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

		require.NoError(t, err)
		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	})

	t.Run("jwt secret is required", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")

		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

		assert.Error(t, err)
	})

	t.Run("invalid duration", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("COMPENSATION_TIMEOUT", "soon")

		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

		assert.Error(t, err)
	})
}

func TestPostgresDSN(t *testing.T) {
	p := Postgres{Host: "db", Port: "5432", User: "u", Password: "p", Database: "ledger"}

	assert.Equal(t, "postgres://u:p@db:5432/ledger?sslmode=disable", p.DSN())
}
