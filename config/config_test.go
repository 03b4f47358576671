package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
http:
  address: ":9000"
  cors_origins: ["https://app.example.com"]
database:
  host: db
  port: 5432
  user: app
  password: from-file
  name: reservas
  ssl_mode: disable
kafka:
  brokers: ["kafka:9092"]
  notifications_topic: notifications
notifications:
  transport: kafka
  timezone: America/La_Paz
`)
	t.Setenv("DATABASE_PASSWORD", "from-env")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTP.Address)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, "sk_test_123", cfg.Stripe.SecretKey)
	assert.Equal(t, TransportKafka, cfg.Notifications.Transport)
	assert.Equal(t, 2, cfg.Notifications.Workers)
	assert.Equal(t, 15*time.Second, cfg.Notifications.SendTimeout())
	assert.Equal(t, time.Minute, cfg.Cache.CalendarTTL())
	assert.Equal(t, "host=db port=5432 user=app password=from-env dbname=reservas sslmode=disable", cfg.Database.DSN())

	loc, err := cfg.Notifications.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/La_Paz", loc.String())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}

func TestLoadConfig_InvalidTransport(t *testing.T) {
	path := writeConfig(t, "notifications:\n  transport: pigeon\n")
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "notifications.transport")
}

func TestLoadConfig_KafkaTransportNeedsTopic(t *testing.T) {
	path := writeConfig(t, "notifications:\n  transport: kafka\n")
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "kafka transport")
}

func TestLoadConfig_BadPortOverride(t *testing.T) {
	path := writeConfig(t, "http:\n  address: \":8080\"\n")
	t.Setenv("DATABASE_PORT", "five")
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "DATABASE_PORT")
}
