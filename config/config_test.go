package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	content := `
http:
  address: ":9090"
database:
  host: "db"
  port: 5432
  user: "u"
  password: "p"
  name: "flights"
  ssl_mode: "disable"
kafka:
  brokers:
    - "kafka:9092"
  cart_events_topic: "cart-events"
gateway:
  base_url: "https://example.com/search.json"
  api_key: "secret"
  currency: "EUR"
  timeout_seconds: 3
  max_retries: 1
  retry_backoff_ms: 100
catalog:
  cache_ttl_seconds: 30
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=flights sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "EUR", cfg.Gateway.Currency)
	assert.Equal(t, 3*time.Second, cfg.Gateway.Timeout())
	assert.Equal(t, 100*time.Millisecond, cfg.Gateway.RetryBackoff())
	assert.Equal(t, 30, cfg.Catalog.CacheTTLSeconds)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http: [broken"), 0o600))

	cfg, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestGatewayConfig_Defaults(t *testing.T) {
	var g GatewayConfig
	assert.Equal(t, 10*time.Second, g.Timeout())
	assert.Equal(t, 500*time.Millisecond, g.RetryBackoff())
}
