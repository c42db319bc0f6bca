package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9001
infra:
  kafka:
    brokers: ["k1:9092"]
cart:
  cacheTtl: 30s
services:
  catalog-service: http://catalog:8082
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MYSQL_DSN", "user:pw@tcp(db:3306)/rings")
	t.Setenv("KAFKA_BROKERS", "a:1,b:2")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Cart.CacheTTL)
	assert.Equal(t, "user:pw@tcp(db:3306)/rings", cfg.Infra.MySQL.DSN)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.Infra.Kafka.Brokers)
	assert.Equal(t, "http://catalog:8082", cfg.Services["catalog-service"])
	// 未出现在文件中的字段保持默认值
	assert.Equal(t, "order-events", cfg.Infra.Kafka.OrderTopic)
	assert.Equal(t, int64(5<<20), cfg.Storage.MaxUploadSize)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "header", cfg.Auth.Mode)
}

func TestAppConfig_Location(t *testing.T) {
	loc, err := AppConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = AppConfig{Timezone: "America/Los_Angeles"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Los_Angeles", loc.String())

	_, err = AppConfig{Timezone: "Mars/Olympus"}.Location()
	assert.Error(t, err)
}

func TestMergeRemote_DoesNotMutateBase(t *testing.T) {
	base := defaultConfig()
	merged, err := MergeRemote(base, "cart:\n  cacheTtl: 1m\nservices:\n  catalog-service: http://remote\n")
	require.NoError(t, err)

	assert.Equal(t, time.Minute, merged.Cart.CacheTTL)
	assert.Equal(t, "http://remote", merged.Services["catalog-service"])
	assert.Equal(t, 10*time.Minute, base.Cart.CacheTTL)
	assert.Equal(t, "http://localhost:8082", base.Services["catalog-service"])
}

func TestMergeRemote_Invalid(t *testing.T) {
	_, err := MergeRemote(defaultConfig(), "server: [")
	assert.Error(t, err)
}
