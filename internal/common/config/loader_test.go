// internal/common/config/loader_test.go
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

const minimalConfig = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: hostelverse
    user: hostel
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, DefaultMaxConcurrentLookups, cfg.Waitlist.MaxConcurrentLookups)
	assert.Equal(t, DefaultRankingIndex, cfg.Waitlist.RankingIndex)
	assert.Equal(t, DefaultRegistryPath, cfg.RegistryPath)
	assert.Equal(t, DefaultMetricsAddress, cfg.Metrics.Address)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, time.Duration(0), cfg.Waitlist.CacheTTL())
	assert.False(t, cfg.Database.Elasticsearch.Enabled())
}

func TestLoadFromFile_ShippedConfigReadsProfilesFresh(t *testing.T) {
	t.Setenv("ZEEBE_ADDRESS", "localhost:26500")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "hostel")

	cfg, err := LoadFromFile(filepath.Join("..", "..", "..", "configs", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, time.Duration(0), cfg.Waitlist.CacheTTL())
}

func TestLoadFromFile_ExpandsEnvironment(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "s3cret")

	cfg, err := LoadFromFile(writeConfig(t, minimalConfig+`    password: ${TEST_DB_PASSWORD}
`))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
}

func TestLoadFromFile_WorkerDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, minimalConfig+`
workers:
  compute-waitlist-ranking:
    enabled: true
    timeout: 10000
`))
	require.NoError(t, err)

	wcfg := GetWorkerConfig(cfg, "compute-waitlist-ranking")
	assert.True(t, wcfg.Enabled)
	assert.Equal(t, 10000, wcfg.Timeout)
	assert.Equal(t, 5, wcfg.MaxJobsActive)
	assert.Equal(t, 3, wcfg.MaxRetries)

	assert.True(t, IsWorkerEnabled(cfg, "unknown-worker"))
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		errMsg string
	}{
		{
			name:   "missing broker",
			body:   "database:\n  postgres:\n    host: h\n    database: d\n    user: u\n",
			errMsg: "camunda.broker_address",
		},
		{
			name:   "cache without redis",
			body:   minimalConfig + "waitlist:\n  profile_cache_ttl: 60\n",
			errMsg: "database.redis.address",
		},
		{
			name:   "sns without topic",
			body:   minimalConfig + "notifications:\n  sns:\n    enabled: true\n    region: ap-south-1\n",
			errMsg: "topic_arn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("WAITLIST_SNS_TOPIC_ARN", "")
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestElasticsearchConfig_GetURL(t *testing.T) {
	assert.Equal(t, "http://a:9200", ElasticsearchConfig{Addresses: []string{"http://a:9200"}}.GetURL())
	assert.Equal(t, "http://u:9200", ElasticsearchConfig{URL: "http://u:9200", Addresses: []string{"http://a:9200"}}.GetURL())
	assert.Empty(t, ElasticsearchConfig{}.GetURL())
}
