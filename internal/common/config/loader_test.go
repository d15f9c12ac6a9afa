package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullConfig = `
app:
  name: compatibility-workers
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: marketplace
    user: ${TEST_DB_USER}
  redis:
    address: localhost:6379
workers:
  analyze-compatibility:
    enabled: true
    timeout: 45000
apis:
  scoring:
    base_url: http://scoring:8000
auth:
  keycloak:
    url: http://keycloak:8080
    realm: market
    client_id: compat-worker
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("TEST_DB_USER", "compat")
	t.Setenv("KEYCLOAK_CLIENT_SECRET", "s3cret")
	t.Setenv("SCORING_API_KEY", "")

	cfg, err := LoadFromFile(writeConfig(t, fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "compat", cfg.Database.Postgres.User)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "s3cret", cfg.Auth.Keycloak.ClientSecret)
	assert.True(t, cfg.Auth.Keycloak.Enabled())

	assert.Equal(t, "/api/compatibility/analyze", cfg.APIs.Scoring.AnalyzePath)
	assert.Equal(t, 120000, cfg.APIs.Scoring.Timeout)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	worker := GetWorkerConfig(cfg, "analyze-compatibility")
	assert.True(t, worker.Enabled)
	assert.Equal(t, 5, worker.MaxJobsActive)
	assert.Equal(t, 3, worker.MaxRetries)
	assert.Equal(t, 45*time.Second, ScoringTimeout(cfg, "analyze-compatibility"))
	assert.Equal(t, 2*time.Minute, ScoringTimeout(cfg, "unknown-worker"))
	assert.True(t, IsWorkerEnabled(cfg, "unknown-worker"))
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing broker",
			content: "apis:\n  scoring:\n    base_url: http://scoring\n",
			wantErr: "camunda.broker_address is required",
		},
		{
			name: "missing scoring url",
			content: `
camunda: {broker_address: zeebe:26500}
database:
  postgres: {host: db, database: m, user: u}
  redis: {address: redis:6379}
`,
			wantErr: "apis.scoring.base_url is required",
		},
		{
			name: "keycloak without secret",
			content: `
camunda: {broker_address: zeebe:26500}
database:
  postgres: {host: db, database: m, user: u}
  redis: {address: redis:6379}
apis:
  scoring: {base_url: http://scoring}
auth:
  keycloak: {url: http://kc, realm: r, client_id: c}
`,
			wantErr: "auth.keycloak.client_secret is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("KEYCLOAK_CLIENT_SECRET", "")
			t.Setenv("DB_USER", "")
			_, err := LoadFromFile(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScoring_SkipsInfrastructure(t *testing.T) {
	t.Setenv("SCORING_API_KEY", "key-from-env")

	cfg, err := LoadScoring(writeConfig(t, "apis:\n  scoring:\n    base_url: http://scoring\n    timeout: 5000\n"))
	require.NoError(t, err)

	assert.Equal(t, "key-from-env", cfg.APIs.Scoring.APIKey)
	assert.Equal(t, 5*time.Second, ScoringTimeout(cfg, "analyze-compatibility"))
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromFile_UnsetPlaceholderIsEmpty(t *testing.T) {
	t.Setenv("TEST_DB_USER", "")
	t.Setenv("DB_USER", "from-override")
	t.Setenv("KEYCLOAK_CLIENT_SECRET", "s3cret")

	cfg, err := LoadFromFile(writeConfig(t, fullConfig))
	require.NoError(t, err)
	assert.Equal(t, "from-override", cfg.Database.Postgres.User)
}
