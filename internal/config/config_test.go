package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Server.ReadTimeoutSeconds)
	assert.Equal(t, 600, cfg.Server.WriteTimeoutSeconds)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 120, cfg.Providers.TimeoutSeconds)
	assert.Equal(t, "", cfg.Database.DSN())
	assert.False(t, cfg.Minio.Enabled())
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
  apiKeys:
    frontend: secret
database:
  driver: mysql
  host: db
  user: root
  password: pw
  name: auspex
providers:
  timeoutSeconds: 60
  gemini:
    model: gemini-2.0-flash
minio:
  endpoint: minio:9000
  bucketName: results
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, map[string]string{"frontend": "secret"}, cfg.Server.APIKeys)
	assert.Equal(t, "root:pw@tcp(db:3306)/auspex?parseTime=true&charset=utf8mb4&loc=UTC", cfg.Database.DSN())
	assert.Equal(t, "gemini-2.0-flash", cfg.Providers.Gemini.Model)
	assert.Equal(t, int64(60), int64(cfg.Providers.Timeout().Seconds()))
	assert.True(t, cfg.Minio.Enabled())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PORT":             "7000",
		"DATABASE_URL":     "postgres://u:p@localhost/db",
		"GEMINI_API_KEY":   "g-key",
		"OPENAI_BASE_URL":  "http://gateway/v1",
		"API_KEYS":         "web=abc, xyz",
		"BEDROCK_MODEL_ID": "anthropic.claude-3",
	}
	var cfg Config
	require.NoError(t, cfg.applyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "postgres://u:p@localhost/db", cfg.Database.DSN())
	assert.Equal(t, "g-key", cfg.Providers.Gemini.APIKey)
	assert.Equal(t, "http://gateway/v1", cfg.Providers.OpenAI.BaseURL)
	assert.Equal(t, "anthropic.claude-3", cfg.Providers.Bedrock.ModelID)
	assert.Equal(t, map[string]string{"web": "abc", "client-2": "xyz"}, cfg.Server.APIKeys)
}

func TestApplyEnv_BadPort(t *testing.T) {
	var cfg Config
	err := cfg.applyEnv(func(k string) string {
		if k == "PORT" {
			return "http"
		}
		return ""
	})
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	d := Database{Driver: "postgres", Host: "pg", User: "u", Password: "p", Name: "auspex"}
	assert.Equal(t, "host=pg port=5432 user=u password=p dbname=auspex sslmode=disable", d.DSN())
}
