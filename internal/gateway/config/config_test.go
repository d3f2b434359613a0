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
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// isolate keeps the developer's environment and working directory out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, name := range []string{
		"LIFESTREAM_CONFIG", "LLM_PROVIDER", "LLAMACPP_BASE_URL", "LLAMACPP_MODEL", "LLAMACPP_API_KEY",
		"LLAMACPP_TEMPERATURE", "PROVIDER_BASE_URL", "PROVIDER_MODEL_ID", "PROVIDER_API_KEY",
		"PROVIDER_TEMPERATURE", "DATABASE_URL", "SQLITE_PATH", "PORT", "TZ", "LIFESTREAM_TIMEZONE",
		"ARCHIVE_ENABLED", "MINIO_ROOT_USER", "MINIO_ROOT_PASSWORD", "LLM_TIMEOUT",
		"LLM_MAX_ATTEMPTS", "LLM_RETRY_BACKOFF",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadYAML(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
timezone: Asia/Shanghai
sqlite_path: data/lifestream.db
server:
  addr: ":9000"
llm:
  llm_provider: provider
  timeout: 30s
provider:
  base_url: https://api.example.com/v1
  model_id: some-model
  api_key: secret
  temperature: 0.5
pipeline:
  map_concurrency: 4
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "X-User-Id", cfg.Server.UserHeader)
	assert.Equal(t, BackendProvider, cfg.LLM.Backend)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 0.5, cfg.ReportTemperature())
	assert.Equal(t, 4, cfg.Pipeline.MapConcurrency)
	assert.Equal(t, 18000, cfg.Pipeline.DirectThresholdChars)
	assert.Equal(t, "Asia/Shanghai", cfg.Location().String())
}

func TestEnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
llamacpp:
  base_url: http://localhost:8080
  model: qwen
  temperature: 0.3
`)
	t.Setenv("PORT", "7000")
	t.Setenv("LLAMACPP_MODEL", "llama-3")
	t.Setenv("LLM_TIMEOUT", "5s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "llama-3", cfg.LlamaCpp.Model)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 0.3, cfg.ReportTemperature())
}

func TestLoadFromEnvOnly(t *testing.T) {
	isolate(t)
	t.Setenv("LLAMACPP_BASE_URL", "http://127.0.0.1:8080")
	t.Setenv("LLAMACPP_MODEL", "local")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg.LlamaCpp)
	assert.Equal(t, 0.3, cfg.LlamaCpp.Temperature)
}

func TestLlamaCppTemperatureDefault(t *testing.T) {
	isolate(t)
	cfg, err := Load(writeConfig(t, "llamacpp:\n  base_url: http://localhost:8080\n  model: qwen\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.3, cfg.ReportTemperature())

	cfg, err = Load(writeConfig(t, "llamacpp:\n  base_url: http://localhost:8080\n  model: qwen\n  temperature: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.ReportTemperature())
}

func TestMissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	isolate(t)
	cases := map[string]string{
		"missing backend section": "llm:\n  llm_provider: provider\n",
		"unknown backend":         "llm:\n  llm_provider: gemini\n",
		"relative url":            "llamacpp:\n  base_url: localhost:8080\n  model: m\n",
		"missing model":           "llamacpp:\n  base_url: http://localhost:8080\n",
		"provider without key":    "llm:\n  llm_provider: provider\nprovider:\n  base_url: https://x.io\n  model_id: m\n",
		"two databases":           "database_url: postgres://x\nsqlite_path: a.db\nllamacpp:\n  base_url: http://h\n  model: m\n",
		"bad timezone":            "timezone: Mars/Olympus\nllamacpp:\n  base_url: http://h\n  model: m\n",
		"archive incomplete":      "archive:\n  enabled: true\nllamacpp:\n  base_url: http://h\n  model: m\n",
		"zero attempts":           "llm:\n  max_attempts: 0\nllamacpp:\n  base_url: http://h\n  model: m\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
