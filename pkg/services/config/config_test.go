package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")

	cfg, err := LoadConfig("")

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "data/soc_reports.json", cfg.Data.Source)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
	assert.Equal(t, 5, cfg.Gemini.MaxRetries)
	assert.Equal(t, 3*time.Second, cfg.Gemini.RetryDelay)
	assert.Equal(t, DocAIConfig{Location: "us"}, cfg.DocAI)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_ValidYAML_PopulatesAllFields(t *testing.T) {
	// Given
	dir := t.TempDir()
	path := filepath.Join(dir, "soc-atlas.yaml")
	content := `server:
  host: "0.0.0.0"
  port: 9090
  shutdown_timeout: "30s"
data:
  source: "https://reports.example.com/data/soc_reports.json"
s3:
  bucket: "soc-site"
  key: "data/reports.json"
  profile: "prod"
gemini:
  api_key: "from-file"
  model: "gemini-2.5-flash"
  max_retries: 2
  retry_delay: "500ms"
docai:
  project: "soc-project"
  location: "eu"
  processor: "abc123"
log:
  level: "debug"
  file: "/var/log/soc-atlas.log"`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	// When
	cfg, err := LoadConfig(path)

	// Then
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "https://reports.example.com/data/soc_reports.json", cfg.Data.Source)
	assert.Equal(t, S3Config{Region: "us-east-1", Profile: "prod", Bucket: "soc-site", Key: "data/reports.json"}, cfg.S3)
	assert.Equal(t, GeminiConfig{APIKey: "from-file", Model: "gemini-2.5-flash", MaxRetries: 2, RetryDelay: 500 * time.Millisecond}, cfg.Gemini)
	assert.Equal(t, DocAIConfig{Project: "soc-project", Location: "eu", Processor: "abc123"}, cfg.DocAI)
	assert.Equal(t, LogConfig{Level: "debug", File: "/var/log/soc-atlas.log"}, cfg.Log)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SOC_ATLAS_SERVER_PORT", "7070")
	t.Setenv("SOC_ATLAS_DATA_SOURCE", "s3://soc-site/data/soc_reports.json")
	t.Setenv("SOC_ATLAS_GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("SOC_ATLAS_DOCAI_PROCESSOR", "env-processor")

	cfg, err := LoadConfig("")

	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "s3://soc-site/data/soc_reports.json", cfg.Data.Source)
	assert.Equal(t, "google-key", cfg.Gemini.APIKey)
	assert.Equal(t, "env-processor", cfg.DocAI.Processor)
}

func TestLoadConfig_InvalidYAML_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: port: : bad"), 0o644))

	_, err := LoadConfig(path)

	assert.Error(t, err)
}

func TestLoadConfig_MissingFile_ReturnsError(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Error(t, err)
}
