package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "llama3.1:8b", cfg.LLM.Model)
	assert.False(t, cfg.LLM.EnableVideoAnalysis)
	assert.Equal(t, int64(50<<20), cfg.MaxUploadBytes())
	assert.Contains(t, cfg.DatabaseDSN(), "parseTime=true")
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[app]
port = 9000

[database]
driver = "sqlite"

[llm]
model = "mistral"
enable_video_analysis = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("OLLAMA_MODEL", "llama3.1")
	t.Setenv("REDIS_QUIZ_TTL_SECONDS", "120")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/studyai.db?_pragma=foreign_keys(1)", cfg.DatabaseDSN())
	assert.Equal(t, "llama3.1", cfg.LLM.Model)
	assert.True(t, cfg.LLM.EnableVideoAnalysis)
	assert.Equal(t, 120, cfg.Redis.QuizTTLSeconds)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("DATABASE_DRIVER", "oracle")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestEnvHelpersFallBackOnGarbage(t *testing.T) {
	t.Setenv("STUDYAI_TEST_INT", "nope")
	t.Setenv("STUDYAI_TEST_BOOL", "maybe")

	assert.Equal(t, 7, getEnvAsInt("STUDYAI_TEST_INT", 7))
	assert.True(t, getEnvAsBool("STUDYAI_TEST_BOOL", true))
}
