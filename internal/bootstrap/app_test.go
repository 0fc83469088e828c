package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsvc "studyai/internal/app"
	"studyai/internal/config"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONFIG_FILE", filepath.Join(dir, "missing.toml"))
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", filepath.Join(dir, "studyai.db")+"?_pragma=foreign_keys(1)")
	t.Setenv("STORAGE_DIR", filepath.Join(dir, "materials"))
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("RABBITMQ_URL", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestBuildWithOptionalDependenciesDisabled(t *testing.T) {
	cfg := sqliteConfig(t)

	a, err := Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Nil(t, a.Redis)
	assert.Nil(t, a.MQConn)
	assert.Nil(t, a.ExtractWorker)
	require.NotNil(t, a.Chat)
	require.NotNil(t, a.Quiz)
	require.NotNil(t, a.Recite)

	session, err := a.Chat.CreateSession(appsvc.CreateSessionInput{Title: "boot"})
	require.NoError(t, err)
	_, err = a.Chat.GetSession(session.ID)
	require.NoError(t, err)

	_, err = a.Quiz.Score(context.Background(), "any", nil)
	assert.ErrorIs(t, err, appsvc.ErrQuizStoreDisabled)
}

func TestBuildFailsOnUnreachableRedis(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Redis.Addr = "127.0.0.1:1"

	_, err := Build(context.Background(), cfg, nil)
	assert.Error(t, err)
}
