package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"QF_LOG_LEVEL", "QF_LOG_FORMAT", "QF_MAX_EXPANSION", "WORKER_COUNT",
		"DATABASE_URL", "NEO4J_URI", "NEO4J_USER", "NEO4J_PASSWORD",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, 1<<16, cfg.MaxExpansion)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4jURI)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("QF_LOG_LEVEL", "debug")
	t.Setenv("QF_LOG_FORMAT", "json")
	t.Setenv("QF_MAX_EXPANSION", "100")
	t.Setenv("WORKER_COUNT", "not-a-number")
	t.Setenv("DATABASE_URL", "postgres://db/blueprints")

	cfg := Load()
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 100, cfg.MaxExpansion)
	assert.Equal(t, 8, cfg.WorkerCount, "invalid integers fall back")
	assert.Equal(t, "postgres://db/blueprints", cfg.DatabaseURL)
}
