package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:8000/api", cfg.ServerURL)
	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PMDESK_SERVER_URL", "http://api.internal:9000")
	t.Setenv("PMDESK_PAGE_SIZE", "20")
	t.Setenv("PMDESK_LOG_LEVEL", "DEBUG")

	cfg := DefaultConfig()
	cfg.applyEnv()

	assert.Equal(t, "http://api.internal:9000", cfg.ServerURL)
	assert.Equal(t, 20, cfg.PageSize)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestBadPageSizeIgnored(t *testing.T) {
	t.Setenv("PMDESK_PAGE_SIZE", "zero")

	cfg := DefaultConfig()
	cfg.applyEnv()

	assert.Equal(t, 5, cfg.PageSize)
}
