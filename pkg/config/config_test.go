package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORAGE_DRIVER", "OPENAI_API_KEY", "LLM_TIMEOUT", "SWEEP_STALE_AFTER", "CORS_ORIGINS", "GENERATION_WORKERS"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Empty(t, cfg.LLM.APIKey)
	assert.Equal(t, 90*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 15*time.Minute, cfg.Sweeper.StaleAfter)
	assert.Equal(t, 2, cfg.Generation.Workers)
	assert.Empty(t, cfg.Server.CORSOrigins)
	require.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("LLM_TIMEOUT", "45")
	t.Setenv("SWEEP_STALE_AFTER", "10m")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("GENERATION_WORKERS", "not a number")
	t.Setenv("CORS_ORIGINS", "http://a.local, ,http://b.local")

	cfg := FromEnv()
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Sweeper.StaleAfter)
	assert.Equal(t, 0.2, cfg.LLM.Temperature)
	assert.Equal(t, 2, cfg.Generation.Workers)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.Server.CORSOrigins)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }},
		{"no workers", func(c *Config) { c.Generation.Workers = 0 }},
		{"no queue", func(c *Config) { c.Generation.QueueSize = -1 }},
		{"temperature too high", func(c *Config) { c.LLM.Temperature = 2.5 }},
		{"sweeper faster than model timeout", func(c *Config) { c.Sweeper.StaleAfter = c.LLM.Timeout }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := FromEnv()
			cfg.Storage.Driver = "file"
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
