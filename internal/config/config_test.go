package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port, "unparseable PORT falls back to the default")
	assert.Equal(t, BackendPostgres, cfg.Database.Backend)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, 2*time.Hour, cfg.Practice.TotalTime)
	assert.Equal(t, 60*time.Second, cfg.Practice.QuestionTime)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("STORAGE_BACKEND", BackendMemory)
	t.Setenv("OPENAI_API_KEY", "sk-test-1234567890")
	t.Setenv("OPENAI_BASE_URL", "http://llm.local/v1/")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_EXTRA_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, BackendMemory, cfg.Database.Backend)
	assert.True(t, cfg.AI.Enabled())
	assert.Equal(t, "sk-test-12...", cfg.AI.MaskedKey())
	assert.Equal(t, "http://llm.local/v1", cfg.AI.BaseURL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.ExtraOrigins)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 5000},
			Database: DatabaseConfig{Backend: BackendPostgres, DSN: "postgres://x"},
			Practice: PracticeConfig{TotalTime: time.Hour, QuestionTime: time.Minute, Retention: time.Minute, ReapInterval: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, true},
		{"postgres without dsn", func(c *Config) { c.Database.DSN = "" }, true},
		{"memory without dsn", func(c *Config) { c.Database.Backend = BackendMemory; c.Database.DSN = "" }, false},
		{"unknown backend", func(c *Config) { c.Database.Backend = "mongo" }, true},
		{"zero total time", func(c *Config) { c.Practice.TotalTime = 0 }, true},
		{"negative reap interval", func(c *Config) { c.Practice.ReapInterval = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAllowedOrigins(t *testing.T) {
	c := CORSConfig{
		FrontendURL:  "http://localhost:3000",
		ExtraOrigins: []string{"https://careerlens.app"},
	}
	assert.Equal(t, []string{
		"http://localhost:3000",
		"http://localhost:3001",
		"http://localhost:5173",
		"https://careerlens.app",
	}, c.AllowedOrigins())
}
