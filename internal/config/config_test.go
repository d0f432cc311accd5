package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "API_KEY", "MEDITRANSLATE_GEMINI_API_KEY", "MEDITRANSLATE_SERVER_ADDR", "MEDITRANSLATE_LOG_FORMAT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionTTL)
	assert.Equal(t, 5, cfg.Server.RateLimit)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Empty(t, cfg.Gemini.APIKey)
	assert.Zero(t, cfg.Analysis.Timeout)
	assert.True(t, cfg.Analysis.CheckLanguage)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "cli", cfg.Log.Format)
}

func TestLoad_APIKeyEnv(t *testing.T) {
	tests := []struct {
		name string
		env  string
	}{
		{"prefixed", "MEDITRANSLATE_GEMINI_API_KEY"},
		{"gemini", "GEMINI_API_KEY"},
		{"generic", "API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.env, " secret ")

			cfg, err := Load(New())
			require.NoError(t, err)
			assert.Equal(t, "secret", cfg.Gemini.APIKey)
		})
	}
}

func TestLoad_PrefixedEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("MEDITRANSLATE_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("MEDITRANSLATE_LOG_FORMAT", "JSON")

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestReadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "meditranslate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
  session_ttl: 5m
analysis:
  timeout: 90s
  stub: true
`), 0o644))

	v := New()
	require.NoError(t, ReadFile(v, path))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Server.SessionTTL)
	assert.Equal(t, 90*time.Second, cfg.Analysis.Timeout)
	assert.True(t, cfg.Analysis.Stub)
}

func TestReadFile_Missing(t *testing.T) {
	assert.NoError(t, ReadFile(New(), ""))
	assert.Error(t, ReadFile(New(), filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_API_KEY=from-dotenv\n"), 0o644))

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "absent.env")))
	t.Cleanup(func() { os.Unsetenv("GEMINI_API_KEY") })

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Gemini.APIKey)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Addr: ":8080", RateLimit: 5, RateBurst: 1},
			Log:    LogConfig{Level: "info", Format: "cli"},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"negative ttl", func(c *Config) { c.Server.SessionTTL = -time.Second }},
		{"negative rate", func(c *Config) { c.Server.RateLimit = -1 }},
		{"zero burst", func(c *Config) { c.Server.RateBurst = 0 }},
		{"negative timeout", func(c *Config) { c.Analysis.Timeout = -time.Second }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
