// Package config loads settings from flags, environment, an optional YAML
// file and a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "MEDITRANSLATE"

const (
	KeyServerAddr      = "server.addr"
	KeySessionTTL      = "server.session_ttl"
	KeyRateLimit       = "server.rate_limit"
	KeyRateBurst       = "server.rate_burst"
	KeyGeminiAPIKey    = "gemini.api_key"
	KeyGeminiModel     = "gemini.model"
	KeyGeminiEndpoint  = "gemini.endpoint"
	KeyAnalysisTimeout = "analysis.timeout"
	KeyAnalysisStub    = "analysis.stub"
	KeyCheckLanguage   = "analysis.check_language"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
)

type Config struct {
	Server   ServerConfig
	Gemini   GeminiConfig
	Analysis AnalysisConfig
	Log      LogConfig
}

type ServerConfig struct {
	Addr       string
	SessionTTL time.Duration
	// RateLimit is the number of analyses a client may start per minute.
	// Zero disables limiting.
	RateLimit int
	RateBurst int
}

type GeminiConfig struct {
	APIKey   string
	Model    string
	Endpoint string
}

type AnalysisConfig struct {
	Timeout       time.Duration
	Stub          bool
	CheckLanguage bool
}

type LogConfig struct {
	Level  string
	Format string
}

// New returns a viper instance with defaults and environment bindings.
// The API key is also read from GEMINI_API_KEY and API_KEY.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyServerAddr, ":8080")
	v.SetDefault(KeySessionTTL, 30*time.Minute)
	v.SetDefault(KeyRateLimit, 5)
	v.SetDefault(KeyRateBurst, 2)
	v.SetDefault(KeyGeminiModel, "gemini-2.5-flash")
	v.SetDefault(KeyGeminiEndpoint, "")
	v.SetDefault(KeyAnalysisTimeout, time.Duration(0))
	v.SetDefault(KeyAnalysisStub, false)
	v.SetDefault(KeyCheckLanguage, true)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "cli")

	_ = v.BindEnv(KeyGeminiAPIKey, EnvPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY", "API_KEY")
	return v
}

// ReadFile merges a YAML config file into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding existing ones. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			log.WithField("file", p).Debug("no .env file, using environment")
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:       v.GetString(KeyServerAddr),
			SessionTTL: v.GetDuration(KeySessionTTL),
			RateLimit:  v.GetInt(KeyRateLimit),
			RateBurst:  v.GetInt(KeyRateBurst),
		},
		Gemini: GeminiConfig{
			APIKey:   strings.TrimSpace(v.GetString(KeyGeminiAPIKey)),
			Model:    v.GetString(KeyGeminiModel),
			Endpoint: v.GetString(KeyGeminiEndpoint),
		},
		Analysis: AnalysisConfig{
			Timeout:       v.GetDuration(KeyAnalysisTimeout),
			Stub:          v.GetBool(KeyAnalysisStub),
			CheckLanguage: v.GetBool(KeyCheckLanguage),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString(KeyLogLevel)),
			Format: strings.ToLower(v.GetString(KeyLogFormat)),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%s must not be empty", KeyServerAddr)
	}
	if c.Server.SessionTTL < 0 {
		return fmt.Errorf("%s must not be negative", KeySessionTTL)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("%s must not be negative", KeyRateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		return fmt.Errorf("%s must be at least 1 when %s is set", KeyRateBurst, KeyRateLimit)
	}
	if c.Analysis.Timeout < 0 {
		return fmt.Errorf("%s must not be negative", KeyAnalysisTimeout)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid %s %q: %w", KeyLogLevel, c.Log.Level, err)
	}
	switch c.Log.Format {
	case "cli", "json", "text":
	default:
		return fmt.Errorf("invalid %s %q: want cli, json or text", KeyLogFormat, c.Log.Format)
	}
	return nil
}
