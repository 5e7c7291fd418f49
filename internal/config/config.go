// Package config provides configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the agent,
// e.g. POSTAGENT_SERVER_ADDR for server.addr.
const EnvPrefix = "POSTAGENT"

// Config holds the application configuration. Values come from defaults,
// an optional YAML file and POSTAGENT_* environment variables, in increasing
// order of precedence.
type Config struct {
	DataDir   string          `mapstructure:"data_dir"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Posts     PostsConfig     `mapstructure:"posts"`
	Server    ServerConfig    `mapstructure:"server"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Selection SelectionConfig `mapstructure:"selection"`
	Scraper   ScraperConfig   `mapstructure:"scraper"`
	Log       LogConfig       `mapstructure:"log"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max_retries"`
}

type PostsConfig struct {
	Backend     string `mapstructure:"backend"` // json, sqlite or postgres
	DatabaseURL string `mapstructure:"database_url"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type SchedulerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Spec    string `mapstructure:"spec"` // cron expression with a seconds field
}

type SelectionConfig struct {
	MaxArticles int `mapstructure:"max_articles"`
}

type ScraperConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "./data")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.max_retries", 3)
	v.SetDefault("posts.backend", "json")
	v.SetDefault("posts.database_url", "")
	v.SetDefault("server.addr", ":5001")
	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.spec", "0 0 * * * *")
	v.SetDefault("selection.max_articles", 3)
	v.SetDefault("scraper.timeout", "15s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the configuration. configFile may be empty, in which case an
// optional postagent.yaml in the working directory or the user config
// directory is used.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The Gemini key is commonly exported without the prefix.
	if err := v.BindEnv("gemini.api_key", EnvPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind api key env: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("postagent")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "postagent"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors. The Gemini API key is not
// checked here because read-only commands work without it.
func (c *Config) Validate() error {
	var errs []error

	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	switch c.Posts.Backend {
	case "json", "sqlite":
	case "postgres":
		if c.Posts.DatabaseURL == "" {
			errs = append(errs, errors.New("posts.database_url is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("posts.backend must be json, sqlite or postgres, got %q", c.Posts.Backend))
	}
	if c.Gemini.Model == "" {
		errs = append(errs, errors.New("gemini.model is required"))
	}
	if c.Gemini.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("gemini.max_retries must not be negative, got %d", c.Gemini.MaxRetries))
	}
	if c.Selection.MaxArticles <= 0 {
		errs = append(errs, fmt.Errorf("selection.max_articles must be positive, got %d", c.Selection.MaxArticles))
	}
	if c.Scraper.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("scraper.timeout must be positive, got %s", c.Scraper.Timeout))
	}
	if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor).Parse(c.Scheduler.Spec); err != nil {
		errs = append(errs, fmt.Errorf("scheduler.spec is invalid: %w", err))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// RequireAPIKey reports an error when no Gemini API key is configured.
func (c *Config) RequireAPIKey() error {
	if c.Gemini.APIKey == "" {
		return errors.New("config: GEMINI_API_KEY (or GOOGLE_API_KEY) is required to generate posts")
	}
	return nil
}
