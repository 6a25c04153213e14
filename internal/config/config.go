package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/nikbrunner/bmark/internal/i18n"
	"github.com/nikbrunner/bmark/internal/logger"
	"github.com/nikbrunner/bmark/internal/storage"
)

const (
	envPrefix = "BM"

	ThemeDark  = "dark"
	ThemeLight = "light"
)

type (
	Config struct {
		DBPath    string `mapstructure:"db_path"`
		UserID    string `mapstructure:"user_id"`
		UserName  string `mapstructure:"user_name"`
		UserEmail string `mapstructure:"user_email"`

		LogLevel  string `mapstructure:"log_level"`
		PrettyLog bool   `mapstructure:"pretty_log"`

		Language      string `mapstructure:"language"`
		Theme         string `mapstructure:"theme"`
		CollateLocale string `mapstructure:"collate_locale"`

		CommandTimeout    time.Duration `mapstructure:"command_timeout"`
		CompletionTimeout time.Duration `mapstructure:"completion_timeout"`
		CompletionURL     string        `mapstructure:"completion_url"`
		CompletionModel   string        `mapstructure:"completion_model"`
		AnthropicAPIKey   string        `mapstructure:"anthropic_api_key"`

		RedisAddr     string `mapstructure:"redis_addr"`
		RedisPassword string `mapstructure:"redis_password"`
		RedisDB       int    `mapstructure:"redis_db"`

		CullExcludeDomains []string      `mapstructure:"cull_exclude_domains"`
		CullConcurrency    int           `mapstructure:"cull_concurrency"`
		CullTimeout        time.Duration `mapstructure:"cull_timeout"`
	}
)

var keys = []string{
	"db_path", "user_id", "user_name", "user_email",
	"log_level", "pretty_log",
	"language", "theme", "collate_locale",
	"command_timeout", "completion_timeout", "completion_url", "completion_model",
	"redis_addr", "redis_password", "redis_db",
	"cull_exclude_domains", "cull_concurrency", "cull_timeout",
}

// DefaultPath returns ~/.config/bm/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "bm", "config.yaml"), nil
}

// Load reads configuration from defaults, the config file and BM_*
// environment variables, in increasing precedence. An explicit path must
// exist; the default file is optional.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)

	dbPath, err := storage.DefaultSQLitePath()
	if err != nil {
		return nil, errors.Wrap(err, "resolve default database path")
	}

	v.SetDefault("db_path", dbPath)
	v.SetDefault("user_id", "local")
	v.SetDefault("user_name", "")
	v.SetDefault("user_email", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("pretty_log", true)
	v.SetDefault("language", i18n.DefaultLanguage)
	v.SetDefault("theme", ThemeDark)
	v.SetDefault("collate_locale", "en")
	v.SetDefault("command_timeout", 15*time.Second)
	v.SetDefault("completion_timeout", 30*time.Second)
	v.SetDefault("completion_url", "https://api.anthropic.com/v1/messages")
	v.SetDefault("completion_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("cull_exclude_domains", []string{})
	v.SetDefault("cull_concurrency", 10)
	v.SetDefault("cull_timeout", 10*time.Second)

	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}
	if err := v.BindEnv("anthropic_api_key", envPrefix+"_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"); err != nil {
		return nil, err
	}

	if err := readFile(v, path); err != nil {
		return nil, err
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	cfg.CullExcludeDomains = splitList(cfg.CullExcludeDomains)

	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

func readFile(v *viper.Viper, path string) error {
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil
		}
		if _, err := os.Stat(defaultPath); os.IsNotExist(err) {
			return nil
		}
		path = defaultPath
	}
	v.SetConfigFile(path)
	return errors.Wrapf(v.ReadInConfig(), "read config %s", path)
}

// splitList flattens comma separated entries, as given through env vars.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.DBPath) == "" {
		return errors.New("db_path is empty")
	}
	if !logger.ValidLevel(cfg.LogLevel) {
		return errors.New(fmt.Sprintf("log level is invalid: %s", cfg.LogLevel))
	}
	if !i18n.Supported(cfg.Language) {
		return errors.New(fmt.Sprintf("language is not supported: %s (have %s)",
			cfg.Language, strings.Join(i18n.Languages(), ", ")))
	}
	if cfg.Theme != ThemeDark && cfg.Theme != ThemeLight {
		return errors.New(fmt.Sprintf("theme is invalid: %s", cfg.Theme))
	}
	if _, err := language.Parse(cfg.CollateLocale); err != nil {
		return errors.Wrapf(err, "collate locale is invalid: %s", cfg.CollateLocale)
	}
	for name, d := range map[string]time.Duration{
		"command_timeout":    cfg.CommandTimeout,
		"completion_timeout": cfg.CompletionTimeout,
		"cull_timeout":       cfg.CullTimeout,
	} {
		if d <= 0 {
			return errors.New(fmt.Sprintf("%s must be positive, got %s", name, d))
		}
	}
	if cfg.CullConcurrency <= 0 {
		return errors.New(fmt.Sprintf("cull_concurrency must be positive, got %d", cfg.CullConcurrency))
	}
	return nil
}

// Locale returns the collation language.
func (c *Config) Locale() language.Tag {
	tag, err := language.Parse(c.CollateLocale)
	if err != nil {
		return language.English
	}
	return tag
}
