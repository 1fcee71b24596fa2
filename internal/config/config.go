package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/medtrace-labs/medverify-cli/internal/reconcile"
	"github.com/medtrace-labs/medverify-cli/internal/resolve"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Match     MatchConfig     `yaml:"match" mapstructure:"match"`
	Aliases   AliasConfig     `yaml:"aliases" mapstructure:"aliases"`
	Registry  RegistryConfig  `yaml:"registry" mapstructure:"registry"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the reference-data backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// MatchConfig holds the matching and classification thresholds. All three
// are explicit configuration, never hard-coded constants.
type MatchConfig struct {
	LookupThreshold       float64 `yaml:"lookup_threshold" mapstructure:"lookup_threshold"`
	CorrectThreshold      float64 `yaml:"correct_threshold" mapstructure:"correct_threshold"`
	MinorOverageThreshold float64 `yaml:"minor_overage_threshold" mapstructure:"minor_overage_threshold"`
	Workers               int     `yaml:"workers" mapstructure:"workers"`
}

// ResolverConfig adapts the match section for the resolver.
func (m MatchConfig) ResolverConfig() resolve.Config {
	return resolve.Config{
		LookupThreshold:  m.LookupThreshold,
		CorrectThreshold: m.CorrectThreshold,
	}
}

// PipelineConfig adapts the match section for the reconciliation pipeline.
func (m MatchConfig) PipelineConfig() reconcile.Config {
	return reconcile.Config{
		MinorOverageThreshold: m.MinorOverageThreshold,
		Workers:               m.Workers,
	}
}

// AliasConfig points at an optional alias-table override file.
type AliasConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// RegistryConfig configures allocation-registry snapshot sync.
type RegistryConfig struct {
	SourceURL string `yaml:"source_url" mapstructure:"source_url"`
	TempDir   string `yaml:"temp_dir" mapstructure:"temp_dir"`
	Sheet     string `yaml:"sheet" mapstructure:"sheet"`
	SkipRows  int    `yaml:"skip_rows" mapstructure:"skip_rows"`
}

// AnthropicConfig holds the scan-extraction model settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port      int     `yaml:"port" mapstructure:"port"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MEDVERIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "medverify.db")
	v.SetDefault("match.lookup_threshold", 0.30)
	v.SetDefault("match.correct_threshold", 0.70)
	v.SetDefault("match.minor_overage_threshold", 0.20)
	v.SetDefault("match.workers", 4)
	v.SetDefault("registry.temp_dir", "/tmp/medverify")
	v.SetDefault("registry.skip_rows", 1)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
