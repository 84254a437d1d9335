// Package config provides centralized configuration management for Lughati.
// Precedence, lowest to highest: code defaults, an optional YAML config
// file, LUGHATI_* environment variables. OPENAI_API_KEY is additionally
// honored as the conventional name for the shared provider credential.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/lughati/lughati/internal/textgen"
)

// EnvPrefix is the environment variable prefix for overrides, e.g.
// LUGHATI_SERVER_PORT maps to server.port.
const EnvPrefix = "LUGHATI"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.trust_forwarded_for", true)

	v.SetDefault("gate.max_text_length", 2500)
	v.SetDefault("gate.max_requests", 30)
	v.SetDefault("gate.window", 600*time.Second)
	v.SetDefault("gate.min_interval", time.Second)
	v.SetDefault("gate.daily_free_limit", 5)

	v.SetDefault("generate.model", textgen.DefaultModel)
	v.SetDefault("generate.timeout", textgen.DefaultTimeout)
	v.SetDefault("generate.temperature", textgen.DefaultTemperature)

	v.SetDefault("store.enabled", false)
	v.SetDefault("store.path", "lughati.db")

	v.SetDefault("logging.level", "info")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
}

// Load builds the configuration. cfgFile may be empty; a missing explicit
// file is an error, a missing default file is not.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("lughati")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(home + "/lughati")
		}
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	decodeHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook)); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// The conventional provider env var wins over file config but not over
	// an explicit LUGHATI_GENERATE_API_KEY.
	if cfg.Generate.APIKey == "" {
		cfg.Generate.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Gate.MaxTextLength <= 0 {
		return fmt.Errorf("gate.max_text_length must be positive")
	}
	if c.Gate.MaxRequests <= 0 {
		return fmt.Errorf("gate.max_requests must be positive")
	}
	if c.Gate.Window <= 0 {
		return fmt.Errorf("gate.window must be positive")
	}
	if c.Gate.MinInterval < 0 {
		return fmt.Errorf("gate.min_interval cannot be negative")
	}
	if c.Gate.DailyFreeLimit <= 0 {
		return fmt.Errorf("gate.daily_free_limit must be positive")
	}
	if c.Store.Enabled && strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store.path is required when store.enabled")
	}
	return nil
}
