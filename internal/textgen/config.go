package textgen

import "time"

// Config defines the downstream provider configuration.
type Config struct {
	// BaseURL overrides the provider endpoint (e.g. for a compatible proxy).
	BaseURL string `mapstructure:"base_url"`

	// Model is the completion model, gpt-4o-mini unless overridden.
	Model string `mapstructure:"model"`

	// APIKey is the server's shared credential. Empty is valid: the service
	// then only serves callers supplying their own key.
	APIKey string `mapstructure:"api_key"`

	// Timeout bounds one provider call.
	Timeout time.Duration `mapstructure:"timeout"`

	// Temperature for completions.
	Temperature float64 `mapstructure:"temperature"`

	// ModesDir overrides the built-in mode set with definitions from disk.
	ModesDir string `mapstructure:"modes_dir"`
}

// Defaults mirror the original deployment's environment defaults.
const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTimeout     = 60 * time.Second
	DefaultTemperature = 0.7
)

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	return c
}
