// Package textgen turns a (mode, text) pair into a provider completion call:
// it resolves the mode's system prompt and forwards both messages downstream.
package textgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/lughati/lughati/internal/textgen/driver"
	"github.com/lughati/lughati/internal/textgen/driver/openai"
	"github.com/lughati/lughati/internal/textgen/prompt"
)

// Service generates rewritten text through a configured driver.
type Service struct {
	cfg    Config
	driver driver.Driver
	modes  prompt.Registry
}

// NewService wires the default OpenAI driver and the mode registry from
// config (embedded modes unless ModesDir is set).
func NewService(cfg Config) (*Service, error) {
	cfg = cfg.withDefaults()

	var (
		reg prompt.Registry
		err error
	)
	if dir := strings.TrimSpace(cfg.ModesDir); dir != "" {
		modes, loadErr := prompt.LoadFromDir(dir)
		if loadErr != nil {
			return nil, loadErr
		}
		reg, err = prompt.NewRegistry(modes)
	} else {
		reg, err = prompt.DefaultRegistry()
	}
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:    cfg,
		driver: openai.NewClient(cfg.BaseURL, cfg.Timeout),
		modes:  reg,
	}, nil
}

// NewServiceWithDriver is the test/injection constructor.
func NewServiceWithDriver(cfg Config, drv driver.Driver, modes prompt.Registry) *Service {
	return &Service{cfg: cfg.withDefaults(), driver: drv, modes: modes}
}

// Modes exposes the mode registry for listing endpoints.
func (s *Service) Modes() prompt.Registry {
	if s == nil {
		return nil
	}
	return s.modes
}

// HasServerCredential reports whether a shared provider credential is
// configured. Computed from config, never per request.
func (s *Service) HasServerCredential() bool {
	return s != nil && strings.TrimSpace(s.cfg.APIKey) != ""
}

// Generate rewrites text according to mode. apiKey, when non-empty, is the
// caller's own credential and takes precedence over the server key. The key
// is passed through to the driver and never logged.
func (s *Service) Generate(ctx context.Context, mode, text, apiKey string) (string, error) {
	if s == nil || s.driver == nil {
		return "", fmt.Errorf("generation service not configured")
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("input text cannot be empty")
	}

	def, err := s.modes.Get(mode)
	if err != nil {
		return "", err
	}

	key := strings.TrimSpace(apiKey)
	if key == "" {
		key = strings.TrimSpace(s.cfg.APIKey)
	}
	if key == "" {
		return "", fmt.Errorf("no provider credential available")
	}

	temperature := s.cfg.Temperature
	resp, err := s.driver.Complete(ctx, &driver.Request{
		Model: s.cfg.Model,
		Messages: []driver.Message{
			{Role: driver.RoleSystem, Content: def.SystemPrompt()},
			{Role: driver.RoleUser, Content: text},
		},
		Temperature: &temperature,
		APIKey:      key,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(resp.Text), nil
}
