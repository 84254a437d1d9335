package prompt

import (
	"embed"
	"fmt"
)

//go:embed modes/*.md
var defaultModesFS embed.FS

// LoadDefaults loads the embedded mode set.
func LoadDefaults() ([]*Mode, error) {
	entries, err := defaultModesFS.ReadDir("modes")
	if err != nil {
		return nil, fmt.Errorf("read embedded modes: %w", err)
	}
	results := make([]*Mode, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := defaultModesFS.ReadFile("modes/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read embedded mode %s: %w", entry.Name(), err)
		}
		mode, err := Load(entry.Name(), data)
		if err != nil {
			return nil, err
		}
		results = append(results, mode)
	}
	return results, nil
}

// DefaultRegistry builds a registry from the embedded modes.
func DefaultRegistry() (Registry, error) {
	modes, err := LoadDefaults()
	if err != nil {
		return nil, err
	}
	return NewRegistry(modes)
}
