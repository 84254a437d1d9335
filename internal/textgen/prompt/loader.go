package prompt

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load parses and validates a mode definition from markdown bytes.
func Load(source string, data []byte) (*Mode, error) {
	config, body, err := parseYAMLWithFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("parse mode %s: %w", source, err)
	}

	if strings.TrimSpace(config.SystemTemplate) == "" {
		config.SystemTemplate = strings.TrimSpace(body)
	}

	if strings.TrimSpace(config.Slug) == "" {
		return nil, fmt.Errorf("mode %s missing slug", source)
	}
	if strings.TrimSpace(config.SystemTemplate) == "" {
		return nil, fmt.Errorf("mode %s missing system_template", source)
	}

	return &Mode{Config: config, Source: source}, nil
}

// LoadFromDir reads all mode files (.md with YAML frontmatter) from a
// directory. Used when config overrides the built-in mode set.
func LoadFromDir(dir string) ([]*Mode, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("scan modes: %w", err)
	}
	results := make([]*Mode, 0, len(entries))
	for _, path := range entries {
		data, err := os.ReadFile(path) // #nosec G304 -- mode path is operator-provided
		if err != nil {
			return nil, fmt.Errorf("read mode %s: %w", path, err)
		}
		mode, err := Load(path, data)
		if err != nil {
			return nil, err
		}
		results = append(results, mode)
	}
	return results, nil
}

func parseYAMLWithFrontmatter(data []byte) (Config, string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Config{}, "", fmt.Errorf("empty mode definition")
	}

	lines := bufio.NewScanner(bytes.NewReader(trimmed))
	lines.Split(bufio.ScanLines)

	var (
		frontmatter []string
		body        []string
		inFront     bool
		frontDone   bool
	)

	first := true
	for lines.Scan() {
		line := lines.Text()
		switch {
		case first && strings.TrimSpace(line) == "---":
			inFront = true
		case inFront && strings.TrimSpace(line) == "---":
			inFront = false
			frontDone = true
		case inFront:
			frontmatter = append(frontmatter, line)
		default:
			body = append(body, line)
		}
		first = false
	}
	if err := lines.Err(); err != nil {
		return Config{}, "", err
	}
	if inFront {
		return Config{}, "", fmt.Errorf("unterminated frontmatter")
	}

	var config Config
	if frontDone {
		if err := yaml.Unmarshal([]byte(strings.Join(frontmatter, "\n")), &config); err != nil {
			return Config{}, "", err
		}
	}

	return config, strings.Join(body, "\n"), nil
}
