// Package prompt holds the processing-mode definitions: each mode is a named
// system prompt the service forwards to the provider ahead of the user text.
package prompt

// Config describes a mode definition loaded from a markdown file with YAML
// frontmatter.
type Config struct {
	Slug        string `yaml:"slug" json:"slug"`
	Name        string `yaml:"name,omitempty" json:"name,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// SystemTemplate is the system prompt text. When empty in the
	// frontmatter, the markdown body is used.
	SystemTemplate string `yaml:"system_template,omitempty" json:"system_template,omitempty"`
}

// Mode wraps a validated mode configuration with its source.
type Mode struct {
	Config Config
	Source string
}

// Slug returns the mode identifier.
func (m *Mode) Slug() string {
	if m == nil {
		return ""
	}
	return m.Config.Slug
}

// SystemPrompt returns the system prompt text for this mode.
func (m *Mode) SystemPrompt() string {
	if m == nil {
		return ""
	}
	return m.Config.SystemTemplate
}
