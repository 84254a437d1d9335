package prompt

import (
	"fmt"
	"sort"
	"strings"
)

// Registry provides access to mode definitions.
type Registry interface {
	Get(slug string) (*Mode, error)
	List() []*Mode
}

// InMemoryRegistry stores modes by slug.
type InMemoryRegistry struct {
	modes map[string]*Mode
}

// NewRegistry builds a registry from modes.
func NewRegistry(modes []*Mode) (*InMemoryRegistry, error) {
	reg := &InMemoryRegistry{modes: make(map[string]*Mode)}
	for _, mode := range modes {
		if mode == nil {
			continue
		}
		slug := strings.TrimSpace(mode.Config.Slug)
		if slug == "" {
			return nil, fmt.Errorf("mode missing slug")
		}
		if _, ok := reg.modes[slug]; ok {
			return nil, fmt.Errorf("duplicate mode slug: %s", slug)
		}
		reg.modes[slug] = mode
	}
	return reg, nil
}

// Get returns the mode for the slug.
func (r *InMemoryRegistry) Get(slug string) (*Mode, error) {
	if r == nil {
		return nil, fmt.Errorf("mode registry not configured")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("mode slug is required")
	}
	mode, ok := r.modes[slug]
	if !ok {
		return nil, &UnknownModeError{Slug: slug, Available: r.Slugs()}
	}
	return mode, nil
}

// List returns modes sorted by slug.
func (r *InMemoryRegistry) List() []*Mode {
	if r == nil {
		return nil
	}
	slugs := r.Slugs()
	result := make([]*Mode, 0, len(slugs))
	for _, slug := range slugs {
		result = append(result, r.modes[slug])
	}
	return result
}

// Slugs returns the sorted mode identifiers.
func (r *InMemoryRegistry) Slugs() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, len(r.modes))
	for slug := range r.modes {
		keys = append(keys, slug)
	}
	sort.Strings(keys)
	return keys
}

// UnknownModeError reports a lookup for a slug the registry does not hold.
type UnknownModeError struct {
	Slug      string
	Available []string
}

func (e *UnknownModeError) Error() string {
	return fmt.Sprintf("unknown mode: %s (available: %s)", e.Slug, strings.Join(e.Available, ", "))
}
