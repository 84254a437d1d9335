package output

import (
	"encoding/json"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/lughati/lughati/internal/textgen/prompt"
)

type modeEntry struct {
	Slug        string `json:"slug"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// FormatModes renders the mode registry listing in the requested format.
func FormatModes(format Format, modes []*prompt.Mode) (string, error) {
	entries := make([]modeEntry, 0, len(modes))
	for _, m := range modes {
		if m == nil {
			continue
		}
		entries = append(entries, modeEntry{
			Slug:        m.Config.Slug,
			Name:        m.Config.Name,
			Description: m.Config.Description,
		})
	}

	if format == FormatJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	t := table.NewWriter()
	if format == FormatMarkdown {
		t.SetStyle(table.StyleDefault)
	} else {
		t.SetStyle(table.StyleRounded)
	}
	t.AppendHeader(table.Row{"Slug", "Name", "Description"})
	for _, e := range entries {
		t.AppendRow(table.Row{e.Slug, e.Name, e.Description})
	}

	if format == FormatMarkdown {
		return t.RenderMarkdown(), nil
	}
	return t.Render(), nil
}
