package output

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/lughati/lughati/internal/store"
)

// FormatUsageSummary renders aggregated ledger activity.
func FormatUsageSummary(format Format, summary *store.UsageSummary) (string, error) {
	if summary == nil {
		return "", nil
	}

	if format == FormatJSON {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRow(table.Row{"Since", summary.Since.UTC().Format(time.RFC3339)})
	t.AppendRow(table.Row{"Total requests", summary.TotalRequests})
	t.AppendRow(table.Row{"Allowed", summary.Allowed})
	t.AppendRow(table.Row{"Denied", summary.Denied})
	t.AppendRow(table.Row{"Unique clients", summary.UniqueClients})

	for _, key := range sortedKeys(summary.ByReason) {
		t.AppendRow(table.Row{"Denied: " + key, summary.ByReason[key]})
	}
	for _, key := range sortedKeys(summary.ByMode) {
		t.AppendRow(table.Row{"Mode: " + key, summary.ByMode[key]})
	}

	if format == FormatMarkdown {
		return t.RenderMarkdown(), nil
	}
	return t.Render(), nil
}

// FormatUsageEvents renders recent ledger events, newest first.
func FormatUsageEvents(format Format, events []store.UsageEvent) (string, error) {
	if format == FormatJSON {
		data, err := json.MarshalIndent(events, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Time", "Client", "Mode", "Length", "Outcome", "Tier"})
	for _, ev := range events {
		t.AppendRow(table.Row{
			ev.CreatedAt.UTC().Format(time.RFC3339),
			ev.ClientID,
			ev.Mode,
			ev.TextLength,
			outcomeLabel(ev),
			tierLabel(ev),
		})
	}

	if format == FormatMarkdown {
		return t.RenderMarkdown(), nil
	}
	return t.Render(), nil
}

func outcomeLabel(ev store.UsageEvent) string {
	if ev.Allowed {
		return "allowed"
	}
	if ev.Reason != "" {
		return fmt.Sprintf("denied (%s)", ev.Reason)
	}
	return "denied"
}

func tierLabel(ev store.UsageEvent) string {
	if ev.BYOKey {
		return "byo-key"
	}
	return "free"
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
