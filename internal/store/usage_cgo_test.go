//go:build cgo

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lughati/lughati/internal/config"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	s, err := Open(ctx, config.StoreConfig{Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndSummarizeUsage(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	events := []UsageEvent{
		{ClientID: "1.2.3.4", Mode: "grammar_fix", TextLength: 40, Allowed: true, DurationMs: 900, CreatedAt: base},
		{ClientID: "1.2.3.4", Mode: "grammar_fix", TextLength: 55, Allowed: true, DurationMs: 1100, CreatedAt: base.Add(time.Minute)},
		{ClientID: "5.6.7.8", Mode: "translate_en_ar", TextLength: 10, Allowed: true, BYOKey: true, CreatedAt: base.Add(2 * time.Minute)},
		{ClientID: "5.6.7.8", Mode: "grammar_fix", TextLength: 9000, Allowed: false, Reason: "text_too_long", CreatedAt: base.Add(3 * time.Minute)},
		{ClientID: "9.9.9.9", Allowed: false, Reason: "daily_cap_exceeded", CreatedAt: base.Add(4 * time.Minute)},
	}
	for _, ev := range events {
		require.NoError(t, s.RecordUsage(ctx, ev))
	}

	summary, err := s.Summarize(ctx, base)
	require.NoError(t, err)
	require.Equal(t, 5, summary.TotalRequests)
	require.Equal(t, 3, summary.Allowed)
	require.Equal(t, 2, summary.Denied)
	require.Equal(t, 3, summary.UniqueClients)
	require.Equal(t, 1, summary.ByReason["text_too_long"])
	require.Equal(t, 1, summary.ByReason["daily_cap_exceeded"])
	require.Equal(t, 2, summary.ByMode["grammar_fix"])
	require.Equal(t, 1, summary.ByMode["translate_en_ar"])

	// A later cutoff excludes earlier events.
	later, err := s.Summarize(ctx, base.Add(3*time.Minute))
	require.NoError(t, err)
	require.Equal(t, 2, later.TotalRequests)
}

func TestRecentEventsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordUsage(ctx, UsageEvent{
			ClientID:  "1.2.3.4",
			Mode:      "grammar_fix",
			Allowed:   true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	events, err := s.RecentEvents(ctx, 3)
	require.NoError(t, err)
	require.Len(t, events, 3)
	require.Equal(t, base.Add(4*time.Minute), events[0].CreatedAt)
	require.True(t, events[0].CreatedAt.After(events[2].CreatedAt))
}
