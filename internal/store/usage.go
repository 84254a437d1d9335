package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// UsageEvent is one recorded admission outcome. It never contains the input
// text or any credential.
type UsageEvent struct {
	ClientID   string
	Mode       string
	TextLength int
	Allowed    bool
	Reason     string
	BYOKey     bool
	DurationMs int64
	CreatedAt  time.Time
}

// RecordUsage appends a usage event to the ledger.
func (s *Store) RecordUsage(ctx context.Context, ev UsageEvent) error {
	if s == nil || s.DB == nil {
		return errors.New("usage store not initialized")
	}

	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO usage_events (client_id, mode, text_length, allowed, reason, byo_key, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ClientID,
		ev.Mode,
		ev.TextLength,
		boolToInt(ev.Allowed),
		ev.Reason,
		boolToInt(ev.BYOKey),
		ev.DurationMs,
		createdAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("record usage event: %w", err)
	}
	return nil
}

// UsageSummary aggregates ledger activity since a point in time.
type UsageSummary struct {
	Since         time.Time
	TotalRequests int
	Allowed       int
	Denied        int
	UniqueClients int
	ByReason      map[string]int
	ByMode        map[string]int
}

// Summarize aggregates usage events recorded at or after since.
func (s *Store) Summarize(ctx context.Context, since time.Time) (*UsageSummary, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("usage store not initialized")
	}

	summary := &UsageSummary{
		Since:    since,
		ByReason: make(map[string]int),
		ByMode:   make(map[string]int),
	}

	row := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(allowed), 0),
		        COUNT(DISTINCT client_id)
		 FROM usage_events WHERE created_at >= ?`, since.Unix())
	if err := row.Scan(&summary.TotalRequests, &summary.Allowed, &summary.UniqueClients); err != nil {
		return nil, fmt.Errorf("summarize usage: %w", err)
	}
	summary.Denied = summary.TotalRequests - summary.Allowed

	if err := s.countBy(ctx, since,
		`SELECT reason, COUNT(*) FROM usage_events
		 WHERE created_at >= ? AND allowed = 0 AND reason != '' GROUP BY reason`,
		summary.ByReason); err != nil {
		return nil, err
	}

	if err := s.countBy(ctx, since,
		`SELECT mode, COUNT(*) FROM usage_events
		 WHERE created_at >= ? AND allowed = 1 AND mode != '' GROUP BY mode`,
		summary.ByMode); err != nil {
		return nil, err
	}

	return summary, nil
}

func (s *Store) countBy(ctx context.Context, since time.Time, query string, dest map[string]int) error {
	rows, err := s.DB.QueryContext(ctx, query, since.Unix())
	if err != nil {
		return fmt.Errorf("summarize usage: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("summarize usage: %w", err)
		}
		dest[key] = count
	}
	return rows.Err()
}

// RecentEvents returns up to limit events, newest first.
func (s *Store) RecentEvents(ctx context.Context, limit int) ([]UsageEvent, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("usage store not initialized")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT client_id, mode, text_length, allowed, reason, byo_key, COALESCE(duration_ms, 0), created_at
		 FROM usage_events ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list usage events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []UsageEvent
	for rows.Next() {
		var ev UsageEvent
		var allowed, byoKey int
		var createdAt int64
		if err := rows.Scan(&ev.ClientID, &ev.Mode, &ev.TextLength, &allowed, &ev.Reason, &byoKey, &ev.DurationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("list usage events: %w", err)
		}
		ev.Allowed = allowed != 0
		ev.BYOKey = byoKey != 0
		ev.CreatedAt = time.Unix(createdAt, 0).UTC()
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
