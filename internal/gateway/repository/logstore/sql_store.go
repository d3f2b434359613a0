package logstore

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"lifestream/internal/gateway/repository/sqldb"
	"lifestream/internal/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SQLStore keeps entries in the journal_logs table. The local day is stored
// alongside the timestamp so range queries stay index-only.
type SQLStore struct {
	db  *sqldb.DB
	loc *time.Location
}

func NewSQLStore(db *sqldb.DB, loc *time.Location) *SQLStore {
	if loc == nil {
		loc = time.Local
	}
	return &SQLStore{db: db, loc: loc}
}

func (s *SQLStore) ListLogs(ctx context.Context, userID, startDay, endDay string) ([]types.LogEntry, error) {
	if err := s.db.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, timestamp_ms, content, tags
FROM journal_logs
WHERE user_id = $1 AND day_key >= $2 AND day_key <= $3
ORDER BY timestamp_ms ASC, id ASC`, userID, startDay, endDay)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	out := make([]types.LogEntry, 0, 64)
	for rows.Next() {
		var (
			e    types.LogEntry
			tags string
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Content, &tags); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		e.Tags = []string{}
		if tags != "" {
			if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
				return nil, fmt.Errorf("decode tags of %s: %w", e.ID, err)
			}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLStore) Put(ctx context.Context, userID string, entries []types.LogEntry) (int, error) {
	for _, e := range entries {
		if err := validate(userID, e); err != nil {
			return 0, err
		}
	}
	if err := s.db.EnsureSchema(ctx); err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		tags := e.Tags
		if tags == nil {
			tags = []string{}
		}
		raw, err := json.Marshal(tags)
		if err != nil {
			return n, err
		}
		_, err = s.db.ExecContext(ctx, `
INSERT INTO journal_logs (user_id, id, day_key, timestamp_ms, content, tags)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id, id)
DO UPDATE SET day_key=EXCLUDED.day_key, timestamp_ms=EXCLUDED.timestamp_ms,
  content=EXCLUDED.content, tags=EXCLUDED.tags`,
			userID, e.ID, types.DayKey(e.Timestamp, s.loc), e.Timestamp, e.Content, string(raw))
		if err != nil {
			return n, fmt.Errorf("put log %s: %w", e.ID, err)
		}
		n++
	}
	return n, nil
}
