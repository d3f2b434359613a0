package reportstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lifestream/internal/gateway/repository/sqldb"
	"lifestream/internal/types"
)

const reportColumns = `id, user_id, type, period_start, period_end, content, created_at_ms`

// SQLStore keeps reports in the reports table, unique on
// (user_id, type, period_start, period_end).
type SQLStore struct {
	db *sqldb.DB
}

func NewSQLStore(db *sqldb.DB) *SQLStore {
	return &SQLStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (types.Report, error) {
	var (
		r   types.Report
		typ string
	)
	if err := row.Scan(&r.ID, &r.UserID, &typ, &r.PeriodStart, &r.PeriodEnd, &r.Content, &r.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Report{}, ErrNotFound
		}
		return types.Report{}, err
	}
	r.Type = types.ReportType(typ)
	return r, nil
}

func (s *SQLStore) FindByKey(ctx context.Context, key types.ReportKey) (types.Report, error) {
	if err := s.db.EnsureSchema(ctx); err != nil {
		return types.Report{}, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+reportColumns+`
FROM reports
WHERE user_id = $1 AND type = $2 AND period_start = $3 AND period_end = $4`,
		key.UserID, string(key.Type), key.PeriodStart, key.PeriodEnd)
	return scanReport(row)
}

func (s *SQLStore) Get(ctx context.Context, userID, id string) (types.Report, error) {
	if err := s.db.EnsureSchema(ctx); err != nil {
		return types.Report{}, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1 AND user_id = $2`, id, userID)
	return scanReport(row)
}

func (s *SQLStore) Upsert(ctx context.Context, r types.Report) (types.Report, error) {
	if err := validateReport(r); err != nil {
		return types.Report{}, err
	}
	if err := s.db.EnsureSchema(ctx); err != nil {
		return types.Report{}, err
	}
	row := s.db.QueryRowContext(ctx, `
INSERT INTO reports (`+reportColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (user_id, type, period_start, period_end)
DO UPDATE SET content=EXCLUDED.content, created_at_ms=EXCLUDED.created_at_ms
RETURNING `+reportColumns,
		r.ID, r.UserID, string(r.Type), r.PeriodStart, r.PeriodEnd, r.Content, r.CreatedAt)
	out, err := scanReport(row)
	if err != nil {
		return types.Report{}, fmt.Errorf("upsert report: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Create(ctx context.Context, r types.Report) (types.Report, bool, error) {
	if err := validateReport(r); err != nil {
		return types.Report{}, false, err
	}
	if err := s.db.EnsureSchema(ctx); err != nil {
		return types.Report{}, false, err
	}
	row := s.db.QueryRowContext(ctx, `
INSERT INTO reports (`+reportColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT DO NOTHING
RETURNING `+reportColumns,
		r.ID, r.UserID, string(r.Type), r.PeriodStart, r.PeriodEnd, r.Content, r.CreatedAt)
	out, err := scanReport(row)
	if err == nil {
		return out, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return types.Report{}, false, fmt.Errorf("create report: %w", err)
	}
	existing, err := s.FindByKey(ctx, r.Key())
	if errors.Is(err, ErrNotFound) {
		return types.Report{}, false, ErrConflict
	}
	if err != nil {
		return types.Report{}, false, err
	}
	return existing, false, nil
}

func (s *SQLStore) UpdateContent(ctx context.Context, userID, id, content string, createdAt int64) (types.Report, error) {
	if err := s.db.EnsureSchema(ctx); err != nil {
		return types.Report{}, err
	}
	row := s.db.QueryRowContext(ctx, `
UPDATE reports SET content = $1, created_at_ms = $2
WHERE id = $3 AND user_id = $4
RETURNING `+reportColumns, content, createdAt, id, userID)
	return scanReport(row)
}

func (s *SQLStore) Delete(ctx context.Context, userID, id string) error {
	if err := s.db.EnsureSchema(ctx); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, userID string, typ types.ReportType) ([]types.Report, error) {
	if err := s.db.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	var (
		rows *sql.Rows
		err  error
	)
	if typ == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT `+reportColumns+`
FROM reports WHERE user_id = $1 ORDER BY created_at_ms DESC, id ASC`, userID)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+reportColumns+`
FROM reports WHERE user_id = $1 AND type = $2 ORDER BY created_at_ms DESC, id ASC`, userID, string(typ))
	}
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	out := make([]types.Report, 0, 16)
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
