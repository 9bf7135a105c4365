package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ericfisherdev/checkledger/internal/domain/model"
	"github.com/ericfisherdev/checkledger/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ResultStore = (*ResultRepo)(nil)

// ResultRepo is the SQLite implementation of the ResultStore port interface.
type ResultRepo struct {
	db *DB
}

// NewResultRepo creates a new ResultRepo backed by the given DB.
func NewResultRepo(db *DB) *ResultRepo {
	return &ResultRepo{db: db}
}

// Record appends a result row and increments the day's tests_run counter in
// one transaction. The UNIQUE(check_run_id, pr_number) constraint absorbs
// webhook redeliveries: a duplicate insert is a no-op and the counter is left
// alone, so Record returns false.
func (r *ResultRepo) Record(ctx context.Context, result model.Result) (bool, error) {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op.

	const insertQuery = `
		INSERT INTO results (day, repo_full_name, pr_number, conclusion, summary, check_run_id, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (check_run_id, pr_number) DO NOTHING
	`

	recordedAt := result.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	res, err := tx.ExecContext(ctx, insertQuery,
		string(result.Day), result.RepoFullName, result.PRNumber,
		string(result.Conclusion), result.Summary, result.CheckRunID,
		recordedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("insert result %s#%d run %d: %w",
			result.RepoFullName, result.PRNumber, result.CheckRunID, err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if inserted == 0 {
		return false, nil
	}

	const bumpQuery = `
		INSERT INTO day_ledgers (day, expected_total, tests_run)
		VALUES (?, 0, 1)
		ON CONFLICT (day) DO UPDATE SET tests_run = tests_run + 1
	`
	if _, err := tx.ExecContext(ctx, bumpQuery, string(result.Day)); err != nil {
		return false, fmt.Errorf("bump tests_run for day %s: %w", result.Day, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit result %s#%d: %w", result.RepoFullName, result.PRNumber, err)
	}

	return true, nil
}

// ListByDay returns all results for the given day in record order.
func (r *ResultRepo) ListByDay(ctx context.Context, day model.Day) ([]model.Result, error) {
	const query = `
		SELECT id, day, repo_full_name, pr_number, conclusion, summary, check_run_id, recorded_at
		FROM results
		WHERE day = ?
		ORDER BY id
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, string(day))
	if err != nil {
		return nil, fmt.Errorf("query results for day %s: %w", day, err)
	}
	defer rows.Close()

	var results []model.Result
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, *result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}

	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(s scanner) (*model.Result, error) {
	var result model.Result
	var day, conclusion, recordedAt string

	err := s.Scan(
		&result.ID, &day, &result.RepoFullName, &result.PRNumber,
		&conclusion, &result.Summary, &result.CheckRunID, &recordedAt,
	)
	if err != nil {
		return nil, err
	}

	result.Day = model.Day(day)
	result.Conclusion = model.Conclusion(conclusion)

	result.RecordedAt, err = parseTime(recordedAt)
	if err != nil {
		return nil, fmt.Errorf("parse recorded_at: %w", err)
	}

	return &result, nil
}

// parseTime handles the timestamp formats SQLite may hand back depending on
// how the value was written.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
