package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ericfisherdev/checkledger/internal/domain/model"
	"github.com/ericfisherdev/checkledger/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.LedgerStore = (*LedgerRepo)(nil)

// LedgerRepo is the SQLite implementation of the LedgerStore port interface.
type LedgerRepo struct {
	db *DB
}

// NewLedgerRepo creates a new LedgerRepo backed by the given DB.
func NewLedgerRepo(db *DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

// Get returns the ledger for the given day. A day with no row yet yields a
// zero-counter ledger.
func (r *LedgerRepo) Get(ctx context.Context, day model.Day) (model.DayLedger, error) {
	const query = `
		SELECT expected_total, tests_run, dispatched_at
		FROM day_ledgers
		WHERE day = ?
	`

	ledger := model.DayLedger{Day: day}
	var dispatchedAt sql.NullString

	err := r.db.Reader.QueryRowContext(ctx, query, string(day)).
		Scan(&ledger.ExpectedTotal, &ledger.TestsRun, &dispatchedAt)
	if err == sql.ErrNoRows {
		return ledger, nil
	}
	if err != nil {
		return model.DayLedger{}, fmt.Errorf("get ledger for day %s: %w", day, err)
	}

	if dispatchedAt.Valid {
		ledger.DispatchedAt, err = parseTime(dispatchedAt.String)
		if err != nil {
			return model.DayLedger{}, fmt.Errorf("parse dispatched_at: %w", err)
		}
	}

	return ledger, nil
}

// SetExpectedTotal records how many test runs are expected for the day,
// creating the ledger row if it does not exist yet.
func (r *LedgerRepo) SetExpectedTotal(ctx context.Context, day model.Day, total int) error {
	const query = `
		INSERT INTO day_ledgers (day, expected_total, tests_run)
		VALUES (?, ?, 0)
		ON CONFLICT (day) DO UPDATE SET expected_total = excluded.expected_total
	`

	if _, err := r.db.Writer.ExecContext(ctx, query, string(day), total); err != nil {
		return fmt.Errorf("set expected total for day %s: %w", day, err)
	}

	return nil
}

// ClaimDispatch marks the day dispatched when the counters are complete and
// no prior claim exists. The single UPDATE runs on the single-writer
// connection, so exactly one caller per day observes a row change and wins
// the claim.
func (r *LedgerRepo) ClaimDispatch(ctx context.Context, day model.Day, at time.Time) (bool, error) {
	const query = `
		UPDATE day_ledgers
		SET dispatched_at = ?
		WHERE day = ?
		  AND dispatched_at IS NULL
		  AND expected_total > 0
		  AND tests_run >= expected_total
	`

	res, err := r.db.Writer.ExecContext(ctx, query, at.UTC(), string(day))
	if err != nil {
		return false, fmt.Errorf("claim dispatch for day %s: %w", day, err)
	}

	claimed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return claimed == 1, nil
}
