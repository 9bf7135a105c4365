package driven

import (
	"context"

	"github.com/ericfisherdev/checkledger/internal/domain/model"
)

// ResultStore defines the driven port for append-only result persistence.
type ResultStore interface {
	// Record appends a result row and bumps the day's tests_run counter in a
	// single transaction. Returns false when the (check_run_id, pr_number)
	// pair was already recorded, in which case the counter is untouched.
	Record(ctx context.Context, result model.Result) (bool, error)
	// ListByDay returns all results for the given day in record order.
	ListByDay(ctx context.Context, day model.Day) ([]model.Result, error)
}
