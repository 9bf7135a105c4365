package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/checkledger/internal/domain/model"
)

// LedgerStore defines the driven port for per-day counter persistence.
type LedgerStore interface {
	// Get returns the ledger for the given day. A day with no recorded
	// activity yields a zero-counter ledger, not an error.
	Get(ctx context.Context, day model.Day) (model.DayLedger, error)
	// SetExpectedTotal records how many test runs are expected for the day.
	SetExpectedTotal(ctx context.Context, day model.Day, total int) error
	// ClaimDispatch atomically marks the day dispatched when its counters are
	// complete and no prior claim exists. Exactly one caller wins the claim
	// per day; all others get false.
	ClaimDispatch(ctx context.Context, day model.Day, at time.Time) (bool, error)
}
