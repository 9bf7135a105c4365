package application

import (
	"context"
	"time"

	"github.com/ericfisherdev/checkledger/internal/domain/model"
	"github.com/ericfisherdev/checkledger/internal/domain/port/driven"
)

// HealthService answers liveness probes by verifying the ledger store is
// reachable.
type HealthService struct {
	ledgerStore driven.LedgerStore
	location    *time.Location
}

// NewHealthService creates a HealthService with the required dependencies.
func NewHealthService(ledgerStore driven.LedgerStore, location *time.Location) *HealthService {
	return &HealthService{
		ledgerStore: ledgerStore,
		location:    location,
	}
}

// Check probes the store by reading today's ledger. Any error means the
// service should report unhealthy.
func (s *HealthService) Check(ctx context.Context) error {
	_, err := s.ledgerStore.Get(ctx, model.DayOf(time.Now(), s.location))
	return err
}
