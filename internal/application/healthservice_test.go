package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/checkledger/internal/application"
	"github.com/ericfisherdev/checkledger/internal/domain/model"
)

type failingLedgerStore struct{}

func (f *failingLedgerStore) Get(_ context.Context, _ model.Day) (model.DayLedger, error) {
	return model.DayLedger{}, errors.New("database is locked")
}

func (f *failingLedgerStore) SetExpectedTotal(_ context.Context, _ model.Day, _ int) error {
	return errors.New("database is locked")
}

func (f *failingLedgerStore) ClaimDispatch(_ context.Context, _ model.Day, _ time.Time) (bool, error) {
	return false, errors.New("database is locked")
}

func TestHealthCheck_StoreReachable(t *testing.T) {
	svc := application.NewHealthService(&mockLedgerStore{}, time.UTC)
	require.NoError(t, svc.Check(context.Background()))
}

func TestHealthCheck_StoreUnreachable(t *testing.T) {
	svc := application.NewHealthService(&failingLedgerStore{}, time.UTC)
	err := svc.Check(context.Background())
	assert.Error(t, err)
}
