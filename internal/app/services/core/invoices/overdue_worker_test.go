package invoices

import (
	"context"
	"errors"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/services/shared/locker"
	"hospital-service/internal/pkg/constvars"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type markOverdueInvoices struct {
	contracts.InvoiceUsecase
	days []time.Time
}

func (m *markOverdueInvoices) MarkOverdue(ctx context.Context, today time.Time) (int, error) {
	m.days = append(m.days, today)
	return 3, nil
}

type markOverduePlans struct {
	contracts.PaymentPlanUsecase
	days []time.Time
	err  error
}

func (m *markOverduePlans) MarkOverdue(ctx context.Context, today time.Time) (int, error) {
	m.days = append(m.days, today)
	return 0, m.err
}

func TestOverdueWorkerRunOnce(t *testing.T) {
	today := time.Date(2030, 7, 1, 2, 0, 0, 0, time.UTC)
	cfg := &config.InternalConfig{Workers: config.AppWorkers{LeaderLockTTLInSeconds: 60}}
	lockerSvc := locker.NewLocalLockService()

	invoices := &markOverdueInvoices{}
	plans := &markOverduePlans{err: errors.New("database unavailable")}
	worker := NewOverdueWorker(zap.NewNop(), cfg, lockerSvc, invoices, plans)
	worker.now = func() time.Time { return today }

	worker.RunOnce(context.Background())

	assert.Equal(t, []time.Time{today}, invoices.days)
	assert.Equal(t, []time.Time{today}, plans.days)

	acquired, _, err := lockerSvc.TryLock(context.Background(), constvars.OverdueWorkerLeaderLockKey, time.Minute)
	assert.NoError(t, err)
	assert.True(t, acquired)
}

func TestOverdueWorkerSkipsWhenAnotherInstanceLeads(t *testing.T) {
	cfg := &config.InternalConfig{Workers: config.AppWorkers{LeaderLockTTLInSeconds: 60}}
	lockerSvc := locker.NewLocalLockService()
	invoices := &markOverdueInvoices{}
	plans := &markOverduePlans{}
	worker := NewOverdueWorker(zap.NewNop(), cfg, lockerSvc, invoices, plans)

	_, _, err := lockerSvc.TryLock(context.Background(), constvars.OverdueWorkerLeaderLockKey, time.Minute)
	assert.NoError(t, err)

	worker.RunOnce(context.Background())

	assert.Empty(t, invoices.days)
	assert.Empty(t, plans.days)
}
