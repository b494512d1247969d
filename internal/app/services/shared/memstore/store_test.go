package memstore

import (
	"context"
	"errors"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/exceptions"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInvoice(patientID int64, total string) *models.Invoice {
	inv := &models.Invoice{PatientID: patientID, Status: models.InvoiceStatusPending}
	inv.AddItem(models.NewInvoiceItem("Consultation", 1, decimal.RequireFromString(total)))
	return inv
}

func TestWithinTransaction_RollsBackOnError(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	kept := newInvoice(1, "10.00")
	require.NoError(t, store.Invoices().Create(ctx, kept))
	boom := errors.New("boom")

	err := store.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := store.Invoices().Create(ctx, newInvoice(1, "20.00")); err != nil {
			return err
		}
		kept.Status = models.InvoiceStatusCancelled
		if err := store.Invoices().Update(ctx, kept); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	invoices, err := store.Invoices().ListByPatient(ctx, 1)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, models.InvoiceStatusPending, invoices[0].Status)

	next := newInvoice(1, "30.00")
	require.NoError(t, store.Invoices().Create(ctx, next))
	assert.Equal(t, int64(2), next.ID)
}

func TestWithinTransaction_NestedCallsJoinOuter(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	boom := errors.New("outer failed")

	err := store.WithinTransaction(ctx, func(ctx context.Context) error {
		inner := store.WithinTransaction(ctx, func(ctx context.Context) error {
			return store.Invoices().Create(ctx, newInvoice(5, "15.00"))
		})
		require.NoError(t, inner)
		return boom
	})

	assert.ErrorIs(t, err, boom)
	invoices, err := store.Invoices().ListByPatient(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, invoices)
}

func TestWithinTransaction_SerializesWriters(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	inv := newInvoice(1, "100.00")
	require.NoError(t, store.Invoices().Create(ctx, inv))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.WithinTransaction(ctx, func(ctx context.Context) error {
				locked, err := store.Invoices().FindByIDForUpdate(ctx, inv.ID)
				if err != nil {
					return err
				}
				locked.ApplyPayment(decimal.RequireFromString("1.00"))
				return store.Invoices().Update(ctx, locked)
			})
		}()
	}
	wg.Wait()

	stored, err := store.Invoices().FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "20.00", stored.AmountPaid.StringFixed(2))
	assert.Equal(t, "80.00", stored.BalanceDue.StringFixed(2))
}

func TestRepositories_EnforceUniqueness(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Users().Create(ctx, &models.User{Email: "a@hospital.test", Role: models.RolePatient}))
	err := store.Users().Create(ctx, &models.User{Email: "a@hospital.test", Role: models.RoleDoctor})
	assert.ErrorIs(t, err, exceptions.ErrKindDuplicate)

	appointment := models.Appointment{DoctorID: 1, PatientID: 2, Date: mustDate(t, "2030-05-06"), Time: models.NewTimeOfDay(9, 0), Status: models.AppointmentStatusScheduled}
	first := appointment
	require.NoError(t, store.Appointments().Create(ctx, &first))
	second := appointment
	assert.ErrorIs(t, store.Appointments().Create(ctx, &second), exceptions.ErrKindSlotTaken)

	require.NoError(t, store.Appointments().UpdateStatus(ctx, first.ID, models.AppointmentStatusCancelled))
	third := appointment
	assert.NoError(t, store.Appointments().Create(ctx, &third))

	_, err = store.Invoices().FindByID(ctx, 404)
	assert.ErrorIs(t, err, exceptions.ErrKindNotFound)
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	date, err := models.ParseDate(value)
	require.NoError(t, err)
	return date
}
