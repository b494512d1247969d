package invoices_test

import (
	"context"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/app/services/core/coretest"
	"hospital-service/internal/app/services/core/invoices"
	"hospital-service/internal/pkg/exceptions"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertBalanceDerived(t *testing.T, invoice *models.Invoice) {
	t.Helper()
	expected := decimal.Max(decimal.Zero, invoice.Total.Sub(invoice.AmountPaid))
	assert.True(t, expected.Equal(invoice.BalanceDue), "balance %s, want %s", invoice.BalanceDue, expected)
}

func TestApplyPayment_PartialThenFull(t *testing.T) {
	f := coretest.New(t)
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, "100.00")
	ctx := context.Background()

	partial, err := f.Invoices.ApplyPayment(ctx, invoice.ID, coretest.Money("40.00"))
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPartiallyPaid, partial.Status)
	assert.Equal(t, "60.00", partial.BalanceDue.StringFixed(2))
	assertBalanceDerived(t, partial)

	paid, err := f.Invoices.ApplyPayment(ctx, invoice.ID, coretest.Money("60.00"))
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, paid.Status)
	assert.True(t, paid.BalanceDue.IsZero())
	assertBalanceDerived(t, paid)

	order, err := f.Orders.Get(ctx, *paid.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)

	_, err = f.Invoices.ApplyPayment(ctx, invoice.ID, coretest.Money("1.00"))
	assert.ErrorIs(t, err, exceptions.ErrKindInvoiceAlreadyPaid)
}

func TestApplyPayment_RejectsInvalidAmounts(t *testing.T) {
	f := coretest.New(t)
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, "100.00")

	for _, amount := range []string{"0", "-5.00", "100.01", "10.005"} {
		_, err := f.Invoices.ApplyPayment(context.Background(), invoice.ID, coretest.Money(amount))
		assert.ErrorIs(t, err, exceptions.ErrKindInvalidAmount, amount)
	}

	reloaded := f.ReloadInvoice(t, invoice.ID)
	assert.True(t, reloaded.AmountPaid.IsZero())
	assert.Equal(t, models.InvoiceStatusPending, reloaded.Status)
}

func TestApplyPayment_CancelledInvoiceIsNotPayable(t *testing.T) {
	f := coretest.New(t)
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, "20.00")

	_, err := f.Invoices.SetStatus(context.Background(), invoice.ID, models.InvoiceStatusCancelled)
	require.NoError(t, err)

	_, err = f.Invoices.ApplyPayment(context.Background(), invoice.ID, coretest.Money("5.00"))
	assert.ErrorIs(t, err, exceptions.ErrKindInvoiceNotPayable)
}

func TestAddItem_RecalculatesTotals(t *testing.T) {
	f := coretest.New(t)
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, "50.00")
	ctx := context.Background()

	_, err := f.Invoices.ApplyPayment(ctx, invoice.ID, coretest.Money("50.00"))
	require.NoError(t, err)
	_, err = f.Invoices.AddItem(ctx, invoice.ID, models.NewInvoiceItem("Syringe", 2, coretest.Money("1.25")))
	assert.ErrorIs(t, err, exceptions.ErrKindInvoiceAlreadyPaid)

	other := f.Invoice(t, patient.ID, "50.00")
	updated, err := f.Invoices.AddItem(ctx, other.ID, models.NewInvoiceItem("Syringe", 2, coretest.Money("1.25")))
	require.NoError(t, err)
	assert.Equal(t, "52.50", updated.Total.StringFixed(2))
	assert.Equal(t, "52.50", updated.BalanceDue.StringFixed(2))
	assert.Len(t, updated.Items, 2)
	assertBalanceDerived(t, updated)

	_, err = f.Invoices.AddItem(ctx, other.ID, models.InvoiceItem{Description: "Bad", Quantity: 0, UnitPrice: coretest.Money("1")})
	assert.Error(t, err)
}

func TestSetStatus_Transitions(t *testing.T) {
	f := coretest.New(t)
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, "30.00")
	ctx := context.Background()

	sent, err := f.Invoices.SetStatus(ctx, invoice.ID, models.InvoiceStatusSent)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusSent, sent.Status)

	_, err = f.Invoices.ApplyPayment(ctx, invoice.ID, coretest.Money("30.00"))
	require.NoError(t, err)

	_, err = f.Invoices.SetStatus(ctx, invoice.ID, models.InvoiceStatusPending)
	assert.ErrorIs(t, err, exceptions.ErrKindInvalidAction)

	refunded, err := f.Invoices.SetStatus(ctx, invoice.ID, models.InvoiceStatusRefunded)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusRefunded, refunded.Status)
	assert.Equal(t, "30.00", refunded.AmountPaid.StringFixed(2))
}

func TestMarkOverdue(t *testing.T) {
	f := coretest.New(t)
	patient := f.CreatePatient(t)
	ctx := context.Background()
	pending := f.Invoice(t, patient.ID, "80.00")
	partial := f.Invoice(t, patient.ID, "80.00")
	_, err := f.Invoices.ApplyPayment(ctx, partial.ID, coretest.Money("30.00"))
	require.NoError(t, err)

	today := models.DateOf(time.Now())
	marked, err := f.Invoices.MarkOverdue(ctx, today)
	require.NoError(t, err)
	assert.Zero(t, marked)

	later := today.AddDate(0, 0, f.Config.Billing.PharmacyInvoiceDueDays+1)
	overdue, err := f.Invoices.Overdue(ctx, later)
	require.NoError(t, err)
	assert.Len(t, overdue, 2)

	marked, err = f.Invoices.MarkOverdue(ctx, later)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)
	assert.Equal(t, models.InvoiceStatusOverdue, f.ReloadInvoice(t, pending.ID).Status)
	assert.Equal(t, models.InvoiceStatusPartiallyPaid, f.ReloadInvoice(t, partial.ID).Status)

	marked, err = f.Invoices.MarkOverdue(ctx, later)
	require.NoError(t, err)
	assert.Zero(t, marked)

	paid, err := f.Invoices.ApplyPayment(ctx, pending.ID, coretest.Money("80.00"))
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, paid.Status)
}

func TestAgingReport_BucketsByDaysPastDue(t *testing.T) {
	f := coretest.New(t)
	doctor := f.CreateDoctor(t, "120.00")
	patient := f.CreatePatient(t)
	ctx := context.Background()

	pharmacy := f.Invoice(t, patient.ID, "45.00")
	date := coretest.Date(t, "2030-05-06")
	f.OpenWindow(t, doctor.ID, date, "09:00", "10:00", 2)
	booking, err := f.Appointments.Book(ctx, contracts.BookAppointmentInput{
		PatientID: patient.ID, DoctorID: doctor.ID, Date: date, Time: coretest.Time(t, "09:00"),
	})
	require.NoError(t, err)
	_, err = f.Invoices.ApplyPayment(ctx, booking.Invoice.ID, coretest.Money("20.00"))
	require.NoError(t, err)

	today := models.DateOf(time.Now())
	report, err := f.Invoices.AgingReport(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, "145.00", report.Current.StringFixed(2))
	assert.Equal(t, "145.00", report.Outstanding.StringFixed(2))

	asOf := today.AddDate(0, 0, 35)
	report, err = f.Invoices.AgingReport(ctx, asOf)
	require.NoError(t, err)
	assert.True(t, report.Current.IsZero())
	assert.Equal(t, pharmacy.Total.StringFixed(2), report.Days1To30.StringFixed(2))
	assert.Equal(t, "100.00", report.Days31To60.StringFixed(2))
	assert.True(t, report.Over90Days.IsZero())
	assert.Equal(t, "145.00", report.Outstanding.StringFixed(2))

	report, err = f.Invoices.AgingReport(ctx, today.AddDate(0, 0, 120))
	require.NoError(t, err)
	assert.Equal(t, "145.00", report.Over90Days.StringFixed(2))

	total, err := f.Invoices.TotalOutstanding(ctx)
	require.NoError(t, err)
	assert.Equal(t, "145.00", total.StringFixed(2))
}

func TestPatientSummary(t *testing.T) {
	f := coretest.New(t)
	patient := f.CreatePatient(t)
	ctx := context.Background()
	first := f.Invoice(t, patient.ID, "60.00")
	second := f.Invoice(t, patient.ID, "40.00")
	cancelled := f.Invoice(t, patient.ID, "999.00")

	_, err := f.Invoices.ApplyPayment(ctx, first.ID, coretest.Money("60.00"))
	require.NoError(t, err)
	_, err = f.Invoices.ApplyPayment(ctx, second.ID, coretest.Money("15.00"))
	require.NoError(t, err)
	_, err = f.Invoices.SetStatus(ctx, cancelled.ID, models.InvoiceStatusCancelled)
	require.NoError(t, err)

	summary, err := f.Invoices.PatientSummary(ctx, patient.ID)

	require.NoError(t, err)
	assert.Equal(t, 3, summary.InvoiceCount)
	assert.Equal(t, "100.00", summary.TotalBilled.StringFixed(2))
	assert.Equal(t, "75.00", summary.TotalPaid.StringFixed(2))
	assert.Equal(t, "25.00", summary.Outstanding.StringFixed(2))
}

func TestCheckPayable_RejectsSubCentAmounts(t *testing.T) {
	invoice := &models.Invoice{Status: models.InvoiceStatusPending, Subtotal: coretest.Money("50.00")}
	invoice.RecalculateTotals()

	assert.ErrorIs(t, invoices.CheckPayable(invoice, coretest.Money("0.001")), exceptions.ErrKindInvalidAmount)
	assert.ErrorIs(t, invoices.CheckPayable(invoice, coretest.Money("12.345")), exceptions.ErrKindInvalidAmount)
	assert.NoError(t, invoices.CheckPayable(invoice, coretest.Money("12.340")))
}
