package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInvoice_TotalsAndBalance(t *testing.T) {
	inv := &Invoice{Status: InvoiceStatusPending}
	inv.AddItem(NewInvoiceItem("Consultation", 1, decimal.RequireFromString("75.505")))
	inv.AddItem(NewInvoiceItem("Bandage", 3, decimal.RequireFromString("2.10")))

	assert.Equal(t, "75.51", inv.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "6.30", inv.Items[1].LineTotal.StringFixed(2))
	assert.Equal(t, "81.81", inv.Total.StringFixed(2))
	assert.Equal(t, "81.81", inv.BalanceDue.StringFixed(2))

	inv.Discount = decimal.RequireFromString("100")
	inv.RecalculateTotals()
	assert.True(t, inv.BalanceDue.IsZero())
}

func TestInvoice_ApplyPaymentStatus(t *testing.T) {
	inv := &Invoice{Status: InvoiceStatusPending}
	inv.AddItem(NewInvoiceItem("Consultation", 1, decimal.NewFromInt(100)))

	inv.ApplyPayment(decimal.NewFromInt(40))
	assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
	assert.Equal(t, "60.00", inv.BalanceDue.StringFixed(2))

	inv.ApplyPayment(decimal.NewFromInt(60))
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.BalanceDue.IsZero())
	assert.False(t, inv.AcceptsPayments())
}

func TestInvoice_IsOverdue(t *testing.T) {
	due := time.Date(2030, time.May, 6, 0, 0, 0, 0, time.UTC)
	inv := &Invoice{Status: InvoiceStatusSent, DueDate: due}

	assert.False(t, inv.IsOverdue(due.Add(23*time.Hour)))
	assert.True(t, inv.IsOverdue(due.AddDate(0, 0, 1)))

	inv.Status = InvoiceStatusPaid
	assert.False(t, inv.IsOverdue(due.AddDate(0, 0, 10)))
}

func TestInvoiceNumberFor(t *testing.T) {
	assert.Equal(t, "INV-203005-00042", InvoiceNumberFor(time.Date(2030, time.May, 6, 0, 0, 0, 0, time.UTC), 42))
	assert.Equal(t, "PLAN2030000007", PlanNumberFor(2030, 7))
}
