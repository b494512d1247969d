package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusPending       InvoiceStatus = "PENDING"
	InvoiceStatusSent          InvoiceStatus = "SENT"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusOverdue       InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"
	InvoiceStatusRefunded      InvoiceStatus = "REFUNDED"
)

type Invoice struct {
	ID            int64           `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	PatientID     int64           `json:"patientId"`
	AppointmentID *int64          `json:"appointmentId,omitempty"`
	OrderID       *int64          `json:"orderId,omitempty"`
	IssueDate     time.Time       `json:"issueDate"`
	DueDate       time.Time       `json:"dueDate"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	AmountPaid    decimal.Decimal `json:"amountPaid"`
	BalanceDue    decimal.Decimal `json:"balanceDue"`
	Status        InvoiceStatus   `json:"status"`
	Description   string          `json:"description,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Items         []InvoiceItem   `json:"items"`
	TimeModel
}

type InvoiceItem struct {
	ID          int64           `json:"id"`
	InvoiceID   int64           `json:"invoiceId"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// RoundMoney rounds half away from zero to cents.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

func NewInvoiceItem(description string, quantity int, unitPrice decimal.Decimal) InvoiceItem {
	item := InvoiceItem{Description: description, Quantity: quantity, UnitPrice: RoundMoney(unitPrice)}
	item.recalculate()
	return item
}

func (it *InvoiceItem) recalculate() {
	it.LineTotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// InvoiceNumberFor formats INV-YYYYMM-NNNNN from the issue month and the row id.
func InvoiceNumberFor(issueDate time.Time, id int64) string {
	return fmt.Sprintf("INV-%s-%05d", issueDate.Format("200601"), id)
}

// AddItem appends an item and rolls its line total into the subtotal.
func (inv *Invoice) AddItem(item InvoiceItem) {
	inv.Items = append(inv.Items, item)
	inv.Subtotal = inv.Subtotal.Add(item.LineTotal)
	inv.RecalculateTotals()
}

// RecalculateTotals derives Total and BalanceDue. BalanceDue is never set anywhere else.
func (inv *Invoice) RecalculateTotals() {
	inv.Total = inv.Subtotal.Add(inv.Tax).Sub(inv.Discount)
	inv.BalanceDue = decimal.Max(decimal.Zero, inv.Total.Sub(inv.AmountPaid))
}

// AcceptsPayments reports whether a payment may still be applied.
func (inv *Invoice) AcceptsPayments() bool {
	switch inv.Status {
	case InvoiceStatusPending, InvoiceStatusSent, InvoiceStatusPartiallyPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// ApplyPayment credits amount and moves the invoice to PAID or PARTIALLY_PAID.
func (inv *Invoice) ApplyPayment(amount decimal.Decimal) {
	inv.AmountPaid = inv.AmountPaid.Add(amount)
	inv.RecalculateTotals()
	if inv.BalanceDue.LessThanOrEqual(decimal.Zero) {
		inv.Status = InvoiceStatusPaid
		return
	}
	inv.Status = InvoiceStatusPartiallyPaid
}

// IsOverdue reports whether an unsettled invoice is past its due date on today.
func (inv *Invoice) IsOverdue(today time.Time) bool {
	switch inv.Status {
	case InvoiceStatusPending, InvoiceStatusSent, InvoiceStatusPartiallyPaid, InvoiceStatusOverdue:
		return inv.DueDate.Before(DateOf(today))
	}
	return false
}
