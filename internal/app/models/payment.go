package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard    PaymentMethod = "DEBIT_CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodInsurance    PaymentMethod = "INSURANCE"
)

func (m PaymentMethod) IsCard() bool {
	return m == PaymentMethodCreditCard || m == PaymentMethodDebitCard
}

func (m PaymentMethod) IsCounter() bool {
	return m == PaymentMethodCash || m == PaymentMethodCheck || m == PaymentMethodInsurance
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

type Payment struct {
	ID                int64           `json:"id"`
	TransactionID     string          `json:"transactionId"`
	ReceiptNumber     string          `json:"receiptNumber,omitempty"`
	InvoiceID         int64           `json:"invoiceId"`
	PatientID         int64           `json:"patientId"`
	Amount            decimal.Decimal `json:"amount"`
	Method            PaymentMethod   `json:"method"`
	Status            PaymentStatus   `json:"status"`
	PaymentDate       *time.Time      `json:"paymentDate,omitempty"`
	CardLastFour      string          `json:"cardLastFour,omitempty"`
	ReferenceNumber   string          `json:"referenceNumber,omitempty"`
	BankSlipPath      string          `json:"bankSlipPath,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	VerificationNotes string          `json:"verificationNotes,omitempty"`
	VerifiedBy        *int64          `json:"verifiedBy,omitempty"`
	VerifiedAt        *time.Time      `json:"verifiedAt,omitempty"`
	TimeModel
}

// AppendNote adds a " | "-separated annotation to Notes.
func (p *Payment) AppendNote(note string) {
	if p.Notes == "" {
		p.Notes = note
		return
	}
	p.Notes = p.Notes + " | " + note
}

// CardDetails never leave the payment engine; only the last four digits are stored.
type CardDetails struct {
	Number      string
	HolderName  string
	ExpiryMonth int
	ExpiryYear  int
	CVV         string
}

func (c CardDetails) LastFour() string {
	if len(c.Number) < 4 {
		return c.Number
	}
	return c.Number[len(c.Number)-4:]
}
