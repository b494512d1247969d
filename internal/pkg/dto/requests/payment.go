package requests

import "github.com/shopspring/decimal"

type Card struct {
	Number      string `json:"number" validate:"required,min=12,max=23"`
	HolderName  string `json:"holder_name" validate:"required"`
	ExpiryMonth int    `json:"expiry_month" validate:"required,min=1,max=12"`
	ExpiryYear  int    `json:"expiry_year" validate:"required,min=2000"`
	CVV         string `json:"cvv" validate:"required,numeric,min=3,max=4"`
}

type CardPayment struct {
	InvoiceID int64           `json:"invoice_id" validate:"required,gt=0"`
	Amount    decimal.Decimal `json:"amount" validate:"required,money"`
	Method    string          `json:"method" validate:"omitempty,oneof=CREDIT_CARD DEBIT_CARD"`
	Card      Card            `json:"card" validate:"required"`
}

// BankTransfer is read from a multipart form; the slip arrives as the bank_slip file part.
type BankTransfer struct {
	InvoiceID       int64           `validate:"required,gt=0"`
	Amount          decimal.Decimal `validate:"required,money"`
	ReferenceNumber string          `validate:"required,max=100"`
	Notes           string          `validate:"max=1000"`
}

type CounterPayment struct {
	InvoiceID       int64           `json:"invoice_id" validate:"required,gt=0"`
	Amount          decimal.Decimal `json:"amount" validate:"required,money"`
	Method          string          `json:"method" validate:"required,oneof=CASH CHECK INSURANCE"`
	ReferenceNumber string          `json:"reference_number" validate:"max=100"`
	Notes           string          `json:"notes" validate:"max=1000"`
}

type VerifyBankSlip struct {
	Action         string           `json:"action" validate:"required,oneof=approve reject partial"`
	VerifiedAmount *decimal.Decimal `json:"verified_amount"`
	Notes          string           `json:"notes" validate:"max=1000"`
}
