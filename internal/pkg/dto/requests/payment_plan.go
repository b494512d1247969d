package requests

import "github.com/shopspring/decimal"

type CreatePaymentPlan struct {
	InvoiceID            int64           `json:"invoice_id" validate:"required,gt=0"`
	NumberOfInstallments int             `json:"number_of_installments" validate:"required,min=1,max=120"`
	StartDate            string          `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	InterestRate         decimal.Decimal `json:"interest_rate"`
	Method               string          `json:"method" validate:"omitempty,oneof=CREDIT_CARD DEBIT_CARD BANK_TRANSFER CASH CHECK INSURANCE"`
	Notes                string          `json:"notes" validate:"max=1000"`
}

type UpdatePaymentPlanStatus struct {
	Action string `json:"action" validate:"required"`
	Notes  string `json:"notes" validate:"max=1000"`
}

type AdjustPaymentPlan struct {
	NewDuration      int             `json:"new_duration" validate:"required,min=1,max=120"`
	NewMonthlyAmount decimal.Decimal `json:"new_monthly_amount" validate:"required,money"`
	Reason           string          `json:"reason" validate:"max=1000"`
}

type PayInstallment struct {
	Amount          decimal.Decimal `json:"amount" validate:"required,money"`
	Method          string          `json:"method" validate:"required,oneof=CREDIT_CARD DEBIT_CARD CASH CHECK INSURANCE"`
	Card            *Card           `json:"card" validate:"required_if=Method CREDIT_CARD,required_if=Method DEBIT_CARD"`
	ReferenceNumber string          `json:"reference_number" validate:"max=100"`
}
