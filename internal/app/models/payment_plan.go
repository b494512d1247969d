package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentPlanStatus string

const (
	PaymentPlanStatusActive    PaymentPlanStatus = "ACTIVE"
	PaymentPlanStatusCompleted PaymentPlanStatus = "COMPLETED"
	PaymentPlanStatusSuspended PaymentPlanStatus = "SUSPENDED"
	PaymentPlanStatusCancelled PaymentPlanStatus = "CANCELLED"
	PaymentPlanStatusDefaulted PaymentPlanStatus = "DEFAULTED"
)

type InstallmentStatus string

const (
	InstallmentStatusPending   InstallmentStatus = "PENDING"
	InstallmentStatusPaid      InstallmentStatus = "PAID"
	InstallmentStatusOverdue   InstallmentStatus = "OVERDUE"
	InstallmentStatusPartial   InstallmentStatus = "PARTIAL"
	InstallmentStatusCancelled InstallmentStatus = "CANCELLED"
)

type PaymentPlan struct {
	ID               int64                    `json:"id"`
	PlanNumber       string                   `json:"planNumber"`
	InvoiceID        int64                    `json:"invoiceId"`
	PatientID        int64                    `json:"patientId"`
	TotalAmount      decimal.Decimal          `json:"totalAmount"`
	MonthlyPayment   decimal.Decimal          `json:"monthlyPayment"`
	NumberOfPayments int                      `json:"numberOfPayments"`
	InterestRate     decimal.Decimal          `json:"interestRate"`
	StartDate        time.Time                `json:"startDate"`
	EndDate          time.Time                `json:"endDate"`
	Status           PaymentPlanStatus        `json:"status"`
	PaymentsMade     int                      `json:"paymentsMade"`
	AmountPaid       decimal.Decimal          `json:"amountPaid"`
	RemainingBalance decimal.Decimal          `json:"remainingBalance"`
	NextPaymentDate  *time.Time               `json:"nextPaymentDate,omitempty"`
	PaymentMethod    PaymentMethod            `json:"paymentMethod,omitempty"`
	Notes            string                   `json:"notes,omitempty"`
	Installments     []PaymentPlanInstallment `json:"installments"`
	TimeModel
}

type PaymentPlanInstallment struct {
	ID                int64             `json:"id"`
	PlanID            int64             `json:"planId"`
	InstallmentNumber int               `json:"installmentNumber"`
	DueDate           time.Time         `json:"dueDate"`
	Amount            decimal.Decimal   `json:"amount"`
	AmountPaid        decimal.Decimal   `json:"amountPaid"`
	Status            InstallmentStatus `json:"status"`
	PaymentID         *int64            `json:"paymentId,omitempty"`
	PaidAt            *time.Time        `json:"paidAt,omitempty"`
	ReminderSent      bool              `json:"reminderSent"`
}

// PlanNumberFor formats PLAN<year><sequence:06>.
func PlanNumberFor(year int, sequence int64) string {
	return fmt.Sprintf("PLAN%d%06d", year, sequence)
}

// Outstanding is what is still owed on the installment.
func (i *PaymentPlanInstallment) Outstanding() decimal.Decimal {
	return decimal.Max(decimal.Zero, i.Amount.Sub(i.AmountPaid))
}

func (i *PaymentPlanInstallment) IsSettled() bool {
	return i.Status == InstallmentStatusPaid || i.Status == InstallmentStatusCancelled
}

func (p *PaymentPlan) Installment(number int) *PaymentPlanInstallment {
	for idx := range p.Installments {
		if p.Installments[idx].InstallmentNumber == number {
			return &p.Installments[idx]
		}
	}
	return nil
}

// ScheduledTotal is the sum of every installment amount.
func (p *PaymentPlan) ScheduledTotal() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range p.Installments {
		total = total.Add(inst.Amount)
	}
	return total
}

// ApplyInstallmentPayment credits amount to the installment and rolls the plan counters forward.
func (p *PaymentPlan) ApplyInstallmentPayment(inst *PaymentPlanInstallment, amount decimal.Decimal, paymentID int64, now time.Time) {
	inst.AmountPaid = inst.AmountPaid.Add(amount)
	inst.PaymentID = &paymentID
	if inst.AmountPaid.GreaterThanOrEqual(inst.Amount) {
		inst.Status = InstallmentStatusPaid
		paidAt := now
		inst.PaidAt = &paidAt
		p.PaymentsMade++
	} else {
		inst.Status = InstallmentStatusPartial
	}

	p.AmountPaid = p.AmountPaid.Add(amount)
	p.RemainingBalance = decimal.Max(decimal.Zero, p.RemainingBalance.Sub(amount))
	p.refreshNextPaymentDate()

	if p.allInstallmentsPaid() {
		p.Status = PaymentPlanStatusCompleted
	}
}

func (p *PaymentPlan) refreshNextPaymentDate() {
	p.NextPaymentDate = nil
	for idx := range p.Installments {
		inst := &p.Installments[idx]
		if inst.IsSettled() {
			continue
		}
		if p.NextPaymentDate == nil || inst.DueDate.Before(*p.NextPaymentDate) {
			due := inst.DueDate
			p.NextPaymentDate = &due
		}
	}
}

func (p *PaymentPlan) allInstallmentsPaid() bool {
	if len(p.Installments) == 0 {
		return false
	}
	for _, inst := range p.Installments {
		if inst.Status != InstallmentStatusPaid {
			return false
		}
	}
	return true
}
