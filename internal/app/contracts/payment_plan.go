package contracts

import (
	"context"
	"hospital-service/internal/app/models"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentPlanRepository interface {
	// Create inserts the plan with its installments and sets every generated id.
	Create(ctx context.Context, plan *models.PaymentPlan) error
	Update(ctx context.Context, plan *models.PaymentPlan) error
	UpdateInstallment(ctx context.Context, installment *models.PaymentPlanInstallment) error
	// ReplaceInstallments deletes every installment of the plan and inserts the given ones.
	ReplaceInstallments(ctx context.Context, planID int64, installments []models.PaymentPlanInstallment) error
	FindByID(ctx context.Context, planID int64) (*models.PaymentPlan, error)
	FindByIDForUpdate(ctx context.Context, planID int64) (*models.PaymentPlan, error)
	FindByInvoiceID(ctx context.Context, invoiceID int64) (*models.PaymentPlan, error)
	Count(ctx context.Context) (int64, error)
	ListByStatus(ctx context.Context, status models.PaymentPlanStatus) ([]models.PaymentPlan, error)
	ListInstallmentsDueBefore(ctx context.Context, statuses []models.InstallmentStatus, date time.Time) ([]models.PaymentPlanInstallment, error)
}

type CreatePaymentPlanInput struct {
	InvoiceID            int64
	NumberOfInstallments int
	StartDate            time.Time
	InterestRate         decimal.Decimal
	Method               models.PaymentMethod
	Notes                string
}

type PaymentPlanAction string

const (
	PaymentPlanActionSuspend  PaymentPlanAction = "suspend"
	PaymentPlanActionResume   PaymentPlanAction = "resume"
	PaymentPlanActionCancel   PaymentPlanAction = "cancel"
	PaymentPlanActionComplete PaymentPlanAction = "complete"
)

type AdjustPaymentPlanInput struct {
	PlanID           int64
	NewDuration      int
	NewMonthlyAmount decimal.Decimal
	Reason           string
}

type PayInstallmentInput struct {
	PlanID            int64
	InstallmentNumber int
	Amount            decimal.Decimal
	Method            models.PaymentMethod
	Card              models.CardDetails
	ReferenceNumber   string
	ReceivedBy        int64
}

type InstallmentPaymentResult struct {
	Plan    *models.PaymentPlan `json:"plan"`
	Payment *models.Payment     `json:"payment"`
}

type PaymentPlanUsecase interface {
	CreatePlan(ctx context.Context, input CreatePaymentPlanInput) (*models.PaymentPlan, error)
	UpdateStatus(ctx context.Context, planID int64, action string, notes string) (*models.PaymentPlan, error)
	Adjust(ctx context.Context, input AdjustPaymentPlanInput) (*models.PaymentPlan, error)
	PayInstallment(ctx context.Context, input PayInstallmentInput) (*InstallmentPaymentResult, error)
	Get(ctx context.Context, planID int64) (*models.PaymentPlan, error)
	ActiveCount(ctx context.Context) (int, error)
	OverdueInstallments(ctx context.Context, today time.Time) ([]models.PaymentPlanInstallment, error)
	OverduePlans(ctx context.Context, today time.Time) ([]models.PaymentPlan, error)
	TotalOutstanding(ctx context.Context) (decimal.Decimal, error)
	MarkOverdue(ctx context.Context, today time.Time) (int, error)
}
