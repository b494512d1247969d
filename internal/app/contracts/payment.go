package contracts

import (
	"context"
	"hospital-service/internal/app/models"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	// Update persists status, amount, notes, slip, receipt and verification fields.
	Update(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, paymentID int64) (*models.Payment, error)
	FindByIDForUpdate(ctx context.Context, paymentID int64) (*models.Payment, error)
	ListByInvoice(ctx context.Context, invoiceID int64) ([]models.Payment, error)
	ListByStatusAndMethod(ctx context.Context, status models.PaymentStatus, method models.PaymentMethod) ([]models.Payment, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Payment, error)
	SumCompleted(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

// PaymentHook runs inside the transaction that applies a payment to its invoice.
// An error rolls the application back and fails the payment.
type PaymentHook func(ctx context.Context, payment *models.Payment) error

type CardPaymentInput struct {
	InvoiceID  int64
	Amount     decimal.Decimal
	Method     models.PaymentMethod
	Card       models.CardDetails
	AfterApply PaymentHook
}

type UploadedFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

type BankTransferInput struct {
	InvoiceID       int64
	Amount          decimal.Decimal
	ReferenceNumber string
	Notes           string
	Slip            *UploadedFile
}

type CounterPaymentInput struct {
	InvoiceID       int64
	Amount          decimal.Decimal
	Method          models.PaymentMethod
	ReferenceNumber string
	Notes           string
	ReceivedBy      int64
	AfterApply      PaymentHook
}

type VerificationAction string

const (
	VerificationActionApprove VerificationAction = "approve"
	VerificationActionReject  VerificationAction = "reject"
	VerificationActionPartial VerificationAction = "partial"
)

type VerifyBankSlipInput struct {
	PaymentID      int64
	Action         VerificationAction
	VerifiedAmount *decimal.Decimal
	Notes          string
	VerifierID     int64
}

type PaymentUsecase interface {
	ProcessCardPayment(ctx context.Context, input CardPaymentInput) (*models.Payment, error)
	ProcessBankTransfer(ctx context.Context, input BankTransferInput) (*models.Payment, error)
	ProcessCounterPayment(ctx context.Context, input CounterPaymentInput) (*models.Payment, error)
	VerifyBankSlip(ctx context.Context, input VerifyBankSlipInput) (*models.Payment, error)
	Get(ctx context.Context, paymentID int64) (*models.Payment, error)
	ListByInvoice(ctx context.Context, invoiceID int64) ([]models.Payment, error)
	PendingVerification(ctx context.Context) ([]models.Payment, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Payment, error)
	TotalRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	BankSlip(ctx context.Context, paymentID int64) ([]byte, string, error)
}

// CardAuthorizer approves or declines a card charge. A decline is (false, nil).
type CardAuthorizer interface {
	Authorize(ctx context.Context, transactionID string, card models.CardDetails, amount decimal.Decimal) (bool, error)
}
