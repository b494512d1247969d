package contracts

import (
	"context"
	"hospital-service/internal/app/models"
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceRepository interface {
	// Create inserts the invoice with its items and sets every generated id.
	Create(ctx context.Context, invoice *models.Invoice) error
	UpdateInvoiceNumber(ctx context.Context, invoiceID int64, invoiceNumber string) error
	AddItem(ctx context.Context, invoiceID int64, item *models.InvoiceItem) error
	// Update persists money fields, status and notes.
	Update(ctx context.Context, invoice *models.Invoice) error
	FindByID(ctx context.Context, invoiceID int64) (*models.Invoice, error)
	FindByIDForUpdate(ctx context.Context, invoiceID int64) (*models.Invoice, error)
	FindByAppointmentID(ctx context.Context, appointmentID int64) (*models.Invoice, error)
	ListByPatient(ctx context.Context, patientID int64) ([]models.Invoice, error)
	ListByStatuses(ctx context.Context, statuses []models.InvoiceStatus) ([]models.Invoice, error)
}

type AgingReport struct {
	AsOf        time.Time       `json:"asOf"`
	Current     decimal.Decimal `json:"current"`
	Days1To30   decimal.Decimal `json:"days1To30"`
	Days31To60  decimal.Decimal `json:"days31To60"`
	Days61To90  decimal.Decimal `json:"days61To90"`
	Over90Days  decimal.Decimal `json:"over90Days"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

type PatientInvoiceSummary struct {
	PatientID    int64           `json:"patientId"`
	InvoiceCount int             `json:"invoiceCount"`
	TotalBilled  decimal.Decimal `json:"totalBilled"`
	TotalPaid    decimal.Decimal `json:"totalPaid"`
	Outstanding  decimal.Decimal `json:"outstanding"`
}

type InvoiceUsecase interface {
	// GenerateForAppointment builds the consultation invoice. It joins the caller's transaction.
	GenerateForAppointment(ctx context.Context, patient, doctor *models.User, appointment *models.Appointment) (*models.Invoice, error)
	GenerateForOrder(ctx context.Context, order *models.Order) (*models.Invoice, error)
	// ApplyPayment is the only place an invoice balance changes. It must run inside a transaction.
	ApplyPayment(ctx context.Context, invoiceID int64, amount decimal.Decimal) (*models.Invoice, error)
	AddItem(ctx context.Context, invoiceID int64, item models.InvoiceItem) (*models.Invoice, error)
	SetStatus(ctx context.Context, invoiceID int64, status models.InvoiceStatus) (*models.Invoice, error)
	CancelForAppointment(ctx context.Context, appointmentID int64) error
	Get(ctx context.Context, invoiceID int64) (*models.Invoice, error)
	ListByPatient(ctx context.Context, patientID int64) ([]models.Invoice, error)
	Overdue(ctx context.Context, today time.Time) ([]models.Invoice, error)
	MarkOverdue(ctx context.Context, today time.Time) (int, error)
	AgingReport(ctx context.Context, today time.Time) (*AgingReport, error)
	TotalOutstanding(ctx context.Context) (decimal.Decimal, error)
	PatientSummary(ctx context.Context, patientID int64) (*PatientInvoiceSummary, error)
}
