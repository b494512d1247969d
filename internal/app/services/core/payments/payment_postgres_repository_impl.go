package payments

import (
	"context"
	"database/sql"
	"errors"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/drivers/database"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/queries"
	"time"

	"github.com/shopspring/decimal"
)

type paymentPostgresRepository struct {
	DB *sql.DB
}

func NewPaymentPostgresRepository(db *sql.DB) contracts.PaymentRepository {
	return &paymentPostgresRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(row rowScanner, payment *models.Payment) error {
	return row.Scan(
		&payment.ID,
		&payment.TransactionID,
		&payment.ReceiptNumber,
		&payment.InvoiceID,
		&payment.PatientID,
		&payment.Amount,
		&payment.Method,
		&payment.Status,
		&payment.PaymentDate,
		&payment.CardLastFour,
		&payment.ReferenceNumber,
		&payment.BankSlipPath,
		&payment.Notes,
		&payment.VerificationNotes,
		&payment.VerifiedBy,
		&payment.VerifiedAt,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
}

func (repo *paymentPostgresRepository) Create(ctx context.Context, payment *models.Payment) error {
	err := database.Executor(ctx, repo.DB).QueryRowContext(ctx, queries.CreatePayment,
		payment.TransactionID,
		payment.ReceiptNumber,
		payment.InvoiceID,
		payment.PatientID,
		payment.Amount,
		payment.Method,
		payment.Status,
		payment.PaymentDate,
		payment.CardLastFour,
		payment.ReferenceNumber,
		payment.BankSlipPath,
		payment.Notes,
		payment.CreatedAt,
		payment.UpdatedAt,
	).Scan(&payment.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return exceptions.ErrDuplicate(err, constvars.ResourcePayment, payment.TransactionID)
		}
		return exceptions.ErrSQLQuery(err, "CreatePayment")
	}
	return nil
}

func (repo *paymentPostgresRepository) Update(ctx context.Context, payment *models.Payment) error {
	result, err := database.Executor(ctx, repo.DB).ExecContext(ctx, queries.UpdatePayment,
		payment.ID,
		payment.ReceiptNumber,
		payment.Amount,
		payment.Status,
		payment.PaymentDate,
		payment.BankSlipPath,
		payment.Notes,
		payment.VerificationNotes,
		payment.VerifiedBy,
		payment.VerifiedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		return exceptions.ErrSQLQuery(err, "UpdatePayment")
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return exceptions.ErrNotFound(nil, constvars.ResourcePayment, payment.ID)
	}
	return nil
}

func (repo *paymentPostgresRepository) FindByID(ctx context.Context, paymentID int64) (*models.Payment, error) {
	return repo.findOne(ctx, "GetPaymentByID", queries.GetPaymentByID, paymentID)
}

func (repo *paymentPostgresRepository) FindByIDForUpdate(ctx context.Context, paymentID int64) (*models.Payment, error) {
	return repo.findOne(ctx, "GetPaymentByIDForUpdate", queries.GetPaymentByIDForUpdate, paymentID)
}

func (repo *paymentPostgresRepository) findOne(ctx context.Context, name, query string, paymentID int64) (*models.Payment, error) {
	var payment models.Payment
	row := database.Executor(ctx, repo.DB).QueryRowContext(ctx, query, paymentID)
	if err := scanPayment(row, &payment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, exceptions.ErrNotFound(err, constvars.ResourcePayment, paymentID)
		}
		return nil, exceptions.ErrSQLQuery(err, name)
	}
	return &payment, nil
}

func (repo *paymentPostgresRepository) ListByInvoice(ctx context.Context, invoiceID int64) ([]models.Payment, error) {
	return repo.list(ctx, "ListPaymentsByInvoice", queries.ListPaymentsByInvoice, invoiceID)
}

func (repo *paymentPostgresRepository) ListByStatusAndMethod(ctx context.Context, status models.PaymentStatus, method models.PaymentMethod) ([]models.Payment, error) {
	return repo.list(ctx, "ListPaymentsByStatusAndMethod", queries.ListPaymentsByStatusAndMethod, status, method)
}

// ListByDateRange matches payment dates in [from, to).
func (repo *paymentPostgresRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Payment, error) {
	return repo.list(ctx, "ListPaymentsByDateRange", queries.ListPaymentsByDateRange, from, to)
}

func (repo *paymentPostgresRepository) SumCompleted(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := database.Executor(ctx, repo.DB).QueryRowContext(ctx, queries.SumCompletedPayments, from, to).Scan(&sum)
	if err != nil {
		return decimal.Zero, exceptions.ErrSQLQuery(err, "SumCompletedPayments")
	}
	return sum, nil
}

func (repo *paymentPostgresRepository) list(ctx context.Context, name, query string, args ...interface{}) ([]models.Payment, error) {
	rows, err := database.Executor(ctx, repo.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, exceptions.ErrSQLQuery(err, name)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var payment models.Payment
		if err := scanPayment(rows, &payment); err != nil {
			return nil, exceptions.ErrSQLScan(err, name)
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrSQLScan(err, name)
	}
	return payments, nil
}
