package paymentPlans

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

	"github.com/lib/pq"
)

const planInvoiceConstraint = "payment_plans_invoice_id_key"

type paymentPlanPostgresRepository struct {
	DB *sql.DB
}

func NewPaymentPlanPostgresRepository(db *sql.DB) contracts.PaymentPlanRepository {
	return &paymentPlanPostgresRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlan(row rowScanner, plan *models.PaymentPlan) error {
	err := row.Scan(
		&plan.ID,
		&plan.PlanNumber,
		&plan.InvoiceID,
		&plan.PatientID,
		&plan.TotalAmount,
		&plan.MonthlyPayment,
		&plan.NumberOfPayments,
		&plan.InterestRate,
		&plan.StartDate,
		&plan.EndDate,
		&plan.Status,
		&plan.PaymentsMade,
		&plan.AmountPaid,
		&plan.RemainingBalance,
		&plan.NextPaymentDate,
		&plan.PaymentMethod,
		&plan.Notes,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	plan.StartDate = models.DateOf(plan.StartDate)
	plan.EndDate = models.DateOf(plan.EndDate)
	if plan.NextPaymentDate != nil {
		next := models.DateOf(*plan.NextPaymentDate)
		plan.NextPaymentDate = &next
	}
	return err
}

func scanInstallment(row rowScanner, installment *models.PaymentPlanInstallment) error {
	err := row.Scan(
		&installment.ID,
		&installment.PlanID,
		&installment.InstallmentNumber,
		&installment.DueDate,
		&installment.Amount,
		&installment.AmountPaid,
		&installment.Status,
		&installment.PaymentID,
		&installment.PaidAt,
		&installment.ReminderSent,
	)
	installment.DueDate = models.DateOf(installment.DueDate)
	return err
}

// Create inserts the plan and its schedule. Callers run it inside a transaction.
func (repo *paymentPlanPostgresRepository) Create(ctx context.Context, plan *models.PaymentPlan) error {
	err := database.Executor(ctx, repo.DB).QueryRowContext(ctx, queries.CreatePaymentPlan,
		plan.PlanNumber,
		plan.InvoiceID,
		plan.PatientID,
		plan.TotalAmount,
		plan.MonthlyPayment,
		plan.NumberOfPayments,
		plan.InterestRate,
		plan.StartDate,
		plan.EndDate,
		plan.Status,
		plan.PaymentsMade,
		plan.AmountPaid,
		plan.RemainingBalance,
		plan.NextPaymentDate,
		plan.PaymentMethod,
		plan.Notes,
		plan.CreatedAt,
		plan.UpdatedAt,
	).Scan(&plan.ID)
	if err != nil {
		switch constraint := database.ViolatedConstraint(err); {
		case constraint == planInvoiceConstraint:
			return exceptions.ErrPlanAlreadyExists(plan.InvoiceID, 0)
		case constraint != "":
			return exceptions.ErrDuplicate(err, constvars.ResourcePaymentPlan, plan.PlanNumber)
		}
		return exceptions.ErrSQLQuery(err, "CreatePaymentPlan")
	}

	return repo.insertInstallments(ctx, plan.ID, plan.Installments)
}

func (repo *paymentPlanPostgresRepository) insertInstallments(ctx context.Context, planID int64, installments []models.PaymentPlanInstallment) error {
	for idx := range installments {
		installment := &installments[idx]
		installment.PlanID = planID
		err := database.Executor(ctx, repo.DB).QueryRowContext(ctx, queries.CreateInstallment,
			planID,
			installment.InstallmentNumber,
			installment.DueDate,
			installment.Amount,
			installment.AmountPaid,
			installment.Status,
			installment.PaymentID,
			installment.PaidAt,
			installment.ReminderSent,
		).Scan(&installment.ID)
		if err != nil {
			return exceptions.ErrSQLQuery(err, "CreateInstallment")
		}
	}
	return nil
}

func (repo *paymentPlanPostgresRepository) Update(ctx context.Context, plan *models.PaymentPlan) error {
	result, err := database.Executor(ctx, repo.DB).ExecContext(ctx, queries.UpdatePaymentPlan,
		plan.ID,
		plan.MonthlyPayment,
		plan.NumberOfPayments,
		plan.EndDate,
		plan.Status,
		plan.PaymentsMade,
		plan.AmountPaid,
		plan.RemainingBalance,
		plan.NextPaymentDate,
		plan.Notes,
		plan.UpdatedAt,
	)
	if err != nil {
		return exceptions.ErrSQLQuery(err, "UpdatePaymentPlan")
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return exceptions.ErrNotFound(nil, constvars.ResourcePaymentPlan, plan.ID)
	}
	return nil
}

func (repo *paymentPlanPostgresRepository) UpdateInstallment(ctx context.Context, installment *models.PaymentPlanInstallment) error {
	result, err := database.Executor(ctx, repo.DB).ExecContext(ctx, queries.UpdateInstallment,
		installment.ID,
		installment.Amount,
		installment.AmountPaid,
		installment.Status,
		installment.PaymentID,
		installment.PaidAt,
		installment.ReminderSent,
	)
	if err != nil {
		return exceptions.ErrSQLQuery(err, "UpdateInstallment")
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return exceptions.ErrNotFound(nil, constvars.ResourceInstallment, installment.ID)
	}
	return nil
}

func (repo *paymentPlanPostgresRepository) ReplaceInstallments(ctx context.Context, planID int64, installments []models.PaymentPlanInstallment) error {
	if _, err := database.Executor(ctx, repo.DB).ExecContext(ctx, queries.DeleteInstallmentsByPlan, planID); err != nil {
		return exceptions.ErrSQLQuery(err, "DeleteInstallmentsByPlan")
	}
	return repo.insertInstallments(ctx, planID, installments)
}

func (repo *paymentPlanPostgresRepository) FindByID(ctx context.Context, planID int64) (*models.PaymentPlan, error) {
	return repo.findOne(ctx, "GetPaymentPlanByID", queries.GetPaymentPlanByID, planID, true)
}

func (repo *paymentPlanPostgresRepository) FindByIDForUpdate(ctx context.Context, planID int64) (*models.PaymentPlan, error) {
	return repo.findOne(ctx, "GetPaymentPlanByIDForUpdate", queries.GetPaymentPlanByIDForUpdate, planID, true)
}

// FindByInvoiceID returns nil without error when the invoice has no plan.
func (repo *paymentPlanPostgresRepository) FindByInvoiceID(ctx context.Context, invoiceID int64) (*models.PaymentPlan, error) {
	return repo.findOne(ctx, "GetPaymentPlanByInvoiceID", queries.GetPaymentPlanByInvoiceID, invoiceID, false)
}

func (repo *paymentPlanPostgresRepository) findOne(ctx context.Context, name, query string, id int64, required bool) (*models.PaymentPlan, error) {
	var plan models.PaymentPlan
	row := database.Executor(ctx, repo.DB).QueryRowContext(ctx, query, id)
	if err := scanPlan(row, &plan); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if required {
				return nil, exceptions.ErrNotFound(err, constvars.ResourcePaymentPlan, id)
			}
			return nil, nil
		}
		return nil, exceptions.ErrSQLQuery(err, name)
	}

	installments, err := repo.listInstallments(ctx, "ListInstallmentsByPlan", queries.ListInstallmentsByPlan, plan.ID)
	if err != nil {
		return nil, err
	}
	plan.Installments = installments
	return &plan, nil
}

func (repo *paymentPlanPostgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := database.Executor(ctx, repo.DB).QueryRowContext(ctx, queries.CountPaymentPlans).Scan(&count); err != nil {
		return 0, exceptions.ErrSQLQuery(err, "CountPaymentPlans")
	}
	return count, nil
}

func (repo *paymentPlanPostgresRepository) ListByStatus(ctx context.Context, status models.PaymentPlanStatus) ([]models.PaymentPlan, error) {
	rows, err := database.Executor(ctx, repo.DB).QueryContext(ctx, queries.ListPaymentPlansByStatus, status)
	if err != nil {
		return nil, exceptions.ErrSQLQuery(err, "ListPaymentPlansByStatus")
	}
	defer rows.Close()

	var plans []models.PaymentPlan
	for rows.Next() {
		var plan models.PaymentPlan
		if err := scanPlan(rows, &plan); err != nil {
			return nil, exceptions.ErrSQLScan(err, "ListPaymentPlansByStatus")
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrSQLScan(err, "ListPaymentPlansByStatus")
	}
	rows.Close()

	for idx := range plans {
		installments, err := repo.listInstallments(ctx, "ListInstallmentsByPlan", queries.ListInstallmentsByPlan, plans[idx].ID)
		if err != nil {
			return nil, err
		}
		plans[idx].Installments = installments
	}
	return plans, nil
}

func (repo *paymentPlanPostgresRepository) ListInstallmentsDueBefore(ctx context.Context, statuses []models.InstallmentStatus, date time.Time) ([]models.PaymentPlanInstallment, error) {
	values := make([]string, 0, len(statuses))
	for _, status := range statuses {
		values = append(values, string(status))
	}
	return repo.listInstallments(ctx, "ListInstallmentsDueBefore", queries.ListInstallmentsDueBefore, pq.Array(values), models.DateOf(date))
}

func (repo *paymentPlanPostgresRepository) listInstallments(ctx context.Context, name, query string, args ...interface{}) ([]models.PaymentPlanInstallment, error) {
	rows, err := database.Executor(ctx, repo.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, exceptions.ErrSQLQuery(err, name)
	}
	defer rows.Close()

	var installments []models.PaymentPlanInstallment
	for rows.Next() {
		var installment models.PaymentPlanInstallment
		if err := scanInstallment(rows, &installment); err != nil {
			return nil, exceptions.ErrSQLScan(err, name)
		}
		installments = append(installments, installment)
	}
	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrSQLScan(err, name)
	}
	return installments, nil
}
