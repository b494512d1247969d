package invoices

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

	"github.com/lib/pq"
)

type invoicePostgresRepository struct {
	DB *sql.DB
}

func NewInvoicePostgresRepository(db *sql.DB) contracts.InvoiceRepository {
	return &invoicePostgresRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvoice(row rowScanner, invoice *models.Invoice) error {
	err := row.Scan(
		&invoice.ID,
		&invoice.InvoiceNumber,
		&invoice.PatientID,
		&invoice.AppointmentID,
		&invoice.OrderID,
		&invoice.IssueDate,
		&invoice.DueDate,
		&invoice.Subtotal,
		&invoice.Tax,
		&invoice.Discount,
		&invoice.Total,
		&invoice.AmountPaid,
		&invoice.BalanceDue,
		&invoice.Status,
		&invoice.Description,
		&invoice.Notes,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	)
	invoice.IssueDate = models.DateOf(invoice.IssueDate)
	invoice.DueDate = models.DateOf(invoice.DueDate)
	return err
}

// Create inserts the invoice and its items. Callers run it inside a transaction.
func (repo *invoicePostgresRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	err := database.Executor(ctx, repo.DB).QueryRowContext(ctx, queries.CreateInvoice,
		invoice.PatientID,
		invoice.AppointmentID,
		invoice.OrderID,
		invoice.IssueDate,
		invoice.DueDate,
		invoice.Subtotal,
		invoice.Tax,
		invoice.Discount,
		invoice.Total,
		invoice.AmountPaid,
		invoice.BalanceDue,
		invoice.Status,
		invoice.Description,
		invoice.Notes,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	).Scan(&invoice.ID)
	if err != nil {
		return exceptions.ErrSQLQuery(err, "CreateInvoice")
	}

	for idx := range invoice.Items {
		if err := repo.insertItem(ctx, invoice.ID, &invoice.Items[idx]); err != nil {
			return err
		}
	}
	return nil
}

func (repo *invoicePostgresRepository) UpdateInvoiceNumber(ctx context.Context, invoiceID int64, invoiceNumber string) error {
	if _, err := database.Executor(ctx, repo.DB).ExecContext(ctx, queries.UpdateInvoiceNumber, invoiceID, invoiceNumber); err != nil {
		if database.IsUniqueViolation(err) {
			return exceptions.ErrDuplicate(err, constvars.ResourceInvoice, invoiceNumber)
		}
		return exceptions.ErrSQLQuery(err, "UpdateInvoiceNumber")
	}
	return nil
}

func (repo *invoicePostgresRepository) AddItem(ctx context.Context, invoiceID int64, item *models.InvoiceItem) error {
	return repo.insertItem(ctx, invoiceID, item)
}

func (repo *invoicePostgresRepository) insertItem(ctx context.Context, invoiceID int64, item *models.InvoiceItem) error {
	item.InvoiceID = invoiceID
	err := database.Executor(ctx, repo.DB).QueryRowContext(ctx, queries.CreateInvoiceItem,
		invoiceID,
		item.Description,
		item.Quantity,
		item.UnitPrice,
		item.LineTotal,
	).Scan(&item.ID)
	if err != nil {
		return exceptions.ErrSQLQuery(err, "CreateInvoiceItem")
	}
	return nil
}

func (repo *invoicePostgresRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	result, err := database.Executor(ctx, repo.DB).ExecContext(ctx, queries.UpdateInvoice,
		invoice.ID,
		invoice.Subtotal,
		invoice.Tax,
		invoice.Discount,
		invoice.Total,
		invoice.AmountPaid,
		invoice.BalanceDue,
		invoice.Status,
		invoice.Notes,
		invoice.UpdatedAt,
	)
	if err != nil {
		return exceptions.ErrSQLQuery(err, "UpdateInvoice")
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return exceptions.ErrNotFound(nil, constvars.ResourceInvoice, invoice.ID)
	}
	return nil
}

func (repo *invoicePostgresRepository) FindByID(ctx context.Context, invoiceID int64) (*models.Invoice, error) {
	return repo.findOne(ctx, "GetInvoiceByID", queries.GetInvoiceByID, invoiceID, true)
}

func (repo *invoicePostgresRepository) FindByIDForUpdate(ctx context.Context, invoiceID int64) (*models.Invoice, error) {
	return repo.findOne(ctx, "GetInvoiceByIDForUpdate", queries.GetInvoiceByIDForUpdate, invoiceID, true)
}

// FindByAppointmentID returns nil without error when the appointment has no invoice.
func (repo *invoicePostgresRepository) FindByAppointmentID(ctx context.Context, appointmentID int64) (*models.Invoice, error) {
	return repo.findOne(ctx, "GetInvoiceByAppointmentID", queries.GetInvoiceByAppointmentID, appointmentID, false)
}

func (repo *invoicePostgresRepository) findOne(ctx context.Context, name, query string, id int64, required bool) (*models.Invoice, error) {
	var invoice models.Invoice
	row := database.Executor(ctx, repo.DB).QueryRowContext(ctx, query, id)
	if err := scanInvoice(row, &invoice); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if required {
				return nil, exceptions.ErrNotFound(err, constvars.ResourceInvoice, id)
			}
			return nil, nil
		}
		return nil, exceptions.ErrSQLQuery(err, name)
	}

	items, err := repo.listItems(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	invoice.Items = items
	return &invoice, nil
}

func (repo *invoicePostgresRepository) ListByPatient(ctx context.Context, patientID int64) ([]models.Invoice, error) {
	return repo.list(ctx, "ListInvoicesByPatient", queries.ListInvoicesByPatient, patientID)
}

func (repo *invoicePostgresRepository) ListByStatuses(ctx context.Context, statuses []models.InvoiceStatus) ([]models.Invoice, error) {
	values := make([]string, 0, len(statuses))
	for _, status := range statuses {
		values = append(values, string(status))
	}
	return repo.list(ctx, "ListInvoicesByStatuses", queries.ListInvoicesByStatuses, pq.Array(values))
}

func (repo *invoicePostgresRepository) list(ctx context.Context, name, query string, args ...interface{}) ([]models.Invoice, error) {
	rows, err := database.Executor(ctx, repo.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, exceptions.ErrSQLQuery(err, name)
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		var invoice models.Invoice
		if err := scanInvoice(rows, &invoice); err != nil {
			return nil, exceptions.ErrSQLScan(err, name)
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrSQLScan(err, name)
	}
	rows.Close()

	for idx := range invoices {
		items, err := repo.listItems(ctx, invoices[idx].ID)
		if err != nil {
			return nil, err
		}
		invoices[idx].Items = items
	}
	return invoices, nil
}

func (repo *invoicePostgresRepository) listItems(ctx context.Context, invoiceID int64) ([]models.InvoiceItem, error) {
	rows, err := database.Executor(ctx, repo.DB).QueryContext(ctx, queries.ListInvoiceItems, invoiceID)
	if err != nil {
		return nil, exceptions.ErrSQLQuery(err, "ListInvoiceItems")
	}
	defer rows.Close()

	var items []models.InvoiceItem
	for rows.Next() {
		var item models.InvoiceItem
		if err := rows.Scan(
			&item.ID,
			&item.InvoiceID,
			&item.Description,
			&item.Quantity,
			&item.UnitPrice,
			&item.LineTotal,
		); err != nil {
			return nil, exceptions.ErrSQLScan(err, "ListInvoiceItems")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrSQLScan(err, "ListInvoiceItems")
	}
	return items, nil
}
