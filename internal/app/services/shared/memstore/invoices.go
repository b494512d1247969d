package memstore

import (
	"context"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"sort"
)

type InvoiceRepository struct {
	store *Store
}

func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.store.do(ctx, func(st *state) error {
		invoice.ID = st.next("invoices")
		for idx := range invoice.Items {
			invoice.Items[idx].ID = st.next("invoice_items")
			invoice.Items[idx].InvoiceID = invoice.ID
		}
		st.invoices[invoice.ID] = copyInvoice(*invoice)
		return nil
	})
}

func (r *InvoiceRepository) UpdateInvoiceNumber(ctx context.Context, invoiceID int64, invoiceNumber string) error {
	return r.store.do(ctx, func(st *state) error {
		existing, ok := st.invoices[invoiceID]
		if !ok {
			return exceptions.ErrNotFound(nil, constvars.ResourceInvoice, invoiceID)
		}
		existing.InvoiceNumber = invoiceNumber
		st.invoices[invoiceID] = existing
		return nil
	})
}

func (r *InvoiceRepository) AddItem(ctx context.Context, invoiceID int64, item *models.InvoiceItem) error {
	return r.store.do(ctx, func(st *state) error {
		existing, ok := st.invoices[invoiceID]
		if !ok {
			return exceptions.ErrNotFound(nil, constvars.ResourceInvoice, invoiceID)
		}
		item.ID = st.next("invoice_items")
		item.InvoiceID = invoiceID
		existing = copyInvoice(existing)
		existing.Items = append(existing.Items, *item)
		st.invoices[invoiceID] = existing
		return nil
	})
}

func (r *InvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	return r.store.do(ctx, func(st *state) error {
		existing, ok := st.invoices[invoice.ID]
		if !ok {
			return exceptions.ErrNotFound(nil, constvars.ResourceInvoice, invoice.ID)
		}
		existing.Subtotal = invoice.Subtotal
		existing.Tax = invoice.Tax
		existing.Discount = invoice.Discount
		existing.Total = invoice.Total
		existing.AmountPaid = invoice.AmountPaid
		existing.BalanceDue = invoice.BalanceDue
		existing.Status = invoice.Status
		existing.Notes = invoice.Notes
		existing.UpdatedAt = invoice.UpdatedAt
		st.invoices[invoice.ID] = existing
		return nil
	})
}

func (r *InvoiceRepository) FindByID(ctx context.Context, invoiceID int64) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.store.do(ctx, func(st *state) error {
		found, ok := st.invoices[invoiceID]
		if !ok {
			return exceptions.ErrNotFound(nil, constvars.ResourceInvoice, invoiceID)
		}
		invoice = copyInvoice(found)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) FindByIDForUpdate(ctx context.Context, invoiceID int64) (*models.Invoice, error) {
	return r.FindByID(ctx, invoiceID)
}

func (r *InvoiceRepository) FindByAppointmentID(ctx context.Context, appointmentID int64) (*models.Invoice, error) {
	var invoice *models.Invoice
	err := r.store.do(ctx, func(st *state) error {
		for _, existing := range st.invoices {
			if existing.AppointmentID != nil && *existing.AppointmentID == appointmentID {
				found := copyInvoice(existing)
				invoice = &found
				return nil
			}
		}
		return nil
	})
	return invoice, err
}

func (r *InvoiceRepository) ListByPatient(ctx context.Context, patientID int64) ([]models.Invoice, error) {
	return r.list(ctx, func(inv models.Invoice) bool { return inv.PatientID == patientID })
}

func (r *InvoiceRepository) ListByStatuses(ctx context.Context, statuses []models.InvoiceStatus) ([]models.Invoice, error) {
	return r.list(ctx, func(inv models.Invoice) bool {
		for _, status := range statuses {
			if inv.Status == status {
				return true
			}
		}
		return false
	})
}

func (r *InvoiceRepository) list(ctx context.Context, match func(models.Invoice) bool) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.store.do(ctx, func(st *state) error {
		for _, existing := range st.invoices {
			if match(existing) {
				invoices = append(invoices, copyInvoice(existing))
			}
		}
		return nil
	})
	sort.Slice(invoices, func(i, j int) bool { return invoices[i].ID < invoices[j].ID })
	return invoices, err
}

