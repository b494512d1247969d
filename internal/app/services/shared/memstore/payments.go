package memstore

import (
	"context"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentRepository struct {
	store *Store
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.store.do(ctx, func(st *state) error {
		for _, existing := range st.payments {
			if existing.TransactionID == payment.TransactionID {
				return exceptions.ErrDuplicate(nil, constvars.ResourcePayment, payment.TransactionID)
			}
		}
		payment.ID = st.next("payments")
		st.payments[payment.ID] = *payment
		return nil
	})
}

func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return r.store.do(ctx, func(st *state) error {
		if _, ok := st.payments[payment.ID]; !ok {
			return exceptions.ErrNotFound(nil, constvars.ResourcePayment, payment.ID)
		}
		st.payments[payment.ID] = *payment
		return nil
	})
}

func (r *PaymentRepository) FindByID(ctx context.Context, paymentID int64) (*models.Payment, error) {
	var payment models.Payment
	err := r.store.do(ctx, func(st *state) error {
		found, ok := st.payments[paymentID]
		if !ok {
			return exceptions.ErrNotFound(nil, constvars.ResourcePayment, paymentID)
		}
		payment = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepository) FindByIDForUpdate(ctx context.Context, paymentID int64) (*models.Payment, error) {
	return r.FindByID(ctx, paymentID)
}

func (r *PaymentRepository) ListByInvoice(ctx context.Context, invoiceID int64) ([]models.Payment, error) {
	return r.list(ctx, func(p models.Payment) bool { return p.InvoiceID == invoiceID })
}

func (r *PaymentRepository) ListByStatusAndMethod(ctx context.Context, status models.PaymentStatus, method models.PaymentMethod) ([]models.Payment, error) {
	return r.list(ctx, func(p models.Payment) bool { return p.Status == status && p.Method == method })
}

// ListByDateRange matches payment dates in [from, to).
func (r *PaymentRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Payment, error) {
	return r.list(ctx, func(p models.Payment) bool { return paidWithin(p, from, to) })
}

func (r *PaymentRepository) SumCompleted(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	payments, err := r.list(ctx, func(p models.Payment) bool {
		return p.Status == models.PaymentStatusCompleted && paidWithin(p, from, to)
	})
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, payment := range payments {
		sum = sum.Add(payment.Amount)
	}
	return sum, nil
}

func (r *PaymentRepository) list(ctx context.Context, match func(models.Payment) bool) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.store.do(ctx, func(st *state) error {
		for _, existing := range st.payments {
			if match(existing) {
				payments = append(payments, existing)
			}
		}
		return nil
	})
	sort.Slice(payments, func(i, j int) bool { return payments[i].ID < payments[j].ID })
	return payments, err
}

func paidWithin(payment models.Payment, from, to time.Time) bool {
	if payment.PaymentDate == nil {
		return false
	}
	return !payment.PaymentDate.Before(from) && payment.PaymentDate.Before(to)
}
