package memstore

import (
	"context"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"sort"
	"time"
)

type PaymentPlanRepository struct {
	store *Store
}

func (r *PaymentPlanRepository) Create(ctx context.Context, plan *models.PaymentPlan) error {
	return r.store.do(ctx, func(st *state) error {
		for _, existing := range st.plans {
			if existing.InvoiceID == plan.InvoiceID {
				return exceptions.ErrPlanAlreadyExists(plan.InvoiceID, existing.ID)
			}
			if existing.PlanNumber == plan.PlanNumber {
				return exceptions.ErrDuplicate(nil, constvars.ResourcePaymentPlan, plan.PlanNumber)
			}
		}
		plan.ID = st.next("payment_plans")
		for idx := range plan.Installments {
			plan.Installments[idx].ID = st.next("payment_plan_installments")
			plan.Installments[idx].PlanID = plan.ID
		}
		st.plans[plan.ID] = copyPlan(*plan)
		return nil
	})
}

func (r *PaymentPlanRepository) Update(ctx context.Context, plan *models.PaymentPlan) error {
	return r.store.do(ctx, func(st *state) error {
		existing, ok := st.plans[plan.ID]
		if !ok {
			return exceptions.ErrNotFound(nil, constvars.ResourcePaymentPlan, plan.ID)
		}
		updated := copyPlan(*plan)
		updated.Installments = existing.Installments
		st.plans[plan.ID] = updated
		return nil
	})
}

func (r *PaymentPlanRepository) UpdateInstallment(ctx context.Context, installment *models.PaymentPlanInstallment) error {
	return r.store.do(ctx, func(st *state) error {
		existing, ok := st.plans[installment.PlanID]
		if !ok {
			return exceptions.ErrNotFound(nil, constvars.ResourcePaymentPlan, installment.PlanID)
		}
		existing = copyPlan(existing)
		for idx := range existing.Installments {
			if existing.Installments[idx].ID == installment.ID {
				existing.Installments[idx] = *installment
				st.plans[existing.ID] = existing
				return nil
			}
		}
		return exceptions.ErrNotFound(nil, constvars.ResourceInstallment, installment.ID)
	})
}

func (r *PaymentPlanRepository) ReplaceInstallments(ctx context.Context, planID int64, installments []models.PaymentPlanInstallment) error {
	return r.store.do(ctx, func(st *state) error {
		existing, ok := st.plans[planID]
		if !ok {
			return exceptions.ErrNotFound(nil, constvars.ResourcePaymentPlan, planID)
		}
		for idx := range installments {
			installments[idx].ID = st.next("payment_plan_installments")
			installments[idx].PlanID = planID
		}
		existing.Installments = append([]models.PaymentPlanInstallment(nil), installments...)
		st.plans[planID] = existing
		return nil
	})
}

func (r *PaymentPlanRepository) FindByID(ctx context.Context, planID int64) (*models.PaymentPlan, error) {
	var plan models.PaymentPlan
	err := r.store.do(ctx, func(st *state) error {
		found, ok := st.plans[planID]
		if !ok {
			return exceptions.ErrNotFound(nil, constvars.ResourcePaymentPlan, planID)
		}
		plan = copyPlan(found)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *PaymentPlanRepository) FindByIDForUpdate(ctx context.Context, planID int64) (*models.PaymentPlan, error) {
	return r.FindByID(ctx, planID)
}

func (r *PaymentPlanRepository) FindByInvoiceID(ctx context.Context, invoiceID int64) (*models.PaymentPlan, error) {
	var plan *models.PaymentPlan
	err := r.store.do(ctx, func(st *state) error {
		for _, existing := range st.plans {
			if existing.InvoiceID == invoiceID {
				found := copyPlan(existing)
				plan = &found
				return nil
			}
		}
		return nil
	})
	return plan, err
}

func (r *PaymentPlanRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.store.do(ctx, func(st *state) error {
		count = int64(len(st.plans))
		return nil
	})
	return count, err
}

func (r *PaymentPlanRepository) ListByStatus(ctx context.Context, status models.PaymentPlanStatus) ([]models.PaymentPlan, error) {
	var plans []models.PaymentPlan
	err := r.store.do(ctx, func(st *state) error {
		for _, existing := range st.plans {
			if existing.Status == status {
				plans = append(plans, copyPlan(existing))
			}
		}
		return nil
	})
	sort.Slice(plans, func(i, j int) bool { return plans[i].ID < plans[j].ID })
	return plans, err
}

// ListInstallmentsDueBefore returns installments in one of statuses whose due date is before date.
func (r *PaymentPlanRepository) ListInstallmentsDueBefore(ctx context.Context, statuses []models.InstallmentStatus, date time.Time) ([]models.PaymentPlanInstallment, error) {
	var installments []models.PaymentPlanInstallment
	err := r.store.do(ctx, func(st *state) error {
		for _, plan := range st.plans {
			for _, inst := range plan.Installments {
				if inst.DueDate.Before(date) && hasInstallmentStatus(inst.Status, statuses) {
					installments = append(installments, inst)
				}
			}
		}
		return nil
	})
	sort.Slice(installments, func(i, j int) bool {
		if !installments[i].DueDate.Equal(installments[j].DueDate) {
			return installments[i].DueDate.Before(installments[j].DueDate)
		}
		return installments[i].ID < installments[j].ID
	})
	return installments, err
}

func hasInstallmentStatus(status models.InstallmentStatus, statuses []models.InstallmentStatus) bool {
	for _, candidate := range statuses {
		if status == candidate {
			return true
		}
	}
	return false
}

