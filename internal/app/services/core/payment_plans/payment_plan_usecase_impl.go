package paymentPlans

import (
	"context"
	"fmt"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type paymentPlanUsecase struct {
	Transactor            contracts.Transactor
	PaymentPlanRepository contracts.PaymentPlanRepository
	InvoiceRepository     contracts.InvoiceRepository
	InvoiceUsecase        contracts.InvoiceUsecase
	PaymentUsecase        contracts.PaymentUsecase
	Log                   *zap.Logger
}

func NewPaymentPlanUsecase(
	transactor contracts.Transactor,
	paymentPlanRepository contracts.PaymentPlanRepository,
	invoiceRepository contracts.InvoiceRepository,
	invoiceUsecase contracts.InvoiceUsecase,
	paymentUsecase contracts.PaymentUsecase,
	logger *zap.Logger,
) contracts.PaymentPlanUsecase {
	return &paymentPlanUsecase{
		Transactor:            transactor,
		PaymentPlanRepository: paymentPlanRepository,
		InvoiceRepository:     invoiceRepository,
		InvoiceUsecase:        invoiceUsecase,
		PaymentUsecase:        paymentUsecase,
		Log:                   logger,
	}
}

// CreatePlan finances the invoice's current balance. With a positive interest rate the invoice
// total grows by the interest item, so TotalAmount is the balance plus interest and equals both
// the schedule sum and the new invoice balance.
func (uc *paymentPlanUsecase) CreatePlan(ctx context.Context, input contracts.CreatePaymentPlanInput) (*models.PaymentPlan, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentPlanUsecase.CreatePlan called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingInvoiceIDKey, input.InvoiceID),
		zap.Int("installments", input.NumberOfInstallments),
	)

	if input.NumberOfInstallments < 1 {
		return nil, exceptions.ErrInvalidFormat(fmt.Errorf("number of installments %d must be at least 1", input.NumberOfInstallments), "payment plan")
	}
	if input.InterestRate.IsNegative() {
		return nil, exceptions.ErrInvalidFormat(fmt.Errorf("interest rate %s must not be negative", input.InterestRate), "payment plan")
	}

	now := time.Now()
	start := models.DateOf(input.StartDate)
	if input.StartDate.IsZero() {
		start = models.DateOf(now)
	}

	var plan *models.PaymentPlan
	err := uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		invoice, err := uc.InvoiceRepository.FindByIDForUpdate(ctx, input.InvoiceID)
		if err != nil {
			return err
		}
		if invoice.Status == models.InvoiceStatusPaid {
			return exceptions.ErrInvoiceAlreadyPaid(invoice.ID)
		}
		if !invoice.AcceptsPayments() || !invoice.BalanceDue.IsPositive() {
			return exceptions.ErrInvoiceNotPayable(invoice.ID, string(invoice.Status))
		}
		existing, err := uc.PaymentPlanRepository.FindByInvoiceID(ctx, invoice.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return exceptions.ErrPlanAlreadyExists(invoice.ID, existing.ID)
		}

		principal := invoice.BalanceDue
		monthly := MonthlyPayment(principal, input.InterestRate, input.NumberOfInstallments)
		financed := FinancedTotal(principal, input.InterestRate)
		installments, err := BuildSchedule(financed, monthly, input.NumberOfInstallments, start)
		if err != nil {
			return err
		}

		if interest := financed.Sub(principal); interest.IsPositive() {
			item := models.NewInvoiceItem(constvars.PlanInterestItemName, 1, interest)
			if _, err := uc.InvoiceUsecase.AddItem(ctx, invoice.ID, item); err != nil {
				return err
			}
		}

		count, err := uc.PaymentPlanRepository.Count(ctx)
		if err != nil {
			return err
		}

		nextPaymentDate := start
		plan = &models.PaymentPlan{
			PlanNumber:       models.PlanNumberFor(now.Year(), count+1),
			InvoiceID:        invoice.ID,
			PatientID:        invoice.PatientID,
			TotalAmount:      financed,
			MonthlyPayment:   monthly,
			NumberOfPayments: input.NumberOfInstallments,
			InterestRate:     input.InterestRate,
			StartDate:        start,
			EndDate:          models.AddMonths(start, input.NumberOfInstallments-1),
			Status:           models.PaymentPlanStatusActive,
			AmountPaid:       decimal.Zero,
			RemainingBalance: financed,
			NextPaymentDate:  &nextPaymentDate,
			PaymentMethod:    input.Method,
			Notes:            strings.TrimSpace(input.Notes),
			Installments:     installments,
		}
		plan.SetCreatedAtUpdatedAt(now)
		if err := uc.PaymentPlanRepository.Create(ctx, plan); err != nil {
			return err
		}

		_, err = uc.InvoiceUsecase.SetStatus(ctx, invoice.ID, models.InvoiceStatusPartiallyPaid)
		return err
	})
	if err != nil {
		uc.Log.Warn("paymentPlanUsecase.CreatePlan plan rejected",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingInvoiceIDKey, input.InvoiceID),
			zap.Error(err),
		)
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "payment_plan_created", requestID,
		zap.Int64(constvars.LoggingPlanIDKey, plan.ID),
		zap.String("plan_number", plan.PlanNumber),
		zap.Int64(constvars.LoggingInvoiceIDKey, plan.InvoiceID),
		zap.String(constvars.LoggingAmountKey, plan.TotalAmount.StringFixed(2)),
		zap.String("monthly_payment", plan.MonthlyPayment.StringFixed(2)),
	)
	return plan, nil
}

// UpdateStatus applies suspend, resume, cancel or complete.
func (uc *paymentPlanUsecase) UpdateStatus(ctx context.Context, planID int64, action string, notes string) (*models.PaymentPlan, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentPlanUsecase.UpdateStatus called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingPlanIDKey, planID),
		zap.String(constvars.LoggingActionKey, action),
	)

	planAction := contracts.PaymentPlanAction(strings.ToLower(strings.TrimSpace(action)))
	target, allowedFrom, ok := planTransition(planAction)
	if !ok {
		return nil, exceptions.ErrInvalidAction(action, constvars.ResourcePaymentPlan)
	}

	var plan *models.PaymentPlan
	err := uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, err := uc.PaymentPlanRepository.FindByIDForUpdate(ctx, planID)
		if err != nil {
			return err
		}
		if !containsPlanStatus(allowedFrom, locked.Status) {
			return exceptions.ErrInvalidStatusChange(constvars.ResourcePaymentPlan, string(locked.Status), string(target))
		}

		now := time.Now()
		switch planAction {
		case contracts.PaymentPlanActionCancel:
			for idx := range locked.Installments {
				installment := &locked.Installments[idx]
				if installment.Status != models.InstallmentStatusPending {
					continue
				}
				installment.Status = models.InstallmentStatusCancelled
				if err := uc.PaymentPlanRepository.UpdateInstallment(ctx, installment); err != nil {
					return err
				}
			}
			locked.NextPaymentDate = nil
		case contracts.PaymentPlanActionComplete:
			if _, err := uc.InvoiceUsecase.SetStatus(ctx, locked.InvoiceID, models.InvoiceStatusPaid); err != nil {
				return err
			}
			locked.NextPaymentDate = nil
		}

		locked.Status = target
		if note := strings.TrimSpace(notes); note != "" {
			locked.Notes = appendPlanNote(locked.Notes, fmt.Sprintf("%s: %s", planAction, note))
		}
		locked.SetUpdatedAt(now)
		if err := uc.PaymentPlanRepository.Update(ctx, locked); err != nil {
			return err
		}
		plan = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "payment_plan_status_changed", requestID,
		zap.Int64(constvars.LoggingPlanIDKey, plan.ID),
		zap.String(constvars.LoggingActionKey, string(planAction)),
		zap.String(constvars.LoggingStatusKey, string(plan.Status)),
	)
	return plan, nil
}

func planTransition(action contracts.PaymentPlanAction) (models.PaymentPlanStatus, []models.PaymentPlanStatus, bool) {
	switch action {
	case contracts.PaymentPlanActionSuspend:
		return models.PaymentPlanStatusSuspended, []models.PaymentPlanStatus{models.PaymentPlanStatusActive}, true
	case contracts.PaymentPlanActionResume:
		return models.PaymentPlanStatusActive, []models.PaymentPlanStatus{models.PaymentPlanStatusSuspended, models.PaymentPlanStatusDefaulted}, true
	case contracts.PaymentPlanActionCancel:
		return models.PaymentPlanStatusCancelled, []models.PaymentPlanStatus{models.PaymentPlanStatusActive, models.PaymentPlanStatusSuspended, models.PaymentPlanStatusDefaulted}, true
	case contracts.PaymentPlanActionComplete:
		return models.PaymentPlanStatusCompleted, []models.PaymentPlanStatus{models.PaymentPlanStatusActive, models.PaymentPlanStatusSuspended}, true
	}
	return "", nil, false
}

func containsPlanStatus(statuses []models.PaymentPlanStatus, status models.PaymentPlanStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func appendPlanNote(notes, note string) string {
	if notes == "" {
		return note
	}
	return notes + " | " + note
}

// Adjust discards the current schedule, including any partial payment history on it,
// and regenerates it from the original start date.
func (uc *paymentPlanUsecase) Adjust(ctx context.Context, input contracts.AdjustPaymentPlanInput) (*models.PaymentPlan, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentPlanUsecase.Adjust called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingPlanIDKey, input.PlanID),
		zap.Int("new_duration", input.NewDuration),
		zap.String("new_monthly_amount", input.NewMonthlyAmount.StringFixed(2)),
	)

	if input.NewDuration < 1 {
		return nil, exceptions.ErrInvalidFormat(fmt.Errorf("duration %d must be at least 1", input.NewDuration), "payment plan adjustment")
	}
	if !input.NewMonthlyAmount.IsPositive() {
		return nil, exceptions.ErrInvalidAmount(input.NewMonthlyAmount.StringFixed(2), "monthly amount must be positive")
	}
	monthly := models.RoundMoney(input.NewMonthlyAmount)

	var plan *models.PaymentPlan
	err := uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, err := uc.PaymentPlanRepository.FindByIDForUpdate(ctx, input.PlanID)
		if err != nil {
			return err
		}
		if locked.Status != models.PaymentPlanStatusActive && locked.Status != models.PaymentPlanStatusSuspended {
			return exceptions.ErrPlanNotActive(locked.ID, string(locked.Status))
		}

		installments := FixedSchedule(monthly, input.NewDuration, locked.StartDate)
		if err := uc.PaymentPlanRepository.ReplaceInstallments(ctx, locked.ID, installments); err != nil {
			return err
		}

		scheduled := monthly.Mul(decimal.NewFromInt(int64(input.NewDuration)))
		nextPaymentDate := locked.StartDate
		locked.Installments = installments
		locked.MonthlyPayment = monthly
		locked.NumberOfPayments = input.NewDuration
		locked.EndDate = models.AddMonths(locked.StartDate, input.NewDuration-1)
		locked.PaymentsMade = 0
		locked.RemainingBalance = decimal.Max(decimal.Zero, scheduled.Sub(locked.AmountPaid))
		locked.NextPaymentDate = &nextPaymentDate
		if reason := strings.TrimSpace(input.Reason); reason != "" {
			locked.Notes = appendPlanNote(locked.Notes, "adjusted: "+reason)
		}
		locked.SetUpdatedAt(time.Now())
		if err := uc.PaymentPlanRepository.Update(ctx, locked); err != nil {
			return err
		}
		plan = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "payment_plan_adjusted", requestID,
		zap.Int64(constvars.LoggingPlanIDKey, plan.ID),
		zap.Int("number_of_payments", plan.NumberOfPayments),
		zap.String("monthly_payment", plan.MonthlyPayment.StringFixed(2)),
		zap.String("reason", input.Reason),
	)
	return plan, nil
}

// PayInstallment charges the payment through the payment engine and credits the installment
// inside the same transaction that applies the payment to the invoice.
func (uc *paymentPlanUsecase) PayInstallment(ctx context.Context, input contracts.PayInstallmentInput) (*contracts.InstallmentPaymentResult, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentPlanUsecase.PayInstallment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingPlanIDKey, input.PlanID),
		zap.Int("installment_number", input.InstallmentNumber),
		zap.String(constvars.LoggingAmountKey, input.Amount.StringFixed(2)),
	)

	plan, err := uc.PaymentPlanRepository.FindByID(ctx, input.PlanID)
	if err != nil {
		return nil, err
	}
	if _, err := checkInstallmentPayable(plan, input.InstallmentNumber, input.Amount); err != nil {
		return nil, err
	}

	var updated *models.PaymentPlan
	hook := func(ctx context.Context, payment *models.Payment) error {
		locked, err := uc.PaymentPlanRepository.FindByIDForUpdate(ctx, input.PlanID)
		if err != nil {
			return err
		}
		installment, err := checkInstallmentPayable(locked, input.InstallmentNumber, payment.Amount)
		if err != nil {
			return err
		}

		now := time.Now()
		locked.ApplyInstallmentPayment(installment, payment.Amount, payment.ID, now)
		if err := uc.PaymentPlanRepository.UpdateInstallment(ctx, installment); err != nil {
			return err
		}
		locked.SetUpdatedAt(now)
		if err := uc.PaymentPlanRepository.Update(ctx, locked); err != nil {
			return err
		}
		updated = locked
		return nil
	}

	var payment *models.Payment
	switch {
	case input.Method.IsCard():
		payment, err = uc.PaymentUsecase.ProcessCardPayment(ctx, contracts.CardPaymentInput{
			InvoiceID:  plan.InvoiceID,
			Amount:     input.Amount,
			Method:     input.Method,
			Card:       input.Card,
			AfterApply: hook,
		})
	case input.Method.IsCounter():
		payment, err = uc.PaymentUsecase.ProcessCounterPayment(ctx, contracts.CounterPaymentInput{
			InvoiceID:       plan.InvoiceID,
			Amount:          input.Amount,
			Method:          input.Method,
			ReferenceNumber: input.ReferenceNumber,
			Notes:           fmt.Sprintf(constvars.NoteInstallmentPayment, input.InstallmentNumber, plan.PlanNumber),
			ReceivedBy:      input.ReceivedBy,
			AfterApply:      hook,
		})
	default:
		return nil, exceptions.ErrInvalidAction(string(input.Method), "installment payment")
	}
	if err != nil {
		uc.Log.Warn("paymentPlanUsecase.PayInstallment payment failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingPlanIDKey, input.PlanID),
			zap.Error(err),
		)
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "installment_paid", requestID,
		zap.Int64(constvars.LoggingPlanIDKey, updated.ID),
		zap.Int("installment_number", input.InstallmentNumber),
		zap.Int64(constvars.LoggingPaymentIDKey, payment.ID),
		zap.String(constvars.LoggingAmountKey, payment.Amount.StringFixed(2)),
		zap.String(constvars.LoggingStatusKey, string(updated.Status)),
	)
	return &contracts.InstallmentPaymentResult{Plan: updated, Payment: payment}, nil
}

func checkInstallmentPayable(plan *models.PaymentPlan, number int, amount decimal.Decimal) (*models.PaymentPlanInstallment, error) {
	if plan.Status != models.PaymentPlanStatusActive {
		return nil, exceptions.ErrPlanNotActive(plan.ID, string(plan.Status))
	}
	installment := plan.Installment(number)
	if installment == nil {
		return nil, exceptions.ErrNotFound(nil, constvars.ResourceInstallment, fmt.Sprintf("%s#%d", plan.PlanNumber, number))
	}
	if installment.IsSettled() {
		return nil, exceptions.ErrInvalidStatusChange(constvars.ResourceInstallment, string(installment.Status), string(models.InstallmentStatusPaid))
	}
	if !amount.IsPositive() {
		return nil, exceptions.ErrInvalidAmount(amount.StringFixed(2), "amount must be positive")
	}
	if amount.GreaterThan(installment.Outstanding()) {
		return nil, exceptions.ErrInvalidAmount(amount.StringFixed(2), fmt.Sprintf("exceeds installment outstanding %s", installment.Outstanding().StringFixed(2)))
	}
	return installment, nil
}

func (uc *paymentPlanUsecase) Get(ctx context.Context, planID int64) (*models.PaymentPlan, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentPlanUsecase.Get called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingPlanIDKey, planID),
	)
	return uc.PaymentPlanRepository.FindByID(ctx, planID)
}

func (uc *paymentPlanUsecase) ActiveCount(ctx context.Context) (int, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentPlanUsecase.ActiveCount called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	plans, err := uc.PaymentPlanRepository.ListByStatus(ctx, models.PaymentPlanStatusActive)
	if err != nil {
		return 0, err
	}
	return len(plans), nil
}

// OverdueInstallments lists unpaid installments due before today.
func (uc *paymentPlanUsecase) OverdueInstallments(ctx context.Context, today time.Time) ([]models.PaymentPlanInstallment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentPlanUsecase.OverdueInstallments called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDateKey, today.Format(constvars.DateFormat)),
	)
	return uc.PaymentPlanRepository.ListInstallmentsDueBefore(ctx, []models.InstallmentStatus{
		models.InstallmentStatusPending,
		models.InstallmentStatusPartial,
		models.InstallmentStatusOverdue,
	}, models.DateOf(today))
}

// OverduePlans lists ACTIVE plans whose next payment date is before today.
func (uc *paymentPlanUsecase) OverduePlans(ctx context.Context, today time.Time) ([]models.PaymentPlan, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentPlanUsecase.OverduePlans called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDateKey, today.Format(constvars.DateFormat)),
	)

	plans, err := uc.PaymentPlanRepository.ListByStatus(ctx, models.PaymentPlanStatusActive)
	if err != nil {
		return nil, err
	}
	cutoff := models.DateOf(today)
	overdue := make([]models.PaymentPlan, 0, len(plans))
	for _, plan := range plans {
		if plan.NextPaymentDate != nil && plan.NextPaymentDate.Before(cutoff) {
			overdue = append(overdue, plan)
		}
	}
	return overdue, nil
}

// TotalOutstanding sums the remaining balance of ACTIVE and SUSPENDED plans.
func (uc *paymentPlanUsecase) TotalOutstanding(ctx context.Context) (decimal.Decimal, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentPlanUsecase.TotalOutstanding called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	total := decimal.Zero
	for _, status := range []models.PaymentPlanStatus{models.PaymentPlanStatusActive, models.PaymentPlanStatusSuspended} {
		plans, err := uc.PaymentPlanRepository.ListByStatus(ctx, status)
		if err != nil {
			return decimal.Zero, err
		}
		for _, plan := range plans {
			total = total.Add(plan.RemainingBalance)
		}
	}
	return total, nil
}

// MarkOverdue moves PENDING and PARTIAL installments due before today to OVERDUE.
func (uc *paymentPlanUsecase) MarkOverdue(ctx context.Context, today time.Time) (int, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentPlanUsecase.MarkOverdue called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDateKey, today.Format(constvars.DateFormat)),
	)

	cutoff := models.DateOf(today)
	candidates, err := uc.PaymentPlanRepository.ListInstallmentsDueBefore(ctx, []models.InstallmentStatus{
		models.InstallmentStatusPending,
		models.InstallmentStatusPartial,
	}, cutoff)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, candidate := range candidates {
		err := uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
			plan, err := uc.PaymentPlanRepository.FindByIDForUpdate(ctx, candidate.PlanID)
			if err != nil {
				return err
			}
			installment := plan.Installment(candidate.InstallmentNumber)
			if installment == nil || !installment.DueDate.Before(cutoff) {
				return nil
			}
			if installment.Status != models.InstallmentStatusPending && installment.Status != models.InstallmentStatusPartial {
				return nil
			}
			installment.Status = models.InstallmentStatusOverdue
			if err := uc.PaymentPlanRepository.UpdateInstallment(ctx, installment); err != nil {
				return err
			}
			marked++
			return nil
		})
		if err != nil {
			uc.Log.Error("paymentPlanUsecase.MarkOverdue error marking installment",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Int64(constvars.LoggingPlanIDKey, candidate.PlanID),
				zap.Int("installment_number", candidate.InstallmentNumber),
				zap.Error(err),
			)
			return marked, err
		}
	}

	if marked > 0 {
		utils.LogBusinessEvent(uc.Log, "installments_marked_overdue", requestID,
			zap.Int(constvars.LoggingCountKey, marked),
		)
	}
	return marked, nil
}
