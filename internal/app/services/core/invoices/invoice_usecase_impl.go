package invoices

import (
	"context"
	"fmt"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var outstandingStatuses = []models.InvoiceStatus{
	models.InvoiceStatusPending,
	models.InvoiceStatusSent,
	models.InvoiceStatusPartiallyPaid,
	models.InvoiceStatusOverdue,
}

type invoiceUsecase struct {
	InvoiceRepository     contracts.InvoiceRepository
	OrderRepository       contracts.OrderRepository
	PaymentPlanRepository contracts.PaymentPlanRepository
	Transactor            contracts.Transactor
	InternalConfig        *config.InternalConfig
	Log                   *zap.Logger
}

func NewInvoiceUsecase(
	invoiceRepository contracts.InvoiceRepository,
	orderRepository contracts.OrderRepository,
	paymentPlanRepository contracts.PaymentPlanRepository,
	transactor contracts.Transactor,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.InvoiceUsecase {
	return &invoiceUsecase{
		InvoiceRepository:     invoiceRepository,
		OrderRepository:       orderRepository,
		PaymentPlanRepository: paymentPlanRepository,
		Transactor:            transactor,
		InternalConfig:        internalConfig,
		Log:                   logger,
	}
}

func (uc *invoiceUsecase) GenerateForAppointment(ctx context.Context, patient, doctor *models.User, appointment *models.Appointment) (*models.Invoice, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("invoiceUsecase.GenerateForAppointment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointment.ID),
		zap.Int64(constvars.LoggingDoctorIDKey, doctor.ID),
	)

	fee := decimal.Zero
	if doctor.Doctor != nil {
		fee = doctor.Doctor.ConsultationFee
	}

	now := time.Now()
	today := models.DateOf(now)
	appointmentID := appointment.ID
	invoice := &models.Invoice{
		PatientID:     patient.ID,
		AppointmentID: &appointmentID,
		IssueDate:     today,
		DueDate:       today,
		Status:        models.InvoiceStatusPending,
		Description:   fmt.Sprintf(constvars.ConsultationDescription, doctor.FullName()),
	}
	invoice.AddItem(models.NewInvoiceItem(constvars.ConsultationItemName, 1, fee))
	invoice.SetCreatedAtUpdatedAt(now)

	if err := uc.create(ctx, invoice); err != nil {
		uc.Log.Error("invoiceUsecase.GenerateForAppointment error creating invoice",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "invoice_generated", requestID,
		zap.Int64(constvars.LoggingInvoiceIDKey, invoice.ID),
		zap.String(constvars.LoggingInvoiceNumberKey, invoice.InvoiceNumber),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointment.ID),
		zap.String(constvars.LoggingAmountKey, invoice.Total.StringFixed(2)),
	)
	return invoice, nil
}

func (uc *invoiceUsecase) GenerateForOrder(ctx context.Context, order *models.Order) (*models.Invoice, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("invoiceUsecase.GenerateForOrder called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingOrderIDKey, order.ID),
	)

	now := time.Now()
	today := models.DateOf(now)
	orderID := order.ID
	invoice := &models.Invoice{
		PatientID:   order.PatientID,
		OrderID:     &orderID,
		IssueDate:   today,
		DueDate:     today.AddDate(0, 0, uc.InternalConfig.Billing.PharmacyInvoiceDueDays),
		Status:      models.InvoiceStatusPending,
		Description: fmt.Sprintf("Pharmacy order #%d", order.ID),
	}
	for _, line := range order.Lines {
		invoice.AddItem(models.NewInvoiceItem(line.Medicine, line.Quantity, line.UnitPrice))
	}
	invoice.SetCreatedAtUpdatedAt(now)

	if err := uc.create(ctx, invoice); err != nil {
		uc.Log.Error("invoiceUsecase.GenerateForOrder error creating invoice",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "invoice_generated", requestID,
		zap.Int64(constvars.LoggingInvoiceIDKey, invoice.ID),
		zap.String(constvars.LoggingInvoiceNumberKey, invoice.InvoiceNumber),
		zap.Int64(constvars.LoggingOrderIDKey, order.ID),
		zap.String(constvars.LoggingAmountKey, invoice.Total.StringFixed(2)),
	)
	return invoice, nil
}

// create inserts the invoice and assigns its number from the generated id.
func (uc *invoiceUsecase) create(ctx context.Context, invoice *models.Invoice) error {
	return uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.InvoiceRepository.Create(ctx, invoice); err != nil {
			return err
		}
		invoice.InvoiceNumber = models.InvoiceNumberFor(invoice.IssueDate, invoice.ID)
		return uc.InvoiceRepository.UpdateInvoiceNumber(ctx, invoice.ID, invoice.InvoiceNumber)
	})
}

func (uc *invoiceUsecase) ApplyPayment(ctx context.Context, invoiceID int64, amount decimal.Decimal) (*models.Invoice, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("invoiceUsecase.ApplyPayment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingInvoiceIDKey, invoiceID),
		zap.String(constvars.LoggingAmountKey, amount.StringFixed(2)),
	)

	var invoice *models.Invoice
	err := uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, err := uc.InvoiceRepository.FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if err := CheckPayable(locked, amount); err != nil {
			return err
		}

		locked.ApplyPayment(amount)
		locked.SetUpdatedAt(time.Now())
		if err := uc.InvoiceRepository.Update(ctx, locked); err != nil {
			return err
		}

		if locked.Status == models.InvoiceStatusPaid && locked.OrderID != nil {
			if err := uc.OrderRepository.UpdateStatus(ctx, *locked.OrderID, models.OrderStatusCompleted); err != nil {
				return err
			}
		}
		invoice = locked
		return nil
	})
	if err != nil {
		uc.Log.Error("invoiceUsecase.ApplyPayment error applying payment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingInvoiceIDKey, invoiceID),
			zap.Error(err),
		)
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "invoice_payment_applied", requestID,
		zap.Int64(constvars.LoggingInvoiceIDKey, invoice.ID),
		zap.String(constvars.LoggingAmountKey, amount.StringFixed(2)),
		zap.String("balance_due", invoice.BalanceDue.StringFixed(2)),
		zap.String(constvars.LoggingStatusKey, string(invoice.Status)),
	)
	return invoice, nil
}

// CheckPayable rejects payments on settled invoices, amounts outside (0, balance] and
// amounts finer than one cent.
func CheckPayable(invoice *models.Invoice, amount decimal.Decimal) error {
	if invoice.Status == models.InvoiceStatusPaid {
		return exceptions.ErrInvoiceAlreadyPaid(invoice.ID)
	}
	if !invoice.AcceptsPayments() {
		return exceptions.ErrInvoiceNotPayable(invoice.ID, string(invoice.Status))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return exceptions.ErrInvalidAmount(amount.StringFixed(2), "amount must be positive")
	}
	if !amount.Equal(models.RoundMoney(amount)) {
		return exceptions.ErrInvalidAmount(amount.String(), "amount must not have more than two decimal places")
	}
	if amount.GreaterThan(invoice.BalanceDue) {
		return exceptions.ErrInvalidAmount(amount.StringFixed(2), fmt.Sprintf("exceeds balance due %s", invoice.BalanceDue.StringFixed(2)))
	}
	return nil
}

func (uc *invoiceUsecase) AddItem(ctx context.Context, invoiceID int64, item models.InvoiceItem) (*models.Invoice, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("invoiceUsecase.AddItem called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingInvoiceIDKey, invoiceID),
	)

	if item.Quantity < 1 {
		return nil, exceptions.ErrInvalidFormat(fmt.Errorf("quantity %d must be at least 1", item.Quantity), "invoice item")
	}
	if item.UnitPrice.IsNegative() {
		return nil, exceptions.ErrInvalidAmount(item.UnitPrice.StringFixed(2), "unit price must not be negative")
	}
	normalized := models.NewInvoiceItem(item.Description, item.Quantity, item.UnitPrice)

	var invoice *models.Invoice
	err := uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, err := uc.InvoiceRepository.FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if locked.Status == models.InvoiceStatusPaid {
			return exceptions.ErrInvoiceAlreadyPaid(locked.ID)
		}
		if locked.Status == models.InvoiceStatusCancelled || locked.Status == models.InvoiceStatusRefunded {
			return exceptions.ErrInvoiceNotPayable(locked.ID, string(locked.Status))
		}

		if err := uc.InvoiceRepository.AddItem(ctx, locked.ID, &normalized); err != nil {
			return err
		}
		locked.AddItem(normalized)
		if locked.Status == models.InvoiceStatusPartiallyPaid && locked.BalanceDue.IsZero() {
			locked.Status = models.InvoiceStatusPaid
		}
		locked.SetUpdatedAt(time.Now())
		if err := uc.InvoiceRepository.Update(ctx, locked); err != nil {
			return err
		}
		invoice = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "invoice_item_added", requestID,
		zap.Int64(constvars.LoggingInvoiceIDKey, invoice.ID),
		zap.String(constvars.LoggingAmountKey, normalized.LineTotal.StringFixed(2)),
		zap.String("total", invoice.Total.StringFixed(2)),
	)
	return invoice, nil
}

// SetStatus moves an invoice between non-terminal states. Money fields are untouched.
func (uc *invoiceUsecase) SetStatus(ctx context.Context, invoiceID int64, status models.InvoiceStatus) (*models.Invoice, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("invoiceUsecase.SetStatus called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingInvoiceIDKey, invoiceID),
		zap.String(constvars.LoggingStatusKey, string(status)),
	)

	var invoice *models.Invoice
	err := uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, err := uc.InvoiceRepository.FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if !statusChangeAllowed(locked.Status, status) {
			return exceptions.ErrInvalidStatusChange(constvars.ResourceInvoice, string(locked.Status), string(status))
		}
		if locked.Status == status {
			invoice = locked
			return nil
		}

		previous := locked.Status
		locked.Status = status
		locked.SetUpdatedAt(time.Now())
		if err := uc.InvoiceRepository.Update(ctx, locked); err != nil {
			return err
		}
		invoice = locked

		utils.LogBusinessEvent(uc.Log, "invoice_status_changed", requestID,
			zap.Int64(constvars.LoggingInvoiceIDKey, locked.ID),
			zap.String("from", string(previous)),
			zap.String("to", string(status)),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func statusChangeAllowed(from, to models.InvoiceStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case models.InvoiceStatusCancelled, models.InvoiceStatusRefunded:
		return false
	case models.InvoiceStatusPaid:
		return to == models.InvoiceStatusRefunded
	}
	switch to {
	case models.InvoiceStatusDraft, models.InvoiceStatusPending, models.InvoiceStatusSent,
		models.InvoiceStatusPartiallyPaid, models.InvoiceStatusOverdue, models.InvoiceStatusPaid,
		models.InvoiceStatusCancelled:
		return true
	}
	return false
}

// CancelForAppointment applies the configured policy to the invoice of a cancelled appointment.
// Under cancel_unpaid an invoice with no payment and no plan is cancelled; anything else is kept.
func (uc *invoiceUsecase) CancelForAppointment(ctx context.Context, appointmentID int64) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	policy := uc.InternalConfig.Billing.CancelledAppointmentInvoicePolicy
	uc.Log.Info("invoiceUsecase.CancelForAppointment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.String("policy", policy),
	)

	if policy != constvars.CancelledInvoicePolicyCancelUnpaid {
		return nil
	}

	return uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		invoice, err := uc.InvoiceRepository.FindByAppointmentID(ctx, appointmentID)
		if err != nil || invoice == nil {
			return err
		}
		locked, err := uc.InvoiceRepository.FindByIDForUpdate(ctx, invoice.ID)
		if err != nil {
			return err
		}
		if !locked.AcceptsPayments() || locked.AmountPaid.GreaterThan(decimal.Zero) {
			return nil
		}
		plan, err := uc.PaymentPlanRepository.FindByInvoiceID(ctx, locked.ID)
		if err != nil {
			return err
		}
		if plan != nil {
			return nil
		}

		locked.Status = models.InvoiceStatusCancelled
		locked.SetUpdatedAt(time.Now())
		if err := uc.InvoiceRepository.Update(ctx, locked); err != nil {
			return err
		}

		utils.LogBusinessEvent(uc.Log, "invoice_cancelled", requestID,
			zap.Int64(constvars.LoggingInvoiceIDKey, locked.ID),
			zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
		)
		return nil
	})
}

func (uc *invoiceUsecase) Get(ctx context.Context, invoiceID int64) (*models.Invoice, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("invoiceUsecase.Get called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingInvoiceIDKey, invoiceID),
	)
	return uc.InvoiceRepository.FindByID(ctx, invoiceID)
}

func (uc *invoiceUsecase) ListByPatient(ctx context.Context, patientID int64) ([]models.Invoice, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("invoiceUsecase.ListByPatient called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingPatientIDKey, patientID),
	)
	return uc.InvoiceRepository.ListByPatient(ctx, patientID)
}

// Overdue lists PENDING, SENT and PARTIALLY_PAID invoices whose due date is before today.
func (uc *invoiceUsecase) Overdue(ctx context.Context, today time.Time) ([]models.Invoice, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("invoiceUsecase.Overdue called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDateKey, today.Format(constvars.DateFormat)),
	)

	candidates, err := uc.InvoiceRepository.ListByStatuses(ctx, []models.InvoiceStatus{
		models.InvoiceStatusPending,
		models.InvoiceStatusSent,
		models.InvoiceStatusPartiallyPaid,
	})
	if err != nil {
		return nil, err
	}

	overdue := make([]models.Invoice, 0, len(candidates))
	for _, invoice := range candidates {
		if invoice.IsOverdue(today) {
			overdue = append(overdue, invoice)
		}
	}
	return overdue, nil
}

// MarkOverdue moves every PENDING or SENT invoice past its due date to OVERDUE.
// PARTIALLY_PAID keeps its status so the partial payment stays visible.
func (uc *invoiceUsecase) MarkOverdue(ctx context.Context, today time.Time) (int, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("invoiceUsecase.MarkOverdue called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDateKey, today.Format(constvars.DateFormat)),
	)

	candidates, err := uc.InvoiceRepository.ListByStatuses(ctx, []models.InvoiceStatus{
		models.InvoiceStatusPending,
		models.InvoiceStatusSent,
	})
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, candidate := range candidates {
		if !candidate.IsOverdue(today) {
			continue
		}
		err := uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
			locked, err := uc.InvoiceRepository.FindByIDForUpdate(ctx, candidate.ID)
			if err != nil {
				return err
			}
			if locked.Status != models.InvoiceStatusPending && locked.Status != models.InvoiceStatusSent {
				return nil
			}
			if !locked.IsOverdue(today) {
				return nil
			}
			locked.Status = models.InvoiceStatusOverdue
			locked.SetUpdatedAt(time.Now())
			if err := uc.InvoiceRepository.Update(ctx, locked); err != nil {
				return err
			}
			marked++
			return nil
		})
		if err != nil {
			uc.Log.Error("invoiceUsecase.MarkOverdue error marking invoice",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Int64(constvars.LoggingInvoiceIDKey, candidate.ID),
				zap.Error(err),
			)
			return marked, err
		}
	}

	if marked > 0 {
		utils.LogBusinessEvent(uc.Log, "invoices_marked_overdue", requestID,
			zap.Int(constvars.LoggingCountKey, marked),
		)
	}
	return marked, nil
}

// AgingReport buckets outstanding balances by days past due as of today.
func (uc *invoiceUsecase) AgingReport(ctx context.Context, today time.Time) (*contracts.AgingReport, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("invoiceUsecase.AgingReport called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDateKey, today.Format(constvars.DateFormat)),
	)

	invoices, err := uc.InvoiceRepository.ListByStatuses(ctx, outstandingStatuses)
	if err != nil {
		return nil, err
	}

	asOf := models.DateOf(today)
	report := &contracts.AgingReport{
		AsOf:        asOf,
		Current:     decimal.Zero,
		Days1To30:   decimal.Zero,
		Days31To60:  decimal.Zero,
		Days61To90:  decimal.Zero,
		Over90Days:  decimal.Zero,
		Outstanding: decimal.Zero,
	}
	for _, invoice := range invoices {
		balance := invoice.BalanceDue
		if !balance.IsPositive() {
			continue
		}
		daysPastDue := int(asOf.Sub(models.DateOf(invoice.DueDate)).Hours() / 24)
		switch {
		case daysPastDue <= 0:
			report.Current = report.Current.Add(balance)
		case daysPastDue <= 30:
			report.Days1To30 = report.Days1To30.Add(balance)
		case daysPastDue <= 60:
			report.Days31To60 = report.Days31To60.Add(balance)
		case daysPastDue <= 90:
			report.Days61To90 = report.Days61To90.Add(balance)
		default:
			report.Over90Days = report.Over90Days.Add(balance)
		}
		report.Outstanding = report.Outstanding.Add(balance)
	}
	return report, nil
}

func (uc *invoiceUsecase) TotalOutstanding(ctx context.Context) (decimal.Decimal, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("invoiceUsecase.TotalOutstanding called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	invoices, err := uc.InvoiceRepository.ListByStatuses(ctx, outstandingStatuses)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, invoice := range invoices {
		total = total.Add(invoice.BalanceDue)
	}
	return total, nil
}

func (uc *invoiceUsecase) PatientSummary(ctx context.Context, patientID int64) (*contracts.PatientInvoiceSummary, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("invoiceUsecase.PatientSummary called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingPatientIDKey, patientID),
	)

	invoices, err := uc.InvoiceRepository.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	summary := &contracts.PatientInvoiceSummary{
		PatientID:   patientID,
		TotalBilled: decimal.Zero,
		TotalPaid:   decimal.Zero,
		Outstanding: decimal.Zero,
	}
	for _, invoice := range invoices {
		summary.InvoiceCount++
		if invoice.Status == models.InvoiceStatusCancelled {
			continue
		}
		summary.TotalBilled = summary.TotalBilled.Add(invoice.Total)
		summary.TotalPaid = summary.TotalPaid.Add(invoice.AmountPaid)
		if invoice.AcceptsPayments() {
			summary.Outstanding = summary.Outstanding.Add(invoice.BalanceDue)
		}
	}
	return summary, nil
}
