package payments

import (
	"context"
	"fmt"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/app/services/core/invoices"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type paymentUsecase struct {
	Transactor        contracts.Transactor
	PaymentRepository contracts.PaymentRepository
	InvoiceRepository contracts.InvoiceRepository
	InvoiceUsecase    contracts.InvoiceUsecase
	UserUsecase       contracts.UserUsecase
	CardAuthorizer    contracts.CardAuthorizer
	FileStore         contracts.FileStore
	DocumentRenderer  contracts.DocumentRenderer
	NotificationSink  contracts.NotificationSink
	InternalConfig    *config.InternalConfig
	Log               *zap.Logger
}

func NewPaymentUsecase(
	transactor contracts.Transactor,
	paymentRepository contracts.PaymentRepository,
	invoiceRepository contracts.InvoiceRepository,
	invoiceUsecase contracts.InvoiceUsecase,
	userUsecase contracts.UserUsecase,
	cardAuthorizer contracts.CardAuthorizer,
	fileStore contracts.FileStore,
	documentRenderer contracts.DocumentRenderer,
	notificationSink contracts.NotificationSink,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.PaymentUsecase {
	return &paymentUsecase{
		Transactor:        transactor,
		PaymentRepository: paymentRepository,
		InvoiceRepository: invoiceRepository,
		InvoiceUsecase:    invoiceUsecase,
		UserUsecase:       userUsecase,
		CardAuthorizer:    cardAuthorizer,
		FileStore:         fileStore,
		DocumentRenderer:  documentRenderer,
		NotificationSink:  notificationSink,
		InternalConfig:    internalConfig,
		Log:               logger,
	}
}

// ProcessCardPayment writes a PENDING payment, authorizes the card outside any transaction
// and then settles it against the invoice, re-checking the balance under the invoice lock.
func (uc *paymentUsecase) ProcessCardPayment(ctx context.Context, input contracts.CardPaymentInput) (*models.Payment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.ProcessCardPayment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingInvoiceIDKey, input.InvoiceID),
		zap.String(constvars.LoggingAmountKey, input.Amount.StringFixed(2)),
	)

	method := input.Method
	if method == "" {
		method = models.PaymentMethodCreditCard
	}
	if !method.IsCard() {
		return nil, exceptions.ErrInvalidAction(string(method), "card payment")
	}
	card, err := ValidateCard(input.Card, time.Now())
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		TransactionID: utils.GenerateTransactionID(),
		InvoiceID:     input.InvoiceID,
		Amount:        input.Amount,
		Method:        method,
		Status:        models.PaymentStatusPending,
		CardLastFour:  card.LastFour(),
	}
	payment.SetCreatedAtUpdatedAt(time.Now())

	err = uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		invoice, err := uc.InvoiceRepository.FindByIDForUpdate(ctx, input.InvoiceID)
		if err != nil {
			return err
		}
		if err := invoices.CheckPayable(invoice, input.Amount); err != nil {
			return err
		}
		payment.PatientID = invoice.PatientID
		return uc.PaymentRepository.Create(ctx, payment)
	})
	if err != nil {
		uc.Log.Warn("paymentUsecase.ProcessCardPayment payment rejected",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingInvoiceIDKey, input.InvoiceID),
			zap.Error(err),
		)
		return nil, err
	}

	approved, err := uc.CardAuthorizer.Authorize(ctx, payment.TransactionID, card, payment.Amount)
	if err != nil {
		uc.failPayment(ctx, payment, fmt.Sprintf(constvars.NoteCardAuthorizeError, err.Error()))
		return nil, exceptions.ErrServerProcess(err)
	}
	if !approved {
		uc.failPayment(ctx, payment, constvars.NoteCardDeclined)
		utils.LogBusinessEvent(uc.Log, "payment_declined", requestID,
			zap.Int64(constvars.LoggingPaymentIDKey, payment.ID),
			zap.String(constvars.LoggingTransactionIDKey, payment.TransactionID),
		)
		return nil, exceptions.ErrPaymentDeclined(payment.TransactionID)
	}

	invoice, err := uc.settle(ctx, payment, input.AfterApply)
	if err != nil {
		uc.failPayment(ctx, payment, fmt.Sprintf(constvars.NoteSettlementFailed, err.Error()))
		return nil, err
	}

	uc.confirmPayment(ctx, payment, invoice)
	return payment, nil
}

// ProcessCounterPayment records cash, check or insurance received at the desk and settles it at once.
func (uc *paymentUsecase) ProcessCounterPayment(ctx context.Context, input contracts.CounterPaymentInput) (*models.Payment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.ProcessCounterPayment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingInvoiceIDKey, input.InvoiceID),
		zap.String(constvars.LoggingAmountKey, input.Amount.StringFixed(2)),
		zap.String("method", string(input.Method)),
	)

	if !input.Method.IsCounter() {
		return nil, exceptions.ErrInvalidAction(string(input.Method), "counter payment")
	}

	payment := &models.Payment{
		TransactionID:   utils.GenerateTransactionID(),
		InvoiceID:       input.InvoiceID,
		Amount:          input.Amount,
		Method:          input.Method,
		Status:          models.PaymentStatusPending,
		ReferenceNumber: input.ReferenceNumber,
		Notes:           strings.TrimSpace(input.Notes),
	}
	if input.ReceivedBy > 0 {
		payment.AppendNote(fmt.Sprintf(constvars.NoteReceivedBy, input.ReceivedBy))
	}
	payment.SetCreatedAtUpdatedAt(time.Now())

	var invoice *models.Invoice
	err := uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, err := uc.InvoiceRepository.FindByIDForUpdate(ctx, input.InvoiceID)
		if err != nil {
			return err
		}
		if err := invoices.CheckPayable(locked, input.Amount); err != nil {
			return err
		}
		payment.PatientID = locked.PatientID
		if err := uc.PaymentRepository.Create(ctx, payment); err != nil {
			return err
		}
		invoice, err = uc.settle(ctx, payment, input.AfterApply)
		return err
	})
	if err != nil {
		uc.Log.Warn("paymentUsecase.ProcessCounterPayment payment rejected",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingInvoiceIDKey, input.InvoiceID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.confirmPayment(ctx, payment, invoice)
	return payment, nil
}

// settle completes the payment and applies it to the invoice in one transaction, then runs the hook.
func (uc *paymentUsecase) settle(ctx context.Context, payment *models.Payment, hook contracts.PaymentHook) (*models.Invoice, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	var invoice *models.Invoice
	err := uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		applied, err := uc.InvoiceUsecase.ApplyPayment(ctx, payment.InvoiceID, payment.Amount)
		if err != nil {
			return err
		}

		now := time.Now()
		payment.Status = models.PaymentStatusCompleted
		payment.PaymentDate = &now
		payment.ReceiptNumber = utils.GenerateReceiptNumber(now)
		payment.SetUpdatedAt(now)
		if err := uc.PaymentRepository.Update(ctx, payment); err != nil {
			return err
		}

		if hook != nil {
			if err := hook(ctx, payment); err != nil {
				return err
			}
		}
		invoice = applied
		return nil
	})
	if err != nil {
		payment.Status = models.PaymentStatusPending
		payment.PaymentDate = nil
		payment.ReceiptNumber = ""
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "payment_completed", requestID,
		zap.Int64(constvars.LoggingPaymentIDKey, payment.ID),
		zap.String(constvars.LoggingTransactionIDKey, payment.TransactionID),
		zap.Int64(constvars.LoggingInvoiceIDKey, payment.InvoiceID),
		zap.String(constvars.LoggingAmountKey, payment.Amount.StringFixed(2)),
		zap.String("method", string(payment.Method)),
	)
	return invoice, nil
}

// failPayment records a terminal FAILED status. It is best effort; the caller already has an error to report.
func (uc *paymentUsecase) failPayment(ctx context.Context, payment *models.Payment, note string) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	payment.Status = models.PaymentStatusFailed
	payment.AppendNote(note)
	payment.SetUpdatedAt(time.Now())
	if err := uc.PaymentRepository.Update(ctx, payment); err != nil {
		uc.Log.Error("paymentUsecase.failPayment error persisting failed payment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingPaymentIDKey, payment.ID),
			zap.Error(err),
		)
		return
	}

	utils.LogBusinessEvent(uc.Log, "payment_failed", requestID,
		zap.Int64(constvars.LoggingPaymentIDKey, payment.ID),
		zap.String(constvars.LoggingTransactionIDKey, payment.TransactionID),
		zap.String("reason", note),
	)
}

// ProcessBankTransfer stores a PENDING transfer and then attaches the slip. A failed upload
// is annotated on the payment instead of undoing it. The invoice is untouched until verification.
func (uc *paymentUsecase) ProcessBankTransfer(ctx context.Context, input contracts.BankTransferInput) (*models.Payment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.ProcessBankTransfer called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingInvoiceIDKey, input.InvoiceID),
		zap.String(constvars.LoggingAmountKey, input.Amount.StringFixed(2)),
	)

	reference := strings.TrimSpace(input.ReferenceNumber)
	if reference == "" {
		return nil, exceptions.ErrInvalidFormat(fmt.Errorf("reference number is required"), "bank transfer")
	}
	maxSlipSize := uc.InternalConfig.Billing.BankSlipMaxUploadSizeInMB << 20
	if input.Slip != nil && maxSlipSize > 0 && int64(len(input.Slip.Data)) > maxSlipSize {
		return nil, exceptions.ErrInvalidFormat(fmt.Errorf("bank slip exceeds %d MB", uc.InternalConfig.Billing.BankSlipMaxUploadSizeInMB), "bank slip")
	}

	invoice, err := uc.InvoiceRepository.FindByID(ctx, input.InvoiceID)
	if err != nil {
		return nil, err
	}
	if err := invoices.CheckPayable(invoice, input.Amount); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		TransactionID:   utils.GenerateTransactionID(),
		InvoiceID:       invoice.ID,
		PatientID:       invoice.PatientID,
		Amount:          input.Amount,
		Method:          models.PaymentMethodBankTransfer,
		Status:          models.PaymentStatusPending,
		ReferenceNumber: reference,
		Notes:           fmt.Sprintf(constvars.NoteBankTransferReference, reference),
	}
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		payment.AppendNote(fmt.Sprintf(constvars.NoteCustomerNotes, notes))
	}
	payment.SetCreatedAtUpdatedAt(time.Now())

	if err := uc.PaymentRepository.Create(ctx, payment); err != nil {
		uc.Log.Error("paymentUsecase.ProcessBankTransfer error creating payment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	switch {
	case input.Slip == nil || len(input.Slip.Data) == 0:
		payment.AppendNote(constvars.NoteNoBankSlip)
	default:
		path, err := uc.FileStore.StoreReceiptFile(ctx, input.Slip.Data, payment.ID, input.Slip.FileName, input.Slip.ContentType)
		if err != nil {
			uc.Log.Warn("paymentUsecase.ProcessBankTransfer bank slip upload failed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Int64(constvars.LoggingPaymentIDKey, payment.ID),
				zap.Error(err),
			)
			payment.AppendNote(fmt.Sprintf(constvars.NoteBankSlipUploadFailed, err.Error()))
		} else {
			payment.BankSlipPath = path
			payment.AppendNote(fmt.Sprintf(constvars.NoteBankSlipUploaded, path))
		}
	}

	payment.SetUpdatedAt(time.Now())
	if err := uc.PaymentRepository.Update(ctx, payment); err != nil {
		uc.Log.Error("paymentUsecase.ProcessBankTransfer error annotating payment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingPaymentIDKey, payment.ID),
			zap.Error(err),
		)
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "bank_transfer_submitted", requestID,
		zap.Int64(constvars.LoggingPaymentIDKey, payment.ID),
		zap.Int64(constvars.LoggingInvoiceIDKey, payment.InvoiceID),
		zap.String(constvars.LoggingAmountKey, payment.Amount.StringFixed(2)),
		zap.Bool("slip_attached", payment.BankSlipPath != ""),
	)
	return payment, nil
}

// VerifyBankSlip settles or rejects a pending transfer. A partial verification lowers the
// payment amount before it is applied; nothing changes when any check fails.
func (uc *paymentUsecase) VerifyBankSlip(ctx context.Context, input contracts.VerifyBankSlipInput) (*models.Payment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.VerifyBankSlip called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingPaymentIDKey, input.PaymentID),
		zap.String(constvars.LoggingActionKey, string(input.Action)),
	)

	switch input.Action {
	case contracts.VerificationActionApprove, contracts.VerificationActionReject, contracts.VerificationActionPartial:
	default:
		return nil, exceptions.ErrInvalidAction(string(input.Action), "bank slip verification")
	}

	var (
		payment *models.Payment
		invoice *models.Invoice
	)
	err := uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, err := uc.PaymentRepository.FindByIDForUpdate(ctx, input.PaymentID)
		if err != nil {
			return err
		}
		if locked.Method != models.PaymentMethodBankTransfer {
			return exceptions.ErrPaymentNotBankTransfer(locked.ID, string(locked.Method))
		}
		if locked.Status != models.PaymentStatusPending {
			return exceptions.ErrPaymentNotPending(locked.ID, string(locked.Status))
		}

		now := time.Now()
		verifierID := input.VerifierID
		locked.VerificationNotes = strings.TrimSpace(input.Notes)
		locked.VerifiedAt = &now
		if verifierID > 0 {
			locked.VerifiedBy = &verifierID
		}
		payment = locked

		if input.Action == contracts.VerificationActionReject {
			locked.Status = models.PaymentStatusFailed
			locked.SetUpdatedAt(now)
			return uc.PaymentRepository.Update(ctx, locked)
		}

		if input.Action == contracts.VerificationActionPartial {
			if input.VerifiedAmount == nil || !input.VerifiedAmount.IsPositive() {
				return exceptions.ErrInvalidAmount(verifiedAmountString(input.VerifiedAmount), "verified amount must be positive")
			}
			verified := models.RoundMoney(*input.VerifiedAmount)
			if verified.GreaterThan(locked.Amount) {
				return exceptions.ErrVerificationConflict(verified.StringFixed(2), locked.Amount.StringFixed(2))
			}
			locked.AppendNote(fmt.Sprintf(constvars.NotePartialVerification, verified.StringFixed(2), locked.Amount.StringFixed(2)))
			locked.Amount = verified
		}

		invoice, err = uc.settle(ctx, locked, nil)
		return err
	})
	if err != nil {
		uc.Log.Warn("paymentUsecase.VerifyBankSlip verification rejected",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingPaymentIDKey, input.PaymentID),
			zap.Error(err),
		)
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "bank_slip_verified", requestID,
		zap.Int64(constvars.LoggingPaymentIDKey, payment.ID),
		zap.String(constvars.LoggingActionKey, string(input.Action)),
		zap.String(constvars.LoggingStatusKey, string(payment.Status)),
		zap.Int64(constvars.LoggingCallerIDKey, input.VerifierID),
	)

	if payment.Status == models.PaymentStatusCompleted {
		uc.confirmPayment(ctx, payment, invoice)
	}
	return payment, nil
}

func verifiedAmountString(amount *decimal.Decimal) string {
	if amount == nil {
		return "<nil>"
	}
	return amount.StringFixed(2)
}

// confirmPayment renders the receipt and notifies the patient after commit. Failures are only logged.
func (uc *paymentUsecase) confirmPayment(ctx context.Context, payment *models.Payment, invoice *models.Invoice) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	patient, err := uc.UserUsecase.FindByID(ctx, payment.PatientID)
	if err != nil {
		uc.Log.Warn("paymentUsecase.confirmPayment failed to load patient",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingPaymentIDKey, payment.ID),
			zap.Error(err),
		)
		return
	}

	pdf, err := uc.DocumentRenderer.RenderReceiptPdf(payment, invoice)
	if err != nil {
		uc.Log.Warn("paymentUsecase.confirmPayment failed to render receipt pdf",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingPaymentIDKey, payment.ID),
			zap.Error(err),
		)
	}

	if err := uc.NotificationSink.NotifyPaymentConfirmed(ctx, patient, payment, pdf); err != nil {
		uc.Log.Warn("paymentUsecase.confirmPayment failed to send payment confirmation",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingPaymentIDKey, payment.ID),
			zap.Error(err),
		)
	}
}

func (uc *paymentUsecase) Get(ctx context.Context, paymentID int64) (*models.Payment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.Get called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingPaymentIDKey, paymentID),
	)
	return uc.PaymentRepository.FindByID(ctx, paymentID)
}

func (uc *paymentUsecase) ListByInvoice(ctx context.Context, invoiceID int64) ([]models.Payment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.ListByInvoice called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingInvoiceIDKey, invoiceID),
	)
	if _, err := uc.InvoiceRepository.FindByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	return uc.PaymentRepository.ListByInvoice(ctx, invoiceID)
}

func (uc *paymentUsecase) PendingVerification(ctx context.Context) ([]models.Payment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.PendingVerification called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)
	return uc.PaymentRepository.ListByStatusAndMethod(ctx, models.PaymentStatusPending, models.PaymentMethodBankTransfer)
}

// ListByDateRange takes inclusive calendar dates.
func (uc *paymentUsecase) ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Payment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.ListByDateRange called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String("from", from.Format(constvars.DateFormat)),
		zap.String("to", to.Format(constvars.DateFormat)),
	)
	start, end := dayRange(from, to)
	return uc.PaymentRepository.ListByDateRange(ctx, start, end)
}

// TotalRevenue sums COMPLETED payments dated within the inclusive calendar dates.
func (uc *paymentUsecase) TotalRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.TotalRevenue called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String("from", from.Format(constvars.DateFormat)),
		zap.String("to", to.Format(constvars.DateFormat)),
	)
	start, end := dayRange(from, to)
	return uc.PaymentRepository.SumCompleted(ctx, start, end)
}

func dayRange(from, to time.Time) (time.Time, time.Time) {
	return models.DateOf(from), models.DateOf(to).AddDate(0, 0, 1)
}

// BankSlip returns the stored slip and its content type.
func (uc *paymentUsecase) BankSlip(ctx context.Context, paymentID int64) ([]byte, string, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.BankSlip called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingPaymentIDKey, paymentID),
	)

	payment, err := uc.PaymentRepository.FindByID(ctx, paymentID)
	if err != nil {
		return nil, "", err
	}
	if payment.BankSlipPath == "" {
		return nil, "", exceptions.ErrNotFound(nil, constvars.ResourceBankSlip, paymentID)
	}

	data, err := uc.FileStore.ReadFile(ctx, payment.BankSlipPath)
	if err != nil {
		return nil, "", err
	}

	contentType := mime.TypeByExtension(filepath.Ext(payment.BankSlipPath))
	if contentType == "" {
		contentType = constvars.MIMEOctetStream
	}
	return data, contentType, nil
}
