package controllers

import (
	"fmt"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/dto/responses"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PaymentController struct {
	Log              *zap.Logger
	PaymentUsecase   contracts.PaymentUsecase
	InvoiceUsecase   contracts.InvoiceUsecase
	DocumentRenderer contracts.DocumentRenderer
	InternalConfig   *config.InternalConfig
}

func NewPaymentController(
	logger *zap.Logger,
	paymentUsecase contracts.PaymentUsecase,
	invoiceUsecase contracts.InvoiceUsecase,
	documentRenderer contracts.DocumentRenderer,
	internalConfig *config.InternalConfig,
) *PaymentController {
	return &PaymentController{
		Log:              logger,
		PaymentUsecase:   paymentUsecase,
		InvoiceUsecase:   invoiceUsecase,
		DocumentRenderer: documentRenderer,
		InternalConfig:   internalConfig,
	}
}

// authorizeInvoice lets patients pay only their own invoices.
func (ctrl *PaymentController) authorizeInvoice(w http.ResponseWriter, r *http.Request, requestID, handler string, caller models.Caller, invoiceID int64, start time.Time) bool {
	if caller.Role != models.RolePatient {
		return true
	}
	invoice, err := ctrl.InvoiceUsecase.Get(r.Context(), invoiceID)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, handler, start, err)
		return false
	}
	if invoice.PatientID != caller.UserID {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrRoleNotAllowed(string(caller.Role)), ctrl.InternalConfig.ExposeErrorDetails())
		return false
	}
	return true
}

func toCardDetails(card requests.Card) models.CardDetails {
	return models.CardDetails{
		Number:      card.Number,
		HolderName:  card.HolderName,
		ExpiryMonth: card.ExpiryMonth,
		ExpiryYear:  card.ExpiryYear,
		CVV:         card.CVV,
	}
}

func (ctrl *PaymentController) CardPayment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "PaymentController.CardPayment")
	if !ok {
		return
	}

	request := new(requests.CardPayment)
	if !decodeBody(ctrl.Log, ctrl.InternalConfig, w, r, requestID, "PaymentController.CardPayment", request) {
		return
	}
	if !ctrl.authorizeInvoice(w, r, requestID, "PaymentController.CardPayment", caller, request.InvoiceID, start) {
		return
	}

	method := models.PaymentMethod(request.Method)
	if method == "" {
		method = models.PaymentMethodCreditCard
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	payment, err := ctrl.PaymentUsecase.ProcessCardPayment(ctx, contracts.CardPaymentInput{
		InvoiceID: request.InvoiceID,
		Amount:    request.Amount,
		Method:    method,
		Card:      toCardDetails(request.Card),
	})
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "PaymentController.CardPayment", start, err)
		return
	}

	utils.LogBusinessEvent(ctrl.Log, "card_payment_via_api", requestID,
		zap.Int64(constvars.LoggingPaymentIDKey, payment.ID),
		zap.String(constvars.LoggingTransactionIDKey, payment.TransactionID),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.CardPaymentSuccessMessage, payment)
}

func (ctrl *PaymentController) BankTransfer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "PaymentController.BankTransfer")
	if !ok {
		return
	}

	maxSize := ctrl.InternalConfig.Billing.BankSlipMaxUploadSizeInMB << 20
	if err := r.ParseMultipartForm(maxSize); err != nil {
		ctrl.Log.Error("PaymentController.BankTransfer failed to parse multipart form",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseMultipartForm(err), ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	request, err := parseBankTransferForm(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}
	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err), ctrl.InternalConfig.ExposeErrorDetails())
		return
	}
	if !ctrl.authorizeInvoice(w, r, requestID, "PaymentController.BankTransfer", caller, request.InvoiceID, start) {
		return
	}

	slip, err := readBankSlip(r, maxSize)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	payment, err := ctrl.PaymentUsecase.ProcessBankTransfer(ctx, contracts.BankTransferInput{
		InvoiceID:       request.InvoiceID,
		Amount:          request.Amount,
		ReferenceNumber: request.ReferenceNumber,
		Notes:           request.Notes,
		Slip:            slip,
	})
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "PaymentController.BankTransfer", start, err)
		return
	}

	utils.LogBusinessEvent(ctrl.Log, "bank_transfer_submitted_via_api", requestID,
		zap.Int64(constvars.LoggingPaymentIDKey, payment.ID),
		zap.Bool("has_slip", slip != nil),
	)
	utils.BuildSuccessResponse(w, constvars.StatusAccepted, constvars.BankTransferSubmittedMessage, payment)
}

func parseBankTransferForm(r *http.Request) (*requests.BankTransfer, error) {
	invoiceID, err := strconv.ParseInt(r.FormValue("invoice_id"), 10, 64)
	if err != nil {
		return nil, exceptions.ErrInvalidFormat(err, "invoice_id")
	}
	amount, err := decimal.NewFromString(r.FormValue("amount"))
	if err != nil {
		return nil, exceptions.ErrInvalidFormat(err, "amount")
	}
	return &requests.BankTransfer{
		InvoiceID:       invoiceID,
		Amount:          amount,
		ReferenceNumber: r.FormValue("reference_number"),
		Notes:           r.FormValue("notes"),
	}, nil
}

// readBankSlip returns nil when no slip was attached.
func readBankSlip(r *http.Request, maxSize int64) (*contracts.UploadedFile, error) {
	file, header, err := r.FormFile(constvars.FormFieldBankSlip)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, exceptions.ErrCannotParseMultipartForm(err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, exceptions.ErrCannotParseMultipartForm(err)
	}
	if int64(len(data)) > maxSize {
		return nil, exceptions.ErrInvalidFormat(nil, constvars.FormFieldBankSlip)
	}

	return &contracts.UploadedFile{
		FileName:    header.Filename,
		ContentType: header.Header.Get(constvars.HeaderContentType),
		Data:        data,
	}, nil
}

func (ctrl *PaymentController) CounterPayment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "PaymentController.CounterPayment")
	if !ok {
		return
	}

	request := new(requests.CounterPayment)
	if !decodeBody(ctrl.Log, ctrl.InternalConfig, w, r, requestID, "PaymentController.CounterPayment", request) {
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	payment, err := ctrl.PaymentUsecase.ProcessCounterPayment(ctx, contracts.CounterPaymentInput{
		InvoiceID:       request.InvoiceID,
		Amount:          request.Amount,
		Method:          models.PaymentMethod(request.Method),
		ReferenceNumber: request.ReferenceNumber,
		Notes:           request.Notes,
		ReceivedBy:      caller.UserID,
	})
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "PaymentController.CounterPayment", start, err)
		return
	}

	utils.LogBusinessEvent(ctrl.Log, "counter_payment_via_api", requestID,
		zap.Int64(constvars.LoggingPaymentIDKey, payment.ID),
		zap.Int64(constvars.LoggingCallerIDKey, caller.UserID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.CounterPaymentSuccessMessage, payment)
}

func (ctrl *PaymentController) VerifyBankSlip(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "PaymentController.VerifyBankSlip")
	if !ok {
		return
	}

	paymentID, err := utils.ParseIDParam(r, constvars.URLParamID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	request := new(requests.VerifyBankSlip)
	if !decodeBody(ctrl.Log, ctrl.InternalConfig, w, r, requestID, "PaymentController.VerifyBankSlip", request) {
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	payment, err := ctrl.PaymentUsecase.VerifyBankSlip(ctx, contracts.VerifyBankSlipInput{
		PaymentID:      paymentID,
		Action:         contracts.VerificationAction(request.Action),
		VerifiedAmount: request.VerifiedAmount,
		Notes:          request.Notes,
		VerifierID:     caller.UserID,
	})
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "PaymentController.VerifyBankSlip", start, err)
		return
	}

	utils.LogBusinessEvent(ctrl.Log, "bank_slip_verified_via_api", requestID,
		zap.Int64(constvars.LoggingPaymentIDKey, paymentID),
		zap.String(constvars.LoggingActionKey, request.Action),
		zap.Int64(constvars.LoggingCallerIDKey, caller.UserID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.VerifyBankSlipSuccessMessage, payment)
}

// loadPayment fetches the payment named by the id param and enforces patient ownership.
func (ctrl *PaymentController) loadPayment(w http.ResponseWriter, r *http.Request, requestID, handler string, caller models.Caller, start time.Time) (*models.Payment, bool) {
	paymentID, err := utils.ParseIDParam(r, constvars.URLParamID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return nil, false
	}

	payment, err := ctrl.PaymentUsecase.Get(r.Context(), paymentID)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, handler, start, err)
		return nil, false
	}
	if !canAccessPatient(caller, payment.PatientID) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrRoleNotAllowed(string(caller.Role)), ctrl.InternalConfig.ExposeErrorDetails())
		return nil, false
	}
	return payment, true
}

func (ctrl *PaymentController) Get(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "PaymentController.Get")
	if !ok {
		return
	}

	payment, ok := ctrl.loadPayment(w, r, requestID, "PaymentController.Get", caller, start)
	if !ok {
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetPaymentSuccessMessage, payment)
}

func (ctrl *PaymentController) Receipt(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "PaymentController.Receipt")
	if !ok {
		return
	}

	payment, ok := ctrl.loadPayment(w, r, requestID, "PaymentController.Receipt", caller, start)
	if !ok {
		return
	}
	if payment.Status != models.PaymentStatusCompleted || payment.ReceiptNumber == "" {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrNotFound(nil, constvars.ResourceReceipt, payment.ID), ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	invoice, err := ctrl.InvoiceUsecase.Get(r.Context(), payment.InvoiceID)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "PaymentController.Receipt", start, err)
		return
	}

	pdf, err := ctrl.DocumentRenderer.RenderReceiptPdf(payment, invoice)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "PaymentController.Receipt", start, err)
		return
	}
	utils.BuildFileResponse(w, constvars.MIMEApplicationPDF, fmt.Sprintf(constvars.ReceiptPdfObjectFormat, payment.ReceiptNumber), pdf)
}

func (ctrl *PaymentController) BankSlip(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "PaymentController.BankSlip")
	if !ok {
		return
	}

	payment, ok := ctrl.loadPayment(w, r, requestID, "PaymentController.BankSlip", caller, start)
	if !ok {
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	data, contentType, err := ctrl.PaymentUsecase.BankSlip(ctx, payment.ID)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "PaymentController.BankSlip", start, err)
		return
	}
	utils.BuildFileResponse(w, contentType, fmt.Sprintf("bank_slip_%d", payment.ID), data)
}

func (ctrl *PaymentController) PendingVerification(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, _, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "PaymentController.PendingVerification")
	if !ok {
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	payments, err := ctrl.PaymentUsecase.PendingVerification(ctx)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "PaymentController.PendingVerification", start, err)
		return
	}
	utils.BuildListResponse(w, constvars.GetPendingVerificationSuccessMessage, payments, len(payments))
}

// reportRange defaults to the last 30 days ending today.
func reportRange(r *http.Request) (time.Time, time.Time, error) {
	today := models.DateOf(time.Now())
	from, err := utils.ParseDateQuery(r, constvars.QueryParamFrom, today.AddDate(0, 0, -30))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := utils.ParseDateQuery(r, constvars.QueryParamTo, today)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func (ctrl *PaymentController) ListByDateRange(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, _, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "PaymentController.ListByDateRange")
	if !ok {
		return
	}

	from, to, err := reportRange(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	payments, err := ctrl.PaymentUsecase.ListByDateRange(ctx, from, to)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "PaymentController.ListByDateRange", start, err)
		return
	}
	utils.BuildListResponse(w, constvars.GetPaymentsSuccessMessage, payments, len(payments))
}

func (ctrl *PaymentController) Revenue(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, _, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "PaymentController.Revenue")
	if !ok {
		return
	}

	from, to, err := reportRange(r)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	total, err := ctrl.PaymentUsecase.TotalRevenue(ctx, from, to)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "PaymentController.Revenue", start, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetRevenueSuccessMessage, responses.Revenue{
		From:  from.Format(constvars.DateFormat),
		To:    to.Format(constvars.DateFormat),
		Total: total,
	})
}
