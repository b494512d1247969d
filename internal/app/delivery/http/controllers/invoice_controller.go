package controllers

import (
	"fmt"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/responses"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type InvoiceController struct {
	Log              *zap.Logger
	InvoiceUsecase   contracts.InvoiceUsecase
	PaymentUsecase   contracts.PaymentUsecase
	DocumentRenderer contracts.DocumentRenderer
	InternalConfig   *config.InternalConfig
}

func NewInvoiceController(
	logger *zap.Logger,
	invoiceUsecase contracts.InvoiceUsecase,
	paymentUsecase contracts.PaymentUsecase,
	documentRenderer contracts.DocumentRenderer,
	internalConfig *config.InternalConfig,
) *InvoiceController {
	return &InvoiceController{
		Log:              logger,
		InvoiceUsecase:   invoiceUsecase,
		PaymentUsecase:   paymentUsecase,
		DocumentRenderer: documentRenderer,
		InternalConfig:   internalConfig,
	}
}

// loadInvoice fetches the invoice named by the id param and enforces patient ownership.
func (ctrl *InvoiceController) loadInvoice(w http.ResponseWriter, r *http.Request, requestID, handler string, caller models.Caller, start time.Time) (*models.Invoice, bool) {
	invoiceID, err := utils.ParseIDParam(r, constvars.URLParamID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return nil, false
	}

	invoice, err := ctrl.InvoiceUsecase.Get(r.Context(), invoiceID)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, handler, start, err)
		return nil, false
	}
	if !canAccessPatient(caller, invoice.PatientID) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrRoleNotAllowed(string(caller.Role)), ctrl.InternalConfig.ExposeErrorDetails())
		return nil, false
	}
	return invoice, true
}

func (ctrl *InvoiceController) Get(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "InvoiceController.Get")
	if !ok {
		return
	}

	invoice, ok := ctrl.loadInvoice(w, r, requestID, "InvoiceController.Get", caller, start)
	if !ok {
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetInvoiceSuccessMessage, invoice)
}

func (ctrl *InvoiceController) InvoicePdf(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "InvoiceController.InvoicePdf")
	if !ok {
		return
	}

	invoice, ok := ctrl.loadInvoice(w, r, requestID, "InvoiceController.InvoicePdf", caller, start)
	if !ok {
		return
	}

	pdf, err := ctrl.DocumentRenderer.RenderInvoicePdf(invoice)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "InvoiceController.InvoicePdf", start, err)
		return
	}
	utils.BuildFileResponse(w, constvars.MIMEApplicationPDF, fmt.Sprintf(constvars.InvoicePdfObjectFormat, invoice.InvoiceNumber), pdf)
}

func (ctrl *InvoiceController) Payments(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "InvoiceController.Payments")
	if !ok {
		return
	}

	invoice, ok := ctrl.loadInvoice(w, r, requestID, "InvoiceController.Payments", caller, start)
	if !ok {
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	payments, err := ctrl.PaymentUsecase.ListByInvoice(ctx, invoice.ID)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "InvoiceController.Payments", start, err)
		return
	}
	utils.BuildListResponse(w, constvars.GetPaymentsSuccessMessage, payments, len(payments))
}

func (ctrl *InvoiceController) ListByPatient(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "InvoiceController.ListByPatient")
	if !ok {
		return
	}

	patientID, err := utils.ParseIDParam(r, constvars.URLParamPatientID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}
	if !canAccessPatient(caller, patientID) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrRoleNotAllowed(string(caller.Role)), ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	invoices, err := ctrl.InvoiceUsecase.ListByPatient(ctx, patientID)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "InvoiceController.ListByPatient", start, err)
		return
	}

	ctrl.Log.Info("InvoiceController.ListByPatient succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingPatientIDKey, patientID),
		zap.Int(constvars.LoggingCountKey, len(invoices)),
	)
	utils.BuildListResponse(w, constvars.GetInvoicesSuccessMessage, invoices, len(invoices))
}

func (ctrl *InvoiceController) PatientSummary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "InvoiceController.PatientSummary")
	if !ok {
		return
	}

	patientID, err := utils.ParseIDParam(r, constvars.URLParamPatientID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}
	if !canAccessPatient(caller, patientID) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrRoleNotAllowed(string(caller.Role)), ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	summary, err := ctrl.InvoiceUsecase.PatientSummary(ctx, patientID)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "InvoiceController.PatientSummary", start, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetPatientSummarySuccessMessage, summary)
}

func (ctrl *InvoiceController) Overdue(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, _, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "InvoiceController.Overdue")
	if !ok {
		return
	}

	today, err := utils.ParseDateQuery(r, constvars.QueryParamDate, models.DateOf(time.Now()))
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	invoices, err := ctrl.InvoiceUsecase.Overdue(ctx, today)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "InvoiceController.Overdue", start, err)
		return
	}
	utils.BuildListResponse(w, constvars.GetOverdueInvoicesSuccessMessage, invoices, len(invoices))
}

func (ctrl *InvoiceController) AgingReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, _, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "InvoiceController.AgingReport")
	if !ok {
		return
	}

	today, err := utils.ParseDateQuery(r, constvars.QueryParamDate, models.DateOf(time.Now()))
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	report, err := ctrl.InvoiceUsecase.AgingReport(ctx, today)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "InvoiceController.AgingReport", start, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetAgingReportSuccessMessage, report)
}

func (ctrl *InvoiceController) TotalOutstanding(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, _, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "InvoiceController.TotalOutstanding")
	if !ok {
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	total, err := ctrl.InvoiceUsecase.TotalOutstanding(ctx)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "InvoiceController.TotalOutstanding", start, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetOutstandingSuccessMessage, responses.Amount{Total: total})
}
