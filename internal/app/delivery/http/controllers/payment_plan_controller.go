package controllers

import (
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/dto/responses"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type PaymentPlanController struct {
	Log                *zap.Logger
	PaymentPlanUsecase contracts.PaymentPlanUsecase
	InternalConfig     *config.InternalConfig
}

func NewPaymentPlanController(logger *zap.Logger, paymentPlanUsecase contracts.PaymentPlanUsecase, internalConfig *config.InternalConfig) *PaymentPlanController {
	return &PaymentPlanController{
		Log:                logger,
		PaymentPlanUsecase: paymentPlanUsecase,
		InternalConfig:     internalConfig,
	}
}

func (ctrl *PaymentPlanController) Create(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "PaymentPlanController.Create")
	if !ok {
		return
	}

	request := new(requests.CreatePaymentPlan)
	if !decodeBody(ctrl.Log, ctrl.InternalConfig, w, r, requestID, "PaymentPlanController.Create", request) {
		return
	}

	var startDate time.Time
	if request.StartDate != "" {
		parsed, err := parseDate(request.StartDate, "start_date")
		if err != nil {
			utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
			return
		}
		startDate = parsed
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	plan, err := ctrl.PaymentPlanUsecase.CreatePlan(ctx, contracts.CreatePaymentPlanInput{
		InvoiceID:            request.InvoiceID,
		NumberOfInstallments: request.NumberOfInstallments,
		StartDate:            startDate,
		InterestRate:         request.InterestRate,
		Method:               models.PaymentMethod(request.Method),
		Notes:                request.Notes,
	})
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "PaymentPlanController.Create", start, err)
		return
	}

	utils.LogBusinessEvent(ctrl.Log, "payment_plan_created_via_api", requestID,
		zap.Int64(constvars.LoggingPlanIDKey, plan.ID),
		zap.Int64(constvars.LoggingCallerIDKey, caller.UserID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.CreatePaymentPlanSuccessMessage, plan)
}

func (ctrl *PaymentPlanController) loadPlan(w http.ResponseWriter, r *http.Request, requestID, handler string, caller models.Caller, start time.Time) (*models.PaymentPlan, bool) {
	planID, err := utils.ParseIDParam(r, constvars.URLParamID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return nil, false
	}

	plan, err := ctrl.PaymentPlanUsecase.Get(r.Context(), planID)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, handler, start, err)
		return nil, false
	}
	if !canAccessPatient(caller, plan.PatientID) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrRoleNotAllowed(string(caller.Role)), ctrl.InternalConfig.ExposeErrorDetails())
		return nil, false
	}
	return plan, true
}

func (ctrl *PaymentPlanController) Get(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "PaymentPlanController.Get")
	if !ok {
		return
	}

	plan, ok := ctrl.loadPlan(w, r, requestID, "PaymentPlanController.Get", caller, start)
	if !ok {
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetPaymentPlanSuccessMessage, plan)
}

func (ctrl *PaymentPlanController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "PaymentPlanController.UpdateStatus")
	if !ok {
		return
	}

	planID, err := utils.ParseIDParam(r, constvars.URLParamID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	request := new(requests.UpdatePaymentPlanStatus)
	if !decodeBody(ctrl.Log, ctrl.InternalConfig, w, r, requestID, "PaymentPlanController.UpdateStatus", request) {
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	plan, err := ctrl.PaymentPlanUsecase.UpdateStatus(ctx, planID, request.Action, request.Notes)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "PaymentPlanController.UpdateStatus", start, err)
		return
	}

	utils.LogBusinessEvent(ctrl.Log, "payment_plan_status_changed_via_api", requestID,
		zap.Int64(constvars.LoggingPlanIDKey, planID),
		zap.String(constvars.LoggingActionKey, request.Action),
		zap.Int64(constvars.LoggingCallerIDKey, caller.UserID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.UpdatePaymentPlanSuccessMessage, plan)
}

func (ctrl *PaymentPlanController) Adjust(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "PaymentPlanController.Adjust")
	if !ok {
		return
	}

	planID, err := utils.ParseIDParam(r, constvars.URLParamID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	request := new(requests.AdjustPaymentPlan)
	if !decodeBody(ctrl.Log, ctrl.InternalConfig, w, r, requestID, "PaymentPlanController.Adjust", request) {
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	plan, err := ctrl.PaymentPlanUsecase.Adjust(ctx, contracts.AdjustPaymentPlanInput{
		PlanID:           planID,
		NewDuration:      request.NewDuration,
		NewMonthlyAmount: request.NewMonthlyAmount,
		Reason:           request.Reason,
	})
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "PaymentPlanController.Adjust", start, err)
		return
	}

	utils.LogBusinessEvent(ctrl.Log, "payment_plan_adjusted_via_api", requestID,
		zap.Int64(constvars.LoggingPlanIDKey, planID),
		zap.Int64(constvars.LoggingCallerIDKey, caller.UserID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.AdjustPaymentPlanSuccessMessage, plan)
}

func (ctrl *PaymentPlanController) PayInstallment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "PaymentPlanController.PayInstallment")
	if !ok {
		return
	}

	plan, ok := ctrl.loadPlan(w, r, requestID, "PaymentPlanController.PayInstallment", caller, start)
	if !ok {
		return
	}
	number, err := utils.ParseIntParam(r, constvars.URLParamInstallmentNumber)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	request := new(requests.PayInstallment)
	if !decodeBody(ctrl.Log, ctrl.InternalConfig, w, r, requestID, "PaymentPlanController.PayInstallment", request) {
		return
	}

	method := models.PaymentMethod(request.Method)
	if method.IsCounter() && !caller.HasRole(models.RoleReceptionist, models.RoleAccountant, models.RoleAdmin) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrRoleNotAllowed(string(caller.Role)), ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	input := contracts.PayInstallmentInput{
		PlanID:            plan.ID,
		InstallmentNumber: number,
		Amount:            request.Amount,
		Method:            method,
		ReferenceNumber:   request.ReferenceNumber,
		ReceivedBy:        caller.UserID,
	}
	if request.Card != nil {
		input.Card = toCardDetails(*request.Card)
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	result, err := ctrl.PaymentPlanUsecase.PayInstallment(ctx, input)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "PaymentPlanController.PayInstallment", start, err)
		return
	}

	utils.LogBusinessEvent(ctrl.Log, "installment_paid_via_api", requestID,
		zap.Int64(constvars.LoggingPlanIDKey, plan.ID),
		zap.Int("installment_number", number),
		zap.Int64(constvars.LoggingPaymentIDKey, result.Payment.ID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.PayInstallmentSuccessMessage, result)
}

func (ctrl *PaymentPlanController) OverdueInstallments(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, _, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "PaymentPlanController.OverdueInstallments")
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

	installments, err := ctrl.PaymentPlanUsecase.OverdueInstallments(ctx, today)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "PaymentPlanController.OverdueInstallments", start, err)
		return
	}
	utils.BuildListResponse(w, constvars.GetOverdueInstallmentsSuccessMessage, installments, len(installments))
}

func (ctrl *PaymentPlanController) OverduePlans(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, _, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "PaymentPlanController.OverduePlans")
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

	plans, err := ctrl.PaymentPlanUsecase.OverduePlans(ctx, today)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "PaymentPlanController.OverduePlans", start, err)
		return
	}
	utils.BuildListResponse(w, constvars.GetOverduePlansSuccessMessage, plans, len(plans))
}

func (ctrl *PaymentPlanController) Overview(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, _, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "PaymentPlanController.Overview")
	if !ok {
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	active, err := ctrl.PaymentPlanUsecase.ActiveCount(ctx)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "PaymentPlanController.Overview", start, err)
		return
	}
	outstanding, err := ctrl.PaymentPlanUsecase.TotalOutstanding(ctx)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "PaymentPlanController.Overview", start, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetPaymentPlanOverviewSuccessMessage, responses.PaymentPlanOverview{
		ActiveCount:      active,
		TotalOutstanding: outstanding,
	})
}
