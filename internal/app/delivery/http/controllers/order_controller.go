package controllers

import (
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type OrderController struct {
	Log            *zap.Logger
	OrderUsecase   contracts.OrderUsecase
	InternalConfig *config.InternalConfig
}

func NewOrderController(logger *zap.Logger, orderUsecase contracts.OrderUsecase, internalConfig *config.InternalConfig) *OrderController {
	return &OrderController{
		Log:            logger,
		OrderUsecase:   orderUsecase,
		InternalConfig: internalConfig,
	}
}

func (ctrl *OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "OrderController.Checkout")
	if !ok {
		return
	}

	request := new(requests.CheckoutOrder)
	if !decodeBody(ctrl.Log, ctrl.InternalConfig, w, r, requestID, "OrderController.Checkout", request) {
		return
	}

	lines := make([]contracts.CheckoutLine, 0, len(request.Lines))
	for _, line := range request.Lines {
		lines = append(lines, contracts.CheckoutLine{
			Medicine:  line.Medicine,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	pharmacistID := caller.UserID

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	result, err := ctrl.OrderUsecase.Checkout(ctx, contracts.CheckoutInput{
		PatientID:    request.PatientID,
		PharmacistID: &pharmacistID,
		Lines:        lines,
	})
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "OrderController.Checkout", start, err)
		return
	}

	utils.LogBusinessEvent(ctrl.Log, "pharmacy_order_checked_out_via_api", requestID,
		zap.Int64(constvars.LoggingOrderIDKey, result.Order.ID),
		zap.Int64(constvars.LoggingInvoiceIDKey, result.Invoice.ID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.CheckoutOrderSuccessMessage, result)
}

func (ctrl *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "OrderController.Get")
	if !ok {
		return
	}

	orderID, err := utils.ParseIDParam(r, constvars.URLParamID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	order, err := ctrl.OrderUsecase.Get(ctx, orderID)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "OrderController.Get", start, err)
		return
	}
	if !canAccessPatient(caller, order.PatientID) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrRoleNotAllowed(string(caller.Role)), ctrl.InternalConfig.ExposeErrorDetails())
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetOrderSuccessMessage, order)
}
