package controllers

import (
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/utils"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type SlotController struct {
	Log            *zap.Logger
	SlotUsecase    contracts.SlotUsecase
	InternalConfig *config.InternalConfig
}

func NewSlotController(logger *zap.Logger, slotUsecase contracts.SlotUsecase, internalConfig *config.InternalConfig) *SlotController {
	return &SlotController{
		Log:            logger,
		SlotUsecase:    slotUsecase,
		InternalConfig: internalConfig,
	}
}

func (ctrl *SlotController) FreeSlots(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, _, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "SlotController.FreeSlots")
	if !ok {
		return
	}

	doctorID, err := utils.ParseIDParam(r, constvars.URLParamDoctorID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}
	date, err := utils.ParseDateQuery(r, constvars.QueryParamDate, models.DateOf(time.Now()))
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	slots, err := ctrl.SlotUsecase.FreeSlots(ctx, doctorID, date)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "SlotController.FreeSlots", start, err)
		return
	}

	ctrl.Log.Info("SlotController.FreeSlots succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingDoctorIDKey, doctorID),
		zap.Int(constvars.LoggingCountKey, len(slots)),
	)
	utils.BuildListResponse(w, constvars.GetSlotsSuccessMessage, slots, len(slots))
}
