package controllers

import (
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/dto/requests"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type AvailabilityController struct {
	Log                 *zap.Logger
	AvailabilityUsecase contracts.AvailabilityUsecase
	InternalConfig      *config.InternalConfig
}

func NewAvailabilityController(logger *zap.Logger, availabilityUsecase contracts.AvailabilityUsecase, internalConfig *config.InternalConfig) *AvailabilityController {
	return &AvailabilityController{
		Log:                 logger,
		AvailabilityUsecase: availabilityUsecase,
		InternalConfig:      internalConfig,
	}
}

// Doctors manage only their own windows.
func canManageDoctor(caller models.Caller, doctorID int64) bool {
	if caller.Role == models.RoleDoctor {
		return caller.UserID == doctorID
	}
	return caller.HasRole(models.RoleReceptionist, models.RoleAdmin)
}

func (ctrl *AvailabilityController) CreateAvailability(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "AvailabilityController.CreateAvailability")
	if !ok {
		return
	}

	request := new(requests.CreateAvailability)
	if !decodeBody(ctrl.Log, ctrl.InternalConfig, w, r, requestID, "AvailabilityController.CreateAvailability", request) {
		return
	}
	if !canManageDoctor(caller, request.DoctorID) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrRoleNotAllowed(string(caller.Role)), ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	input, err := buildAvailabilityInput(request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	availability, err := ctrl.AvailabilityUsecase.CreateAvailability(ctx, input)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "AvailabilityController.CreateAvailability", start, err)
		return
	}

	utils.LogBusinessEvent(ctrl.Log, "availability_created_via_api", requestID,
		zap.Int64(constvars.LoggingAvailabilityIDKey, availability.ID),
		zap.Int64(constvars.LoggingCallerIDKey, caller.UserID),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.CreateAvailabilitySuccessMessage, availability)
}

func buildAvailabilityInput(request *requests.CreateAvailability) (contracts.CreateAvailabilityInput, error) {
	date, err := parseDate(request.Date, "date")
	if err != nil {
		return contracts.CreateAvailabilityInput{}, err
	}
	startTime, err := parseTimeOfDay(request.StartTime, "start_time")
	if err != nil {
		return contracts.CreateAvailabilityInput{}, err
	}
	endTime, err := parseTimeOfDay(request.EndTime, "end_time")
	if err != nil {
		return contracts.CreateAvailabilityInput{}, err
	}
	return contracts.CreateAvailabilityInput{
		DoctorID:  request.DoctorID,
		Date:      date,
		StartTime: startTime,
		EndTime:   endTime,
		MaxSlots:  request.MaxSlots,
	}, nil
}

func (ctrl *AvailabilityController) SetAvailable(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "AvailabilityController.SetAvailable")
	if !ok {
		return
	}

	availabilityID, err := utils.ParseIDParam(r, constvars.URLParamID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	request := new(requests.SetAvailability)
	if !decodeBody(ctrl.Log, ctrl.InternalConfig, w, r, requestID, "AvailabilityController.SetAvailable", request) {
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	if caller.Role == models.RoleDoctor {
		existing, err := ctrl.AvailabilityUsecase.Get(ctx, availabilityID)
		if err != nil {
			writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "AvailabilityController.SetAvailable", start, err)
			return
		}
		if !canManageDoctor(caller, existing.DoctorID) {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrRoleNotAllowed(string(caller.Role)), ctrl.InternalConfig.ExposeErrorDetails())
			return
		}
	}

	availability, err := ctrl.AvailabilityUsecase.SetAvailable(ctx, availabilityID, *request.Available)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "AvailabilityController.SetAvailable", start, err)
		return
	}

	utils.LogBusinessEvent(ctrl.Log, "availability_toggled_via_api", requestID,
		zap.Int64(constvars.LoggingAvailabilityIDKey, availabilityID),
		zap.Bool("available", availability.Available),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.UpdateAvailabilitySuccessMessage, availability)
}

func (ctrl *AvailabilityController) ListByDoctor(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, _, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "AvailabilityController.ListByDoctor")
	if !ok {
		return
	}

	doctorID, err := utils.ParseIDParam(r, constvars.URLParamDoctorID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}
	today := models.DateOf(time.Now())
	from, err := utils.ParseDateQuery(r, constvars.QueryParamFrom, today)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}
	to, err := utils.ParseDateQuery(r, constvars.QueryParamTo, from.AddDate(0, 0, ctrl.InternalConfig.Workers.AvailabilityWindowDays))
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	availabilities, err := ctrl.AvailabilityUsecase.ListByDoctor(ctx, doctorID, from, to)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "AvailabilityController.ListByDoctor", start, err)
		return
	}

	ctrl.Log.Info("AvailabilityController.ListByDoctor succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(availabilities)),
	)
	utils.BuildListResponse(w, constvars.GetAvailabilitiesSuccessMessage, availabilities, len(availabilities))
}

func (ctrl *AvailabilityController) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "AvailabilityController.CreateTemplate")
	if !ok {
		return
	}

	request := new(requests.CreateAvailabilityTemplate)
	if !decodeBody(ctrl.Log, ctrl.InternalConfig, w, r, requestID, "AvailabilityController.CreateTemplate", request) {
		return
	}
	if !canManageDoctor(caller, request.DoctorID) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrRoleNotAllowed(string(caller.Role)), ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	startTime, err := parseTimeOfDay(request.StartTime, "start_time")
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}
	endTime, err := parseTimeOfDay(request.EndTime, "end_time")
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	template, err := ctrl.AvailabilityUsecase.CreateTemplate(ctx, contracts.CreateAvailabilityTemplateInput{
		DoctorID:  request.DoctorID,
		Weekday:   time.Weekday(*request.Weekday),
		StartTime: startTime,
		EndTime:   endTime,
		MaxSlots:  request.MaxSlots,
	})
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "AvailabilityController.CreateTemplate", start, err)
		return
	}

	utils.LogBusinessEvent(ctrl.Log, "availability_template_created_via_api", requestID,
		zap.Int64(constvars.LoggingDoctorIDKey, request.DoctorID),
		zap.Int("weekday", *request.Weekday),
	)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.CreateTemplateSuccessMessage, template)
}
