package controllers

import (
	"context"
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

type AppointmentController struct {
	Log                *zap.Logger
	AppointmentUsecase contracts.AppointmentUsecase
	InternalConfig     *config.InternalConfig
}

func NewAppointmentController(logger *zap.Logger, appointmentUsecase contracts.AppointmentUsecase, internalConfig *config.InternalConfig) *AppointmentController {
	return &AppointmentController{
		Log:                logger,
		AppointmentUsecase: appointmentUsecase,
		InternalConfig:     internalConfig,
	}
}

func (ctrl *AppointmentController) Book(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "AppointmentController.Book")
	if !ok {
		return
	}

	request := new(requests.BookAppointment)
	if !decodeBody(ctrl.Log, ctrl.InternalConfig, w, r, requestID, "AppointmentController.Book", request) {
		return
	}

	patientID := request.PatientID
	if caller.Role == models.RolePatient {
		patientID = caller.UserID
	}
	if patientID == 0 || !canAccessPatient(caller, patientID) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrRoleNotAllowed(string(caller.Role)), ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	date, err := parseDate(request.Date, "date")
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}
	slot, err := parseTimeOfDay(request.Time, "time")
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	result, err := ctrl.AppointmentUsecase.Book(ctx, contracts.BookAppointmentInput{
		PatientID: patientID,
		DoctorID:  request.DoctorID,
		Date:      date,
		Time:      slot,
		Reason:    request.Reason,
	})
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "AppointmentController.Book", start, err)
		return
	}

	utils.LogBusinessEvent(ctrl.Log, "appointment_booked_via_api", requestID,
		zap.Int64(constvars.LoggingAppointmentIDKey, result.Appointment.ID),
		zap.Int64(constvars.LoggingInvoiceIDKey, result.Invoice.ID),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.BookAppointmentSuccessMessage, result)
}

func (ctrl *AppointmentController) Get(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "AppointmentController.Get")
	if !ok {
		return
	}

	appointmentID, err := utils.ParseIDParam(r, constvars.URLParamID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	appointment, err := ctrl.AppointmentUsecase.Get(ctx, appointmentID)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "AppointmentController.Get", start, err)
		return
	}
	if !canAccessPatient(caller, appointment.PatientID) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrRoleNotAllowed(string(caller.Role)), ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetAppointmentSuccessMessage, appointment)
}

func (ctrl *AppointmentController) ListByPatient(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, "AppointmentController.ListByPatient")
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

	appointments, err := ctrl.AppointmentUsecase.ListByPatient(ctx, patientID)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, "AppointmentController.ListByPatient", start, err)
		return
	}

	ctrl.Log.Info("AppointmentController.ListByPatient succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(appointments)),
	)
	utils.BuildListResponse(w, constvars.GetAppointmentsSuccessMessage, appointments, len(appointments))
}

func (ctrl *AppointmentController) Cancel(w http.ResponseWriter, r *http.Request) {
	ctrl.transition(w, r, "AppointmentController.Cancel", "appointment_cancelled_via_api",
		constvars.CancelAppointmentSuccessMessage, canCancelAppointment, ctrl.AppointmentUsecase.Cancel)
}

func (ctrl *AppointmentController) Complete(w http.ResponseWriter, r *http.Request) {
	ctrl.transition(w, r, "AppointmentController.Complete", "appointment_completed_via_api",
		constvars.CompleteAppointmentSuccessMessage, canAttendAppointment, ctrl.AppointmentUsecase.Complete)
}

func (ctrl *AppointmentController) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	ctrl.transition(w, r, "AppointmentController.MarkNoShow", "appointment_no_show_via_api",
		constvars.NoShowAppointmentSuccessMessage, canAttendAppointment, ctrl.AppointmentUsecase.MarkNoShow)
}

func canCancelAppointment(caller models.Caller, appointment *models.Appointment) bool {
	switch caller.Role {
	case models.RolePatient:
		return appointment.PatientID == caller.UserID
	case models.RoleDoctor:
		return appointment.DoctorID == caller.UserID
	}
	return caller.HasRole(models.RoleReceptionist, models.RoleAdmin)
}

func canAttendAppointment(caller models.Caller, appointment *models.Appointment) bool {
	if caller.Role == models.RoleDoctor {
		return appointment.DoctorID == caller.UserID
	}
	return caller.HasRole(models.RoleReceptionist, models.RoleAdmin)
}

func (ctrl *AppointmentController) transition(
	w http.ResponseWriter,
	r *http.Request,
	handler, event, message string,
	allowed func(models.Caller, *models.Appointment) bool,
	apply func(ctx context.Context, appointmentID int64) (*models.Appointment, error),
) {
	start := time.Now()
	requestID, caller, ok := requestScope(ctrl.Log, ctrl.InternalConfig, w, r, handler)
	if !ok {
		return
	}

	appointmentID, err := utils.ParseIDParam(r, constvars.URLParamID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err, ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	ctx, cancel := withRequestTimeout(r, ctrl.InternalConfig)
	defer cancel()

	existing, err := ctrl.AppointmentUsecase.Get(ctx, appointmentID)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, handler, start, err)
		return
	}
	if !allowed(caller, existing) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrRoleNotAllowed(string(caller.Role)), ctrl.InternalConfig.ExposeErrorDetails())
		return
	}

	appointment, err := apply(ctx, appointmentID)
	if err != nil {
		writeUsecaseError(ctrl.Log, ctrl.InternalConfig, w, requestID, handler, start, err)
		return
	}

	utils.LogBusinessEvent(ctrl.Log, event, requestID,
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
		zap.Int64(constvars.LoggingCallerIDKey, caller.UserID),
		zap.String(constvars.LoggingStatusKey, string(appointment.Status)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, message, appointment)
}
