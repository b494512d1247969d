package controllers

import (
	"context"
	"errors"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/delivery/http/middlewares"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// requestScope resolves the request id and authenticated caller every handler needs.
func requestScope(log *zap.Logger, internalConfig *config.InternalConfig, w http.ResponseWriter, r *http.Request, handler string) (string, models.Caller, bool) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		log.Error(handler+" requestID not found in context",
			zap.String(constvars.LoggingEndpointKey, r.URL.Path),
			zap.String(constvars.LoggingMethodKey, r.Method),
		)
		utils.BuildErrorResponse(log, w, exceptions.ErrMissingRequestID(nil), internalConfig.ExposeErrorDetails())
		return "", models.Caller{}, false
	}

	caller, ok := middlewares.CallerFromContext(r.Context())
	if !ok {
		log.Error(handler+" caller not found in context",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		utils.BuildErrorResponse(log, w, exceptions.ErrTokenMissing(nil), internalConfig.ExposeErrorDetails())
		return "", models.Caller{}, false
	}

	log.Info(handler+" called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingCallerIDKey, caller.UserID),
		zap.String(constvars.LoggingCallerRoleKey, string(caller.Role)),
	)
	return requestID, caller, true
}

// decodeBody parses the JSON body into dst and validates its tags.
func decodeBody(log *zap.Logger, internalConfig *config.InternalConfig, w http.ResponseWriter, r *http.Request, requestID, handler string, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Error(handler+" failed to parse request body",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingErrorTypeKey, "JSON parsing"),
			zap.Error(err),
		)
		utils.BuildErrorResponse(log, w, exceptions.ErrCannotParseJSON(err), internalConfig.ExposeErrorDetails())
		return false
	}

	if err := utils.ValidateStruct(dst); err != nil {
		log.Warn(handler+" request validation failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingErrorTypeKey, "validation"),
			zap.Error(err),
		)
		utils.BuildErrorResponse(log, w, exceptions.ErrInputValidation(err), internalConfig.ExposeErrorDetails())
		return false
	}
	return true
}

func writeUsecaseError(log *zap.Logger, internalConfig *config.InternalConfig, w http.ResponseWriter, requestID, handler string, start time.Time, err error) {
	log.Error(handler+" usecase error",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingErrorTypeKey, "usecase error"),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
		zap.Error(err),
	)
	if errors.Is(err, context.DeadlineExceeded) {
		utils.BuildErrorResponse(log, w, exceptions.ErrServerDeadlineExceeded(err), internalConfig.ExposeErrorDetails())
		return
	}
	utils.BuildErrorResponse(log, w, err, internalConfig.ExposeErrorDetails())
}

func withRequestTimeout(r *http.Request, internalConfig *config.InternalConfig) (context.Context, context.CancelFunc) {
	timeout := time.Duration(internalConfig.App.RequestTimeoutInSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(r.Context(), timeout)
}

// canAccessPatient lets patients see only their own records; staff roles see everyone's.
func canAccessPatient(caller models.Caller, patientID int64) bool {
	if caller.Role == models.RolePatient {
		return caller.UserID == patientID
	}
	return caller.HasRole(models.RoleDoctor, models.RoleReceptionist, models.RoleAccountant, models.RolePharmacist, models.RoleAdmin)
}

func parseDate(value, source string) (time.Time, error) {
	date, err := models.ParseDate(value)
	if err != nil {
		return time.Time{}, exceptions.ErrInvalidFormat(err, source)
	}
	return date, nil
}

func parseTimeOfDay(value, source string) (models.TimeOfDay, error) {
	t, err := models.ParseTimeOfDay(value)
	if err != nil {
		return 0, exceptions.ErrInvalidFormat(err, source)
	}
	return t, nil
}
