package exceptions

import (
	"errors"
	"fmt"
	"hospital-service/internal/pkg/constvars"
)

// Domain error kinds. Every CustomError built by a kind factory unwraps to one of these.
var (
	ErrKindNotFound             = errors.New("not found")
	ErrKindDoctorUnavailable    = errors.New("doctor unavailable")
	ErrKindSlotFull             = errors.New("slot full")
	ErrKindSlotTaken            = errors.New("slot taken")
	ErrKindInvalidAmount        = errors.New("invalid amount")
	ErrKindPaymentDeclined      = errors.New("payment declined")
	ErrKindVerificationConflict = errors.New("verification conflict")
	ErrKindPaymentNotPending    = errors.New("payment not pending")
	ErrKindPlanAlreadyExists    = errors.New("plan already exists")
	ErrKindInvoiceAlreadyPaid   = errors.New("invoice already paid")
	ErrKindInvoiceNotPayable    = errors.New("invoice not payable")
	ErrKindInvalidAction        = errors.New("invalid action")
	ErrKindPlanNotActive        = errors.New("plan not active")
	ErrKindDuplicate            = errors.New("duplicate")
)

var (
	ErrNotFound = func(err error, resource string, id interface{}) *CustomError {
		return buildKindError(ErrKindNotFound, err, constvars.StatusNotFound, fmt.Sprintf(constvars.ErrClientResourceNotFound, resource), fmt.Sprintf(constvars.ErrDevResourceNotFound, resource, id))
	}
	ErrDuplicate = func(err error, resource, key string) *CustomError {
		return buildKindError(ErrKindDuplicate, err, constvars.StatusConflict, fmt.Sprintf(constvars.ErrClientResourceAlreadyExists, resource), fmt.Sprintf(constvars.ErrDevDuplicate, resource, key))
	}
	ErrDoctorUnavailable = func(doctorID int64, date string) *CustomError {
		return buildKindError(ErrKindDoctorUnavailable, nil, constvars.StatusConflict, constvars.ErrClientDoctorUnavailable, fmt.Sprintf(constvars.ErrDevDoctorUnavailable, doctorID, date))
	}
	ErrSlotOutsideWindow = func(doctorID int64, date, slot string) *CustomError {
		return buildKindError(ErrKindDoctorUnavailable, nil, constvars.StatusConflict, constvars.ErrClientDoctorUnavailable, fmt.Sprintf(constvars.ErrDevSlotOutsideWindow, slot, doctorID, date))
	}
	ErrSlotFull = func(availabilityID int64, booked, max int) *CustomError {
		return buildKindError(ErrKindSlotFull, nil, constvars.StatusConflict, constvars.ErrClientSlotFull, fmt.Sprintf(constvars.ErrDevSlotFull, availabilityID, booked, max))
	}
	ErrSlotTaken = func(err error, doctorID int64, date, slot string) *CustomError {
		return buildKindError(ErrKindSlotTaken, err, constvars.StatusConflict, constvars.ErrClientSlotTaken, fmt.Sprintf(constvars.ErrDevSlotTaken, doctorID, date, slot))
	}
	ErrInvalidAmount = func(amount, reason string) *CustomError {
		return buildKindError(ErrKindInvalidAmount, nil, constvars.StatusBadRequest, constvars.ErrClientInvalidAmount, fmt.Sprintf(constvars.ErrDevInvalidAmount, amount, reason))
	}
	ErrInvalidCardDetails = func(reason string) *CustomError {
		return buildKindError(ErrKindInvalidAmount, nil, constvars.StatusBadRequest, constvars.ErrClientInvalidCardDetails, fmt.Sprintf(constvars.ErrDevInvalidCardDetails, reason))
	}
	ErrPaymentDeclined = func(transactionID string) *CustomError {
		return buildKindError(ErrKindPaymentDeclined, nil, constvars.StatusPaymentRequired, constvars.ErrClientPaymentDeclined, fmt.Sprintf(constvars.ErrDevPaymentDeclined, transactionID))
	}
	ErrVerificationConflict = func(verified, original string) *CustomError {
		return buildKindError(ErrKindVerificationConflict, nil, constvars.StatusConflict, constvars.ErrClientVerificationConflict, fmt.Sprintf(constvars.ErrDevVerificationConflict, verified, original))
	}
	ErrPaymentNotPending = func(paymentID int64, status string) *CustomError {
		return buildKindError(ErrKindPaymentNotPending, nil, constvars.StatusConflict, constvars.ErrClientPaymentNotPending, fmt.Sprintf(constvars.ErrDevPaymentNotPending, paymentID, status))
	}
	ErrPaymentNotBankTransfer = func(paymentID int64, method string) *CustomError {
		return buildKindError(ErrKindInvalidAction, nil, constvars.StatusBadRequest, constvars.ErrClientInvalidAction, fmt.Sprintf(constvars.ErrDevPaymentNotBankTransfer, paymentID, method))
	}
	ErrPlanAlreadyExists = func(invoiceID, planID int64) *CustomError {
		return buildKindError(ErrKindPlanAlreadyExists, nil, constvars.StatusConflict, constvars.ErrClientPlanAlreadyExists, fmt.Sprintf(constvars.ErrDevPlanAlreadyExists, invoiceID, planID))
	}
	ErrInvoiceAlreadyPaid = func(invoiceID int64) *CustomError {
		return buildKindError(ErrKindInvoiceAlreadyPaid, nil, constvars.StatusConflict, constvars.ErrClientInvoiceAlreadyPaid, fmt.Sprintf(constvars.ErrDevInvoiceAlreadyPaid, invoiceID))
	}
	ErrInvoiceNotPayable = func(invoiceID int64, status string) *CustomError {
		return buildKindError(ErrKindInvoiceNotPayable, nil, constvars.StatusConflict, constvars.ErrClientInvoiceNotPayable, fmt.Sprintf(constvars.ErrDevInvoiceNotPayable, invoiceID, status))
	}
	ErrInvalidAction = func(action, target string) *CustomError {
		return buildKindError(ErrKindInvalidAction, nil, constvars.StatusBadRequest, constvars.ErrClientInvalidAction, fmt.Sprintf(constvars.ErrDevInvalidAction, action, target))
	}
	ErrInvalidStatusChange = func(entity, from, to string) *CustomError {
		return buildKindError(ErrKindInvalidAction, nil, constvars.StatusConflict, constvars.ErrClientInvalidAction, fmt.Sprintf(constvars.ErrDevInvalidStatusChange, entity, from, to))
	}
	ErrPlanNotActive = func(planID int64, status string) *CustomError {
		return buildKindError(ErrKindPlanNotActive, nil, constvars.StatusConflict, constvars.ErrClientPlanNotActive, fmt.Sprintf(constvars.ErrDevPlanNotActive, planID, status))
	}
)

var (
	ErrURLParamIDValidation = func(err error, paramName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevURLParamIDValidationFailed, paramName))
	}
	ErrInputValidation = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, FormatFirstValidationError(err), constvars.ErrDevValidationFailed)
	}
	ErrCannotParseJSON = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, constvars.ErrDevCannotParseJSON)
	}
	ErrCannotMarshalJSON = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevCannotMarshalJSON)
	}
	ErrCannotParseMultipartForm = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, constvars.ErrDevCannotParseMultipartForm)
	}
	ErrInvalidFormat = func(err error, source string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusBadRequest, constvars.ErrClientCannotProcessRequest, fmt.Sprintf(constvars.ErrDevInvalidFormat, source))
	}
	ErrServerDeadlineExceeded = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusGatewayTimeout, constvars.ErrClientServerLongRespond, constvars.ErrDevServerDeadlineExceeded)
	}
	ErrServerProcess = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevServerProcess)
	}
	ErrMissingRequestID = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevMissingRequestID)
	}
	ErrTokenMissing = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnauthorized, constvars.ErrClientNotLoggedIn, constvars.ErrDevAuthTokenMissing)
	}
	ErrTokenInvalid = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusUnauthorized, constvars.ErrClientNotLoggedIn, constvars.ErrDevAuthTokenInvalid)
	}
	ErrRoleNotAllowed = func(role string) *CustomError {
		return BuildNewCustomError(nil, constvars.StatusForbidden, constvars.ErrClientNotAuthorized, fmt.Sprintf(constvars.ErrDevAuthRoleNotAllowed, role))
	}
	ErrRateLimited = func(key string) *CustomError {
		return BuildNewCustomError(nil, constvars.StatusTooManyRequests, constvars.ErrClientTooManyRequests, fmt.Sprintf(constvars.ErrDevRateLimited, key))
	}

	ErrSQLQuery = func(err error, queryName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevSQLQuery, queryName))
	}
	ErrSQLScan = func(err error, queryName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevSQLScan, queryName))
	}
	ErrSQLBeginTx = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevSQLBeginTx)
	}
	ErrSQLCommitTx = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevSQLCommitTx)
	}

	ErrRedisSet = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisSetData)
	}
	ErrRedisDelete = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisDeleteData)
	}
	ErrRedisExpire = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisExpire)
	}
	ErrRedisLockRefresh = func(err error) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, constvars.ErrDevRedisLockRefresh)
	}

	ErrMinioCreateObject = func(err error, bucketName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevMinioCreateObject, bucketName))
	}
	ErrMinioGetObject = func(err error, bucketName string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevMinioGetObject, bucketName))
	}
	ErrRabbitMQPublish = func(err error, queue string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRabbitMQPublish, queue))
	}
	ErrSMTPSendEmail = func(err error, host string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevSMTPSendEmail, host))
	}
	ErrRenderPdf = func(err error, document string) *CustomError {
		return BuildNewCustomError(err, constvars.StatusInternalServerError, constvars.ErrClientSomethingWrongWithApplication, fmt.Sprintf(constvars.ErrDevRenderPdf, document))
	}
)
