package constvars

// Validation messages, keyed by validator tag
var CustomValidationErrorMessages = map[string]string{
	"required":    "is required",
	"email":       "must be a valid email",
	"min":         "must be at least %s",
	"max":         "must be at most %s",
	"gt":          "must be greater than %s",
	"gte":         "must be greater than or equal to %s",
	"oneof":       "must be one of [%s]",
	"datetime":    "must follow the format %s",
	"numeric":     "must be numeric",
	"len":         "must be exactly %s characters long",
	"money":       "must be a positive amount with at most 2 fraction digits",
	"time_of_day": "must follow the format HH:MM",
}

var TagsWithParams = map[string]bool{
	"min":      true,
	"max":      true,
	"gt":       true,
	"gte":      true,
	"oneof":    true,
	"datetime": true,
	"len":      true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientNotAuthorized                 = "you can't access this feature"
	ErrClientNotLoggedIn                   = "your session ended, please login again"
	ErrClientTooManyRequests               = "too many requests, please try again later"
	ErrClientResourceNotFound              = "the requested %s does not exist"
	ErrClientResourceAlreadyExists         = "the %s already exists"
	ErrClientDoctorUnavailable             = "doctor is not available on the requested date and time"
	ErrClientSlotFull                      = "no more appointments available for this date"
	ErrClientSlotTaken                     = "the requested time slot has already been booked"
	ErrClientInvalidAmount                 = "invalid payment amount"
	ErrClientInvalidCardDetails            = "invalid card details"
	ErrClientPaymentDeclined               = "payment was declined, please try again with another card"
	ErrClientVerificationConflict          = "verified amount cannot exceed the submitted amount"
	ErrClientPaymentNotPending             = "payment has already been processed"
	ErrClientPlanAlreadyExists             = "a payment plan already exists for this invoice"
	ErrClientInvoiceAlreadyPaid            = "invoice is already paid"
	ErrClientInvoiceNotPayable             = "invoice cannot accept payments in its current status"
	ErrClientInvalidAction                 = "invalid action"
	ErrClientPlanNotActive                 = "payment plan is not active"
)

// Error messages for developers
const (
	ErrDevInvalidInput               = "invalid input"
	ErrDevValidationFailed           = "request validation failed"
	ErrDevCannotParseJSON            = "cannot parse JSON"
	ErrDevCannotMarshalJSON          = "cannot marshal JSON"
	ErrDevCannotParseMultipartForm   = "cannot parse multipart form"
	ErrDevURLParamIDValidationFailed = "URL param '%s' is not a valid id"
	ErrDevInvalidFormat              = "invalid format on %s"
	ErrDevServerDeadlineExceeded     = "server deadline exceeded"
	ErrDevMissingRequestID           = "request id missing from context"
	ErrDevUnauthorized               = "unauthorized access"
	ErrDevAuthTokenMissing           = "bearer token missing"
	ErrDevAuthTokenInvalid           = "bearer token invalid"
	ErrDevAuthSigningMethod          = "unexpected token signing method"
	ErrDevAuthRoleNotAllowed         = "caller role '%s' is not allowed"
	ErrDevRateLimited                = "rate limit exceeded for %s"
	ErrDevServerProcess              = "server failed to process the request"

	ErrDevResourceNotFound       = "%s with id %v not found"
	ErrDevDuplicate              = "%s %s already exists"
	ErrDevDoctorUnavailable      = "no available availability record for doctor %d on %s"
	ErrDevSlotOutsideWindow      = "time %s is not a slot of doctor %d on %s"
	ErrDevSlotFull               = "availability %d is full: %d of %d booked"
	ErrDevSlotTaken              = "doctor %d already has an appointment on %s at %s"
	ErrDevInvalidAmount          = "amount %s rejected: %s"
	ErrDevInvalidCardDetails     = "card details rejected: %s"
	ErrDevPaymentDeclined        = "payment %s declined by authorizer"
	ErrDevVerificationConflict   = "verified amount %s exceeds payment amount %s"
	ErrDevPaymentNotPending      = "payment %d is %s, expected PENDING"
	ErrDevPaymentNotBankTransfer = "payment %d method is %s, expected BANK_TRANSFER"
	ErrDevPlanAlreadyExists      = "invoice %d already has payment plan %d"
	ErrDevInvoiceAlreadyPaid     = "invoice %d is already PAID"
	ErrDevInvoiceNotPayable      = "invoice %d has status %s"
	ErrDevInvalidAction          = "action '%s' is not valid for %s"
	ErrDevPlanNotActive          = "payment plan %d is %s"
	ErrDevInvalidStatusChange    = "cannot move %s from %s to %s"

	ErrDevSQLQuery          = "failed to execute sql query %s"
	ErrDevSQLScan           = "failed to scan sql row %s"
	ErrDevSQLBeginTx        = "failed to begin sql transaction"
	ErrDevSQLCommitTx       = "failed to commit sql transaction"
	ErrDevSQLNoRowsAffected = "sql statement %s affected no rows"

	ErrDevRedisSetData     = "failed to SET data into redis"
	ErrDevRedisDeleteData  = "failed to DELETE data from redis"
	ErrDevRedisExpire      = "failed to EXPIRE key in redis"
	ErrDevRedisLockRefresh = "failed to refresh redis lock"

	ErrDevMinioCreateObject = "failed to create object in minio bucket '%s'"
	ErrDevMinioGetObject    = "failed to get object from minio bucket '%s'"

	ErrDevRabbitMQPublish = "failed to publish message to queue '%s'"
	ErrDevSMTPSendEmail   = "failed to send email through smtp host '%s'"
	ErrDevRenderPdf       = "failed to render %s pdf"
)
