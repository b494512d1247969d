package constvars

const (
	LoggingRequestIDKey          = "request_id"
	LoggingMethodKey             = "method"
	LoggingEndpointKey           = "endpoint"
	LoggingRemoteAddrKey         = "remote_addr"
	LoggingResponseBytesKey      = "response_bytes"
	LoggingStatusCodeKey         = "status_code"
	LoggingDurationKey           = "duration"
	LoggingSuccessKey            = "success"
	LoggingOperationKey          = "operation"
	LoggingErrorTypeKey          = "error_type"
	LoggingEventTypeKey          = "event_type"
	LoggingEntityKey             = "entity"
	LoggingEntityIDKey           = "entity_id"
	LoggingCallerIDKey           = "caller_id"
	LoggingCallerRoleKey         = "caller_role"
	LoggingRedisKey              = "redis_key"
	LoggingLockExpirationTimeKey = "lock_expiration_time"
	LoggingLockValueKey          = "lock_value"
	LoggingQueueKey              = "queue"
	LoggingBucketKey             = "bucket"
	LoggingObjectKey             = "object"
	LoggingDoctorIDKey           = "doctor_id"
	LoggingPatientIDKey          = "patient_id"
	LoggingAppointmentIDKey      = "appointment_id"
	LoggingAvailabilityIDKey     = "availability_id"
	LoggingInvoiceIDKey          = "invoice_id"
	LoggingInvoiceNumberKey      = "invoice_number"
	LoggingPaymentIDKey          = "payment_id"
	LoggingTransactionIDKey      = "transaction_id"
	LoggingPlanIDKey             = "plan_id"
	LoggingOrderIDKey            = "order_id"
	LoggingDateKey               = "date"
	LoggingTimeKey               = "time"
	LoggingAmountKey             = "amount"
	LoggingStatusKey             = "status"
	LoggingActionKey             = "action"
	LoggingCountKey              = "count"
)
