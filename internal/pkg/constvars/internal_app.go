package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY ContextKey = "request_id"
	CONTEXT_CALLER_KEY     ContextKey = "caller"
)

const (
	REQUEST_ID_PREFIX = "HOSP_SVC_"
)

const (
	AppEnvProduction  = "production"
	AppEnvDevelopment = "development"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Policies applied to the invoice of a cancelled appointment.
const (
	CancelledInvoicePolicyKeep         = "keep"
	CancelledInvoicePolicyCancelUnpaid = "cancel_unpaid"
)

const (
	DateFormat      = "2006-01-02"
	TimeOfDayFormat = "15:04"
	YearMonthFormat = "200601"
	CompactDate     = "20060102"
)

const (
	InvoiceNumberFormat     = "INV-%s-%05d"
	PlanNumberFormat        = "PLAN%d%06d"
	ReceiptNumberFormat     = "RCP-%s-%s"
	TransactionIDPrefix     = "TXN"
	BankSlipObjectFormat    = "bankslip_%d_%s%s"
	InvoicePdfObjectFormat  = "invoice_%s.pdf"
	ReceiptPdfObjectFormat  = "receipt_%s.pdf"
	ConsultationItemName    = "Doctor Consultation"
	ConsultationDescription = "Consultation fee for Dr. %s"
	PlanInterestItemName    = "Payment plan interest"
)

const (
	AvailabilityWorkerLeaderLockKey = "availability-worker:leader"
	OverdueWorkerLeaderLockKey      = "overdue-worker:leader"
)

const (
	JWTClaimSubject = "sub"
	JWTClaimRole    = "role"
)

const (
	RegexTimeOfDay = `^([01]\d|2[0-3]):[0-5]\d$`
)

// Resource names used in not-found and duplicate errors.
const (
	ResourceUser                 = "user"
	ResourceDoctor               = "doctor"
	ResourcePatient              = "patient"
	ResourceAvailability         = "availability"
	ResourceAvailabilityTemplate = "availability template"
	ResourceAppointment          = "appointment"
	ResourceInvoice              = "invoice"
	ResourcePayment              = "payment"
	ResourcePaymentPlan          = "payment plan"
	ResourceInstallment          = "installment"
	ResourceOrder                = "order"
	ResourceBankSlip             = "bank slip"
	ResourceReceipt              = "receipt"
)

// Annotations appended to Payment.Notes.
const (
	NoteBankTransferReference = "Bank transfer - Reference: %s"
	NoteCustomerNotes         = "Notes: %s"
	NoteBankSlipUploaded      = "Bank slip uploaded: %s"
	NoteBankSlipUploadFailed  = "Bank slip upload failed: %s"
	NoteNoBankSlip            = "WARNING: No bank slip uploaded"
	NoteCardDeclined          = "Card authorization declined"
	NoteCardAuthorizeError    = "Card authorization error: %s"
	NoteSettlementFailed      = "Settlement failed: %s"
	NotePartialVerification   = "Partially verified: %s of %s"
	NoteReceivedBy            = "Received by user %d"
	NoteInstallmentPayment    = "Installment %d of plan %s"
)

// Notification queue message types and email templates.
const (
	NotificationTypeBookingConfirmed = "booking_confirmed"
	NotificationTypePaymentConfirmed = "payment_confirmed"

	NotificationDeadLetterSuffix = ".dlq"
	NotificationMaxAttempts      = 3

	EmailSubjectBookingConfirmed = "Appointment confirmed on %s at %s"
	EmailBodyBookingConfirmed    = "Dear %s,\n\nyour appointment on %s at %s is confirmed.\nInvoice %s for %s is attached and due on %s.\n"
	EmailSubjectPaymentConfirmed = "Payment received - %s"
	EmailBodyPaymentConfirmed    = "Dear %s,\n\nwe received your %s payment of %s (transaction %s).\nYour receipt is attached.\n"
)
