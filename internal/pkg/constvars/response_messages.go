package constvars

const (
	ResponseSuccess = "success"
)

const (
	GetSlotsSuccessMessage               = "get free slots successfully"
	CreateAvailabilitySuccessMessage     = "availability created successfully"
	UpdateAvailabilitySuccessMessage     = "availability updated successfully"
	GetAvailabilitiesSuccessMessage      = "get availabilities successfully"
	CreateTemplateSuccessMessage         = "availability template created successfully"
	BookAppointmentSuccessMessage        = "appointment booked successfully"
	CancelAppointmentSuccessMessage      = "appointment cancelled successfully"
	CompleteAppointmentSuccessMessage    = "appointment completed successfully"
	NoShowAppointmentSuccessMessage      = "appointment marked as no-show successfully"
	GetAppointmentSuccessMessage         = "get appointment successfully"
	GetInvoiceSuccessMessage             = "get invoice successfully"
	GetInvoicesSuccessMessage            = "get invoices successfully"
	GetAgingReportSuccessMessage         = "get aging report successfully"
	GetPatientSummarySuccessMessage      = "get patient invoice summary successfully"
	GetOutstandingSuccessMessage         = "get outstanding balance successfully"
	CardPaymentSuccessMessage            = "card payment completed successfully"
	BankTransferSubmittedMessage         = "bank transfer submitted for verification"
	CounterPaymentSuccessMessage         = "payment recorded successfully"
	VerifyBankSlipSuccessMessage         = "bank slip verification recorded successfully"
	GetPaymentSuccessMessage             = "get payment successfully"
	GetPaymentsSuccessMessage            = "get payments successfully"
	GetRevenueSuccessMessage             = "get revenue successfully"
	CreatePaymentPlanSuccessMessage      = "payment plan created successfully"
	UpdatePaymentPlanSuccessMessage      = "payment plan updated successfully"
	AdjustPaymentPlanSuccessMessage      = "payment plan adjusted successfully"
	PayInstallmentSuccessMessage         = "installment paid successfully"
	GetPaymentPlanSuccessMessage         = "get payment plan successfully"
	GetOverdueInstallmentsSuccessMessage = "get overdue installments successfully"
	GetOverduePlansSuccessMessage        = "get overdue payment plans successfully"
	CheckoutOrderSuccessMessage          = "pharmacy order checked out successfully"
	GetOrderSuccessMessage               = "get order successfully"
	GetOverdueInvoicesSuccessMessage     = "get overdue invoices successfully"
	GetPendingVerificationSuccessMessage = "get payments pending verification successfully"
	GetPaymentPlanOverviewSuccessMessage = "get payment plan overview successfully"
	GetAppointmentsSuccessMessage        = "get appointments successfully"
)
