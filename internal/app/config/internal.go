package config

type InternalConfig struct {
	App      App
	JWT      AppJWT
	Billing  AppBilling
	Workers  AppWorkers
	Minio    AppMinio
	RabbitMQ AppRabbitMQ
}

type App struct {
	Env                        string
	HospitalName               string
	Port                       string
	Version                    string
	Timezone                   string
	EndpointPrefix             string
	StoreDriver                string
	MaxRequests                int
	PaymentRequestsPerMinute   int
	ShutdownTimeoutInSeconds   int
	RequestTimeoutInSeconds    int
	RequestBodyLimitInMegabyte int
}

type AppJWT struct {
	Secret string
}

// AppBilling holds scheduling and billing policies.
type AppBilling struct {
	SlotDurationInMinutes             int
	CardDeclineRate                   float64
	CancelledAppointmentInvoicePolicy string
	PharmacyInvoiceDueDays            int
	BankSlipMaxUploadSizeInMB         int64
}

type AppWorkers struct {
	AvailabilityWindowDays     int
	AvailabilityWorkerCronSpec string
	OverdueWorkerCronSpec      string
	LeaderLockTTLInSeconds     int
}

type AppMinio struct {
	BucketName string
}

type AppRabbitMQ struct {
	NotificationQueue    string
	NotificationPrefetch int
}
