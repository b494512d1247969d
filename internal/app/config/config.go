package config

import (
	"fmt"
	"hospital-service/internal/pkg/constvars"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var defaults = map[string]interface{}{
	"APP_ENV":                                  constvars.AppEnvDevelopment,
	"APP_HOSPITAL_NAME":                        "General Hospital",
	"APP_PORT":                                 ":8080",
	"APP_VERSION":                              "v1",
	"APP_TIMEZONE":                             "UTC",
	"APP_ENDPOINT_PREFIX":                      "api",
	"APP_STORE_DRIVER":                         constvars.StoreDriverPostgres,
	"APP_MAX_REQUESTS":                         20,
	"APP_PAYMENT_REQUESTS_PER_MINUTE":          30,
	"APP_SHUTDOWN_TIMEOUT_IN_SECONDS":          10,
	"APP_REQUEST_TIMEOUT_IN_SECONDS":           10,
	"APP_REQUEST_BODY_LIMIT_IN_MEGABYTE":       6,
	"APP_SLOT_DURATION_MINUTES":                30,
	"APP_CARD_DECLINE_RATE":                    0.1,
	"APP_CANCELLED_APPOINTMENT_INVOICE_POLICY": constvars.CancelledInvoicePolicyKeep,
	"APP_PHARMACY_INVOICE_DUE_DAYS":            7,
	"APP_BANK_SLIP_MAX_UPLOAD_SIZE_IN_MB":      5,
	"APP_AVAILABILITY_WINDOW_DAYS":             30,
	"APP_AVAILABILITY_WORKER_CRON_SPEC":        "@daily",
	"APP_OVERDUE_WORKER_CRON_SPEC":             "@daily",
	"APP_WORKER_LEADER_LOCK_TTL_IN_SECONDS":    120,
	"JWT_SECRET":                               "",
	"MINIO_BUCKET_NAME":                        "hospital-documents",
	"RABBITMQ_NOTIFICATION_QUEUE":              "hospital.notifications",
	"RABBITMQ_NOTIFICATION_PREFETCH":           10,
	"POSTGRES_HOST":                            "localhost",
	"POSTGRES_PORT":                            "5432",
	"POSTGRES_USERNAME":                        "postgres",
	"POSTGRES_PASSWORD":                        "postgres",
	"POSTGRES_DB_NAME":                         "hospital",
	"POSTGRES_SSL_MODE":                        "disable",
	"POSTGRES_MAX_OPEN_CONNS":                  25,
	"POSTGRES_MAX_IDLE_CONNS":                  5,
	"POSTGRES_MIGRATION_SOURCE":                "internal/migration",
	"REDIS_HOST":                               "localhost",
	"REDIS_PORT":                               "6379",
	"REDIS_PASSWORD":                           "",
	"REDIS_DB":                                 0,
	"LOGGER_LEVEL":                             "info",
	"LOGGER_OUTPUT_FILENAME":                   "logger.log",
	"LOGGER_OUTPUT_ERROR_FILENAME":             "logger_error.log",
	"RABBITMQ_HOST":                            "localhost",
	"RABBITMQ_PORT":                            "5672",
	"RABBITMQ_USERNAME":                        "guest",
	"RABBITMQ_PASSWORD":                        "guest",
	"RABBITMQ_VHOST":                           "/",
	"RABBITMQ_HEARTBEAT_IN_SECONDS":            10,
	"MINIO_HOST":                               "localhost",
	"MINIO_PORT":                               "9000",
	"MINIO_USERNAME":                           "minioadmin",
	"MINIO_PASSWORD":                           "minioadmin",
	"MINIO_USE_SSL":                            false,
	"SMTP_HOST":                                "localhost",
	"SMTP_PORT":                                2525,
	"SMTP_USERNAME":                            "",
	"SMTP_PASSWORD":                            "",
	"SMTP_EMAIL_SENDER":                        "billing@hospital.local",
}

// Load reads .env (if present) and the process environment. The result is passed
// explicitly to every constructor; nothing here is kept in package state.
func Load() (*InternalConfig, *DriverConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	internalConfig := newInternalConfig(v)
	driverConfig := newDriverConfig(v)

	if err := internalConfig.validate(); err != nil {
		return nil, nil, err
	}
	return internalConfig, driverConfig, nil
}

func newInternalConfig(v *viper.Viper) *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                        v.GetString("APP_ENV"),
			HospitalName:               v.GetString("APP_HOSPITAL_NAME"),
			Port:                       v.GetString("APP_PORT"),
			Version:                    v.GetString("APP_VERSION"),
			Timezone:                   v.GetString("APP_TIMEZONE"),
			EndpointPrefix:             v.GetString("APP_ENDPOINT_PREFIX"),
			StoreDriver:                strings.ToLower(v.GetString("APP_STORE_DRIVER")),
			MaxRequests:                v.GetInt("APP_MAX_REQUESTS"),
			PaymentRequestsPerMinute:   v.GetInt("APP_PAYMENT_REQUESTS_PER_MINUTE"),
			ShutdownTimeoutInSeconds:   v.GetInt("APP_SHUTDOWN_TIMEOUT_IN_SECONDS"),
			RequestTimeoutInSeconds:    v.GetInt("APP_REQUEST_TIMEOUT_IN_SECONDS"),
			RequestBodyLimitInMegabyte: v.GetInt("APP_REQUEST_BODY_LIMIT_IN_MEGABYTE"),
		},
		JWT: AppJWT{
			Secret: v.GetString("JWT_SECRET"),
		},
		Billing: AppBilling{
			SlotDurationInMinutes:             v.GetInt("APP_SLOT_DURATION_MINUTES"),
			CardDeclineRate:                   v.GetFloat64("APP_CARD_DECLINE_RATE"),
			CancelledAppointmentInvoicePolicy: strings.ToLower(v.GetString("APP_CANCELLED_APPOINTMENT_INVOICE_POLICY")),
			PharmacyInvoiceDueDays:            v.GetInt("APP_PHARMACY_INVOICE_DUE_DAYS"),
			BankSlipMaxUploadSizeInMB:         v.GetInt64("APP_BANK_SLIP_MAX_UPLOAD_SIZE_IN_MB"),
		},
		Workers: AppWorkers{
			AvailabilityWindowDays:     v.GetInt("APP_AVAILABILITY_WINDOW_DAYS"),
			AvailabilityWorkerCronSpec: v.GetString("APP_AVAILABILITY_WORKER_CRON_SPEC"),
			OverdueWorkerCronSpec:      v.GetString("APP_OVERDUE_WORKER_CRON_SPEC"),
			LeaderLockTTLInSeconds:     v.GetInt("APP_WORKER_LEADER_LOCK_TTL_IN_SECONDS"),
		},
		Minio: AppMinio{
			BucketName: v.GetString("MINIO_BUCKET_NAME"),
		},
		RabbitMQ: AppRabbitMQ{
			NotificationQueue:    v.GetString("RABBITMQ_NOTIFICATION_QUEUE"),
			NotificationPrefetch: v.GetInt("RABBITMQ_NOTIFICATION_PREFETCH"),
		},
	}
}

func newDriverConfig(v *viper.Viper) *DriverConfig {
	return &DriverConfig{
		PostgresDB: PostgresDB{
			Host:            v.GetString("POSTGRES_HOST"),
			Port:            v.GetString("POSTGRES_PORT"),
			Username:        v.GetString("POSTGRES_USERNAME"),
			Password:        v.GetString("POSTGRES_PASSWORD"),
			DBName:          v.GetString("POSTGRES_DB_NAME"),
			SSLMode:         v.GetString("POSTGRES_SSL_MODE"),
			MaxOpenConns:    v.GetInt("POSTGRES_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("POSTGRES_MAX_IDLE_CONNS"),
			MigrationSource: v.GetString("POSTGRES_MIGRATION_SOURCE"),
		},
		Redis: Redis{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Logger: Logger{
			Level:               v.GetString("LOGGER_LEVEL"),
			OutputFileName:      v.GetString("LOGGER_OUTPUT_FILENAME"),
			OutputErrorFileName: v.GetString("LOGGER_OUTPUT_ERROR_FILENAME"),
		},
		RabbitMQ: RabbitMQ{
			Host:               v.GetString("RABBITMQ_HOST"),
			Port:               v.GetString("RABBITMQ_PORT"),
			Username:           v.GetString("RABBITMQ_USERNAME"),
			Password:           v.GetString("RABBITMQ_PASSWORD"),
			VHost:              v.GetString("RABBITMQ_VHOST"),
			HeartbeatInSeconds: v.GetInt("RABBITMQ_HEARTBEAT_IN_SECONDS"),
		},
		Minio: Minio{
			Host:     v.GetString("MINIO_HOST"),
			Port:     v.GetString("MINIO_PORT"),
			Username: v.GetString("MINIO_USERNAME"),
			Password: v.GetString("MINIO_PASSWORD"),
			UseSSL:   v.GetBool("MINIO_USE_SSL"),
		},
		SMTP: SMTP{
			Host:        v.GetString("SMTP_HOST"),
			Port:        v.GetInt("SMTP_PORT"),
			Username:    v.GetString("SMTP_USERNAME"),
			Password:    v.GetString("SMTP_PASSWORD"),
			EmailSender: v.GetString("SMTP_EMAIL_SENDER"),
		},
	}
}

func (c *InternalConfig) validate() error {
	switch c.App.StoreDriver {
	case constvars.StoreDriverPostgres, constvars.StoreDriverMemory:
	default:
		return fmt.Errorf("APP_STORE_DRIVER must be %q or %q, got %q", constvars.StoreDriverPostgres, constvars.StoreDriverMemory, c.App.StoreDriver)
	}
	switch c.Billing.CancelledAppointmentInvoicePolicy {
	case constvars.CancelledInvoicePolicyKeep, constvars.CancelledInvoicePolicyCancelUnpaid:
	default:
		return fmt.Errorf("APP_CANCELLED_APPOINTMENT_INVOICE_POLICY must be %q or %q", constvars.CancelledInvoicePolicyKeep, constvars.CancelledInvoicePolicyCancelUnpaid)
	}
	if c.Billing.SlotDurationInMinutes <= 0 {
		return fmt.Errorf("APP_SLOT_DURATION_MINUTES must be positive")
	}
	if c.Billing.CardDeclineRate < 0 || c.Billing.CardDeclineRate > 1 {
		return fmt.Errorf("APP_CARD_DECLINE_RATE must be within [0, 1]")
	}
	if c.App.Env == constvars.AppEnvProduction && c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	return nil
}

func (c *InternalConfig) SlotDuration() time.Duration {
	return time.Duration(c.Billing.SlotDurationInMinutes) * time.Minute
}

func (c *InternalConfig) LeaderLockTTL() time.Duration {
	return time.Duration(c.Workers.LeaderLockTTLInSeconds) * time.Second
}

// ExposeErrorDetails reports whether error envelopes carry the dev message and location.
func (c *InternalConfig) ExposeErrorDetails() bool {
	return c != nil && c.App.Env != constvars.AppEnvProduction
}
