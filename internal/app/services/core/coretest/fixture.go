// Package coretest wires the core usecases on the in-memory store for tests.
package coretest

import (
	"context"
	"fmt"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/app/services/core/appointments"
	"hospital-service/internal/app/services/core/availability"
	"hospital-service/internal/app/services/core/invoices"
	"hospital-service/internal/app/services/core/orders"
	paymentPlans "hospital-service/internal/app/services/core/payment_plans"
	"hospital-service/internal/app/services/core/payments"
	"hospital-service/internal/app/services/core/slot"
	"hospital-service/internal/app/services/core/users"
	"hospital-service/internal/app/services/shared/cardauth"
	"hospital-service/internal/app/services/shared/document"
	"hospital-service/internal/app/services/shared/memstore"
	"hospital-service/internal/app/services/shared/notification"
	"hospital-service/internal/app/services/shared/storage"
	"hospital-service/internal/pkg/constvars"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type Fixture struct {
	Store      *memstore.Store
	Config     *config.InternalConfig
	Log        *zap.Logger
	Authorizer *cardauth.StubAuthorizer
	Sink       *notification.RecordingSink
	Notifier   contracts.NotificationSink
	Files      contracts.FileStore
	Renderer   contracts.DocumentRenderer

	Users        contracts.UserUsecase
	Availability contracts.AvailabilityUsecase
	Slots        contracts.SlotUsecase
	Appointments contracts.AppointmentUsecase
	Invoices     contracts.InvoiceUsecase
	Payments     contracts.PaymentUsecase
	Plans        contracts.PaymentPlanUsecase
	Orders       contracts.OrderUsecase

	emails int64
}

// NewConfig returns the defaults used by every core test.
func NewConfig() *config.InternalConfig {
	return &config.InternalConfig{
		App: config.App{
			Env:                      constvars.AppEnvDevelopment,
			HospitalName:             "Test Hospital",
			Port:                     ":0",
			Version:                  "v1",
			Timezone:                 "UTC",
			EndpointPrefix:           "api",
			StoreDriver:              constvars.StoreDriverMemory,
			MaxRequests:              1000,
			PaymentRequestsPerMinute: 1000,
			ShutdownTimeoutInSeconds: 1,
			RequestTimeoutInSeconds:  5,
		},
		JWT: config.AppJWT{Secret: "test-secret"},
		Billing: config.AppBilling{
			SlotDurationInMinutes:             30,
			CancelledAppointmentInvoicePolicy: constvars.CancelledInvoicePolicyKeep,
			PharmacyInvoiceDueDays:            7,
			BankSlipMaxUploadSizeInMB:         5,
		},
		Workers: config.AppWorkers{
			AvailabilityWindowDays:     14,
			AvailabilityWorkerCronSpec: "@daily",
			OverdueWorkerCronSpec:      "@daily",
			LeaderLockTTLInSeconds:     60,
		},
	}
}

// Option replaces a collaborator before the usecases are wired.
type Option func(f *Fixture)

func WithFileStore(files contracts.FileStore) Option {
	return func(f *Fixture) { f.Files = files }
}

// WithNotifier routes notifications away from the recording sink.
func WithNotifier(notifier contracts.NotificationSink) Option {
	return func(f *Fixture) { f.Notifier = notifier }
}

func WithRenderer(renderer contracts.DocumentRenderer) Option {
	return func(f *Fixture) { f.Renderer = renderer }
}

func New(t testing.TB, opts ...Option) *Fixture {
	return NewWithConfig(t, NewConfig(), opts...)
}

func NewWithConfig(t testing.TB, cfg *config.InternalConfig, opts ...Option) *Fixture {
	t.Helper()

	f := &Fixture{
		Store:      memstore.NewStore(),
		Config:     cfg,
		Log:        zap.NewNop(),
		Authorizer: &cardauth.StubAuthorizer{Approve: true},
		Sink:       &notification.RecordingSink{},
		Files:      storage.NewMemoryStorage(),
		Renderer:   document.NewPdfRenderer(cfg.App.HospitalName),
	}
	f.Notifier = f.Sink
	for _, opt := range opts {
		opt(f)
	}

	f.Users = users.NewUserUsecase(f.Store.Users(), f.Log)
	f.Invoices = invoices.NewInvoiceUsecase(f.Store.Invoices(), f.Store.Orders(), f.Store.PaymentPlans(), f.Store, cfg, f.Log)
	f.Payments = payments.NewPaymentUsecase(
		f.Store,
		f.Store.Payments(),
		f.Store.Invoices(),
		f.Invoices,
		f.Users,
		f.Authorizer,
		f.Files,
		f.Renderer,
		f.Notifier,
		cfg,
		f.Log,
	)
	f.Plans = paymentPlans.NewPaymentPlanUsecase(f.Store, f.Store.PaymentPlans(), f.Store.Invoices(), f.Invoices, f.Payments, f.Log)
	f.Availability = availability.NewAvailabilityUsecase(f.Store.Availabilities(), f.Users, f.Log)
	f.Slots = slot.NewSlotUsecase(f.Store.Availabilities(), f.Store.Appointments(), cfg, f.Log)
	f.Appointments = appointments.NewAppointmentUsecase(
		f.Store,
		f.Store.Appointments(),
		f.Store.Availabilities(),
		f.Users,
		f.Invoices,
		f.Renderer,
		f.Notifier,
		cfg,
		f.Log,
	)
	f.Orders = orders.NewOrderUsecase(f.Store, f.Store.Orders(), f.Users, f.Invoices, f.Log)
	return f
}

func (f *Fixture) nextEmail(prefix string) string {
	return fmt.Sprintf("%s%d@hospital.test", prefix, atomic.AddInt64(&f.emails, 1))
}

func (f *Fixture) CreateDoctor(t testing.TB, fee string) *models.User {
	t.Helper()
	doctor := &models.User{
		Role:      models.RoleDoctor,
		FirstName: "Gregory",
		LastName:  "House",
		Email:     f.nextEmail("doctor"),
		Active:    true,
		Doctor: &models.DoctorProfile{
			Specialization:  "Diagnostics",
			ConsultationFee: Money(fee),
		},
	}
	require.NoError(t, f.Store.Users().Create(context.Background(), doctor))
	return doctor
}

func (f *Fixture) CreatePatient(t testing.TB) *models.User {
	t.Helper()
	patient := &models.User{
		Role:      models.RolePatient,
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     f.nextEmail("patient"),
		Active:    true,
		Patient:   &models.PatientProfile{BloodGroup: "O+"},
	}
	require.NoError(t, f.Store.Users().Create(context.Background(), patient))
	return patient
}

// OpenWindow creates an availability window; times use HH:MM.
func (f *Fixture) OpenWindow(t testing.TB, doctorID int64, date time.Time, start, end string, maxSlots int) *models.DoctorAvailability {
	t.Helper()
	availability, err := f.Availability.CreateAvailability(context.Background(), contracts.CreateAvailabilityInput{
		DoctorID:  doctorID,
		Date:      date,
		StartTime: Time(t, start),
		EndTime:   Time(t, end),
		MaxSlots:  maxSlots,
	})
	require.NoError(t, err)
	return availability
}

// Invoice checks out a one-line pharmacy order and returns its PENDING invoice.
func (f *Fixture) Invoice(t testing.TB, patientID int64, total string) *models.Invoice {
	t.Helper()
	result, err := f.Orders.Checkout(context.Background(), contracts.CheckoutInput{
		PatientID: patientID,
		Lines: []contracts.CheckoutLine{
			{Medicine: "Amoxicillin 500mg", Quantity: 1, UnitPrice: Money(total)},
		},
	})
	require.NoError(t, err)
	return result.Invoice
}

func (f *Fixture) ReloadInvoice(t testing.TB, invoiceID int64) *models.Invoice {
	t.Helper()
	invoice, err := f.Invoices.Get(context.Background(), invoiceID)
	require.NoError(t, err)
	return invoice
}

func Money(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func Time(t testing.TB, value string) models.TimeOfDay {
	t.Helper()
	parsed, err := models.ParseTimeOfDay(value)
	require.NoError(t, err)
	return parsed
}

func Date(t testing.TB, value string) time.Time {
	t.Helper()
	parsed, err := models.ParseDate(value)
	require.NoError(t, err)
	return parsed
}

// ValidCard passes the checksum and expires two years from now.
func ValidCard() models.CardDetails {
	return models.CardDetails{
		Number:      "4111 1111 1111 1111",
		HolderName:  "Jane Doe",
		ExpiryMonth: 12,
		ExpiryYear:  time.Now().Year() + 2,
		CVV:         "123",
	}
}
