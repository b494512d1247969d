package main

import (
	"context"
	"database/sql"
	"fmt"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/delivery/http/controllers"
	"hospital-service/internal/app/delivery/http/middlewares"
	"hospital-service/internal/app/delivery/http/routers"
	"hospital-service/internal/app/drivers/database"
	"hospital-service/internal/app/drivers/messaging"
	"hospital-service/internal/app/drivers/storage"
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
	"hospital-service/internal/app/services/shared/locker"
	"hospital-service/internal/app/services/shared/memstore"
	"hospital-service/internal/app/services/shared/notification"
	"hospital-service/internal/app/services/shared/redis"
	fileStorage "hospital-service/internal/app/services/shared/storage"
	"hospital-service/internal/pkg/constvars"

	"github.com/sirupsen/logrus"
)

type repositories struct {
	transactor   contracts.Transactor
	users        contracts.UserRepository
	availability contracts.AvailabilityRepository
	appointments contracts.AppointmentRepository
	invoices     contracts.InvoiceRepository
	payments     contracts.PaymentRepository
	paymentPlans contracts.PaymentPlanRepository
	orders       contracts.OrderRepository
}

type services struct {
	locker           contracts.LockerService
	fileStore        contracts.FileStore
	notificationSink contracts.NotificationSink
	cardAuthorizer   contracts.CardAuthorizer
	documentRenderer contracts.DocumentRenderer
}

type worker interface {
	Start(ctx context.Context)
	Stop()
}

func newPostgresRepositories(db *sql.DB) repositories {
	return repositories{
		transactor:   database.NewSQLTransactor(db),
		users:        users.NewUserPostgresRepository(db),
		availability: availability.NewAvailabilityPostgresRepository(db),
		appointments: appointments.NewAppointmentPostgresRepository(db),
		invoices:     invoices.NewInvoicePostgresRepository(db),
		payments:     payments.NewPaymentPostgresRepository(db),
		paymentPlans: paymentPlans.NewPaymentPlanPostgresRepository(db),
		orders:       orders.NewOrderPostgresRepository(db),
	}
}

func newMemoryRepositories(store *memstore.Store) repositories {
	return repositories{
		transactor:   store,
		users:        store.Users(),
		availability: store.Availabilities(),
		appointments: store.Appointments(),
		invoices:     store.Invoices(),
		payments:     store.Payments(),
		paymentPlans: store.PaymentPlans(),
		orders:       store.Orders(),
	}
}

// openDrivers connects the external drivers for the configured store driver and fills
// the bootstrap with their handles.
func openDrivers(bootstrap *config.Bootstrap, bootLog *logrus.Logger) (repositories, services, error) {
	internalConfig := bootstrap.InternalConfig
	svc := services{
		cardAuthorizer:   cardauth.NewSimulatedAuthorizer(internalConfig.Billing.CardDeclineRate, bootstrap.Logger),
		documentRenderer: document.NewPdfRenderer(internalConfig.App.HospitalName),
	}

	switch internalConfig.App.StoreDriver {
	case constvars.StoreDriverMemory:
		svc.locker = locker.NewLocalLockService()
		svc.fileStore = fileStorage.NewMemoryStorage()
		svc.notificationSink = notification.NewLogSink(bootstrap.Logger)
		bootLog.Println("Using in-memory store driver")
		return newMemoryRepositories(memstore.NewStore()), svc, nil

	case constvars.StoreDriverPostgres:
		postgresDB, err := database.NewPostgresDB(bootstrap.DriverConfig, bootLog)
		if err != nil {
			return repositories{}, services{}, err
		}
		bootstrap.PostgresDB = postgresDB

		redisClient, err := database.NewRedisClient(bootstrap.DriverConfig, bootLog)
		if err != nil {
			return repositories{}, services{}, err
		}
		bootstrap.Redis = redisClient
		svc.locker = locker.NewLockService(redis.NewRedisRepository(redisClient), bootstrap.Logger)

		bucketName := internalConfig.Minio.BucketName
		minioClient, err := storage.NewMinio(bootstrap.DriverConfig, bucketName, bootLog)
		if err != nil {
			return repositories{}, services{}, err
		}
		bootstrap.Minio = minioClient
		svc.fileStore = fileStorage.NewMinioStorage(minioClient, bucketName, bootstrap.Logger)

		rabbitMQ, err := messaging.NewRabbitMQ(bootstrap.DriverConfig, bootLog)
		if err != nil {
			return repositories{}, services{}, err
		}
		bootstrap.RabbitMQ = rabbitMQ
		queue, err := notification.NewQueueService(
			rabbitMQ,
			internalConfig.RabbitMQ.NotificationQueue,
			internalConfig.RabbitMQ.NotificationPrefetch,
			bootstrap.Logger,
		)
		if err != nil {
			return repositories{}, services{}, err
		}
		svc.notificationSink = notification.NewAMQPNotificationSink(queue, bootstrap.Logger)

		return newPostgresRepositories(postgresDB), svc, nil
	}

	return repositories{}, services{}, fmt.Errorf("unknown store driver %q", internalConfig.App.StoreDriver)
}

// bootstrapingTheApp builds the usecase graph, mounts the routes and returns the background workers.
func bootstrapingTheApp(bootstrap *config.Bootstrap, repos repositories, svc services) []worker {
	internalConfig := bootstrap.InternalConfig
	log := bootstrap.Logger

	// Middlewares
	paymentRateLimiter := middlewares.NewPaymentRateLimiter(internalConfig.App.PaymentRequestsPerMinute, log, internalConfig)
	middlewares := middlewares.NewMiddlewares(log, internalConfig)

	// User
	userUsecase := users.NewUserUsecase(repos.users, log)

	// Invoice
	invoiceUsecase := invoices.NewInvoiceUsecase(repos.invoices, repos.orders, repos.paymentPlans, repos.transactor, internalConfig, log)

	// Payment
	paymentUsecase := payments.NewPaymentUsecase(
		repos.transactor,
		repos.payments,
		repos.invoices,
		invoiceUsecase,
		userUsecase,
		svc.cardAuthorizer,
		svc.fileStore,
		svc.documentRenderer,
		svc.notificationSink,
		internalConfig,
		log,
	)

	// Payment plan
	paymentPlanUsecase := paymentPlans.NewPaymentPlanUsecase(repos.transactor, repos.paymentPlans, repos.invoices, invoiceUsecase, paymentUsecase, log)

	// Scheduling
	availabilityUsecase := availability.NewAvailabilityUsecase(repos.availability, userUsecase, log)
	slotUsecase := slot.NewSlotUsecase(repos.availability, repos.appointments, internalConfig, log)
	appointmentUsecase := appointments.NewAppointmentUsecase(
		repos.transactor,
		repos.appointments,
		repos.availability,
		userUsecase,
		invoiceUsecase,
		svc.documentRenderer,
		svc.notificationSink,
		internalConfig,
		log,
	)

	// Pharmacy
	orderUsecase := orders.NewOrderUsecase(repos.transactor, repos.orders, userUsecase, invoiceUsecase, log)

	routers.SetupRoutes(
		bootstrap.Router,
		internalConfig,
		middlewares,
		paymentRateLimiter,
		controllers.NewSlotController(log, slotUsecase, internalConfig),
		controllers.NewAvailabilityController(log, availabilityUsecase, internalConfig),
		controllers.NewAppointmentController(log, appointmentUsecase, internalConfig),
		controllers.NewInvoiceController(log, invoiceUsecase, paymentUsecase, svc.documentRenderer, internalConfig),
		controllers.NewPaymentController(log, paymentUsecase, invoiceUsecase, svc.documentRenderer, internalConfig),
		controllers.NewPaymentPlanController(log, paymentPlanUsecase, internalConfig),
		controllers.NewOrderController(log, orderUsecase, internalConfig),
	)

	return []worker{
		availability.NewWorker(log, internalConfig, svc.locker, availabilityUsecase),
		invoices.NewOverdueWorker(log, internalConfig, svc.locker, invoiceUsecase, paymentPlanUsecase),
	}
}
