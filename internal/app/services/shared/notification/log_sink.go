package notification

import (
	"context"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"sync"

	"go.uber.org/zap"
)

// logSink only records notifications in the log. Used when no broker is configured.
type logSink struct {
	Log *zap.Logger
}

func NewLogSink(logger *zap.Logger) contracts.NotificationSink {
	return &logSink{Log: logger}
}

func (s *logSink) NotifyBookingConfirmed(ctx context.Context, patient *models.User, appointment *models.Appointment, invoice *models.Invoice, pdf []byte) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("notification booking confirmed",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingPatientIDKey, patient.ID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointment.ID),
		zap.Int64(constvars.LoggingInvoiceIDKey, invoice.ID),
		zap.Int("pdf_bytes", len(pdf)),
	)
	return nil
}

func (s *logSink) NotifyPaymentConfirmed(ctx context.Context, patient *models.User, payment *models.Payment, pdf []byte) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.Log.Info("notification payment confirmed",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingPatientIDKey, patient.ID),
		zap.Int64(constvars.LoggingPaymentIDKey, payment.ID),
		zap.Int("pdf_bytes", len(pdf)),
	)
	return nil
}

// RecordingSink keeps every notification in memory.
type RecordingSink struct {
	mu       sync.Mutex
	Bookings []int64
	Payments []int64
	Err      error
}

func (s *RecordingSink) NotifyBookingConfirmed(ctx context.Context, patient *models.User, appointment *models.Appointment, invoice *models.Invoice, pdf []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Bookings = append(s.Bookings, appointment.ID)
	return s.Err
}

func (s *RecordingSink) NotifyPaymentConfirmed(ctx context.Context, patient *models.User, payment *models.Payment, pdf []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Payments = append(s.Payments, payment.ID)
	return s.Err
}

func (s *RecordingSink) PaymentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Payments)
}

func (s *RecordingSink) BookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Bookings)
}
