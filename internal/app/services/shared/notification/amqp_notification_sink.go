package notification

import (
	"context"
	"encoding/base64"
	"fmt"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type amqpNotificationSink struct {
	Publisher Publisher
	Log       *zap.Logger
}

func NewAMQPNotificationSink(publisher Publisher, logger *zap.Logger) contracts.NotificationSink {
	return &amqpNotificationSink{
		Publisher: publisher,
		Log:       logger,
	}
}

func (s *amqpNotificationSink) NotifyBookingConfirmed(ctx context.Context, patient *models.User, appointment *models.Appointment, invoice *models.Invoice, pdf []byte) error {
	date := appointment.Date.Format(constvars.DateFormat)
	message := Message{
		ID:      uuid.NewString(),
		Type:    constvars.NotificationTypeBookingConfirmed,
		To:      patient.Email,
		Subject: fmt.Sprintf(constvars.EmailSubjectBookingConfirmed, date, appointment.Time),
		Body: fmt.Sprintf(constvars.EmailBodyBookingConfirmed,
			patient.FullName(),
			date,
			appointment.Time,
			invoice.InvoiceNumber,
			invoice.Total.StringFixed(2),
			invoice.DueDate.Format(constvars.DateFormat),
		),
	}
	attach(&message, fmt.Sprintf(constvars.InvoicePdfObjectFormat, invoice.InvoiceNumber), pdf)
	return s.publish(ctx, message)
}

func (s *amqpNotificationSink) NotifyPaymentConfirmed(ctx context.Context, patient *models.User, payment *models.Payment, pdf []byte) error {
	message := Message{
		ID:      uuid.NewString(),
		Type:    constvars.NotificationTypePaymentConfirmed,
		To:      patient.Email,
		Subject: fmt.Sprintf(constvars.EmailSubjectPaymentConfirmed, payment.ReceiptNumber),
		Body: fmt.Sprintf(constvars.EmailBodyPaymentConfirmed,
			patient.FullName(),
			payment.Method,
			payment.Amount.StringFixed(2),
			payment.TransactionID,
		),
	}
	attach(&message, fmt.Sprintf(constvars.ReceiptPdfObjectFormat, payment.ReceiptNumber), pdf)
	return s.publish(ctx, message)
}

func (s *amqpNotificationSink) publish(ctx context.Context, message Message) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if message.To == "" {
		s.Log.Warn("amqpNotificationSink.publish recipient has no email; skipping",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEventTypeKey, message.Type),
		)
		return nil
	}
	if err := s.Publisher.Publish(ctx, message); err != nil {
		s.Log.Error("amqpNotificationSink.publish error publishing notification",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingEventTypeKey, message.Type),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func attach(message *Message, name string, pdf []byte) {
	if len(pdf) == 0 {
		return
	}
	message.AttachmentName = name
	message.Attachment = base64.StdEncoding.EncodeToString(pdf)
}
