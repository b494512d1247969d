package contracts

import (
	"context"
	"hospital-service/internal/app/models"
)

// NotificationSink is fire-and-forget. Callers log errors and never fail on them.
type NotificationSink interface {
	NotifyBookingConfirmed(ctx context.Context, patient *models.User, appointment *models.Appointment, invoice *models.Invoice, pdf []byte) error
	NotifyPaymentConfirmed(ctx context.Context, patient *models.User, payment *models.Payment, pdf []byte) error
}

type DocumentRenderer interface {
	RenderInvoicePdf(invoice *models.Invoice) ([]byte, error)
	RenderReceiptPdf(payment *models.Payment, invoice *models.Invoice) ([]byte, error)
}

type EmailAttachment struct {
	FileName string
	Data     []byte
}

type EmailMessage struct {
	To          string
	Subject     string
	Body        string
	Attachments []EmailAttachment
}

// MailSender delivers one email synchronously.
type MailSender interface {
	Send(ctx context.Context, message EmailMessage) error
}
