package notification

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/pkg/constvars"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var errPermanent = errors.New("permanent notification failure")

// Worker delivers queued notifications by email. A message that keeps failing is
// re-published up to NotificationMaxAttempts times and then dead-lettered.
type Worker struct {
	log       *zap.Logger
	publisher Publisher
	sender    contracts.MailSender
}

func NewWorker(log *zap.Logger, publisher Publisher, sender contracts.MailSender) *Worker {
	return &Worker{log: log, publisher: publisher, sender: sender}
}

// Run handles deliveries until ctx is done or the channel closes.
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("notification delivery channel closed")
			}
			w.Handle(ctx, delivery)
		}
	}
}

func (w *Worker) Handle(ctx context.Context, delivery amqp.Delivery) {
	var message Message
	if err := json.Unmarshal(delivery.Body, &message); err != nil {
		w.log.Error("notification.worker: undecodable message; dead-lettering", zap.Error(err))
		w.reject(delivery)
		return
	}

	err := w.Deliver(ctx, message)
	if err == nil {
		w.log.Info("notification.worker: delivered",
			zap.String(constvars.LoggingEventTypeKey, message.Type),
			zap.String(constvars.LoggingEntityIDKey, message.ID),
		)
		w.ack(delivery)
		return
	}

	message.FailedCount++
	if errors.Is(err, errPermanent) || message.FailedCount >= constvars.NotificationMaxAttempts {
		w.log.Error("notification.worker: giving up; dead-lettering",
			zap.String(constvars.LoggingEntityIDKey, message.ID),
			zap.Int("failed_count", message.FailedCount),
			zap.Error(err),
		)
		w.reject(delivery)
		return
	}

	w.log.Warn("notification.worker: delivery failed; re-enqueueing",
		zap.String(constvars.LoggingEntityIDKey, message.ID),
		zap.Int("failed_count", message.FailedCount),
		zap.Error(err),
	)
	if err := w.publisher.Publish(ctx, message); err != nil {
		w.log.Error("notification.worker: re-enqueue failed; requeueing original", zap.Error(err))
		if err := delivery.Nack(false, true); err != nil {
			w.log.Error("notification.worker: nack failed", zap.Error(err))
		}
		return
	}
	w.ack(delivery)
}

// Deliver builds the email for message and sends it.
func (w *Worker) Deliver(ctx context.Context, message Message) error {
	if message.To == "" {
		return fmt.Errorf("%w: message %s has no recipient", errPermanent, message.ID)
	}

	email := contracts.EmailMessage{
		To:      message.To,
		Subject: message.Subject,
		Body:    message.Body,
	}
	if message.Attachment != "" {
		data, err := base64.StdEncoding.DecodeString(message.Attachment)
		if err != nil {
			return fmt.Errorf("%w: attachment of message %s: %v", errPermanent, message.ID, err)
		}
		email.Attachments = append(email.Attachments, contracts.EmailAttachment{
			FileName: message.AttachmentName,
			Data:     data,
		})
	}
	return w.sender.Send(ctx, email)
}

func (w *Worker) ack(delivery amqp.Delivery) {
	if err := delivery.Ack(false); err != nil {
		w.log.Error("notification.worker: ack failed", zap.Error(err))
	}
}

func (w *Worker) reject(delivery amqp.Delivery) {
	if err := delivery.Nack(false, false); err != nil {
		w.log.Error("notification.worker: nack failed", zap.Error(err))
	}
}
