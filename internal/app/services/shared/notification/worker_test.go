package notification

import (
	"context"
	"encoding/base64"
	"errors"
	"hospital-service/internal/app/contracts"
	"testing"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAcknowledger struct {
	acked    int
	nacked   int
	requeued int
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acked++
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	if requeue {
		a.requeued++
		return nil
	}
	a.nacked++
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

type fakePublisher struct {
	messages []Message
	err      error
}

func (p *fakePublisher) Publish(ctx context.Context, message Message) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, message)
	return nil
}

type fakeSender struct {
	sent []contracts.EmailMessage
	err  error
}

func (s *fakeSender) Send(ctx context.Context, message contracts.EmailMessage) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, message)
	return nil
}

func delivery(t *testing.T, ack *fakeAcknowledger, message Message) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(message)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: body}
}

func TestWorker_Handle_DeliversWithDecodedAttachment(t *testing.T) {
	ack := &fakeAcknowledger{}
	sender := &fakeSender{}
	w := NewWorker(zap.NewNop(), &fakePublisher{}, sender)

	pdf := []byte("%PDF-1.3 receipt")
	w.Handle(context.Background(), delivery(t, ack, Message{
		ID:             "m-1",
		To:             "patient@example.com",
		Subject:        "Payment received",
		AttachmentName: "receipt.pdf",
		Attachment:     base64.StdEncoding.EncodeToString(pdf),
	}))

	require.Len(t, sender.sent, 1)
	require.Len(t, sender.sent[0].Attachments, 1)
	assert.Equal(t, pdf, sender.sent[0].Attachments[0].Data)
	assert.Equal(t, "receipt.pdf", sender.sent[0].Attachments[0].FileName)
	assert.Equal(t, 1, ack.acked)
	assert.Zero(t, ack.nacked)
}

func TestWorker_Handle_TransientFailureIsReenqueued(t *testing.T) {
	ack := &fakeAcknowledger{}
	publisher := &fakePublisher{}
	w := NewWorker(zap.NewNop(), publisher, &fakeSender{err: errors.New("smtp down")})

	w.Handle(context.Background(), delivery(t, ack, Message{ID: "m-2", To: "patient@example.com"}))

	require.Len(t, publisher.messages, 1)
	assert.Equal(t, 1, publisher.messages[0].FailedCount)
	assert.Equal(t, 1, ack.acked)
	assert.Zero(t, ack.nacked)
}

func TestWorker_Handle_DeadLettersAfterMaxAttempts(t *testing.T) {
	ack := &fakeAcknowledger{}
	publisher := &fakePublisher{}
	w := NewWorker(zap.NewNop(), publisher, &fakeSender{err: errors.New("smtp down")})

	w.Handle(context.Background(), delivery(t, ack, Message{ID: "m-3", To: "patient@example.com", FailedCount: 2}))

	assert.Empty(t, publisher.messages)
	assert.Equal(t, 1, ack.nacked)
	assert.Zero(t, ack.acked)
}

func TestWorker_Handle_PermanentFailures(t *testing.T) {
	t.Run("undecodable body", func(t *testing.T) {
		ack := &fakeAcknowledger{}
		w := NewWorker(zap.NewNop(), &fakePublisher{}, &fakeSender{})
		w.Handle(context.Background(), amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte("{not json")})
		assert.Equal(t, 1, ack.nacked)
	})

	t.Run("missing recipient", func(t *testing.T) {
		ack := &fakeAcknowledger{}
		publisher := &fakePublisher{}
		w := NewWorker(zap.NewNop(), publisher, &fakeSender{})
		w.Handle(context.Background(), delivery(t, ack, Message{ID: "m-4"}))
		assert.Equal(t, 1, ack.nacked)
		assert.Empty(t, publisher.messages)
	})

	t.Run("corrupt attachment", func(t *testing.T) {
		ack := &fakeAcknowledger{}
		w := NewWorker(zap.NewNop(), &fakePublisher{}, &fakeSender{})
		w.Handle(context.Background(), delivery(t, ack, Message{ID: "m-5", To: "a@b.c", Attachment: "***"}))
		assert.Equal(t, 1, ack.nacked)
	})
}

func TestWorker_Handle_RequeuesWhenRepublishFails(t *testing.T) {
	ack := &fakeAcknowledger{}
	w := NewWorker(zap.NewNop(), &fakePublisher{err: errors.New("broker gone")}, &fakeSender{err: errors.New("smtp down")})

	w.Handle(context.Background(), delivery(t, ack, Message{ID: "m-6", To: "patient@example.com"}))

	assert.Equal(t, 1, ack.requeued)
	assert.Zero(t, ack.acked)
}
