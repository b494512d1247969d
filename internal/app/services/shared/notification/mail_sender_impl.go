package notification

import (
	"context"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/drivers/mailer"
	"hospital-service/internal/pkg/exceptions"
	"io"

	"github.com/go-gomail/gomail"
)

type smtpMailSender struct {
	Client *mailer.SMTPClient
}

func NewSMTPMailSender(client *mailer.SMTPClient) contracts.MailSender {
	return &smtpMailSender{
		Client: client,
	}
}

func (s *smtpMailSender) Send(ctx context.Context, message contracts.EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.Client.EmailSender)
	m.SetHeader("To", message.To)
	m.SetHeader("Subject", message.Subject)
	m.SetBody("text/plain", message.Body)

	for _, attachment := range message.Attachments {
		data := attachment.Data
		m.Attach(attachment.FileName, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}

	if err := s.Client.Dialer.DialAndSend(m); err != nil {
		return exceptions.ErrSMTPSendEmail(err, s.Client.Host)
	}
	return nil
}
