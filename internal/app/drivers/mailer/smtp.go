package mailer

import (
	"hospital-service/internal/app/config"

	"github.com/go-gomail/gomail"
	"github.com/sirupsen/logrus"
)

type SMTPClient struct {
	Host        string
	Port        int
	EmailSender string
	Dialer      *gomail.Dialer
}

func NewSMTPClient(driverConfig *config.DriverConfig, log *logrus.Logger) *SMTPClient {
	dialer := gomail.NewDialer(driverConfig.SMTP.Host, driverConfig.SMTP.Port, driverConfig.SMTP.Username, driverConfig.SMTP.Password)
	log.Printf("SMTP dialer configured for %s:%d", driverConfig.SMTP.Host, driverConfig.SMTP.Port)
	return &SMTPClient{
		Host:        driverConfig.SMTP.Host,
		Port:        driverConfig.SMTP.Port,
		EmailSender: driverConfig.SMTP.EmailSender,
		Dialer:      dialer,
	}
}
