package messaging

import (
	"fmt"
	"hospital-service/internal/app/config"
	"net/url"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const connectionName = "hospital-service"

// NewRabbitMQ dials the broker that carries booking and payment notifications.
func NewRabbitMQ(driverConfig *config.DriverConfig, log *logrus.Logger) (*amqp091.Connection, error) {
	rabbitConfig := driverConfig.RabbitMQ
	uri := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(rabbitConfig.Username, rabbitConfig.Password),
		Host:   fmt.Sprintf("%s:%s", rabbitConfig.Host, rabbitConfig.Port),
		Path:   "/" + url.PathEscape(rabbitConfig.VHost),
	}

	properties := amqp091.NewConnectionProperties()
	properties.SetClientConnectionName(connectionName)

	conn, err := amqp091.DialConfig(uri.String(), amqp091.Config{
		Heartbeat:  time.Duration(rabbitConfig.HeartbeatInSeconds) * time.Second,
		Locale:     "en_US",
		Properties: properties,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitMQ at %s: %w", uri.Redacted(), err)
	}
	log.WithField("vhost", rabbitConfig.VHost).Println("Successfully connected to rabbitMQ")
	return conn, nil
}
