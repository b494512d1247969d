package main

import (
	"context"
	"hospital-service/internal/app/drivers/mailer"
	"hospital-service/internal/app/drivers/messaging"
	"hospital-service/internal/app/services/shared/notification"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newNotificationWorkerCommand() *cobra.Command {
	var consumerTag string

	cmd := &cobra.Command{
		Use:   "notification-worker",
		Short: "Consume queued notifications and deliver them over SMTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = rt.log.Sync() }()

			conn, err := messaging.NewRabbitMQ(rt.driverConfig, rt.bootLog)
			if err != nil {
				return err
			}
			defer conn.Close()

			queue, err := notification.NewQueueService(
				conn,
				rt.internalConfig.RabbitMQ.NotificationQueue,
				rt.internalConfig.RabbitMQ.NotificationPrefetch,
				rt.log,
			)
			if err != nil {
				return err
			}
			defer queue.Close()

			deliveries, err := queue.Consume(consumerTag)
			if err != nil {
				return err
			}

			sender := notification.NewSMTPMailSender(mailer.NewSMTPClient(rt.driverConfig, rt.bootLog))
			worker := notification.NewWorker(rt.log, queue, sender)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt.bootLog.Printf("Consuming notifications from %s", rt.internalConfig.RabbitMQ.NotificationQueue)
			return worker.Run(ctx, deliveries)
		},
	}

	cmd.Flags().StringVar(&consumerTag, "consumer-tag", "notification-worker", "AMQP consumer tag")
	return cmd
}
