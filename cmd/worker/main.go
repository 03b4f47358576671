package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/amenitybooking/config"
	"github.com/Domenick1991/amenitybooking/internal/email"
	"github.com/Domenick1991/amenitybooking/internal/kafka"
	"github.com/Domenick1991/amenitybooking/internal/logger"
	"github.com/Domenick1991/amenitybooking/internal/notification"
	"go.uber.org/zap"
)

// The worker delivers confirmation e-mails queued on the notifications
// topic by the app when notifications.transport is kafka.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.NotificationsTopic == "" {
		log.Fatalf("worker needs kafka.brokers and kafka.notifications_topic")
	}

	lg, err := logger.New(cfg.Log.Env, cfg.Log.Level)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sender, err := email.NewSender(cfg.SMTP, lg)
	if err != nil {
		lg.Fatal("smtp client", zap.Error(err))
	}
	sink := notification.NewLogSink(lg)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, lg)
	defer consumer.Close()

	lg.Info("worker consuming", zap.String("topic", cfg.Kafka.NotificationsTopic))
	err = consumer.ConsumeNotifications(ctx, func(ctx context.Context, n kafka.NotificationMessage) error {
		sendCtx, cancel := context.WithTimeout(ctx, cfg.Notifications.SendTimeout())
		defer cancel()
		res := sender.SendReservationConfirmation(sendCtx, n.Confirmation)
		if !res.Success {
			sink.Failure(n.Confirmation, res)
			return nil
		}
		lg.Info("confirmation email sent",
			zap.String("event_id", n.EventID),
			zap.String("reservation", n.Confirmation.ReservationNumber))
		return nil
	})
	if err != nil {
		lg.Error("consumer stopped", zap.Error(err))
	}
	lg.Info("worker stopped")
}
