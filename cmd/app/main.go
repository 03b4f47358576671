package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/amenitybooking/api"
	"github.com/Domenick1991/amenitybooking/config"
	"github.com/Domenick1991/amenitybooking/internal/bootstrap"
	"github.com/Domenick1991/amenitybooking/internal/cache"
	"github.com/Domenick1991/amenitybooking/internal/email"
	"github.com/Domenick1991/amenitybooking/internal/kafka"
	"github.com/Domenick1991/amenitybooking/internal/logger"
	"github.com/Domenick1991/amenitybooking/internal/notification"
	"github.com/Domenick1991/amenitybooking/internal/payment"
	"github.com/Domenick1991/amenitybooking/internal/repository"
	"github.com/Domenick1991/amenitybooking/internal/service/areas"
	"github.com/Domenick1991/amenitybooking/internal/service/damages"
	"github.com/Domenick1991/amenitybooking/internal/service/reservation"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New(cfg.Log.Env, cfg.Log.Level)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		lg.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	loc, err := cfg.Notifications.Location()
	if err != nil {
		lg.Fatal("notifications timezone", zap.Error(err))
	}

	store := repository.NewStore(pool, lg)
	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Cache)

	var producer *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, lg)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			lg.Warn("kafka unreachable, events will be retried per message", zap.Error(err))
		}
	}

	gateway, err := notificationGateway(cfg, producer, lg)
	if err != nil {
		lg.Fatal("notification gateway", zap.Error(err))
	}
	dispatcher := notification.NewDispatcher(gateway, notification.NewLogSink(lg), lg, notification.DispatcherConfig{
		Workers:     cfg.Notifications.Workers,
		QueueSize:   cfg.Notifications.QueueSize,
		SendTimeout: cfg.Notifications.SendTimeout(),
	})
	defer dispatcher.Close()

	damagesOpts := []damages.Option{damages.WithCalendarCache(redisCache)}
	if cfg.Stripe.SecretKey != "" {
		damagesOpts = append(damagesOpts, damages.WithCheckoutGateway(payment.NewStripeGateway(cfg.Stripe, lg)))
	}
	damagesService := damages.NewDamagesService(store, lg, damagesOpts...)

	reservationOpts := []reservation.Option{
		reservation.WithNotifier(dispatcher),
		reservation.WithCache(redisCache),
		reservation.WithLocation(loc),
	}
	if producer != nil {
		reservationOpts = append(reservationOpts, reservation.WithPublisher(kafka.NewEventPublisher(producer, cfg.Kafka.EventsTopic)))
	}
	reservationService := reservation.NewReservationService(store, damagesService, lg, reservationOpts...)
	areaService := areas.NewAreaService(repository.NewAreaRepository(pool), redisCache, lg)

	handlers := api.Handlers{
		Areas:        api.NewAreaHandler(areaService),
		Reservations: api.NewReservationHandler(reservationService),
		Damages:      api.NewDamagesHandler(damagesService),
	}
	if cfg.Stripe.WebhookSecret != "" {
		handlers.Webhook = api.NewStripeWebhookHandler(payment.NewWebhookVerifier(cfg.Stripe.WebhookSecret), damagesService, lg)
	}

	if err := bootstrap.Run(ctx, cfg.HTTP, api.NewRouter(cfg.HTTP, handlers, lg), lg); err != nil {
		lg.Fatal("server error", zap.Error(err))
	}
}

// notificationGateway sends in-process over SMTP or hands the message to
// the worker through Kafka.
func notificationGateway(cfg *config.Config, producer *kafka.Producer, lg *zap.Logger) (notification.Gateway, error) {
	if cfg.Notifications.Transport == config.TransportKafka {
		return kafka.NewNotificationPublisher(producer, cfg.Kafka.NotificationsTopic), nil
	}
	sender, err := email.NewSender(cfg.SMTP, lg)
	if err != nil {
		return nil, err
	}
	return sender, nil
}
