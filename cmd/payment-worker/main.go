package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gatherly-app/backend-rsvp/internal/consumer"
	"github.com/gatherly-app/backend-rsvp/internal/di"
	"github.com/gatherly-app/backend-rsvp/internal/metrics"
	"github.com/gatherly-app/backend-rsvp/internal/service"
	"github.com/gatherly-app/backend-rsvp/pkg/config"
	"github.com/gatherly-app/backend-rsvp/pkg/database"
	"github.com/gatherly-app/backend-rsvp/pkg/kafka"
	"github.com/gatherly-app/backend-rsvp/pkg/logger"
	pkgredis "github.com/gatherly-app/backend-rsvp/pkg/redis"
	"github.com/gatherly-app/backend-rsvp/pkg/telemetry"
)

// The payment worker consumes payment state changes from the broker and
// applies them to reservation allocation state. It shares the service layer
// with the API server but runs as a separate binary so consumer lag never
// competes with request latency.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCfg := &logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: "rsvp-payment-worker",
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting RSVP payment worker...")

	ctx := context.Background()

	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:       cfg.OTel.Enabled,
		ServiceName:   "rsvp-payment-worker",
		Environment:   cfg.App.Environment,
		CollectorAddr: cfg.OTel.CollectorAddr,
		SampleRatio:   cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry init failed, continuing without tracing: %v", err))
	}
	defer telemetry.Shutdown(ctx)

	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Metrics init failed: %v", err))
	}

	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:          cfg.Database.Host,
		Port:          cfg.Database.Port,
		User:          cfg.Database.User,
		Password:      cfg.Database.Password,
		Database:      cfg.Database.DBName,
		SSLMode:       cfg.Database.SSLMode,
		MaxConns:      int32(cfg.Database.MaxOpenConns),
		MinConns:      int32(cfg.Database.MinIdleConns),
		MaxRetries:    3,
		RetryInterval: time.Second,
		EnableTracing: cfg.OTel.Enabled,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()

	redisClient, err := pkgredis.NewClient(ctx, &pkgredis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Redis connection failed, display cache disabled: %v", err))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var eventPublisher service.EventPublisher
	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:  cfg.Kafka.Brokers,
		ClientID: cfg.Kafka.ClientID,
	})
	if err != nil {
		appLog.Warn(fmt.Sprintf("Kafka producer connection failed, promotions will not be published: %v", err))
		eventPublisher = service.NewNoOpEventPublisher()
	} else {
		eventPublisher = service.NewKafkaEventPublisher(producer, "rsvp.lifecycle")
	}
	defer eventPublisher.Close()

	container := di.NewContainer(&di.ContainerConfig{
		DB:             db,
		Redis:          redisClient,
		EventPublisher: eventPublisher,
		RSVP:           &cfg.RSVP,
	})

	paymentConsumer, err := consumer.NewPaymentConsumer(ctx, &consumer.PaymentConsumerConfig{
		Brokers:  cfg.Kafka.Brokers,
		GroupID:  cfg.Kafka.ConsumerGroup,
		ClientID: cfg.Kafka.ClientID,
	}, container.RSVPService)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Payment consumer setup failed: %v", err))
	}

	consumerCtx, cancelConsumer := context.WithCancel(ctx)
	go func() {
		if err := paymentConsumer.Start(consumerCtx); err != nil && err != context.Canceled {
			appLog.Error(fmt.Sprintf("Payment consumer stopped: %v", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down payment worker...")

	cancelConsumer()
	paymentConsumer.Stop()
	appLog.Info("Payment worker exited")
}
