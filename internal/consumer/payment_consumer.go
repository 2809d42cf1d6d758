package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/gatherly-app/backend-rsvp/internal/domain"
	"github.com/gatherly-app/backend-rsvp/internal/dto"
	"github.com/gatherly-app/backend-rsvp/internal/service"
	"github.com/gatherly-app/backend-rsvp/pkg/logger"
	"github.com/gatherly-app/backend-rsvp/pkg/retry"
)

// Payment topics consumed by the allocation engine
const (
	TopicPaymentSucceeded = "payment.succeeded"
	TopicPaymentFailed    = "payment.failed"
	TopicPaymentRefunded  = "payment.refunded"
)

// PaymentConsumerConfig holds configuration for PaymentConsumer
type PaymentConsumerConfig struct {
	Brokers          []string
	GroupID          string
	ClientID         string
	SessionTimeout   time.Duration
	RebalanceTimeout time.Duration
	Retry            *retry.Config
}

// PaymentConsumer consumes payment state changes and applies them to
// reservation allocation state
type PaymentConsumer struct {
	config      *PaymentConsumerConfig
	client      *kgo.Client
	rsvpService service.RSVPService
	retryCfg    *retry.Config
	wg          sync.WaitGroup
	stopCh      chan struct{}
}

// NewPaymentConsumer creates a new payment consumer
func NewPaymentConsumer(ctx context.Context, cfg *PaymentConsumerConfig, rsvpService service.RSVPService) (*PaymentConsumer, error) {
	if cfg == nil || len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if cfg.GroupID == "" {
		cfg.GroupID = "rsvp-payment-consumer"
	}
	if cfg.SessionTimeout == 0 {
		cfg.SessionTimeout = 30 * time.Second
	}
	if cfg.RebalanceTimeout == 0 {
		cfg.RebalanceTimeout = 60 * time.Second
	}
	retryCfg := cfg.Retry
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(TopicPaymentSucceeded, TopicPaymentFailed, TopicPaymentRefunded),
		kgo.ClientID(cfg.ClientID),
		kgo.DisableAutoCommit(),
		kgo.SessionTimeout(cfg.SessionTimeout),
		kgo.RebalanceTimeout(cfg.RebalanceTimeout),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping kafka: %w", err)
	}

	return &PaymentConsumer{
		config:      cfg,
		client:      client,
		rsvpService: rsvpService,
		retryCfg:    retryCfg,
		stopCh:      make(chan struct{}),
	}, nil
}

// Start begins consuming payment events. Offsets are committed only after
// the batch has been processed, so a crash replays rather than drops;
// payment application is idempotent so replays are safe.
func (c *PaymentConsumer) Start(ctx context.Context) error {
	log := logger.Get()
	log.Info("payment consumer started",
		zap.Strings("topics", []string{TopicPaymentSucceeded, TopicPaymentFailed, TopicPaymentRefunded}),
		zap.String("group_id", c.config.GroupID),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			return nil
		default:
		}

		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}

		if errs := fetches.Errors(); len(errs) > 0 {
			for _, err := range errs {
				log.Error("fetch error",
					zap.String("topic", err.Topic),
					zap.Int32("partition", err.Partition),
					zap.Error(err.Err),
				)
			}
			continue
		}

		fetches.EachRecord(func(record *kgo.Record) {
			c.wg.Add(1)
			go func(r *kgo.Record) {
				defer c.wg.Done()
				if err := c.processRecord(ctx, r); err != nil {
					log.Error("failed to process payment record",
						zap.String("topic", r.Topic),
						zap.Error(err),
					)
				}
			}(record)
		})
		c.wg.Wait()

		if err := c.client.CommitUncommittedOffsets(ctx); err != nil {
			log.Error("failed to commit offsets", zap.Error(err))
		}
	}
}

// Stop stops the consumer and waits for in-flight records
func (c *PaymentConsumer) Stop() {
	close(c.stopCh)
	c.wg.Wait()
	c.client.Close()
}

func (c *PaymentConsumer) processRecord(ctx context.Context, record *kgo.Record) error {
	var evt dto.PaymentEvent
	if err := json.Unmarshal(record.Value, &evt); err != nil {
		return fmt.Errorf("failed to unmarshal payment event: %w", err)
	}
	if evt.EventType == "" {
		evt.EventType = record.Topic
	}

	logger.Get().Info("received payment event",
		zap.String("event_type", evt.EventType),
		zap.String("payment_id", evt.PaymentID),
		zap.String("reservation_id", evt.ReservationID),
	)

	return retry.Do(ctx, c.retryCfg, func(ctx context.Context) error {
		err := c.rsvpService.ApplyPayment(ctx, &evt)
		if err == nil {
			return nil
		}
		// A missing reservation will not appear by retrying; record the
		// payment side went through and drop the record.
		if domain.IsNotFoundError(err) || domain.IsValidationError(err) {
			return retry.Permanent(err)
		}
		return err
	})
}
