package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hallbook/pkg/logger"

	"github.com/IBM/sarama"
)

// ConsumerConfig holds consumer-group settings for the notification topic.
type ConsumerConfig struct {
	Brokers        []string
	GroupID        string
	Topics         []string
	SessionTimeout time.Duration
	Heartbeat      time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:        []string{"localhost:9092"},
		GroupID:        "hallbook-notifications",
		Topics:         []string{"booking-notifications"},
		SessionTimeout: 30 * time.Second,
		Heartbeat:      3 * time.Second,
		MaxRetries:     3,
		RetryBackoff:   time.Second,
	}
}

// Consumer reads notifications off the topic and hands them to the email
// sender. Messages that exhaust their retries go to the dead letter topic.
type Consumer struct {
	group     sarama.ConsumerGroup
	config    *ConsumerConfig
	sender    EmailSender
	publisher Publisher
	log       *logger.Logger
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewConsumer(config *ConsumerConfig, sender EmailSender, publisher Publisher) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = config.Heartbeat
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	group, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &Consumer{
		group:     group,
		config:    config,
		sender:    sender,
		publisher: publisher,
		log:       logger.GetDefault(),
	}, nil
}

// Start begins consuming in background goroutines and returns immediately.
func (c *Consumer) Start(ctx context.Context, numWorkers int) {
	ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for err := range c.group.Errors() {
			c.log.ErrorWithContext(ctx, "consumer group error", err, nil)
		}
	}()

	for i := 0; i < numWorkers; i++ {
		c.wg.Add(1)
		go func(workerID int) {
			defer c.wg.Done()
			c.runWorker(ctx, workerID)
		}(i)
	}

	c.log.InfoWithContext(ctx, "notification consumers started", map[string]interface{}{
		"workers": numWorkers,
		"topics":  c.config.Topics,
		"group":   c.config.GroupID,
	})
}

func (c *Consumer) runWorker(ctx context.Context, workerID int) {
	handler := &groupHandler{consumer: c, workerID: workerID}

	for {
		select {
		case <-ctx.Done():
			return
		default:
			if err := c.group.Consume(ctx, c.config.Topics, handler); err != nil {
				c.log.ErrorWithContext(ctx, "consume failed, retrying", err, map[string]interface{}{
					"worker": workerID,
				})
				time.Sleep(time.Second)
			}
		}
	}
}

func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	err := c.group.Close()
	c.wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

type groupHandler struct {
	consumer *Consumer
	workerID int
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}
			if err := h.processMessage(session.Context(), message); err != nil {
				h.consumer.log.ErrorWithContext(session.Context(), "failed to process notification", err, map[string]interface{}{
					"worker":    h.workerID,
					"topic":     message.Topic,
					"partition": message.Partition,
					"offset":    message.Offset,
				})
			}
			// Mark either way; permanently failing messages are parked on
			// the dead letter topic, not replayed forever.
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *groupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	notification, err := NotificationFromJSON(message.Value)
	if err != nil {
		return fmt.Errorf("failed to decode notification: %w", err)
	}

	if notification.IsExpired() {
		h.consumer.log.InfoWithContext(ctx, "skipping expired notification", map[string]interface{}{
			"notification_id": notification.ID,
			"expired_at":      notification.ExpiresAt,
		})
		return nil
	}

	notification.Status = NotificationStatusSending
	if err := h.sendWithRetry(ctx, notification); err != nil {
		if h.consumer.publisher != nil {
			if dlqErr := h.consumer.publisher.PublishToDeadLetter(ctx, notification, err); dlqErr != nil {
				return fmt.Errorf("delivery failed (%v) and dead letter publish failed: %w", err, dlqErr)
			}
		}
		return err
	}

	notification.MarkSent()
	h.consumer.log.LogNotificationDispatched(ctx, string(notification.Type), notification.RecipientEmail)
	return nil
}

func (h *groupHandler) sendWithRetry(ctx context.Context, notification *Notification) error {
	maxRetries := h.consumer.config.MaxRetries
	backoff := h.consumer.config.RetryBackoff

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		notification.Attempts++
		lastErr = h.consumer.sender.Send(ctx, notification)
		if lastErr == nil {
			return nil
		}
		if attempt == maxRetries {
			break
		}

		select {
		case <-time.After(backoff * time.Duration(1<<attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("delivery failed after %d attempts: %w", notification.Attempts, lastErr)
}
