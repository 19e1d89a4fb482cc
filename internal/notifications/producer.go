package notifications

import (
	"context"
	"fmt"
	"time"

	"hallbook/pkg/logger"

	"github.com/IBM/sarama"
)

// Publisher puts notifications onto the notification topic.
type Publisher interface {
	Publish(ctx context.Context, notification *Notification) error
	PublishToDeadLetter(ctx context.Context, notification *Notification, cause error) error
	HealthCheck() error
	Close() error
}

// KafkaPublisherConfig holds producer settings for the notification topic.
type KafkaPublisherConfig struct {
	Brokers         []string
	Topic           string
	DeadLetterTopic string
	MaxRetries      int
	RetryBackoff    time.Duration
	FlushTimeout    time.Duration
}

func DefaultKafkaPublisherConfig() *KafkaPublisherConfig {
	return &KafkaPublisherConfig{
		Brokers:         []string{"localhost:9092"},
		Topic:           "booking-notifications",
		DeadLetterTopic: "booking-notifications-dlq",
		MaxRetries:      3,
		RetryBackoff:    100 * time.Millisecond,
		FlushTimeout:    10 * time.Second,
	}
}

// KafkaPublisher is a synchronous, idempotent producer. Emails are low
// volume so we take the delivery guarantees over throughput.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	config   *KafkaPublisherConfig
	log      *logger.Logger
}

func NewKafkaPublisher(config *KafkaPublisherConfig) (*KafkaPublisher, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = config.MaxRetries
	saramaConfig.Producer.Retry.Backoff = config.RetryBackoff
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Flush.Frequency = 100 * time.Millisecond
	saramaConfig.Producer.Timeout = config.FlushTimeout

	// Idempotence requires a single in-flight request per broker.
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1

	// Hash partitioning by recipient keeps one contact's mail ordered.
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaPublisher{
		producer: producer,
		config:   config,
		log:      logger.GetDefault(),
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, notification *Notification) error {
	return p.publish(ctx, p.config.Topic, notification, nil)
}

// PublishToDeadLetter parks a notification that exhausted its delivery
// retries so it can be replayed once the mail problem is fixed.
func (p *KafkaPublisher) PublishToDeadLetter(ctx context.Context, notification *Notification, cause error) error {
	notification.MarkFailed(cause)
	return p.publish(ctx, p.config.DeadLetterTopic, notification, cause)
}

func (p *KafkaPublisher) publish(ctx context.Context, topic string, notification *Notification, cause error) error {
	payload, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize notification: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(notification.GetPartitionKey()),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("notification_id"), Value: []byte(notification.ID)},
			{Key: []byte("notification_type"), Value: []byte(notification.Type)},
			{Key: []byte("created_at"), Value: []byte(notification.CreatedAt.Format(time.RFC3339))},
		},
	}
	if cause != nil {
		message.Headers = append(message.Headers, sarama.RecordHeader{
			Key: []byte("failure_reason"), Value: []byte(cause.Error()),
		})
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish notification to %s: %w", topic, err)
	}

	p.log.DebugWithContext(ctx, "notification published", map[string]interface{}{
		"notification_id":   notification.ID,
		"notification_type": string(notification.Type),
		"topic":             topic,
		"partition":         partition,
		"offset":            offset,
	})
	return nil
}

func (p *KafkaPublisher) HealthCheck() error {
	if p.producer == nil {
		return fmt.Errorf("kafka producer not initialized")
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}
