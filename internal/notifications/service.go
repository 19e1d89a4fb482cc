package notifications

import (
	"context"
	"fmt"
	"time"

	"hallbook/internal/invoices"
	"hallbook/internal/shared/config"
	"hallbook/pkg/logger"
)

// Service is the entry point the rest of the application talks to. With
// Kafka enabled it publishes and runs a consumer; without it notifications
// are rendered and handed straight to the email sender.
type Service struct {
	publisher Publisher
	consumer  *Consumer
	sender    EmailSender
	renderer  *contentRenderer
	log       *logger.Logger
}

// NewService wires the pipeline from application configuration.
func NewService(cfg *config.Config) (*Service, error) {
	var sender EmailSender
	if cfg.Email.SMTPHost != "" {
		smtpSender, err := NewSMTPSender(SMTPConfigFrom(cfg.Email))
		if err != nil {
			return nil, fmt.Errorf("failed to configure smtp sender: %w", err)
		}
		sender = smtpSender
	} else {
		sender = NewLogSender()
	}

	svc := &Service{
		sender:   sender,
		renderer: newContentRenderer(cfg.Email.FromName),
		log:      logger.GetDefault(),
	}

	if !cfg.Kafka.Enabled {
		return svc, nil
	}

	publisher, err := NewKafkaPublisher(&KafkaPublisherConfig{
		Brokers:         cfg.Kafka.Brokers,
		Topic:           cfg.Kafka.NotificationTopic,
		DeadLetterTopic: cfg.Kafka.DeadLetterTopic,
		MaxRetries:      3,
		RetryBackoff:    100 * time.Millisecond,
		FlushTimeout:    10 * time.Second,
	})
	if err != nil {
		return nil, err
	}

	consumerConfig := DefaultConsumerConfig()
	consumerConfig.Brokers = cfg.Kafka.Brokers
	consumerConfig.GroupID = cfg.Kafka.ConsumerGroup
	consumerConfig.Topics = []string{cfg.Kafka.NotificationTopic}

	consumer, err := NewConsumer(consumerConfig, sender, publisher)
	if err != nil {
		publisher.Close()
		return nil, err
	}

	svc.publisher = publisher
	svc.consumer = consumer
	return svc, nil
}

// NewServiceWith builds a service from explicit parts. Tests use it to swap
// in fakes; a nil publisher means direct dispatch.
func NewServiceWith(publisher Publisher, sender EmailSender, hallName string) *Service {
	return &Service{
		publisher: publisher,
		sender:    sender,
		renderer:  newContentRenderer(hallName),
		log:       logger.GetDefault(),
	}
}

// Start launches the consumer workers when Kafka is in play.
func (s *Service) Start(ctx context.Context, numWorkers int) {
	if s.consumer != nil {
		s.consumer.Start(ctx, numWorkers)
	}
}

func (s *Service) Stop() error {
	var firstErr error
	if s.consumer != nil {
		if err := s.consumer.Stop(); err != nil {
			firstErr = err
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NotifyBookingReceived acknowledges a new provisional booking.
func (s *Service) NotifyBookingReceived(ctx context.Context, recipient, eventName string, start, end time.Time, total, deposit float64) error {
	subject, html, text, err := s.renderer.bookingReceived(eventName, start, end, total, deposit)
	if err != nil {
		return err
	}

	notification := NewNotification(NotificationTypeBookingReceived, recipient, "")
	notification.Subject = subject
	notification.HTMLBody = html
	notification.TextBody = text
	return s.dispatch(ctx, notification)
}

// NotifyBookingApproved tells the hirer their booking is confirmed. The
// calendar entry, when present, is attached as an .ics file.
func (s *Service) NotifyBookingApproved(ctx context.Context, recipient, eventName string, start time.Time, calendarEntry []byte) error {
	subject, html, text, err := s.renderer.bookingApproved(eventName, start)
	if err != nil {
		return err
	}

	notification := NewNotification(NotificationTypeBookingApproved, recipient, "")
	notification.Subject = subject
	notification.HTMLBody = html
	notification.TextBody = text
	if len(calendarEntry) > 0 {
		notification.Attachments = append(notification.Attachments, Attachment{
			Filename:    "booking.ics",
			ContentType: "text/calendar; method=PUBLISH",
			Content:     calendarEntry,
		})
	}
	return s.dispatch(ctx, notification)
}

// NotifyDocumentsRequested asks the hirer for insurance and licence copies.
func (s *Service) NotifyDocumentsRequested(ctx context.Context, recipient, eventName string) error {
	subject, html, text, err := s.renderer.documentsRequested(eventName)
	if err != nil {
		return err
	}

	notification := NewNotification(NotificationTypeDocumentsRequested, recipient, "")
	notification.Subject = subject
	notification.HTMLBody = html
	notification.TextBody = text
	return s.dispatch(ctx, notification)
}

// NotifyInvoiceSent emails a raised invoice to its contact. The rendered
// invoice, when present, is attached as a PDF.
func (s *Service) NotifyInvoiceSent(ctx context.Context, recipient, reference string, total float64, items []invoices.LineItem, invoicePDF []byte) error {
	subject, html, text, err := s.renderer.invoiceSent(reference, total, items)
	if err != nil {
		return err
	}

	notification := NewNotification(NotificationTypeInvoiceSent, recipient, "")
	notification.Subject = subject
	notification.HTMLBody = html
	notification.TextBody = text
	if len(invoicePDF) > 0 {
		notification.Attachments = append(notification.Attachments, Attachment{
			Filename:    "invoice.pdf",
			ContentType: "application/pdf",
			Content:     invoicePDF,
		})
	}
	return s.dispatch(ctx, notification)
}

func (s *Service) dispatch(ctx context.Context, notification *Notification) error {
	if s.publisher != nil {
		return s.publisher.Publish(ctx, notification)
	}

	if err := s.sender.Send(ctx, notification); err != nil {
		notification.MarkFailed(err)
		return err
	}
	notification.MarkSent()
	s.log.LogNotificationDispatched(ctx, string(notification.Type), notification.RecipientEmail)
	return nil
}
