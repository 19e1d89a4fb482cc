package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"hallbook/internal/invoices"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingSender struct {
	sent []*Notification
	err  error
}

func (s *capturingSender) Send(ctx context.Context, n *Notification) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, n)
	return nil
}

type capturingPublisher struct {
	published  []*Notification
	deadLetter []*Notification
}

func (p *capturingPublisher) Publish(ctx context.Context, n *Notification) error {
	p.published = append(p.published, n)
	return nil
}

func (p *capturingPublisher) PublishToDeadLetter(ctx context.Context, n *Notification, cause error) error {
	p.deadLetter = append(p.deadLetter, n)
	return nil
}

func (p *capturingPublisher) HealthCheck() error { return nil }
func (p *capturingPublisher) Close() error       { return nil }

func TestNotifyBookingReceivedDirectDispatch(t *testing.T) {
	sender := &capturingSender{}
	svc := NewServiceWith(nil, sender, "Oakfield Community Hall")

	start := time.Date(2026, 4, 10, 18, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 10, 23, 0, 0, 0, time.UTC)

	err := svc.NotifyBookingReceived(context.Background(), "amir@example.com", "Spring Ceilidh", start, end, 200, 100)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	n := sender.sent[0]
	assert.Equal(t, NotificationTypeBookingReceived, n.Type)
	assert.Equal(t, "amir@example.com", n.RecipientEmail)
	assert.Equal(t, "Booking request received - Spring Ceilidh", n.Subject)
	assert.Contains(t, n.HTMLBody, "Spring Ceilidh")
	assert.Contains(t, n.HTMLBody, "200.00")
	assert.Contains(t, n.TextBody, "£100.00 refundable cleaning and damage deposit")
	assert.Equal(t, NotificationStatusSent, n.Status)
}

func TestNotifyBookingApprovedAttachesCalendarEntry(t *testing.T) {
	sender := &capturingSender{}
	svc := NewServiceWith(nil, sender, "Oakfield Community Hall")

	ics := []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")
	start := time.Date(2026, 4, 10, 18, 0, 0, 0, time.UTC)

	err := svc.NotifyBookingApproved(context.Background(), "amir@example.com", "Spring Ceilidh", start, ics)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	n := sender.sent[0]
	require.Len(t, n.Attachments, 1)
	assert.Equal(t, "booking.ics", n.Attachments[0].Filename)
	assert.Equal(t, ics, n.Attachments[0].Content)
	assert.Contains(t, n.Subject, "Booking confirmed")
	assert.Contains(t, n.HTMLBody, "Friday 10 April 2026")
}

func TestNotifyBookingApprovedWithoutCalendarEntry(t *testing.T) {
	sender := &capturingSender{}
	svc := NewServiceWith(nil, sender, "Oakfield Community Hall")

	err := svc.NotifyBookingApproved(context.Background(), "amir@example.com", "Spring Ceilidh", time.Now(), nil)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Empty(t, sender.sent[0].Attachments)
}

func TestNotifyInvoiceSentListsLineItems(t *testing.T) {
	sender := &capturingSender{}
	svc := NewServiceWith(nil, sender, "Oakfield Community Hall")

	items := []invoices.LineItem{
		{Description: "Spring Ceilidh - 5.0 hours", Cost: 125},
		{Description: "Spring Ceilidh - Discount", Cost: -25},
		{Description: "Spring Ceilidh - Refundable Cleaning and Damage deposit", Cost: 100},
	}

	pdf := []byte("%PDF-1.7 invoice")

	err := svc.NotifyInvoiceSent(context.Background(), "amir@example.com", "Q7M2XR", 200, items, pdf)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	n := sender.sent[0]
	assert.Equal(t, "Invoice Q7M2XR from Oakfield Community Hall", n.Subject)
	assert.Contains(t, n.HTMLBody, "Spring Ceilidh - 5.0 hours")
	assert.Contains(t, n.HTMLBody, "-25.00")
	assert.Contains(t, n.TextBody, "Total: £200.00")
	assert.Contains(t, n.TextBody, "reference Q7M2XR")

	require.Len(t, n.Attachments, 1)
	assert.Equal(t, "invoice.pdf", n.Attachments[0].Filename)
	assert.Equal(t, "application/pdf", n.Attachments[0].ContentType)
	assert.Equal(t, pdf, n.Attachments[0].Content)
}

func TestNotifyInvoiceSentWithoutPDF(t *testing.T) {
	sender := &capturingSender{}
	svc := NewServiceWith(nil, sender, "Oakfield Community Hall")

	err := svc.NotifyInvoiceSent(context.Background(), "amir@example.com", "Q7M2XR", 100,
		[]invoices.LineItem{{Description: "Deposit", Cost: 100}}, nil)
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Empty(t, sender.sent[0].Attachments)
}

func TestDispatchPrefersPublisherWhenConfigured(t *testing.T) {
	sender := &capturingSender{}
	publisher := &capturingPublisher{}
	svc := NewServiceWith(publisher, sender, "Oakfield Community Hall")

	err := svc.NotifyDocumentsRequested(context.Background(), "amir@example.com", "Spring Ceilidh")
	require.NoError(t, err)

	assert.Len(t, publisher.published, 1)
	assert.Empty(t, sender.sent, "direct sender should not be used when a publisher is set")
	assert.Equal(t, NotificationStatusPending, publisher.published[0].Status)
}

func TestDirectDispatchMarksFailureOnSendError(t *testing.T) {
	sender := &capturingSender{err: errors.New("smtp down")}
	svc := NewServiceWith(nil, sender, "Oakfield Community Hall")

	err := svc.NotifyDocumentsRequested(context.Background(), "amir@example.com", "Spring Ceilidh")
	assert.Error(t, err)
}

func TestNotificationRoundTripAndPartitionKey(t *testing.T) {
	n := NewNotification(NotificationTypeInvoiceSent, "amir@example.com", "")
	n.Subject = "Invoice Q7M2XR"
	n.Attachments = []Attachment{{Filename: "booking.ics", ContentType: "text/calendar", Content: []byte("BEGIN:VCALENDAR")}}

	payload, err := n.ToJSON()
	require.NoError(t, err)

	decoded, err := NotificationFromJSON(payload)
	require.NoError(t, err)
	assert.Equal(t, n.ID, decoded.ID)
	assert.Equal(t, n.Attachments[0].Content, decoded.Attachments[0].Content)
	assert.Equal(t, "amir@example.com", decoded.GetPartitionKey())
	assert.False(t, decoded.IsExpired())
}
