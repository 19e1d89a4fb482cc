package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationType identifies which booking email a message carries.
type NotificationType string

const (
	NotificationTypeBookingReceived    NotificationType = "BOOKING_RECEIVED"
	NotificationTypeBookingApproved    NotificationType = "BOOKING_APPROVED"
	NotificationTypeDocumentsRequested NotificationType = "DOCUMENTS_REQUESTED"
	NotificationTypeInvoiceSent        NotificationType = "INVOICE_SENT"
)

// NotificationStatus tracks delivery state of a notification.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusSending NotificationStatus = "SENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// Attachment is a file attached to an outgoing email. Content is carried as
// base64 on the wire via the default []byte JSON encoding.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}

// Notification is the unit of work on the notification topic. The body is
// rendered by the producer so consumers only deal with delivery.
type Notification struct {
	ID             string             `json:"id"`
	Type           NotificationType   `json:"type"`
	RecipientEmail string             `json:"recipient_email"`
	RecipientName  string             `json:"recipient_name,omitempty"`
	Subject        string             `json:"subject"`
	HTMLBody       string             `json:"html_body"`
	TextBody       string             `json:"text_body"`
	Attachments    []Attachment       `json:"attachments,omitempty"`
	Status         NotificationStatus `json:"status"`
	Attempts       int                `json:"attempts"`
	LastError      string             `json:"last_error,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	ExpiresAt      time.Time          `json:"expires_at"`
}

// NewNotification creates a pending notification addressed to one recipient.
// Notifications expire after 24 hours; a booking email that stale is noise.
func NewNotification(notificationType NotificationType, recipientEmail, recipientName string) *Notification {
	now := time.Now().UTC()
	return &Notification{
		ID:             uuid.New().String(),
		Type:           notificationType,
		RecipientEmail: recipientEmail,
		RecipientName:  recipientName,
		Status:         NotificationStatusPending,
		CreatedAt:      now,
		ExpiresAt:      now.Add(24 * time.Hour),
	}
}

// GetPartitionKey keeps all mail for one recipient on one partition so a
// contact's emails arrive in order.
func (n *Notification) GetPartitionKey() string {
	return n.RecipientEmail
}

func (n *Notification) IsExpired() bool {
	return time.Now().UTC().After(n.ExpiresAt)
}

func (n *Notification) MarkSent() {
	n.Status = NotificationStatusSent
	n.LastError = ""
}

func (n *Notification) MarkFailed(err error) {
	n.Status = NotificationStatusFailed
	if err != nil {
		n.LastError = err.Error()
	}
}

func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

func NotificationFromJSON(data []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
