package invoices

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceStatusRaised    InvoiceStatus = "raised"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusRaised, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

type Invoice struct {
	ID           uuid.UUID     `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Reference    string        `json:"reference" gorm:"not null;uniqueIndex;size:12"`
	ContactEmail string        `json:"contact_email" gorm:"not null;size:255;index"`
	Status       InvoiceStatus `json:"status" gorm:"type:varchar(20);default:'raised'"`
	Total        float64       `json:"total" gorm:"not null"`
	SentAt       *time.Time    `json:"sent_at"`
	PaidAt       *time.Time    `json:"paid_at"`

	Items []InvoiceItem `json:"items" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// InvoiceItem is a persisted line item. Position preserves the derived (or
// manually edited) order. EventID is nullable because admins can add free-form
// rows that reference no event.
type InvoiceItem struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	InvoiceID   uuid.UUID  `json:"invoice_id" gorm:"type:uuid;not null;index"`
	EventID     *uuid.UUID `json:"event_id" gorm:"type:uuid;index"`
	Position    int        `json:"position" gorm:"not null"`
	Description string     `json:"description" gorm:"not null;size:500"`
	Cost        float64    `json:"cost" gorm:"not null"`
}

type InvoiceResponse struct {
	ID           string        `json:"id"`
	Reference    string        `json:"reference"`
	ContactEmail string        `json:"contact_email"`
	Status       InvoiceStatus `json:"status"`
	Total        float64       `json:"total"`
	SentAt       *time.Time    `json:"sent_at"`
	PaidAt       *time.Time    `json:"paid_at"`
	Items        []LineItem    `json:"items"`
	CreatedAt    time.Time     `json:"created_at"`
}

// InvoiceDraft is the editable derivation for one contact: the events being
// billed and the line items derived from them. Nothing is persisted until the
// admin sends it.
type InvoiceDraft struct {
	ContactEmail string          `json:"contact_email"`
	Events       []InvoicedEvent `json:"events"`
	Items        []LineItem      `json:"items"`
	Total        float64         `json:"total"`
}

type SendInvoiceRequest struct {
	ContactEmail string            `json:"contact_email" binding:"required,email"`
	Items        []SendInvoiceItem `json:"items" binding:"required,min=1,dive"`
}

type SendInvoiceItem struct {
	EventID     string  `json:"event_id"`
	Description string  `json:"description" binding:"required,max=500"`
	Cost        float64 `json:"cost"`
}

func (i *Invoice) ToResponse() InvoiceResponse {
	items := make([]LineItem, len(i.Items))
	for idx, item := range i.Items {
		eventID := ""
		if item.EventID != nil {
			eventID = item.EventID.String()
		}
		items[idx] = LineItem{
			EventID:     eventID,
			Description: item.Description,
			Cost:        item.Cost,
		}
	}

	return InvoiceResponse{
		ID:           i.ID.String(),
		Reference:    i.Reference,
		ContactEmail: i.ContactEmail,
		Status:       i.Status,
		Total:        i.Total,
		SentAt:       i.SentAt,
		PaidAt:       i.PaidAt,
		Items:        items,
		CreatedAt:    i.CreatedAt,
	}
}

// TableName specifies the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

func (InvoiceItem) TableName() string {
	return "invoice_items"
}
