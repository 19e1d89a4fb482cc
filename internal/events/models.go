package events

import (
	"time"

	"hallbook/internal/booking"
	"hallbook/internal/invoices"

	"github.com/google/uuid"
)

// Contact is a hirer, keyed by email. One contact can hold many bookings.
type Contact struct {
	Email     string    `json:"email" gorm:"primaryKey;size:255"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Event is one booking of the hall.
type Event struct {
	ID              uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name            string      `json:"name" gorm:"size:255;not null"`
	Details         string      `json:"details" gorm:"type:text"`
	EventStart      time.Time   `json:"event_start" gorm:"not null;index"`
	EventEnd        time.Time   `json:"event_end" gorm:"not null"`
	PubliclyVisible bool        `json:"publicly_visible" gorm:"not null;default:true"`
	Status          EventStatus `json:"status" gorm:"size:32;not null;default:'provisional';index"`
	ContactEmail    string      `json:"contact_email" gorm:"size:255;not null;index"`
	Contact         Contact     `json:"contact" gorm:"foreignKey:ContactEmail;references:Email"`
	RateID          string      `json:"rate_id" gorm:"size:64;not null;default:'default'"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func (Event) TableName() string   { return "events" }
func (Contact) TableName() string { return "contacts" }

// SubmitBookingRequest is the public booking form payload. The form fields
// ride on booking.Request; the captcha token travels alongside them.
type SubmitBookingRequest struct {
	booking.Request
	CaptchaToken string `json:"captchaToken"`

	// Unset means visible; hirers opt out of showing the event name on the
	// public calendar.
	PubliclyVisible *bool `json:"publiclyVisible"`
}

// SubmissionResult is what a successful public submission returns.
type SubmissionResult struct {
	Event     EventResponse     `json:"event"`
	Breakdown booking.Breakdown `json:"breakdown"`
}

// AdminEventInput is one event in an admin batch create.
type AdminEventInput struct {
	Name            string `json:"name" binding:"required,min=2,max=50"`
	Details         string `json:"details"`
	EventDate       string `json:"eventDate" binding:"required"`
	EventTimeFrom   string `json:"eventTimeFrom" binding:"required"`
	EventTimeTo     string `json:"eventTimeTo" binding:"required"`
	ContactEmail    string `json:"contactEmail" binding:"required,email"`
	ContactName     string `json:"contactName" binding:"required"`
	PubliclyVisible bool   `json:"publiclyVisible"`
}

// CreateEventsRequest is the admin batch create payload.
type CreateEventsRequest struct {
	Events []AdminEventInput `json:"events" binding:"required,min=1,dive"`
}

// SetRateRequest assigns a hire rate to an event.
type SetRateRequest struct {
	RateID string `json:"rateId" binding:"required"`
}

// EventListQuery filters the admin review list.
type EventListQuery struct {
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// PublicEvent is the calendar view of a booking. Names of bookings the hirer
// kept private are masked before this leaves the service.
type PublicEvent struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	EventStart time.Time `json:"event_start"`
	EventEnd   time.Time `json:"event_end"`
}

// EventResponse is the admin view of a booking.
type EventResponse struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	Details         string      `json:"details"`
	EventStart      time.Time   `json:"event_start"`
	EventEnd        time.Time   `json:"event_end"`
	PubliclyVisible bool        `json:"publicly_visible"`
	Status          EventStatus `json:"status"`
	ContactEmail    string      `json:"contact_email"`
	ContactName     string      `json:"contact_name,omitempty"`
	RateID          string      `json:"rate_id"`
	CreatedAt       time.Time   `json:"created_at"`
}

// EventDetailResponse adds the invoices raised against the booking.
type EventDetailResponse struct {
	EventResponse
	Invoices []invoices.InvoiceResponse `json:"invoices"`
}

// EventListResponse is a paginated admin list.
type EventListResponse struct {
	Events     []EventResponse `json:"events"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
}

func (e *Event) ToResponse() EventResponse {
	return EventResponse{
		ID:              e.ID,
		Name:            e.Name,
		Details:         e.Details,
		EventStart:      e.EventStart,
		EventEnd:        e.EventEnd,
		PubliclyVisible: e.PubliclyVisible,
		Status:          e.Status,
		ContactEmail:    e.ContactEmail,
		ContactName:     e.Contact.Name,
		RateID:          e.RateID,
		CreatedAt:       e.CreatedAt,
	}
}

// ToPublic masks names of bookings the hirer kept private; the slot itself
// stays visible so the calendar shows the hall as taken.
func (e *Event) ToPublic() PublicEvent {
	name := e.Name
	if !e.PubliclyVisible {
		name = "Private booking"
	}
	return PublicEvent{
		ID:         e.ID,
		Name:       name,
		EventStart: e.EventStart,
		EventEnd:   e.EventEnd,
	}
}
