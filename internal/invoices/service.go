package invoices

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"hallbook/internal/rates"
	"hallbook/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrInvoiceAlreadyPaid = errors.New("invoice already marked as paid")
	ErrNoEvents           = errors.New("no events found for the given ids")
)

// EventSource provides the billing view of events. Implemented by the events
// service; declared here so this package does not import it.
type EventSource interface {
	GetBillingEvents(ids []uuid.UUID) ([]BillingEvent, error)
}

// BillingEvent is what invoicing needs to know about an event.
type BillingEvent struct {
	ID           uuid.UUID
	Name         string
	From         time.Time
	To           time.Time
	Status       string
	ContactEmail string
	RateID       string
}

// Notifier queues the invoice email. Implemented by the notifications service.
type Notifier interface {
	NotifyInvoiceSent(ctx context.Context, recipient, reference string, total float64, items []LineItem, pdf []byte) error
}

type Service interface {
	SetEventSource(source EventSource)
	SetNotifier(notifier Notifier)

	DraftsForEvents(eventIDs []uuid.UUID) ([]InvoiceDraft, error)
	Send(ctx context.Context, req SendInvoiceRequest) (*InvoiceResponse, error)
	GetInvoice(id uuid.UUID) (*InvoiceResponse, error)
	MarkPaid(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error)
	ListByEvent(eventID uuid.UUID) ([]InvoiceResponse, error)
}

type service struct {
	repo        Repository
	rateService rates.Service
	deriver     Deriver
	eventSource EventSource
	notifier    Notifier
	log         *logger.Logger
}

func NewService(repo Repository, rateService rates.Service, deriver Deriver) Service {
	return &service{
		repo:        repo,
		rateService: rateService,
		deriver:     deriver,
		log:         logger.GetDefault(),
	}
}

func (s *service) SetEventSource(source EventSource) {
	s.eventSource = source
}

func (s *service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// DraftsForEvents fetches the events, groups them by contact and derives the
// editable line items per contact. Drafts are ordered by contact email so the
// admin screen renders deterministically.
func (s *service) DraftsForEvents(eventIDs []uuid.UUID) ([]InvoiceDraft, error) {
	if s.eventSource == nil {
		return nil, errors.New("event source not available")
	}

	billingEvents, err := s.eventSource.GetBillingEvents(eventIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	if len(billingEvents) == 0 {
		return nil, ErrNoEvents
	}

	// Rates repeat across events; fetch each once.
	rateCache := make(map[string]*rates.Rate)
	rateFor := func(id string) (*rates.Rate, error) {
		if rate, ok := rateCache[id]; ok {
			return rate, nil
		}
		rate, err := s.rateService.GetRateModel(id)
		if err != nil {
			return nil, err
		}
		rateCache[id] = rate
		return rate, nil
	}

	byContact := make(map[string][]InvoicedEvent)
	for _, be := range billingEvents {
		rate, err := rateFor(be.RateID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve rate %q: %w", be.RateID, err)
		}

		byContact[be.ContactEmail] = append(byContact[be.ContactEmail], InvoicedEvent{
			ID:            be.ID.String(),
			Name:          be.Name,
			From:          be.From,
			To:            be.To,
			Rate:          rate.HourlyRate,
			DiscountTiers: rate.DiscountTiers,
		})
	}

	contacts := make([]string, 0, len(byContact))
	for contact := range byContact {
		contacts = append(contacts, contact)
	}
	sort.Strings(contacts)

	drafts := make([]InvoiceDraft, 0, len(contacts))
	for _, contact := range contacts {
		events := byContact[contact]
		items := s.deriver.DeriveLineItems(events)
		drafts = append(drafts, InvoiceDraft{
			ContactEmail: contact,
			Events:       events,
			Items:        items,
			Total:        Total(items),
		})
	}

	return drafts, nil
}

func (s *service) Send(ctx context.Context, req SendInvoiceRequest) (*InvoiceResponse, error) {
	now := time.Now()

	items := make([]InvoiceItem, len(req.Items))
	var total float64
	for i, item := range req.Items {
		var eventID *uuid.UUID
		if item.EventID != "" {
			id, err := uuid.Parse(item.EventID)
			if err != nil {
				return nil, fmt.Errorf("invalid event id %q: %w", item.EventID, err)
			}
			eventID = &id
		}
		items[i] = InvoiceItem{
			EventID:     eventID,
			Position:    i,
			Description: item.Description,
			Cost:        item.Cost,
		}
		total += item.Cost
	}

	// References are random over a small space; retry the insert on the
	// rare collision instead of pre-checking.
	var invoice *Invoice
	for attempt := 0; attempt < 3; attempt++ {
		reference, err := NewReference()
		if err != nil {
			return nil, err
		}

		invoice = &Invoice{
			Reference:    reference,
			ContactEmail: req.ContactEmail,
			Status:       InvoiceStatusRaised,
			Total:        total,
			SentAt:       &now,
			Items:        items,
		}

		err = s.repo.Create(invoice)
		if err == nil {
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			invoice = nil
			continue
		}
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	if invoice == nil {
		return nil, errors.New("failed to allocate a unique invoice reference")
	}

	response := invoice.ToResponse()

	if s.notifier != nil {
		pdf, err := RenderInvoicePDF(&response)
		if err != nil {
			// Send the email without the attachment rather than hold the
			// invoice up on a rendering problem.
			s.log.ErrorWithContext(ctx, "failed to render invoice pdf", err, map[string]interface{}{
				"invoice_id": invoice.ID.String(),
			})
			pdf = nil
		}
		if err := s.notifier.NotifyInvoiceSent(ctx, invoice.ContactEmail, invoice.Reference, invoice.Total, response.Items, pdf); err != nil {
			// The invoice is raised either way; delivery problems are for the
			// notification pipeline to report.
			s.log.ErrorWithContext(ctx, "failed to queue invoice notification", err, map[string]interface{}{
				"invoice_id": invoice.ID.String(),
			})
		}
	}

	s.log.LogInvoiceSent(ctx, invoice.ID.String(), invoice.Reference, invoice.ContactEmail)
	return &response, nil
}

func (s *service) GetInvoice(id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	response := invoice.ToResponse()
	return &response, nil
}

func (s *service) MarkPaid(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if invoice.Status == InvoiceStatusPaid {
		return nil, ErrInvoiceAlreadyPaid
	}

	now := time.Now()
	updated, err := s.repo.Update(id, touchUpdatedAt(map[string]interface{}{
		"status":  InvoiceStatusPaid,
		"paid_at": now,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to mark invoice paid: %w", err)
	}

	response := updated.ToResponse()
	return &response, nil
}

func (s *service) ListByEvent(eventID uuid.UUID) ([]InvoiceResponse, error) {
	invoices, err := s.repo.GetByEventID(eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices for event: %w", err)
	}

	responses := make([]InvoiceResponse, len(invoices))
	for i, invoice := range invoices {
		responses[i] = invoice.ToResponse()
	}
	return responses, nil
}
