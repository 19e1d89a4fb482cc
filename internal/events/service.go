package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hallbook/internal/booking"
	"hallbook/internal/invoices"
	"hallbook/internal/rates"
	"hallbook/internal/shared/constants"
	"hallbook/pkg/cache"
	"hallbook/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrInvalidTransition = errors.New("invalid status change for this booking")
)

// CaptchaVerifier guards the public submission. Implemented by the captcha
// package; declared here so tests can fake it.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, ip string) error
}

// Notifier queues booking emails. Implemented by the notifications service.
type Notifier interface {
	NotifyBookingReceived(ctx context.Context, recipient, eventName string, start, end time.Time, total, deposit float64) error
	NotifyBookingApproved(ctx context.Context, recipient, eventName string, start time.Time, calendarEntry []byte) error
	NotifyDocumentsRequested(ctx context.Context, recipient, eventName string) error
}

type Service interface {
	SetNotifier(notifier Notifier)

	// Public surface
	SubmitBooking(ctx context.Context, req SubmitBookingRequest, clientIP string) (*SubmissionResult, []booking.FieldError, error)
	Quote(timeFrom, timeTo string) booking.Breakdown
	ListPublic(ctx context.Context, from, to string) ([]PublicEvent, error)
	ICSFeed(ctx context.Context) ([]byte, error)

	// Admin surface
	GetAllEvents(query EventListQuery) (*EventListResponse, error)
	GetEvent(id uuid.UUID) (*EventDetailResponse, error)
	CreateEvents(ctx context.Context, req CreateEventsRequest) ([]EventResponse, error)
	Approve(ctx context.Context, id uuid.UUID) (*EventResponse, error)
	Cancel(ctx context.Context, id uuid.UUID) (*EventResponse, error)
	RequestDocuments(ctx context.Context, id uuid.UUID) (*EventResponse, error)
	SetRate(ctx context.Context, id uuid.UUID, rateID string) (*EventResponse, error)

	// Billing view, consumed by the invoices service.
	GetBillingEvents(ids []uuid.UUID) ([]invoices.BillingEvent, error)
}

type service struct {
	repo           Repository
	policy         booking.Policy
	overlapBuffer  time.Duration
	captcha        CaptchaVerifier
	cacheService   cache.Service
	invoiceService invoices.Service
	rateService    rates.Service
	notifier       Notifier
	log            *logger.Logger
}

func NewService(
	repo Repository,
	policy booking.Policy,
	overlapBuffer time.Duration,
	captchaVerifier CaptchaVerifier,
	cacheService cache.Service,
	invoiceService invoices.Service,
	rateService rates.Service,
) Service {
	return &service{
		repo:           repo,
		policy:         policy,
		overlapBuffer:  overlapBuffer,
		captcha:        captchaVerifier,
		cacheService:   cacheService,
		invoiceService: invoiceService,
		rateService:    rateService,
		log:            logger.GetDefault(),
	}
}

func (s *service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// SubmitBooking runs the public add-event flow: captcha, form validation,
// clash check, then a provisional event. Field errors come back as a list so
// the form can annotate every failing input at once.
func (s *service) SubmitBooking(ctx context.Context, req SubmitBookingRequest, clientIP string) (*SubmissionResult, []booking.FieldError, error) {
	if s.captcha != nil {
		if err := s.captcha.Verify(ctx, req.CaptchaToken, clientIP); err != nil {
			return nil, nil, err
		}
	}

	breakdown, fieldErrors := booking.Evaluate(req.Request, s.policy, time.Now())
	if len(fieldErrors) > 0 {
		s.log.LogBookingRejected(ctx, "validation failed", len(fieldErrors))
		return nil, fieldErrors, nil
	}

	start, err := combineDateTime(req.EventDate, req.EventTimeFrom)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse booking window: %w", err)
	}
	end, err := combineDateTime(req.EventDate, req.EventTimeTo)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse booking window: %w", err)
	}

	visible := true
	if req.PubliclyVisible != nil {
		visible = *req.PubliclyVisible
	}

	contact := &Contact{Email: req.Email, Name: req.Name}
	event := &Event{
		Name:            req.EventName,
		Details:         req.Details,
		EventStart:      start,
		EventEnd:        end,
		PubliclyVisible: visible,
		Status:          EventStatusProvisional,
		ContactEmail:    req.Email,
		RateID:          rates.DefaultRateID,
	}

	if err := s.repo.CreateBooking(contact, event, s.overlapBuffer); err != nil {
		if errors.Is(err, ErrBookingExists) {
			return nil, nil, ErrBookingExists
		}
		return nil, nil, fmt.Errorf("failed to store booking: %w", err)
	}

	s.invalidateEventCaches(ctx)
	s.log.LogBookingSubmitted(ctx, event.ID.String(), event.ContactEmail)

	if s.notifier != nil {
		if err := s.notifier.NotifyBookingReceived(ctx, event.ContactEmail, event.Name, start, end, breakdown.Total, breakdown.Deposit); err != nil {
			s.log.ErrorWithContext(ctx, "failed to queue booking acknowledgement", err, map[string]interface{}{
				"event_id": event.ID.String(),
			})
		}
	}

	event.Contact = *contact
	return &SubmissionResult{Event: event.ToResponse(), Breakdown: breakdown}, nil, nil
}

// Quote prices a time window for the live form summary.
func (s *service) Quote(timeFrom, timeTo string) booking.Breakdown {
	return booking.Quote(timeFrom, timeTo, s.policy)
}

// ListPublic returns the calendar view for a date window, cached per window.
// The window defaults to the current month through eighteen months out,
// matching how far ahead the booking form allows.
func (s *service) ListPublic(ctx context.Context, from, to string) ([]PublicEvent, error) {
	now := time.Now().UTC()
	fromDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if from != "" {
		parsed, err := time.ParseInLocation("2006-01-02", from, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid from date %q", from)
		}
		fromDate = parsed
	}

	toDate := fromDate.AddDate(0, 18, 0)
	if to != "" {
		parsed, err := time.ParseInLocation("2006-01-02", to, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid to date %q", to)
		}
		toDate = parsed
	}

	key := constants.BuildPublicEventsKey(fromDate.Format("2006-01-02"), toDate.Format("2006-01-02"))

	var publicEvents []PublicEvent
	err := s.cacheService.GetOrSet(ctx, key, constants.TTL_PUBLIC_EVENTS, func() (interface{}, error) {
		events, err := s.repo.ListBetween(fromDate, toDate)
		if err != nil {
			return nil, fmt.Errorf("failed to list events: %w", err)
		}
		result := make([]PublicEvent, len(events))
		for i := range events {
			result[i] = events[i].ToPublic()
		}
		return result, nil
	}, &publicEvents)
	if err != nil {
		return nil, err
	}

	return publicEvents, nil
}

// ICSFeed serves the subscription calendar, cached whole.
func (s *service) ICSFeed(ctx context.Context) ([]byte, error) {
	var feed []byte
	err := s.cacheService.GetOrSet(ctx, constants.CACHE_KEY_EVENTS_ICS, constants.TTL_ICS_FEED, func() (interface{}, error) {
		events, err := s.repo.ListUpcoming(time.Now().UTC())
		if err != nil {
			return nil, fmt.Errorf("failed to list events for feed: %w", err)
		}
		return calendarFeed(events), nil
	}, &feed)
	if err != nil {
		return nil, err
	}
	return feed, nil
}

func (s *service) GetAllEvents(query EventListQuery) (*EventListResponse, error) {
	if query.Status != "" && !EventStatus(query.Status).IsValid() {
		return nil, fmt.Errorf("unknown status %q", query.Status)
	}

	events, totalCount, err := s.repo.GetAll(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	responses := make([]EventResponse, len(events))
	for i := range events {
		responses[i] = events[i].ToResponse()
	}

	page := query.Page
	if page == 0 {
		page = 1
	}
	limit := query.Limit
	if limit == 0 {
		limit = 20
	}

	return &EventListResponse{
		Events:     responses,
		TotalCount: totalCount,
		Page:       page,
		Limit:      limit,
	}, nil
}

func (s *service) GetEvent(id uuid.UUID) (*EventDetailResponse, error) {
	event, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	eventInvoices, err := s.invoiceService.ListByEvent(id)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices for event: %w", err)
	}

	return &EventDetailResponse{
		EventResponse: event.ToResponse(),
		Invoices:      eventInvoices,
	}, nil
}

// CreateEvents batch-creates admin events. Admin bookings skip the lead-time
// rules but still respect the clash check, and they land approved.
func (s *service) CreateEvents(ctx context.Context, req CreateEventsRequest) ([]EventResponse, error) {
	responses := make([]EventResponse, 0, len(req.Events))

	for _, input := range req.Events {
		start, err := combineDateTime(input.EventDate, input.EventTimeFrom)
		if err != nil {
			return nil, fmt.Errorf("event %q: invalid start: %w", input.Name, err)
		}
		end, err := combineDateTime(input.EventDate, input.EventTimeTo)
		if err != nil {
			return nil, fmt.Errorf("event %q: invalid end: %w", input.Name, err)
		}
		if !start.Before(end) {
			return nil, fmt.Errorf("event %q: start must be before end", input.Name)
		}

		contact := &Contact{Email: input.ContactEmail, Name: input.ContactName}
		event := &Event{
			Name:            input.Name,
			Details:         input.Details,
			EventStart:      start,
			EventEnd:        end,
			PubliclyVisible: input.PubliclyVisible,
			Status:          EventStatusApproved,
			ContactEmail:    input.ContactEmail,
			RateID:          rates.DefaultRateID,
		}

		if err := s.repo.CreateBooking(contact, event, s.overlapBuffer); err != nil {
			if errors.Is(err, ErrBookingExists) {
				return nil, fmt.Errorf("event %q: %w", input.Name, ErrBookingExists)
			}
			return nil, fmt.Errorf("event %q: %w", input.Name, err)
		}

		event.Contact = *contact
		responses = append(responses, event.ToResponse())
	}

	s.invalidateEventCaches(ctx)
	return responses, nil
}

func (s *service) Approve(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	event, err := s.changeStatus(ctx, id, EventStatusApproved)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyBookingApproved(ctx, event.ContactEmail, event.Name, event.EventStart, calendarEntry(event)); err != nil {
			s.log.ErrorWithContext(ctx, "failed to queue approval email", err, map[string]interface{}{
				"event_id": event.ID.String(),
			})
		}
	}

	response := event.ToResponse()
	return &response, nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	event, err := s.changeStatus(ctx, id, EventStatusCancelled)
	if err != nil {
		return nil, err
	}

	response := event.ToResponse()
	return &response, nil
}

func (s *service) RequestDocuments(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	event, err := s.changeStatus(ctx, id, EventStatusAwaitingDocuments)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyDocumentsRequested(ctx, event.ContactEmail, event.Name); err != nil {
			s.log.ErrorWithContext(ctx, "failed to queue document request email", err, map[string]interface{}{
				"event_id": event.ID.String(),
			})
		}
	}

	response := event.ToResponse()
	return &response, nil
}

func (s *service) changeStatus(ctx context.Context, id uuid.UUID, to EventStatus) (*Event, error) {
	event, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	if !canTransition(event.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, event.Status, to)
	}

	from := event.Status
	updated, err := s.repo.UpdateStatus(id, to)
	if err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	s.invalidateEventCaches(ctx)
	s.log.LogEventStatusChanged(ctx, id.String(), string(from), string(to))
	return updated, nil
}

func (s *service) SetRate(ctx context.Context, id uuid.UUID, rateID string) (*EventResponse, error) {
	if _, err := s.rateService.GetRateModel(rateID); err != nil {
		return nil, err
	}

	event, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	updated, err := s.repo.SetRate(event.ID, rateID)
	if err != nil {
		return nil, fmt.Errorf("failed to set rate: %w", err)
	}

	response := updated.ToResponse()
	return &response, nil
}

// GetBillingEvents implements the invoices event source.
func (s *service) GetBillingEvents(ids []uuid.UUID) ([]invoices.BillingEvent, error) {
	events, err := s.repo.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}

	billing := make([]invoices.BillingEvent, len(events))
	for i := range events {
		event := &events[i]
		billing[i] = invoices.BillingEvent{
			ID:           event.ID,
			Name:         event.Name,
			From:         event.EventStart,
			To:           event.EventEnd,
			Status:       string(event.Status),
			ContactEmail: event.ContactEmail,
			RateID:       event.RateID,
		}
	}
	return billing, nil
}

func (s *service) invalidateEventCaches(ctx context.Context) {
	if err := s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_EVENTS_ALL); err != nil {
		s.log.ErrorWithContext(ctx, "failed to invalidate event caches", err, nil)
	}
}

// combineDateTime joins the form's date and clock strings into a UTC instant.
func combineDateTime(date, clock string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.UTC)
}
