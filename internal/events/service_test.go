package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"hallbook/internal/booking"
	"hallbook/internal/invoices"
	"hallbook/internal/rates"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRepository struct {
	events map[uuid.UUID]*Event
	order  []uuid.UUID
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{events: make(map[uuid.UUID]*Event)}
}

func (r *fakeRepository) CreateBooking(contact *Contact, event *Event, buffer time.Duration) error {
	for _, existing := range r.events {
		if existing.Status == EventStatusCancelled {
			continue
		}
		if existing.EventStart.Before(event.EventEnd.Add(buffer)) && existing.EventEnd.After(event.EventStart.Add(-buffer)) {
			return ErrBookingExists
		}
	}

	event.ID = uuid.New()
	event.Contact = *contact
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	r.events[event.ID] = event
	r.order = append(r.order, event.ID)
	return nil
}

func (r *fakeRepository) GetByID(id uuid.UUID) (*Event, error) {
	event, ok := r.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *event
	return &copied, nil
}

func (r *fakeRepository) GetByIDs(ids []uuid.UUID) ([]Event, error) {
	var result []Event
	for _, id := range ids {
		if event, ok := r.events[id]; ok {
			result = append(result, *event)
		}
	}
	return result, nil
}

func (r *fakeRepository) GetAll(query EventListQuery) ([]Event, int64, error) {
	var result []Event
	for _, id := range r.order {
		event := r.events[id]
		if query.Status != "" && string(event.Status) != query.Status {
			continue
		}
		result = append(result, *event)
	}
	return result, int64(len(result)), nil
}

func (r *fakeRepository) ListBetween(from, to time.Time) ([]Event, error) {
	var result []Event
	for _, id := range r.order {
		event := r.events[id]
		if event.Status == EventStatusCancelled {
			continue
		}
		if !event.EventStart.Before(from) && event.EventStart.Before(to) {
			result = append(result, *event)
		}
	}
	return result, nil
}

func (r *fakeRepository) ListUpcoming(from time.Time) ([]Event, error) {
	var result []Event
	for _, id := range r.order {
		event := r.events[id]
		if event.Status != EventStatusCancelled && event.EventEnd.After(from) {
			result = append(result, *event)
		}
	}
	return result, nil
}

func (r *fakeRepository) UpdateStatus(id uuid.UUID, status EventStatus) (*Event, error) {
	event, ok := r.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	event.Status = status
	copied := *event
	return &copied, nil
}

func (r *fakeRepository) SetRate(id uuid.UUID, rateID string) (*Event, error) {
	event, ok := r.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	event.RateID = rateID
	copied := *event
	return &copied, nil
}

// passthroughCache always misses and forwards the fetcher result.
type passthroughCache struct{}

func (passthroughCache) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("cache miss")
}
func (passthroughCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (passthroughCache) Delete(ctx context.Context, key string) error         { return nil }
func (passthroughCache) DeletePattern(ctx context.Context, key string) error  { return nil }
func (passthroughCache) Exists(ctx context.Context, key string) bool          { return false }
func (passthroughCache) Ping(ctx context.Context) error                       { return nil }
func (passthroughCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	value, err := fetcher()
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

type fakeCaptcha struct {
	err    error
	tokens []string
}

func (f *fakeCaptcha) Verify(ctx context.Context, token, ip string) error {
	f.tokens = append(f.tokens, token)
	return f.err
}

type fakeNotifier struct {
	received   []string
	approved   []string
	documents  []string
	icsPayload []byte
}

func (f *fakeNotifier) NotifyBookingReceived(ctx context.Context, recipient, eventName string, start, end time.Time, total, deposit float64) error {
	f.received = append(f.received, recipient)
	return nil
}

func (f *fakeNotifier) NotifyBookingApproved(ctx context.Context, recipient, eventName string, start time.Time, calendarEntry []byte) error {
	f.approved = append(f.approved, recipient)
	f.icsPayload = calendarEntry
	return nil
}

func (f *fakeNotifier) NotifyDocumentsRequested(ctx context.Context, recipient, eventName string) error {
	f.documents = append(f.documents, recipient)
	return nil
}

type fakeInvoiceService struct{}

func (fakeInvoiceService) SetEventSource(invoices.EventSource) {}
func (fakeInvoiceService) SetNotifier(invoices.Notifier)       {}
func (fakeInvoiceService) DraftsForEvents([]uuid.UUID) ([]invoices.InvoiceDraft, error) {
	return nil, nil
}
func (fakeInvoiceService) Send(context.Context, invoices.SendInvoiceRequest) (*invoices.InvoiceResponse, error) {
	return nil, nil
}
func (fakeInvoiceService) GetInvoice(uuid.UUID) (*invoices.InvoiceResponse, error) { return nil, nil }
func (fakeInvoiceService) MarkPaid(context.Context, uuid.UUID) (*invoices.InvoiceResponse, error) {
	return nil, nil
}
func (fakeInvoiceService) ListByEvent(uuid.UUID) ([]invoices.InvoiceResponse, error) {
	return []invoices.InvoiceResponse{}, nil
}

type fakeRateService struct{}

func (fakeRateService) ListRates(context.Context) ([]rates.RateResponse, error) { return nil, nil }
func (fakeRateService) GetRate(id string) (*rates.RateResponse, error)          { return nil, nil }
func (fakeRateService) CreateRate(context.Context, rates.CreateRateRequest) (*rates.RateResponse, error) {
	return nil, nil
}
func (fakeRateService) GetRateModel(id string) (*rates.Rate, error) {
	if id != rates.DefaultRateID && id != "charity" {
		return nil, rates.ErrRateNotFound
	}
	return &rates.Rate{ID: id, HourlyRate: 25}, nil
}

func newTestService(t *testing.T) (Service, *fakeRepository, *fakeNotifier, *fakeCaptcha) {
	t.Helper()
	repo := newFakeRepository()
	notifier := &fakeNotifier{}
	verifier := &fakeCaptcha{}
	svc := NewService(repo, booking.DefaultPolicy(), 30*time.Minute, verifier, passthroughCache{}, fakeInvoiceService{}, fakeRateService{})
	svc.SetNotifier(notifier)
	return svc, repo, notifier, verifier
}

func validSubmission() SubmitBookingRequest {
	date := time.Now().AddDate(0, 0, 30).Format("2006-01-02")
	return SubmitBookingRequest{
		Request: booking.Request{
			EventName:         "Spring Ceilidh",
			Details:           strings.Repeat("A lively evening of dancing with a live band. ", 3),
			EventDate:         date,
			EventTimeFrom:     "18:00",
			EventTimeTo:       "22:00",
			Name:              "Amir Khan",
			Email:             "amir@example.com",
			PrivacyPolicy:     true,
			TermsOfHire:       true,
			CleaningAndDamage: true,
			CarParking:        true,
			Adhesives:         true,
		},
		CaptchaToken: "token-123",
	}
}

func TestSubmitBookingPersistsProvisionalEvent(t *testing.T) {
	svc, repo, notifier, verifier := newTestService(t)

	result, fieldErrors, err := svc.SubmitBooking(context.Background(), validSubmission(), "203.0.113.7")
	require.NoError(t, err)
	require.Empty(t, fieldErrors)
	require.NotNil(t, result)

	assert.Equal(t, EventStatusProvisional, result.Event.Status)
	assert.Equal(t, "amir@example.com", result.Event.ContactEmail)
	assert.Equal(t, rates.DefaultRateID, result.Event.RateID)
	assert.True(t, result.Event.PubliclyVisible)
	assert.Equal(t, 4.0, result.Breakdown.Hours)
	assert.Equal(t, 200.0, result.Breakdown.Total)

	assert.Len(t, repo.events, 1)
	assert.Equal(t, []string{"amir@example.com"}, notifier.received)
	assert.Equal(t, []string{"token-123"}, verifier.tokens)
}

func TestSubmitBookingReturnsEveryFieldError(t *testing.T) {
	svc, repo, notifier, _ := newTestService(t)

	req := validSubmission()
	req.EventName = "X"
	req.Email = "not-an-email"
	req.PrivacyPolicy = false
	req.Adhesives = false

	result, fieldErrors, err := svc.SubmitBooking(context.Background(), req, "203.0.113.7")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Len(t, fieldErrors, 4)

	assert.Empty(t, repo.events, "invalid submissions must not persist")
	assert.Empty(t, notifier.received)
}

func TestSubmitBookingRejectsFailedCaptcha(t *testing.T) {
	svc, repo, _, verifier := newTestService(t)
	verifier.err = errors.New("captcha verification failed")

	_, _, err := svc.SubmitBooking(context.Background(), validSubmission(), "203.0.113.7")
	assert.Error(t, err)
	assert.Empty(t, repo.events)
}

func TestSubmitBookingRejectsClashWithinBuffer(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	first := validSubmission()
	first.EventTimeTo = "20:00"
	_, fieldErrors, err := svc.SubmitBooking(context.Background(), first, "203.0.113.7")
	require.NoError(t, err)
	require.Empty(t, fieldErrors)

	// Starts 15 minutes after the first ends, inside the 30 minute buffer.
	second := validSubmission()
	second.EventTimeFrom = "20:15"
	second.EventTimeTo = "20:45"
	second.Email = "zoe@example.com"

	_, _, err = svc.SubmitBooking(context.Background(), second, "203.0.113.7")
	assert.ErrorIs(t, err, ErrBookingExists)
}

func TestApproveSendsConfirmationWithCalendarEntry(t *testing.T) {
	svc, repo, notifier, _ := newTestService(t)

	_, _, err := svc.SubmitBooking(context.Background(), validSubmission(), "203.0.113.7")
	require.NoError(t, err)
	id := repo.order[0]

	approved, err := svc.Approve(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, EventStatusApproved, approved.Status)

	require.Equal(t, []string{"amir@example.com"}, notifier.approved)
	assert.Contains(t, string(notifier.icsPayload), "BEGIN:VCALENDAR")
	assert.Contains(t, string(notifier.icsPayload), "Spring Ceilidh")
}

func TestApproveRejectsRepeatAndCancelledTransitions(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	_, _, err := svc.SubmitBooking(context.Background(), validSubmission(), "203.0.113.7")
	require.NoError(t, err)
	id := repo.order[0]

	_, err = svc.Approve(context.Background(), id)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), id)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Cancel(context.Background(), id)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), id)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRequestDocumentsOnlyFromProvisional(t *testing.T) {
	svc, repo, notifier, _ := newTestService(t)

	_, _, err := svc.SubmitBooking(context.Background(), validSubmission(), "203.0.113.7")
	require.NoError(t, err)
	id := repo.order[0]

	event, err := svc.RequestDocuments(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, EventStatusAwaitingDocuments, event.Status)
	assert.Equal(t, []string{"amir@example.com"}, notifier.documents)

	_, err = svc.RequestDocuments(context.Background(), id)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Documents stage still allows approval.
	approved, err := svc.Approve(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, EventStatusApproved, approved.Status)
}

func TestListPublicMasksPrivateBookings(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	private := false
	req := validSubmission()
	req.PubliclyVisible = &private

	_, _, err := svc.SubmitBooking(context.Background(), req, "203.0.113.7")
	require.NoError(t, err)

	events, err := svc.ListPublic(context.Background(), "", "")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Private booking", events[0].Name)
}

func TestSetRateValidatesRate(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	_, _, err := svc.SubmitBooking(context.Background(), validSubmission(), "203.0.113.7")
	require.NoError(t, err)
	id := repo.order[0]

	updated, err := svc.SetRate(context.Background(), id, "charity")
	require.NoError(t, err)
	assert.Equal(t, "charity", updated.RateID)

	_, err = svc.SetRate(context.Background(), id, "nonsense")
	assert.ErrorIs(t, err, rates.ErrRateNotFound)
}

func TestGetBillingEventsMapsFields(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	_, _, err := svc.SubmitBooking(context.Background(), validSubmission(), "203.0.113.7")
	require.NoError(t, err)
	id := repo.order[0]

	billing, err := svc.GetBillingEvents([]uuid.UUID{id})
	require.NoError(t, err)
	require.Len(t, billing, 1)

	stored := repo.events[id]
	assert.Equal(t, stored.ID, billing[0].ID)
	assert.Equal(t, stored.Name, billing[0].Name)
	assert.Equal(t, stored.EventStart, billing[0].From)
	assert.Equal(t, stored.EventEnd, billing[0].To)
	assert.Equal(t, stored.ContactEmail, billing[0].ContactEmail)
	assert.Equal(t, rates.DefaultRateID, billing[0].RateID)
}

func TestCreateEventsBatchLandsApproved(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	req := CreateEventsRequest{Events: []AdminEventInput{
		{
			Name: "Yoga", EventDate: "2026-09-01", EventTimeFrom: "09:00", EventTimeTo: "10:00",
			ContactEmail: "instructor@example.com", ContactName: "Dee", PubliclyVisible: true,
		},
		{
			Name: "Committee Meeting", EventDate: "2026-09-02", EventTimeFrom: "19:00", EventTimeTo: "21:00",
			ContactEmail: "chair@oakfieldhall.org", ContactName: "Chair",
		},
	}}

	created, err := svc.CreateEvents(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Len(t, repo.events, 2)
	for _, event := range created {
		assert.Equal(t, EventStatusApproved, event.Status)
	}
}

func TestQuoteIsLenient(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	breakdown := svc.Quote("garbage", "22:00")
	assert.Equal(t, 0.0, breakdown.Hours)
	assert.Equal(t, 100.0, breakdown.Total)
}
