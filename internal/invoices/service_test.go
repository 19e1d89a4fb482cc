package invoices

import (
	"context"
	"testing"
	"time"

	"hallbook/internal/rates"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeEventSource struct {
	events []BillingEvent
}

func (f *fakeEventSource) GetBillingEvents(ids []uuid.UUID) ([]BillingEvent, error) {
	want := make(map[uuid.UUID]bool)
	for _, id := range ids {
		want[id] = true
	}
	var out []BillingEvent
	for _, e := range f.events {
		if want[e.ID] {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeRateService struct {
	rates map[string]*rates.Rate
}

func (f *fakeRateService) ListRates(context.Context) ([]rates.RateResponse, error) { return nil, nil }
func (f *fakeRateService) GetRate(id string) (*rates.RateResponse, error) {
	return nil, rates.ErrRateNotFound
}
func (f *fakeRateService) CreateRate(context.Context, rates.CreateRateRequest) (*rates.RateResponse, error) {
	return nil, nil
}
func (f *fakeRateService) GetRateModel(id string) (*rates.Rate, error) {
	if rate, ok := f.rates[id]; ok {
		return rate, nil
	}
	return nil, rates.ErrRateNotFound
}

type fakeRepository struct {
	created []*Invoice
}

func (f *fakeRepository) Create(invoice *Invoice) error {
	invoice.ID = uuid.New()
	f.created = append(f.created, invoice)
	return nil
}

func (f *fakeRepository) GetByID(id uuid.UUID) (*Invoice, error) {
	for _, inv := range f.created {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) GetByEventID(eventID uuid.UUID) ([]Invoice, error) {
	return nil, nil
}

func (f *fakeRepository) Update(id uuid.UUID, updates map[string]interface{}) (*Invoice, error) {
	inv, err := f.GetByID(id)
	if err != nil {
		return nil, err
	}
	if status, ok := updates["status"]; ok {
		inv.Status = status.(InvoiceStatus)
	}
	if paidAt, ok := updates["paid_at"]; ok {
		t := paidAt.(time.Time)
		inv.PaidAt = &t
	}
	return inv, nil
}

type fakeNotifier struct {
	recipients []string
	references []string
	pdfs       [][]byte
}

func (f *fakeNotifier) NotifyInvoiceSent(ctx context.Context, recipient, reference string, total float64, items []LineItem, pdf []byte) error {
	f.recipients = append(f.recipients, recipient)
	f.references = append(f.references, reference)
	f.pdfs = append(f.pdfs, pdf)
	return nil
}

func newTestService(source *fakeEventSource, rateSvc *fakeRateService, repo Repository) Service {
	svc := NewService(repo, rateSvc, NewDeriver(100))
	svc.SetEventSource(source)
	return svc
}

func standardRate() *rates.Rate {
	return &rates.Rate{
		ID:          "default",
		Description: "External Hire Rate",
		HourlyRate:  25,
		DiscountTiers: []rates.DiscountTier{
			{Position: 0, ThresholdHours: 5, Kind: "flat", Value: 25},
		},
	}
}

func TestDraftsForEventsGroupsByContact(t *testing.T) {
	day := time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)
	eventA := uuid.New()
	eventB := uuid.New()
	eventC := uuid.New()

	source := &fakeEventSource{events: []BillingEvent{
		{ID: eventA, Name: "Spring Fair", From: day.Add(9 * time.Hour), To: day.Add(14 * time.Hour), ContactEmail: "zoe@example.com", RateID: "default"},
		{ID: eventB, Name: "Committee Meeting", From: day.Add(18 * time.Hour), To: day.Add(20 * time.Hour), ContactEmail: "amir@example.com", RateID: "default"},
		{ID: eventC, Name: "Evening Class", From: day.Add(19 * time.Hour), To: day.Add(21 * time.Hour), ContactEmail: "zoe@example.com", RateID: "default"},
	}}
	rateSvc := &fakeRateService{rates: map[string]*rates.Rate{"default": standardRate()}}

	svc := newTestService(source, rateSvc, &fakeRepository{})
	drafts, err := svc.DraftsForEvents([]uuid.UUID{eventA, eventB, eventC})
	require.NoError(t, err)

	require.Len(t, drafts, 2)
	// Deterministic order by contact email.
	assert.Equal(t, "amir@example.com", drafts[0].ContactEmail)
	assert.Equal(t, "zoe@example.com", drafts[1].ContactEmail)

	// amir: one 2h event -> hire + deposit.
	require.Len(t, drafts[0].Items, 2)
	assert.Equal(t, 150.0, drafts[0].Total)

	// zoe: 5h event (hire + discount + deposit) and 2h event (hire + deposit).
	require.Len(t, drafts[1].Items, 5)
	assert.Equal(t, "Spring Fair - 5.0 hours", drafts[1].Items[0].Description)
	assert.Equal(t, -25.0, drafts[1].Items[1].Cost)
	assert.Equal(t, 125.0-25.0+100.0+50.0+100.0, drafts[1].Total)
}

func TestDraftsForEventsNoMatches(t *testing.T) {
	source := &fakeEventSource{}
	rateSvc := &fakeRateService{rates: map[string]*rates.Rate{"default": standardRate()}}

	svc := newTestService(source, rateSvc, &fakeRepository{})
	_, err := svc.DraftsForEvents([]uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, ErrNoEvents)
}

func TestSendPersistsItemsInOrder(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(&fakeEventSource{}, &fakeRateService{}, repo)

	eventID := uuid.New().String()
	resp, err := svc.Send(context.Background(), SendInvoiceRequest{
		ContactEmail: "zoe@example.com",
		Items: []SendInvoiceItem{
			{EventID: eventID, Description: "Spring Fair - 5.0 hours", Cost: 125},
			{EventID: eventID, Description: "Spring Fair - Discount", Cost: -25},
			{EventID: eventID, Description: "Spring Fair - Refundable Cleaning and Damage deposit", Cost: 100},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 200.0, resp.Total)
	assert.Equal(t, InvoiceStatusRaised, resp.Status)
	assert.Len(t, resp.Reference, referenceLength)
	require.NotNil(t, resp.SentAt)

	require.Len(t, repo.created, 1)
	stored := repo.created[0]
	for i, item := range stored.Items {
		assert.Equal(t, i, item.Position)
	}
}

func TestSendAttachesInvoicePDF(t *testing.T) {
	repo := &fakeRepository{}
	notifier := &fakeNotifier{}
	svc := newTestService(&fakeEventSource{}, &fakeRateService{}, repo)
	svc.SetNotifier(notifier)

	resp, err := svc.Send(context.Background(), SendInvoiceRequest{
		ContactEmail: "zoe@example.com",
		Items: []SendInvoiceItem{
			{Description: "Spring Fair - 5.0 hours", Cost: 125},
			{Description: "Spring Fair - Refundable Cleaning and Damage deposit", Cost: 100},
		},
	})
	require.NoError(t, err)

	require.Len(t, notifier.pdfs, 1)
	assert.Equal(t, "zoe@example.com", notifier.recipients[0])
	assert.Equal(t, resp.Reference, notifier.references[0])
	require.NotEmpty(t, notifier.pdfs[0])
	assert.Equal(t, "%PDF", string(notifier.pdfs[0][:4]))
}

func TestRenderInvoicePDF(t *testing.T) {
	sentAt := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	pdf, err := RenderInvoicePDF(&InvoiceResponse{
		Reference: "Q7M2XR",
		Total:     225,
		SentAt:    &sentAt,
		Items: []LineItem{
			{Description: "Spring Fair - 5.0 hours", Cost: 125},
			{Description: "Spring Fair - Refundable Cleaning and Damage deposit", Cost: 100},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestMarkPaid(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(&fakeEventSource{}, &fakeRateService{}, repo)

	resp, err := svc.Send(context.Background(), SendInvoiceRequest{
		ContactEmail: "zoe@example.com",
		Items:        []SendInvoiceItem{{Description: "Deposit", Cost: 100}},
	})
	require.NoError(t, err)

	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)

	paid, err := svc.MarkPaid(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)

	_, err = svc.MarkPaid(context.Background(), id)
	assert.ErrorIs(t, err, ErrInvoiceAlreadyPaid)
}

func TestMarkPaidNotFound(t *testing.T) {
	svc := newTestService(&fakeEventSource{}, &fakeRateService{}, &fakeRepository{})

	_, err := svc.MarkPaid(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}
