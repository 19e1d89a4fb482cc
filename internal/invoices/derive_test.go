package invoices

import (
	"testing"
	"time"

	"hallbook/internal/rates"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func billingEvent(name string, from, to string, rate float64, tiers ...rates.DiscountTier) InvoicedEvent {
	day := "2026-06-20"
	fromTime, _ := time.Parse("2006-01-02 15:04", day+" "+from)
	toTime, _ := time.Parse("2006-01-02 15:04", day+" "+to)
	return InvoicedEvent{
		ID:            "evt-" + name,
		Name:          name,
		From:          fromTime,
		To:            toTime,
		Rate:          rate,
		DiscountTiers: tiers,
	}
}

func tier(position int, threshold, value float64) rates.DiscountTier {
	return rates.DiscountTier{Position: position, ThresholdHours: threshold, Kind: "flat", Value: value}
}

func TestDeriveLineItemsFiveHourHire(t *testing.T) {
	d := NewDeriver(100)
	event := billingEvent("Spring Fair", "09:00", "14:00", 25, tier(0, 5, 25))

	items := d.DeriveLineItems([]InvoicedEvent{event})

	require.Len(t, items, 3)
	assert.Equal(t, "Spring Fair - 5.0 hours", items[0].Description)
	assert.Equal(t, 125.0, items[0].Cost)
	assert.Equal(t, "Spring Fair - Discount", items[1].Description)
	assert.Equal(t, -25.0, items[1].Cost)
	assert.Equal(t, "Spring Fair - Refundable Cleaning and Damage deposit", items[2].Description)
	assert.Equal(t, 100.0, items[2].Cost)

	assert.Equal(t, 200.0, Total(items))
}

func TestDeriveLineItemsNoEligibleTier(t *testing.T) {
	d := NewDeriver(100)
	event := billingEvent("Short Meeting", "10:00", "12:00", 25, tier(0, 5, 25))

	items := d.DeriveLineItems([]InvoicedEvent{event})

	require.Len(t, items, 2)
	assert.Equal(t, "Short Meeting - 2.0 hours", items[0].Description)
	assert.Equal(t, 50.0, items[0].Cost)
	assert.Equal(t, 100.0, items[1].Cost)
}

func TestDeriveLineItemsLargestValueWins(t *testing.T) {
	d := NewDeriver(100)

	// Both tiers apply at 12 hours; the larger value wins regardless of
	// which threshold is higher or where it sits in the scan order.
	tests := []struct {
		name  string
		tiers []rates.DiscountTier
		want  float64
	}{
		{"larger value at higher threshold", []rates.DiscountTier{tier(0, 5, 25), tier(1, 10, 50)}, -50},
		{"larger value at lower threshold", []rates.DiscountTier{tier(0, 5, 50), tier(1, 10, 25)}, -50},
		{"larger value scanned first", []rates.DiscountTier{tier(0, 10, 50), tier(1, 5, 25)}, -50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := billingEvent("All Day Event", "09:00", "21:00", 25, tt.tiers...)
			items := d.DeriveLineItems([]InvoicedEvent{event})

			require.Len(t, items, 3)
			assert.Equal(t, "All Day Event - Discount", items[1].Description)
			assert.Equal(t, tt.want, items[1].Cost)
		})
	}
}

func TestDeriveLineItemsZeroDuration(t *testing.T) {
	d := NewDeriver(100)

	tests := []struct {
		name     string
		from, to string
	}{
		{"zero duration", "12:00", "12:00"},
		{"inverted window", "16:00", "10:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := billingEvent("Odd Booking", tt.from, tt.to, 25, tier(0, 5, 25))
			items := d.DeriveLineItems([]InvoicedEvent{event})

			// No hire line, but the deposit is still charged.
			require.Len(t, items, 1)
			assert.Equal(t, "Odd Booking - Refundable Cleaning and Damage deposit", items[0].Description)
			assert.Equal(t, 100.0, items[0].Cost)
		})
	}
}

func TestDeriveLineItemsMultipleEventsPreserveOrder(t *testing.T) {
	d := NewDeriver(100)
	events := []InvoicedEvent{
		billingEvent("Morning Session", "09:00", "11:30", 25),
		billingEvent("Evening Session", "18:00", "23:30", 25, tier(0, 5, 25)),
	}

	items := d.DeriveLineItems(events)

	require.Len(t, items, 5)
	assert.Equal(t, "Morning Session - 2.5 hours", items[0].Description)
	assert.Equal(t, "Morning Session - Refundable Cleaning and Damage deposit", items[1].Description)
	assert.Equal(t, "Evening Session - 5.5 hours", items[2].Description)
	assert.Equal(t, "Evening Session - Discount", items[3].Description)
	assert.Equal(t, "Evening Session - Refundable Cleaning and Damage deposit", items[4].Description)
}

func TestDeriveLineItemsIsIdempotent(t *testing.T) {
	d := NewDeriver(100)
	events := []InvoicedEvent{
		billingEvent("Spring Fair", "09:00", "14:00", 25, tier(0, 5, 25)),
		billingEvent("Short Meeting", "10:00", "12:00", 25),
	}

	first := d.DeriveLineItems(events)
	second := d.DeriveLineItems(events)

	assert.Equal(t, first, second)
}

func TestTotalCombinesSignedAmounts(t *testing.T) {
	items := []LineItem{
		{Description: "hire", Cost: 125},
		{Description: "discount", Cost: -25},
		{Description: "deposit", Cost: 100},
	}
	assert.Equal(t, 200.0, Total(items))

	assert.Equal(t, 0.0, Total(nil))
}
