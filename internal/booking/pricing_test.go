package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteDiscountThreshold(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name         string
		from, to     string
		wantHours    float64
		wantDiscount float64
	}{
		{"under five hours", "10:00", "14:59", 4.983333333333333, 0},
		{"exactly five hours", "10:00", "15:00", 5, 25},
		{"over five hours", "09:00", "18:30", 9.5, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Quote(tt.from, tt.to, policy)
			assert.InDelta(t, tt.wantHours, b.Hours, 1e-9)
			assert.Equal(t, tt.wantDiscount, b.Discount)
		})
	}
}

func TestQuoteTotalIsBasePlusDepositMinusDiscount(t *testing.T) {
	policy := DefaultPolicy()

	for _, window := range [][2]string{
		{"09:00", "10:00"},
		{"09:00", "14:00"},
		{"10:30", "21:45"},
		{"", ""},
	} {
		b := Quote(window[0], window[1], policy)
		assert.InDelta(t, b.BaseCost+b.Deposit-b.Discount, b.Total, 1e-9)
	}
}

func TestQuoteLeniency(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name     string
		from, to string
	}{
		{"both empty", "", ""},
		{"garbage start", "not a time", "14:00"},
		{"garbage end", "10:00", "???"},
		{"zero duration", "12:00", "12:00"},
		{"inverted window", "16:00", "10:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Quote(tt.from, tt.to, policy)
			assert.Equal(t, 0.0, b.Hours)
			assert.Equal(t, 0.0, b.BaseCost)
			assert.Equal(t, 0.0, b.Discount)
			assert.Equal(t, policy.DepositAmount, b.Deposit)
			assert.Equal(t, policy.DepositAmount, b.Total)
		})
	}
}

func TestQuoteFiveHourExample(t *testing.T) {
	b := Quote("09:00", "14:00", DefaultPolicy())

	assert.Equal(t, 5.0, b.Hours)
	assert.Equal(t, 125.0, b.BaseCost)
	assert.Equal(t, 25.0, b.Discount)
	assert.Equal(t, 100.0, b.Deposit)
	assert.Equal(t, 200.0, b.Total)
}
