package booking

import (
	"hallbook/internal/shared/config"
)

// Policy holds the booking-window and pricing rules for the hall. It is an
// immutable value threaded into Evaluate and Quote so callers (and tests)
// control every input, including the clock.
type Policy struct {
	MinLeadDays            int
	MaxLeadYears           int
	EarliestTimeOfDay      string
	LatestTimeOfDay        string
	HourlyRate             float64
	DepositAmount          float64
	DiscountThresholdHours float64
	DiscountAmount         float64
}

// DefaultPolicy returns the standard hire policy for the hall.
func DefaultPolicy() Policy {
	return Policy{
		MinLeadDays:            14,
		MaxLeadYears:           2,
		EarliestTimeOfDay:      "09:00",
		LatestTimeOfDay:        "22:00",
		HourlyRate:             25.0,
		DepositAmount:          100.0,
		DiscountThresholdHours: 5,
		DiscountAmount:         25.0,
	}
}

// PolicyFromConfig builds a Policy from the application configuration.
func PolicyFromConfig(cfg config.BookingConfig) Policy {
	return Policy{
		MinLeadDays:            cfg.MinLeadDays,
		MaxLeadYears:           cfg.MaxLeadYears,
		EarliestTimeOfDay:      cfg.EarliestTimeOfDay,
		LatestTimeOfDay:        cfg.LatestTimeOfDay,
		HourlyRate:             cfg.HourlyRate,
		DepositAmount:          cfg.DepositAmount,
		DiscountThresholdHours: cfg.DiscountThresholdHrs,
		DiscountAmount:         cfg.DiscountAmount,
	}
}
