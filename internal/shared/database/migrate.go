package database

import (
	"fmt"

	"hallbook/internal/auth"
	"hallbook/internal/events"
	"hallbook/internal/invoices"
	"hallbook/internal/rates"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// uuid_generate_v4 defaults need the extension before the tables.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to create uuid extension: %w", err)
	}

	if err := db.AutoMigrate(
		&events.Contact{},
		&events.Event{},
		&rates.Rate{},
		&rates.DiscountTier{},
		&invoices.Invoice{},
		&invoices.InvoiceItem{},
		&auth.AdminUser{},
	); err != nil {
		return err
	}

	if err := MigrateConstraints(db); err != nil {
		return fmt.Errorf("failed to apply constraints: %w", err)
	}

	return seedDefaultRate(db)
}

// seedDefaultRate guarantees the rate every new booking points at.
func seedDefaultRate(db *gorm.DB) error {
	repo := rates.NewRepository(db)
	return repo.EnsureDefault(&rates.Rate{
		ID:          rates.DefaultRateID,
		Description: "External Hire Rate",
		HourlyRate:  25,
		DiscountTiers: []rates.DiscountTier{
			{Position: 0, ThresholdHours: 5, Kind: "flat", Value: 25},
		},
	})
}
